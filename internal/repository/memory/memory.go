// Package memory holds process-local stores used when no database is configured and
// by tests. Data is lost on restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/socialoura/spotyz/internal/models"
	"github.com/socialoura/spotyz/internal/repository"
)

type PricingStore struct {
	mu  sync.RWMutex
	doc models.PricingDocument
}

func NewPricingStore() *PricingStore {
	return &PricingStore{}
}

func (s *PricingStore) Get(ctx context.Context) (models.PricingDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePricing(s.doc), nil
}

func (s *PricingStore) Put(ctx context.Context, doc models.PricingDocument) error {
	s.mu.Lock()
	s.doc = clonePricing(doc)
	s.mu.Unlock()
	return nil
}

func clonePricing(doc models.PricingDocument) models.PricingDocument {
	if doc == nil {
		return nil
	}
	out := make(models.PricingDocument, len(doc))
	for platform, tiers := range doc {
		out[platform] = append([]models.PricingTier(nil), tiers...)
	}
	return out
}

type OrderStore struct {
	mu     sync.RWMutex
	nextID int64
	orders map[int64]models.Order
}

func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[int64]models.Order)}
}

func (s *OrderStore) FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.PaymentID == paymentID {
			found := o
			return &found, nil
		}
	}
	return nil, nil
}

func (s *OrderStore) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (s *OrderStore) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.orders {
		if existing.PaymentID == o.PaymentID {
			return nil, repository.ErrDuplicate
		}
	}
	s.nextID++
	created := *o
	created.ID = s.nextID
	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now
	s.orders[created.ID] = created
	return &created, nil
}

func (s *OrderStore) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Order
	for _, o := range s.orders {
		if filter.From != nil && o.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !o.CreatedAt.Before(*filter.To) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *OrderStore) Update(ctx context.Context, id int64, update models.OrderUpdate) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	if update.OrderStatus != nil {
		o.OrderStatus = *update.OrderStatus
	}
	if update.Notes != nil {
		o.Notes = *update.Notes
	}
	o.UpdatedAt = time.Now().UTC()
	s.orders[id] = o
	return &o, nil
}

func (s *OrderStore) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[id]; !ok {
		return false, nil
	}
	delete(s.orders, id)
	return true, nil
}

type PromoStore struct {
	mu     sync.RWMutex
	nextID int64
	promos map[int64]models.PromoCode
}

func NewPromoStore() *PromoStore {
	return &PromoStore{promos: make(map[int64]models.PromoCode)}
}

func (s *PromoStore) findLocked(code string) (models.PromoCode, bool) {
	for _, p := range s.promos {
		if strings.EqualFold(p.Code, code) {
			return p, true
		}
	}
	return models.PromoCode{}, false
}

func (s *PromoStore) GetByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.findLocked(code)
	if !ok {
		return nil, nil
	}
	return clonePromo(p), nil
}

func (s *PromoStore) GetByID(ctx context.Context, id int64) (*models.PromoCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.promos[id]
	if !ok {
		return nil, nil
	}
	return clonePromo(p), nil
}

func (s *PromoStore) List(ctx context.Context) ([]models.PromoCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.PromoCode, 0, len(s.promos))
	for _, p := range s.promos {
		out = append(out, *clonePromo(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *PromoStore) Create(ctx context.Context, promo *models.PromoCode) (*models.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.findLocked(promo.Code); exists {
		return nil, repository.ErrDuplicate
	}
	s.nextID++
	created := *clonePromo(*promo)
	created.ID = s.nextID
	created.CurrentUses = 0
	created.CreatedAt = time.Now().UTC()
	created.UpdatedAt = created.CreatedAt
	s.promos[created.ID] = created
	return clonePromo(created), nil
}

func (s *PromoStore) Update(ctx context.Context, promo *models.PromoCode) (*models.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.promos[promo.ID]
	if !ok {
		return nil, nil
	}
	if other, exists := s.findLocked(promo.Code); exists && other.ID != promo.ID {
		return nil, repository.ErrDuplicate
	}
	updated := *clonePromo(*promo)
	updated.CurrentUses = existing.CurrentUses
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	s.promos[promo.ID] = updated
	return clonePromo(updated), nil
}

func (s *PromoStore) SetActive(ctx context.Context, id int64, active bool) (*models.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.promos[id]
	if !ok {
		return nil, nil
	}
	p.IsActive = active
	p.UpdatedAt = time.Now().UTC()
	s.promos[id] = p
	return clonePromo(p), nil
}

func (s *PromoStore) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.promos[id]; !ok {
		return false, nil
	}
	delete(s.promos, id)
	return true, nil
}

func (s *PromoStore) Redeem(ctx context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.findLocked(code)
	if !ok {
		return false, nil
	}
	if p.MaxUses != nil && p.CurrentUses >= *p.MaxUses {
		return false, nil
	}
	p.CurrentUses++
	p.UpdatedAt = time.Now().UTC()
	s.promos[p.ID] = p
	return true, nil
}

func clonePromo(p models.PromoCode) *models.PromoCode {
	out := p
	if p.MaxUses != nil {
		v := *p.MaxUses
		out.MaxUses = &v
	}
	if p.ExpiresAt != nil {
		t := *p.ExpiresAt
		out.ExpiresAt = &t
	}
	return &out
}

type SettingsStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{values: make(map[string]string)}
}

func (s *SettingsStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key], nil
}

func (s *SettingsStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

type AdminUserStore struct {
	mu     sync.RWMutex
	nextID int64
	users  map[string]models.AdminUser
}

func NewAdminUserStore() *AdminUserStore {
	return &AdminUserStore{users: make(map[string]models.AdminUser)}
}

func (s *AdminUserStore) FindByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *AdminUserStore) Upsert(ctx context.Context, username, passwordHash string) (*models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		s.nextID++
		u = models.AdminUser{ID: s.nextID, Username: username, CreatedAt: time.Now().UTC()}
	}
	u.PasswordHash = passwordHash
	s.users[username] = u
	return &u, nil
}

type ExpenseStore struct {
	mu       sync.RWMutex
	nextID   int64
	expenses map[int64]models.AdExpense
}

func NewExpenseStore() *ExpenseStore {
	return &ExpenseStore{expenses: make(map[int64]models.AdExpense)}
}

func (s *ExpenseStore) List(ctx context.Context, rng models.DateRange) ([]models.AdExpense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.AdExpense
	for _, e := range s.expenses {
		if rng.From != nil && e.Date.Before(*rng.From) {
			continue
		}
		if rng.To != nil && !e.Date.Before(*rng.To) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *ExpenseStore) Create(ctx context.Context, e *models.AdExpense) (*models.AdExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	created := *e
	created.ID = s.nextID
	created.CreatedAt = time.Now().UTC()
	s.expenses[created.ID] = created
	return &created, nil
}

func (s *ExpenseStore) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expenses[id]; !ok {
		return false, nil
	}
	delete(s.expenses, id)
	return true, nil
}
