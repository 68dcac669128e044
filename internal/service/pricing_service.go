package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/socialoura/spotyz/internal/models"
)

type PricingService struct {
	store  PricingStore
	logger *slog.Logger
}

func NewPricingService(store PricingStore, logger *slog.Logger) *PricingService {
	return &PricingService{store: store, logger: logger}
}

// Get returns the stored document, or the built-in tiers when nothing is stored or the
// store cannot be read.
func (s *PricingService) Get(ctx context.Context) models.PricingDocument {
	doc, err := s.store.Get(ctx)
	if err != nil {
		s.logger.Error("load pricing, serving defaults", "err", err)
		return DefaultPricing()
	}
	if len(doc) == 0 {
		return DefaultPricing()
	}
	return doc
}

func (s *PricingService) Tiers(ctx context.Context, platform models.Platform) []models.PricingTier {
	return s.Get(ctx)[platform]
}

// Replace overwrites the whole document.
func (s *PricingService) Replace(ctx context.Context, doc models.PricingDocument) error {
	if len(doc) == 0 {
		return invalidf("pricing document is empty")
	}
	for platform, tiers := range doc {
		if !platform.Valid() {
			return invalidf("unknown platform %q", platform)
		}
		for i, tier := range tiers {
			if tier.Followers <= 0 {
				return invalidf("%s tier %d: followers must be positive", platform, i+1)
			}
			if !tier.Price.IsPositive() {
				return invalidf("%s tier %d: price must be a positive number", platform, i+1)
			}
		}
	}
	return s.store.Put(ctx, doc)
}

// DefaultPricing is served until an admin saves a document.
func DefaultPricing() models.PricingDocument {
	return models.PricingDocument{
		models.PlatformInstagram: tiers(
			250, "6.90",
			500, "14.90",
			1000, "29.90",
			2500, "59.90",
			5000, "99.90",
			10000, "179.90",
		),
		models.PlatformTikTok: tiers(
			250, "5.90",
			500, "12.90",
			1000, "24.90",
			2500, "49.90",
			5000, "89.90",
			10000, "159.90",
		),
		models.PlatformYouTube: tiers(
			100, "9.90",
			250, "19.90",
			500, "34.90",
			1000, "59.90",
			2500, "129.90",
		),
		models.PlatformSpotify: tiers(
			500, "9.90",
			1000, "17.90",
			2500, "39.90",
			5000, "69.90",
			10000, "119.90",
		),
	}
}

func tiers(pairs ...any) []models.PricingTier {
	out := make([]models.PricingTier, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.PricingTier{
			Followers: pairs[i].(int),
			Price:     decimal.RequireFromString(pairs[i+1].(string)),
		})
	}
	return out
}
