package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/socialoura/spotyz/internal/models"
)

const csvContentType = "text/csv; charset=utf-8"

type FileUploader interface {
	Upload(ctx context.Context, data []byte, contentType, name string) (string, error)
}

type ExportService struct {
	orders   OrderStore
	uploader FileUploader
	now      func() time.Time
}

// Export is either a download link or, without object storage, the file itself.
type Export struct {
	URL         string
	FileName    string
	ContentType string
	Data        []byte
}

// NewExportService accepts a nil uploader; exports are then returned inline.
func NewExportService(orders OrderStore, uploader FileUploader) *ExportService {
	return &ExportService{orders: orders, uploader: uploader, now: time.Now}
}

func (s *ExportService) Orders(ctx context.Context, filter models.OrderFilter) (*Export, error) {
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	data, err := OrdersCSV(orders)
	if err != nil {
		return nil, err
	}
	export := &Export{
		FileName:    "orders-" + s.now().UTC().Format("20060102-150405") + ".csv",
		ContentType: csvContentType,
	}
	if s.uploader == nil {
		export.Data = data
		return export, nil
	}
	url, err := s.uploader.Upload(ctx, data, csvContentType, export.FileName)
	if err != nil {
		return nil, err
	}
	export.URL = url
	return export, nil
}

var orderCSVHeader = []string{
	"id", "created_at", "platform", "username", "email", "followers", "price", "discount",
	"amount", "currency", "promo_code", "payment_id", "payment_status", "order_status",
	"language", "notes",
}

func OrdersCSV(orders []models.Order) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(orderCSVHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, o := range orders {
		record := []string{
			strconv.FormatInt(o.ID, 10),
			o.CreatedAt.UTC().Format(time.RFC3339),
			string(o.Platform),
			o.Username,
			o.Email,
			strconv.Itoa(o.Followers),
			o.Price.StringFixed(2),
			o.Discount.StringFixed(2),
			o.Amount.StringFixed(2),
			o.Currency,
			o.PromoCode,
			o.PaymentID,
			o.PaymentStatus,
			string(o.OrderStatus),
			o.Language,
			o.Notes,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
