package catalog

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type exportRow struct {
	ID             int64  `csv:"id"`
	Title          string `csv:"title"`
	Description    string `csv:"description"`
	Price          string `csv:"price"`
	OriginalPrice  string `csv:"original_price"`
	PromotionPrice string `csv:"promotion_price"`
	IsOnPromotion  bool   `csv:"is_on_promotion"`
	DiscountAmount string `csv:"discount_amount"`
	Stock          int    `csv:"stock"`
	ImageURL       string `csv:"image_url"`
	Categories     string `csv:"categories"`
	CreatedAt      string `csv:"created_at"`
	UpdatedAt      string `csv:"updated_at"`
}

// Export writes every commodity as CSV, oldest first, with all columns.
// Category names are joined with "|".
func (s *Service) Export(ctx context.Context, w io.Writer) error {
	rows, err := s.repo.FindAll(ctx)
	if err != nil {
		return errors.Wrap(err, "load commodities")
	}
	out := make([]*exportRow, 0, len(rows))
	for i := range rows {
		c := &rows[i]
		names := make([]string, 0, len(c.Categories))
		for _, cat := range c.Categories {
			names = append(names, cat.Name)
		}
		row := &exportRow{
			ID:             c.ID,
			Title:          c.Title,
			Price:          c.Price.StringFixed(2),
			OriginalPrice:  c.OriginalPrice.StringFixed(2),
			PromotionPrice: nullMoney(c.PromotionPrice),
			IsOnPromotion:  c.IsOnPromotion,
			DiscountAmount: nullMoney(c.DiscountAmount),
			Stock:          c.Stock,
			ImageURL:       c.ImageURL,
			Categories:     strings.Join(names, "|"),
			CreatedAt:      c.CreatedAt.Format(time.RFC3339),
			UpdatedAt:      c.UpdatedAt.Format(time.RFC3339),
		}
		if c.Description != nil {
			row.Description = *c.Description
		}
		out = append(out, row)
	}
	return errors.Wrap(gocsv.Marshal(&out, w), "write csv")
}

func nullMoney(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.StringFixed(2)
}
