package catalog

import (
	"math"
	"strconv"
	"time"

	"github.com/infoabcd/Warehouse-Query-System/internal/auth"
	"github.com/infoabcd/Warehouse-Query-System/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	DefaultLimit = 15
	MaxLimit     = 500
)

// Pagination is a 1-based page request.
type Pagination struct {
	Page  int
	Limit int
}

// ParsePagination reads page and limit query values. Absent, malformed or
// non-positive values fall back to page 1 and defaultLimit; a limit above
// maxLimit is lowered to maxLimit.
func ParsePagination(page, limit string, defaultLimit, maxLimit int) Pagination {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	p := Pagination{Page: 1, Limit: defaultLimit}
	if v, err := strconv.Atoi(page); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(limit); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// Offset returns (page-1)*limit. ok is false when the offset does not fit
// in an int, which places the page past the end of any result set.
func (p Pagination) Offset() (offset int, ok bool) {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0, true
	}
	if p.Page-1 > math.MaxInt/p.Limit {
		return 0, false
	}
	return (p.Page - 1) * p.Limit, true
}

// Page is the listing shape shared by every catalog listing.
type Page struct {
	Page       int             `json:"page"`
	TotalCount int64           `json:"totalCount"`
	Rows       []CommodityView `json:"rows"`
	TotalPages int64           `json:"totalPages"`
}

func newPage(p Pagination, total int64, rows []CommodityView) *Page {
	if rows == nil {
		rows = []CommodityView{}
	}
	return &Page{
		Page:       p.Page,
		TotalCount: total,
		Rows:       rows,
		TotalPages: TotalPages(total, p.Limit),
	}
}

// TotalPages returns ceil(total/limit).
func TotalPages(total int64, limit int) int64 {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(total) / float64(limit)))
}

// CategoryView is a category nested in a commodity.
type CategoryView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CommodityView is a commodity projected for one caller. The admin-only
// fields are pointers and stay nil, and absent from JSON, for anyone else.
type CommodityView struct {
	ID             int64               `json:"id"`
	Title          string              `json:"title"`
	Description    *string             `json:"description"`
	Price          decimal.Decimal     `json:"price"`
	OriginalPrice  *decimal.Decimal    `json:"original_price,omitempty"`
	PromotionPrice decimal.NullDecimal `json:"promotion_price"`
	IsOnPromotion  bool                `json:"is_on_promotion"`
	DiscountAmount decimal.NullDecimal `json:"discount_amount"`
	Stock          int                 `json:"stock"`
	ImageURL       string              `json:"image_url"`
	Categories     []CategoryView      `json:"categories"`
	CreatedAt      *time.Time          `json:"created_at,omitempty"`
	UpdatedAt      *time.Time          `json:"updated_at,omitempty"`
}

// IsAdmin reports whether viewer is an identified administrator.
func IsAdmin(viewer *auth.Identity) bool {
	return viewer != nil && viewer.Admin
}

// Project converts a stored commodity to the view for admin or public callers.
func Project(c *domain.Commodity, admin bool) CommodityView {
	v := CommodityView{
		ID:             c.ID,
		Title:          c.Title,
		Description:    c.Description,
		Price:          c.Price,
		PromotionPrice: c.PromotionPrice,
		IsOnPromotion:  c.IsOnPromotion,
		DiscountAmount: c.DiscountAmount,
		Stock:          c.Stock,
		ImageURL:       c.ImageURL,
		Categories:     make([]CategoryView, 0, len(c.Categories)),
	}
	for _, cat := range c.Categories {
		v.Categories = append(v.Categories, CategoryView{ID: cat.ID, Name: cat.Name})
	}
	if admin {
		original := c.OriginalPrice
		created, updated := c.CreatedAt, c.UpdatedAt
		v.OriginalPrice = &original
		v.CreatedAt = &created
		v.UpdatedAt = &updated
	}
	return v
}

func projectAll(rows []domain.Commodity, admin bool) []CommodityView {
	views := make([]CommodityView, 0, len(rows))
	for i := range rows {
		views = append(views, Project(&rows[i], admin))
	}
	return views
}
