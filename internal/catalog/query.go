package catalog

import (
	"context"
	"strings"

	"github.com/infoabcd/Warehouse-Query-System/internal/auth"
	"github.com/infoabcd/Warehouse-Query-System/internal/domain"
	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// Service answers catalog queries and applies admin mutations.
type Service struct {
	repo         CommodityRepository
	defaultLimit int
	maxLimit     int
}

func NewService(repo CommodityRepository, defaultLimit, maxLimit int) *Service {
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{repo: repo, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// Pagination parses page and limit query values with this service's limits.
func (s *Service) Pagination(page, limit string) Pagination {
	return ParsePagination(page, limit, s.defaultLimit, s.maxLimit)
}

// List returns one page of every commodity, projected for viewer.
func (s *Service) List(ctx context.Context, viewer *auth.Identity, p Pagination) (*Page, error) {
	return s.page(ctx, AllCommodities, IsAdmin(viewer), p)
}

// ListByCategory returns one page of the commodities in categoryID.
func (s *Service) ListByCategory(ctx context.Context, viewer *auth.Identity, categoryID int64, p Pagination) (*Page, error) {
	return s.page(ctx, InCategory(categoryID), IsAdmin(viewer), p)
}

// SearchTitle returns one page of commodities whose title contains term.
// Results always use the public projection. A blank term is ErrEmptySearch.
func (s *Service) SearchTitle(ctx context.Context, term string, p Pagination) (*Page, error) {
	term = norm.NFC.String(strings.TrimSpace(term))
	if term == "" {
		return nil, ErrEmptySearch
	}
	return s.page(ctx, TitleContains(term), false, p)
}

// Get returns a single commodity projected for viewer.
func (s *Service) Get(ctx context.Context, viewer *auth.Identity, id int64) (*CommodityView, error) {
	admin := IsAdmin(viewer)
	c, err := s.repo.GetByID(ctx, id, columnsFor(admin))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCommodityNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get commodity %d", id)
	}
	v := Project(c, admin)
	return &v, nil
}

// Categories lists every category ordered by id.
func (s *Service) Categories(ctx context.Context) ([]CategoryView, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	views := make([]CategoryView, 0, len(cats))
	for _, cat := range cats {
		views = append(views, CategoryView{ID: cat.ID, Name: cat.Name})
	}
	return views, nil
}

func (s *Service) page(ctx context.Context, filter Filter, admin bool, p Pagination) (*Page, error) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = s.defaultLimit
	}
	if p.Limit > s.maxLimit {
		p.Limit = s.maxLimit
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "count commodities")
	}
	offset, ok := p.Offset()
	if !ok || int64(offset) >= total {
		return newPage(p, total, nil), nil
	}
	rows, err := s.repo.FindPage(ctx, filter, columnsFor(admin), offset, p.Limit)
	if err != nil {
		return nil, errors.Wrap(err, "find commodities")
	}
	return newPage(p, total, projectAll(rows, admin)), nil
}

func columnsFor(admin bool) []string {
	if admin {
		return nil
	}
	return domain.PublicColumns
}
