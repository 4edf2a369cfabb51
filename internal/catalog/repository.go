package catalog

import (
	"context"
	"strings"

	"github.com/infoabcd/Warehouse-Query-System/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Filter narrows the commodities a listing covers. The same filter scopes
// both the count query and the page query.
type Filter func(db *gorm.DB) *gorm.DB

// AllCommodities matches every commodity.
func AllCommodities(db *gorm.DB) *gorm.DB {
	return db
}

// InCategory matches commodities associated with categoryID. The join table
// is consulted through a subquery so commodity rows are never multiplied.
func InCategory(categoryID int64) Filter {
	return func(db *gorm.DB) *gorm.DB {
		sub := db.Session(&gorm.Session{NewDB: true}).
			Table("commodity_categories").
			Select("commodity_id").
			Where("category_id = ?", categoryID)
		return db.Where("commodities.id IN (?)", sub)
	}
}

// TitleContains matches commodities whose title contains term anywhere,
// ignoring case. Postgres needs ILIKE for that; the other dialects compare
// case-insensitively with LIKE.
func TitleContains(term string) Filter {
	pattern := "%" + escapeLike(term) + "%"
	return func(db *gorm.DB) *gorm.DB {
		if strings.EqualFold(db.Dialector.Name(), "postgres") {
			return db.Where("commodities.title ILIKE ? ESCAPE '!'", pattern)
		}
		return db.Where("commodities.title LIKE ? ESCAPE '!'", pattern)
	}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// CommodityRepository handles database operations for commodities and
// their category associations
type CommodityRepository interface {
	// Count returns the number of distinct commodities matching filter
	Count(ctx context.Context, filter Filter) (int64, error)

	// FindPage retrieves one page of commodities matching filter, newest first.
	// columns limits the commodity columns loaded; nil loads all of them.
	FindPage(ctx context.Context, filter Filter, columns []string, offset, limit int) ([]domain.Commodity, error)

	// GetByID retrieves a commodity with its categories
	GetByID(ctx context.Context, id int64, columns []string) (*domain.Commodity, error)

	// FindAll retrieves every commodity with its categories, oldest first
	FindAll(ctx context.Context) ([]domain.Commodity, error)

	// Create inserts the commodity row only; associations are written by ReplaceCategories
	Create(ctx context.Context, c *domain.Commodity) error

	// Save updates every column of an existing commodity row
	Save(ctx context.Context, c *domain.Commodity) error

	// Delete removes the commodity and its join table rows
	Delete(ctx context.Context, c *domain.Commodity) error

	// FindCategories retrieves the categories with the given ids
	FindCategories(ctx context.Context, ids []int64) ([]domain.Category, error)

	// ListCategories retrieves all categories ordered by id
	ListCategories(ctx context.Context) ([]domain.Category, error)

	// ReplaceCategories sets the category set of c to exactly cats
	ReplaceCategories(ctx context.Context, c *domain.Commodity, cats []domain.Category) error

	// Transaction runs fn against a repository bound to one transaction
	Transaction(ctx context.Context, fn func(repo CommodityRepository) error) error
}

// GormCommodityRepository is the GORM implementation of CommodityRepository
type GormCommodityRepository struct {
	db *gorm.DB
}

// NewGormCommodityRepository creates a new GORM-based repository
func NewGormCommodityRepository(db *gorm.DB) *GormCommodityRepository {
	return &GormCommodityRepository{db: db}
}

func (r *GormCommodityRepository) Count(ctx context.Context, filter Filter) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&domain.Commodity{}).
		Scopes(filter).
		Distinct("commodities.id").
		Count(&total).Error
	return total, err
}

func (r *GormCommodityRepository) FindPage(ctx context.Context, filter Filter, columns []string, offset, limit int) ([]domain.Commodity, error) {
	var rows []domain.Commodity
	query := r.db.WithContext(ctx).Model(&domain.Commodity{}).Scopes(filter)
	if len(columns) > 0 {
		query = query.Select(qualify(columns))
	}
	err := query.
		Preload("Categories", orderCategories).
		Order("commodities.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *GormCommodityRepository) GetByID(ctx context.Context, id int64, columns []string) (*domain.Commodity, error) {
	var c domain.Commodity
	query := r.db.WithContext(ctx)
	if len(columns) > 0 {
		query = query.Select(qualify(columns))
	}
	err := query.Preload("Categories", orderCategories).First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormCommodityRepository) FindAll(ctx context.Context) ([]domain.Commodity, error) {
	var rows []domain.Commodity
	err := r.db.WithContext(ctx).
		Preload("Categories", orderCategories).
		Order("commodities.id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *GormCommodityRepository) Create(ctx context.Context, c *domain.Commodity) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error
}

func (r *GormCommodityRepository) Save(ctx context.Context, c *domain.Commodity) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(c).Error
}

func (r *GormCommodityRepository) Delete(ctx context.Context, c *domain.Commodity) error {
	return r.db.WithContext(ctx).Select("Categories").Delete(c).Error
}

func (r *GormCommodityRepository) FindCategories(ctx context.Context, ids []int64) ([]domain.Category, error) {
	var cats []domain.Category
	if len(ids) == 0 {
		return cats, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&cats).Error
	return cats, err
}

func (r *GormCommodityRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var cats []domain.Category
	err := r.db.WithContext(ctx).Order("id ASC").Find(&cats).Error
	return cats, err
}

func (r *GormCommodityRepository) ReplaceCategories(ctx context.Context, c *domain.Commodity, cats []domain.Category) error {
	return r.db.WithContext(ctx).Model(c).Association("Categories").Replace(cats)
}

func (r *GormCommodityRepository) Transaction(ctx context.Context, fn func(repo CommodityRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormCommodityRepository{db: tx})
	})
}

func orderCategories(db *gorm.DB) *gorm.DB {
	return db.Order("categories.id ASC")
}

func qualify(columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = "commodities." + col
	}
	return out
}
