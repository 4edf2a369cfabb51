package catalog

import (
	"context"

	"github.com/infoabcd/Warehouse-Query-System/internal/domain"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Create validates in and stores a new commodity with its category set in
// one transaction. Nothing is written when any step fails.
func (s *Service) Create(ctx context.Context, in *CommodityInput) (*CommodityView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var created domain.Commodity
	err := s.repo.Transaction(ctx, func(repo CommodityRepository) error {
		in.apply(&created)
		if err := repo.Create(ctx, &created); err != nil {
			return errors.Wrap(err, "insert commodity")
		}
		return setCategories(ctx, repo, &created, in.categoryIDs())
	})
	if err != nil {
		return nil, err
	}
	v := Project(&created, true)
	return &v, nil
}

// Update replaces every field and the category set of commodity id.
func (s *Service) Update(ctx context.Context, id int64, in *CommodityInput) (*CommodityView, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var updated *domain.Commodity
	err := s.repo.Transaction(ctx, func(repo CommodityRepository) error {
		c, err := repo.GetByID(ctx, id, nil)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommodityNotFound
		}
		if err != nil {
			return errors.Wrapf(err, "load commodity %d", id)
		}
		in.apply(c)
		if err := repo.Save(ctx, c); err != nil {
			return errors.Wrapf(err, "save commodity %d", id)
		}
		if err := setCategories(ctx, repo, c, in.categoryIDs()); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	v := Project(updated, true)
	return &v, nil
}

// Delete removes commodity id together with its category associations.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Transaction(ctx, func(repo CommodityRepository) error {
		c, err := repo.GetByID(ctx, id, nil)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommodityNotFound
		}
		if err != nil {
			return errors.Wrapf(err, "load commodity %d", id)
		}
		return errors.Wrapf(repo.Delete(ctx, c), "delete commodity %d", id)
	})
}

// setCategories resolves ids and replaces the category set of c. An id with
// no category aborts the transaction with *UnknownCategoryError.
func setCategories(ctx context.Context, repo CommodityRepository, c *domain.Commodity, ids []int64) error {
	cats, err := repo.FindCategories(ctx, ids)
	if err != nil {
		return errors.Wrap(err, "resolve categories")
	}
	if len(cats) != len(ids) {
		found := make(map[int64]struct{}, len(cats))
		for _, cat := range cats {
			found[cat.ID] = struct{}{}
		}
		missing := &UnknownCategoryError{}
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				missing.IDs = append(missing.IDs, id)
			}
		}
		return missing
	}
	if err := repo.ReplaceCategories(ctx, c, cats); err != nil {
		return errors.Wrap(err, "replace categories")
	}
	c.Categories = cats
	return nil
}
