package catalog

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/infoabcd/Warehouse-Query-System/internal/domain"
	"github.com/infoabcd/Warehouse-Query-System/pkg/common"
	"github.com/shopspring/decimal"
	"golang.org/x/text/unicode/norm"
)

// CommodityInput is the admin payload for create and update. Prices are
// nullable so a missing value can be told apart from zero.
type CommodityInput struct {
	Title          string              `json:"title" validate:"required,max=255"`
	Description    *string             `json:"description"`
	Price          decimal.NullDecimal `json:"price"`
	OriginalPrice  decimal.NullDecimal `json:"original_price"`
	PromotionPrice decimal.NullDecimal `json:"promotion_price"`
	IsOnPromotion  bool                `json:"is_on_promotion"`
	DiscountAmount decimal.NullDecimal `json:"discount_amount"`
	Stock          *int                `json:"stock" validate:"required,min=0"`
	ImagePath      string              `json:"imagePath" validate:"max=255"`
	Categories     []int64             `json:"categories" validate:"required,min=1,dive,gt=0"`
}

var validate = validator.New()

// Validate checks the input and returns a *ValidationError naming every bad field.
func (in *CommodityInput) Validate() error {
	in.Title = norm.NFC.String(strings.TrimSpace(in.Title))
	in.ImagePath = strings.TrimSpace(in.ImagePath)

	verr := &ValidationError{}
	if err := validate.Struct(in); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fe := range fieldErrs {
			verr.add(jsonName(fe.StructField()), describe(fe))
		}
	}

	checkMoney(verr, "price", in.Price, true)
	checkMoney(verr, "original_price", in.OriginalPrice, true)
	if in.IsOnPromotion {
		checkMoney(verr, "promotion_price", in.PromotionPrice, true)
		checkMoney(verr, "discount_amount", in.DiscountAmount, false)
	}
	return verr.orNil()
}

func checkMoney(verr *ValidationError, field string, v decimal.NullDecimal, required bool) {
	if !v.Valid {
		if required {
			verr.add(field, "is required")
		}
		return
	}
	if v.Decimal.IsNegative() {
		verr.add(field, "must be >= 0")
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must not be empty"
		}
		return "must be >= " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "ids must be positive"
	default:
		return fmt.Sprintf("failed %s", fe.Tag())
	}
}

func jsonName(field string) string {
	switch field {
	case "Title":
		return "title"
	case "Stock":
		return "stock"
	case "ImagePath":
		return "imagePath"
	default:
		if strings.HasPrefix(field, "Categories") {
			return "categories"
		}
		return strings.ToLower(field)
	}
}

// apply copies validated input onto c, replacing every field, and enforces
// the promotion invariant.
func (in *CommodityInput) apply(c *domain.Commodity) {
	c.Title = in.Title
	c.Description = in.Description
	if c.Description != nil && strings.TrimSpace(*c.Description) == "" {
		c.Description = nil
	}
	c.Price = in.Price.Decimal
	c.OriginalPrice = in.OriginalPrice.Decimal
	c.IsOnPromotion = in.IsOnPromotion
	c.PromotionPrice = in.PromotionPrice
	c.DiscountAmount = in.DiscountAmount
	c.Stock = *in.Stock
	c.ImageURL = in.ImagePath
	c.NormalizePromotion()
}

func (in *CommodityInput) categoryIDs() []int64 {
	return common.UniqueInt64(in.Categories)
}
