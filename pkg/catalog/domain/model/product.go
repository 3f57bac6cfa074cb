package model

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/pkg/common/domain"
)

var (
	ErrProductNotFound = domain.NotFound("product not found")
	ErrOptimisticLock  = domain.Conflict("product has been modified by another transaction")
)

type Category string

const (
	Women       Category = "women"
	Men         Category = "men"
	Kids        Category = "kids"
	Accessories Category = "accessories"
)

func (c Category) Valid() bool {
	switch c {
	case Women, Men, Kids, Accessories:
		return true
	}
	return false
}

const DefaultImage = "/uploads/default.jpg"

var DefaultSizes = []string{"S", "M", "L", "XL"}

type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Discount    decimal.Decimal
	Category    Category
	Image       string
	Stock       int
	Sizes       []string
	Colors      []string
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EffectivePrice is the unit price after the product discount.
func (p *Product) EffectivePrice() decimal.Decimal {
	return domain.ApplyDiscount(p.Price, p.Discount)
}

type SortOrder string

const (
	SortNone      SortOrder = ""
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
)

type ProductFilter struct {
	Category Category
	Sort     SortOrder
}

type ProductRepository interface {
	NextID() (uuid.UUID, error)
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Find(ctx context.Context, id uuid.UUID) (*Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]Product, error)
}
