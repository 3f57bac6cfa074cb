package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/catalog/domain/model"
	"storefront/pkg/common/domain"
)

var (
	ErrNameRequired        = domain.Validation("product name is required")
	ErrDescriptionRequired = domain.Validation("product description is required")
	ErrInvalidPrice        = domain.Validation("product price must be greater than zero")
	ErrInvalidDiscount     = domain.Validation("product discount must be between 0 and 100")
	ErrInvalidCategory     = domain.Validation("product category must be one of women, men, kids, accessories")
	ErrInvalidStock        = domain.Validation("product stock cannot be negative")
	ErrInvalidSort         = domain.Validation("sort must be price_asc or price_desc")
	ErrSignInRequired      = domain.Unauthorized("not authorized, no token")
	ErrAdminRequired       = domain.Forbidden("not authorized as an admin")
)

type CreateProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Discount    decimal.Decimal
	Category    model.Category
	Image       string
	Stock       int
	Sizes       []string
	Colors      []string
}

// UpdateProductInput is a partial update: nil fields are left unchanged.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Discount    *decimal.Decimal
	Category    *model.Category
	Image       *string
	Stock       *int
	Sizes       []string
	Colors      []string
	// Version, when set, must match the stored version.
	Version *int
}

type ProductService interface {
	CreateProduct(ctx context.Context, principal domain.Principal, in CreateProductInput) (*model.Product, error)
	UpdateProduct(ctx context.Context, principal domain.Principal, productID uuid.UUID, in UpdateProductInput) (*model.Product, error)
	DeleteProduct(ctx context.Context, principal domain.Principal, productID uuid.UUID) error
	FindProduct(ctx context.Context, productID uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
}

func NewProductService(repo model.ProductRepository, dispatcher domain.EventDispatcher) ProductService {
	return &productService{repo: repo, dispatcher: dispatcher}
}

type productService struct {
	repo       model.ProductRepository
	dispatcher domain.EventDispatcher
}

func (s *productService) CreateProduct(ctx context.Context, principal domain.Principal, in CreateProductInput) (*model.Product, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if in.Description == "" {
		return nil, ErrDescriptionRequired
	}
	if err := validateAttributes(in.Price, in.Discount, in.Category, in.Stock); err != nil {
		return nil, err
	}

	productID, err := s.repo.NextID()
	if err != nil {
		return nil, err
	}

	image := strings.TrimSpace(in.Image)
	if image == "" {
		image = model.DefaultImage
	}
	sizes := in.Sizes
	if sizes == nil {
		sizes = append([]string(nil), model.DefaultSizes...)
	}
	colors := in.Colors
	if colors == nil {
		colors = []string{}
	}

	now := time.Now().UTC()
	product := &model.Product{
		ID:          productID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Discount:    in.Discount,
		Category:    in.Category,
		Image:       image,
		Stock:       in.Stock,
		Sizes:       sizes,
		Colors:      colors,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.dispatch(model.ProductCreated{ProductID: productID, Name: product.Name})
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, principal domain.Principal, productID uuid.UUID, in UpdateProductInput) (*model.Product, error) {
	if err := requireAdmin(principal); err != nil {
		return nil, err
	}
	product, err := s.repo.Find(ctx, productID)
	if err != nil {
		return nil, err
	}

	if in.Version != nil && *in.Version != product.Version {
		return nil, model.ErrOptimisticLock
	}

	oldPrice := product.Price
	oldStock := product.Stock

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		product.Name = name
	}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if description == "" {
			return nil, ErrDescriptionRequired
		}
		product.Description = description
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.Discount != nil {
		product.Discount = *in.Discount
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.Image != nil {
		product.Image = strings.TrimSpace(*in.Image)
		if product.Image == "" {
			product.Image = model.DefaultImage
		}
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.Sizes != nil {
		product.Sizes = in.Sizes
	}
	if in.Colors != nil {
		product.Colors = in.Colors
	}

	if err := validateAttributes(product.Price, product.Discount, product.Category, product.Stock); err != nil {
		return nil, err
	}

	if err := s.updateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.dispatch(model.ProductUpdated{ProductID: productID})
	if !oldPrice.Equal(product.Price) {
		s.dispatch(model.ProductPriceChanged{ProductID: productID, OldPrice: oldPrice, NewPrice: product.Price})
	}
	if oldStock != product.Stock {
		s.dispatch(model.ProductStockChanged{ProductID: productID, OldStock: oldStock, NewStock: product.Stock})
	}
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, principal domain.Principal, productID uuid.UUID) error {
	if err := requireAdmin(principal); err != nil {
		return err
	}
	if _, err := s.repo.Find(ctx, productID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return err
	}

	s.dispatch(model.ProductDeleted{ProductID: productID})
	return nil
}

func (s *productService) FindProduct(ctx context.Context, productID uuid.UUID) (*model.Product, error) {
	return s.repo.Find(ctx, productID)
}

func (s *productService) ListProducts(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, ErrInvalidCategory
	}
	switch filter.Sort {
	case model.SortNone, model.SortPriceAsc, model.SortPriceDesc:
	default:
		return nil, ErrInvalidSort
	}
	return s.repo.FindAll(ctx, filter)
}

// requireAdmin guards catalog changes. Maintenance jobs run as an admin principal without an account.
func requireAdmin(principal domain.Principal) error {
	if principal.IsAdmin {
		return nil
	}
	if principal.IsAnonymous() {
		return ErrSignInRequired
	}
	return ErrAdminRequired
}

func validateAttributes(price, discount decimal.Decimal, category model.Category, stock int) error {
	if !price.IsPositive() {
		return ErrInvalidPrice
	}
	if discount.IsNegative() || discount.GreaterThan(decimal.NewFromInt(100)) {
		return ErrInvalidDiscount
	}
	if !category.Valid() {
		return ErrInvalidCategory
	}
	if stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

func (s *productService) updateProduct(ctx context.Context, product *model.Product) error {
	product.Version++
	product.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, product)
}

func (s *productService) dispatch(event domain.Event) {
	if err := s.dispatcher.Dispatch(event); err != nil {
		log.WithError(err).WithField("event", event.Type()).Error("failed to dispatch event")
	}
}
