package service

import (
	"context"

	"github.com/google/uuid"

	cartmodel "storefront/pkg/cart/domain/model"
	cartservice "storefront/pkg/cart/domain/service"
	catalogservice "storefront/pkg/catalog/domain/service"
)

// NewCartCatalog lets the cart look products up in the catalog.
func NewCartCatalog(products catalogservice.ProductService) cartservice.ProductCatalog {
	return &cartCatalog{products: products}
}

type cartCatalog struct {
	products catalogservice.ProductService
}

func (c *cartCatalog) FindCartProduct(ctx context.Context, productID uuid.UUID) (cartmodel.Product, error) {
	product, err := c.products.FindProduct(ctx, productID)
	if err != nil {
		return cartmodel.Product{}, err
	}
	return cartmodel.Product{
		ID:       product.ID,
		Name:     product.Name,
		Image:    product.Image,
		Price:    product.Price,
		Discount: product.Discount,
		Stock:    product.Stock,
	}, nil
}
