package transport

import (
	"net/http"

	"github.com/shopspring/decimal"

	catalogmodel "storefront/pkg/catalog/domain/model"
	catalogservice "storefront/pkg/catalog/domain/service"
)

type createProductRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock"`
	Sizes       []string        `json:"sizes"`
	Colors      []string        `json:"colors"`
}

type updateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Discount    *decimal.Decimal `json:"discount"`
	Category    *string          `json:"category"`
	Image       *string          `json:"image"`
	Stock       *int             `json:"stock"`
	Sizes       []string         `json:"sizes"`
	Colors      []string         `json:"colors"`
	Version     *int             `json:"version"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	products, err := h.services.Products.ListProducts(r.Context(), catalogmodel.ProductFilter{
		Category: catalogmodel.Category(query.Get("category")),
		Sort:     catalogmodel.SortOrder(query.Get("sort")),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]productResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	product, err := h.services.Products.FindProduct(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(product))
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	product, err := h.services.Products.CreateProduct(r.Context(), principalFrom(r), catalogservice.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Discount:    req.Discount,
		Category:    catalogmodel.Category(req.Category),
		Image:       req.Image,
		Stock:       req.Stock,
		Sizes:       req.Sizes,
		Colors:      req.Colors,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, struct {
		Message string          `json:"message"`
		Product productResponse `json:"product"`
	}{"Product created successfully", toProductResponse(product)})
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	in := catalogservice.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Discount:    req.Discount,
		Image:       req.Image,
		Stock:       req.Stock,
		Sizes:       req.Sizes,
		Colors:      req.Colors,
		Version:     req.Version,
	}
	if req.Category != nil {
		category := catalogmodel.Category(*req.Category)
		in.Category = &category
	}

	product, err := h.services.Products.UpdateProduct(r.Context(), principalFrom(r), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string          `json:"message"`
		Product productResponse `json:"product"`
	}{"Product updated", toProductResponse(product)})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.services.Products.DeleteProduct(r.Context(), principalFrom(r), id); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Product deleted")
}
