package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductCreated struct {
	ProductID uuid.UUID
	Name      string
}

func (e ProductCreated) Type() string { return "ProductCreated" }

type ProductPriceChanged struct {
	ProductID uuid.UUID
	OldPrice  decimal.Decimal
	NewPrice  decimal.Decimal
}

func (e ProductPriceChanged) Type() string { return "ProductPriceChanged" }

type ProductStockChanged struct {
	ProductID uuid.UUID
	OldStock  int
	NewStock  int
}

func (e ProductStockChanged) Type() string { return "ProductStockChanged" }

type ProductUpdated struct {
	ProductID uuid.UUID
}

func (e ProductUpdated) Type() string { return "ProductUpdated" }

type ProductDeleted struct {
	ProductID uuid.UUID
}

func (e ProductDeleted) Type() string { return "ProductDeleted" }
