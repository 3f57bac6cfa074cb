package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderPlaced struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	TotalPrice decimal.Decimal
}

func (e OrderPlaced) Type() string { return "OrderPlaced" }

type OrderPaid struct {
	OrderID       uuid.UUID
	TransactionID string
}

func (e OrderPaid) Type() string { return "OrderPaid" }

type OrderDelivered struct {
	OrderID uuid.UUID
}

func (e OrderDelivered) Type() string { return "OrderDelivered" }
