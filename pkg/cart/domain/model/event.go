package model

import "github.com/google/uuid"

type CartLineAdded struct {
	SessionID string
	ProductID uuid.UUID
	Size      string
	Color     string
	Quantity  int
}

func (e CartLineAdded) Type() string { return "CartLineAdded" }

type CartLineQuantityChanged struct {
	SessionID string
	ProductID uuid.UUID
	Size      string
	Color     string
	Quantity  int
}

func (e CartLineQuantityChanged) Type() string { return "CartLineQuantityChanged" }

type CartLineRemoved struct {
	SessionID string
	ProductID uuid.UUID
	Size      string
	Color     string
}

func (e CartLineRemoved) Type() string { return "CartLineRemoved" }

type CartCleared struct {
	SessionID string
}

func (e CartCleared) Type() string { return "CartCleared" }

type CartMerged struct {
	FromSessionID string
	SessionID     string
	Count         int
}

func (e CartMerged) Type() string { return "CartMerged" }
