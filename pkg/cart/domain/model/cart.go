package model

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront/pkg/common/domain"
)

var ErrInvalidQuantity = domain.Validation("quantity must be at least 1")

const DefaultSize = "M"

// LineKey identifies a cart line. At most one line exists per key.
type LineKey struct {
	ProductID uuid.UUID
	Size      string
	Color     string
}

// Product is the part of a catalog product a cart line snapshots.
type Product struct {
	ID       uuid.UUID
	Name     string
	Image    string
	Price    decimal.Decimal
	Discount decimal.Decimal
	Stock    int
}

type Line struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	UnitPrice decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
	Quantity  int             `json:"quantity"`
	// StockCeiling is the product stock seen at add time. Advisory only.
	StockCeiling int `json:"stock"`
}

func (l Line) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

func (l Line) EffectivePrice() decimal.Decimal {
	return domain.ApplyDiscount(l.UnitPrice, l.Discount)
}

func (l Line) Subtotal() decimal.Decimal {
	return l.EffectivePrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	Lines []Line `json:"lines"`
}

// AddLine merges quantity into the line with the same identity or appends a new line
// priced from the product as it is now. It reports whether an existing line was updated.
func (c *Cart) AddLine(product Product, quantity int, size, color string) (Line, bool, error) {
	if quantity < 1 {
		return Line{}, false, ErrInvalidQuantity
	}
	if size == "" {
		size = DefaultSize
	}

	key := LineKey{ProductID: product.ID, Size: size, Color: color}
	if i := c.indexOf(key); i >= 0 {
		c.Lines[i].Quantity += quantity
		return c.Lines[i], true, nil
	}

	line := Line{
		ProductID:    product.ID,
		Name:         product.Name,
		Image:        product.Image,
		Size:         size,
		Color:        color,
		UnitPrice:    product.Price,
		Discount:     product.Discount,
		Quantity:     quantity,
		StockCeiling: product.Stock,
	}
	c.Lines = append(c.Lines, line)
	return line, false, nil
}

// RemoveLine deletes the line with the given identity and returns it. Missing lines are a no-op.
func (c *Cart) RemoveLine(key LineKey) (Line, bool) {
	i := c.indexOf(key)
	if i < 0 {
		return Line{}, false
	}
	line := c.Lines[i]
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	return line, true
}

// SetQuantity replaces the quantity in place. A quantity below 1 removes the line.
func (c *Cart) SetQuantity(key LineKey, quantity int) (Line, bool) {
	if quantity < 1 {
		return c.RemoveLine(key)
	}
	i := c.indexOf(key)
	if i < 0 {
		return Line{}, false
	}
	c.Lines[i].Quantity = quantity
	return c.Lines[i], true
}

// Merge adds every line of other under the AddLine identity rules. A line already present keeps its
// price snapshot and gains the other line's quantity.
func (c *Cart) Merge(other *Cart) {
	for _, line := range other.Lines {
		if i := c.indexOf(line.Key()); i >= 0 {
			c.Lines[i].Quantity += line.Quantity
			continue
		}
		c.Lines = append(c.Lines, line)
	}
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func (c *Cart) Count() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c *Cart) Find(key LineKey) (Line, bool) {
	if i := c.indexOf(key); i >= 0 {
		return c.Lines[i], true
	}
	return Line{}, false
}

func (c *Cart) indexOf(key LineKey) int {
	for i, line := range c.Lines {
		if line.Key() == key {
			return i
		}
	}
	return -1
}

// CartStorage keeps serialized carts between requests. Load returns nil data for an unknown session.
type CartStorage interface {
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Save(ctx context.Context, sessionID string, data []byte) error
	Delete(ctx context.Context, sessionID string) error
}
