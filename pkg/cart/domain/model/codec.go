package model

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// MarshalCart is the session-boundary encoding of a cart.
func MarshalCart(c *Cart) ([]byte, error) {
	lines := c.Lines
	if lines == nil {
		lines = []Line{}
	}
	return json.Marshal(Cart{Lines: lines})
}

// UnmarshalCart decodes a stored cart. Lines with a non-positive quantity are dropped
// and duplicate identities are merged so the decoded cart keeps one line per key.
func UnmarshalCart(data []byte) (*Cart, error) {
	var stored Cart
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}

	cart := &Cart{}
	for _, line := range stored.Lines {
		if line.Quantity < 1 {
			continue
		}
		if i := cart.indexOf(line.Key()); i >= 0 {
			cart.Lines[i].Quantity += line.Quantity
			continue
		}
		cart.Lines = append(cart.Lines, line)
	}
	return cart, nil
}
