package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Line is one product entry in a cart.
type Line struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url,omitempty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

// Cart is a value type: every transition returns a new cart and leaves the
// receiver untouched, so callers can persist or diff snapshots freely.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Add appends a product with quantity 1, or increments the existing line
// when the product is already in the cart.
func (c Cart) Add(product Line) Cart {
	lines := c.copyLines()
	for i := range lines {
		if lines[i].ProductID == product.ProductID {
			lines[i].Quantity++
			return Cart{Lines: lines}
		}
	}
	product.Quantity = 1
	return Cart{Lines: append(lines, product)}
}

// UpdateQuantity sets the quantity for a product. A quantity of zero or less
// removes the line entirely. Unknown product ids are a no-op.
func (c Cart) UpdateQuantity(productID uuid.UUID, quantity int) Cart {
	lines := make([]Line, 0, len(c.Lines))
	for _, line := range c.Lines {
		if line.ProductID == productID {
			if quantity <= 0 {
				continue
			}
			line.Quantity = quantity
		}
		lines = append(lines, line)
	}
	return Cart{Lines: lines}
}

// Remove drops the line for a product.
func (c Cart) Remove(productID uuid.UUID) Cart {
	return c.UpdateQuantity(productID, 0)
}

// Clear returns an empty cart.
func (c Cart) Clear() Cart {
	return Cart{}
}

// Total is the sum of unit price times quantity across all lines.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// Count is the total number of units across all lines.
func (c Cart) Count() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) copyLines() []Line {
	lines := make([]Line, len(c.Lines))
	copy(lines, c.Lines)
	return lines
}
