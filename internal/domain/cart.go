package domain

import "github.com/shopspring/decimal"

// CartLine is one configuration+quantity decision made at selection time.
// Price is the line total (unit price times quantity), never the unit price.
type CartLine struct {
	Name     string          `json:"name"`
	Options  string          `json:"options"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Cart is an ordered sequence of lines; insertion order is display order.
// A line's position is its only identity. The cart is owned by a single
// browsing session and is not safe for concurrent use by itself; the cart
// store serializes access per session.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// Add appends a line. Repeated adds of the same product and options
// produce distinct lines; nothing is merged.
func (c *Cart) Add(line CartLine) {
	c.Lines = append(c.Lines, line)
}

// Remove drops the line at index, preserving the relative order of the
// rest. Out-of-range indices are a no-op.
func (c *Cart) Remove(index int) {
	if index < 0 || index >= len(c.Lines) {
		return
	}
	c.Lines = append(c.Lines[:index], c.Lines[index+1:]...)
}

// Total sums the line totals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Price)
	}
	return RoundMoney(total)
}

func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
