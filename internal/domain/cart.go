package domain

// CartLine pairs one catalog product with the quantity requested in a cart.
// Line IDs are assigned sequentially starting at 0 and stay stable until the
// cart is cleared.
type CartLine struct {
	LineID   int      `json:"line_id" bson:"line_id"`
	Product  *Product `json:"product" bson:"product"`
	Quantity int      `json:"quantity" bson:"quantity"`
}

// Subtotal is quantity times the product's unit price.
func (l *CartLine) Subtotal() float64 {
	return float64(l.Quantity) * l.Product.Price
}

// Cart keeps cart lines in insertion order. There is exactly one line per
// product; adding a product already in the cart merges into its line.
//
// Cart is not safe for concurrent use. Each cart is owned by one session and
// the session registry serializes access to it.
type Cart struct {
	lines      []*CartLine
	nextLineID int
}

func NewCart() *Cart {
	return &Cart{}
}

// AddItem merges quantity into the existing line for the product, or appends
// a new line with a fresh line id. Callers must pass quantity >= 1; a line is
// never stored with quantity below one.
func (c *Cart) AddItem(p *Product, quantity int) {
	for _, line := range c.lines {
		if line.Product.ID == p.ID {
			line.Quantity += quantity
			return
		}
	}
	c.lines = append(c.lines, &CartLine{
		LineID:   c.nextLineID,
		Product:  p,
		Quantity: quantity,
	})
	c.nextLineID++
}

// RemoveLine deletes the entire line for the product, whatever its quantity.
// Removing a product that is not in the cart is a no-op.
func (c *Cart) RemoveLine(productID int64) {
	for i, line := range c.lines {
		if line.Product.ID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

func (c *Cart) CartLineByIndex(i int) *CartLine {
	return c.lines[i]
}

// CartLineList returns the lines in insertion order. The returned slice is a
// copy, so it stays valid as a snapshot after the cart is mutated or cleared.
func (c *Cart) CartLineList() []*CartLine {
	out := make([]*CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// TotalValue is the sum of all line subtotals, recomputed on each call.
func (c *Cart) TotalValue() float64 {
	var total float64
	for _, line := range c.lines {
		total += line.Subtotal()
	}
	return total
}

// AverageValue is the total value divided by the number of lines.
// It is defined as 0 for an empty cart.
func (c *Cart) AverageValue() float64 {
	if len(c.lines) == 0 {
		return 0
	}
	return c.TotalValue() / float64(len(c.lines))
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Clear removes all lines and resets line id assignment.
func (c *Cart) Clear() {
	c.lines = nil
	c.nextLineID = 0
}

// Restore replaces the cart's contents with previously snapshotted lines,
// keeping line id assignment ahead of the restored ids.
func (c *Cart) Restore(lines []CartLine) {
	c.lines = make([]*CartLine, 0, len(lines))
	c.nextLineID = 0
	for i := range lines {
		line := lines[i]
		c.lines = append(c.lines, &line)
		if line.LineID >= c.nextLineID {
			c.nextLineID = line.LineID + 1
		}
	}
}

// Snapshot returns the lines by value, for persistence outside the owning
// session.
func (c *Cart) Snapshot() []CartLine {
	out := make([]CartLine, len(c.lines))
	for i, line := range c.lines {
		out[i] = *line
	}
	return out
}
