// Package cart holds the in-progress sale: line items keyed by product and
// size, with totals derived from the current lines on every read.
package cart

import (
	"fmt"
	"sync"

	"github.com/aaravmahajanofficial/pos-terminal/internal/errors"
	"github.com/aaravmahajanofficial/pos-terminal/internal/models"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is applied to the subtotal when no rate is configured.
var DefaultTaxRate = decimal.RequireFromString("0.075")

// LineKey identifies a cart line. The same product with a different size is a different line.
type LineKey struct {
	ProductID string
	Size      string
}

func NewLineKey(productID, size string) LineKey {
	return LineKey{ProductID: productID, Size: size}
}

func (k LineKey) String() string {
	if k.Size == "" {
		return k.ProductID
	}

	return k.ProductID + "#" + k.Size
}

// Catalog resolves the latest known product snapshot for a line.
type Catalog interface {
	Lookup(productID string) (models.Product, bool)
}

type line struct {
	key       LineKey
	name      string
	quantity  int
	unitPrice decimal.Decimal
	discount  decimal.Decimal
	// stock seen when the line was created, used when the catalog no longer knows the product
	knownStock int
}

type Cart struct {
	mu      sync.Mutex
	catalog Catalog
	taxRate decimal.Decimal
	order   []LineKey
	lines   map[LineKey]*line
	// set between BeginCheckout and EndCheckout
	checkingOut bool
}

func New(catalog Catalog, taxRate decimal.Decimal) *Cart {
	return &Cart{
		catalog: catalog,
		taxRate: taxRate,
		lines:   make(map[LineKey]*line),
	}
}

// AddItem increments the matching line or appends a new one seeded with the
// product's selling price and no discount.
func (c *Cart) AddItem(product models.Product, size string) error {
	if product.ID == "" {
		return errors.AddValidationError("productId", "is required")
	}

	if !product.InStock() {
		return errors.ValidationError(fmt.Sprintf("%s is out of stock", product.Name))
	}

	if product.HasSizes && size == "" {
		return errors.AddValidationError("size", fmt.Sprintf("is required for %s", product.Name))
	}

	if size != "" && len(product.SizeOptions) > 0 && !product.HasSize(size) {
		return errors.AddValidationError("size", fmt.Sprintf("%q is not offered for %s", size, product.Name))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := NewLineKey(product.ID, size)

	if existing, ok := c.lines[key]; ok {
		existing.quantity++
		existing.knownStock = product.CurrentStock
		return nil
	}

	c.lines[key] = &line{
		key:        key,
		name:       product.Name,
		quantity:   1,
		unitPrice:  product.SellingPrice,
		discount:   decimal.Zero,
		knownStock: product.CurrentStock,
	}
	c.order = append(c.order, key)

	return nil
}

// RemoveItem deletes the line. Removing an absent line is a no-op.
func (c *Cart) RemoveItem(key LineKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.remove(key)
}

// SetQuantity overwrites the quantity. Anything below 1 removes the line.
func (c *Cart) SetQuantity(key LineKey, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.lines[key]
	if !ok {
		return errors.BadRequestError("Item not found in the cart")
	}

	if quantity < 1 {
		c.remove(key)
		return nil
	}

	if stock := c.stockFor(l); quantity > stock {
		return errors.ValidationError(fmt.Sprintf("Only %d of %s available in stock", stock, c.nameFor(l))).
			WithDetail(fmt.Sprintf("requested %d", quantity))
	}

	l.quantity = quantity

	return nil
}

// Decrement lowers the quantity by one, removing the line when it reaches zero.
func (c *Cart) Decrement(key LineKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.lines[key]
	if !ok {
		return errors.BadRequestError("Item not found in the cart")
	}

	if l.quantity <= 1 {
		c.remove(key)
		return nil
	}

	l.quantity--

	return nil
}

// SetUnitPrice overrides the line price. The catalog price is not consulted again.
func (c *Cart) SetUnitPrice(key LineKey, price decimal.Decimal) error {
	if price.IsNegative() {
		return errors.AddValidationError("unitPrice", "must not be negative")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.lines[key]
	if !ok {
		return errors.BadRequestError("Item not found in the cart")
	}

	if price.LessThan(l.discount) {
		return errors.AddValidationError("unitPrice", fmt.Sprintf("must not be lower than the line discount %s", l.discount.String()))
	}

	l.unitPrice = price

	return nil
}

// SetDiscount sets the per-unit discount, which may not exceed the unit price.
func (c *Cart) SetDiscount(key LineKey, discount decimal.Decimal) error {
	if discount.IsNegative() {
		return errors.AddValidationError("discount", "must not be negative")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.lines[key]
	if !ok {
		return errors.BadRequestError("Item not found in the cart")
	}

	if discount.GreaterThan(l.unitPrice) {
		return errors.AddValidationError("discount", fmt.Sprintf("must not exceed the unit price %s", l.unitPrice.String()))
	}

	l.discount = discount

	return nil
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order = nil
	c.lines = make(map[LineKey]*line)
}

// BeginCheckout snapshots the cart for submission and marks a checkout as in
// flight. Only one checkout may be in flight per cart.
func (c *Cart) BeginCheckout() (models.CartView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.order) == 0 {
		return models.CartView{}, errors.BadRequestError("Cannot complete a sale with an empty cart")
	}

	if c.checkingOut {
		return models.CartView{}, errors.ConflictError("A checkout is already in progress")
	}

	c.checkingOut = true

	return models.CartView{Items: c.items(), Totals: c.totals()}, nil
}

// EndCheckout releases the in-flight checkout. When the sale went through,
// only the submitted quantities are taken out of the cart, so lines added
// while the sale was being sent stay behind.
func (c *Cart) EndCheckout(submitted []models.CartItem, sold bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checkingOut = false

	if !sold {
		return
	}

	for _, item := range submitted {
		key := NewLineKey(item.ProductID, item.Size)

		l, ok := c.lines[key]
		if !ok {
			continue
		}

		l.quantity -= item.Quantity
		if l.quantity <= 0 {
			c.remove(key)
		}
	}
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.order)
}

// Quantity returns the quantity of a line, or zero when the line is absent.
func (c *Cart) Quantity(key LineKey) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.lines[key]; ok {
		return l.quantity
	}

	return 0
}

// Items returns the lines in insertion order.
func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.items()
}

func (c *Cart) ComputeTotals() models.CartTotals {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.totals()
}

// View returns the lines and totals from a single consistent read.
func (c *Cart) View() models.CartView {
	c.mu.Lock()
	defer c.mu.Unlock()

	return models.CartView{Items: c.items(), Totals: c.totals()}
}

func (c *Cart) items() []models.CartItem {
	items := make([]models.CartItem, 0, len(c.order))

	for _, key := range c.order {
		l := c.lines[key]
		qty := decimal.NewFromInt(int64(l.quantity))

		items = append(items, models.CartItem{
			ProductID: key.ProductID,
			Name:      c.nameFor(l),
			Size:      key.Size,
			Quantity:  l.quantity,
			UnitPrice: l.unitPrice,
			Discount:  l.discount,
			LineTotal: l.unitPrice.Sub(l.discount).Mul(qty),
		})
	}

	return items
}

func (c *Cart) totals() models.CartTotals {
	subtotal := decimal.Zero
	totalDiscount := decimal.Zero

	for _, l := range c.lines {
		qty := decimal.NewFromInt(int64(l.quantity))
		subtotal = subtotal.Add(l.unitPrice.Mul(qty))
		totalDiscount = totalDiscount.Add(l.discount.Mul(qty))
	}

	tax := subtotal.Mul(c.taxRate)

	return models.CartTotals{
		Subtotal:      subtotal,
		TotalDiscount: totalDiscount,
		Tax:           tax,
		GrandTotal:    subtotal.Sub(totalDiscount).Add(tax),
	}
}

func (c *Cart) remove(key LineKey) {
	if _, ok := c.lines[key]; !ok {
		return
	}

	delete(c.lines, key)

	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Cart) stockFor(l *line) int {
	if c.catalog != nil {
		if product, ok := c.catalog.Lookup(l.key.ProductID); ok {
			return product.CurrentStock
		}
	}

	return l.knownStock
}

func (c *Cart) nameFor(l *line) string {
	if c.catalog != nil {
		if product, ok := c.catalog.Lookup(l.key.ProductID); ok && product.Name != "" {
			return product.Name
		}
	}

	return l.name
}
