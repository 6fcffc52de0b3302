// Package catalog is the simulated store backend the ReAct agent queries:
// orders, stock levels, the return policy and refund arithmetic.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrItemNotInOrder  = errors.New("item not in order")
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Policy struct {
	ReturnWindowDays int     `yaml:"return_window_days" json:"return_window_days" validate:"gte=1"`
	RestockingRate   float64 `yaml:"restocking_rate" json:"restocking_rate" validate:"gte=0,lt=1"`
	RefundMethod     string  `yaml:"refund_method" json:"refund_method" validate:"required"`
	ProcessingTime   string  `yaml:"processing_time" json:"processing_time" validate:"required"`
}

type Item struct {
	Name   string  `yaml:"name" json:"name" validate:"required"`
	Price  float64 `yaml:"price" json:"price" validate:"gt=0"`
	Qty    int     `yaml:"qty" json:"qty" validate:"gte=1"`
	Status string  `yaml:"status" json:"status"`
}

// Defective reports whether the item was reported faulty.
func (i Item) Defective() bool {
	return strings.HasPrefix(strings.ToLower(i.Status), "defective")
}

type Order struct {
	ID           string    `yaml:"id" json:"id" validate:"required"`
	Customer     string    `yaml:"customer" json:"customer" validate:"required"`
	Email        string    `yaml:"email" json:"email" validate:"required,email"`
	Status       string    `yaml:"status" json:"status" validate:"required,oneof=pending shipped delivered cancelled"`
	Items        []Item    `yaml:"items" json:"items" validate:"required,min=1,dive"`
	Subtotal     float64   `yaml:"subtotal" json:"subtotal" validate:"gte=0"`
	Discount     float64   `yaml:"discount" json:"discount" validate:"lte=0"`
	Shipping     float64   `yaml:"shipping" json:"shipping" validate:"gte=0"`
	Total        float64   `yaml:"total" json:"total" validate:"gte=0"`
	OrderDate    time.Time `yaml:"order_date" json:"order_date" validate:"required"`
	DeliveryDate time.Time `yaml:"delivery_date" json:"delivery_date,omitempty"`
	Tracking     string    `yaml:"tracking" json:"tracking"`
}

// DiscountRate is the order-level discount as a fraction of the subtotal.
func (o Order) DiscountRate() float64 {
	if o.Subtotal == 0 {
		return 0
	}
	return -o.Discount / o.Subtotal
}

func (o Order) item(name string) (Item, bool) {
	for _, it := range o.Items {
		if strings.EqualFold(it.Name, name) {
			return it, true
		}
	}
	return Item{}, false
}

type Stock struct {
	Product   string `yaml:"product" json:"product" validate:"required"`
	InStock   bool   `yaml:"in_stock" json:"in_stock"`
	Quantity  int    `yaml:"quantity" json:"quantity" validate:"gte=0"`
	Warehouse string `yaml:"warehouse" json:"warehouse"`
}

type document struct {
	Policy    Policy  `yaml:"policy"`
	Orders    []Order `yaml:"orders" validate:"dive"`
	Inventory []Stock `yaml:"inventory" validate:"dive"`
}

// Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	policy    Policy
	orders    map[string]Order
	inventory map[string]Stock
}

var validate = validator.New()

// Default returns the embedded demo catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}

	c := &Catalog{
		policy:    doc.Policy,
		orders:    make(map[string]Order, len(doc.Orders)),
		inventory: make(map[string]Stock, len(doc.Inventory)),
	}
	for _, o := range doc.Orders {
		if _, dup := c.orders[o.ID]; dup {
			return nil, fmt.Errorf("invalid catalog: duplicate order %s", o.ID)
		}
		c.orders[o.ID] = o
	}
	for _, s := range doc.Inventory {
		c.inventory[strings.ToLower(s.Product)] = s
	}
	return c, nil
}

func (c *Catalog) Policy() Policy { return c.policy }

// LookupOrder accepts ids with or without a leading '#'.
func (c *Catalog) LookupOrder(id string) (Order, error) {
	id = normalizeOrderID(id)
	o, ok := c.orders[id]
	if !ok {
		return Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return o, nil
}

func (c *Catalog) CheckInventory(product string) (Stock, error) {
	s, ok := c.inventory[strings.ToLower(strings.TrimSpace(product))]
	if !ok {
		return Stock{}, fmt.Errorf("%w: %s", ErrProductNotFound, product)
	}
	return s, nil
}

type Eligibility struct {
	OrderID          string `json:"order_id"`
	Eligible         bool   `json:"eligible"`
	Reason           string `json:"reason,omitempty"`
	ReturnWindowDays int    `json:"return_window_days"`
	DaysRemaining    int    `json:"days_remaining"`
	ReturnLabel      bool   `json:"return_label_available"`
}

// CheckReturnEligibility applies the return window, counted in whole days
// from delivery, as of now.
func (c *Catalog) CheckReturnEligibility(id string, now time.Time) (Eligibility, error) {
	o, err := c.LookupOrder(id)
	if err != nil {
		return Eligibility{}, err
	}

	e := Eligibility{OrderID: o.ID, ReturnWindowDays: c.policy.ReturnWindowDays}
	if o.Status != "delivered" || o.DeliveryDate.IsZero() {
		e.Reason = fmt.Sprintf("order is %s, not delivered", o.Status)
		return e, nil
	}

	elapsed := int(truncateDay(now).Sub(truncateDay(o.DeliveryDate)).Hours() / 24)
	remaining := c.policy.ReturnWindowDays - elapsed
	if remaining < 0 {
		e.Reason = fmt.Sprintf("return window closed %d days ago", -remaining)
		return e, nil
	}
	e.Eligible = true
	e.DaysRemaining = remaining
	e.ReturnLabel = true
	return e, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type RefundLine struct {
	Name          string  `json:"name"`
	Qty           int     `json:"qty"`
	UnitPrice     float64 `json:"unit_price"`
	Gross         float64 `json:"gross"`
	Discount      float64 `json:"discount"`
	RestockingFee float64 `json:"restocking_fee"`
	Net           float64 `json:"net"`
}

type Refund struct {
	OrderID        string       `json:"order_id"`
	Lines          []RefundLine `json:"lines"`
	Gross          float64      `json:"gross"`
	Discount       float64      `json:"discount"`
	RestockingFee  float64      `json:"restocking_fee"`
	Shipping       float64      `json:"shipping"`
	Amount         float64      `json:"refund_amount"`
	Method         string       `json:"refund_method"`
	ProcessingTime string       `json:"processing_time"`
}

// CalculateRefund refunds the full quantity of each named item. The order
// discount is taken back proportionally, shipping is never refunded and
// defective items carry no restocking fee.
func (c *Catalog) CalculateRefund(id string, items []string) (Refund, error) {
	o, err := c.LookupOrder(id)
	if err != nil {
		return Refund{}, err
	}
	if len(items) == 0 {
		return Refund{}, fmt.Errorf("no items to refund for order %s", o.ID)
	}

	r := Refund{
		OrderID:        o.ID,
		Method:         c.policy.RefundMethod,
		ProcessingTime: c.policy.ProcessingTime,
	}
	rate := o.DiscountRate()
	seen := make(map[string]bool, len(items))
	for _, name := range items {
		it, ok := o.item(strings.TrimSpace(name))
		if !ok {
			return Refund{}, fmt.Errorf("%w: %s in %s", ErrItemNotInOrder, name, o.ID)
		}
		if seen[it.Name] {
			continue
		}
		seen[it.Name] = true

		line := RefundLine{Name: it.Name, Qty: it.Qty, UnitPrice: it.Price}
		line.Gross = cents(it.Price * float64(it.Qty))
		line.Discount = cents(line.Gross * rate)
		if !it.Defective() {
			line.RestockingFee = cents((line.Gross - line.Discount) * c.policy.RestockingRate)
		}
		line.Net = cents(line.Gross - line.Discount - line.RestockingFee)

		r.Lines = append(r.Lines, line)
		r.Gross += line.Gross
		r.Discount += line.Discount
		r.RestockingFee += line.RestockingFee
		r.Amount += line.Net
	}
	r.Gross = cents(r.Gross)
	r.Discount = cents(r.Discount)
	r.RestockingFee = cents(r.RestockingFee)
	r.Amount = cents(r.Amount)
	return r, nil
}

func cents(v float64) float64 {
	return math.Round(v*100) / 100
}

func normalizeOrderID(id string) string {
	return strings.TrimPrefix(strings.TrimSpace(id), "#")
}
