package pricing

import (
	"errors"
	"math"
	"strings"
)

// Pricing engine for cart checkout. Pure computation, no I/O: callers
// pass the current line items and coupon state and get derived totals
// back. Amounts stay at full float precision, display rounding happens
// at render time.

const (
	DefaultFreeShippingThreshold = 50000
	DefaultFlatShippingFee       = 5000
)

var (
	// ErrEmptyCouponCode is returned when the code is empty or whitespace
	ErrEmptyCouponCode = errors.New("coupon code is required")

	// ErrUnknownCoupon is returned when the code is not in the registry
	ErrUnknownCoupon = errors.New("unknown coupon code")
)

// defaultCoupons is the static registry of valid codes. Codes are
// canonicalized to uppercase before lookup.
var defaultCoupons = map[string]float64{
	"DESCUENTO10": 0.10,
	"DESCUENTO20": 0.20,
	"ENVIOGRATIS": 0.05,
}

// CouponState is the ephemeral applied-coupon state. It is never
// persisted and resets when the cart is cleared.
type CouponState struct {
	Code    string  `json:"code"`
	Rate    float64 `json:"rate"`
	Applied bool    `json:"applied"`
}

// Item is the minimal priceable view of a line item. ServerSubtotal,
// when non-nil, comes from the persistence service and is used verbatim
// instead of being recomputed.
type Item struct {
	UnitPrice      float64
	Quantity       int
	ServerSubtotal *float64
}

// Totals is the derived cart pricing breakdown
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	Shipping       float64 `json:"shipping"`
	Total          float64 `json:"total"`
}

type Engine struct {
	freeShippingThreshold float64
	flatShippingFee       float64
	coupons               map[string]float64
}

// NewEngine creates a pricing engine. Non-positive threshold or fee
// values fall back to the defaults.
func NewEngine(freeShippingThreshold, flatShippingFee float64) *Engine {
	if freeShippingThreshold <= 0 {
		freeShippingThreshold = DefaultFreeShippingThreshold
	}
	if flatShippingFee < 0 {
		flatShippingFee = DefaultFlatShippingFee
	}
	return &Engine{
		freeShippingThreshold: freeShippingThreshold,
		flatShippingFee:       flatShippingFee,
		coupons:               defaultCoupons,
	}
}

// LookupCoupon canonicalizes and validates a coupon code. Empty or
// whitespace codes are rejected before the registry lookup.
func (e *Engine) LookupCoupon(code string) (CouponState, error) {
	canonical := strings.ToUpper(strings.TrimSpace(code))
	if canonical == "" {
		return CouponState{}, ErrEmptyCouponCode
	}

	rate, ok := e.coupons[canonical]
	if !ok {
		return CouponState{}, ErrUnknownCoupon
	}

	return CouponState{Code: canonical, Rate: rate, Applied: true}, nil
}

// Quote computes subtotal, discount, shipping and total for the given
// items. Missing or non-numeric fields are coerced to zero so a
// partially loaded cart still prices without blowing up.
func (e *Engine) Quote(items []Item, coupon CouponState) Totals {
	var subtotal float64
	for _, item := range items {
		if item.ServerSubtotal != nil {
			subtotal += sanitize(*item.ServerSubtotal)
			continue
		}
		price := sanitize(item.UnitPrice)
		qty := item.Quantity
		if qty < 0 {
			qty = 0
		}
		subtotal += price * float64(qty)
	}

	var discount float64
	if coupon.Applied {
		discount = subtotal * coupon.Rate
	}

	shipping := e.flatShippingFee
	if subtotal > e.freeShippingThreshold {
		shipping = 0
	}

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Shipping:       shipping,
		Total:          subtotal - discount + shipping,
	}
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
