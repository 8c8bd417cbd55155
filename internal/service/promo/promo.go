// Package promo validates promo codes against a configured discount table and
// quotes the final price charged for a booking.
package promo

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Domenick1991/bookit/config"
)

var ErrUnknownCode = errors.New("invalid promo code")

type Kind string

const (
	KindPercentage Kind = "percentage"
	KindFlat       Kind = "flat"
)

// Discount is a fractional rate for KindPercentage and an amount for KindFlat.
type Discount struct {
	Code  string
	Kind  Kind
	Value float64
}

func (d Discount) Apply(base float64) float64 {
	var off float64
	switch d.Kind {
	case KindPercentage:
		off = base * d.Value
	case KindFlat:
		off = d.Value
	}
	return math.Max(0, base-off)
}

type Quote struct {
	BasePrice float64 `json:"base_price"`
	Discount  float64 `json:"discount"`
	Subtotal  float64 `json:"subtotal"`
	Surcharge float64 `json:"surcharge"`
	Total     float64 `json:"total"`
	PromoCode string  `json:"promo_code,omitempty"`
}

type Validator struct {
	codes     map[string]Discount
	surcharge float64
}

func NewValidator(codes map[string]Discount, surcharge float64) *Validator {
	normalized := make(map[string]Discount, len(codes))
	for code, d := range codes {
		code = normalize(code)
		d.Code = code
		normalized[code] = d
	}
	return &Validator{codes: normalized, surcharge: surcharge}
}

// FromConfig builds the validator from the promo table and the pricing surcharge.
func FromConfig(promoCfg config.PromoConfig, pricing config.PricingConfig) (*Validator, error) {
	codes := make(map[string]Discount, len(promoCfg.Codes))
	for code, c := range promoCfg.Codes {
		kind := Kind(c.Type)
		if kind != KindPercentage && kind != KindFlat {
			return nil, fmt.Errorf("promo %s: unknown type %q", code, c.Type)
		}
		codes[code] = Discount{Kind: kind, Value: c.Value}
	}
	return NewValidator(codes, pricing.Surcharge), nil
}

func (v *Validator) Validate(code string) (Discount, error) {
	d, ok := v.codes[normalize(code)]
	if !ok {
		return Discount{}, ErrUnknownCode
	}
	return d, nil
}

// Quote prices a booking. An empty or unknown code quotes without discount.
func (v *Validator) Quote(base float64, code string) Quote {
	q := Quote{BasePrice: base, Subtotal: base, Surcharge: v.surcharge}
	if d, err := v.Validate(code); err == nil {
		q.Subtotal = d.Apply(base)
		q.Discount = base - q.Subtotal
		q.PromoCode = d.Code
	}
	q.Total = q.Subtotal + q.Surcharge
	return q
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
