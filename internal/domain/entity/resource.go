package entity

import "github.com/NRobledoSoto/MinaProfundaIdle/server/internal/domain/bignum"

// Resource is a stock of a material (ore, gems, quantum dust) with an
// optional capacity. Amount never exceeds the cap and never goes negative.
type Resource struct {
	Entity
	Amount    bignum.Big `json:"amount"`
	MaxAmount bignum.Big `json:"max_amount"`
	Capped    bool       `json:"capped"`
}

// NewResource creates a resource at zero. Starting stock and caps come from
// the content pack.
func NewResource(id, name string) *Resource {
	r := &Resource{Entity: Entity{ID: id, Name: name}}
	r.Unlock()
	return r
}

// SetCap installs a capacity. An existing overflow is clamped immediately.
func (r *Resource) SetCap(max bignum.Big) {
	r.MaxAmount = max
	r.Capped = true
	if r.Amount.GT(max) {
		r.Amount = max
	}
}

// Add deposits x and returns the amount actually gained, which is smaller
// than x when the cap clamps. Callers crediting statistics must use the
// returned delta, not the requested one.
func (r *Resource) Add(x bignum.Big) bignum.Big {
	if x.IsZero() {
		return bignum.Zero()
	}
	before := r.Amount
	r.Amount = r.Amount.Add(x)
	if r.Capped && r.Amount.GT(r.MaxAmount) {
		r.Amount = r.MaxAmount
	}
	return r.Amount.Sub(before)
}

// CanAfford reports whether x can be deducted in full.
func (r *Resource) CanAfford(x bignum.Big) bool {
	return r.Amount.GTE(x)
}

// Subtract deducts x, all or nothing. Returns false without mutation when
// the stock is short; affordability is pre-checked, never clamped away.
func (r *Resource) Subtract(x bignum.Big) bool {
	if !r.CanAfford(x) {
		return false
	}
	r.Amount = r.Amount.Sub(x)
	return true
}

// ResetForPrestige zeroes the stock. The cap survives the reset.
func (r *Resource) ResetForPrestige() {
	r.Amount = bignum.Zero()
}
