// Package entity defines the core domain model of the mine: resources,
// producers, upgrades, click power, achievements and prestige, plus the
// read-only context view passed into every predicate and formula.
// This package is PURE and must NOT import any infrastructure packages
// (network, events, platform).
package entity

// Entity is the shared base of everything the player can see: a stable id,
// display metadata inert to logic, and the unlocked/visible gates.
type Entity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`

	Unlocked bool `json:"unlocked"` // gates purchasability and simulation
	Visible  bool `json:"visible"`  // gates UI listing only
}

// Unlock flips both gates. Unlocked implies visible, always; the invariant
// is enforced here rather than at every call site.
func (e *Entity) Unlock() {
	e.Unlocked = true
	e.Visible = true
}
