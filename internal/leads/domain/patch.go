package domain

import (
	"bytes"
	"encoding/json"
)

// Patch is a tri-state field update: absent leaves the stored value alone,
// Clear resets it to null, and Set writes Value.
type Patch[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// SetTo returns a patch that writes v.
func SetTo[T any](v T) Patch[T] {
	return Patch[T]{Value: v, Set: true}
}

// Clear returns a patch that resets the field to null.
func Clear[T any]() Patch[T] {
	return Patch[T]{Set: true, Null: true}
}

// IsZero lets encoders with omitzero skip untouched fields.
func (p Patch[T]) IsZero() bool {
	return !p.Set
}

// Ptr returns the value to store, nil for a clear.
func (p Patch[T]) Ptr() *T {
	if !p.Set || p.Null {
		return nil
	}
	v := p.Value
	return &v
}

// Apply writes the patch onto dst and reports whether dst was touched.
func (p Patch[T]) Apply(dst **T) bool {
	if !p.Set {
		return false
	}
	*dst = p.Ptr()
	return true
}

// UnmarshalJSON is only invoked for keys present in the payload, which is
// what distinguishes an absent field from an explicit null.
func (p *Patch[T]) UnmarshalJSON(data []byte) error {
	p.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		p.Null = true
		var zero T
		p.Value = zero
		return nil
	}
	p.Null = false
	return json.Unmarshal(data, &p.Value)
}

// MarshalJSON renders a clear as null.
func (p Patch[T]) MarshalJSON() ([]byte, error) {
	if !p.Set || p.Null {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// LeadUpdate is a partial update of a lead's qualification fields and status.
type LeadUpdate struct {
	Location        Patch[string] `json:"location"`
	PropertyType    Patch[string] `json:"property_type"`
	Bedrooms        Patch[int]    `json:"bedrooms"`
	ParkingSpots    Patch[int]    `json:"parking_spots"`
	MinAreaSqm      Patch[int]    `json:"min_area_sqm"`
	InvestmentRange Patch[string] `json:"investment_range"`
	MoveInDeadline  Patch[string] `json:"move_in_deadline"`
	PaymentMethod   Patch[string] `json:"payment_method"`
	Status          Patch[string] `json:"status"`
	IntentLevel     Patch[string] `json:"intent_level"`
}

// IsEmpty reports whether the update touches nothing.
func (u LeadUpdate) IsEmpty() bool {
	return !u.HasFields() && !u.Status.Set
}

// HasFields reports whether any qualification field or intent level is touched.
func (u LeadUpdate) HasFields() bool {
	return u.Location.Set || u.PropertyType.Set || u.Bedrooms.Set || u.ParkingSpots.Set ||
		u.MinAreaSqm.Set || u.InvestmentRange.Set || u.MoveInDeadline.Set || u.PaymentMethod.Set ||
		u.IntentLevel.Set
}

// ApplyTo merges the update onto lead in memory. Status transitions are not
// checked here.
func (u LeadUpdate) ApplyTo(lead *Lead) {
	u.Location.Apply(&lead.Location)
	u.PropertyType.Apply(&lead.PropertyType)
	u.Bedrooms.Apply(&lead.Bedrooms)
	u.ParkingSpots.Apply(&lead.ParkingSpots)
	u.MinAreaSqm.Apply(&lead.MinAreaSqm)
	u.InvestmentRange.Apply(&lead.InvestmentRange)
	u.MoveInDeadline.Apply(&lead.MoveInDeadline)
	u.PaymentMethod.Apply(&lead.PaymentMethod)
	u.IntentLevel.Apply(&lead.IntentLevel)

	switch {
	case u.Status.Set && !u.Status.Null:
		lead.Status = u.Status.Value
	case u.HasFields() && lead.Status == StatusNew:
		lead.Status = StatusQualifying
	}
}

// Fields returns the touched fields keyed by wire name; cleared fields map to nil.
func (u LeadUpdate) Fields() map[string]any {
	out := make(map[string]any)
	putPatch(out, "location", u.Location)
	putPatch(out, "property_type", u.PropertyType)
	putPatch(out, "bedrooms", u.Bedrooms)
	putPatch(out, "parking_spots", u.ParkingSpots)
	putPatch(out, "min_area_sqm", u.MinAreaSqm)
	putPatch(out, "investment_range", u.InvestmentRange)
	putPatch(out, "move_in_deadline", u.MoveInDeadline)
	putPatch(out, "payment_method", u.PaymentMethod)
	putPatch(out, "status", u.Status)
	putPatch(out, "intent_level", u.IntentLevel)
	return out
}

func putPatch[T any](m map[string]any, key string, p Patch[T]) {
	switch {
	case !p.Set:
	case p.Null:
		m[key] = nil
	default:
		m[key] = p.Value
	}
}
