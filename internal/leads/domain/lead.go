package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Lead lifecycle statuses. The conversation may set other intermediate
// values; StatusHandoffCompleted is terminal and reserved for the handoff path.
const (
	StatusNew              = "new"
	StatusQualifying       = "qualifying"
	StatusHandoffCompleted = "handoff_completed"
)

var statusPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,31}$`)

// IsValidStatus reports whether status is a well-formed status token.
func IsValidStatus(status string) bool {
	return statusPattern.MatchString(status)
}

// Lead is a prospect being qualified for a property search.
type Lead struct {
	ID              uuid.UUID
	Contact         string
	Location        *string
	PropertyType    *string
	Bedrooms        *int
	ParkingSpots    *int
	MinAreaSqm      *int
	InvestmentRange *string
	MoveInDeadline  *string
	PaymentMethod   *string
	Status          string
	IntentLevel     *string
	BrokerID        *uuid.UUID
	HandoffAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsHandedOff reports whether the lead reached the terminal status.
func (l Lead) IsHandedOff() bool {
	return l.Status == StatusHandoffCompleted
}

// HandoffConsistent reports whether the handoff timestamp, status and broker
// assignment agree: all three set or none of them.
func (l Lead) HandoffConsistent() bool {
	handedOff := l.Status == StatusHandoffCompleted
	return handedOff == (l.HandoffAt != nil) && (l.HandoffAt != nil) == (l.BrokerID != nil)
}

// KnownFields returns the qualification attributes that are already set,
// keyed by their wire names.
func (l Lead) KnownFields() map[string]any {
	out := make(map[string]any)
	putString(out, "location", l.Location)
	putString(out, "property_type", l.PropertyType)
	putInt(out, "bedrooms", l.Bedrooms)
	putInt(out, "parking_spots", l.ParkingSpots)
	putInt(out, "min_area_sqm", l.MinAreaSqm)
	putString(out, "investment_range", l.InvestmentRange)
	putString(out, "move_in_deadline", l.MoveInDeadline)
	putString(out, "payment_method", l.PaymentMethod)
	return out
}

func putString(m map[string]any, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}

func putInt(m map[string]any, key string, v *int) {
	if v != nil {
		m[key] = *v
	}
}
