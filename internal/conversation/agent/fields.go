package agent

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	leads "sdr_backend/internal/leads/domain"
)

var leadingNumber = regexp.MustCompile(`-?\d+`)

// ParseFields converts loosely typed model output into a lead update. Keys the
// model left null or could not type are treated as not mentioned, and the
// handoff status is never accepted from the model.
func ParseFields(raw map[string]json.RawMessage) leads.LeadUpdate {
	var u leads.LeadUpdate
	setText(raw, "location", &u.Location)
	setText(raw, "property_type", &u.PropertyType)
	setNumber(raw, "bedrooms", &u.Bedrooms)
	setNumber(raw, "parking_spots", &u.ParkingSpots)
	setNumber(raw, "min_area_sqm", &u.MinAreaSqm)
	setText(raw, "investment_range", &u.InvestmentRange)
	setText(raw, "move_in_deadline", &u.MoveInDeadline)
	setText(raw, "payment_method", &u.PaymentMethod)
	setText(raw, "intent_level", &u.IntentLevel)

	setText(raw, "status", &u.Status)
	if u.Status.Set {
		status := strings.ToLower(u.Status.Value)
		if status == leads.StatusHandoffCompleted || !leads.IsValidStatus(status) {
			u.Status = leads.Patch[string]{}
		} else {
			u.Status.Value = status
		}
	}
	return u
}

func setText(raw map[string]json.RawMessage, key string, dst *leads.Patch[string]) {
	v, ok := raw[key]
	if !ok {
		return
	}
	var decoded any
	if err := json.Unmarshal(v, &decoded); err != nil {
		return
	}
	switch t := decoded.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			*dst = leads.SetTo(s)
		}
	case float64:
		*dst = leads.SetTo(strconv.FormatFloat(t, 'f', -1, 64))
	}
}

func setNumber(raw map[string]json.RawMessage, key string, dst *leads.Patch[int]) {
	v, ok := raw[key]
	if !ok {
		return
	}
	var decoded any
	if err := json.Unmarshal(v, &decoded); err != nil {
		return
	}
	switch t := decoded.(type) {
	case float64:
		if t == math.Trunc(t) {
			*dst = leads.SetTo(int(t))
		}
	case string:
		if m := leadingNumber.FindString(t); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				*dst = leads.SetTo(n)
			}
		}
	}
}
