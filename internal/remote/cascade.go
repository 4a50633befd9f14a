// Package remote holds the shared stores that local collections are mirrored
// to. Records are opaque JSON objects identified by their "id" field.
package remote

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMissingID = errors.New("payload has no numeric id")

// CascadeRule deletes Child records whose ForeignKey field references a
// deleted Parent record.
type CascadeRule struct {
	Parent     string
	Child      string
	ForeignKey string
}

// DefaultCascade mirrors the foreign keys of the booking model:
// airport, aircraft or crew -> flights -> reservations -> tickets.
var DefaultCascade = []CascadeRule{
	{Parent: "airports", Child: "flights", ForeignKey: "departure_airport_id"},
	{Parent: "airports", Child: "flights", ForeignKey: "arrival_airport_id"},
	{Parent: "aircraft", Child: "flights", ForeignKey: "aircraft_id"},
	{Parent: "crew", Child: "flights", ForeignKey: "crew_id"},
	{Parent: "flights", Child: "reservations", ForeignKey: "flight_id"},
	{Parent: "reservations", Child: "tickets", ForeignKey: "reservation_id"},
}

func childRules(rules []CascadeRule, parent string) []CascadeRule {
	var out []CascadeRule
	for _, r := range rules {
		if r.Parent == parent {
			out = append(out, r)
		}
	}
	return out
}

// payloadID reads the "id" field of a JSON object.
func payloadID(payload json.RawMessage) (int64, error) {
	return int64Field(payload, "id")
}

func int64Field(payload json.RawMessage, field string) (int64, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return 0, fmt.Errorf("decode payload: %w", err)
	}
	raw, ok := obj[field]
	if !ok {
		if field == "id" {
			return 0, ErrMissingID
		}
		return 0, fmt.Errorf("payload has no %q field", field)
	}
	var v int64
	if err := json.Unmarshal(raw, &v); err != nil {
		if field == "id" {
			return 0, ErrMissingID
		}
		return 0, fmt.Errorf("field %q: %w", field, err)
	}
	return v, nil
}

// mergeJSON overlays the top-level fields of update onto current, the same
// way jsonb || does.
func mergeJSON(current, update json.RawMessage) (json.RawMessage, error) {
	if len(current) == 0 {
		return update, nil
	}
	var base map[string]json.RawMessage
	if err := json.Unmarshal(current, &base); err != nil {
		return nil, fmt.Errorf("decode stored payload: %w", err)
	}
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(update, &patch); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if base == nil {
		base = make(map[string]json.RawMessage, len(patch))
	}
	for k, v := range patch {
		base[k] = v
	}
	return json.Marshal(base)
}
