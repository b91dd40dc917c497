package properties

import (
	"math"
	"strconv"
	"strings"
)

// Field aliases accepted from historical client payload shapes. Each concept
// is probed in order; the first present alias wins.
var (
	idAliases = []string{"_serverId", "propertyId", "serverId", "id"}

	fieldAliases = map[string][]string{
		"title":       {"title"},
		"description": {"description"},
		"price":       {"price"},
		"address":     {"address", "location"},
		"image_url":   {"image_url", "image"},
		"bedrooms":    {"bedrooms", "beds"},
		"bathrooms":   {"bathrooms", "baths"},
		"area":        {"area", "size"},
		"type":        {"type", "propertyType"},
		"sale_rent":   {"sale_rent", "saleRent"},
		"post_to":     {"post_to", "postTo"},
	}
)

// NormalizeInput maps a loosely-typed submission into a strict PropertyInput
// and extracts the explicit id, if a usable one was supplied. Identity and
// creation-timestamp fields never survive into the normalized payload.
//
// Malformed values are normalized defensively, never rejected: non-numeric
// bedrooms/bathrooms/area become null, a missing price becomes 0.
func NormalizeInput(raw map[string]any) (*PropertyInput, *int64) {
	in := &PropertyInput{}
	if raw == nil {
		return in, nil
	}

	in.Title = stringField(raw, "title")
	in.Description = stringField(raw, "description")
	in.Address = stringField(raw, "address")
	in.ImageURL = stringField(raw, "image_url")
	in.Type = stringField(raw, "type")
	in.SaleRent = stringField(raw, "sale_rent")
	in.PostTo = stringField(raw, "post_to")

	if f, ok := numberField(raw, "price"); ok {
		in.Price = f
	}
	if f, ok := numberField(raw, "bedrooms"); ok {
		n := int(f)
		in.Bedrooms = &n
	}
	if f, ok := numberField(raw, "bathrooms"); ok {
		in.Bathrooms = &f
	}
	if f, ok := numberField(raw, "area"); ok {
		in.Area = &f
	}

	return in, explicitID(raw)
}

// explicitID probes the id aliases and accepts the first value that parses
// as a finite number; anything else means "no explicit id".
func explicitID(raw map[string]any) *int64 {
	for _, alias := range idAliases {
		v, ok := raw[alias]
		if !ok || v == nil {
			continue
		}
		f, ok := toNumber(v)
		if !ok || math.IsInf(f, 0) || math.IsNaN(f) {
			return nil
		}
		id := int64(f)
		return &id
	}
	return nil
}

func stringField(raw map[string]any, field string) *string {
	for _, alias := range fieldAliases[field] {
		v, ok := raw[alias]
		if !ok || v == nil {
			continue
		}
		s := toString(v)
		return &s
	}
	return nil
}

// numberField returns (value, true) when a parseable number was supplied
// under any alias; (0, false) means absent or unparseable.
func numberField(raw map[string]any, field string) (float64, bool) {
	for _, alias := range fieldAliases[field] {
		v, ok := raw[alias]
		if !ok || v == nil {
			continue
		}
		if f, ok := toNumber(v); ok {
			return f, true
		}
		return 0, false
	}
	return 0, false
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}
