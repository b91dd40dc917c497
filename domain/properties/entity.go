package properties

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Property represents a listing row in the properties table.
type Property struct {
	bun.BaseModel `bun:"table:properties,alias:p"`

	ID          int64      `bun:"id,pk" json:"id"`
	UserID      *uuid.UUID `bun:"user_id,type:uuid" json:"userId,omitempty"`
	Title       *string    `bun:"title" json:"title,omitempty"`
	Description *string    `bun:"description" json:"description,omitempty"`
	Price       float64    `bun:"price,notnull,default:0" json:"price"`
	Address     *string    `bun:"address" json:"address,omitempty"`
	ImageURL    *string    `bun:"image_url" json:"imageUrl,omitempty"`
	Bedrooms    *int       `bun:"bedrooms" json:"bedrooms,omitempty"`
	Bathrooms   *float64   `bun:"bathrooms" json:"bathrooms,omitempty"`
	Type        *string    `bun:"type" json:"type,omitempty"`
	Area        *float64   `bun:"area" json:"area,omitempty"`
	SaleRent    *string    `bun:"sale_rent" json:"saleRent,omitempty"`
	PostTo      *string    `bun:"post_to" json:"postTo,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:now()" json:"createdAt"`

	// Relations (for eager loading)
	Photos []Photo `bun:"rel:has-many,join:id=property_id" json:"photos,omitempty"`
}

// Photo represents one row of the ordered photo set attached to a property.
type Photo struct {
	bun.BaseModel `bun:"table:property_photos,alias:pp"`

	ID         int64  `bun:"id,pk,autoincrement" json:"id"`
	PropertyID int64  `bun:"property_id,notnull" json:"propertyId"`
	PhotoURL   string `bun:"photo_url,notnull" json:"photoUrl"`
}

// PhotoURLs returns the property's photo URLs in submission order.
func (p *Property) PhotoURLs() []string {
	urls := make([]string, 0, len(p.Photos))
	for _, ph := range p.Photos {
		urls = append(urls, ph.PhotoURL)
	}
	return urls
}

// PropertyInput is the strict internal record produced by input normalization.
// Nil pointer fields were absent from the submission and are not written on
// update; Price is always set (absent coerces to 0, the column is NOT NULL).
type PropertyInput struct {
	UserID      *uuid.UUID
	Title       *string
	Description *string
	Price       float64
	Address     *string
	ImageURL    *string
	Bedrooms    *int
	Bathrooms   *float64
	Area        *float64
	Type        *string
	SaleRent    *string
	PostTo      *string
}

// DedupKey is the normalized (title, address, price) triple used to recognize
// resubmissions of the same logical property without an explicit id.
type DedupKey struct {
	Title   string
	Address string
	Price   float64
}

// DedupKey derives the dedup key from the input. ok is false when title or
// address is empty after trimming, in which case fuzzy matching is skipped.
func (in *PropertyInput) DedupKey() (DedupKey, bool) {
	title := normalizeKeyPart(in.Title)
	address := normalizeKeyPart(in.Address)
	if title == "" || address == "" {
		return DedupKey{}, false
	}
	return DedupKey{Title: title, Address: address, Price: in.Price}, true
}

// LockKey returns the string hashed into the advisory lock key, so that
// concurrent submissions of the same logical property serialize.
func (k DedupKey) LockKey() string {
	price := strconv.FormatFloat(k.Price, 'f', -1, 64)
	return "property-upsert|" + k.Title + "|" + k.Address + "|" + price
}

func normalizeKeyPart(s *string) string {
	if s == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*s))
}

// UpsertRequest is the request body for the upsert endpoint.
type UpsertRequest struct {
	Property  map[string]any `json:"property"`
	PhotoURLs []string       `json:"photoUrls"`
}

// UpsertRequestFromBody accepts both the {property, photoUrls} envelope and a
// flat property object (legacy clients post the record directly, without
// photos).
func UpsertRequestFromBody(body map[string]any) *UpsertRequest {
	if prop, ok := body["property"].(map[string]any); ok {
		req := &UpsertRequest{Property: prop}
		if raw, ok := body["photoUrls"].([]any); ok {
			for _, v := range raw {
				if s, ok := v.(string); ok {
					req.PhotoURLs = append(req.PhotoURLs, s)
				}
			}
		}
		return req
	}
	return &UpsertRequest{Property: body}
}

// UpsertResponse is the response envelope for a successful upsert.
type UpsertResponse struct {
	Property   *Property `json:"property"`
	PropertyID int64     `json:"propertyId"`
}

// ListParams contains filters for listing properties.
type ListParams struct {
	Type     string
	SaleRent string
	Query    string
	MinPrice *float64
	MaxPrice *float64
	Limit    int
	Offset   int
}
