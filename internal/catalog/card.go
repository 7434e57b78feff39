package catalog

import "github.com/google/uuid"

// Images holds the image URIs published for a card or face.
type Images struct {
	Small  string `json:"small"`
	Normal string `json:"normal"`
	Large  string `json:"large"`
	Art    string `json:"art_crop"`
}

// Prices holds the paper price observations for one printing. Values are
// decimal strings as published by the catalog; absent or non-numeric values
// mean no observation.
type Prices struct {
	USD     string `json:"usd"`
	USDFoil string `json:"usd_foil"`
}

// Face is one side of a multi-faced card.
type Face struct {
	Name       string  `json:"name"`
	Images     *Images `json:"image_uris"`
	OracleText string  `json:"oracle_text"`
	FlavorText string  `json:"flavor_text"`
	Artist     string  `json:"artist"`
}

// Card is a resolved catalog entity. Immutable once resolved.
type Card struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	URI          string            `json:"scryfall_uri"`
	Images       *Images           `json:"image_uris"`
	OracleText   string            `json:"oracle_text"`
	FlavorText   string            `json:"flavor_text"`
	Artist       string            `json:"artist"`
	SetName      string            `json:"set_name"`
	Legalities   map[string]string `json:"legalities"`
	Prices       *Prices           `json:"prices"`
	PrintingsURL string            `json:"prints_search_uri"`
	Reserved     bool              `json:"reserved"`
	Faces        []Face            `json:"card_faces"`
}

// FlattenedFaces returns one Card per face, with face-level name, images,
// oracle text, flavor text, and artist substituted in. The artist falls
// back to the parent card's when the face has none. A single-faced card
// flattens to itself.
func (c *Card) FlattenedFaces() []Card {
	if len(c.Faces) == 0 {
		return []Card{*c}
	}
	out := make([]Card, 0, len(c.Faces))
	for _, face := range c.Faces {
		flat := *c
		flat.Name = face.Name
		flat.Images = face.Images
		flat.OracleText = face.OracleText
		flat.FlavorText = face.FlavorText
		if face.Artist != "" {
			flat.Artist = face.Artist
		}
		out = append(out, flat)
	}
	return out
}

// ResultSet is a page of cards returned by a search endpoint.
type ResultSet struct {
	TotalCards int    `json:"total_cards"`
	HasMore    bool   `json:"has_more"`
	Data       []Card `json:"data"`
}

// First returns the first card of the result set, or nil when empty.
func (r *ResultSet) First() *Card {
	if r == nil || len(r.Data) == 0 {
		return nil
	}
	return &r.Data[0]
}
