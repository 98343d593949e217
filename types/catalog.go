package types

import "time"

// MeasurementUnit is the unit label attached to ingredients
// (grams, pieces, tablespoons and so on). Labels are globally unique.
type MeasurementUnit struct {
	ID   int    `json:"id" db:"id"`
	Unit string `json:"measurement_unit" db:"unit"`
}

// Ingredient is a catalog entry. The (name, measurement unit) pair is unique.
// The measurement unit is resolved to its label in API responses.
type Ingredient struct {
	ID              int    `json:"id" db:"id"`
	Name            string `json:"name" db:"name"`
	MeasurementUnit string `json:"measurement_unit" db:"measurement_unit"`
}

// Tag labels recipes. Name and slug are unique; the slug is derived from the
// name by transliteration when not supplied. Color is an optional hex value.
type Tag struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Color     *string   `json:"color" db:"color"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"-" db:"created_at"`
}
