package home

import "github.com/Triaksa-Space/youthspark-cms/pkg/collection"

// Home is the landing page hero.
type Home struct {
	Title       string `db:"title" json:"title" sanitize:"plain" validate:"required,notblank,max=100"`
	Description string `db:"description" json:"description" sanitize:"plain" validate:"required,notblank,max=1000"`
	ImageURL    string `db:"image_url" json:"image_url" validate:"required,max=2048,http_url"`
}

// Record is the single home row.
var Record = collection.Singleton[Home]{
	Name:    "home",
	Table:   "home",
	ID:      1,
	Columns: []string{"title", "description", "image_url"},
	Values: func(h Home) []any {
		return []any{h.Title, h.Description, h.ImageURL}
	},
}
