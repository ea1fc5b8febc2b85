package impact

import "github.com/Triaksa-Space/youthspark-cms/pkg/collection"

// Stat is one headline number on the impact page.
type Stat struct {
	Value    string `db:"value" json:"value" sanitize:"plain" validate:"required,notblank,max=50"`
	Label    string `db:"label" json:"label" sanitize:"plain" validate:"required,notblank,max=100"`
	Icon     string `db:"icon" json:"icon" sanitize:"plain" validate:"required,notblank,max=100"`
	Position int    `db:"position" json:"position"`
}

// Testimonial is one participant quote. Avatar is an optional image URL.
type Testimonial struct {
	Quote    string `db:"quote" json:"quote" sanitize:"plain" validate:"required,notblank,max=5000"`
	Name     string `db:"name" json:"name" sanitize:"plain" validate:"required,notblank,max=100"`
	Program  string `db:"program" json:"program" sanitize:"plain" validate:"required,notblank,max=100"`
	Avatar   string `db:"avatar" json:"avatar,omitempty" validate:"omitempty,max=2048,http_url"`
	Position int    `db:"position" json:"position"`
}

// Page is the combined impact payload.
type Page struct {
	Stats        []Stat        `json:"stats" validate:"required,max=500"`
	Testimonials []Testimonial `json:"testimonials" validate:"required,max=500"`
}

// UpdateResponse echoes what was stored.
type UpdateResponse struct {
	Message      string        `json:"message"`
	Stats        []Stat        `json:"stats"`
	Testimonials []Testimonial `json:"testimonials"`
}

var Stats = collection.Collection[Stat]{
	Name:    "stats",
	Table:   "stats",
	Columns: []string{"value", "label", "icon"},
	Values: func(s Stat) []any {
		return []any{s.Value, s.Label, s.Icon}
	},
}

var Testimonials = collection.Collection[Testimonial]{
	Name:    "testimonials",
	Table:   "testimonials",
	Columns: []string{"quote", "name", "program", "avatar"},
	Values: func(t Testimonial) []any {
		return []any{t.Quote, t.Name, t.Program, t.Avatar}
	},
}
