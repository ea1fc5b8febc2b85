package programs

import "github.com/Triaksa-Space/youthspark-cms/pkg/collection"

// Program is one entry of the programs page.
type Program struct {
	Title       string `db:"title" json:"title" sanitize:"plain" validate:"required,notblank,max=255"`
	Description string `db:"description" json:"description" sanitize:"plain" validate:"required,notblank,max=5000"`
	Icon        string `db:"icon" json:"icon" sanitize:"plain" validate:"required,notblank,max=100"`
	Position    int    `db:"position" json:"position"`
}

var Programs = collection.Collection[Program]{
	Name:    "programs",
	Table:   "programs",
	Columns: []string{"title", "description", "icon"},
	Values: func(p Program) []any {
		return []any{p.Title, p.Description, p.Icon}
	},
}
