package about

import (
	"encoding/json"

	"github.com/Triaksa-Space/youthspark-cms/pkg/collection"
)

// aboutID is the fixed key of the About record and the parent of both point lists.
const aboutID = 1

// About holds the vision and mission copy. Both are rich text.
type About struct {
	Vision  string `db:"vision" json:"vision" sanitize:"rich" validate:"required,notblank,max=5000"`
	Mission string `db:"mission" json:"mission" sanitize:"rich" validate:"required,notblank,max=5000"`
}

// Point is one bullet of the mission or history list. On the wire it is a
// bare string.
type Point struct {
	Text     string `db:"point" json:"point" sanitize:"plain" validate:"required,notblank,max=500"`
	Position int    `db:"position" json:"-"`
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Text)
}

func (p *Point) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &p.Text)
}

// Page is the full About payload.
type Page struct {
	About
	MissionPoints []Point `json:"missionPoints" validate:"required,max=500"`
	HistoryPoints []Point `json:"historyPoints" validate:"required,max=500"`
}

var Record = collection.Singleton[About]{
	Name:    "about",
	Table:   "about",
	ID:      aboutID,
	Columns: []string{"vision", "mission"},
	Values: func(a About) []any {
		return []any{a.Vision, a.Mission}
	},
}

var MissionPoints = pointList("mission_points")

var HistoryPoints = pointList("history_points")

func pointList(table string) collection.Collection[Point] {
	return collection.Collection[Point]{
		Name:    table,
		Table:   table,
		Columns: []string{"point"},
		Scope:   &collection.Scope{Column: "about_id", Value: aboutID},
		Values: func(p Point) []any {
			return []any{p.Text}
		},
	}
}

// Points converts plain strings to list items.
func Points(texts ...string) []Point {
	out := make([]Point, len(texts))
	for i, t := range texts {
		out[i] = Point{Text: t}
	}
	return out
}
