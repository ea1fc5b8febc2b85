package collection_test

import (
	"context"
	"strings"
	"testing"

	"github.com/Triaksa-Space/youthspark-cms/pkg/collection"
	"github.com/Triaksa-Space/youthspark-cms/pkg/logger"
	"github.com/Triaksa-Space/youthspark-cms/pkg/sanitize"
	"github.com/Triaksa-Space/youthspark-cms/pkg/testutil"
	"github.com/Triaksa-Space/youthspark-cms/pkg/validation"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stat struct {
	Value    string `db:"value" json:"value" sanitize:"plain" validate:"required,notblank,max=50"`
	Label    string `db:"label" json:"label" sanitize:"plain" validate:"required,notblank,max=100"`
	Icon     string `db:"icon" json:"icon" sanitize:"plain" validate:"required,notblank,max=100"`
	Position int    `db:"position" json:"position"`
}

var stats = collection.Collection[stat]{
	Name:    "stats",
	Table:   "stats",
	Columns: []string{"value", "label", "icon"},
	Values: func(s stat) []any {
		return []any{s.Value, s.Label, s.Icon}
	},
}

type point struct {
	Text     string `db:"point" json:"point" sanitize:"plain" validate:"required,notblank,max=500"`
	Position int    `db:"position" json:"-"`
}

var missionPoints = collection.Collection[point]{
	Name:    "mission_points",
	Table:   "mission_points",
	Columns: []string{"point"},
	Scope:   &collection.Scope{Column: "about_id", Value: 1},
	Values: func(p point) []any {
		return []any{p.Text}
	},
}

func newService(t *testing.T) (*collection.Service, *sqlx.DB) {
	t.Helper()
	db := testutil.NewSQLite(t)
	svc := collection.New(db, validation.New(), sanitize.New(), collection.WithLogger(logger.Nop()))
	return svc, db
}

func seedStats() []stat {
	return []stat{
		{Value: "500+", Label: "Youth Reached", Icon: "Groups"},
		{Value: "12", Label: "Programs", Icon: "School"},
		{Value: "30", Label: "Mentors", Icon: "People"},
	}
}

func TestReplace_AssignsContiguousPositionsInSubmittedOrder(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	n, err := collection.Replace(ctx, svc, stats, seedStats())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := collection.Read(ctx, svc, stats)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, s := range got {
		assert.Equal(t, i+1, s.Position)
	}
	assert.Equal(t, []string{"Youth Reached", "Programs", "Mentors"},
		[]string{got[0].Label, got[1].Label, got[2].Label})
}

func TestReplace_IgnoresSubmittedPositions(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	items := []stat{
		{Value: "1", Label: "First", Icon: "A", Position: 9},
		{Value: "2", Label: "Second", Icon: "B", Position: 3},
	}
	_, err := collection.Replace(ctx, svc, stats, items)
	require.NoError(t, err)

	got, err := collection.Read(ctx, svc, stats)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "First", got[0].Label)
	assert.Equal(t, 1, got[0].Position)
	assert.Equal(t, "Second", got[1].Label)
	assert.Equal(t, 2, got[1].Position)
}

func TestReplace_SameListTwiceReadsTheSame(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := collection.Replace(ctx, svc, stats, seedStats())
	require.NoError(t, err)
	first, err := collection.Read(ctx, svc, stats)
	require.NoError(t, err)

	_, err = collection.Replace(ctx, svc, stats, seedStats())
	require.NoError(t, err)
	second, err := collection.Read(ctx, svc, stats)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, second, 3)
}

func TestReplace_EmptyListClearsCollection(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := collection.Replace(ctx, svc, stats, seedStats())
	require.NoError(t, err)

	n, err := collection.Replace(ctx, svc, stats, []stat{})
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := collection.Read(ctx, svc, stats)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReplace_ValidationFailureLeavesStoreUntouched(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := collection.Replace(ctx, svc, stats, seedStats())
	require.NoError(t, err)
	before, err := collection.Read(ctx, svc, stats)
	require.NoError(t, err)

	tests := []struct {
		name  string
		items []stat
		field string
	}{
		{
			name:  "label too long",
			items: []stat{{Value: "1", Label: strings.Repeat("x", 101), Icon: "A"}},
			field: "items[0].label",
		},
		{
			name:  "blank value",
			items: []stat{{Value: "1", Label: "ok", Icon: "A"}, {Value: "   ", Label: "ok", Icon: "B"}},
			field: "items[1].value",
		},
		{
			name:  "missing icon",
			items: []stat{{Value: "1", Label: "ok"}},
			field: "items[0].icon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := collection.Replace(ctx, svc, stats, tt.items)
			require.ErrorIs(t, err, collection.ErrValidationFailed)

			var fieldErrs validation.Errors
			require.ErrorAs(t, err, &fieldErrs)
			require.NotEmpty(t, fieldErrs)
			assert.Equal(t, tt.field, fieldErrs[0].Field)

			after, err := collection.Read(ctx, svc, stats)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestReplace_InsertFailureRollsBackDelete(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	_, err := collection.Replace(ctx, svc, stats, seedStats())
	require.NoError(t, err)
	before, err := collection.Read(ctx, svc, stats)
	require.NoError(t, err)

	_, err = db.Exec(`CREATE TRIGGER fail_stats_insert BEFORE INSERT ON stats
		BEGIN SELECT RAISE(ABORT, 'forced failure'); END`)
	require.NoError(t, err)

	_, err = collection.Replace(ctx, svc, stats, []stat{{Value: "1", Label: "New", Icon: "A"}})
	require.ErrorIs(t, err, collection.ErrTransactionFailed)

	after, err := collection.Read(ctx, svc, stats)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestReplace_StripsMarkupFromPlainFields(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	items := []stat{{Value: "<b>500+</b>", Label: "<i>Youth</i> Reached<script>alert(1)</script>", Icon: "Groups"}}
	_, err := collection.Replace(ctx, svc, stats, items)
	require.NoError(t, err)

	assert.Equal(t, "500+", items[0].Value, "items are sanitized in place")

	got, err := collection.Read(ctx, svc, stats)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "500+", got[0].Value)
	assert.Equal(t, "Youth Reached", got[0].Label)
}

func TestReplace_PlainTextKeepsPunctuation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	items := []stat{
		{Value: "1", Label: `Youth's "Voice" & Friends`, Icon: "Groups"},
		{Value: "2", Label: strings.Repeat("&", 100), Icon: "Amp"},
	}
	_, err := collection.Replace(ctx, svc, stats, items)
	require.NoError(t, err)

	got, err := collection.Read(ctx, svc, stats)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, `Youth's "Voice" & Friends`, got[0].Label)
	assert.Equal(t, strings.Repeat("&", 100), got[1].Label)
}

func TestReplace_LengthLimitAppliesToSanitizedText(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	// 100 characters once the tags are gone.
	label := "<b>" + strings.Repeat("x", 100) + "</b>"
	_, err := collection.Replace(ctx, svc, stats, []stat{{Value: "1", Label: label, Icon: "A"}})
	require.NoError(t, err)

	// Markup only: blank after sanitizing.
	_, err = collection.Replace(ctx, svc, stats, []stat{{Value: "<i></i>", Label: "ok", Icon: "A"}})
	require.ErrorIs(t, err, collection.ErrValidationFailed)
}

func TestReplace_RejectsOversizeList(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	items := make([]stat, collection.MaxItems+1)
	for i := range items {
		items[i] = stat{Value: "1", Label: "Label", Icon: "Icon"}
	}
	_, err := collection.Replace(ctx, svc, stats, items)
	require.ErrorIs(t, err, collection.ErrValidationFailed)

	var fieldErrs validation.Errors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "items", fieldErrs[0].Field)

	n, err := collection.Replace(ctx, svc, stats, items[:collection.MaxItems])
	require.NoError(t, err)
	assert.Equal(t, collection.MaxItems, n)
}

func TestRead_SanitizesStoredMarkup(t *testing.T) {
	svc, db := newService(t)

	_, err := db.Exec(`INSERT INTO stats (value, label, icon, position) VALUES ('<b>1</b>', 'Label', 'Icon', 1)`)
	require.NoError(t, err)

	got, err := collection.Read(context.Background(), svc, stats)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].Value)
}

func TestReplace_ExampleScenario(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := collection.Replace(ctx, svc, stats, []stat{
		{Value: "500+", Label: "Youth Reached", Icon: "Groups"},
		{Value: "12", Label: "Programs", Icon: "School"},
	})
	require.NoError(t, err)

	got, err := collection.Read(ctx, svc, stats)
	require.NoError(t, err)
	assert.Equal(t, []stat{
		{Value: "500+", Label: "Youth Reached", Icon: "Groups", Position: 1},
		{Value: "12", Label: "Programs", Icon: "School", Position: 2},
	}, got)

	_, err = collection.Replace(ctx, svc, stats, []stat{})
	require.NoError(t, err)
	got, err = collection.Read(ctx, svc, stats)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = collection.Replace(ctx, svc, stats, []stat{{Value: "1", Label: strings.Repeat("a", 101), Icon: "A"}})
	require.ErrorIs(t, err, collection.ErrValidationFailed)
	got, err = collection.Read(ctx, svc, stats)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestScopedCollection_OnlyTouchesItsParent(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()

	seeded, err := collection.Read(ctx, svc, missionPoints)
	require.NoError(t, err)
	require.Len(t, seeded, 2)
	assert.Equal(t, "Foster creativity", seeded[0].Text)

	_, err = db.Exec(`INSERT INTO about (id, vision, mission) VALUES (2, 'v', 'm')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO mission_points (about_id, point, position) VALUES (2, 'Other page', 1)`)
	require.NoError(t, err)

	_, err = collection.Replace(ctx, svc, missionPoints, []point{{Text: "Mentor"}, {Text: "Build"}, {Text: "Ship"}})
	require.NoError(t, err)

	got, err := collection.Read(ctx, svc, missionPoints)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Ship", got[2].Text)
	assert.Equal(t, 3, got[2].Position)

	var other int
	require.NoError(t, db.Get(&other, `SELECT COUNT(*) FROM mission_points WHERE about_id = 2`))
	assert.Equal(t, 1, other)
}

func TestStoreErrorsAreStorageUnavailable(t *testing.T) {
	svc, db := newService(t)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := collection.Read(ctx, svc, stats)
	assert.ErrorIs(t, err, collection.ErrStorageUnavailable)

	_, err = collection.Replace(ctx, svc, stats, seedStats())
	assert.ErrorIs(t, err, collection.ErrStorageUnavailable)

	assert.ErrorIs(t, svc.Ping(ctx), collection.ErrStorageUnavailable)
}

func TestWithTx_RollsBackEveryWriteOnError(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := collection.Replace(ctx, svc, stats, seedStats())
	require.NoError(t, err)

	err = svc.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := collection.ReplaceTx(ctx, tx, stats, []stat{{Value: "1", Label: "A", Icon: "A"}}); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "INSERT INTO no_such_table VALUES (1)")
		return err
	})
	require.ErrorIs(t, err, collection.ErrTransactionFailed)

	got, err := collection.Read(ctx, svc, stats)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = svc.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
			_, _ = collection.ReplaceTx(ctx, tx, stats, []stat{{Value: "1", Label: "A", Icon: "A"}})
			panic("boom")
		})
	})

	got, err := collection.Read(ctx, svc, stats)
	require.NoError(t, err)
	assert.Empty(t, got)
}
