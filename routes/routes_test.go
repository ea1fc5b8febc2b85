package routes_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Triaksa-Space/youthspark-cms/domain/about"
	"github.com/Triaksa-Space/youthspark-cms/domain/auth"
	"github.com/Triaksa-Space/youthspark-cms/domain/health"
	"github.com/Triaksa-Space/youthspark-cms/domain/home"
	"github.com/Triaksa-Space/youthspark-cms/domain/impact"
	"github.com/Triaksa-Space/youthspark-cms/domain/programs"
	"github.com/Triaksa-Space/youthspark-cms/domain/upload"
	"github.com/Triaksa-Space/youthspark-cms/pkg/apperrors"
	"github.com/Triaksa-Space/youthspark-cms/pkg/collection"
	"github.com/Triaksa-Space/youthspark-cms/pkg/logger"
	"github.com/Triaksa-Space/youthspark-cms/pkg/sanitize"
	"github.com/Triaksa-Space/youthspark-cms/pkg/storage"
	"github.com/Triaksa-Space/youthspark-cms/pkg/testutil"
	"github.com/Triaksa-Space/youthspark-cms/pkg/validation"
	"github.com/Triaksa-Space/youthspark-cms/routes"
	"github.com/Triaksa-Space/youthspark-cms/utils"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultHero = "https://example.org/default-hero.jpg"

type server struct {
	e      *echo.Echo
	db     *sqlx.DB
	svc    *collection.Service
	tokens *utils.TokenManager
}

func newServer(t *testing.T) *server {
	t.Helper()

	db := testutil.NewSQLite(t)
	log := logger.Nop()
	v := validation.New()
	s := sanitize.New()
	svc := collection.New(db, v, s, collection.WithTimeout(5*time.Second), collection.WithLogger(log))
	tokens := utils.NewTokenManager("test-secret", time.Hour)

	imagesDir := t.TempDir()
	store, err := storage.NewDiskStore(imagesDir, "/images")
	require.NoError(t, err)

	authStore := auth.NewStore(db, 5*time.Second)
	_, err = authStore.CreateUser(context.Background(), v, auth.NewUser{Username: "editor", Password: "editor-pass", Role: "editor"})
	require.NoError(t, err)

	e := routes.NewServer(routes.Handlers{
		Auth:     auth.NewHandler(authStore, tokens, s),
		Home:     home.NewHandler(svc, defaultHero),
		About:    about.NewHandler(svc),
		Programs: programs.NewHandler(svc),
		Impact:   impact.NewHandler(svc),
		Upload:   upload.NewHandler(store, upload.Config{}),
		Health:   health.NewHandler(svc, nil, "test"),
	}, routes.Options{
		Log:             log,
		Validator:       v,
		Tokens:          tokens,
		LoginRateLimit:  3,
		LoginRateWindow: time.Minute,
		FrontendURL:     "http://localhost:5173",
		ImagesDir:       imagesDir,
	})
	return &server{e: e, db: db, svc: svc, tokens: tokens}
}

func (s *server) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *server) editorToken(t *testing.T) string {
	t.Helper()
	token, err := s.tokens.Issue(1, "editor", "", "editor")
	require.NoError(t, err)
	return token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestWritesRequireToken(t *testing.T) {
	s := newServer(t)
	body := `{"items":[{"value":"1","label":"x","icon":"y"}]}`

	rec := s.do(t, http.MethodPut, "/api/impact/stats", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/impact/stats", "garbage", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	viewer, err := s.tokens.Issue(2, "viewer", "", "viewer")
	require.NoError(t, err)
	rec = s.do(t, http.MethodPut, "/api/impact/stats", viewer, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var count int
	require.NoError(t, s.db.Get(&count, "SELECT COUNT(*) FROM stats"))
	assert.Zero(t, count)
}

func TestLoginThenReplaceStats(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPost, "/api/login", "", `{"username":"editor","password":"editor-pass"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login auth.LoginResponse
	decode(t, rec, &login)

	rec = s.do(t, http.MethodPut, "/api/impact/stats", login.Token,
		`{"items":[{"value":"500+","label":"Youth <b>Served</b>","icon":"users","position":9},{"value":"20","label":"Programs","icon":"book"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Stats updated successfully","count":2}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/impact/stats", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get(echo.HeaderCacheControl))
	assert.JSONEq(t, `{"items":[
		{"value":"500+","label":"Youth Served","icon":"users","position":1},
		{"value":"20","label":"Programs","icon":"book","position":2}
	]}`, rec.Body.String())
}

func TestLoginRateLimit(t *testing.T) {
	s := newServer(t)
	body := `{"username":"editor","password":"wrong-pass"}`

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/login", "", body).Code)
	}
	rec := s.do(t, http.MethodPost, "/api/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), apperrors.ErrCodeRateLimitExceeded)
}

func TestImpactCombinedUpdate(t *testing.T) {
	s := newServer(t)
	token := s.editorToken(t)

	rec := s.do(t, http.MethodPut, "/api/impact", token, `{
		"stats":[{"value":"1","label":"One","icon":"a"}],
		"testimonials":[{"quote":"Great","name":"Ana","program":"Code Club","avatar":"https://example.org/a.png"}]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp impact.UpdateResponse
	decode(t, rec, &resp)
	assert.Equal(t, "Impact data updated successfully", resp.Message)
	require.Len(t, resp.Testimonials, 1)
	assert.Equal(t, 1, resp.Testimonials[0].Position)

	// An invalid testimonial aborts the whole write, stats included.
	rec = s.do(t, http.MethodPut, "/api/impact", token, `{
		"stats":[{"value":"2","label":"Two","icon":"b"}],
		"testimonials":[{"quote":"","name":"Ben","program":"Art"}]
	}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errResp apperrors.ErrorResponse
	decode(t, rec, &errResp)
	assert.Equal(t, apperrors.ErrCodeValidationFailed, errResp.Error)
	require.NotEmpty(t, errResp.Fields)
	assert.Equal(t, "testimonials[0].quote", errResp.Fields[0].Field)

	rec = s.do(t, http.MethodGet, "/api/impact", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page impact.Page
	decode(t, rec, &page)
	require.Len(t, page.Stats, 1)
	assert.Equal(t, "One", page.Stats[0].Label)
	require.Len(t, page.Testimonials, 1)
	assert.Equal(t, "Ana", page.Testimonials[0].Name)
}

func TestImpactRequiresBothLists(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodPut, "/api/impact", s.editorToken(t), `{"stats":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHomeDefaultsThenUpdate(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodGet, "/api/home", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"title":"","description":"","image_url":"`+defaultHero+`"}`, rec.Body.String())

	token := s.editorToken(t)
	rec = s.do(t, http.MethodPut, "/api/home", token,
		`{"title":"Youth <script>x</script>Spark","description":"Empowering youth","image_url":"https://example.org/hero.jpg"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"Homepage content updated successfully"}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/home", "", "")
	assert.JSONEq(t, `{"title":"Youth Spark","description":"Empowering youth","image_url":"https://example.org/hero.jpg"}`, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/api/home", token, `{"title":"x","description":"y","image_url":"not a url"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/home", token, `{"title":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), apperrors.ErrCodeInvalidInput)
}

func TestAboutSeedAndUpdate(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodGet, "/api/about", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"vision":"<p>Empowering youth through innovation</p>",
		"mission":"<p>Building a brighter future</p>",
		"missionPoints":["Foster creativity","Support education"],
		"historyPoints":["Founded in 2020","Launched first program in 2021"]
	}`, rec.Body.String())

	token := s.editorToken(t)
	rec = s.do(t, http.MethodPut, "/api/about", token, `{
		"vision":"<p>See <b>far</b></p><script>alert(1)</script>",
		"mission":"<p>Do good</p>",
		"missionPoints":["Teach"],
		"historyPoints":["2020","2022","2024"]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/about", "", "")
	assert.JSONEq(t, `{
		"vision":"<p>See <b>far</b></p>",
		"mission":"<p>Do good</p>",
		"missionPoints":["Teach"],
		"historyPoints":["2020","2022","2024"]
	}`, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/api/about/history-points", token, `{"items":["Founded"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"message":"History points updated successfully","count":1}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/about/history-points", "", "")
	assert.JSONEq(t, `{"items":["Founded"]}`, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/about/mission-points", "", "")
	assert.JSONEq(t, `{"items":["Teach"]}`, rec.Body.String(), "mission points untouched by a history write")
}

func TestProgramsReplace(t *testing.T) {
	s := newServer(t)
	token := s.editorToken(t)

	rec := s.do(t, http.MethodGet, "/api/programs", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/api/programs", token,
		`{"items":[{"title":"Code Club","description":"Learn to code","icon":"laptop"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/api/programs", token, `{"items":[]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Programs updated successfully","count":0}`, rec.Body.String())

	rec = s.do(t, http.MethodPut, "/api/programs", token, `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp health.HealthResponse
	decode(t, rec, &resp)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test", resp.Version)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/live", "", "").Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/ready", "", "").Code)

	require.NoError(t, s.db.Close())
	rec = s.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	s := newServer(t)
	rec := s.do(t, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAboutUpdateRollsBackWhenHistoryWriteFails(t *testing.T) {
	s := newServer(t)
	before := s.do(t, http.MethodGet, "/api/about", "", "").Body.String()

	_, err := s.db.Exec(`CREATE TRIGGER fail_history_insert BEFORE INSERT ON history_points
		BEGIN SELECT RAISE(ABORT, 'forced failure'); END`)
	require.NoError(t, err)

	rec := s.do(t, http.MethodPut, "/api/about", s.editorToken(t), `{
		"vision":"<p>New vision</p>",
		"mission":"<p>New mission</p>",
		"missionPoints":["New point"],
		"historyPoints":["New history"]
	}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), apperrors.ErrCodeTransactionFailed)
	assert.NotContains(t, rec.Body.String(), "forced failure")

	after := s.do(t, http.MethodGet, "/api/about", "", "").Body.String()
	assert.JSONEq(t, before, after, "record and both lists are unchanged")
}

func TestReplaceRejectsOversizeList(t *testing.T) {
	s := newServer(t)

	items := make([]string, collection.MaxItems+1)
	for i := range items {
		items[i] = `{"value":"1","label":"Label","icon":"Icon"}`
	}
	rec := s.do(t, http.MethodPut, "/api/impact/stats", s.editorToken(t), `{"items":[`+strings.Join(items, ",")+`]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp apperrors.ErrorResponse
	decode(t, rec, &errResp)
	require.NotEmpty(t, errResp.Fields)
	assert.Equal(t, "items", errResp.Fields[0].Field)

	var count int
	require.NoError(t, s.db.Get(&count, "SELECT COUNT(*) FROM stats"))
	assert.Zero(t, count)
}

func TestPlainTextRoundTripsPunctuation(t *testing.T) {
	s := newServer(t)

	rec := s.do(t, http.MethodPut, "/api/impact/testimonials", s.editorToken(t),
		`{"items":[{"quote":"I've found my \"voice\" & my friends","name":"O'Neil","program":"Arts & Media"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/impact/testimonials", "", "")
	var got struct {
		Items []impact.Testimonial `json:"items"`
	}
	decode(t, rec, &got)
	require.Len(t, got.Items, 1)
	assert.Equal(t, `I've found my "voice" & my friends`, got.Items[0].Quote)
	assert.Equal(t, "O'Neil", got.Items[0].Name)
	assert.Equal(t, "Arts & Media", got.Items[0].Program)
}
