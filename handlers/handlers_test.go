package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"omtours/dashboard"
	"omtours/database"
	"omtours/middleware"
	"omtours/models"
	"omtours/services"
	"omtours/views"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ─── Fakes ────────────────────────────────────────────────────────────────────

type fakeGenerator struct {
	mu    sync.Mutex
	resp  *models.ItineraryResponse
	err   error
	calls []models.TripRequest
	// wait, when set, runs before answering; its error replaces the response.
	wait func(ctx context.Context) error
}

func (g *fakeGenerator) Generate(ctx context.Context, trip models.TripRequest) (*models.ItineraryResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, trip)
	if g.wait != nil {
		if err := g.wait(ctx); err != nil {
			return nil, err
		}
	}
	return g.resp, g.err
}

type fakeRoutes struct {
	route *services.Route
	err   error
	calls int
}

func (f *fakeRoutes) Route(_ context.Context, origin, destination string) (*services.Route, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r := *f.route
	r.Origin, r.Destination = origin, destination
	return &r, nil
}

type fakeArchive struct {
	saved   []models.TripRequest
	saveErr error
	items   map[string]*database.ArchivedItinerary
}

func (a *fakeArchive) Save(_ context.Context, req models.TripRequest, _ *models.ItineraryResponse) (string, error) {
	if a.saveErr != nil {
		return "", a.saveErr
	}
	a.saved = append(a.saved, req)
	return "itin-1", nil
}

func (a *fakeArchive) Get(_ context.Context, id string) (*database.ArchivedItinerary, error) {
	if it, ok := a.items[id]; ok {
		return it, nil
	}
	return nil, database.ErrNotFound
}

func (a *fakeArchive) Recent(_ context.Context, limit int) ([]database.ArchivedItinerary, error) {
	out := []database.ArchivedItinerary{}
	for _, it := range a.items {
		if len(out) == limit {
			break
		}
		out = append(out, *it)
	}
	return out, nil
}

func (a *fakeArchive) Ping(context.Context) error { return nil }

// ─── Helpers ──────────────────────────────────────────────────────────────────

func sampleItinerary() *models.ItineraryResponse {
	return &models.ItineraryResponse{
		TripSummary: models.TripSummary{From: "Pune", To: "Goa", TravelDates: []string{"2026-12-20", "2026-12-24"}, TotalBudget: 50000, Currency: "INR"},
		Transport: models.Transport{Selected: "train", Options: []models.TransportOption{
			{Mode: "train", Cost: 2400, Duration: "12h"},
			{Mode: "bus", Cost: 1500, Duration: "14h"},
		}},
		Budget: models.BudgetBreakdown{{Category: "stay", Amount: 20000}, {Category: "food", Amount: 12000}},
		Itinerary: []models.DayPlan{
			{Day: 1, Date: "2026-12-20", Activities: []string{"Arrive in Madgaon", "Colva beach"}, TransportUsed: "train"},
		},
	}
}

func tripForm() url.Values {
	return url.Values{
		"destination":       {"Goa"},
		"budget":            {"50000"},
		"start_date":        {"2026-12-20"},
		"end_date":          {"2026-12-24"},
		"number_of_people":  {"2"},
		"purpose":           {"Holiday"},
		"mode_of_transport": {"train"},
		"location":          {"Pune"},
	}
}

type testEnv struct {
	handler   *Handler
	router    *gin.Engine
	generator *fakeGenerator
	routes    *fakeRoutes
	archive   *fakeArchive
	store     dashboard.Store
}

func newEnv(t *testing.T, withArchive bool) *testEnv {
	t.Helper()
	return newEnvWith(t, withArchive, dashboard.NewMemoryStore(time.Hour), nil)
}

func newEnvWith(t *testing.T, withArchive bool, store dashboard.Store, limiter SubmitLimiter) *testEnv {
	t.Helper()
	env := &testEnv{
		generator: &fakeGenerator{resp: sampleItinerary()},
		routes: &fakeRoutes{route: &services.Route{
			Summary:  "NH48",
			Distance: 450000,
			Duration: 8*time.Hour + 20*time.Minute,
			Path:     orb.LineString{{73.85, 18.52}, {73.83, 15.49}},
		}},
		store: store,
	}

	var archive Archive
	if withArchive {
		env.archive = &fakeArchive{items: map[string]*database.ArchivedItinerary{}}
		archive = env.archive
	}

	env.handler = NewHandler(env.generator, env.routes, archive, env.store, views.NewFormatter("en-IN"),
		Options{BrowserKey: "browser-key", SignOutURL: "https://auth.example.com/signout", SessionTTL: time.Hour}, nil)

	tmpl, err := views.Templates()
	require.NoError(t, err)
	env.router = gin.New()
	env.router.SetHTMLTemplate(tmpl)
	env.handler.Register(env.router, limiter)
	return env
}

// browser replays the cookies the server sets, like a real browser would.
type browser struct {
	router  http.Handler
	cookies map[string]*http.Cookie
}

func (e *testEnv) browser() *browser {
	return &browser{router: e.router, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	return b.doContext(context.Background(), method, target, form)
}

func (b *browser) doContext(ctx context.Context, method, target string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body).WithContext(ctx)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, ck := range b.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	b.router.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(b.cookies, ck.Name)
			continue
		}
		b.cookies[ck.Name] = ck
	}
	return w
}

func (b *browser) page() string {
	return b.do(http.MethodGet, "/dashboard", nil).Body.String()
}

// ─── Dashboard ────────────────────────────────────────────────────────────────

func TestRootRedirectsToDashboard(t *testing.T) {
	env := newEnv(t, false)
	w := env.browser().do(http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestDashboardStartsOnForm(t *testing.T) {
	env := newEnv(t, false)
	w := env.browser().do(http.MethodGet, "/dashboard", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Plan Your Trip")
	assert.Contains(t, body, `value="car" checked`)
	assert.NotContains(t, body, "Error:")
}

func TestSubmitIncompleteFormShowsFirstMissingField(t *testing.T) {
	env := newEnv(t, false)
	b := env.browser()

	form := tripForm()
	form.Set("budget", "")
	form.Set("purpose", "")
	w := b.do(http.MethodPost, "/dashboard/itinerary", form)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))

	body := b.page()
	assert.Contains(t, body, "Budget is required")
	assert.Contains(t, body, `value="Goa"`)
	assert.Empty(t, env.generator.calls)
}

func TestSubmitShowsItinerary(t *testing.T) {
	env := newEnv(t, true)
	b := env.browser()

	w := b.do(http.MethodPost, "/dashboard/itinerary", tripForm())
	require.Equal(t, http.StatusSeeOther, w.Code)

	require.Len(t, env.generator.calls, 1)
	sent := env.generator.calls[0]
	assert.Equal(t, "Goa", sent.Destination)
	assert.Equal(t, models.TravelModeTrain, sent.TravelMode)
	assert.Equal(t, "Pune", sent.OriginLocation)

	body := b.page()
	assert.Contains(t, body, "Trip Summary")
	assert.Contains(t, body, "Sunday, December 20, 2026")
	assert.Contains(t, body, "Colva beach")
	assert.Contains(t, body, "width: 40.00%")

	require.Len(t, env.archive.saved, 1)
	assert.Equal(t, "Goa", env.archive.saved[0].Destination)
}

func TestSubmitFailureKeepsFormAndShowsMessage(t *testing.T) {
	env := newEnv(t, false)
	env.generator.resp = nil
	env.generator.err = &services.APIError{Status: http.StatusInternalServerError, Message: "Failed to fetch itinerary"}
	b := env.browser()

	b.do(http.MethodPost, "/dashboard/itinerary", tripForm())

	body := b.page()
	assert.Contains(t, body, "Failed to fetch itinerary")
	assert.Contains(t, body, `value="Goa"`)
	assert.Contains(t, body, "Generate Itinerary")
	assert.NotContains(t, body, "Generating...")
}

func TestSubmitArchiveFailureDoesNotAffectUser(t *testing.T) {
	env := newEnv(t, true)
	env.archive.saveErr = errors.New("db down")
	b := env.browser()

	b.do(http.MethodPost, "/dashboard/itinerary", tripForm())

	assert.Contains(t, b.page(), "Trip Summary")
}

func TestSubmitIgnoredWhileInFlight(t *testing.T) {
	env := newEnv(t, false)
	s := dashboard.NewSession()
	s.Loading = true
	require.NoError(t, env.store.Save(context.Background(), s))

	b := env.browser()
	b.cookies[sessionCookie] = &http.Cookie{Name: sessionCookie, Value: s.ID}

	w := b.do(http.MethodPost, "/dashboard/itinerary", tripForm())

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Empty(t, env.generator.calls)
	assert.Contains(t, b.page(), "Generating...")
}

func TestResetReturnsToFormWithValues(t *testing.T) {
	env := newEnv(t, false)
	b := env.browser()
	b.do(http.MethodPost, "/dashboard/itinerary", tripForm())
	require.Contains(t, b.page(), "Trip Summary")

	w := b.do(http.MethodPost, "/dashboard/reset", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)

	body := b.page()
	assert.Contains(t, body, "Plan Your Trip")
	assert.Contains(t, body, `value="Goa"`)
	assert.Contains(t, body, `value="train" checked`)
}

func TestDownloadCurrentPDF(t *testing.T) {
	env := newEnv(t, false)
	b := env.browser()

	w := b.do(http.MethodGet, "/dashboard/itinerary.pdf", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	b.do(http.MethodPost, "/dashboard/itinerary", tripForm())
	w = b.do(http.MethodGet, "/dashboard/itinerary.pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))
}

func TestLogoutClearsSession(t *testing.T) {
	env := newEnv(t, false)
	b := env.browser()
	b.do(http.MethodPost, "/dashboard/itinerary", tripForm())
	id := b.cookies[sessionCookie].Value

	w := b.do(http.MethodPost, "/logout", nil)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "https://auth.example.com/signout", w.Header().Get("Location"))
	assert.NotContains(t, b.cookies, sessionCookie)
	_, err := env.store.Get(context.Background(), id)
	assert.ErrorIs(t, err, dashboard.ErrSessionNotFound)
	assert.Contains(t, b.page(), "Plan Your Trip")
}

func TestRateLimitShownOnForm(t *testing.T) {
	env := newEnvWith(t, false, dashboard.NewMemoryStore(time.Hour), middleware.NewRateLimiter(1, nil))
	b := env.browser()

	b.do(http.MethodPost, "/dashboard/itinerary", tripForm())
	require.Len(t, env.generator.calls, 1)
	b.do(http.MethodPost, "/dashboard/reset", nil)

	w := b.do(http.MethodPost, "/dashboard/itinerary", tripForm())
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard", w.Header().Get("Location"))
	assert.Len(t, env.generator.calls, 1)

	body := b.page()
	assert.Contains(t, body, "Too many requests. Please wait a minute and try again.")
	assert.Contains(t, body, `value="Goa"`)

	w = postJSON(env, "/api/itinerary", jsonTrip())
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many requests")
}

func TestCancelledSubmitClearsLoadingInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := dashboard.NewRedisStore(client, time.Hour)
	env := newEnvWith(t, false, store, nil)

	ctx, cancel := context.WithCancel(context.Background())
	env.generator.wait = func(reqCtx context.Context) error {
		cancel()
		<-reqCtx.Done()
		return reqCtx.Err()
	}
	b := env.browser()

	w := b.doContext(ctx, http.MethodPost, "/dashboard/itinerary", tripForm())
	assert.Equal(t, http.StatusSeeOther, w.Code)

	saved, err := store.Get(context.Background(), b.cookies[sessionCookie].Value)
	require.NoError(t, err)
	assert.False(t, saved.Loading)
	assert.Equal(t, context.Canceled.Error(), saved.Error)

	body := b.page()
	assert.Contains(t, body, "Generate Itinerary")
	assert.NotContains(t, body, "Generating...")

	env.generator.wait = nil
	b.do(http.MethodPost, "/dashboard/itinerary", tripForm())
	assert.Len(t, env.generator.calls, 2)
	assert.Contains(t, b.page(), "Trip Summary")
}
