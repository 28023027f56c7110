package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/gofiber/template/html/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"textrecords/internal/config"
	"textrecords/internal/db"
	"textrecords/internal/models"
	"textrecords/internal/tally"
)

const groceries = "apple\nBanana\napple\ncarrot\nbanana"

type fakeRecordStore struct {
	entries []tally.Entry
	batches map[uuid.UUID]bool
	saves   int
}

func (s *fakeRecordStore) LoadRecords(_ context.Context, _ uuid.UUID) ([]tally.Entry, error) {
	return s.entries, nil
}

func (s *fakeRecordStore) SaveRecords(_ context.Context, _, batchID uuid.UUID, entries []tally.Entry) (bool, error) {
	if s.batches == nil {
		s.batches = make(map[uuid.UUID]bool)
	}
	if s.batches[batchID] {
		return false, nil
	}
	s.batches[batchID] = true
	s.saves++
	s.entries = append(s.entries, entries...)
	return true, nil
}

type fakeAccountStore struct {
	users map[string]*models.User
}

func (s *fakeAccountStore) CreateLocalUser(_ context.Context, user *models.User) error {
	if s.users == nil {
		s.users = make(map[string]*models.User)
	}
	if _, ok := s.users[user.Email]; ok {
		return db.ErrDuplicateEmail
	}
	user.ID = uuid.New()
	user.Sub = models.LocalSub(user.Email)
	user.Provider = models.ProviderLocal
	s.users[user.Email] = user
	return nil
}

func (s *fakeAccountStore) GetLocalUserByEmail(_ context.Context, email string) (*models.User, error) {
	if user, ok := s.users[email]; ok {
		return user, nil
	}
	return nil, db.ErrUserNotFound
}

// client replays session cookies between requests.
type client struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]*http.Cookie
}

func (c *client) do(req *http.Request) (*http.Response, string) {
	c.t.Helper()
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	resp, err := c.app.Test(req)
	require.NoError(c.t, err)
	for _, ck := range resp.Cookies() {
		c.cookies[ck.Name] = ck
	}
	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, string(body)
}

func (c *client) get(target string) (*http.Response, string) {
	return c.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (c *client) post(target string, form url.Values, htmx bool) (*http.Response, string) {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	return c.do(req)
}

type testEnv struct {
	*client
	cfg      *config.Config
	records  *fakeRecordStore
	accounts *fakeAccountStore
	login    *AccountHandler
}

func newTestEnv(t *testing.T, user *models.User) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Env:                 "development",
		MaxInputBytes:       1024,
		EnableLocalAccounts: true,
		SiteTitle:           "Text Record Processor",
	}
	display := config.DefaultYAMLConfig()
	logger := zap.NewNop()

	engine := html.New("../../views", ".html")
	app := fiber.New(fiber.Config{Views: engine, ViewsLayout: "layouts/main"})
	app.Use(session.New())
	app.Use(func(c fiber.Ctx) error {
		if user != nil {
			c.Locals("user", user)
		}
		return c.Next()
	})

	env := &testEnv{
		client:   &client{t: t, app: app, cookies: make(map[string]*http.Cookie)},
		cfg:      cfg,
		records:  &fakeRecordStore{},
		accounts: &fakeAccountStore{},
	}

	tallies := NewTallyHandler(cfg, display, logger)
	app.Get("/", tallies.Index)
	app.Get("/sample", tallies.Sample)
	app.Post("/process", tallies.Process)
	app.Post("/view/toggle", tallies.ToggleView)
	app.Get("/search", tallies.Search)
	app.Get("/filter", tallies.Filter)
	app.Get("/suggest", tallies.Suggest)

	records := NewRecordsHandler(env.records, cfg, display, logger)
	app.Get("/records", records.History)
	app.Post("/records/save", records.Save)

	accounts := NewAccountHandler(env.accounts, cfg, logger)
	accounts.cost = bcrypt.MinCost
	env.login = accounts
	app.Get("/login", accounts.ShowLogin)
	app.Post("/login", accounts.Login)
	app.Get("/register", accounts.ShowRegister)
	app.Post("/register", accounts.Register)
	app.Get("/auth/logout", Logout)

	return env
}

func testUser() *models.User {
	return &models.User{ID: uuid.New(), Sub: "local|ada@example.com", Email: "ada@example.com", Name: "Ada"}
}

func (e *testEnv) process(text string) {
	e.t.Helper()
	resp, _ := e.post("/process", url.Values{"text": {text}}, false)
	require.Equal(e.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(e.t, "/", resp.Header.Get("Location"))
}

func TestIndex_Empty(t *testing.T) {
	env := newTestEnv(t, testUser())

	resp, body := env.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `action="/process"`)
	assert.NotContains(t, body, "unique,")
}

func TestProcess_ShowsOrderedTally(t *testing.T) {
	env := newTestEnv(t, testUser())
	env.process(groceries)

	resp, body := env.get("/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "4 unique, 5 total")

	order := []string{"<td>Banana</td>", "<td>apple</td>", "<td>banana</td>", "<td>carrot</td>"}
	last := -1
	for _, cell := range order {
		i := strings.Index(body, cell)
		require.Greater(t, i, last, "expected %s after previous row", cell)
		last = i
	}
}

func TestProcess_EmptyInput(t *testing.T) {
	env := newTestEnv(t, testUser())
	env.process("   \n\n  ")

	_, body := env.get("/")
	assert.Contains(t, body, "0 unique, 0 total")
	assert.Contains(t, body, "No records.")

	_, body = env.post("/records/save", nil, true)
	assert.Contains(t, body, "Process some text before saving")
	assert.Zero(t, env.records.saves)
}

func TestTextStatus(t *testing.T) {
	assert.Equal(t, http.StatusRequestEntityTooLarge, textStatus("0123456789a", 10))
	assert.Equal(t, http.StatusBadRequest, textStatus("milk\xff", 10))
}

func TestProcess_TooLarge(t *testing.T) {
	env := newTestEnv(t, testUser())

	resp, body := env.post("/process", url.Values{"text": {strings.Repeat("x\n", 1024)}}, false)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Contains(t, body, "too large")
}

func TestProcess_InvalidUTF8(t *testing.T) {
	env := newTestEnv(t, testUser())

	resp, body := env.post("/process", url.Values{"text": {"milk\xff\neggs"}}, false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "valid UTF-8")
}

func TestSample(t *testing.T) {
	env := newTestEnv(t, testUser())

	resp, body := env.get("/sample?name=groceries")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Coffee")

	resp, _ = env.get("/sample?name=nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t, testUser())
	env.process("milk\neggs\nmilk")

	tests := []struct {
		name   string
		query  string
		status int
		want   string
	}{
		{"case insensitive", "MILK", http.StatusOK, "Found <strong>milk</strong> at position 2 with count 2."},
		{"not found", "bread", http.StatusOK, "No record matches"},
		{"empty query", "  ", http.StatusBadRequest, "Enter an item to search for"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.get("/search?q=" + url.QueryEscape(tt.query))
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Contains(t, body, tt.want)
		})
	}
}

func TestFilter(t *testing.T) {
	env := newTestEnv(t, testUser())
	env.process(groceries)

	resp, body := env.get("/filter?q=AN")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<td>Banana</td>")
	assert.Contains(t, body, "<td>banana</td>")
	assert.NotContains(t, body, "carrot")
	assert.NotContains(t, body, "<html")

	_, body = env.get("/filter?q=zzz")
	assert.Contains(t, body, "No records contain")
}

func TestSuggest(t *testing.T) {
	env := newTestEnv(t, testUser())
	env.process(groceries)

	_, body := env.get("/suggest?q=ba")
	assert.Contains(t, body, ">Banana</a>")
	assert.Contains(t, body, ">banana</a>")
	assert.NotContains(t, body, "apple")

	_, body = env.get("/suggest?q=")
	assert.Empty(t, body)
}

func TestToggleView(t *testing.T) {
	env := newTestEnv(t, testUser())
	env.process(groceries)

	resp, _ := env.post("/view/toggle", url.Values{"return": {"/"}}, false)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	_, body := env.get("/")
	assert.Contains(t, body, `class="chart"`)
	assert.Contains(t, body, "Show list")

	env.post("/view/toggle", url.Values{"return": {"https://evil.example"}}, false)
	_, body = env.get("/")
	assert.NotContains(t, body, `class="chart"`)
	assert.Contains(t, body, "Show histogram")
}

func TestSave(t *testing.T) {
	env := newTestEnv(t, testUser())

	_, body := env.post("/records/save", nil, true)
	assert.Contains(t, body, "Process some text before saving")

	env.process(groceries)

	_, body = env.post("/records/save", nil, true)
	assert.Contains(t, body, "Saved 4 records.")

	_, body = env.post("/records/save", nil, true)
	assert.Contains(t, body, "already saved")
	assert.Equal(t, 1, env.records.saves)

	env.process("milk")
	resp, _ := env.post("/records/save", nil, false)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/records", resp.Header.Get("Location"))
	assert.Equal(t, 2, env.records.saves)
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t, testUser())
	env.records.entries = []tally.Entry{{Key: "carrot", Count: 3}, {Key: "Apple", Count: 7}}

	resp, body := env.get("/records")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "2 unique, 10 total")
	assert.Less(t, strings.Index(body, "<td>Apple</td>"), strings.Index(body, "<td>carrot</td>"))

	_, body = env.get("/records?q=apple")
	assert.Contains(t, body, "Found <strong>Apple</strong> at position 1 with count 7.")
}

func TestHistory_Empty(t *testing.T) {
	env := newTestEnv(t, testUser())

	_, body := env.get("/records")
	assert.Contains(t, body, "Nothing saved yet.")
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, _ := env.post("/register", url.Values{
		"email":    {"  Ada@Example.com "},
		"password": {"secret1"},
		"name":     {"Ada"},
	}, false)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	user, ok := env.accounts.users["ada@example.com"]
	require.True(t, ok)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	resp, body := env.post("/register", url.Values{
		"email":    {"ada@example.com"},
		"password": {"another1"},
	}, false)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, db.ErrDuplicateEmail.Error())

	resp, _ = env.post("/login", url.Values{"email": {"ada@example.com"}, "password": {"secret1"}}, false)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     string
	}{
		{"bad email", "not-an-email", "secret1", "Invalid email address"},
		{"missing email", "", "secret1", "Email is required"},
		{"short password", "ada@example.com", "abc", "at least 6 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			resp, body := env.post("/register", url.Values{"email": {tt.email}, "password": {tt.password}}, false)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Contains(t, body, tt.want)
			assert.Empty(t, env.accounts.users)
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t, nil)
	env.post("/register", url.Values{"email": {"ada@example.com"}, "password": {"secret1"}}, false)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "ada@example.com", "wrong-password"},
		{"unknown email", "bob@example.com", "secret1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.post("/login", url.Values{"email": {tt.email}, "password": {tt.password}}, false)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Contains(t, body, invalidCredentials)
		})
	}
}

func TestLogin_UnknownEmailStillComparesHash(t *testing.T) {
	env := newTestEnv(t, nil)
	env.post("/register", url.Values{"email": {"ada@example.com"}, "password": {"secret1"}}, false)

	var hashes [][]byte
	env.login.compare = func(hash, password []byte) error {
		hashes = append(hashes, hash)
		return bcrypt.CompareHashAndPassword(hash, password)
	}

	resp, _ := env.post("/login", url.Values{"email": {"nobody@example.com"}, "password": {"secret1"}}, false)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.post("/login", url.Values{"email": {"ada@example.com"}, "password": {"secret1"}}, false)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	require.Len(t, hashes, 2)
	cost, err := bcrypt.Cost(hashes[0])
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
	assert.NotEqual(t, hashes[0], hashes[1])
}

func TestShowLogin_RedirectsSignedInUser(t *testing.T) {
	env := newTestEnv(t, testUser())

	resp, _ := env.get("/login")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestBuildChart(t *testing.T) {
	entries := []tally.Entry{{Key: "a", Count: 200}, {Key: "b", Count: 1}, {Key: "c", Count: 100}}

	chart := BuildChart(entries, 0)
	assert.Equal(t, []Bar{
		{Label: "a", Count: 200, Percent: 100},
		{Label: "b", Count: 1, Percent: 1},
		{Label: "c", Count: 100, Percent: 50},
	}, chart.Bars)
	assert.Zero(t, chart.Hidden)

	chart = BuildChart(entries, 2)
	assert.Len(t, chart.Bars, 2)
	assert.Equal(t, 1, chart.Hidden)

	assert.Empty(t, BuildChart(nil, 10).Bars)
}
