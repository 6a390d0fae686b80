package web_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harborpoint/customerd/internal/domain"
	"github.com/harborpoint/customerd/internal/service"
	"github.com/harborpoint/customerd/internal/store/drivers/sqlite"
	"github.com/harborpoint/customerd/internal/web"
	"github.com/harborpoint/customerd/pkg/httpx"
	"github.com/harborpoint/customerd/pkg/jwtx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testUI struct {
	handler http.Handler
	auth    *service.AuthService
	cookies []*http.Cookie
}

func newTestUI(t *testing.T) *testUI {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSignerHS256([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	auth := &service.AuthService{
		Store:    st,
		Signer:   signer,
		Issuer:   "customerd-test",
		Audience: []string{"customerd-test"},
	}
	customers := &service.CustomerService{Store: st}

	handler := web.NewHandler(auth, customers, []byte("session-test-key"),
		slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	return &testUI{handler: handler.Routes(), auth: auth}
}

// do performs a request, carrying session cookies across calls like a
// browser would.
func (ui *testUI) do(t *testing.T, method, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range ui.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	ui.handler.ServeHTTP(rec, req)

	if set := rec.Result().Cookies(); len(set) > 0 {
		ui.cookies = set
	}
	return rec
}

func (ui *testUI) login(t *testing.T, username, role string) {
	t.Helper()
	ctx := context.Background()

	_, err := ui.auth.Register(ctx, username, "test-password", role)
	require.NoError(t, err)

	rec := ui.do(t, http.MethodPost, "/login", url.Values{
		"username": {username},
		"password": {"test-password"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/customers", rec.Header().Get("Location"))
}

func TestLoginPage(t *testing.T) {
	ui := newTestUI(t)

	rec := ui.do(t, http.MethodGet, "/login", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<form method=\"post\" action=\"/login\">")
}

func TestLogin_BadCredentialsFlashes(t *testing.T) {
	ui := newTestUI(t)

	rec := ui.do(t, http.MethodPost, "/login", url.Values{
		"username": {"nobody"},
		"password": {"wrong"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	// The flash shows up on the login page and is then consumed.
	rec = ui.do(t, http.MethodGet, "/login", nil)
	assert.Contains(t, rec.Body.String(), "Invalid username or password.")

	rec = ui.do(t, http.MethodGet, "/login", nil)
	assert.NotContains(t, rec.Body.String(), "Invalid username or password.")
}

func TestLogin_RateLimited(t *testing.T) {
	ui := newTestUI(t)

	form := url.Values{
		"username": {"nobody"},
		"password": {"wrong"},
	}
	for i := 0; i < httpx.StrictLimit.Burst; i++ {
		rec := ui.do(t, http.MethodPost, "/login", form)
		require.Equal(t, http.StatusSeeOther, rec.Code)
	}

	rec := ui.do(t, http.MethodPost, "/login", form)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestCustomers_RedirectsAnonymousToLogin(t *testing.T) {
	ui := newTestUI(t)

	rec := ui.do(t, http.MethodGet, "/customers", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestCustomers_ListAndSearch(t *testing.T) {
	ui := newTestUI(t)
	ui.login(t, "admin", domain.RoleAdmin)

	rec := ui.do(t, http.MethodPost, "/customers/new", url.Values{
		"first_name":        {"Jane"},
		"last_name":         {"Doe"},
		"email":             {"jane@example.com"},
		"region":            {"EMEA"},
		"registration_date": {"2024-05-01"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = ui.do(t, http.MethodGet, "/customers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Customer created.")
	assert.Contains(t, rec.Body.String(), "jane@example.com")

	rec = ui.do(t, http.MethodGet, "/customers?name=smith", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No customers found.")
}

func TestCustomers_MutationsRequireAdmin(t *testing.T) {
	ui := newTestUI(t)
	ui.login(t, "bob", domain.RoleUser)

	rec := ui.do(t, http.MethodGet, "/customers/new", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/customers", rec.Header().Get("Location"))

	rec = ui.do(t, http.MethodGet, "/customers", nil)
	assert.Contains(t, rec.Body.String(), "administrator rights")
	// Non-admins don't get the add link either.
	assert.NotContains(t, rec.Body.String(), "/customers/new")
}

func TestLogout_ClearsSession(t *testing.T) {
	ui := newTestUI(t)
	ui.login(t, "alice", domain.RoleUser)

	rec := ui.do(t, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	rec = ui.do(t, http.MethodGet, "/customers", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}
