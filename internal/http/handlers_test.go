package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/harborpoint/customerd/internal/domain"
	internalhttp "github.com/harborpoint/customerd/internal/http"
	"github.com/harborpoint/customerd/internal/service"
	"github.com/harborpoint/customerd/internal/store/drivers/sqlite"
	"github.com/harborpoint/customerd/pkg/jwtx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSigningKey = []byte("0123456789abcdef0123456789abcdef")

const testIssuer = "customerd-test"

type testServer struct {
	router *internalhttp.Router
	auth   *service.AuthService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	st, err := sqlite.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	signer, err := jwtx.NewSignerHS256(testSigningKey)
	require.NoError(t, err)
	verifier, err := jwtx.NewVerifierHS256(testSigningKey, testIssuer, []string{testIssuer})
	require.NoError(t, err)

	auth := &service.AuthService{
		Store:    st,
		Signer:   signer,
		Issuer:   testIssuer,
		Audience: []string{testIssuer},
	}

	router := internalhttp.NewRouter(verifier, "test", st,
		slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	router.AuthService = auth
	router.CustomerService = &service.CustomerService{Store: st}
	router.ApplyRoutes()

	return &testServer{router: router, auth: auth}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// registerAndLogin creates a user with the given role and returns a token.
func (s *testServer) registerAndLogin(t *testing.T, username, role string) string {
	t.Helper()
	ctx := context.Background()

	_, err := s.auth.Register(ctx, username, "test-password", role)
	require.NoError(t, err)

	result, err := s.auth.Login(ctx, username, "test-password")
	require.NoError(t, err)
	return result.Token
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestLoginEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/auth/register", "", internalhttp.CredentialsRequest{
		Username: "alice", Password: "s3cret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	registered := decodeBody[internalhttp.RegisterResponse](t, rec)
	assert.Equal(t, "alice", registered.Username)
	assert.Equal(t, domain.RoleUser, registered.Role)

	t.Run("valid credentials", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/api/auth/login", "", internalhttp.CredentialsRequest{
			Username: "alice", Password: "s3cret",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		// Clients depend on these exact keys.
		raw := decodeBody[map[string]json.RawMessage](t, rec)
		require.Contains(t, raw, "token")
		require.Contains(t, raw, "expiration")

		var resp internalhttp.LoginResponse
		require.NoError(t, json.Unmarshal(raw["token"], &resp.Token))
		require.NoError(t, json.Unmarshal(raw["expiration"], &resp.Expiration))
		assert.NotEmpty(t, resp.Token)
		assert.InDelta(t, jwtx.DefaultTokenTTL.Seconds(),
			time.Until(resp.Expiration).Seconds(), 5)
	})

	t.Run("wrong password and unknown user look identical", func(t *testing.T) {
		wrongPass := srv.do(t, http.MethodPost, "/api/auth/login", "", internalhttp.CredentialsRequest{
			Username: "alice", Password: "nope",
		})
		unknown := srv.do(t, http.MethodPost, "/api/auth/login", "", internalhttp.CredentialsRequest{
			Username: "nobody", Password: "nope",
		})

		assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.JSONEq(t, wrongPass.Body.String(), unknown.Body.String())
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := srv.do(t, http.MethodPost, "/api/auth/login", "", internalhttp.CredentialsRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRegisterEndpoint_Duplicate(t *testing.T) {
	srv := newTestServer(t)

	body := internalhttp.CredentialsRequest{Username: "alice", Password: "s3cret"}
	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/auth/register", "", body).Code)

	rec := srv.do(t, http.MethodPost, "/api/auth/register", "", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCustomerEndpoints_RequireAuth(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/customers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
}

func TestCustomerEndpoints_WritesRequireAdmin(t *testing.T) {
	srv := newTestServer(t)
	userToken := srv.registerAndLogin(t, "bob", domain.RoleUser)

	body := internalhttp.CustomerRequest{
		FirstName:        "Jane",
		LastName:         "Doe",
		Email:            "jane@example.com",
		Region:           "EMEA",
		RegistrationDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	rec := srv.do(t, http.MethodPost, "/api/customers", userToken, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Reads are still allowed for the User role.
	rec = srv.do(t, http.MethodGet, "/api/customers", userToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCustomerEndpoints_CRUD(t *testing.T) {
	srv := newTestServer(t)
	adminToken := srv.registerAndLogin(t, "admin", domain.RoleAdmin)

	body := internalhttp.CustomerRequest{
		FirstName:        "Jane",
		LastName:         "Doe",
		Email:            "jane@example.com",
		Region:           "EMEA",
		RegistrationDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	rec := srv.do(t, http.MethodPost, "/api/customers", adminToken, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[internalhttp.CustomerResponse](t, rec)
	require.NotEmpty(t, created.ID)

	rec = srv.do(t, http.MethodGet, "/api/customers/"+created.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[internalhttp.CustomerResponse](t, rec)
	assert.Equal(t, "Jane", got.FirstName)

	body.Email = "jane.doe@example.com"
	rec = srv.do(t, http.MethodPut, "/api/customers/"+created.ID, adminToken, body)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[internalhttp.CustomerResponse](t, rec)
	assert.Equal(t, "jane.doe@example.com", updated.Email)

	rec = srv.do(t, http.MethodDelete, "/api/customers/"+created.ID, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/customers/"+created.ID, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomerEndpoints_UpdateMissing(t *testing.T) {
	srv := newTestServer(t)
	adminToken := srv.registerAndLogin(t, "admin", domain.RoleAdmin)

	body := internalhttp.CustomerRequest{
		FirstName:        "Jane",
		LastName:         "Doe",
		Email:            "jane@example.com",
		RegistrationDate: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	rec := srv.do(t, http.MethodPut, "/api/customers/nonexistent", adminToken, body)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodDelete, "/api/customers/nonexistent", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCustomerFilterEndpoint(t *testing.T) {
	srv := newTestServer(t)
	adminToken := srv.registerAndLogin(t, "admin", domain.RoleAdmin)

	seed := func(first, last, region, date string) {
		registered, err := time.Parse("2006-01-02", date)
		require.NoError(t, err)
		rec := srv.do(t, http.MethodPost, "/api/customers", adminToken, internalhttp.CustomerRequest{
			FirstName:        first,
			LastName:         last,
			Email:            first + "@example.com",
			Region:           region,
			RegistrationDate: registered,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	seed("Jane", "Doe", "EMEA", "2024-01-15")
	seed("John", "Smith", "APAC", "2024-06-15")

	t.Run("by name", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/customers/filter?name=smith", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[[]internalhttp.CustomerResponse](t, rec)
		require.Len(t, got, 1)
		assert.Equal(t, "John", got[0].FirstName)
	})

	t.Run("by date range", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet,
			"/api/customers/filter?startDate=2024-01-01&endDate=2024-03-01", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[[]internalhttp.CustomerResponse](t, rec)
		require.Len(t, got, 1)
		assert.Equal(t, "Jane", got[0].FirstName)
	})

	t.Run("bad date", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/customers/filter?startDate=yesterday", adminToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no params returns everyone", func(t *testing.T) {
		rec := srv.do(t, http.MethodGet, "/api/customers/filter", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decodeBody[[]internalhttp.CustomerResponse](t, rec)
		assert.Len(t, got, 2)
	})
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	live := decodeBody[internalhttp.HealthResponse](t, rec)
	assert.Equal(t, "ok", live.Status)

	rec = srv.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ready := decodeBody[internalhttp.HealthResponse](t, rec)
	require.NotNil(t, ready.Checks)
	assert.Equal(t, "ok", ready.Checks.Database)
}
