package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"expensetracker/internal/core"
	"expensetracker/internal/services"
	"expensetracker/internal/storage"
	"expensetracker/internal/token"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	repo, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	tokens := token.NewService(testSecret, 8*time.Hour)
	auth := services.NewAuthService(repo, tokens, bcrypt.MinCost)
	expenses := services.NewExpenseService(repo, nil)

	return NewServer(":0", auth, expenses, tokens)
}

func doJSON(t *testing.T, srv *Server, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

// signupAndLogin registers a user and returns its id and access token.
func signupAndLogin(t *testing.T, srv *Server, username string) (int64, string) {
	t.Helper()
	rr := doJSON(t, srv, http.MethodPost, "/signup", "", map[string]string{
		"actual_name": "Test User",
		"username":    username,
		"password":    "Abcdefg1",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = doJSON(t, srv, http.MethodPost, "/login", "", map[string]string{
		"username": username,
		"password": "Abcdefg1",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		User struct {
			ID int64 `json:"id"`
		} `json:"user"`
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "bearer", resp.TokenType)
	require.NotEmpty(t, resp.AccessToken)
	return resp.User.ID, resp.AccessToken
}

func TestRootAndHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Expense Tracker API is running")

	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}
}

func TestSignupValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		password string
		want     string
	}{
		{"too short", "Ab1", "8 characters"},
		{"no uppercase", "abcdefg1", "uppercase"},
		{"no lowercase", "ABCDEFG1", "lowercase"},
		{"no digit", "Abcdefgh", "digit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, srv, http.MethodPost, "/signup", "", map[string]string{
				"actual_name": "Test", "username": "u_" + tt.name, "password": tt.password,
			})
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.want)
		})
	}

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/signup", bytes.NewBufferString("{not json"))
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestSignupDuplicateUsername(t *testing.T) {
	srv := newTestServer(t)
	signupAndLogin(t, srv, "alice")

	rr := doJSON(t, srv, http.MethodPost, "/signup", "", map[string]string{
		"actual_name": "Other", "username": "alice", "password": "Abcdefg1",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "already exists")
}

func TestLoginInvalidCredentials(t *testing.T) {
	srv := newTestServer(t)
	signupAndLogin(t, srv, "alice")

	unknown := doJSON(t, srv, http.MethodPost, "/login", "", map[string]string{
		"username": "mallory", "password": "Abcdefg1",
	})
	wrongPassword := doJSON(t, srv, http.MethodPost, "/login", "", map[string]string{
		"username": "alice", "password": "Wrongpass1",
	})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	// Identical bodies: no username enumeration.
	assert.Equal(t, unknown.Body.String(), wrongPassword.Body.String())
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	srv := newTestServer(t)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/expenses/1/2024-01-01"},
		{http.MethodPost, "/expenses/2024-01-01"},
		{http.MethodGet, "/analytics_by_category/1?start_date=2024-01-01&end_date=2024-01-31"},
		{http.MethodGet, "/analytics_by_months/1"},
	}
	for _, p := range paths {
		rr := doJSON(t, srv, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, p.path)

		rr = doJSON(t, srv, p.method, p.path, "garbage-token", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, p.path)
	}
}

func TestReplaceAndGetExpenses(t *testing.T) {
	srv := newTestServer(t)
	userID, tok := signupAndLogin(t, srv, "alice")

	rr := doJSON(t, srv, http.MethodPost, "/expenses/2024-01-15", tok, []core.Expense{
		{Amount: 12.5, Category: "food", Notes: "lunch", UserID: userID},
		{Amount: 3, Category: "transport", Notes: "", UserID: userID},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"count":2`)

	rr = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/expenses/%d/2024-01-15", userID), tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got []core.Expense
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
	categories := []string{got[0].Category, got[1].Category}
	assert.ElementsMatch(t, []string{"Food", "Transport"}, categories)
}

func TestGetExpensesEmptyDayReturnsEmptyList(t *testing.T) {
	srv := newTestServer(t)
	userID, tok := signupAndLogin(t, srv, "alice")

	rr := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/expenses/%d/2024-06-01", userID), tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestExpenseValidationErrors(t *testing.T) {
	srv := newTestServer(t)
	userID, tok := signupAndLogin(t, srv, "alice")

	t.Run("bad date on get", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/expenses/%d/01-15-2024", userID), tok, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "YYYY-MM-DD")
	})

	t.Run("bad date on replace", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/expenses/someday", tok, []core.Expense{
			{Amount: 10, Category: "Food", UserID: userID},
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("empty batch", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodPost, "/expenses/2024-01-15", tok, []core.Expense{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "no expenses provided")
	})

	t.Run("bad user id segment", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodGet, "/expenses/abc/2024-01-15", tok, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCrossUserAccessForbidden(t *testing.T) {
	srv := newTestServer(t)
	aliceID, aliceTok := signupAndLogin(t, srv, "alice")
	bobID, _ := signupAndLogin(t, srv, "bob")

	rr := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/expenses/%d/2024-01-01", bobID), aliceTok, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = doJSON(t, srv, http.MethodPost, "/expenses/2024-01-01", aliceTok, []core.Expense{
		{Amount: 10, Category: "Food", UserID: bobID},
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// A mixed batch is rejected even when the first element is the caller's.
	rr = doJSON(t, srv, http.MethodPost, "/expenses/2024-01-01", aliceTok, []core.Expense{
		{Amount: 10, Category: "Food", UserID: aliceID},
		{Amount: 20, Category: "Rent", UserID: bobID},
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = doJSON(t, srv, http.MethodGet,
		fmt.Sprintf("/analytics_by_category/%d?start_date=2024-01-01&end_date=2024-12-31", bobID), aliceTok, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/analytics_by_months/%d", bobID), aliceTok, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestAnalyticsByCategory(t *testing.T) {
	srv := newTestServer(t)
	userID, tok := signupAndLogin(t, srv, "alice")

	rr := doJSON(t, srv, http.MethodPost, "/expenses/2024-03-10", tok, []core.Expense{
		{Amount: 10, Category: "food", UserID: userID},
		{Amount: 15, Category: "FOOD", UserID: userID},
		{Amount: 40, Category: "rent", UserID: userID},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = doJSON(t, srv, http.MethodGet,
		fmt.Sprintf("/analytics_by_category/%d?start_date=2024-03-01&end_date=2024-03-31", userID), tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var summary []core.CategorySummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	assert.ElementsMatch(t, []core.CategorySummary{
		{Category: "Food", Total: 25},
		{Category: "Rent", Total: 40},
	}, summary)

	t.Run("missing range params", func(t *testing.T) {
		rr := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/analytics_by_category/%d", userID), tok, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAnalyticsByMonths(t *testing.T) {
	srv := newTestServer(t)
	userID, tok := signupAndLogin(t, srv, "alice")

	for date, amount := range map[string]float64{
		"2024-01-10": 50,
		"2024-02-10": 30,
	} {
		rr := doJSON(t, srv, http.MethodPost, "/expenses/"+date, tok, []core.Expense{
			{Amount: amount, Category: "Food", UserID: userID},
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}

	rr := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/analytics_by_months/%d", userID), tok, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var summary []core.MonthlySummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
	require.Len(t, summary, 2)
	assert.Equal(t, "February 2024", summary[0].MonthName)
	assert.Equal(t, 30.0, summary[0].Total)
	assert.Equal(t, "January 2024", summary[1].MonthName)
	assert.Equal(t, 50.0, summary[1].Total)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/expenses/1/2024-01-01", nil)
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}
