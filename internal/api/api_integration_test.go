// internal/api/api_integration_test.go
package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "monetrax-ledger/internal"
	"monetrax-ledger/internal/api/types"
	"monetrax-ledger/internal/domain"
)

// testApp is the global application instance for testing.
var testApp *app.Application

// testServer is the httptest server.
var testServer *httptest.Server

// TestMain is the special entry point for Go tests, executed once before all tests.
func TestMain(m *testing.M) {
	// 1. Run against the in-memory store so no files or database are needed.
	setupEnvVars()

	// 2. Initialize the application.
	testApp = app.NewApplication()
	if err := testApp.Initialize(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize test application: %v\n", err)
		os.Exit(1) // Exit tests if initialization fails
	}

	// 3. Start an httptest server to test the HTTP handling layer.
	testServer = httptest.NewServer(testApp.HTTPHandler)

	// 4. Run all tests.
	code := m.Run()
	testServer.Close()

	// 5. Shut down application resources after tests.
	if err := testApp.Shutdown(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to shutdown test application: %v\n", err)
		os.Exit(1)
	}

	os.Exit(code)
}

// setupEnvVars points the application at volatile storage.
func setupEnvVars() {
	os.Setenv("STORE_DRIVER", "memory")
	os.Setenv("CURRENCY", "USD")
	os.Setenv("RETENTION_CAP", "100")
	os.Setenv("LOG_LEVEL", "error")
	os.Unsetenv("MONETRAX_CONFIG")
}

// makeRequest helper function: sends an HTTP request to the test server.
func makeRequest(t *testing.T, method, path string, body io.Reader) (*http.Response, string) {
	req, err := http.NewRequest(method, testServer.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	// The caller closes the body after checking headers.
	return resp, string(respBody)
}

func decodeSnapshot(t *testing.T, body string) types.SnapshotResponse {
	t.Helper()
	var snap types.SnapshotResponse
	require.NoError(t, json.Unmarshal([]byte(body), &snap))
	return snap
}

func TestHealth(t *testing.T) {
	resp, body := makeRequest(t, "GET", "/health", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body)
}

// TestLedgerFlowIntegration walks one session end to end. Subtests share the
// session and run in order.
func TestLedgerFlowIntegration(t *testing.T) {
	var userID string

	t.Run("SignIn", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", "/session/signin", nil)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		snap := decodeSnapshot(t, body)
		assert.True(t, snap.Active)
		assert.Regexp(t, `^user_[0-9a-f]{32}$`, snap.UserID)
		assert.Empty(t, snap.Transactions)
		userID = snap.UserID
	})

	t.Run("AddExpenseAndIncome", func(t *testing.T) {
		resp, _ := makeRequest(t, "POST", "/ledger/expense", strings.NewReader(`{"category": "Groceries", "amount": "50"}`))
		defer resp.Body.Close()
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		resp2, body := makeRequest(t, "POST", "/ledger/income", strings.NewReader(`{"category": "Salary", "amount": 2000}`))
		defer resp2.Body.Close()
		assert.Equal(t, http.StatusCreated, resp2.StatusCode)

		var created struct {
			Transaction domain.Transaction     `json:"transaction"`
			Ledger      types.SnapshotResponse `json:"ledger"`
		}
		require.NoError(t, json.Unmarshal([]byte(body), &created))
		assert.Equal(t, "Salary", created.Transaction.Category)
		assert.Equal(t, domain.TransactionTypeIncome, created.Transaction.Type)
		assert.Equal(t, "1950.00", created.Ledger.NetTotal.String())
	})

	t.Run("Snapshot", func(t *testing.T) {
		resp, body := makeRequest(t, "GET", "/ledger", nil)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		snap := decodeSnapshot(t, body)
		assert.Equal(t, "1950.00", snap.NetTotal.String())
		assert.Equal(t, "$1,950.00", snap.Display)
		require.Len(t, snap.Transactions, 2)
		assert.Equal(t, "Salary", snap.Transactions[0].Category)
		assert.Equal(t, "Groceries", snap.Transactions[1].Category)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		cases := []string{
			`{"category": "Food", "amount": "abc"}`,
			`{"category": "", "amount": "10"}`,
			`{"category": "Food", "amount": "-5"}`,
			`{"category": "Food"}`,
		}
		for _, requestBody := range cases {
			resp, body := makeRequest(t, "POST", "/ledger/expense", strings.NewReader(requestBody))
			resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, requestBody)
			assert.Contains(t, body, "Please select a category and enter a valid positive amount.")
		}

		resp, body := makeRequest(t, "POST", "/ledger/income", strings.NewReader(`not json`))
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, body, "Invalid request body.")

		// nothing was recorded
		_, snapBody := makeRequest(t, "GET", "/ledger", nil)
		assert.Len(t, decodeSnapshot(t, snapBody).Transactions, 2)
	})

	t.Run("ListTransactions", func(t *testing.T) {
		resp, body := makeRequest(t, "GET", "/ledger/transactions?limit=1&offset=1", nil)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var page types.PaginatedResponse[domain.Transaction]
		require.NoError(t, json.Unmarshal([]byte(body), &page))
		assert.Equal(t, int64(2), page.TotalCount)
		require.Len(t, page.Data, 1)
		assert.Equal(t, "Groceries", page.Data[0].Category)

		respHuge, bodyHuge := makeRequest(t, "GET", "/ledger/transactions?limit=9223372036854775807&offset=1", nil)
		defer respHuge.Body.Close()
		assert.Equal(t, http.StatusOK, respHuge.StatusCode)
		require.NoError(t, json.Unmarshal([]byte(bodyHuge), &page))
		assert.Len(t, page.Data, 1)
	})

	t.Run("Export", func(t *testing.T) {
		resp, body := makeRequest(t, "GET", "/ledger/export", nil)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
		assert.Contains(t, resp.Header.Get("Content-Disposition"), userID)

		var doc map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(body), &doc))
		assert.Equal(t, userID, doc["userId"])
		assert.Equal(t, float64(1950), doc["netTotal"])
		assert.Len(t, doc["transactions"], 2)
		assert.NotEmpty(t, doc["exportedAt"])
	})

	t.Run("ImportInvalid", func(t *testing.T) {
		resp, _ := makeRequest(t, "POST", "/ledger/import", strings.NewReader(`{"transactions": "nope"}`))
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		_, snapBody := makeRequest(t, "GET", "/ledger", nil)
		assert.Equal(t, "1950.00", decodeSnapshot(t, snapBody).NetTotal.String())
	})

	t.Run("ImportReplaces", func(t *testing.T) {
		doc := `{"transactions":[{"category":"Rent","amount":800,"type":"expense","timestamp":"2024-01-01T00:00:00Z"}], "netTotal": -800}`
		resp, body := makeRequest(t, "POST", "/ledger/import", strings.NewReader(doc))
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		snap := decodeSnapshot(t, body)
		assert.Equal(t, "-800.00", snap.NetTotal.String())
		require.Len(t, snap.Transactions, 1)
		assert.Equal(t, "Rent", snap.Transactions[0].Category)
	})

	t.Run("SignOutThenMutate", func(t *testing.T) {
		resp, _ := makeRequest(t, "POST", "/session/signout", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp2, body := makeRequest(t, "POST", "/ledger/income", strings.NewReader(`{"category": "Salary", "amount": "10"}`))
		defer resp2.Body.Close()
		assert.Equal(t, http.StatusConflict, resp2.StatusCode)
		assert.Contains(t, body, "Please sign in first.")

		resp3, _ := makeRequest(t, "GET", "/ledger/export", nil)
		defer resp3.Body.Close()
		assert.Equal(t, http.StatusConflict, resp3.StatusCode)
	})

	t.Run("SignInRestores", func(t *testing.T) {
		resp, body := makeRequest(t, "POST", "/session/signin", nil)
		defer resp.Body.Close()

		snap := decodeSnapshot(t, body)
		assert.Equal(t, userID, snap.UserID)
		assert.Equal(t, "-800.00", snap.NetTotal.String())
		assert.Len(t, snap.Transactions, 1)
	})
}
