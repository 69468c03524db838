package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/savings-pocket/savings_pocket/internal/config"
	"github.com/savings-pocket/savings_pocket/internal/logging"
)

func testConfig(mode string) config.Config {
	return config.Config{
		AppName:        "SavingsPocket",
		AppEnv:         "test",
		Port:           "0",
		LogLevel:       "error",
		ShutdownPeriod: time.Second,
		APIKey:         "pk_test",
		BusinessID:     "biz-1",
		CheckoutMode:   mode,
		Currency:       "NGN",
		Payer: config.Payer{
			Email:     "user@example.com",
			FirstName: "John",
			LastName:  "Doe",
			Phone:     "08012345678",
		},
		WidgetColor:    "#000000",
		OpeningBalance: decimal.RequireFromString("25000.00"),
		SeedDemoData:   true,
	}
}

func newTestServer(t *testing.T, mode string) *fiber.App {
	t.Helper()
	srv, err := New(testConfig(mode), logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { srv.sessions.Close() })
	return srv.App()
}

type fundingView struct {
	State     string `json:"state"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	ModalOpen bool   `json:"modal_open"`
	Reference string `json:"checkout_reference"`
}

type transaction struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

type view struct {
	SessionID    string        `json:"session_id"`
	Balance      string        `json:"balance"`
	Transactions []transaction `json:"transactions"`
	Funding      fundingView   `json:"funding"`
}

func call(t *testing.T, app *fiber.App, method, path string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func mount(t *testing.T, app *fiber.App) view {
	t.Helper()
	var v view
	require.Equal(t, http.StatusCreated, call(t, app, fiber.MethodPost, "/api/v1/sessions", nil, &v))
	require.NotEmpty(t, v.SessionID)
	return v
}

func confirm(t *testing.T, app *fiber.App, sessionID, amount string) (int, fundingView) {
	t.Helper()
	base := "/api/v1/sessions/" + sessionID + "/funding"
	var f fundingView
	require.Equal(t, http.StatusOK, call(t, app, fiber.MethodPost, base+"/open", nil, &f))
	require.Equal(t, "amount_entry", f.State)

	f = fundingView{}
	status := call(t, app, fiber.MethodPost, base+"/confirm", map[string]string{"amount": amount}, &f)
	return status, f
}

func awaitFunding(t *testing.T, app *fiber.App, sessionID string) fundingView {
	t.Helper()
	var f fundingView
	require.Equal(t, http.StatusOK, call(t, app, fiber.MethodGet, "/api/v1/sessions/"+sessionID+"/funding?wait=1s", nil, &f))
	return f
}

func getView(t *testing.T, app *fiber.App, sessionID string) view {
	t.Helper()
	var v view
	require.Equal(t, http.StatusOK, call(t, app, fiber.MethodGet, "/api/v1/sessions/"+sessionID, nil, &v))
	return v
}

func TestMountShowsDemoAccount(t *testing.T) {
	app := newTestServer(t, config.CheckoutHosted)
	v := mount(t, app)

	assert.Equal(t, "25000.00", v.Balance)
	require.Len(t, v.Transactions, 4)
	assert.Equal(t, transaction{ID: "1", Type: "Deposit", Amount: "5000.00", Date: "2024-07-10", Status: "Completed"}, v.Transactions[0])
	assert.Equal(t, "idle", v.Funding.State)
}

func TestFundingSuccess(t *testing.T) {
	app := newTestServer(t, config.CheckoutHosted)
	v := mount(t, app)

	status, f := confirm(t, app, v.SessionID, "5000")
	require.Equal(t, http.StatusAccepted, status)
	require.Equal(t, "initiating", f.State)
	require.NotEmpty(t, f.Reference)

	var widget struct {
		Amount     string            `json:"amount"`
		APIKey     string            `json:"apiKey"`
		BusinessID string            `json:"businessId"`
		Currency   string            `json:"currency"`
		Color      string            `json:"color"`
		Metadata   map[string]string `json:"metadata"`
	}
	require.Equal(t, http.StatusOK, call(t, app, fiber.MethodGet, "/api/v1/checkout/"+f.Reference, nil, &widget))
	assert.Equal(t, "5000.00", widget.Amount)
	assert.Equal(t, "pk_test", widget.APIKey)
	assert.Equal(t, "biz-1", widget.BusinessID)
	assert.Equal(t, "NGN", widget.Currency)
	assert.Equal(t, "Funding", widget.Metadata["purpose"])

	require.Equal(t, http.StatusOK, call(t, app, fiber.MethodPost, "/api/v1/checkout/"+f.Reference+"/transaction", map[string]string{"status": "success"}, nil))

	f = awaitFunding(t, app, v.SessionID)
	assert.Equal(t, "success", f.State)
	assert.Equal(t, "Account funded successfully!", f.Message)

	v = getView(t, app, v.SessionID)
	assert.Equal(t, "30000.00", v.Balance)
	require.Len(t, v.Transactions, 5)
	assert.Equal(t, "Deposit", v.Transactions[0].Type)
	assert.Equal(t, "5000.00", v.Transactions[0].Amount)
	assert.Equal(t, "Completed", v.Transactions[0].Status)
	assert.Equal(t, time.Now().Format("2006-01-02"), v.Transactions[0].Date)
}

func TestFundingInvalidAmount(t *testing.T) {
	for _, amount := range []string{"-5", "abc"} {
		t.Run(amount, func(t *testing.T) {
			app := newTestServer(t, config.CheckoutHosted)
			v := mount(t, app)

			status, f := confirm(t, app, v.SessionID, amount)
			require.Equal(t, http.StatusUnprocessableEntity, status)
			assert.Equal(t, "failed", f.Status)
			assert.Equal(t, "Please enter a valid amount.", f.Message)
			assert.Empty(t, f.Reference)

			var health map[string]any
			require.Equal(t, http.StatusOK, call(t, app, fiber.MethodGet, "/healthz", nil, &health))
			assert.Equal(t, float64(0), health["open_checkouts"], "no checkout may be opened")

			v = getView(t, app, v.SessionID)
			assert.Equal(t, "25000.00", v.Balance)
			assert.Len(t, v.Transactions, 4)
		})
	}
}

func TestFundingCancelled(t *testing.T) {
	app := newTestServer(t, config.CheckoutHosted)
	v := mount(t, app)

	status, f := confirm(t, app, v.SessionID, "2000")
	require.Equal(t, http.StatusAccepted, status)

	require.Equal(t, http.StatusOK, call(t, app, fiber.MethodPost, "/api/v1/checkout/"+f.Reference+"/close", nil, nil))

	got := awaitFunding(t, app, v.SessionID)
	assert.Equal(t, "idle", got.State)
	assert.Equal(t, "Payment process cancelled.", got.Message)

	status = call(t, app, fiber.MethodPost, "/api/v1/checkout/"+f.Reference+"/transaction", map[string]string{"status": "success"}, nil)
	assert.Equal(t, http.StatusNotFound, status, "late success after close is rejected")

	v = getView(t, app, v.SessionID)
	assert.Equal(t, "25000.00", v.Balance)
	assert.Len(t, v.Transactions, 4)
}

func TestFundingFailed(t *testing.T) {
	app := newTestServer(t, config.CheckoutHosted)
	v := mount(t, app)

	status, f := confirm(t, app, v.SessionID, "1000")
	require.Equal(t, http.StatusAccepted, status)

	require.Equal(t, http.StatusOK, call(t, app, fiber.MethodPost, "/api/v1/checkout/"+f.Reference+"/transaction",
		map[string]string{"status": "failed", "message": "card declined"}, nil))

	got := awaitFunding(t, app, v.SessionID)
	assert.Equal(t, "failed", got.State)
	assert.Equal(t, "Payment failed: card declined", got.Message)

	v = getView(t, app, v.SessionID)
	assert.Equal(t, "25000.00", v.Balance)
	assert.Len(t, v.Transactions, 4)
}

func openCheckouts(t *testing.T, app *fiber.App) float64 {
	t.Helper()
	var health map[string]any
	require.Equal(t, http.StatusOK, call(t, app, fiber.MethodGet, "/healthz", nil, &health))
	n, ok := health["open_checkouts"].(float64)
	require.True(t, ok)
	return n
}

func TestFundingCancelledByClient(t *testing.T) {
	app := newTestServer(t, config.CheckoutHosted)
	v := mount(t, app)

	var refs []string
	for i := 0; i < 3; i++ {
		status, f := confirm(t, app, v.SessionID, "2000")
		require.Equal(t, http.StatusAccepted, status)
		refs = append(refs, f.Reference)

		var got fundingView
		require.Equal(t, http.StatusOK, call(t, app, fiber.MethodPost, "/api/v1/sessions/"+v.SessionID+"/funding/cancel", nil, &got))
		assert.Equal(t, "idle", got.State)
		assert.Equal(t, "Payment process cancelled.", got.Message)
	}

	require.Eventually(t, func() bool { return openCheckouts(t, app) == 0 }, time.Second, 5*time.Millisecond)
	for _, ref := range refs {
		assert.Equal(t, http.StatusNotFound, call(t, app, fiber.MethodGet, "/api/v1/checkout/"+ref, nil, nil))
		status := call(t, app, fiber.MethodPost, "/api/v1/checkout/"+ref+"/transaction", map[string]string{"status": "success"}, nil)
		assert.Equal(t, http.StatusNotFound, status)
	}
	assert.Equal(t, "25000.00", getView(t, app, v.SessionID).Balance)
}

func TestFundingNumericAmount(t *testing.T) {
	app := newTestServer(t, config.CheckoutStatic)
	v := mount(t, app)
	base := "/api/v1/sessions/" + v.SessionID + "/funding"

	require.Equal(t, http.StatusOK, call(t, app, fiber.MethodPost, base+"/open", nil, nil))
	var f fundingView
	require.Equal(t, http.StatusAccepted, call(t, app, fiber.MethodPost, base+"/confirm", map[string]any{"amount": 5000}, &f))

	got := awaitFunding(t, app, v.SessionID)
	assert.Equal(t, "success", got.State)
	assert.Equal(t, "30000.00", getView(t, app, v.SessionID).Balance)

	require.Equal(t, http.StatusOK, call(t, app, fiber.MethodPost, base+"/open", nil, nil))
	require.Equal(t, http.StatusUnprocessableEntity, call(t, app, fiber.MethodPost, base+"/confirm", map[string]any{"amount": -5}, &f))
	assert.Equal(t, "Please enter a valid amount.", f.Message)
}

func TestFundingInProgressRejectsOpen(t *testing.T) {
	app := newTestServer(t, config.CheckoutHosted)
	v := mount(t, app)

	status, _ := confirm(t, app, v.SessionID, "1000")
	require.Equal(t, http.StatusAccepted, status)

	assert.Equal(t, http.StatusConflict, call(t, app, fiber.MethodPost, "/api/v1/sessions/"+v.SessionID+"/funding/open", nil, nil))
}

func TestStaticCheckout(t *testing.T) {
	app := newTestServer(t, config.CheckoutStatic)
	v := mount(t, app)

	status, _ := confirm(t, app, v.SessionID, "750.25")
	require.Equal(t, http.StatusAccepted, status)

	got := awaitFunding(t, app, v.SessionID)
	assert.Equal(t, "success", got.State)
	assert.Equal(t, "25750.25", getView(t, app, v.SessionID).Balance)

	assert.Equal(t, http.StatusNotFound, call(t, app, fiber.MethodGet, "/api/v1/checkout/anything", nil, nil))
}

func TestUnknownSessionAndUnmount(t *testing.T) {
	app := newTestServer(t, config.CheckoutHosted)

	assert.Equal(t, http.StatusNotFound, call(t, app, fiber.MethodGet, "/api/v1/sessions/missing", nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, app, fiber.MethodPost, "/api/v1/sessions/missing/funding/open", nil, nil))

	v := mount(t, app)
	var balance map[string]any
	require.Equal(t, http.StatusOK, call(t, app, fiber.MethodGet, "/api/v1/sessions/"+v.SessionID+"/balance", nil, &balance))
	assert.Equal(t, "25000.00", balance["balance"])

	assert.Equal(t, http.StatusNoContent, call(t, app, fiber.MethodDelete, "/api/v1/sessions/"+v.SessionID, nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, app, fiber.MethodGet, "/api/v1/sessions/"+v.SessionID, nil, nil))
}
