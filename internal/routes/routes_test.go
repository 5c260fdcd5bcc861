package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/keber-cl/wallet-api/internal/config"
	"github.com/keber-cl/wallet-api/internal/logging"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	deps := Deps{
		Cfg: config.Config{
			AppName:     "wallet-test",
			CORSOrigin:  "http://localhost:3000",
			SignupBonus: 100_000, // 1000.00
		},
		Logger: logging.Discard(),
	}
	if err := Setup(app, deps); err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	resp.Body.Close()
	return resp, decoded
}

func register(t *testing.T, app *fiber.App, name, email string) {
	t.Helper()
	resp, _ := doJSON(t, app, fiber.MethodPost, "/register", fiber.Map{
		"name": name, "email": email, "password": "secret-pw",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register %s: status %d", email, resp.StatusCode)
	}
}

func TestRegisterThenDuplicate(t *testing.T) {
	app := newTestApp(t)

	register(t, app, "Alice", "a@x.com")

	resp, _ := doJSON(t, app, fiber.MethodPost, "/register", fiber.Map{
		"name": "Eve", "email": "a@x.com", "password": "other",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate register: status %d", resp.StatusCode)
	}
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "Alice", "a@x.com")

	resp, body := doJSON(t, app, fiber.MethodPost, "/login", fiber.Map{
		"email": "a@x.com", "password": "secret-pw",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d", resp.StatusCode)
	}
	if body["name"] != "Alice" || body["email"] != "a@x.com" {
		t.Fatalf("unexpected login body: %v", body)
	}
	if body["balance"].(float64) != 1000 {
		t.Fatalf("expected balance 1000, got %v", body["balance"])
	}

	resp, _ = doJSON(t, app, fiber.MethodPost, "/login", fiber.Map{
		"email": "a@x.com", "password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d", resp.StatusCode)
	}

	// Unknown emails report the same status as a bad password.
	resp, _ = doJSON(t, app, fiber.MethodPost, "/login", fiber.Map{
		"email": "ghost@x.com", "password": "whatever",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unknown email: status %d", resp.StatusCode)
	}
}

func TestBalanceEndpoint(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "Alice", "a@x.com")

	resp, body := doJSON(t, app, fiber.MethodGet, "/balance/a@x.com", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("balance: status %d", resp.StatusCode)
	}
	if body["balance"].(float64) != 1000 {
		t.Fatalf("expected balance 1000, got %v", body["balance"])
	}

	resp, _ = doJSON(t, app, fiber.MethodGet, "/balance/ghost@x.com", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown account: status %d", resp.StatusCode)
	}
}

func TestAddFunds(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "Alice", "a@x.com")

	resp, body := doJSON(t, app, fiber.MethodPost, "/add", fiber.Map{
		"email": "a@x.com", "amount": 500,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add: status %d", resp.StatusCode)
	}
	if body["new_balance"].(float64) != 1500 {
		t.Fatalf("expected new balance 1500, got %v", body["new_balance"])
	}

	resp, _ = doJSON(t, app, fiber.MethodPost, "/add", fiber.Map{
		"email": "ghost@x.com", "amount": 500,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown account: status %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, fiber.MethodPost, "/add", fiber.Map{
		"email": "a@x.com", "amount": -10,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("negative amount: status %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, fiber.MethodPost, "/add", fiber.Map{
		"email": "a@x.com", "amount": 0.005,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("sub-cent amount: status %d", resp.StatusCode)
	}
}

func TestSendAndHistory(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "Alice", "a@x.com")
	register(t, app, "Bob", "b@x.com")

	resp, body := doJSON(t, app, fiber.MethodPost, "/send", fiber.Map{
		"sender_email": "a@x.com", "recipient_email": "b@x.com", "amount": 300, "note": "gift",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("send: status %d", resp.StatusCode)
	}
	if body["new_balance"].(float64) != 700 {
		t.Fatalf("expected sender balance 700, got %v", body["new_balance"])
	}

	_, balance := doJSON(t, app, fiber.MethodGet, "/balance/b@x.com", nil)
	if balance["balance"].(float64) != 1300 {
		t.Fatalf("expected recipient balance 1300, got %v", balance["balance"])
	}

	req := httptest.NewRequest(fiber.MethodGet, "/transactions/b@x.com", nil)
	histResp, err := app.Test(req)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	defer histResp.Body.Close()
	var history []map[string]any
	if err := json.NewDecoder(histResp.Body).Decode(&history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(history))
	}
	entry := history[0]
	if entry["type"] != "receive" || entry["amount"].(float64) != 300 {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["description"] != "from a@x.com: gift" {
		t.Fatalf("unexpected description: %v", entry["description"])
	}
	if entry["final_balance"].(float64) != 1300 {
		t.Fatalf("unexpected final balance: %v", entry["final_balance"])
	}
}

func TestSendFailures(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "Alice", "a@x.com")
	register(t, app, "Bob", "b@x.com")

	resp, _ := doJSON(t, app, fiber.MethodPost, "/send", fiber.Map{
		"sender_email": "a@x.com", "recipient_email": "b@x.com", "amount": 5000,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("insufficient funds: status %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, app, fiber.MethodPost, "/send", fiber.Map{
		"sender_email": "a@x.com", "recipient_email": "ghost@x.com", "amount": 10,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown recipient: status %d", resp.StatusCode)
	}

	// Failed transfers leave both balances untouched.
	_, balance := doJSON(t, app, fiber.MethodGet, "/balance/a@x.com", nil)
	if balance["balance"].(float64) != 1000 {
		t.Fatalf("sender balance changed: %v", balance["balance"])
	}
}

func TestTransactionsUnknownAccount(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, fiber.MethodGet, "/transactions/ghost@x.com", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown account: status %d", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, fiber.MethodGet, "/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz: status %d", resp.StatusCode)
	}
}
