package handlers_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"certifyrpg/internal/app"
	"certifyrpg/internal/catalog"
	"certifyrpg/internal/config"
	"certifyrpg/internal/llm"
	"certifyrpg/internal/models"
	"certifyrpg/internal/store/memory"

	"github.com/rs/zerolog"
)

const webhookSecret = "whsec_handlers"

type stubLLM struct{}

func (stubLLM) Complete(context.Context, []llm.Message) (*llm.Completion, error) {
	return &llm.Completion{Content: `{"name":"Mirabel"}`, TokensUsed: 50, Model: "stub"}, nil
}

type stubCheckout struct{}

func (stubCheckout) CreateCheckoutSession(_ context.Context, p *models.CheckoutParams) (*models.CheckoutSession, error) {
	return &models.CheckoutSession{SessionID: "cs_stub", URL: "https://pay.example/" + p.Product.Key}, nil
}

type testServer struct {
	t     *testing.T
	store *memory.Store
	srv   *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.Config{
		JWTSecret:           "handler-test-secret",
		StripeWebhookSecret: webhookSecret,
		WelcomeBonus:        12,
		AdminEmails:         []string{"admin@example.com"},
		AppURL:              "https://app.example",
		LLMTimeout:          time.Second,
		RateLimitRPS:        1000,
		RateLimitBurst:      1000,
	}
	s := memory.New()
	a := app.NewWithProviders(cfg, s, catalog.Default(), stubLLM{}, stubCheckout{}, zerolog.Nop())

	srv := httptest.NewServer(a.Router(cfg, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return &testServer{t: t, store: s, srv: srv}
}

func (ts *testServer) do(method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, ts.srv.URL+path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func (ts *testServer) register(username, email string) (token, userID string) {
	ts.t.Helper()
	resp, body := ts.do("POST", "/api/v1/auth/register", "", map[string]string{
		"username": username, "email": email, "password": "s3cret-pass",
	})
	if resp.StatusCode != http.StatusCreated {
		ts.t.Fatalf("register: status %d body %v", resp.StatusCode, body)
	}
	user := body["user"].(map[string]interface{})
	return body["token"].(string), user["id"].(string)
}

func (ts *testServer) webhook(payload []byte, signature string) *http.Response {
	ts.t.Helper()
	req, _ := http.NewRequest("POST", ts.srv.URL+"/api/v1/stripe/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", signature)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("webhook: %v", err)
	}
	resp.Body.Close()
	return resp
}

func sign(payload []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestGenerateFlow(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.register("gm", "gm@example.com")

	resp, body := ts.do("GET", "/api/v1/credits", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("credits: %d", resp.StatusCode)
	}
	if bal := body["account"].(map[string]interface{})["balance"].(float64); bal != 12 {
		t.Fatalf("Expected welcome balance 12, got %v", bal)
	}

	resp, body = ts.do("POST", "/api/v1/ai/generate", token, map[string]string{"type": "npc", "race": "Halfling"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d %v", resp.StatusCode, body)
	}
	if body["success"] != true || body["creditsUsed"].(float64) != 10 || body["creditsRemaining"].(float64) != 2 {
		t.Errorf("Unexpected envelope: %v", body)
	}

	resp, body = ts.do("POST", "/api/v1/ai/generate", token, map[string]string{"type": "story"})
	if resp.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("Expected 402, got %d %v", resp.StatusCode, body)
	}
	if body["error"] != "insufficient_credits" || body["required"].(float64) != 15 || body["available"].(float64) != 2 {
		t.Errorf("Unexpected 402 body: %v", body)
	}

	resp, body = ts.do("GET", "/api/v1/credits/transactions?limit=10", token, nil)
	if resp.StatusCode != http.StatusOK || len(body["transactions"].([]interface{})) != 2 {
		t.Errorf("Expected 2 transactions, got %d %v", resp.StatusCode, body)
	}

	resp, body = ts.do("GET", "/api/v1/ai/generations", token, nil)
	if resp.StatusCode != http.StatusOK || len(body["generations"].([]interface{})) != 1 {
		t.Errorf("Expected 1 generation, got %d %v", resp.StatusCode, body)
	}
}

func TestWebhook(t *testing.T) {
	ts := newTestServer(t)
	token, userID := ts.register("gm", "gm@example.com")
	ts.do("POST", "/api/v1/ai/generate", token, map[string]string{"type": "npc"})

	payload := []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_1","object":"checkout.session","metadata":{"userId":%q,"credits":"100","productKey":"BASIC_PACK"}}}}`, userID))

	if resp := ts.webhook(payload, "t=1,v1=deadbeef"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad signature, got %d", resp.StatusCode)
	}
	if b, _ := ts.store.GetBalance(context.Background(), userID); b != 2 {
		t.Fatalf("Bad signature changed balance to %d", b)
	}

	for i := 0; i < 2; i++ {
		if resp := ts.webhook(payload, sign(payload)); resp.StatusCode != http.StatusOK {
			t.Errorf("delivery %d: expected 200, got %d", i+1, resp.StatusCode)
		}
	}
	if b, _ := ts.store.GetBalance(context.Background(), userID); b != 102 {
		t.Errorf("Expected balance 102 after redelivery, got %d", b)
	}

	malformed := []byte(`{"id":"evt_2","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_2","object":"checkout.session","metadata":{"credits":"100"}}}}`)
	if resp := ts.webhook(malformed, sign(malformed)); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed event, got %d", resp.StatusCode)
	}
}

func TestCertificatesAndCheckout(t *testing.T) {
	ts := newTestServer(t)
	token, _ := ts.register("gm", "gm@example.com")

	resp, body := ts.do("POST", "/api/v1/certificates", token, map[string]string{
		"title": "Hero of Phandalin", "playerName": "Ana", "achievement": "Saved the town", "template": "fantasy",
	})
	if resp.StatusCode != http.StatusCreated || body["creditsRemaining"].(float64) != 7 {
		t.Fatalf("Expected 201 with 7 remaining, got %d %v", resp.StatusCode, body)
	}

	resp, body = ts.do("POST", "/api/v1/certificates", token, map[string]string{"title": "x"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid certificate, got %d %v", resp.StatusCode, body)
	}

	resp, body = ts.do("GET", "/api/v1/credits/products", token, nil)
	if resp.StatusCode != http.StatusOK || len(body["products"].([]interface{})) != 4 {
		t.Errorf("Expected 4 products, got %d %v", resp.StatusCode, body)
	}

	resp, body = ts.do("POST", "/api/v1/credits/checkout", token, map[string]string{"productKey": "PRO_PACK"})
	if resp.StatusCode != http.StatusOK || body["sessionId"] != "cs_stub" || !strings.HasSuffix(body["url"].(string), "PRO_PACK") {
		t.Errorf("Unexpected checkout response %d %v", resp.StatusCode, body)
	}

	resp, _ = ts.do("POST", "/api/v1/credits/checkout", token, map[string]string{"productKey": "NOPE"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown product, got %d", resp.StatusCode)
	}
}

func TestAuthAndAdmin(t *testing.T) {
	ts := newTestServer(t)
	userToken, userID := ts.register("gm", "gm@example.com")
	adminToken, _ := ts.register("boss", "admin@example.com")

	if resp, _ := ts.do("GET", "/api/v1/credits", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", resp.StatusCode)
	}

	resp, body := ts.do("POST", "/api/v1/auth/login", "", map[string]string{"email": "gm@example.com", "password": "s3cret-pass"})
	if resp.StatusCode != http.StatusOK || body["refresh_token"] == nil {
		t.Fatalf("login: %d %v", resp.StatusCode, body)
	}
	refresh := body["refresh_token"].(string)

	if resp, _ := ts.do("GET", "/api/v1/credits", refresh, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Refresh token must not authorize API calls, got %d", resp.StatusCode)
	}
	resp, body = ts.do("POST", "/api/v1/auth/refresh", "", map[string]string{"refreshToken": refresh})
	if resp.StatusCode != http.StatusOK || body["token"] == "" {
		t.Errorf("refresh: %d %v", resp.StatusCode, body)
	}

	if resp, _ := ts.do("POST", "/api/v1/auth/login", "", map[string]string{"email": "gm@example.com", "password": "nope-nope"}); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 for wrong password, got %d", resp.StatusCode)
	}

	reconcilePath := "/api/v1/admin/accounts/" + userID + "/reconcile"
	if resp, _ := ts.do("POST", reconcilePath, userToken, nil); resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403 for non-admin, got %d", resp.StatusCode)
	}
	resp, body = ts.do("POST", reconcilePath, adminToken, nil)
	if resp.StatusCode != http.StatusOK || body["consistent"] != true {
		t.Errorf("reconcile: %d %v", resp.StatusCode, body)
	}

	resp, body = ts.do("POST", "/api/v1/admin/accounts/"+userID+"/bonus?period=2026-10", adminToken, nil)
	if resp.StatusCode != http.StatusOK || body["granted"] != false {
		t.Errorf("Bronze account should get no bonus: %d %v", resp.StatusCode, body)
	}

	if resp, _ := ts.do("POST", "/api/v1/admin/accounts/"+userID+"/bonus?period=oct", adminToken, nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for bad period, got %d", resp.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	if resp, body := ts.do("GET", "/health", "", nil); resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health: %d %v", resp.StatusCode, body)
	}

	resp, err := http.Get(ts.srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 from /metrics, got %d", resp.StatusCode)
	}
}
