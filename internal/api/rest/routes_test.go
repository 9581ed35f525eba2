package rest

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/colabah/style-dna-service/config"
	"github.com/colabah/style-dna-service/internal/domain"
	"github.com/colabah/style-dna-service/internal/metrics"
	"github.com/colabah/style-dna-service/internal/service"
	"github.com/colabah/style-dna-service/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeDirectory is an in-memory CustomerDirectory for route tests
type fakeDirectory struct {
	mu         sync.Mutex
	customers  map[string]*domain.CustomerRecord
	metafields map[string]string
	calls      int
	nextID     int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		customers:  make(map[string]*domain.CustomerRecord),
		metafields: make(map[string]string),
	}
}

func (f *fakeDirectory) FindByEmail(ctx context.Context, email string) (*domain.CustomerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	record, ok := f.customers[email]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	copied := *record
	return &copied, nil
}

func (f *fakeDirectory) Create(ctx context.Context, email, styleValue string) (*domain.CustomerRecord, []domain.FieldError, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.nextID++
	record := &domain.CustomerRecord{
		ID:             fmt.Sprintf("gid://shopify/Customer/%d", f.nextID),
		Email:          email,
		StyleMetafield: styleValue,
	}
	f.customers[email] = record
	f.metafields[record.ID] = styleValue
	return record, nil, nil
}

func (f *fakeDirectory) SetStyleMetafield(ctx context.Context, customerID, value string) (string, []domain.FieldError, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.metafields[customerID] = value
	return value, nil, nil
}

func (f *fakeDirectory) SendInvite(ctx context.Context, customerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return nil
}

func (f *fakeDirectory) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testConfig() *config.Config {
	return &config.Config{
		Shopify: config.ShopifyConfig{
			ShopDomain:  "test-shop.myshopify.com",
			AccessToken: "shpat_test",
			APIVersion:  "2024-10",
			APISecret:   "hush",
		},
		Workflow: config.WorkflowConfig{
			AllowGuest:           true,
			SendInvite:           true,
			VerifyProxySignature: false,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) (*gin.Engine, *fakeDirectory) {
	t.Helper()

	log := logger.New(logger.ERROR)
	log.SetOutput(io.Discard)

	dir := newFakeDirectory()
	m := metrics.NewStyleMetrics(prometheus.NewRegistry(), log)
	svc := service.NewStyleProfileService(dir, service.Options{
		AllowGuest: cfg.Workflow.AllowGuest,
		SendInvite: cfg.Workflow.SendInvite,
	}, m, nil, nil, log)

	return SetupRouter(log, prometheus.NewRegistry(), cfg, svc), dir
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v (%s)", err, w.Body.String())
	}
	return body
}

// proxySignature mirrors the signature Shopify appends to app proxy requests
func proxySignature(params url.Values, secret string) string {
	pairs := make([]string, 0, len(params))
	for key, values := range params {
		pairs = append(pairs, key+"="+strings.Join(values, ","))
	}
	sort.Strings(pairs)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(pairs, "")))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestHealthRoute(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestUnknownProxySubpath(t *testing.T) {
	router, dir := newTestRouter(t, testConfig())

	w := postForm(router, "/apps/proxy/colabah/no-such-thing", url.Values{})

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	body := decodeBody(t, w)
	if body["error"] != "Unknown route" {
		t.Errorf("error = %v, want Unknown route", body["error"])
	}
	if dir.callCount() != 0 {
		t.Error("unknown routes must not reach the directory")
	}
}

func TestProxyGetMethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/apps/proxy/colabah/style-dna", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
}

func TestCreateAccountMissingFields(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"missing both", url.Values{}},
		{"missing style", url.Values{"email": {"jane@example.com"}}},
		{"missing email", url.Values{"style": {"Boho"}}},
		{"malformed email", url.Values{"email": {"not-an-email"}, "style": {"Boho"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, dir := newTestRouter(t, testConfig())

			w := postForm(router, "/apps/proxy/colabah/create-account", tt.form)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			body := decodeBody(t, w)
			if body["success"] != false {
				t.Error("expected success=false")
			}
			if dir.callCount() != 0 {
				t.Error("no remote calls may be issued on validation failure")
			}
		})
	}
}

func TestCreateAccountFreshCustomer(t *testing.T) {
	router, dir := newTestRouter(t, testConfig())

	w := postForm(router, "/apps/proxy/colabah/create-account",
		url.Values{"email": {"jane@example.com"}, "style": {"Refined Contemporary"}})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["success"] != true {
		t.Fatalf("expected success, got %v", body)
	}
	if _, existing := body["existing"]; existing {
		t.Error("fresh account must not be flagged existing")
	}

	record := dir.customers["jane@example.com"]
	if record == nil || dir.metafields[record.ID] != "Refined Contemporary" {
		t.Error("expected customer with the style metafield applied")
	}
}

func TestCreateAccountExistingCustomer(t *testing.T) {
	router, dir := newTestRouter(t, testConfig())
	dir.customers["jane@example.com"] = &domain.CustomerRecord{
		ID:    "gid://shopify/Customer/42",
		Email: "jane@example.com",
	}

	w := postForm(router, "/apps/proxy/colabah/create-account",
		url.Values{"email": {"jane@example.com"}, "style": {"Boho"}})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["existing"] != true {
		t.Errorf("expected existing=true, got %v", body)
	}
	if dir.metafields["gid://shopify/Customer/42"] != "Boho" {
		t.Error("existing customer's metafield must be updated")
	}
	if len(dir.customers) != 1 {
		t.Error("no duplicate customer may be created")
	}
}

func TestStyleDNAGuest(t *testing.T) {
	router, dir := newTestRouter(t, testConfig())

	w := postForm(router, "/apps/proxy/colabah/style-dna", url.Values{"style": {"Boho"}})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["success"] != true || body["guest"] != true {
		t.Fatalf("expected guest success, got %v", body)
	}
	if dir.callCount() != 0 {
		t.Error("guest saves must not issue remote calls")
	}
}

func TestStyleDNALoggedInCustomer(t *testing.T) {
	router, dir := newTestRouter(t, testConfig())

	w := postForm(router, "/apps/proxy/colabah/style-dna?logged_in_customer_id=9741559693640",
		url.Values{"style": {"Boho"}})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["customerId"] != "gid://shopify/Customer/9741559693640" {
		t.Errorf("customerId = %v", body["customerId"])
	}
	if dir.metafields["gid://shopify/Customer/9741559693640"] != "Boho" {
		t.Error("expected metafield written for the session customer")
	}
}

func TestProxyRejectsUninstalledShop(t *testing.T) {
	cfg := testConfig()
	cfg.Shopify.AccessToken = ""
	router, dir := newTestRouter(t, cfg)

	w := postForm(router, "/apps/proxy/colabah/style-dna", url.Values{"style": {"Boho"}})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if dir.callCount() != 0 {
		t.Error("uninstalled shops must not reach the directory")
	}
}

func TestProxySignatureVerification(t *testing.T) {
	cfg := testConfig()
	cfg.Workflow.VerifyProxySignature = true
	router, _ := newTestRouter(t, cfg)

	params := url.Values{
		"shop":                  {"test-shop.myshopify.com"},
		"timestamp":             {"1756380000"},
		"logged_in_customer_id": {""},
		"path_prefix":           {"/apps/proxy"},
	}
	signed := proxySignature(params, cfg.Shopify.APISecret)
	params.Set("signature", signed)

	w := postForm(router, "/apps/proxy/colabah/style-dna?"+params.Encode(),
		url.Values{"style": {"Boho"}})
	if w.Code != http.StatusOK {
		t.Fatalf("signed request: status = %d, want 200 (%s)", w.Code, w.Body.String())
	}

	params.Set("signature", "deadbeef")
	w = postForm(router, "/apps/proxy/colabah/style-dna?"+params.Encode(),
		url.Values{"style": {"Boho"}})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("tampered request: status = %d, want 401", w.Code)
	}
}

func TestAdminSaveRoute(t *testing.T) {
	router, dir := newTestRouter(t, testConfig())

	w := postForm(router, "/app-index", url.Values{
		"customerId": {"gid://shopify/Customer/7"},
		"styleDNA":   {"Refined Contemporary"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (%s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["value"] != "Refined Contemporary" {
		t.Errorf("value = %v", body["value"])
	}
	if dir.metafields["gid://shopify/Customer/7"] != "Refined Contemporary" {
		t.Error("expected metafield written")
	}
}

func TestAdminSaveMissingFields(t *testing.T) {
	router, dir := newTestRouter(t, testConfig())

	w := postForm(router, "/app-index", url.Values{"styleDNA": {"Boho"}})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if dir.callCount() != 0 {
		t.Error("no remote calls may be issued on validation failure")
	}
}

func TestAdminGetMethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/app-index", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", w.Code)
	}
}
