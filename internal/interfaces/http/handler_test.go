package http_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	appinstruments "main/internal/application/service/instruments"
	appquotes "main/internal/application/service/quotes"
	apptrading "main/internal/application/service/trading"
	"main/internal/config"
	domainquotes "main/internal/domain/entity/quotes"
	domaintrading "main/internal/domain/entity/trading"
	interfaces "main/internal/domain/interfaces"
	infrahttp "main/internal/interfaces/http"
	"main/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func testConfig(token string, fallback bool) *config.Config {
	return &config.Config{
		Invest: config.InvestConfig{Token: token},
		Quotes: config.QuotesConfig{TTL: 5 * time.Second, DefaultTicker: "SBER"},
		Fallback: config.FallbackConfig{
			Enabled:     fallback,
			BasePrice:   190,
			PriceJitter: 2,
		},
	}
}

func newHandler(fake *testutil.FakeBroker, cfg *config.Config) http.Handler {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	resolver := appinstruments.NewResolver(fake)
	quotesService := appquotes.NewService(fake, resolver, cfg.Quotes.TTL)
	tradingService := apptrading.NewService(fake, resolver, nil, logger)
	return infrahttp.NewHandler(quotesService, tradingService, resolver, nil, cfg, logger)
}

func tradableFake() *testutil.FakeBroker {
	return &testutil.FakeBroker{
		Instruments:  []domaintrading.Instrument{{UID: "uid-1", Figi: "BBG004730N88", Ticker: "SBER"}},
		AccountsList: []domaintrading.Account{{ID: "acc-1"}},
		Price:        domainquotes.Quotation{Units: 254, Nano: 500000000},
	}
}

func doRequest(t *testing.T, handler http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	var env envelope
	if recorder.Body.Len() > 0 {
		if err := json.Unmarshal(recorder.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", recorder.Body.String(), err)
		}
	}
	return recorder, env
}

func TestGetPriceSuccess(t *testing.T) {
	handler := newHandler(tradableFake(), testConfig("token", true))

	recorder, env := doRequest(t, handler, http.MethodGet, "/api/price?ticker=sber", "")
	if recorder.Code != http.StatusOK || !env.Success {
		t.Fatalf("status=%d success=%v", recorder.Code, env.Success)
	}

	var data struct {
		Price     float64 `json:"price"`
		Ticker    string  `json:"ticker"`
		Figi      string  `json:"figi"`
		Timestamp int64   `json:"timestamp"`
		IsMock    bool    `json:"isMock"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Price != 254.5 || data.Ticker != "SBER" || data.Figi != "BBG004730N88" {
		t.Errorf("unexpected price data: %+v", data)
	}
	if data.IsMock {
		t.Error("live price must not be flagged as mock")
	}
	if data.Timestamp == 0 {
		t.Error("expected a millisecond timestamp")
	}
}

func TestGetPriceDefaultsTicker(t *testing.T) {
	fake := tradableFake()
	handler := newHandler(fake, testConfig("token", true))

	_, env := doRequest(t, handler, http.MethodGet, "/api/price", "")
	var data struct {
		Ticker string `json:"ticker"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Ticker != "SBER" {
		t.Errorf("expected default ticker SBER, got %q", data.Ticker)
	}
}

func TestGetPriceFallbackOnUpstreamFailure(t *testing.T) {
	fake := &testutil.FakeBroker{
		Err: fmt.Errorf("%w: connection refused", interfaces.ErrTransport),
	}
	handler := newHandler(fake, testConfig("token", true))

	recorder, env := doRequest(t, handler, http.MethodGet, "/api/price?ticker=SBER", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("degraded price must answer 200, got %d", recorder.Code)
	}
	if !env.Success {
		t.Fatal("degraded price keeps the success envelope")
	}

	var data struct {
		Price  float64 `json:"price"`
		IsMock bool    `json:"isMock"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !data.IsMock {
		t.Error("fallback price must be flagged as mock")
	}
	if data.Price < 190 || data.Price >= 192 {
		t.Errorf("mock price %v outside [190,192)", data.Price)
	}
}

func TestGetPriceFallbackDisabled(t *testing.T) {
	fake := &testutil.FakeBroker{
		Err: fmt.Errorf("%w: connection refused", interfaces.ErrTransport),
	}
	handler := newHandler(fake, testConfig("token", false))

	recorder, env := doRequest(t, handler, http.MethodGet, "/api/price", "")
	if recorder.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 with fallback disabled, got %d", recorder.Code)
	}
	if env.Success || env.Error == "" {
		t.Errorf("expected error envelope, got %+v", env)
	}
}

func TestGetPortfolioFallbackOnUpstreamFailure(t *testing.T) {
	fake := &testutil.FakeBroker{
		Err: fmt.Errorf("%w: connection refused", interfaces.ErrTransport),
	}
	handler := newHandler(fake, testConfig("token", true))

	recorder, env := doRequest(t, handler, http.MethodGet, "/api/portfolio", "")
	if recorder.Code != http.StatusOK || !env.Success {
		t.Fatalf("status=%d success=%v", recorder.Code, env.Success)
	}

	var data struct {
		TotalAmount float64           `json:"totalAmount"`
		Positions   []json.RawMessage `json:"positions"`
		IsMock      bool              `json:"isMock"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !data.IsMock || data.TotalAmount != 0 || len(data.Positions) != 0 {
		t.Errorf("unexpected fallback portfolio: %+v", data)
	}
}

func TestPlaceOrderMissingFields(t *testing.T) {
	fake := tradableFake()
	handler := newHandler(fake, testConfig("token", true))

	recorder, env := doRequest(t, handler, http.MethodPost, "/api/order/limit", `{"ticker":"SBER","quantity":10}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
	if env.Success {
		t.Error("expected failure envelope")
	}
	if !strings.Contains(env.Error, "price") || !strings.Contains(env.Error, "direction") {
		t.Errorf("error should name the missing fields, got %q", env.Error)
	}
	if fake.Calls() != 0 {
		t.Errorf("no upstream call may be made on validation failure, got %d", fake.Calls())
	}
}

func TestPlaceOrderInvalidDirection(t *testing.T) {
	fake := tradableFake()
	handler := newHandler(fake, testConfig("token", true))

	recorder, _ := doRequest(t, handler, http.MethodPost, "/api/order/limit",
		`{"ticker":"SBER","quantity":10,"price":254.5,"direction":"hold"}`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", recorder.Code)
	}
	if fake.OrderCalls != 0 {
		t.Errorf("invalid direction must not reach upstream, got %d order calls", fake.OrderCalls)
	}
}

func TestPlaceOrderSuccess(t *testing.T) {
	fake := tradableFake()
	fake.OrderResult = &domaintrading.OrderResult{
		OrderID: "order-42",
		Status:  "EXECUTION_REPORT_STATUS_NEW",
		Message: "accepted",
	}
	handler := newHandler(fake, testConfig("token", true))

	recorder, env := doRequest(t, handler, http.MethodPost, "/api/order/limit",
		`{"ticker":"SBER","quantity":10,"price":254.5,"direction":"buy"}`)
	if recorder.Code != http.StatusOK || !env.Success {
		t.Fatalf("status=%d success=%v error=%q", recorder.Code, env.Success, env.Error)
	}

	var data struct {
		OrderID string `json:"orderId"`
		Status  string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.OrderID != "order-42" {
		t.Errorf("order id: got %q", data.OrderID)
	}
}

func TestPlaceOrderUpstreamFailure(t *testing.T) {
	fake := tradableFake()
	fake.OrderErr = fmt.Errorf("%w: insufficient funds", interfaces.ErrUpstream)
	handler := newHandler(fake, testConfig("token", true))

	recorder, env := doRequest(t, handler, http.MethodPost, "/api/order/limit",
		`{"ticker":"SBER","quantity":10,"price":254.5,"direction":"buy"}`)
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("order errors must not be masked, got %d", recorder.Code)
	}
	if env.Success || env.Error == "" {
		t.Errorf("expected failure envelope with message, got %+v", env)
	}
}

func TestStatusLimitedWithoutToken(t *testing.T) {
	handler := newHandler(tradableFake(), testConfig("", true))

	recorder, env := doRequest(t, handler, http.MethodGet, "/api/status", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status endpoint never errors, got %d", recorder.Code)
	}

	var data struct {
		Status   string `json:"status"`
		HasToken bool   `json:"hasToken"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Status != "limited" || data.HasToken {
		t.Errorf("expected limited/no-token, got %+v", data)
	}
}

func TestStatusOnline(t *testing.T) {
	handler := newHandler(tradableFake(), testConfig("token", true))

	recorder, env := doRequest(t, handler, http.MethodGet, "/api/status", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("got %d", recorder.Code)
	}

	var data struct {
		Status   string `json:"status"`
		HasToken bool   `json:"hasToken"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Status != "online" || !data.HasToken {
		t.Errorf("expected online, got %+v", data)
	}
}

func TestStatusDegradesOnProbeFailure(t *testing.T) {
	fake := &testutil.FakeBroker{
		Err: fmt.Errorf("%w: connection refused", interfaces.ErrTransport),
	}
	handler := newHandler(fake, testConfig("token", true))

	recorder, env := doRequest(t, handler, http.MethodGet, "/api/status", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("status endpoint never errors, got %d", recorder.Code)
	}

	var data struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Status != "limited" {
		t.Errorf("expected limited on probe failure, got %q", data.Status)
	}
}

func TestHealth(t *testing.T) {
	handler := newHandler(tradableFake(), testConfig("token", true))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("got %d", recorder.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "OK" {
		t.Errorf("expected OK, got %v", body["status"])
	}
}

func TestRouteNotFound(t *testing.T) {
	handler := newHandler(tradableFake(), testConfig("token", true))

	recorder, env := doRequest(t, handler, http.MethodGet, "/api/nope", "")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
	if env.Success || env.Error != "Route not found" {
		t.Errorf("unexpected envelope: %+v", env)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := newHandler(tradableFake(), testConfig("token", true))

	req := httptest.NewRequest(http.MethodOptions, "/api/price", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("preflight must answer 200, got %d", recorder.Code)
	}
	if recorder.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS allow-origin header")
	}
	if recorder.Body.Len() != 0 {
		t.Errorf("preflight body must be empty, got %q", recorder.Body.String())
	}
}

func TestPriceServedFromCacheSkipsUpstream(t *testing.T) {
	fake := tradableFake()
	handler := newHandler(fake, testConfig("token", true))

	doRequest(t, handler, http.MethodGet, "/api/price?ticker=SBER", "")
	doRequest(t, handler, http.MethodGet, "/api/price?ticker=SBER", "")

	if fake.PriceCalls != 1 {
		t.Errorf("second request inside TTL must hit the cache, got %d upstream calls", fake.PriceCalls)
	}
}
