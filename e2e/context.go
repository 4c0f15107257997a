package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"nftgate/internal/collection"
	"nftgate/internal/gate"
	"nftgate/internal/gate/client"
	"nftgate/internal/platform/health"
	"nftgate/internal/registration/handler"
	regmetrics "nftgate/internal/registration/metrics"
	"nftgate/internal/registration/service"
	"nftgate/internal/registration/store"
	httptransport "nftgate/internal/transport/http"
	request "nftgate/pkg/platform/middleware/request"
)

// awaitTimeout bounds every wait on the gate.
const awaitTimeout = 5 * time.Second

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	server  *httptest.Server
	api     *countingAPI
	claimer *recordingClaimer
	Gate    *gate.Gate

	mu     sync.Mutex
	phases []gate.Phase

	concurrentStatuses []int
}

// NewTestContext creates a new test context
func NewTestContext() *TestContext {
	return &TestContext{
		BaseURL:    os.Getenv("BASE_URL"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		claimer:    &recordingClaimer{},
		phases:     []gate.Phase{gate.Disconnected},
	}
}

// Start wires a fresh gate for one scenario, against an in-process API
// unless BASE_URL points at a running server.
func (tc *TestContext) Start() error {
	if tc.BaseURL == "" {
		srv, err := startServer()
		if err != nil {
			return err
		}
		tc.server = srv
		tc.BaseURL = srv.URL
	}

	apiClient, err := client.New(client.Config{BaseURL: tc.BaseURL, HTTPClient: tc.HTTPClient})
	if err != nil {
		return err
	}
	tc.api = &countingAPI{API: apiClient, statusCalls: map[string]int{}}
	tc.Gate = gate.New(tc.api,
		gate.WithClaimer(tc.claimer),
		gate.WithLogger(quietLogger()),
		gate.WithObserver(tc.observe),
	)
	return nil
}

func startServer() (*httptest.Server, error) {
	logger := quietLogger()
	reg := prometheus.NewRegistry()
	info, err := collection.Build(collection.Config{
		Name:          "Genesis",
		ClaimPriceWei: "80000000000000000",
		MaxSupply:     1000,
	})
	if err != nil {
		return nil, fmt.Errorf("build collection: %w", err)
	}
	svc := service.New(store.NewInMemory(),
		service.WithLogger(logger),
		service.WithMetrics(regmetrics.New(reg)),
	)
	router := httptransport.NewRouter(httptransport.Config{
		Logger:         logger,
		Metrics:        request.NewMetrics(reg),
		Gatherer:       reg,
		RequestTimeout: 5 * time.Second,
	}, health.New("e2e", logger), handler.New(svc, logger), collection.NewHandler(info))
	return httptest.NewServer(router), nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Close stops the gate and the in-process server.
func (tc *TestContext) Close() {
	if tc.Gate != nil {
		tc.Gate.Close()
	}
	if tc.server != nil {
		tc.server.Close()
	}
}

// observe records each distinct phase the gate enters.
func (tc *TestContext) observe(t gate.Transition) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.phases[len(tc.phases)-1] != t.To {
		tc.phases = append(tc.phases, t.To)
	}
}

// Phases returns the phases visited so far, starting at Disconnected.
func (tc *TestContext) Phases() []gate.Phase {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return append([]gate.Phase(nil), tc.phases...)
}

// Await waits for the gate to enter phase.
func (tc *TestContext) Await(phase gate.Phase) (gate.State, error) {
	ctx, cancel := context.WithTimeout(context.Background(), awaitTimeout)
	defer cancel()
	st, err := tc.Gate.Await(ctx, phase)
	if err != nil {
		return st, fmt.Errorf("gate stuck in %s waiting for %s: %w", st.Phase, phase, err)
	}
	return st, nil
}

// POST makes a POST request and stores the response
func (tc *TestContext) POST(path string, body any) error {
	req, err := newJSONRequest(path, tc.BaseURL, body)
	if err != nil {
		return err
	}
	return tc.do(req)
}

func newJSONRequest(path, baseURL string, body any) (*http.Request, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a field from the JSON response
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response", field)
	}
	return value, nil
}

// ResponseContains checks if the response body contains a field or text
func (tc *TestContext) ResponseContains(text string) bool {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return true
	}
	var data map[string]any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err == nil {
		if _, ok := data[text]; ok {
			return true
		}
	}
	return false
}

// countingAPI counts status checks per wallet on the way to the real client.
type countingAPI struct {
	gate.API
	mu          sync.Mutex
	statusCalls map[string]int
}

func (a *countingAPI) Status(ctx context.Context, walletAddress string) (bool, error) {
	a.mu.Lock()
	a.statusCalls[walletAddress]++
	a.mu.Unlock()
	return a.API.Status(ctx, walletAddress)
}

func (a *countingAPI) StatusCalls(walletAddress string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.statusCalls[walletAddress]
}

// recordingClaimer stands in for the on-chain claim.
type recordingClaimer struct {
	mu      sync.Mutex
	claimed []string
}

func (c *recordingClaimer) Claim(_ context.Context, walletAddress string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.claimed = append(c.claimed, walletAddress)
	return nil
}

func (c *recordingClaimer) Claimed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.claimed...)
}
