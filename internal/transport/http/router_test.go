package httptransport_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nftgate/internal/collection"
	"nftgate/internal/platform/health"
	"nftgate/internal/registration/handler"
	regmetrics "nftgate/internal/registration/metrics"
	"nftgate/internal/registration/service"
	"nftgate/internal/registration/store"
	httptransport "nftgate/internal/transport/http"
	request "nftgate/pkg/platform/middleware/request"
	"nftgate/pkg/testutil"
)

func newServer(t *testing.T, storeReady bool) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()

	svc := service.New(store.NewInMemory(),
		service.WithLogger(logger),
		service.WithMetrics(regmetrics.New(reg)),
	)
	info, err := collection.Build(collection.Config{Name: "Genesis", ClaimPriceWei: "80000000000000000"})
	require.NoError(t, err)

	probes := health.New("test", logger)
	probes.RegisterCheck("store", func(context.Context) error {
		if !storeReady {
			return errors.New("store down")
		}
		return nil
	})

	router := httptransport.NewRouter(httptransport.Config{
		Logger:   logger,
		Metrics:  request.NewMetrics(reg),
		Gatherer: reg,
	}, probes, handler.New(svc, logger), collection.NewHandler(info))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec,noctx // test server URL
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestRouterServesRegistrationFlow(t *testing.T) {
	srv := newServer(t, true)
	wallet := testutil.TestWallets.Alice

	resp, body := get(t, srv.URL+"/api/user-status?walletAddress="+wallet)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"isRegistered":false}`, body)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	payload := `{"walletAddress":"` + wallet + `","name":"Alice","dob":"1990-01-02","gender":"female","maritalStatus":"single"}`
	post, err := http.Post(srv.URL+"/api/register", "application/json", strings.NewReader(payload)) //nolint:noctx // test
	require.NoError(t, err)
	post.Body.Close()
	assert.Equal(t, http.StatusCreated, post.StatusCode)

	resp, body = get(t, srv.URL+"/api/user-status?walletAddress="+wallet)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"isRegistered":true}`, body)
}

func TestRouterRejectsNonJSONBody(t *testing.T) {
	srv := newServer(t, true)

	resp, err := http.Post(srv.URL+"/api/register", "text/plain", strings.NewReader("hello")) //nolint:noctx // test
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestRouterRejectsOversizedBody(t *testing.T) {
	srv := newServer(t, true)

	payload := `{"walletAddress":"0xabc","name":"` + strings.Repeat("a", 32*1024) + `"}`
	resp, err := http.Post(srv.URL+"/api/register", "application/json", strings.NewReader(payload)) //nolint:noctx // test
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouterCollectionAndProbes(t *testing.T) {
	srv := newServer(t, false)

	resp, body := get(t, srv.URL+"/api/collection")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"claimPrice":"0.08 ETH"`)

	resp, _ = get(t, srv.URL+"/health/live")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/does-not-exist")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouterExposesMetrics(t *testing.T) {
	srv := newServer(t, true)

	get(t, srv.URL+"/api/user-status?walletAddress="+testutil.TestWallets.Bob)

	resp, body := get(t, srv.URL+"/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "nftgate_status_checks_total")
	assert.Contains(t, body, `nftgate_http_request_duration_seconds_count{method="GET",route="/api/user-status",status="2xx"}`)
}
