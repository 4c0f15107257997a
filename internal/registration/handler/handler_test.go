package handler

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"nftgate/internal/registration/handler/mocks"
	"nftgate/internal/registration/models"
	"nftgate/internal/registration/service"
	"nftgate/internal/registration/store"
	dErrors "nftgate/pkg/domain-errors"
	"nftgate/pkg/platform/sentinel"
	"nftgate/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(s.service, logger).Register(r)
	s.router = r
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func statusURL(wallet string) string {
	return "/api/user-status?walletAddress=" + url.QueryEscape(wallet)
}

const validBody = `{
	"walletAddress": "0x71C7656EC7ab88b098defB751B7401B5f6d8976F",
	"name": "  Alice Example ",
	"dob": "1990-01-02",
	"gender": "Female",
	"maritalStatus": "married"
}`

func (s *HandlerSuite) TestStatusRegistered() {
	s.service.EXPECT().Status(gomock.Any(), testutil.TestWallets.Alice).Return(true, nil)

	rec := s.do(http.MethodGet, statusURL(testutil.TestWallets.Alice), "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("application/json", rec.Header().Get("Content-Type"))
	s.Equal(map[string]any{"isRegistered": true}, s.decode(rec))
}

func (s *HandlerSuite) TestStatusUnregistered() {
	s.service.EXPECT().Status(gomock.Any(), testutil.TestWallets.Bob).Return(false, nil)

	rec := s.do(http.MethodGet, statusURL(testutil.TestWallets.Bob), "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(map[string]any{"isRegistered": false}, s.decode(rec))
}

func (s *HandlerSuite) TestStatusMissingWallet() {
	for _, target := range []string{"/api/user-status", statusURL("   ")} {
		rec := s.do(http.MethodGet, target, "")
		s.Equal(http.StatusBadRequest, rec.Code, target)
		s.Equal("walletAddress is required", s.decode(rec)["error_description"])
	}
}

func (s *HandlerSuite) TestStatusOversizedWallet() {
	rec := s.do(http.MethodGet, statusURL("0x"+strings.Repeat("a", 200)), "")
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestStatusStoreFailureIsOpaque() {
	s.service.EXPECT().Status(gomock.Any(), gomock.Any()).
		Return(false, dErrors.Wrap(errors.New("pq: password authentication failed"), dErrors.CodeInternal, "failed to check registration status"))

	rec := s.do(http.MethodGet, statusURL(testutil.TestWallets.Alice), "")
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.NotContains(rec.Body.String(), "pq:")
	s.Equal("internal server error", s.decode(rec)["error_description"])
}

func (s *HandlerSuite) TestRegisterCreated() {
	s.service.EXPECT().Register(gomock.Any(), service.RegisterCommand{
		WalletAddress: testutil.TestWallets.Alice,
		Name:          "Alice Example",
		DateOfBirth:   time.Date(1990, time.January, 2, 0, 0, 0, 0, time.UTC),
		Gender:        models.GenderFemale,
		MaritalStatus: models.MaritalStatusMarried,
	}).Return(&models.Record{WalletAddress: testutil.TestWallets.Alice}, nil)

	rec := s.do(http.MethodPost, "/api/register", validBody)
	s.Equal(http.StatusCreated, rec.Code)
	s.Equal(map[string]any{"message": registeredMessage}, s.decode(rec))
}

func (s *HandlerSuite) TestRegisterConflict() {
	s.service.EXPECT().Register(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.Wrap(fmt.Errorf("insert: %w", sentinel.ErrAlreadyUsed), dErrors.CodeConflict, "wallet already registered"))

	rec := s.do(http.MethodPost, "/api/register", validBody)
	s.Equal(http.StatusConflict, rec.Code)
	s.Equal("wallet already registered", s.decode(rec)["error_description"])
}

func (s *HandlerSuite) TestRegisterStoreFailure() {
	s.service.EXPECT().Register(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.Wrap(errors.New("mssql: Login failed for user 'sa'"), dErrors.CodeInternal, "failed to register wallet"))

	rec := s.do(http.MethodPost, "/api/register", validBody)
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.NotContains(rec.Body.String(), "mssql")
}

func (s *HandlerSuite) TestRegisterInvalidBodies() {
	full := map[string]string{
		"walletAddress": testutil.TestWallets.Alice,
		"name":          "Alice",
		"dob":           "1990-01-02",
		"gender":        "female",
		"maritalStatus": "single",
	}
	for _, field := range []string{"walletAddress", "name", "dob", "gender", "maritalStatus"} {
		s.Run("missing "+field, func() {
			body := map[string]string{}
			for k, v := range full {
				if k != field {
					body[k] = v
				}
			}
			raw, _ := json.Marshal(body)
			rec := s.do(http.MethodPost, "/api/register", string(raw))
			s.Equal(http.StatusBadRequest, rec.Code)
			s.Equal(field+" is required", s.decode(rec)["error_description"])
		})
		s.Run("blank "+field, func() {
			body := map[string]string{}
			for k, v := range full {
				body[k] = v
			}
			body[field] = "   "
			raw, _ := json.Marshal(body)
			rec := s.do(http.MethodPost, "/api/register", string(raw))
			s.Equal(http.StatusBadRequest, rec.Code)
		})
	}

	s.Run("impossible date", func() {
		rec := s.do(http.MethodPost, "/api/register", strings.Replace(validBody, "1990-01-02", "1990-02-30", 1))
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("dob must be a valid date (YYYY-MM-DD)", s.decode(rec)["error_description"])
	})

	s.Run("malformed json", func() {
		rec := s.do(http.MethodPost, "/api/register", `{"walletAddress":`)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

// Properties below run against the real service and the in-memory store.

func newRealRouter() (http.Handler, *store.InMemory) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st := store.NewInMemory()
	r := chi.NewRouter()
	New(service.New(st, service.WithLogger(logger)), logger).Register(r)
	return r, st
}

func post(router http.Handler, body string) int {
	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Code
}

func TestRegisterThenStatusRoundTrip(t *testing.T) {
	router, _ := newRealRouter()

	if code := post(router, validBody); code != http.StatusCreated {
		t.Fatalf("register: want 201, got %d", code)
	}

	req := httptest.NewRequest(http.MethodGet, statusURL(testutil.TestWallets.Alice), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || !body.IsRegistered {
		t.Fatalf("status after register: got %s (err %v)", rec.Body.String(), err)
	}
}

func TestSequentialDuplicateRegistration(t *testing.T) {
	router, st := newRealRouter()

	if code := post(router, validBody); code != http.StatusCreated {
		t.Fatalf("first register: want 201, got %d", code)
	}
	if code := post(router, validBody); code != http.StatusConflict {
		t.Fatalf("second register: want 409, got %d", code)
	}
	if n, _ := st.Count(context.Background()); n != 1 {
		t.Fatalf("want 1 row, got %d", n)
	}
}

func TestConcurrentDuplicateRegistration(t *testing.T) {
	router, st := newRealRouter()
	codes := make([]int, 2)

	testutil.RunConcurrent(2, func(idx int) error {
		codes[idx] = post(router, validBody)
		return nil
	})

	created, conflicts := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	if created != 1 || conflicts != 1 {
		t.Fatalf("want one 201 and one 409, got %v", codes)
	}
	if n, _ := st.Count(context.Background()); n != 1 {
		t.Fatalf("want 1 row, got %d", n)
	}
}
