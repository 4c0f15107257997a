package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nftgate/internal/registration/models"
	"nftgate/internal/registration/service"
	dErrors "nftgate/pkg/domain-errors"
	"nftgate/pkg/platform/httputil"
	"nftgate/pkg/requestcontext"
)

// Service defines the registration operations the HTTP layer needs.
type Service interface {
	Status(ctx context.Context, walletAddress string) (bool, error)
	Register(ctx context.Context, cmd service.RegisterCommand) (*models.Record, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/api/user-status", h.HandleStatus)
	r.Post("/api/register", h.HandleRegister)
}

// HandleStatus reports whether the wallet in ?walletAddress= is registered.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	wallet, err := walletFromQuery(r.URL.Query().Get("walletAddress"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	registered, err := h.service.Status(ctx, wallet)
	if err != nil {
		h.logger.ErrorContext(ctx, "status check failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &StatusResponse{IsRegistered: registered})
}

// HandleRegister creates a registration record.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger)
	if !ok {
		return
	}

	if _, err := h.service.Register(ctx, req.ToCommand()); err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			h.logger.InfoContext(ctx, "registration conflict", "request_id", requestID)
		} else {
			h.logger.ErrorContext(ctx, "registration failed", "error", err, "request_id", requestID)
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, &RegisterResponse{Message: registeredMessage})
}
