package collection

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"nftgate/pkg/platform/httputil"
)

type Handler struct {
	info *Info
}

func NewHandler(info *Info) *Handler {
	return &Handler{info: info}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/api/collection", h.HandleCollection)
}

// HandleCollection returns the collection metadata.
func (h *Handler) HandleCollection(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.info)
}
