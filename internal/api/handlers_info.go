package api

import (
	"net/http"

	"mediaroll/internal/media"
)

func (h *handlers) GetHealth(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ── GET /v1/albums ─────────────────────────────────────────────────────────────

func (h *handlers) ListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, err := h.service.Albums(r.Context(), media.AssetType(r.URL.Query().Get("assetType")))
	if err != nil {
		writeMediaError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"albums": albums})
}
