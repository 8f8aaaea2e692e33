package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"mediaroll/internal/library"
	"mediaroll/internal/media"
)

// ── GET /v1/assets ─────────────────────────────────────────────────────────────

func (h *handlers) ListAssets(w http.ResponseWriter, r *http.Request) {
	q, err := parseAssetQuery(r.URL.Query(), h.cfg.MaxPageSize)
	if err != nil {
		writeMediaError(w, err)
		return
	}

	conn, err := h.service.GetPhotos(r.Context(), q)
	if err != nil {
		writeMediaError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, conn)
}

// parseAssetQuery reads AssetQuery from query parameters. List parameters
// are comma separated; assetType defaults to Photos.
func parseAssetQuery(v url.Values, maxPageSize int) (media.AssetQuery, error) {
	q := media.AssetQuery{
		After:     v.Get("after"),
		GroupName: v.Get("groupName"),
		AssetType: media.AssetType(v.Get("assetType")),
		MimeTypes: splitList(v.Get("mimeTypes")),
		Include:   media.NewIncludeSet(splitList(v.Get("include"))...),
	}
	if q.AssetType == "" {
		q.AssetType = media.AssetTypePhotos
	}

	first, err := strconv.Atoi(v.Get("first"))
	if err != nil {
		return q, filterError("first must be an integer, got '%s'", v.Get("first"))
	}
	if maxPageSize > 0 && first > maxPageSize {
		return q, filterError("first must be at most %d, got %d", maxPageSize, first)
	}
	q.First = first

	for _, p := range []struct {
		name string
		dst  *int64
	}{
		{"fromTime", &q.FromTime},
		{"toTime", &q.ToTime},
	} {
		s := v.Get(p.name)
		if s == "" {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return q, filterError("%s must be epoch milliseconds, got '%s'", p.name, s)
		}
		*p.dst = n
	}
	return q, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	items := make([]string, 0)
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			items = append(items, s)
		}
	}
	return items
}

// ── POST /v1/assets ────────────────────────────────────────────────────────────

type saveReq struct {
	Source string `json:"source"`
	Album  string `json:"album"`
	Type   string `json:"type"`
}

func (h *handlers) PostAsset(w http.ResponseWriter, r *http.Request) {
	var req saveReq
	if !h.decodeBody(w, r, &req) {
		return
	}
	if req.Source == "" {
		WriteError(w, http.StatusBadRequest, "invalid_request", "source is required")
		return
	}

	uri, err := h.library.Save(r.Context(), req.Source, library.SaveOptions{
		Album: req.Album,
		Type:  library.SaveType(req.Type),
	})
	if err != nil {
		h.log.Error("save failed", "source", req.Source, "error", err)
		writeMediaError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]string{"uri": uri})
}

// ── DELETE /v1/assets ──────────────────────────────────────────────────────────

type deleteReq struct {
	URIs []string `json:"uris"`
}

func (h *handlers) DeleteAssets(w http.ResponseWriter, r *http.Request) {
	var req deleteReq
	if !h.decodeBody(w, r, &req) {
		return
	}

	deleted, err := h.library.Delete(r.Context(), req.URIs)
	if err != nil {
		h.log.Warn("delete failed", "requested", len(req.URIs), "deleted", deleted, "error", err)
		writeMediaError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (h *handlers) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, h.cfg.MaxBodyBytes+1))
	if err != nil || int64(len(body)) > h.cfg.MaxBodyBytes {
		WriteError(w, http.StatusBadRequest, "invalid_request", "body read error or too large")
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", "invalid JSON: "+err.Error())
		return false
	}
	return true
}
