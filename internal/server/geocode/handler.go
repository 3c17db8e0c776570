package geocode

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bomin1134/gb-ud-portal/internal/common"
	"github.com/bomin1134/gb-ud-portal/internal/logging"
)

// Handler serves GET /api/reverse-geocode?lat=&lng= and answers with the
// geocoder's JSON unchanged. Errors are {"error": "..."} objects.
type Handler struct {
	client *Client
	log    logging.Logger
}

func NewHandler(client *Client, log logging.Logger) *Handler {
	return &Handler{client: client, log: log.With("module", "geocode")}
}

func setCORS(h http.Header) {
	h.Set("Access-Control-Allow-Credentials", "true")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET,OPTIONS,PATCH,DELETE,POST,PUT")
	h.Set("Access-Control-Allow-Headers", "X-CSRF-Token,X-Requested-With,Accept,Accept-Version,Content-Length,Content-MD5,Content-Type,Date,X-Api-Version")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setCORS(w.Header())

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
		return
	case http.MethodGet:
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "Method not allowed"})
		return
	}

	lat, lng := r.URL.Query().Get("lat"), r.URL.Query().Get("lng")
	if lat == "" || lng == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing lat or lng parameters"})
		return
	}

	body, err := h.client.Reverse(r.Context(), lat, lng)
	if err != nil {
		var upstream *UpstreamError
		switch {
		case errors.Is(err, common.ErrGeocoderNotConfigured):
			h.log.Error(r.Context(), "geocoder credentials missing")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Missing Naver Map credentials"})
		case errors.As(err, &upstream):
			h.log.Warn(r.Context(), "geocoder rejected request", "status", upstream.StatusCode)
			writeJSON(w, upstream.StatusCode, map[string]string{"error": upstream.Error(), "details": upstream.Body})
		default:
			h.log.Error(r.Context(), "reverse geocode failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		}
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
