package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bomin1134/gb-ud-portal/internal/common"
)

// JsonResponse is the envelope of every API answer.
type JsonResponse struct {
	Status  string `json:"status"` // "success" or "error"
	Data    any    `json:"data,omitempty"`
	ErrCode string `json:"code,omitempty"`
	ErrMsg  string `json:"message,omitempty"`
}

func writeSuccessJson(w http.ResponseWriter, data any) {
	writeJson(w, http.StatusOK, JsonResponse{Status: "success", Data: data})
}

func writeErrorJson(w http.ResponseWriter, errMsg string, statusCode int, errCode string) {
	writeJson(w, statusCode, JsonResponse{Status: "error", ErrMsg: errMsg, ErrCode: errCode})
}

func writeJson(w http.ResponseWriter, statusCode int, resp JsonResponse) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(resp)
}

var errorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{common.ErrorValidation, http.StatusBadRequest, "validation"},
	{common.ErrTokenExpired, http.StatusUnauthorized, "token_expired"},
	{common.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
	{common.ErrorUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{common.ErrorForbidden, http.StatusForbidden, "forbidden"},
	{common.ErrorNotFound, http.StatusNotFound, "not_found"},
	{common.ErrSaveFailed, http.StatusInternalServerError, "save_failed"},
}

// handleError maps service errors onto the envelope. Client errors carry the
// error text; anything unrecognised is logged and reported as a bare 500.
func handleError(logger *slog.Logger, w http.ResponseWriter, err error) {
	for _, e := range errorStatuses {
		if !errors.Is(err, e.err) {
			continue
		}
		msg := err.Error()
		if e.status >= http.StatusInternalServerError {
			logger.Error("request failed", "error", err)
			msg = e.err.Error()
		} else {
			logger.Warn("request rejected", "error", err)
		}
		writeErrorJson(w, msg, e.status, e.code)
		return
	}

	logger.Error("internal server error", "error", err)
	writeErrorJson(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError, "internal")
}

func badRequest(w http.ResponseWriter, msg string) {
	writeErrorJson(w, msg, http.StatusBadRequest, "bad_request")
}
