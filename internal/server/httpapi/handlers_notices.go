package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/httplog/v2"
)

type noticeRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"max=10000"`
}

func (s *Server) listNotices(w http.ResponseWriter, r *http.Request) {
	list, err := s.notices.List(r.Context())
	if err != nil {
		handleError(httplog.LogEntry(r.Context()), w, err)
		return
	}
	writeSuccessJson(w, list)
}

func (s *Server) createNotice(w http.ResponseWriter, r *http.Request) {
	var req noticeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		badRequest(w, err.Error())
		return
	}

	n, err := s.notices.Create(r.Context(), userFrom(r.Context()), req.Title, req.Body)
	if err != nil {
		handleError(httplog.LogEntry(r.Context()), w, err)
		return
	}
	writeSuccessJson(w, n)
}
