package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/bomin1134/gb-ud-portal/internal/directory"
	"github.com/go-chi/httplog/v2"
)

type loginRequest struct {
	ID       string `json:"id" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		badRequest(w, err.Error())
		return
	}

	res, err := s.auth.Login(r.Context(), req.ID, req.Password)
	if err != nil {
		handleError(logger, w, err)
		return
	}
	writeSuccessJson(w, res)
}

type meResponse struct {
	User   directory.User    `json:"user"`
	Branch *directory.Branch `json:"branch,omitempty"`
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	resp := meResponse{User: u}
	if !u.IsAdmin() {
		if b, err := s.directory.Branch(u.BranchID); err == nil {
			resp.Branch = &b
		}
	}
	writeSuccessJson(w, resp)
}

// listBranches returns every branch to admins and only their own to branch
// users.
func (s *Server) listBranches(w http.ResponseWriter, r *http.Request) {
	u := userFrom(r.Context())
	if u.IsAdmin() {
		writeSuccessJson(w, s.directory.Branches())
		return
	}
	b, err := s.directory.Branch(u.BranchID)
	if err != nil {
		handleError(httplog.LogEntry(r.Context()), w, err)
		return
	}
	writeSuccessJson(w, []directory.Branch{b})
}
