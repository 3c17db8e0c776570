package httpapi

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/bomin1134/gb-ud-portal/internal/server/models"
	"github.com/bomin1134/gb-ud-portal/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog/v2"
)

func branchParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "branchID"))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid branch id %q", chi.URLParam(r, "branchID"))
	}
	return id, nil
}

func (s *Server) listWeeks(w http.ResponseWriter, r *http.Request) {
	writeSuccessJson(w, s.submissions.Weeks())
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.submissions.Dashboard(r.Context(), userFrom(r.Context()))
	if err != nil {
		handleError(httplog.LogEntry(r.Context()), w, err)
		return
	}
	writeSuccessJson(w, d)
}

func (s *Server) branchOverview(w http.ResponseWriter, r *http.Request) {
	branchID, err := branchParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	rows, err := s.submissions.BranchOverview(r.Context(), userFrom(r.Context()), branchID)
	if err != nil {
		handleError(httplog.LogEntry(r.Context()), w, err)
		return
	}
	writeSuccessJson(w, rows)
}

func (s *Server) getSubmission(w http.ResponseWriter, r *http.Request) {
	branchID, err := branchParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	rec, err := s.submissions.Get(r.Context(), userFrom(r.Context()), branchID, chi.URLParam(r, "weekID"))
	if err != nil {
		handleError(httplog.LogEntry(r.Context()), w, err)
		return
	}
	writeSuccessJson(w, rec)
}

// submit takes a multipart form with title, status, note and any number of
// "files" parts.
func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	logger := httplog.LogEntry(r.Context())

	branchID, err := branchParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.parseMultipart(w, r); err != nil {
		badRequest(w, err.Error())
		return
	}
	files, err := readFiles(r.MultipartForm, "files")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	in := services.SubmitInput{
		Title:  r.FormValue("title"),
		Status: models.Status(r.FormValue("status")),
		Note:   r.FormValue("note"),
		Files:  files,
	}
	res, err := s.submissions.Submit(r.Context(), userFrom(r.Context()), branchID, chi.URLParam(r, "weekID"), in)
	if err != nil {
		handleError(logger, w, err)
		return
	}
	writeSuccessJson(w, res)
}

func (s *Server) deleteWeek(w http.ResponseWriter, r *http.Request) {
	branchID, err := branchParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	weekID := chi.URLParam(r, "weekID")
	if err := s.submissions.DeleteWeek(r.Context(), userFrom(r.Context()), branchID, weekID); err != nil {
		handleError(httplog.LogEntry(r.Context()), w, err)
		return
	}
	writeSuccessJson(w, models.NewSubmission(branchID, weekID))
}

func (s *Server) history(w http.ResponseWriter, r *http.Request) {
	branchID, err := branchParam(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	events, err := s.submissions.History(r.Context(), userFrom(r.Context()), branchID, chi.URLParam(r, "weekID"))
	if err != nil {
		handleError(httplog.LogEntry(r.Context()), w, err)
		return
	}
	writeSuccessJson(w, events)
}

func (s *Server) fileURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("path")
	if key == "" {
		badRequest(w, "path is required")
		return
	}
	u, err := s.submissions.FileURL(r.Context(), userFrom(r.Context()), key, r.URL.Query().Get("name"))
	if err != nil {
		handleError(httplog.LogEntry(r.Context()), w, err)
		return
	}
	writeSuccessJson(w, map[string]string{"url": u})
}

func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return fmt.Errorf("invalid multipart form: %w", err)
	}
	return nil
}

func readFiles(form *multipart.Form, field string) ([]services.FileUpload, error) {
	if form == nil {
		return nil, nil
	}
	headers := form.File[field]
	files := make([]services.FileUpload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		files = append(files, services.FileUpload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files, nil
}
