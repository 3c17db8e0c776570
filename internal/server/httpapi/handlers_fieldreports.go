package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/bomin1134/gb-ud-portal/internal/server/models"
	"github.com/bomin1134/gb-ud-portal/internal/server/services"
	"github.com/go-chi/httplog/v2"
)

type fieldReportResponse struct {
	Report *models.FieldReport      `json:"report"`
	Failed []services.UploadFailure `json:"failed"`
}

func (s *Server) fieldReportCatalog(w http.ResponseWriter, r *http.Request) {
	writeSuccessJson(w, s.fieldReports.Catalog())
}

func (s *Server) listFieldReports(w http.ResponseWriter, r *http.Request) {
	branchID := 0
	if v := r.URL.Query().Get("branchId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, "invalid branchId")
			return
		}
		branchID = id
	}

	list, err := s.fieldReports.List(r.Context(), userFrom(r.Context()), branchID)
	if err != nil {
		handleError(httplog.LogEntry(r.Context()), w, err)
		return
	}
	writeSuccessJson(w, list)
}

// createFieldReport takes a multipart form: categoryId, itemId, latitude,
// longitude, optional branchId, address and memo, measurements as a JSON
// object and up to the configured number of "photos" parts.
func (s *Server) createFieldReport(w http.ResponseWriter, r *http.Request) {
	if err := s.parseMultipart(w, r); err != nil {
		badRequest(w, err.Error())
		return
	}

	in := services.FieldReportInput{
		CategoryID: r.FormValue("categoryId"),
		ItemID:     r.FormValue("itemId"),
		Address:    r.FormValue("address"),
		Memo:       r.FormValue("memo"),
	}
	var err error
	if v := r.FormValue("branchId"); v != "" {
		if in.BranchID, err = strconv.Atoi(v); err != nil {
			badRequest(w, "invalid branchId")
			return
		}
	}
	if in.Latitude, err = strconv.ParseFloat(r.FormValue("latitude"), 64); err != nil {
		badRequest(w, "invalid latitude")
		return
	}
	if in.Longitude, err = strconv.ParseFloat(r.FormValue("longitude"), 64); err != nil {
		badRequest(w, "invalid longitude")
		return
	}
	if err := json.Unmarshal([]byte(r.FormValue("measurements")), &in.Measurements); err != nil {
		badRequest(w, "measurements must be a JSON object of strings")
		return
	}
	if in.Photos, err = readFiles(r.MultipartForm, "photos"); err != nil {
		badRequest(w, err.Error())
		return
	}

	fr, failed, err := s.fieldReports.Create(r.Context(), userFrom(r.Context()), in)
	if err != nil {
		handleError(httplog.LogEntry(r.Context()), w, err)
		return
	}
	writeSuccessJson(w, fieldReportResponse{Report: fr, Failed: failed})
}
