// Package httpapi exposes the portal services over a JSON HTTP API.
package httpapi

import (
	"net/http"

	"github.com/bomin1134/gb-ud-portal/internal/directory"
	"github.com/bomin1134/gb-ud-portal/internal/logging"
	"github.com/bomin1134/gb-ud-portal/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
)

type Options struct {
	AllowedOrigins []string
	MaxUploadBytes int64
	LogLevel       string
}

type Server struct {
	auth         *services.AuthService
	submissions  *services.SubmissionService
	notices      *services.NoticeService
	fieldReports *services.FieldReportService
	directory    *directory.Directory
	geocode      http.Handler
	validate     *validator.Validate
	opts         Options
	router       *chi.Mux
}

func NewServer(
	auth *services.AuthService,
	submissions *services.SubmissionService,
	notices *services.NoticeService,
	fieldReports *services.FieldReportService,
	dir *directory.Directory,
	geocode http.Handler,
	opts Options,
) *Server {
	s := &Server{
		auth:         auth,
		submissions:  submissions,
		notices:      notices,
		fieldReports: fieldReports,
		directory:    dir,
		geocode:      geocode,
		validate:     validator.New(),
		opts:         opts,
		router:       chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	logger := httplog.NewLogger("gb-ud-portal", httplog.Options{
		JSON:             true,
		LogLevel:         logging.ParseLevel(s.opts.LogLevel),
		Concise:          true,
		MessageFieldName: "msg",
	})

	r := s.router
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeSuccessJson(w, "ok")
	})
	// The geocoder proxy answers its own preflight and CORS headers.
	r.Handle("/api/reverse-geocode", s.geocode)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))

		r.Post("/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/me", s.me)
			r.Get("/branches", s.listBranches)
			r.Get("/weeks", s.listWeeks)
			r.Get("/dashboard", s.dashboard)

			r.Route("/branches/{branchID}/submissions", func(r chi.Router) {
				r.Get("/", s.branchOverview)
				r.Get("/{weekID}", s.getSubmission)
				r.Post("/{weekID}", s.submit)
				r.Delete("/{weekID}", s.deleteWeek)
				r.Get("/{weekID}/history", s.history)
			})

			r.Get("/files/url", s.fileURL)

			r.Get("/notices", s.listNotices)
			r.Post("/notices", s.createNotice)

			r.Get("/field-reports/catalog", s.fieldReportCatalog)
			r.Get("/field-reports", s.listFieldReports)
			r.Post("/field-reports", s.createFieldReport)
		})
	})
}
