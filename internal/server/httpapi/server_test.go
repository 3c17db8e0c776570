package httpapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bomin1134/gb-ud-portal/internal/directory"
	"github.com/bomin1134/gb-ud-portal/internal/logging"
	"github.com/bomin1134/gb-ud-portal/internal/server/config"
	"github.com/bomin1134/gb-ud-portal/internal/server/geocode"
	"github.com/bomin1134/gb-ud-portal/internal/server/objectstore"
	"github.com/bomin1134/gb-ud-portal/internal/server/repositories/repomanager"
	"github.com/bomin1134/gb-ud-portal/internal/server/services"
	"github.com/bomin1134/gb-ud-portal/internal/weeks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()

	dir, err := directory.Default()
	require.NoError(t, err)
	cal, err := weeks.NewCalendar(cfg.TimeZone)
	require.NoError(t, err)
	catalog, err := services.DefaultCatalog()
	require.NoError(t, err)

	log := logging.Discard()
	repos := repomanager.NewMemoryRepositoryManager()
	store := objectstore.NewMemoryStore()
	geo := geocode.NewClient(cfg.GeocoderBaseURL, "", "")

	return NewServer(
		services.NewAuthService(dir, log, cfg),
		services.NewSubmissionService(repos, store, dir, cal, log, cfg),
		services.NewNoticeService(repos, log),
		services.NewFieldReportService(repos, store, catalog, nil, log, cfg),
		dir,
		geocode.NewHandler(geo, log),
		Options{AllowedOrigins: []string{"*"}, MaxUploadBytes: cfg.MaxUploadBytes, LogLevel: "error"},
	)
}

func do(t *testing.T, s *Server, req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func login(t *testing.T, s *Server, id string) string {
	t.Helper()
	body := strings.NewReader(`{"id":"` + id + `","password":"` + id + `"}`)
	rec, env := do(t, s, httptest.NewRequest(http.MethodPost, "/api/login", body), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res services.LoginResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	return res.AccessToken
}

func multipartBody(t *testing.T, fields map[string]string, fileField string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile(fileField, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	rec, env := do(t, newTestServer(t), httptest.NewRequest(http.MethodGet, "/healthz", nil), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", env.Status)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	rec, env := do(t, s, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"id":"gb001","password":"nope"}`)), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", env.Code)

	rec, env = do(t, s, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{"id":""}`)), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "error", env.Status)

	rec, _ = do(t, s, httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{`)), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	token := login(t, s, "gb002")
	rec, env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/me", nil), token)
	require.Equal(t, http.StatusOK, rec.Code)
	var me meResponse
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, 2, me.User.BranchID)
	require.NotNil(t, me.Branch)
	assert.Equal(t, 2, me.Branch.ID)
}

func TestRequiresToken(t *testing.T) {
	s := newTestServer(t)

	rec, env := do(t, s, httptest.NewRequest(http.MethodGet, "/api/weeks", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", env.Code)

	rec, env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/weeks", nil), "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", env.Code)
}

func TestBranchesAndWeeks(t *testing.T) {
	s := newTestServer(t)

	var branches []directory.Branch
	_, env := do(t, s, httptest.NewRequest(http.MethodGet, "/api/branches", nil), login(t, s, "gbudc"))
	require.NoError(t, json.Unmarshal(env.Data, &branches))
	assert.Len(t, branches, 20)

	_, env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/branches", nil), login(t, s, "gb005"))
	require.NoError(t, json.Unmarshal(env.Data, &branches))
	require.Len(t, branches, 1)
	assert.Equal(t, 5, branches[0].ID)

	var ws []weeks.Week
	_, env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/weeks", nil), login(t, s, "gb005"))
	require.NoError(t, json.Unmarshal(env.Data, &ws))
	assert.Len(t, ws, 12)
}

func TestSubmitFlow(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "gb001")
	week := s.submissions.Weeks()[0].ID
	base := "/api/branches/1/submissions/" + week

	body, ct := multipartBody(t, map[string]string{"title": "주간 보고", "status": "OFFICIAL", "note": "메모"},
		"files", map[string]string{"보고서.pdf": "%PDF-1.4"})
	req := httptest.NewRequest(http.MethodPost, base, body)
	req.Header.Set("Content-Type", ct)
	rec, env := do(t, s, req, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res services.SubmitResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "OFFICIAL", string(res.Submission.Status))
	require.Len(t, res.Submission.Files, 1)
	assert.Equal(t, "보고서.pdf", res.Submission.Files[0].Name)

	rec, env = do(t, s, httptest.NewRequest(http.MethodGet, base, nil), token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"title":"주간 보고"`)

	rec, env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/files/url?path="+res.Submission.Files[0].Path, nil), token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "memory://"+res.Submission.Files[0].Path)

	rec, env = do(t, s, httptest.NewRequest(http.MethodGet, base+"/history", nil), token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"action":"submit"`)

	rec, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/api/branches/1/submissions", nil), token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, s, httptest.NewRequest(http.MethodDelete, base, nil), token)
	require.Equal(t, http.StatusOK, rec.Code)

	_, env = do(t, s, httptest.NewRequest(http.MethodGet, base, nil), token)
	assert.Contains(t, string(env.Data), `"status":"NONE"`)
	assert.Contains(t, string(env.Data), `"files":[]`)
}

func TestSubmissionErrors(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "gb001")
	week := s.submissions.Weeks()[0].ID

	rec, env := do(t, s, httptest.NewRequest(http.MethodGet, "/api/branches/2/submissions/"+week, nil), token)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", env.Code)

	rec, env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/branches/1/submissions/2024-03-05", nil), token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", env.Code)

	rec, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/api/branches/abc/submissions", nil), token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil), token)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = do(t, s, httptest.NewRequest(http.MethodGet, "/api/files/url", nil), token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/branches/1/submissions/"+week, strings.NewReader("x"))
	req.Header.Set("Content-Type", "text/plain")
	rec, _ = do(t, s, req, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	rec, env := do(t, s, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil), login(t, s, "gbudc"))
	require.Equal(t, http.StatusOK, rec.Code)

	var d services.Dashboard
	require.NoError(t, json.Unmarshal(env.Data, &d))
	assert.Len(t, d.Weeks, 4)
	assert.Len(t, d.Rows, 20)
}

func TestNotices(t *testing.T) {
	s := newTestServer(t)

	rec, _ := do(t, s, httptest.NewRequest(http.MethodPost, "/api/notices", strings.NewReader(`{"title":"x"}`)), login(t, s, "gb001"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := login(t, s, "gbudc")
	rec, _ = do(t, s, httptest.NewRequest(http.MethodPost, "/api/notices", strings.NewReader(`{"body":"no title"}`)), admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, s, httptest.NewRequest(http.MethodPost, "/api/notices", strings.NewReader(`{"title":"회의 안내","body":"본문"}`)), admin)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := do(t, s, httptest.NewRequest(http.MethodGet, "/api/notices", nil), login(t, s, "gb001"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "회의 안내")
}

func TestFieldReports(t *testing.T) {
	s := newTestServer(t)
	token := login(t, s, "gb003")

	rec, env := do(t, s, httptest.NewRequest(http.MethodGet, "/api/field-reports/catalog", nil), token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"id":"parking"`)

	body, ct := multipartBody(t, map[string]string{
		"categoryId": "ramp", "itemId": "slope", "latitude": "35.87", "longitude": "128.6",
		"address": "대구 중구", "measurements": `{"측정값":"8.3"}`,
	}, "photos", map[string]string{"ramp.jpg": "jpg-bytes"})
	req := httptest.NewRequest(http.MethodPost, "/api/field-reports", body)
	req.Header.Set("Content-Type", ct)
	rec, env = do(t, s, req, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, string(env.Data), `"itemName":"경사로 기울기"`)
	assert.Contains(t, string(env.Data), `field/gb003/`)

	body, ct = multipartBody(t, map[string]string{
		"categoryId": "ramp", "itemId": "slope", "latitude": "north", "longitude": "128.6", "measurements": `{}`,
	}, "photos", nil)
	req = httptest.NewRequest(http.MethodPost, "/api/field-reports", body)
	req.Header.Set("Content-Type", ct)
	rec, _ = do(t, s, req, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = do(t, s, httptest.NewRequest(http.MethodGet, "/api/field-reports", nil), token)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []json.RawMessage
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)
}

func TestReverseGeocodeIsPublic(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/reverse-geocode?lat=1&lng=2", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Missing Naver Map credentials"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/reverse-geocode", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/notices", nil)
	req.Header.Set("Origin", "https://portal.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
