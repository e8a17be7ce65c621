package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"trainlog/internal/certificate"
	"trainlog/internal/config"
	"trainlog/internal/session"
	"trainlog/internal/training"
)

func testConfig() config.App {
	return config.App{
		JWTIssuer:     "trainlog-test",
		JWTSigningKey: "test-signing-key",
		AccessTTL:     time.Hour,
		AuthDelay:     0,
		TargetHours:   65,
		PageSize:      10,
	}
}

func newTestRouter() (*gin.Engine, *Server) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	srv := NewServer(cfg, training.NewStore(nil), certificate.NewStore(), session.NewHolder(cfg.AuthDelay), session.NewDirectory())
	r := gin.New()
	srv.Register(r)
	return r, srv
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signupToken(t *testing.T, r *gin.Engine, role string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/v1/auth/signup", "", gin.H{
		"name":     "김지민",
		"email":    fmt.Sprintf("%s@school.kr", role),
		"password": "pw",
		"role":     role,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("signup status = %d body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("no token in signup response: %s", w.Body.String())
	}
	// holder allows the next signup in tests that need a second identity
	w2 := doJSON(r, http.MethodPost, "/v1/auth/logout", "", nil)
	if w2.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", w2.Code)
	}
	return resp.Token
}

func trainingBody() gin.H {
	return gin.H{
		"training_name":    "교육과정 연수",
		"institution_name": "중앙교육연수원",
		"training_type":    "remote",
		"start_date":       "2026-03-02",
		"end_date":         "2026-03-06",
		"hours":            8,
	}
}

func TestGuardedRoutesRejectMissingToken(t *testing.T) {
	r, _ := newTestRouter()
	for _, path := range []string{"/v1/trainings", "/v1/stats", "/v1/certificates"} {
		w := doJSON(r, http.MethodGet, path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s status = %d, want 401", path, w.Code)
		}
	}
}

func TestAuthValidation(t *testing.T) {
	r, _ := newTestRouter()

	w := doJSON(r, http.MethodPost, "/v1/auth/login", "", gin.H{"password": "pw"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("login without email status = %d, want 400", w.Code)
	}
	w = doJSON(r, http.MethodPost, "/v1/auth/signup", "", gin.H{
		"name": "김지민", "email": "jimin@school.kr", "password": "pw", "role": "janitor",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("signup with unknown role status = %d, want 401", w.Code)
	}
}

func TestTrainingCRUDFlow(t *testing.T) {
	r, _ := newTestRouter()
	token := signupToken(t, r, "teacher")

	// create
	w := doJSON(r, http.MethodPost, "/v1/trainings", token, trainingBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", w.Code, w.Body.String())
	}
	var created training.Record
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" || created.Status == "" {
		t.Fatalf("created record incomplete: %+v", created)
	}

	// get
	w = doJSON(r, http.MethodGet, "/v1/trainings/"+created.ID, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	// list
	w = doJSON(r, http.MethodGet, "/v1/trainings?q=교육과정&type=remote", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var page training.Page
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.PageCount != 1 {
		t.Errorf("page = %+v", page)
	}

	// update
	body := trainingBody()
	body["hours"] = 12
	w = doJSON(r, http.MethodPut, "/v1/trainings/"+created.ID, token, body)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d body = %s", w.Code, w.Body.String())
	}

	// stats see the update
	w = doJSON(r, http.MethodGet, "/v1/stats", token, nil)
	var st training.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.TotalCount != 1 || st.TotalHours != 12 {
		t.Errorf("stats = %+v", st)
	}

	// delete is idempotent
	for i := 0; i < 2; i++ {
		w = doJSON(r, http.MethodDelete, "/v1/trainings/"+created.ID, token, nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("delete %d status = %d", i, w.Code)
		}
	}
	w = doJSON(r, http.MethodGet, "/v1/trainings/"+created.ID, token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", w.Code)
	}
}

func TestCreateTrainingValidationErrors(t *testing.T) {
	r, srv := newTestRouter()
	token := signupToken(t, r, "teacher")

	body := trainingBody()
	body["training_name"] = ""
	body["hours"] = 0
	w := doJSON(r, http.MethodPost, "/v1/trainings", token, body)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Errors["training_name"] == "" || resp.Errors["hours"] == "" {
		t.Errorf("errors = %v", resp.Errors)
	}
	if srv.store.Len() != 0 {
		t.Error("invalid input reached the store")
	}
}

func TestUpdateUnknownTrainingReturns404(t *testing.T) {
	r, _ := newTestRouter()
	token := signupToken(t, r, "teacher")
	w := doJSON(r, http.MethodPut, "/v1/trainings/unknown-id", token, trainingBody())
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAdminReportRoleGate(t *testing.T) {
	r, _ := newTestRouter()

	teacher := signupToken(t, r, "teacher")
	w := doJSON(r, http.MethodGet, "/v1/admin/report", teacher, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("teacher report status = %d, want 403", w.Code)
	}

	principal := signupToken(t, r, "principal")
	w = doJSON(r, http.MethodGet, "/v1/admin/report", principal, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("principal report status = %d", w.Code)
	}
	var rep training.AdminReport
	if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil {
		t.Fatal(err)
	}
	if rep.TotalTeachers != 2 {
		t.Errorf("total teachers = %d, want 2", rep.TotalTeachers)
	}
}

func TestUploadAndServeCertificate(t *testing.T) {
	r, _ := newTestRouter()
	token := signupToken(t, r, "teacher")

	pngData := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	upload := func(fileName string, data []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, _ := mw.CreateFormFile("file", fileName)
		_, _ = part.Write(data)
		_ = mw.Close()
		req := httptest.NewRequest(http.MethodPost, "/v1/uploads", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := upload("cert.png", pngData)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload status = %d body = %s", w.Code, w.Body.String())
	}
	var ref struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ref); err != nil || ref.ID == "" {
		t.Fatalf("upload response: %s", w.Body.String())
	}

	w = doJSON(r, http.MethodGet, ref.URL, token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("serve upload status = %d", w.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), pngData) {
		t.Error("served bytes differ from upload")
	}

	// rejected MIME type
	w = upload("notes.txt", []byte("plain text, not a certificate"))
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("text upload status = %d, want 422", w.Code)
	}

	// attaching an unknown reference fails validation
	body := trainingBody()
	body["certificate"] = gin.H{"ref_id": "missing", "file_name": "cert.png"}
	w = doJSON(r, http.MethodPost, "/v1/trainings", token, body)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("unknown ref status = %d, want 422", w.Code)
	}

	// attaching the real reference succeeds and shows up on /v1/certificates
	body["certificate"] = gin.H{"ref_id": ref.ID, "file_name": "cert.png"}
	w = doJSON(r, http.MethodPost, "/v1/trainings", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create with certificate status = %d body = %s", w.Code, w.Body.String())
	}
	w = doJSON(r, http.MethodGet, "/v1/certificates", token, nil)
	var list struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Total != 1 {
		t.Errorf("certificate list total = %d, want 1", list.Total)
	}
}

func TestStatsCountOnlyTheCallersRecords(t *testing.T) {
	r, srv := newTestRouter()
	token := signupToken(t, r, "teacher")

	// another user's record must not leak into this user's dashboard
	in := training.FormInput{
		Name:        "남의 연수",
		Institution: "중앙교육연수원",
		Type:        training.TypeRemote,
		StartDate:   "2026-01-05",
		EndDate:     "2026-01-09",
		Hours:       9,
	}
	srv.store.Add("someone-else", in)

	w := doJSON(r, http.MethodGet, "/v1/stats", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d", w.Code)
	}
	var st training.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.TotalCount != 0 || st.TotalHours != 0 || st.AchievementRate != 0 {
		t.Errorf("fresh user's stats include foreign records: %+v", st)
	}

	// the caller's own record does count
	w = doJSON(r, http.MethodPost, "/v1/trainings", token, trainingBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}
	w = doJSON(r, http.MethodGet, "/v1/stats", token, nil)
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatal(err)
	}
	if st.TotalCount != 1 || st.TotalHours != 8 {
		t.Errorf("own record missing from stats: %+v", st)
	}
}

func TestListPagination(t *testing.T) {
	r, srv := newTestRouter()
	token := signupToken(t, r, "teacher")

	for i := 0; i < 23; i++ {
		in := training.FormInput{
			Name:        fmt.Sprintf("연수 %02d", i),
			Institution: "중앙교육연수원",
			Type:        training.TypeRemote,
			StartDate:   "2026-01-05",
			EndDate:     "2026-01-09",
			Hours:       2,
		}
		srv.store.Add("u1", in)
	}

	w := doJSON(r, http.MethodGet, "/v1/trainings?page=3&size=10", token, nil)
	var page training.Page
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatal(err)
	}
	if page.PageCount != 3 || page.Total != 23 || len(page.Items) != 3 {
		t.Errorf("page = count %d total %d items %d", page.PageCount, page.Total, len(page.Items))
	}
}
