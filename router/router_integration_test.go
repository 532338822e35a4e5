package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/edupoint/thesis-portal-api/api"
	"github.com/edupoint/thesis-portal-api/database"
	"github.com/edupoint/thesis-portal-api/model"
	"github.com/edupoint/thesis-portal-api/services/storage"
)

// apiResponse mirrors the standard response envelope for assertions.
type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type authData struct {
	User struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
	Token string `json:"token"`
}

// setupTestApp wires the full router against a real database. The whole suite
// skips unless RUN_INTEGRATION_TESTS=true and TEST_DATABASE_URL points at a
// disposable PostgreSQL instance.
func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	t.Setenv("JWT_SECRET", "integration-test-secret")
	t.Setenv("GO_ENV", "test")

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	store := database.NewGORMStore(db)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	uploads, err := storage.NewSubmissionStorage(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("failed to create upload storage: %v", err)
	}

	app := api.NewApp()
	SetupRoutes(app, store, uploads)
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, 30000)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var parsed apiResponse
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			t.Fatalf("%s %s: invalid JSON response %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, parsed
}

func doUpload(t *testing.T, app *fiber.App, path, token, filename string, content []byte) (int, apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, 30000)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	var parsed apiResponse
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			t.Fatalf("POST %s: invalid JSON response %q: %v", path, raw, err)
		}
	}
	return resp.StatusCode, parsed
}

func registerUser(t *testing.T, app *fiber.App, role, email string) authData {
	t.Helper()

	body := map[string]interface{}{
		"email":      email,
		"password":   "testing-password-123",
		"first_name": "Test",
		"last_name":  "User",
		"role":       role,
	}
	switch role {
	case "STUDENT":
		body["student"] = map[string]interface{}{"student_number": fmt.Sprintf("S-%d", time.Now().UnixNano())}
	case "SUPERVISOR":
		body["supervisor"] = map[string]interface{}{"department": "Computer Science"}
	case "ADMIN":
		body["admin"] = map[string]interface{}{"position": "Registrar"}
	}

	status, resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", body)
	if status != http.StatusCreated {
		t.Fatalf("register %s returned %d: %+v", role, status, resp.Error)
	}

	var data authData
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to parse register response: %v", err)
	}
	return data
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

func TestAuthFlow(t *testing.T) {
	app, _ := setupTestApp(t)

	email := uniqueEmail("student")
	registerUser(t, app, "STUDENT", email)

	// Duplicate email is a conflict.
	status, resp := doJSON(t, app, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"email":      email,
		"password":   "testing-password-123",
		"first_name": "Test",
		"last_name":  "User",
		"role":       "STUDENT",
		"student":    map[string]interface{}{"student_number": "S-DUP"},
	})
	if status != http.StatusConflict || resp.Error == nil || resp.Error.Code != "DUPLICATE_EMAIL" {
		t.Fatalf("duplicate register: got %d %+v", status, resp.Error)
	}

	// Login with the right password.
	status, resp = doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "testing-password-123",
	})
	if status != http.StatusOK {
		t.Fatalf("login returned %d: %+v", status, resp.Error)
	}
	var login authData
	if err := json.Unmarshal(resp.Data, &login); err != nil {
		t.Fatalf("failed to parse login response: %v", err)
	}
	if login.Token == "" {
		t.Fatal("login returned no token")
	}

	// Wrong password and unknown email produce the same message.
	status, wrongPass := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "not-the-password",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("wrong password returned %d", status)
	}
	status, unknown := doJSON(t, app, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    uniqueEmail("nobody"),
		"password": "not-the-password",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("unknown email returned %d", status)
	}
	if wrongPass.Error.Message != unknown.Error.Message {
		t.Errorf("login failures leak account existence: %q vs %q",
			wrongPass.Error.Message, unknown.Error.Message)
	}

	// Missing token vs garbage token.
	status, resp = doJSON(t, app, http.MethodGet, "/api/profile", "", nil)
	if status != http.StatusUnauthorized || resp.Error.Code != "AUTHENTICATION_REQUIRED" {
		t.Fatalf("missing token: got %d %+v", status, resp.Error)
	}
	status, resp = doJSON(t, app, http.MethodGet, "/api/profile", "garbage-token", nil)
	if status != http.StatusForbidden || resp.Error.Code != "INVALID_TOKEN" {
		t.Fatalf("garbage token: got %d %+v", status, resp.Error)
	}

	// Role guard discloses the caller's role.
	status, resp = doJSON(t, app, http.MethodPost, "/api/courses", login.Token, map[string]interface{}{
		"code": "X1", "name": "Not allowed",
	})
	if status != http.StatusForbidden || resp.Error.Code != "INSUFFICIENT_PERMISSIONS" {
		t.Fatalf("role guard: got %d %+v", status, resp.Error)
	}
}

func TestCourseAndEnrollmentFlow(t *testing.T) {
	app, _ := setupTestApp(t)

	admin := registerUser(t, app, "ADMIN", uniqueEmail("admin"))
	student := registerUser(t, app, "STUDENT", uniqueEmail("student"))

	// A fresh student has no enrolled courses.
	status, resp := doJSON(t, app, http.MethodGet, "/api/courses/enrolled", student.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("list enrolled returned %d: %+v", status, resp.Error)
	}
	var none []struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &none); err != nil {
		t.Fatalf("failed to parse enrolled courses: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected no enrolled courses, got %d", len(none))
	}

	code := fmt.Sprintf("CS-%d", time.Now().UnixNano())
	status, resp = doJSON(t, app, http.MethodPost, "/api/courses", admin.Token, map[string]interface{}{
		"code": code, "name": "Distributed Systems", "category": "Core",
	})
	if status != http.StatusCreated {
		t.Fatalf("create course returned %d: %+v", status, resp.Error)
	}
	var course struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &course); err != nil {
		t.Fatalf("failed to parse course: %v", err)
	}

	// Duplicate code is a conflict.
	status, resp = doJSON(t, app, http.MethodPost, "/api/courses", admin.Token, map[string]interface{}{
		"code": code, "name": "Distributed Systems again",
	})
	if status != http.StatusConflict || resp.Error.Code != "DUPLICATE_COURSE_CODE" {
		t.Fatalf("duplicate course: got %d %+v", status, resp.Error)
	}

	// Enroll, then enroll again.
	enrollBody := map[string]interface{}{"student_id": student.User.ID, "course_id": course.ID}
	status, resp = doJSON(t, app, http.MethodPost, "/api/courses/enroll", admin.Token, enrollBody)
	if status != http.StatusCreated {
		t.Fatalf("enroll returned %d: %+v", status, resp.Error)
	}
	status, resp = doJSON(t, app, http.MethodPost, "/api/courses/enroll", admin.Token, enrollBody)
	if status != http.StatusConflict || resp.Error.Code != "ALREADY_ENROLLED" {
		t.Fatalf("double enroll: got %d %+v", status, resp.Error)
	}

	// The student sees the course in their enrolled list.
	status, resp = doJSON(t, app, http.MethodGet, "/api/courses/enrolled", student.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("list enrolled returned %d: %+v", status, resp.Error)
	}
	var enrolled []struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &enrolled); err != nil {
		t.Fatalf("failed to parse enrolled courses: %v", err)
	}
	found := false
	for _, c := range enrolled {
		if c.ID == course.ID {
			found = true
		}
	}
	if !found {
		t.Error("enrolled course missing from student's list")
	}

	// Unenroll, then unenroll again.
	status, resp = doJSON(t, app, http.MethodDelete, "/api/courses/enroll", admin.Token, enrollBody)
	if status != http.StatusOK {
		t.Fatalf("unenroll returned %d: %+v", status, resp.Error)
	}
	status, resp = doJSON(t, app, http.MethodDelete, "/api/courses/enroll", admin.Token, enrollBody)
	if status != http.StatusNotFound || resp.Error.Code != "NOT_ENROLLED" {
		t.Fatalf("double unenroll: got %d %+v", status, resp.Error)
	}
}

func TestSubmissionAndGradingFlow(t *testing.T) {
	app, db := setupTestApp(t)

	admin := registerUser(t, app, "ADMIN", uniqueEmail("admin"))
	supervisor := registerUser(t, app, "SUPERVISOR", uniqueEmail("supervisor"))
	student := registerUser(t, app, "STUDENT", uniqueEmail("student"))
	outsider := registerUser(t, app, "STUDENT", uniqueEmail("outsider"))

	code := fmt.Sprintf("TH-%d", time.Now().UnixNano())
	status, resp := doJSON(t, app, http.MethodPost, "/api/courses", admin.Token, map[string]interface{}{
		"code": code, "name": "Thesis Seminar",
	})
	if status != http.StatusCreated {
		t.Fatalf("create course returned %d: %+v", status, resp.Error)
	}
	var course struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &course); err != nil {
		t.Fatalf("failed to parse course: %v", err)
	}

	// Wire up the supervisor and the student.
	status, resp = doJSON(t, app, http.MethodPost,
		fmt.Sprintf("/api/courses/%d/supervisors", course.ID), admin.Token,
		map[string]interface{}{"supervisor_id": supervisor.User.ID})
	if status != http.StatusCreated {
		t.Fatalf("assign supervisor returned %d: %+v", status, resp.Error)
	}
	status, resp = doJSON(t, app, http.MethodPost, "/api/courses/enroll", admin.Token,
		map[string]interface{}{"student_id": student.User.ID, "course_id": course.ID})
	if status != http.StatusCreated {
		t.Fatalf("enroll returned %d: %+v", status, resp.Error)
	}

	// The supervisor creates an assignment on their course.
	status, resp = doJSON(t, app, http.MethodPost, "/api/assignments", supervisor.Token, map[string]interface{}{
		"course_id": course.ID, "title": "Literature review", "instructions": "Upload a draft.",
	})
	if status != http.StatusCreated {
		t.Fatalf("create assignment returned %d: %+v", status, resp.Error)
	}
	var assignment struct {
		ID uint `json:"id"`
	}
	if err := json.Unmarshal(resp.Data, &assignment); err != nil {
		t.Fatalf("failed to parse assignment: %v", err)
	}
	submitPath := fmt.Sprintf("/api/assignments/%d/submit", assignment.ID)

	// A valid file from a student who is not enrolled is rejected and leaves
	// no submission row.
	status, resp = doUpload(t, app, submitPath, outsider.Token, "draft.docx", []byte("outsider draft"))
	if status != http.StatusForbidden || resp.Error.Code != "NOT_ENROLLED" {
		t.Fatalf("unenrolled upload: got %d %+v", status, resp.Error)
	}
	var outsiderRows int64
	if err := db.Model(&model.AssignmentSubmission{}).
		Where("assignment_id = ? AND student_id = ?", assignment.ID, outsider.User.ID).
		Count(&outsiderRows).Error; err != nil {
		t.Fatalf("failed to count submissions: %v", err)
	}
	if outsiderRows != 0 {
		t.Errorf("unenrolled upload left %d submission rows", outsiderRows)
	}

	// Disallowed extension is rejected before anything is stored.
	status, resp = doUpload(t, app, submitPath, student.Token, "draft.exe", []byte("MZ..."))
	if status != http.StatusBadRequest || resp.Error.Code != "UNSUPPORTED_FILE_TYPE" {
		t.Fatalf("exe upload: got %d %+v", status, resp.Error)
	}

	// Over the 10MB cap but under the body limit: the handler's size gate.
	status, resp = doUpload(t, app, submitPath, student.Token, "huge.docx", make([]byte, 10*1024*1024+1))
	if status != http.StatusBadRequest || resp.Error.Code != "FILE_TOO_LARGE" {
		t.Fatalf("oversized upload: got %d %+v", status, resp.Error)
	}

	// Over the body limit: the framework rejects it, same error code.
	status, resp = doUpload(t, app, submitPath, student.Token, "huger.docx", make([]byte, 13*1024*1024))
	if status != http.StatusBadRequest || resp.Error.Code != "FILE_TOO_LARGE" {
		t.Fatalf("body-limit upload: got %d %+v", status, resp.Error)
	}

	// A .docx upload lands.
	status, resp = doUpload(t, app, submitPath, student.Token, "draft.docx", []byte("draft one"))
	if status != http.StatusCreated {
		t.Fatalf("docx upload returned %d: %+v", status, resp.Error)
	}
	var submission struct {
		ID     uint   `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Data, &submission); err != nil {
		t.Fatalf("failed to parse submission: %v", err)
	}
	if submission.Status != "SUBMITTED" {
		t.Errorf("expected status SUBMITTED, got %s", submission.Status)
	}

	// Resubmission replaces the row instead of adding one.
	status, resp = doUpload(t, app, submitPath, student.Token, "draft-v2.docx", []byte("draft two"))
	if status != http.StatusCreated {
		t.Fatalf("resubmit returned %d: %+v", status, resp.Error)
	}
	var resubmission struct {
		ID       uint   `json:"id"`
		FileName string `json:"file_name"`
	}
	if err := json.Unmarshal(resp.Data, &resubmission); err != nil {
		t.Fatalf("failed to parse resubmission: %v", err)
	}
	if resubmission.ID != submission.ID {
		t.Errorf("resubmission created a second row: %d vs %d", resubmission.ID, submission.ID)
	}
	if resubmission.FileName != "draft-v2.docx" {
		t.Errorf("resubmission kept the old file name: %s", resubmission.FileName)
	}

	// Out-of-range grades are rejected, the bounds themselves are accepted.
	gradePath := fmt.Sprintf("/api/assignments/submissions/%d/grade", submission.ID)
	for _, bad := range []int{-1, 101, 150} {
		status, resp = doJSON(t, app, http.MethodPost, gradePath, supervisor.Token,
			map[string]interface{}{"grade": bad})
		if status != http.StatusBadRequest || resp.Error.Code != "INVALID_GRADE" {
			t.Fatalf("grade %d: got %d %+v", bad, status, resp.Error)
		}
	}
	status, resp = doJSON(t, app, http.MethodPost, gradePath, supervisor.Token,
		map[string]interface{}{"grade": 0, "feedback": "Needs work"})
	if status != http.StatusOK {
		t.Fatalf("grade 0 returned %d: %+v", status, resp.Error)
	}
	status, resp = doJSON(t, app, http.MethodPost, gradePath, supervisor.Token,
		map[string]interface{}{"grade": 100, "feedback": "Much better"})
	if status != http.StatusOK {
		t.Fatalf("grade 100 returned %d: %+v", status, resp.Error)
	}
	var graded struct {
		Status string `json:"status"`
		Grade  *int   `json:"grade"`
	}
	if err := json.Unmarshal(resp.Data, &graded); err != nil {
		t.Fatalf("failed to parse graded submission: %v", err)
	}
	if graded.Status != "GRADED" || graded.Grade == nil || *graded.Grade != 100 {
		t.Errorf("unexpected graded state: %+v", graded)
	}
}
