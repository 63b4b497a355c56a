//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/projectdesk/projectdesk/internal/auth"
	"github.com/projectdesk/projectdesk/internal/model"
	"github.com/projectdesk/projectdesk/internal/repository"
)

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type projectResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type projectListResponse struct {
	Data []projectResponse `json:"data"`
}

type studentResponse struct {
	ID         int64  `json:"id"`
	CodeNumber string `json:"code_number"`
	FirstName  string `json:"first_name"`
	ProjectID  int64  `json:"project_id"`
}

type taskResponse struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

type taskListResponse struct {
	Data []taskResponse `json:"data"`
}

func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("PROJECTDESK_BASE_URL", "http://localhost:8080")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatalf("DATABASE_URL is required for e2e tests")
	}

	suffix := time.Now().UnixNano()

	username := fmt.Sprintf("e2e-user-%d", suffix)
	registerUser(t, baseURL, username, "e2e-password-1")
	token := login(t, baseURL, username, "e2e-password-1")

	project := createProject(t, baseURL, token, fmt.Sprintf("E2E Project %d", suffix))

	student := createStudent(t, baseURL, token, fmt.Sprintf("S-%d", suffix), project.ID)
	if student.ProjectID != project.ID {
		t.Fatalf("student not assigned to project: got %d, want %d", student.ProjectID, project.ID)
	}

	found := searchStudentByCode(t, baseURL, token, student.CodeNumber)
	if found.ID != student.ID {
		t.Fatalf("search by code returned wrong student: got id %d, want %d", found.ID, student.ID)
	}

	task := createTask(t, baseURL, token, fmt.Sprintf("E2E task %d", suffix), project.ID)
	if task.Status != "OPEN" {
		t.Fatalf("expected new task status OPEN, got %q", task.Status)
	}
	assertTaskSearchable(t, baseURL, token, task.ID, fmt.Sprintf("E2E task %d", suffix))

	assertOwnershipScoping(t, baseURL, project.ID, suffix)
	assertLogoutRevokesToken(t, baseURL, token)
}

// TestE2EAdminBootstrap validates that an admin account seeded directly in
// the database can authenticate and sees unowned records, while owned
// records of other users stay hidden from it.
func TestE2EAdminBootstrap(t *testing.T) {
	baseURL := envOrDefault("PROJECTDESK_BASE_URL", "http://localhost:8080")
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatalf("DATABASE_URL is required for e2e tests")
	}

	suffix := time.Now().UnixNano()
	adminName := fmt.Sprintf("e2e-admin-%d", suffix)
	bootstrapAdmin(t, dbURL, adminName, "e2e-admin-pass")

	adminToken := login(t, baseURL, adminName, "e2e-admin-pass")

	userName := fmt.Sprintf("e2e-owner-%d", suffix)
	registerUser(t, baseURL, userName, "e2e-password-1")
	userToken := login(t, baseURL, userName, "e2e-password-1")
	owned := createProject(t, baseURL, userToken, fmt.Sprintf("Owned %d", suffix))

	status := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/projects/%d", baseURL, owned.ID), adminToken, nil, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for admin on user-owned project, got %d", status)
	}
}

func TestE2ELoginRateLimit(t *testing.T) {
	baseURL := envOrDefault("PROJECTDESK_BASE_URL", "http://localhost:8080")
	if os.Getenv("E2E_RATE_LIMIT") == "" {
		t.Skip("E2E_RATE_LIMIT not set; skipping rate limit test")
	}

	client := &http.Client{Timeout: 10 * time.Second}
	payload, _ := json.Marshal(map[string]string{"username": "no-such-user", "password": "wrong"})

	var rateLimited bool
	var lastResp *http.Response
	for i := 0; i < 30; i++ {
		resp, err := client.Post(baseURL+"/api/auth/login", "application/json", bytes.NewReader(payload))
		if err != nil {
			t.Fatalf("login request: %v", err)
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			rateLimited = true
			lastResp = resp
			break
		}
		resp.Body.Close()
	}

	if !rateLimited {
		t.Fatalf("expected 429 after repeated login attempts, never hit rate limit")
	}
	defer lastResp.Body.Close()

	if lastResp.Header.Get("Retry-After") == "" {
		t.Error("missing Retry-After header on 429 response")
	}
}

// TestE2ENoSecretsInResponses validates that credentials are never echoed
// back in API responses.
func TestE2ENoSecretsInResponses(t *testing.T) {
	baseURL := envOrDefault("PROJECTDESK_BASE_URL", "http://localhost:8080")

	suffix := time.Now().UnixNano()
	username := fmt.Sprintf("e2e-secrets-%d", suffix)
	password := fmt.Sprintf("e2e-secret-pw-%d", suffix)

	client := &http.Client{Timeout: 10 * time.Second}

	payload, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := client.Post(baseURL+"/api/auth/register", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("register request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 from register, got %d", resp.StatusCode)
	}
	if strings.Contains(string(body), password) {
		t.Error("SECURITY: register response echoed the password")
	}
	if strings.Contains(string(body), "password_hash") || strings.Contains(string(body), "$argon2id$") {
		t.Error("SECURITY: register response contains the password hash")
	}

	badLogin, _ := json.Marshal(map[string]string{"username": username, "password": "wrong-" + password})
	resp2, err := client.Post(baseURL+"/api/auth/login", "application/json", bytes.NewReader(badLogin))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	body2, _ := io.ReadAll(resp2.Body)
	resp2.Body.Close()

	if strings.Contains(string(body2), password) {
		t.Error("SECURITY: login error response leaked the attempted password")
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func bootstrapAdmin(t *testing.T, dbURL, username, password string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer repo.Close()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create admin user: %v", err)
	}
}

func registerUser(t *testing.T, baseURL, username, password string) {
	t.Helper()

	payload := map[string]any{"username": username, "password": password}
	status := doJSON(t, http.MethodPost, baseURL+"/api/auth/register", "", payload, nil)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from register, got %d", status)
	}
}

func login(t *testing.T, baseURL, username, password string) string {
	t.Helper()

	payload := map[string]any{"username": username, "password": password}
	var resp loginResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/auth/login", "", payload, &resp)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from login, got %d", status)
	}
	if resp.Token == "" {
		t.Fatalf("login response missing token")
	}
	return resp.Token
}

func createProject(t *testing.T, baseURL, token, name string) projectResponse {
	t.Helper()

	payload := map[string]any{"name": name, "description": "created by e2e smoke test"}
	var resp projectResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/projects", token, payload, &resp)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from project create, got %d", status)
	}
	if resp.ID == 0 || resp.Name != name {
		t.Fatalf("project create response missing fields: %+v", resp)
	}
	return resp
}

func createStudent(t *testing.T, baseURL, token, code string, projectID int64) studentResponse {
	t.Helper()

	payload := map[string]any{
		"code_number": code,
		"first_name":  "Emma",
		"last_name":   fmt.Sprintf("Smoke-%s", code),
		"title":       "e2e enrollment",
		"project_id":  projectID,
	}
	var resp studentResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/students", token, payload, &resp)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from student create, got %d", status)
	}
	return resp
}

func searchStudentByCode(t *testing.T, baseURL, token, code string) studentResponse {
	t.Helper()

	var resp studentResponse
	status := doJSON(t, http.MethodGet, baseURL+"/api/students/search/code/"+code, token, nil, &resp)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from student code search, got %d", status)
	}
	return resp
}

func createTask(t *testing.T, baseURL, token, title string, projectID int64) taskResponse {
	t.Helper()

	payload := map[string]any{
		"title":      title,
		"priority":   "HIGH",
		"tags":       []string{"e2e", "smoke"},
		"project_id": projectID,
	}
	var resp taskResponse
	status := doJSON(t, http.MethodPost, baseURL+"/api/tasks", token, payload, &resp)
	if status != http.StatusCreated {
		t.Fatalf("expected 201 from task create, got %d", status)
	}
	return resp
}

func assertTaskSearchable(t *testing.T, baseURL, token string, taskID int64, title string) {
	t.Helper()

	endpoint := baseURL + "/api/tasks/search/title?q=" + strings.ReplaceAll(title, " ", "%20")
	var resp taskListResponse
	status := doJSON(t, http.MethodGet, endpoint, token, nil, &resp)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from task title search, got %d", status)
	}
	for _, task := range resp.Data {
		if task.ID == taskID {
			return
		}
	}
	t.Fatalf("task %d not found via title search", taskID)
}

// assertOwnershipScoping registers a second user and checks it can neither
// see nor guess the first user's project.
func assertOwnershipScoping(t *testing.T, baseURL string, projectID, suffix int64) {
	t.Helper()

	other := fmt.Sprintf("e2e-other-%d", suffix)
	registerUser(t, baseURL, other, "e2e-password-2")
	otherToken := login(t, baseURL, other, "e2e-password-2")

	var list projectListResponse
	status := doJSON(t, http.MethodGet, baseURL+"/api/projects", otherToken, nil, &list)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from project list, got %d", status)
	}
	for _, p := range list.Data {
		if p.ID == projectID {
			t.Fatalf("foreign project %d visible in another user's list", projectID)
		}
	}

	status = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/projects/%d", baseURL, projectID), otherToken, nil, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign project get, got %d", status)
	}
}

func assertLogoutRevokesToken(t *testing.T, baseURL, token string) {
	t.Helper()

	status := doJSON(t, http.MethodPost, baseURL+"/api/auth/logout", token, nil, nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200 from logout, got %d", status)
	}

	status = doJSON(t, http.MethodGet, baseURL+"/api/projects", token, nil, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401 with revoked token, got %d", status)
	}
}

func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()

	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		buf = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && resp.ContentLength != 0 {
			t.Fatalf("decode response: %v", err)
		}
	}

	return resp.StatusCode
}
