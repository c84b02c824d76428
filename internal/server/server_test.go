package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/ziadkadry99/gitscout/internal/config"
	"github.com/ziadkadry99/gitscout/internal/store"
)

func setupServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.UseMockLLM = true
	cfg.Amplification = config.AmplificationOff

	st := store.New(cfg.DataDir)
	return New(cfg, st), st
}

// seedRepo creates a git worktree for the project with one commit.
func seedRepo(t *testing.T, st *store.Store, project string, files map[string]string) string {
	t.Helper()
	dir := st.WorktreePath(project)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := wt.Add(name); err != nil {
			t.Fatal(err)
		}
	}
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return hash.String()
}

func postJSON(t *testing.T, srv *Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	srv, _ := setupServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("healthz: %d", w.Code)
	}
}

func TestLoadEndToEndWithMockLLM(t *testing.T) {
	srv, st := setupServer(t)
	seedRepo(t, st, "proj", map[string]string{"a.txt": "hello"})

	w := postJSON(t, srv, "/load", map[string]any{"project_name": "proj"})
	if w.Code != http.StatusOK {
		t.Fatalf("load: %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		NewCommitOIDs []string `json:"new_commit_oids"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.NewCommitOIDs) != 1 {
		t.Fatalf("expected one new oid, got %v", resp.NewCommitOIDs)
	}

	logs, err := st.ReadCommitLogs("proj")
	if err != nil || len(logs) != 1 {
		t.Fatalf("logs not persisted: %v, %v", logs, err)
	}
}

func TestLoadReturns423WhenLocked(t *testing.T) {
	srv, st := setupServer(t)
	seedRepo(t, st, "proj", map[string]string{"a.txt": "hello"})

	if err := st.AcquireLock("proj"); err != nil {
		t.Fatal(err)
	}
	w := postJSON(t, srv, "/load", map[string]any{"project_name": "proj"})
	if w.Code != http.StatusLocked {
		t.Errorf("expected 423, got %d", w.Code)
	}
}

func TestLoadRejectsMissingProject(t *testing.T) {
	srv, _ := setupServer(t)
	w := postJSON(t, srv, "/load", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, st := setupServer(t)
	if err := st.AcquireLock("proj"); err != nil {
		t.Fatal(err)
	}
	_ = st.AppendErrorLog("proj", "something broke")

	req := httptest.NewRequest(http.MethodGet, "/status?project_name=proj", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status: %d", w.Code)
	}

	var report StatusReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !report.LockFilePresent {
		t.Error("lock should be reported present")
	}
	if report.LockTimeDuration < 0 {
		t.Errorf("lock duration should be non-negative: %f", report.LockTimeDuration)
	}
	if report.ErrorLogs == "" {
		t.Error("error log should be surfaced")
	}
}

func TestRetrieveFileContentsSkipsIgnoredAndBinary(t *testing.T) {
	srv, st := setupServer(t)
	seedRepo(t, st, "proj", map[string]string{
		"main.go":    "package main",
		"secret.env": "TOKEN=x",
		"pic.png":    "\x89PNG",
	})

	w := postJSON(t, srv, "/retrieve-file-contents", map[string]any{
		"project_name": "proj",
		"file_paths":   []string{"main.go", "secret.env", "pic.png", "ghost.go"},
		"ignore_files": []string{"*.env"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("retrieve: %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Contents           map[string]string `json:"contents"`
		RetrievedFilePaths []string          `json:"retrieved_file_paths"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.RetrievedFilePaths) != 1 || resp.RetrievedFilePaths[0] != "main.go" {
		t.Errorf("only main.go should be retrieved: %v", resp.RetrievedFilePaths)
	}
	if resp.Contents["main.go"] != "package main" {
		t.Errorf("contents wrong: %v", resp.Contents)
	}
}

func TestGetFileSummary(t *testing.T) {
	srv, st := setupServer(t)
	cache := map[string]store.FileCacheEntry{
		"a.go": {Summary: "summary of a", Embedding: []float64{1}},
	}
	if err := st.WriteFileCache("proj", cache); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/get-file-summary?project_name=proj&file_paths=a.go,missing.go", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get-file-summary: %d", w.Code)
	}

	var resp []FileSummary
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(resp))
	}
	if resp[0].Summary != "summary of a" {
		t.Errorf("cached summary missing: %+v", resp[0])
	}
	if resp[1].Summary != "" {
		t.Errorf("uncached path should have empty summary: %+v", resp[1])
	}
}

func TestGetFileSummaryRequiresParams(t *testing.T) {
	srv, _ := setupServer(t)
	req := httptest.NewRequest(http.MethodGet, "/get-file-summary", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestInferFileAfterLoad(t *testing.T) {
	srv, st := setupServer(t)
	seedRepo(t, st, "proj", map[string]string{"a.txt": "hello"})

	if w := postJSON(t, srv, "/load", map[string]any{"project_name": "proj"}); w.Code != http.StatusOK {
		t.Fatalf("load: %d: %s", w.Code, w.Body.String())
	}

	w := postJSON(t, srv, "/infer-file", map[string]any{
		"project_name":      "proj",
		"problem_statement": "where is the greeting text",
		"match_strength":    "low",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("infer-file: %d: %s", w.Code, w.Body.String())
	}

	var results []InferredPath
	if err := json.Unmarshal(w.Body.Bytes(), &results); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, r := range results {
		if r.PathType != "commit" && r.PathType != "localization" {
			t.Errorf("invalid path_type %q", r.PathType)
		}
	}
}

func TestInferFileRequiresProblem(t *testing.T) {
	srv, st := setupServer(t)
	seedRepo(t, st, "proj", map[string]string{"a.txt": "hello"})

	w := postJSON(t, srv, "/infer-file", map[string]any{"project_name": "proj"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestLoadTokenCount(t *testing.T) {
	srv, st := setupServer(t)
	seedRepo(t, st, "proj", map[string]string{"a.txt": "hello world"})

	w := postJSON(t, srv, "/load/token-count", map[string]any{"project_name": "proj"})
	if w.Code != http.StatusOK {
		t.Fatalf("token-count: %d: %s", w.Code, w.Body.String())
	}

	var tc TokenCount
	if err := json.Unmarshal(w.Body.Bytes(), &tc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tc.InferenceTokens <= 0 {
		t.Errorf("expected positive inference estimate, got %d", tc.InferenceTokens)
	}
}

func TestAddRepositoryRequiresURL(t *testing.T) {
	srv, _ := setupServer(t)
	w := postJSON(t, srv, "/add-repository", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestFetchAndCheckoutUnknownRevision(t *testing.T) {
	srv, st := setupServer(t)
	seedRepo(t, st, "proj", map[string]string{"a.txt": "hello"})

	w := postJSON(t, srv, "/fetch-and-checkout", map[string]any{
		"project_name": "proj",
		"branch_name":  "no-such-branch",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}
