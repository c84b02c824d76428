package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/gitscout/internal/errs"
)

// registerRoutes mounts the indexing and retrieval API.
func registerRoutes(r chi.Router, engine *Engine) {
	r.Post("/load", handleLoad(engine))
	r.Post("/load/token-count", handleLoadTokenCount(engine))
	r.Post("/add-repository", handleAddRepository(engine))
	r.Get("/add-repository/{id}", handleJobStatus(engine))
	r.Post("/fetch-and-checkout", handleFetchAndCheckout(engine))
	r.Post("/infer-file", handleInferFile(engine))
	r.Post("/infer-file/token-count", handleInferFileTokenCount(engine))
	r.Post("/retrieve-file-contents", handleRetrieveFileContents(engine))
	r.Get("/status", handleStatus(engine))
	r.Get("/get-file-summary", handleGetFileSummary(engine))
}

// writeError maps domain errors to HTTP status codes at the boundary.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errs.IsLocked(err):
		status = http.StatusLocked
	case errors.Is(err, errs.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrRevisionNotFound):
		status = http.StatusNotFound
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return false
	}
	return true
}

func handleLoad(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoadParams
		if !decodeBody(w, r, &req) {
			return
		}
		result, err := engine.Load(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		if result.NewCommitOIDs == nil {
			result.NewCommitOIDs = []string{}
		}
		writeJSON(w, map[string]any{
			"new_commit_oids": result.NewCommitOIDs,
			"duration_sec":    result.Duration.Seconds(),
		})
	}
}

func handleLoadTokenCount(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoadParams
		if !decodeBody(w, r, &req) {
			return
		}
		tc, err := engine.LoadTokenCount(r.Context(), req)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, tc)
	}
}

type addRepositoryRequest struct {
	CodehostURL string `json:"codehost_url"`
	LoadParams
}

func handleAddRepository(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addRepositoryRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if req.CodehostURL == "" {
			http.Error(w, `{"error":"codehost_url is required"}`, http.StatusBadRequest)
			return
		}
		job, err := engine.AddRepository(req.CodehostURL, req.LoadParams)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, job)
	}
}

func handleJobStatus(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job := engine.JobStatus(chi.URLParam(r, "id"))
		if job == nil {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, job)
	}
}

type fetchAndCheckoutRequest struct {
	BranchName string `json:"branch_name"`
	CommitOID  string `json:"commit_oid"`
	LoadParams
}

func handleFetchAndCheckout(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req fetchAndCheckoutRequest
		if !decodeBody(w, r, &req) {
			return
		}
		rev := req.CommitOID
		if rev == "" {
			rev = req.BranchName
		}
		result, err := engine.FetchAndCheckout(r.Context(), rev, req.LoadParams)
		if err != nil {
			writeError(w, err)
			return
		}
		if result.NewCommitOIDs == nil {
			result.NewCommitOIDs = []string{}
		}
		writeJSON(w, map[string]any{
			"new_commit_oids": result.NewCommitOIDs,
			"duration_sec":    result.Duration.Seconds(),
		})
	}
}

type inferFileRequest struct {
	ProblemStatement string `json:"problem_statement"`
	MatchStrength    string `json:"match_strength"`
	TopN             int    `json:"top_n"`
	LoadParams
}

func handleInferFile(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req inferFileRequest
		if !decodeBody(w, r, &req) {
			return
		}
		results, err := engine.InferFile(r.Context(), req.LoadParams, req.ProblemStatement, req.MatchStrength, req.TopN)
		if err != nil {
			writeError(w, err)
			return
		}
		if results == nil {
			results = []InferredPath{}
		}
		writeJSON(w, results)
	}
}

func handleInferFileTokenCount(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req inferFileRequest
		if !decodeBody(w, r, &req) {
			return
		}
		tc, err := engine.InferFileTokenCount(req.LoadParams, req.ProblemStatement)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, tc)
	}
}

type retrieveFileContentsRequest struct {
	FilePaths []string `json:"file_paths"`
	LoadParams
}

func handleRetrieveFileContents(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req retrieveFileContentsRequest
		if !decodeBody(w, r, &req) {
			return
		}
		contents, retrieved, err := engine.RetrieveFileContents(req.LoadParams, req.FilePaths)
		if err != nil {
			writeError(w, err)
			return
		}
		if retrieved == nil {
			retrieved = []string{}
		}
		writeJSON(w, map[string]any{
			"contents":             contents,
			"retrieved_file_paths": retrieved,
		})
	}
}

func handleStatus(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := engine.Status(r.URL.Query().Get("project_name"), r.URL.Query().Get("codehost_url"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, report)
	}
}

func handleGetFileSummary(engine *Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project := r.URL.Query().Get("project_name")
		if project == "" {
			http.Error(w, `{"error":"project_name is required"}`, http.StatusBadRequest)
			return
		}
		raw := r.URL.Query().Get("file_paths")
		var paths []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
		if len(paths) == 0 {
			http.Error(w, `{"error":"file_paths is required"}`, http.StatusBadRequest)
			return
		}
		summaries, err := engine.FileSummaries(project, paths)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, summaries)
	}
}
