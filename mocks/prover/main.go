package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultPort    = "8091"
	defaultDelayMs = "1500"
)

type CreateJobRequest struct {
	ContentHash string `json:"contentHash"`
	DelayMs     *int   `json:"delayMs,omitempty"`
	Fail        bool   `json:"fail,omitempty"`
}

type JobResponse struct {
	ID      string          `json:"id"`
	Status  string          `json:"status"`
	Journal json.RawMessage `json:"journal,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type job struct {
	contentHash string
	readyAt     time.Time
	fail        bool
}

var (
	delayMs = getEnvInt("DELAY_MS", defaultDelayMs)

	mu   sync.Mutex
	jobs = map[string]*job{}
)

func main() {
	port := getEnv("PORT", defaultPort)

	http.HandleFunc("/health", handleHealth)
	http.HandleFunc("/proofs", handleCreate)
	http.HandleFunc("/proofs/", handleStatus)

	log.Printf("Mock prover starting on port %s", port)
	log.Printf("Simulated proving time: %dms", delayMs)

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "prover",
		"version": "1.0.0",
	})
}

// handleCreate starts a job that completes after the configured delay with the
// submitted hash as its journal digest.
func handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CreateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.ContentHash == "" {
		sendError(w, "contentHash is required", http.StatusBadRequest)
		return
	}

	delay := delayMs
	if req.DelayMs != nil {
		delay = *req.DelayMs
	}
	id := newJobID()

	mu.Lock()
	jobs[id] = &job{
		contentHash: req.ContentHash,
		readyAt:     time.Now().Add(time.Duration(delay) * time.Millisecond),
		fail:        req.Fail,
	}
	mu.Unlock()

	log.Printf("Created proof job %s for %s (delay=%dms fail=%v)", id, req.ContentHash, delay, req.Fail)
	writeJSON(w, http.StatusCreated, JobResponse{ID: id, Status: "pending"})
}

// handleStatus reports a job. Ids of the form "digest-<hash>" complete immediately
// with <hash> as the digest so tests can skip job creation; "pending-*" never finish.
func handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		sendError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/proofs/")

	if digest, ok := strings.CutPrefix(id, "digest-"); ok {
		writeJSON(w, http.StatusOK, completed(id, digest))
		return
	}
	if strings.HasPrefix(id, "pending-") {
		writeJSON(w, http.StatusOK, JobResponse{ID: id, Status: "pending"})
		return
	}
	if strings.HasPrefix(id, "fail-") {
		writeJSON(w, http.StatusOK, JobResponse{ID: id, Status: "failed"})
		return
	}

	mu.Lock()
	j, ok := jobs[id]
	mu.Unlock()
	if !ok {
		sendError(w, "Proof job not found", http.StatusNotFound)
		return
	}

	switch {
	case time.Now().Before(j.readyAt):
		writeJSON(w, http.StatusOK, JobResponse{ID: id, Status: "pending"})
	case j.fail:
		writeJSON(w, http.StatusOK, JobResponse{ID: id, Status: "failed"})
	default:
		writeJSON(w, http.StatusOK, completed(id, j.contentHash))
	}
}

func completed(id, digest string) JobResponse {
	journal, _ := json.Marshal(map[string]string{"contentHash": digest})
	return JobResponse{ID: id, Status: "completed", Journal: journal}
}

func newJobID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return "job-" + hex.EncodeToString(b)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func sendError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key, defaultValue string) int {
	n, err := strconv.Atoi(getEnv(key, defaultValue))
	if err != nil {
		log.Fatalf("%s must be an integer", key)
	}
	return n
}
