package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/neuvecom/hebodan/common"
)

type JobStatus struct {
	ID        string     `json:"id"`
	Status    string     `json:"status"`
	Theme     string     `json:"theme"`
	Error     string     `json:"error,omitempty"`
	StartedAt time.Time  `json:"started_at"`
	DoneAt    *time.Time `json:"done_at,omitempty"`
}

type Job struct {
	ID   string
	Opts PipelineOptions
}

// WorkerPool serializes episode renders behind a queue; a render saturates
// the CPU on its own, so workers usually stays at 1 or 2.
type WorkerPool struct {
	jobs       chan *Job
	results    map[string]*JobStatus
	mu         sync.RWMutex
	wg         sync.WaitGroup
	numWorkers int
	pipeline   *Pipeline
}

func NewWorkerPool(pipeline *Pipeline, numWorkers, bufferSize int) *WorkerPool {
	pool := &WorkerPool{
		jobs:       make(chan *Job, bufferSize),
		results:    make(map[string]*JobStatus),
		numWorkers: numWorkers,
		pipeline:   pipeline,
	}
	pool.Start()
	return pool
}

func (p *WorkerPool) Start() {
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	log.Printf("Started %d workers", p.numWorkers)
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		log.Printf("[Worker %d] Processing job %s (theme: %s)", id, job.ID, job.Opts.Theme)
		p.processJob(job)
	}
	log.Printf("[Worker %d] Shutting down", id)
}

func (p *WorkerPool) processJob(job *Job) {
	p.updateStatus(job.ID, "processing", "")

	if err := p.pipeline.Run(context.Background(), job.Opts); err != nil {
		p.updateStatus(job.ID, "failed", err.Error())
		log.Printf("[Job %s] Failed: %v", job.ID, err)
		return
	}
	p.updateStatus(job.ID, "completed", "")
	log.Printf("[Job %s] Completed successfully", job.ID)
}

func (p *WorkerPool) updateStatus(jobID, status, errMsg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if job, exists := p.results[jobID]; exists {
		job.Status = status
		job.Error = errMsg
		if status == "completed" || status == "failed" {
			now := time.Now()
			job.DoneAt = &now
		}
	}
}

func (p *WorkerPool) Submit(job *Job) {
	p.mu.Lock()
	p.results[job.ID] = &JobStatus{
		ID:        job.ID,
		Status:    "queued",
		Theme:     job.Opts.Theme,
		StartedAt: time.Now(),
	}
	p.mu.Unlock()

	p.jobs <- job
}

func (p *WorkerPool) GetStatus(jobID string) (*JobStatus, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	status, ok := p.results[jobID]
	return status, ok
}

func (p *WorkerPool) Shutdown() {
	close(p.jobs)
	p.wg.Wait()
}

type Server struct {
	pool *WorkerPool
}

func NewServer(cfg *common.Config, numWorkers int) (*Server, error) {
	pipeline, err := NewPipeline(cfg)
	if err != nil {
		return nil, err
	}
	return &Server{pool: NewWorkerPool(pipeline, numWorkers, 100)}, nil
}

type generateRequest struct {
	Theme  string `json:"theme"`
	Draft  bool   `json:"draft"`
	Upload bool   `json:"upload"`
	Post   bool   `json:"post"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Theme == "" {
		http.Error(w, "Missing 'theme'", http.StatusBadRequest)
		return
	}

	jobID := fmt.Sprintf("%d", time.Now().UnixNano())
	s.pool.Submit(&Job{
		ID: jobID,
		Opts: PipelineOptions{
			Theme:  req.Theme,
			Draft:  req.Draft,
			Upload: req.Upload,
			Post:   req.Post,
		},
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"job_id":  jobID,
		"status":  "queued",
		"message": "Episode queued for generation",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("id")
	if jobID == "" {
		http.Error(w, "Missing job id", http.StatusBadRequest)
		return
	}

	status, ok := s.pool.GetStatus(jobID)
	if !ok {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":      "ok",
		"workers":     s.pool.numWorkers,
		"goroutines":  runtime.NumGoroutine(),
		"queued_jobs": len(s.pool.jobs),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		s.handleGenerate(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message":  "Episode Generation Server",
		"generate": "POST /generate with JSON {\"theme\": \"...\", \"draft\": true}",
		"status":   "GET /status?id=<job_id>",
		"health":   "GET /health",
	})
}

func (s *Server) Shutdown(ctx context.Context) {
	s.pool.Shutdown()
}

func StartServer(cfg *common.Config, addr string, numWorkers int) {
	server, err := NewServer(cfg, numWorkers)
	if err != nil {
		log.Fatalf("Server init failed: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", server.handleHealth)
	mux.HandleFunc("/status", server.handleStatus)
	mux.HandleFunc("/generate", server.handleGenerate)
	mux.HandleFunc("/", server.handleIndex)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
	}

	log.Printf("Server starting on %s with %d workers", addr, numWorkers)

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}
