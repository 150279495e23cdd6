package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rawblock/flashengine/internal/db"
	"github.com/rawblock/flashengine/internal/engine"
	"github.com/rawblock/flashengine/pkg/models"
)

// maxSubmittedRows caps a single run's input table to prevent a single
// request from exhausting the search core's memory.
const maxSubmittedRows = 2_000_000

type APIHandler struct {
	dbStore  *db.PostgresStore
	wsHub    *Hub
	runs     *runRegistry
	defaults models.RunConfig
}

// SetupRouter wires the public health/websocket endpoints, the
// bearer-token-protected run submission and inspection endpoints, and the
// CORS middleware.
func SetupRouter(dbStore *db.PostgresStore, wsHub *Hub, defaults models.RunConfig) *gin.Engine {
	r := gin.Default()

	// Enable CORS — configurable via ALLOWED_ORIGINS env var
	// Production: ALLOWED_ORIGINS=https://example.com
	// Development: ALLOWED_ORIGINS=http://localhost:3000 (or leave empty for *)
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := &APIHandler{
		dbStore:  dbStore,
		wsHub:    wsHub,
		runs:     newRunRegistry(),
		defaults: defaults,
	}

	// ── Public endpoints (no auth) ─────────────────────────────
	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		pub.GET("/stream", wsHub.Subscribe)
	}

	// ── Protected endpoints (require bearer token if API_AUTH_TOKEN set) ──
	auth := r.Group("/api/v1")
	auth.Use(AuthMiddleware())
	// A run walks the full lattice and can run for tens of seconds, so
	// submission is rate-limited more tightly than read-only lookups.
	submitLimiter := NewRateLimiter(30, 5).Middleware()
	{
		auth.POST("/runs", submitLimiter, handler.handleSubmitRun)
		auth.GET("/runs", handler.handleListRuns)
		auth.GET("/runs/:id", handler.handleGetRun)
		auth.GET("/runs/:id/diagnostics", handler.handleGetDiagnostics)
		auth.POST("/runs/:id/cancel", handler.handleCancelRun)
	}

	r.Static("/dashboard", "./public")

	return r
}

// submitRunRequest is the wire shape for POST /api/v1/runs: the raw table,
// its hierarchies, and an optional per-request override of the server's
// configured default RunConfig.
type submitRunRequest struct {
	Table       models.RawTable       `json:"table"`
	Hierarchies []models.RawHierarchy `json:"hierarchies"`
	Config      *models.RunConfig    `json:"config,omitempty"`
}

// handleSubmitRun validates and accepts a new anonymization run, starts it
// in the background, and returns its id immediately with status "running".
// Callers poll GET /runs/:id or subscribe to /stream for completion.
func (h *APIHandler) handleSubmitRun(c *gin.Context) {
	var req submitRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if len(req.Table.Rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "table has no rows"})
		return
	}
	if len(req.Table.Rows) > maxSubmittedRows {
		c.JSON(http.StatusBadRequest, gin.H{"error": "table exceeds the maximum row count", "maxRows": maxSubmittedRows})
		return
	}

	rc := h.defaults
	if req.Config != nil {
		rc = *req.Config
	}
	cfg := engine.FromRunConfig(rc)

	runID := uuid.New().String()
	runCtx, cancel := context.WithCancel(context.Background())
	h.runs.add(runID, cancel)

	if h.dbStore != nil {
		running := models.RunResult{RunID: runID, Status: "running"}
		if err := h.dbStore.SaveRun(c.Request.Context(), runID, rc, running); err != nil {
			log.Printf("failed to record run %s as running: %v", runID, err)
		}
	}

	go h.executeRun(runCtx, runID, engine.Input{Table: req.Table, Hierarchies: req.Hierarchies}, rc, cfg)

	c.JSON(http.StatusAccepted, gin.H{
		"runId":  runID,
		"status": "running",
	})
}

// executeRun drives one anonymization run to completion and persists the
// outcome, broadcasting a notification over the websocket hub either way.
func (h *APIHandler) executeRun(ctx context.Context, runID string, input engine.Input, rc models.RunConfig, cfg engine.Config) {
	defer h.runs.remove(runID)

	out, err := engine.Run(ctx, input, cfg)

	result := models.RunResult{RunID: runID}
	var nodeStates []models.NodeStateView
	switch {
	case err == nil:
		result.Status = "done"
		result.LevelVector = out.LevelVector
		result.Quality = out.Quality
		result.OutlierCount = out.OutlierCount
		result.AnonymizedRows = out.AnonymizedRows
	case errors.Is(err, engine.ErrNoSolution):
		result.Status = "no_solution"
		if out != nil {
			nodeStates = out.NodeStates
		}
	case errors.Is(err, engine.ErrInterrupted):
		result.Status = "interrupted"
	default:
		result.Status = "error"
		result.Error = err.Error()
	}

	if h.dbStore != nil {
		if err := h.dbStore.SaveRun(context.Background(), runID, rc, result); err != nil {
			log.Printf("failed to persist outcome for run %s: %v", runID, err)
		}
		if len(nodeStates) > 0 {
			if err := h.dbStore.SaveNodeStates(context.Background(), runID, nodeStates); err != nil {
				log.Printf("failed to persist diagnostics for run %s: %v", runID, err)
			}
		}
	}

	h.wsHub.Broadcast(runCompletionPayload(result))
}

// handleGetRun returns one run's current status and, once available, its
// outcome.
func (h *APIHandler) handleGetRun(c *gin.Context) {
	if h.dbStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not connected"})
		return
	}
	runID := c.Param("id")
	result, found, err := h.dbStore.GetRun(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch run", "details": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleListRuns returns a paginated, most-recent-first list of submitted
// runs.
func (h *APIHandler) handleListRuns(c *gin.Context) {
	if h.dbStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not connected"})
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	runs, totalCount, err := h.dbStore.ListRuns(c.Request.Context(), page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list runs", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       runs,
		"totalCount": totalCount,
		"page":       page,
		"limit":      limit,
	})
}

// handleGetDiagnostics returns the annotated lattice states recorded for a
// run that ended in no_solution, the search core's evidence for why no
// node could be reached.
func (h *APIHandler) handleGetDiagnostics(c *gin.Context) {
	if h.dbStore == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not connected"})
		return
	}
	runID := c.Param("id")
	pool := h.dbStore.GetPool()
	rows, err := pool.Query(c.Request.Context(), `SELECT level, state, quality FROM anonymization_node_states WHERE run_id = $1`, runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch diagnostics", "details": err.Error()})
		return
	}
	defer rows.Close()

	states := []models.NodeStateView{}
	for rows.Next() {
		var st models.NodeStateView
		var quality *float64
		if err := rows.Scan(&st.Level, &st.State, &quality); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to scan diagnostics", "details": err.Error()})
			return
		}
		if quality != nil {
			st.Quality = *quality
		}
		states = append(states, st)
	}

	c.JSON(http.StatusOK, gin.H{"runId": runID, "nodeStates": states})
}

// handleCancelRun interrupts a still-running job. The run's eventual
// persisted status will be "interrupted" once its goroutine observes the
// cancellation.
func (h *APIHandler) handleCancelRun(c *gin.Context) {
	runID := c.Param("id")
	if !h.runs.cancel(runID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "run is not currently executing"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "cancelling", "runId": runID})
}

// handleHealth reports engine readiness for service discovery.
func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "operational",
		"dbConnected": h.dbStore != nil,
	})
}

func runCompletionPayload(result models.RunResult) []byte {
	payload := gin.H{
		"type":   "run_completed",
		"runId":  result.RunID,
		"status": result.Status,
	}
	b, _ := json.Marshal(payload)
	return b
}
