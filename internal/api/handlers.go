package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Devojha408/requirements-gap-analyzer/internal/config"
	"github.com/Devojha408/requirements-gap-analyzer/internal/langflow"
	"github.com/Devojha408/requirements-gap-analyzer/internal/report"
)

// FlowEngine is the slice of the Langflow API the relay depends on.
type FlowEngine interface {
	Run(ctx context.Context, flowID, apiKey string, req langflow.RunRequest) (json.RawMessage, error)
	RunStream(ctx context.Context, flowID, apiKey string, req langflow.RunRequest) (*langflow.EventStream, error)
	UploadFile(ctx context.Context, flowID, apiKey, localPath, filename string) (string, error)
	FlowBuilds(ctx context.Context, flowID, apiKey string) (json.RawMessage, error)
}

const (
	runTimeout       = 5 * time.Minute
	uploadTimeout    = 2 * time.Minute
	monitorTimeout   = 15 * time.Second
	defaultKeepalive = 30 * time.Second
)

// Handler wires HTTP routes to the flow engine client.
type Handler struct {
	engine    FlowEngine
	cfg       *config.Config
	keepalive time.Duration
	logger    zerolog.Logger
}

// NewHandler constructs a Handler instance.
func NewHandler(engine FlowEngine, cfg *config.Config) *Handler {
	return &Handler{
		engine:    engine,
		cfg:       cfg,
		keepalive: defaultKeepalive,
		logger:    log.With().Str("component", "api").Logger(),
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.health)
	api := router.Group("/api")
	api.GET("/config", h.getConfig)
	api.POST("/upload-file", h.uploadFile)
	api.POST("/analyze", h.analyze)
	api.GET("/monitor/flow/:flow_id", h.monitorFlow)
	api.POST("/sections", h.sectionText)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) getConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"flow_id":           h.cfg.FlowID,
		"langflow_base_url": h.cfg.BaseURL,
	})
}

// resolveAPIKey prefers a caller-supplied key over the configured one.
// Absent both, it writes a 401 and reports false; no upstream call may
// happen in that case.
func (h *Handler) resolveAPIKey(c *gin.Context) (string, bool) {
	if key := c.GetHeader("x-api-key"); key != "" {
		return key, true
	}
	if h.cfg.APIKey != "" {
		return h.cfg.APIKey, true
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": "langflow api key not configured"})
	return "", false
}

// upstreamDetail extracts the engine's own failure message for relaying.
func upstreamDetail(err error) string {
	var apiErr *langflow.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return err.Error()
}

const maxUploadBytes = 10 << 20 // 10 MB

var allowedContentTypes = []string{
	"text/plain",
	"text/markdown",
	"application/pdf",
	"application/json",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

func isAllowedContentType(ct string) bool {
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	for _, allowed := range allowedContentTypes {
		if mediaType == allowed {
			return true
		}
	}
	return false
}

func (h *Handler) uploadFile(c *gin.Context) {
	apiKey, ok := h.resolveAPIKey(c)
	if !ok {
		return
	}
	if h.cfg.FlowID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "flow id not configured"})
		return
	}
	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !isAllowedContentType(contentType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported file type", "details": contentType})
		return
	}
	if err := os.MkdirAll(h.cfg.UploadDir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create upload directory failed"})
		return
	}
	originalName := filepath.Base(file.Filename)
	stagedPath := filepath.Join(h.cfg.UploadDir, uuid.New().String()+"_"+originalName)
	// The staged copy, partial or complete, only exists for the duration
	// of this request.
	defer func() {
		if err := os.Remove(stagedPath); err != nil && !os.IsNotExist(err) {
			h.logger.Warn().Err(err).Str("path", stagedPath).Msg("remove staged upload failed")
		}
	}()
	if err := c.SaveUploadedFile(file, stagedPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save file failed"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), uploadTimeout)
	defer cancel()
	storedPath, err := h.engine.UploadFile(ctx, h.cfg.FlowID, apiKey, stagedPath, originalName)
	if err != nil {
		h.logger.Error().Err(err).Str("file", originalName).Msg("upload to langflow failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload file to langflow", "details": upstreamDetail(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"file_path":     storedPath,
		"original_name": originalName,
	})
}

// Analysis request interface
type analyzeRequest struct {
	InputValue string `json:"input_value"`
	FilePath   string `json:"file_path"`
	SessionID  string `json:"session_id"`
}

func (h *Handler) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.InputValue) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "input_value is required"})
		return
	}
	apiKey, ok := h.resolveAPIKey(c)
	if !ok {
		return
	}
	if h.cfg.FlowID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "flow id not configured"})
		return
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("analysis_%d", time.Now().UnixMilli())
	}
	runReq := langflow.RunRequest{
		InputValue: req.InputValue,
		InputType:  "chat",
		OutputType: "chat",
		SessionID:  sessionID,
	}
	if req.FilePath != "" {
		if h.cfg.FileComponent == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file component not configured"})
			return
		}
		runReq.Tweaks = map[string]map[string]any{
			h.cfg.FileComponent: {"path": req.FilePath},
		}
	}
	if c.Query("stream") == "true" {
		h.analyzeStream(c, apiKey, sessionID, runReq)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), runTimeout)
	defer cancel()
	started := time.Now()
	payload, err := h.engine.Run(ctx, h.cfg.FlowID, apiKey, runReq)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("analysis run failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed", "details": upstreamDetail(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": sessionID,
		"elapsed_ms": time.Since(started).Milliseconds(),
		"response":   payload,
	})
}

// analyzeStream relays upstream events to the caller as newline-delimited
// JSON. The upstream call is opened before any response byte is written so
// open failures can still produce a plain JSON error.
func (h *Handler) analyzeStream(c *gin.Context, apiKey, sessionID string, runReq langflow.RunRequest) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}
	started := time.Now()
	stream, err := h.engine.RunStream(c.Request.Context(), h.cfg.FlowID, apiKey, runReq)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", sessionID).Msg("open analysis stream failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed", "details": upstreamDetail(err)})
		return
	}
	defer stream.Close()

	c.Writer.Header().Set("Content-Type", "application/x-ndjson")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	out := newEventWriter(c.Writer, flusher)
	if err := out.send(gin.H{"type": eventStart, "session_id": sessionID}); err != nil {
		return
	}
	stop := startHeartbeat(out, h.keepalive)
	defer stop()

	var transcript strings.Builder
	for {
		ev, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			h.logger.Error().Err(err).Str("session_id", sessionID).Msg("analysis stream failed")
			_ = out.sendTerminal(gin.H{
				"type":  eventError,
				"error": fmt.Sprintf("analysis failed after %.1fs: %s", time.Since(started).Seconds(), upstreamDetail(err)),
			})
			return
		}
		if ev.Event == langflow.EventEnd {
			break
		}
		switch ev.Event {
		case langflow.EventAddMessage:
			if err := out.send(gin.H{"type": eventAddMessage, "message": ev.Data}); err != nil {
				return
			}
		case langflow.EventToken:
			chunk := ev.Chunk()
			transcript.WriteString(chunk)
			if err := out.send(gin.H{"type": eventToken, "chunk": chunk}); err != nil {
				return
			}
		case langflow.EventError:
			_ = out.sendTerminal(gin.H{
				"type":  eventError,
				"error": fmt.Sprintf("analysis failed after %.1fs: %s", time.Since(started).Seconds(), ev.ErrorText()),
			})
			return
		}
	}
	h.logger.Debug().
		Str("session_id", sessionID).
		Int("transcript_chars", transcript.Len()).
		Msg("analysis stream complete")
	_ = out.sendTerminal(gin.H{
		"type":       eventEnd,
		"session_id": sessionID,
		"elapsed_ms": time.Since(started).Milliseconds(),
	})
}

func (h *Handler) monitorFlow(c *gin.Context) {
	apiKey, ok := h.resolveAPIKey(c)
	if !ok {
		return
	}
	flowID := c.Param("flow_id")
	ctx, cancel := context.WithTimeout(c.Request.Context(), monitorTimeout)
	defer cancel()
	builds, err := h.engine.FlowBuilds(ctx, flowID, apiKey)
	if err != nil {
		h.logger.Error().Err(err).Str("flow_id", flowID).Msg("fetch flow builds failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch flow status", "details": upstreamDetail(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "builds": builds})
}

// Section splitting interface
type sectionsRequest struct {
	Text string `json:"text"`
}

func (h *Handler) sectionText(c *gin.Context) {
	var req sectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	sections := report.Parse(req.Text)
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"summary":         sections.Summary,
		"gaps":            sections.Gaps,
		"recommendations": sections.Recommendations,
	})
}
