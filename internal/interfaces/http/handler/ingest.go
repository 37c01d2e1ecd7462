package handler

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	ingestapp "github.com/qayed/backend/internal/application/ingest"
	"github.com/qayed/backend/internal/infrastructure/ingest"
)

// maxStatementUploadBytes caps a single uploaded document at 25 MB
const maxStatementUploadBytes = 25 << 20

// IngestHandler streams statement extraction progress over SSE
type IngestHandler struct {
	BaseHandler
	ingestService *ingestapp.Service
	logger        *zap.Logger
}

// IngestHandlerOption configures an IngestHandler
type IngestHandlerOption func(*IngestHandler)

// WithIngestHandlerLogger sets the logger for the handler
func WithIngestHandlerLogger(logger *zap.Logger) IngestHandlerOption {
	return func(h *IngestHandler) {
		h.logger = logger
	}
}

// NewIngestHandler creates a new IngestHandler
func NewIngestHandler(ingestService *ingestapp.Service, opts ...IngestHandlerOption) *IngestHandler {
	h := &IngestHandler{
		ingestService: ingestService,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// IngestStatements godoc
// @ID           ingestStatements
// @Summary      Extract and persist statements from uploaded documents
// @Description  Accepts a multipart batch of PDF documents and streams extraction progress as Server-Sent Events. Per-file failures are reported inline; the stream always ends with exactly one complete or error frame.
// @Tags         ingest
// @Accept       multipart/form-data
// @Produce      text/event-stream
// @Param        files formData file true "Statement documents"
// @Success      200 {string} string "SSE stream"
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /ingest/statements [post]
func (h *IngestHandler) IngestStatements(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.BadRequest(c, "Invalid company ID")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		h.BadRequest(c, "Invalid multipart form")
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		h.BadRequest(c, "At least one file is required")
		return
	}

	files := make([]ingest.File, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		if fh.Size > maxStatementUploadBytes {
			h.BadRequest(c, fmt.Sprintf("File %s exceeds the upload size limit", fh.Filename))
			return
		}

		f, err := fh.Open()
		if err != nil {
			h.BadRequest(c, fmt.Sprintf("Could not read file %s", fh.Filename))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			h.BadRequest(c, fmt.Sprintf("Could not read file %s", fh.Filename))
			return
		}

		files = append(files, ingest.File{Name: fh.Filename, Data: data})
	}

	events, err := h.ingestService.Ingest(c.Request.Context(), companyID, files)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	// Set SSE headers
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	h.logger.Info("Statement ingestion stream opened",
		zap.String("company_id", companyID.String()),
		zap.Int("file_count", len(files)))

	reqCtx := c.Request.Context()
	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("Statement ingestion client disconnected",
				zap.String("company_id", companyID.String()))
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.sendEvent(c.Writer, ev)
			c.Writer.Flush()
		}
	}
}

// sendEvent writes one progress frame to the response writer in SSE format
func (h *IngestHandler) sendEvent(w io.Writer, ev ingest.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("Failed to marshal ingest event", zap.Error(err))
		return
	}

	fmt.Fprintf(w, "event: %s\n", ev.Type)
	fmt.Fprintf(w, "data: %s\n\n", data)
}
