package server

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"docqa/internal/domain"
	"docqa/internal/extract"
	"docqa/internal/service"
)

// Answerer is the document QA service behind the HTTP handlers.
type Answerer interface {
	Ingest(text string) (service.Upload, error)
	Respond(ctx context.Context, query string, history []domain.Message, segments []string) service.Reply
}

// Handler serves the upload and question endpoints.
type Handler struct {
	svc       Answerer
	uploadDir string
	logger    *slog.Logger
}

func NewHandler(svc Answerer, uploadDir string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, uploadDir: uploadDir, logger: logger}
}

func (h *Handler) HandleWelcome(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Welcome to the document question answering API"})
}

func (h *Handler) HandleHealthy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"result": "ok"})
}

// HandleUpload extracts and segments an uploaded document. The file is
// stored under a random name only for the duration of the request.
func (h *Handler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return ErrMissingFile()
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !extract.Supported(ext) {
		return NewError(fiber.StatusBadRequest, "only PDF and plain text files are allowed")
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return err
	}
	fileID := uuid.NewString()
	path := filepath.Join(h.uploadDir, fileID+ext)
	if err := c.SaveFile(fileHeader, path); err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			h.logger.Warn("failed to remove upload", "path", path, "error", err)
		}
	}()

	text, err := extract.FromFile(path)
	if err != nil {
		return uploadError(err)
	}
	up, err := h.svc.Ingest(text)
	if err != nil {
		return uploadError(err)
	}

	h.logger.Info("upload processed",
		"fileID", fileID,
		"filename", fileHeader.Filename,
		"segments", len(up.Segments),
	)
	return c.JSON(UploadResponse{
		Message:  "document uploaded and processed",
		FileID:   fileID,
		Filename: fileHeader.Filename,
		Segments: up.Segments,
		Summary:  up.Summary,
	})
}

func uploadError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNoExtractableText):
		return NewError(fiber.StatusBadRequest, "the document has no extractable text or is scanned")
	case errors.Is(err, domain.ErrUnsupportedFormat), errors.Is(err, extract.ErrInvalidPDF):
		return NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}

// HandleQuestion answers a question over the segments sent by the client.
func (h *Handler) HandleQuestion(c *fiber.Ctx) error {
	var params QuestionParams
	if err := c.BodyParser(&params); err != nil {
		return ErrBadRequest()
	}
	if errs := params.Validate(); len(errs) > 0 {
		return NewValidationError(errs)
	}

	reply := h.svc.Respond(c.UserContext(), params.Question, params.Messages(), params.Segments)
	return c.JSON(AnswerResponse{
		Answer:       reply.Text,
		SegmentIndex: reply.Selection.Index,
		Score:        reply.Selection.Score,
		Reason:       reply.Selection.Reason.String(),
	})
}
