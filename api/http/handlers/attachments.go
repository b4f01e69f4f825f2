package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/artem13815/brandreview/api/http/presenter"
	"github.com/artem13815/brandreview/pkg/email"
	"github.com/artem13815/brandreview/pkg/metrics"
	"github.com/artem13815/brandreview/pkg/pdfdoc"
)

// AttachmentHandler разбирает загруженные письма и PDF перед отправкой на проверку.
type AttachmentHandler struct {
	log      *zap.Logger
	maxBytes int64
}

func NewAttachmentHandler(log *zap.Logger) *AttachmentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AttachmentHandler{log: log, maxBytes: maxUploadBytes}
}

type emailResponse struct {
	Success bool `json:"success"`
	email.Message
}

type pdfResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	pdfdoc.Document
}

// ParseEmail extracts image attachments and inline images from an .eml upload.
// @Summary Извлечение изображений из письма
// @Tags    attachments
// @Accept  multipart/form-data
// @Produce json
// @Param   email formData file true "RFC 822 message (.eml)"
// @Success 200 {object} emailResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /parse-email [post]
func (h *AttachmentHandler) ParseEmail(c *fiber.Ctx) error {
	fh, data, ok, err := readUpload(c, "email", h.maxBytes)
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "No email file provided")
	}
	if err != nil {
		metrics.Uploads.WithLabelValues("email", "rejected").Inc()
		return presenter.ErrorDetails(c, http.StatusBadRequest, "Failed to parse email", err.Error())
	}

	msg, err := email.Extract(bytes.NewReader(data))
	if err != nil {
		metrics.Uploads.WithLabelValues("email", "error").Inc()
		h.log.Error("parse email", zap.String("filename", fh.Filename), zap.Error(err))
		return presenter.ErrorDetails(c, http.StatusInternalServerError, "Failed to parse email", err.Error())
	}
	metrics.Uploads.WithLabelValues("email", "ok").Inc()
	h.log.Info("email parsed", zap.String("filename", fh.Filename), zap.Int("images", len(msg.Images)))
	return presenter.JSON(c, http.StatusOK, emailResponse{Success: true, Message: msg})
}

// ParsePDF validates a PDF upload and packages it for direct model review.
// @Summary Подготовка PDF к проверке
// @Tags    attachments
// @Accept  multipart/form-data
// @Produce json
// @Param   pdf formData file true "PDF document"
// @Success 200 {object} pdfResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /parse-pdf [post]
func (h *AttachmentHandler) ParsePDF(c *fiber.Ctx) error {
	fh, data, ok, err := readUpload(c, "pdf", h.maxBytes)
	if !ok {
		return presenter.Error(c, http.StatusBadRequest, "No PDF file provided")
	}
	if err != nil {
		metrics.Uploads.WithLabelValues("pdf", "rejected").Inc()
		return presenter.ErrorDetails(c, http.StatusBadRequest, "Failed to process PDF", err.Error())
	}

	doc, err := pdfdoc.Inspect(fh.Filename, data)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, pdfdoc.ErrNotPDF) {
			status = http.StatusBadRequest
		}
		metrics.Uploads.WithLabelValues("pdf", "error").Inc()
		h.log.Warn("process pdf", zap.String("filename", fh.Filename), zap.Error(err))
		return presenter.ErrorDetails(c, status, "Failed to process PDF", err.Error())
	}
	metrics.Uploads.WithLabelValues("pdf", "ok").Inc()
	h.log.Info("pdf ready for review",
		zap.String("filename", fh.Filename),
		zap.Int("size_kb", len(data)/1024),
		zap.Int("pages", doc.PageCount),
	)
	return presenter.JSON(c, http.StatusOK, pdfResponse{
		Success:  true,
		Message:  "PDF will be analyzed directly by AI",
		Document: doc,
	})
}
