package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artem13815/brandreview/api/http/presenter"
	"github.com/artem13815/brandreview/pkg/brand"
	"github.com/artem13815/brandreview/pkg/review"
	"github.com/artem13815/brandreview/pkg/security/jwt"
)

// ReviewHandler exposes stored reviews and follow-up chat.
type ReviewHandler struct {
	svc review.UseCase
	log *zap.Logger
}

func NewReviewHandler(svc review.UseCase, log *zap.Logger) *ReviewHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReviewHandler{svc: svc, log: log}
}

type followUpRequest struct {
	Question string `json:"question"`
}

type followUpResponse struct {
	ReviewID string `json:"reviewId"`
	Answer   string `json:"answer"`
}

// Create запускает проверку макета и сохраняет результат.
// @Summary Проверка макета
// @Description Принимает изображение (base64 или data URL) либо текст документа, вызывает модель и сохраняет нормализованный результат.
// @Tags    reviews
// @Accept  json
// @Produce json
// @Param   body body review.Submission true "Макет"
// @Security BearerAuth
// @Success 201 {object} review.Review
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 502 {object} presenter.ErrorResponse
// @Router  /v1/reviews [post]
func (h *ReviewHandler) Create(c *fiber.Ctx) error {
	var sub review.Submission
	if err := c.BodyParser(&sub); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid request body")
	}
	if sub.SubmittedBy == "" {
		if name, ok := c.Locals(jwt.LocalName).(string); ok {
			sub.SubmittedBy = name
		} else if subject, ok := c.Locals(jwt.LocalSubject).(string); ok {
			sub.SubmittedBy = subject
		}
	}
	rv, err := h.svc.Review(c.UserContext(), sub)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusCreated, rv)
}

// List returns stored reviews, newest first.
// @Summary Список проверок
// @Tags    reviews
// @Produce json
// @Param   brandId query string false "Filter by brand"
// @Param   limit   query int    false "Page size (default 20, max 200)"
// @Param   offset  query int    false "Offset"
// @Security BearerAuth
// @Success 200 {array} review.Review
// @Router  /v1/reviews [get]
func (h *ReviewHandler) List(c *fiber.Ctx) error {
	limit, offset := parseLimitOffset(c, 20)
	items, err := h.svc.List(c.UserContext(), strings.TrimSpace(c.Query("brandId")), limit, offset)
	if err != nil {
		return h.fail(c, err)
	}
	if items == nil {
		items = []review.Review{}
	}
	return presenter.JSON(c, http.StatusOK, items)
}

// Get
// @Summary Проверка по ID
// @Tags    reviews
// @Produce json
// @Param   id path string true "Review ID"
// @Security BearerAuth
// @Success 200 {object} review.Review
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Router  /v1/reviews/{id} [get]
func (h *ReviewHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid review id")
	}
	rv, err := h.svc.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, rv)
}

// Chat отвечает на уточняющий вопрос по сохранённой проверке.
// @Summary Вопрос по результату проверки
// @Tags    reviews
// @Accept  json
// @Produce json
// @Param   id   path string          true "Review ID"
// @Param   body body followUpRequest true "Вопрос"
// @Security BearerAuth
// @Success 200 {object} followUpResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 502 {object} presenter.ErrorResponse
// @Router  /v1/reviews/{id}/chat [post]
func (h *ReviewHandler) Chat(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid review id")
	}
	var req followUpRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid request body")
	}
	answer, err := h.svc.FollowUp(c.UserContext(), id, req.Question)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.JSON(c, http.StatusOK, followUpResponse{ReviewID: id.String(), Answer: answer})
}

func (h *ReviewHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, review.ErrInvalidSubmission),
		errors.Is(err, review.ErrEmptyQuestion),
		errors.Is(err, brand.ErrInvalidBrandID):
		return presenter.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, review.ErrNotFound):
		return presenter.Error(c, http.StatusNotFound, err.Error())
	}
	h.log.Error("review request failed", zap.String("path", c.Path()), zap.Error(err))
	if isModelError(err) {
		return presenter.ErrorDetails(c, http.StatusBadGateway, "model call failed", modelErrorMessage(err))
	}
	return presenter.Error(c, http.StatusInternalServerError, "internal error")
}
