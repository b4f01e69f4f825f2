package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/artem13815/brandreview/api/http/presenter"
	"github.com/artem13815/brandreview/pkg/brand"
	"github.com/artem13815/brandreview/pkg/llm"
	"github.com/artem13815/brandreview/pkg/review"
)

// AgentHandler serves the agent proxy endpoint used by the front-end.
type AgentHandler struct {
	svc review.UseCase
	log *zap.Logger
	now func() time.Time
}

func NewAgentHandler(svc review.UseCase, log *zap.Logger) *AgentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AgentHandler{svc: svc, log: log, now: time.Now}
}

type agentRequest struct {
	AgentID  string `json:"agentId"`
	Query    string `json:"query"`
	Endpoint string `json:"endpoint"`
	BrandID  string `json:"brandId"`
}

type agentResponse struct {
	Response  string         `json:"response"`
	Result    *review.Result `json:"result,omitempty"`
	Cached    bool           `json:"cached"`
	Mode      string         `json:"mode"`
	Timestamp string         `json:"timestamp"`
	AgentID   string         `json:"agentId"`
}

// Ask проксирует запрос к модели: с картинкой в query это проверка макета, без неё чат.
// @Summary Вызов агента проверки бренда
// @Description Если query содержит data URL изображения, выполняется проверка макета и возвращается нормализованный результат; иначе короткий ответ чата.
// @Tags    agent
// @Accept  json
// @Produce json
// @Param   body body agentRequest true "agentId, query, endpoint"
// @Success 200 {object} agentResponse
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /foundry-agent [post]
func (h *AgentHandler) Ask(c *fiber.Ctx) error {
	var req agentRequest
	if err := c.BodyParser(&req); err != nil {
		return presenter.Error(c, http.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" {
		return presenter.Error(c, http.StatusBadRequest, review.ErrEmptyQuery.Error())
	}
	h.log.Info("agent request",
		zap.String("agent_id", req.AgentID),
		zap.Int("query_length", len(req.Query)),
	)

	ans, err := h.svc.Ask(c.UserContext(), review.Query{AgentID: req.AgentID, BrandID: req.BrandID, Text: req.Query})
	if err != nil {
		if errors.Is(err, brand.ErrInvalidBrandID) {
			return presenter.Error(c, http.StatusBadRequest, err.Error())
		}
		h.log.Error("agent call failed", zap.String("agent_id", req.AgentID), zap.Error(err))
		return presenter.JSON(c, http.StatusInternalServerError, presenter.ErrorResponse{
			Error:     "Failed to call Foundry agent",
			Message:   modelErrorMessage(err),
			Timestamp: presenter.Timestamp(h.now()),
		})
	}
	return presenter.JSON(c, http.StatusOK, agentResponse{
		Response:  ans.Response,
		Result:    ans.Result,
		Cached:    ans.Cached,
		Mode:      ans.Mode,
		Timestamp: presenter.Timestamp(h.now()),
		AgentID:   req.AgentID,
	})
}

func isModelError(err error) bool {
	for _, target := range []error{
		llm.ErrInvalidAPIKey, llm.ErrDeploymentNotFound, llm.ErrRateLimited,
		llm.ErrTimeout, llm.ErrEmptyResponse, llm.ErrUpstream,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// modelErrorMessage turns a model failure into a message an operator can act on.
func modelErrorMessage(err error) string {
	switch {
	case errors.Is(err, llm.ErrInvalidAPIKey):
		return "Invalid API key. Please check your AZURE_OPENAI_API_KEY."
	case errors.Is(err, llm.ErrDeploymentNotFound):
		return "Deployment not found. Please check your AZURE_OPENAI_DEPLOYMENT."
	case errors.Is(err, llm.ErrRateLimited):
		return "Rate limit exceeded. Please try again later."
	case errors.Is(err, llm.ErrTimeout):
		return "Request timeout. The analysis is taking too long."
	case errors.Is(err, llm.ErrEmptyResponse):
		return "No response content from Azure OpenAI"
	}
	return "Azure OpenAI call failed: " + err.Error()
}
