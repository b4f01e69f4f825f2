package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/artem13815/brandreview/api/http/presenter"
	"github.com/artem13815/brandreview/pkg/brand"
)

type BrandHandler struct {
	repo brand.Repository
	log  *zap.Logger
}

func NewBrandHandler(repo brand.Repository, log *zap.Logger) *BrandHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &BrandHandler{repo: repo, log: log}
}

// Rules отдаёт файл brand-rules.json как есть (для панели Guidelines).
// @Summary Правила бренда
// @Tags    brand
// @Produce json
// @Param   brandId path string true "Brand ID, e.g. OAD"
// @Success 200 {object} map[string]any
// @Failure 400 {object} presenter.ErrorResponse
// @Failure 404 {object} presenter.ErrorResponse
// @Failure 500 {object} presenter.ErrorResponse
// @Router  /brand-rules/{brandId} [get]
func (h *BrandHandler) Rules(c *fiber.Ctx) error {
	brandID := c.Params("brandId", "OAD")
	raw, err := h.repo.RawRules(c.UserContext(), brandID)
	switch {
	case errors.Is(err, brand.ErrInvalidBrandID):
		return presenter.Error(c, http.StatusBadRequest, "Invalid brand id")
	case errors.Is(err, brand.ErrBrandNotFound):
		return presenter.Error(c, http.StatusNotFound, "Brand rules not found")
	case err != nil:
		h.log.Error("load brand rules", zap.String("brand_id", brandID), zap.Error(err))
		return presenter.Error(c, http.StatusInternalServerError, "Failed to load brand rules")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Status(http.StatusOK).Send(raw)
}
