package handlers

import (
	"github.com/civic-action/platform/internal/http/dto"
	"github.com/civic-action/platform/internal/models"
	"github.com/gofiber/fiber/v2"
)

type MetaHandler struct{}

func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

type MetaStatus struct {
	ID    string `json:"id"`
	Color string `json:"color"`
}

func (h *MetaHandler) GetCampaignStatuses(c *fiber.Ctx) error {
	out := make([]MetaStatus, 0, len(models.CampaignStatuses))
	for _, s := range models.CampaignStatuses {
		out = append(out, MetaStatus{ID: s, Color: models.CampaignStatusColor(s)})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: out})
}

func (h *MetaHandler) GetSignatureFields(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: models.SignatureFieldChoices})
}

func (h *MetaHandler) GetFacetKinds(c *fiber.Ctx) error {
	return c.JSON(dto.SuccessResponse{OK: true, Data: models.FacetKinds})
}
