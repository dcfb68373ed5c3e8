package handlers

import (
	"github.com/civic-action/platform/internal/http/dto"
	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/repositories"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var auditedEntities = map[string]bool{
	models.EntityPage:              true,
	models.EntityEvent:             true,
	models.EntityPetition:          true,
	models.EntityPetitionSignature: true,
	models.EntityElection:          true,
	models.EntityFacet:             true,
	models.EntityDonationTier:      true,
	models.EntityDonationProduct:   true,
	models.EntityMembership:        true,
}

type AuditHandler struct {
	auditRepo *repositories.AuditRepo
	log       *zap.Logger
}

func NewAuditHandler(auditRepo *repositories.AuditRepo, log *zap.Logger) *AuditHandler {
	return &AuditHandler{auditRepo: auditRepo, log: log}
}

// History lists the admin changes made to one record.
func (h *AuditHandler) History(c *fiber.Ctx) error {
	entity := c.Params("entity")
	if !auditedEntities[entity] {
		return fail(c, fiber.StatusBadRequest, "unknown entity type")
	}
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid entity id")
	}
	limit, offset := pagination(c)
	logs, err := h.auditRepo.GetByEntity(c.Context(), entity, id, limit, offset)
	if err != nil {
		return internalError(c, h.log, "audit history failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: logs})
}
