package handlers

import (
	"errors"

	"github.com/civic-action/platform/internal/http/dto"
	"github.com/civic-action/platform/internal/middleware"
	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/repositories"
	"github.com/civic-action/platform/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PetitionHandler struct {
	petitionService *services.PetitionService
	log             *zap.Logger
}

func NewPetitionHandler(petitionService *services.PetitionService, log *zap.Logger) *PetitionHandler {
	return &PetitionHandler{petitionService: petitionService, log: log}
}

func petitionFromRequest(p *models.Petition, req *dto.PetitionRequest) {
	p.Title = req.Title
	p.Letter = req.Letter
	p.CallToAction = req.CallToAction
	p.CallToActionHeader = req.CallToActionHeader
	p.DisplayOnCampaignPage = req.DisplayOnCampaignPage
	p.Active = req.Active
	p.SignatureGoal = req.SignatureGoal
	p.ShowSubmissions = req.ShowSubmissions
	p.SendEmail = req.SendEmail
	p.MailtoSend = req.MailtoSend
	p.EmailSubject = req.EmailSubject
	p.EmailBody = req.EmailBody
	p.EmailTo = req.EmailTo
	p.EmailCC = req.EmailCC
	p.EmailIncludeComment = req.EmailIncludeComment
	p.CreateAccountOptIn = req.CreateAccountOptIn
	p.RedirectAfter = req.RedirectAfter
	p.SignatureFields = req.SignatureFields
	if p.SignatureFields == nil {
		p.SignatureFields = []string{}
	}
}

func (h *PetitionHandler) petitionError(c *fiber.Ctx, msg string, err error) error {
	switch {
	case errors.Is(err, services.ErrPetitionNotFound), errors.Is(err, repositories.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "petition not found")
	case errors.Is(err, services.ErrInvalidSignatureField), errors.Is(err, services.ErrMissingRecipients):
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	return internalError(c, h.log, msg, err)
}

func (h *PetitionHandler) ListPetitions(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	petitions, err := h.petitionService.List(c.Context(), repositories.PetitionFilter{
		Active:                queryBool(c, "active"),
		DisplayOnCampaignPage: queryBool(c, "display_on_campaign_page"),
		Search:                c.Query("q"),
		Limit:                 limit,
		Offset:                offset,
	})
	if err != nil {
		return internalError(c, h.log, "list petitions failed", err)
	}
	return c.JSON(dto.ListResponse{OK: true, Data: petitions, Limit: limit, Offset: offset})
}

func (h *PetitionHandler) GetPetition(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid petition id")
	}
	p, err := h.petitionService.Get(c.Context(), id)
	if err != nil {
		return h.petitionError(c, "get petition failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: p})
}

func (h *PetitionHandler) CreatePetition(c *fiber.Ctx) error {
	var req dto.PetitionRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	p := &models.Petition{}
	petitionFromRequest(p, &req)

	if err := h.petitionService.Create(c.Context(), middleware.GetUserID(c), p); err != nil {
		return h.petitionError(c, "create petition failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: p})
}

func (h *PetitionHandler) UpdatePetition(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid petition id")
	}
	var req dto.PetitionRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	p, err := h.petitionService.Get(c.Context(), id)
	if err != nil {
		return h.petitionError(c, "get petition failed", err)
	}
	petitionFromRequest(p, &req)

	if err := h.petitionService.Update(c.Context(), middleware.GetUserID(c), p); err != nil {
		return h.petitionError(c, "update petition failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: p})
}

func (h *PetitionHandler) DeletePetition(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid petition id")
	}
	if err := h.petitionService.Delete(c.Context(), middleware.GetUserID(c), id); err != nil {
		return h.petitionError(c, "delete petition failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *PetitionHandler) GetChoices(c *fiber.Ctx) error {
	choices, err := h.petitionService.Choices(c.Context())
	if err != nil {
		return internalError(c, h.log, "petition choices failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: choices})
}

func (h *PetitionHandler) ListSignatures(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid petition id")
	}
	limit, offset := pagination(c)
	list, err := h.petitionService.Signatures(c.Context(), id, limit, offset)
	if err != nil {
		return h.petitionError(c, "list signatures failed", err)
	}
	return c.JSON(dto.ListResponse{OK: true, Data: list, Limit: limit, Offset: offset})
}

func (h *PetitionHandler) SetSignatureVisible(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid signature id")
	}
	var req dto.SignatureVisibilityRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	if err := h.petitionService.SetSignatureVisible(c.Context(), middleware.GetUserID(c), id, req.Visible); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "signature not found")
		}
		return internalError(c, h.log, "set signature visibility failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
