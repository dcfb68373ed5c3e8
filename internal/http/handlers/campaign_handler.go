package handlers

import (
	"encoding/json"
	"errors"

	"github.com/civic-action/platform/internal/http/dto"
	"github.com/civic-action/platform/internal/middleware"
	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/repositories"
	"github.com/civic-action/platform/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CampaignHandler is the admin JSON API for campaign pages and their events.
type CampaignHandler struct {
	campaignService *services.CampaignService
	log             *zap.Logger
}

func NewCampaignHandler(campaignService *services.CampaignService, log *zap.Logger) *CampaignHandler {
	return &CampaignHandler{campaignService: campaignService, log: log}
}

// applyCampaignRequest copies the request onto the page. Slug is only taken on create.
func applyCampaignRequest(cp *models.CampaignPage, req *dto.CampaignPageRequest) error {
	cp.Title = req.Title
	if req.Status != "" {
		cp.Status = req.Status
	}
	if req.Visible != nil {
		cp.Visible = *req.Visible
	}
	cp.Description = req.Description
	cp.CallToAction = req.CallToAction
	if req.CallToActionHeader != nil {
		cp.CallToActionHeader = *req.CallToActionHeader
	}
	cp.DonationAction = req.DonationAction
	cp.DonationProductID = parseOptionalUUID(req.DonationProductID)
	cp.DonationGoal = req.DonationGoal
	if req.DonationGoalShowNumbers != nil {
		cp.DonationGoalShowNumbers = *req.DonationGoalShowNumbers
	}
	cp.SubscriptionAction = req.SubscriptionAction
	if req.SocialShares != nil {
		cp.SocialShares = *req.SocialShares
	}
	cp.CoverImageID = parseOptionalUUID(req.CoverImageID)
	if len(req.Body) > 0 {
		var body models.Stream
		if err := json.Unmarshal(req.Body, &body); err != nil {
			return services.ErrInvalidBody
		}
		cp.Body = body
	}
	return nil
}

func (h *CampaignHandler) campaignError(c *fiber.Ctx, msg string, err error) error {
	switch {
	case errors.Is(err, services.ErrCampaignNotFound):
		return fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrCampaignsIndexMissing):
		return fail(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidStatus), errors.Is(err, services.ErrInvalidBody):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, repositories.ErrInvalidReference):
		return fail(c, fiber.StatusBadRequest, repositories.ErrInvalidReference.Error())
	case errors.Is(err, repositories.ErrAlreadyExists):
		return fail(c, fiber.StatusConflict, "a page with this slug already exists")
	}
	return internalError(c, h.log, msg, err)
}

func (h *CampaignHandler) ListCampaigns(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	campaigns, err := h.campaignService.List(c.Context(), c.Query("status"), limit, offset)
	if err != nil {
		return h.campaignError(c, "list campaigns failed", err)
	}
	return c.JSON(dto.ListResponse{OK: true, Data: campaigns, Limit: limit, Offset: offset})
}

func (h *CampaignHandler) GetCampaign(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid campaign id")
	}
	cp, err := h.campaignService.Get(c.Context(), id)
	if err != nil {
		return h.campaignError(c, "get campaign failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: cp})
}

func (h *CampaignHandler) CreateCampaign(c *fiber.Ctx) error {
	var req dto.CampaignPageRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	cp := models.NewCampaignPage(req.Title, req.Slug)
	if req.Live != nil {
		cp.Live = *req.Live
	}
	if err := applyCampaignRequest(cp, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.campaignService.Create(c.Context(), middleware.GetUserID(c), cp); err != nil {
		return h.campaignError(c, "create campaign failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: cp})
}

func (h *CampaignHandler) UpdateCampaign(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid campaign id")
	}
	var req dto.CampaignPageRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	cp, err := h.campaignService.Get(c.Context(), id)
	if err != nil {
		return h.campaignError(c, "get campaign failed", err)
	}
	if req.Slug != cp.Slug {
		return fail(c, fiber.StatusBadRequest, "slug cannot be changed")
	}
	if err := applyCampaignRequest(cp, &req); err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.campaignService.Update(c.Context(), middleware.GetUserID(c), cp); err != nil {
		return h.campaignError(c, "update campaign failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: cp})
}

func (h *CampaignHandler) GetCampaignEvents(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid campaign id")
	}
	links, err := h.campaignService.Events(c.Context(), id)
	if err != nil {
		return h.campaignError(c, "campaign events failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: links})
}

func (h *CampaignHandler) SetCampaignEvents(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid campaign id")
	}
	var req dto.CampaignEventsRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	if err := h.campaignService.SetEvents(c.Context(), middleware.GetUserID(c), id, parseUUIDs(req.EventIDs)); err != nil {
		return h.campaignError(c, "set campaign events failed", err)
	}
	links, err := h.campaignService.Events(c.Context(), id)
	if err != nil {
		return h.campaignError(c, "campaign events failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: links})
}

func (h *CampaignHandler) ListEvents(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	evs, err := h.campaignService.ListEvents(c.Context(), limit, offset)
	if err != nil {
		return internalError(c, h.log, "list events failed", err)
	}
	return c.JSON(dto.ListResponse{OK: true, Data: evs, Limit: limit, Offset: offset})
}

func (h *CampaignHandler) CreateEvent(c *fiber.Ctx) error {
	var req dto.ScheduledEventRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	ev := &models.ScheduledEvent{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	}
	if err := h.campaignService.CreateEvent(c.Context(), middleware.GetUserID(c), ev); err != nil {
		if errors.Is(err, services.ErrInvalidEventWindow) {
			return fail(c, fiber.StatusBadRequest, err.Error())
		}
		return internalError(c, h.log, "create event failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: ev})
}
