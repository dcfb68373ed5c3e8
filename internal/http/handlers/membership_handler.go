package handlers

import (
	"errors"

	"github.com/civic-action/platform/internal/http/dto"
	"github.com/civic-action/platform/internal/middleware"
	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/payments"
	"github.com/civic-action/platform/internal/repositories"
	"github.com/civic-action/platform/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type MembershipHandler struct {
	membershipService *services.MembershipService
	recorder          *services.DonationRecorder
	log               *zap.Logger
}

func NewMembershipHandler(membershipService *services.MembershipService, recorder *services.DonationRecorder, log *zap.Logger) *MembershipHandler {
	return &MembershipHandler{membershipService: membershipService, recorder: recorder, log: log}
}

func (h *MembershipHandler) membershipError(c *fiber.Ctx, msg string, err error) error {
	switch {
	case errors.Is(err, services.ErrTierNotFound), errors.Is(err, services.ErrProductNotFound):
		return fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidTier), errors.Is(err, services.ErrTierAtEdge), errors.Is(err, services.ErrInvalidMembership):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, repositories.ErrInvalidReference):
		return fail(c, fiber.StatusBadRequest, repositories.ErrInvalidReference.Error())
	case errors.Is(err, repositories.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, repositories.ErrAlreadyExists):
		return fail(c, fiber.StatusConflict, err.Error())
	}
	return internalError(c, h.log, msg, err)
}

// ListActiveTiers is the public tier list shown on the donate page.
func (h *MembershipHandler) ListActiveTiers(c *fiber.Ctx) error {
	tiers, err := h.membershipService.ListTiers(c.Context(), true)
	if err != nil {
		return internalError(c, h.log, "list tiers failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: tiers})
}

func (h *MembershipHandler) ListTiers(c *fiber.Ctx) error {
	tiers, err := h.membershipService.ListTiers(c.Context(), false)
	if err != nil {
		return internalError(c, h.log, "list tiers failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: tiers})
}

func (h *MembershipHandler) CreateTier(c *fiber.Ctx) error {
	var req dto.DonationTierRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	cost, err := services.ParseCost(req.Cost)
	if err != nil {
		return fail(c, fiber.StatusBadRequest, err.Error())
	}
	t := &models.DonationTier{StripePrice: req.StripePrice, Cost: cost, Recurrence: req.Recurrence, Active: req.Active}
	if err := h.membershipService.CreateTier(c.Context(), middleware.GetUserID(c), t); err != nil {
		return h.membershipError(c, "create tier failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: t})
}

func (h *MembershipHandler) SetTierActive(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid tier id")
	}
	var req dto.DonationTierActiveRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	if err := h.membershipService.SetTierActive(c.Context(), middleware.GetUserID(c), id, req.Active); err != nil {
		return h.membershipError(c, "update tier failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *MembershipHandler) moveTier(c *fiber.Ctx, up bool) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid tier id")
	}
	if err := h.membershipService.MoveTier(c.Context(), middleware.GetUserID(c), id, up); err != nil {
		return h.membershipError(c, "move tier failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *MembershipHandler) MoveTierUp(c *fiber.Ctx) error {
	return h.moveTier(c, true)
}

func (h *MembershipHandler) MoveTierDown(c *fiber.Ctx) error {
	return h.moveTier(c, false)
}

func (h *MembershipHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.membershipService.ListProducts(c.Context())
	if err != nil {
		return internalError(c, h.log, "list products failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: products})
}

func (h *MembershipHandler) CreateProduct(c *fiber.Ctx) error {
	var req dto.DonationProductRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	p := &models.DonationProduct{Name: req.Name, StripeProductID: req.StripeProductID, Active: req.Active}
	if err := h.membershipService.CreateProduct(c.Context(), middleware.GetUserID(c), p); err != nil {
		return h.membershipError(c, "create product failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: p})
}

func (h *MembershipHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid product id")
	}
	var req dto.DonationProductRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	p, err := h.membershipService.GetProduct(c.Context(), id)
	if err != nil {
		return h.membershipError(c, "get product failed", err)
	}
	p.Name = req.Name
	p.StripeProductID = req.StripeProductID
	p.Active = req.Active
	if err := h.membershipService.UpdateProduct(c.Context(), middleware.GetUserID(c), p); err != nil {
		return h.membershipError(c, "update product failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: p})
}

func (h *MembershipHandler) ListDonations(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	f := repositories.DonationFilter{Search: c.Query("q"), Limit: limit, Offset: offset}
	if v := c.Query("product_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid product id")
		}
		f.ProductID = &id
	}
	donations, err := h.membershipService.ListDonations(c.Context(), f)
	if err != nil {
		return internalError(c, h.log, "list donations failed", err)
	}
	return c.JSON(dto.ListResponse{OK: true, Data: donations, Limit: limit, Offset: offset})
}

func (h *MembershipHandler) GrantMembership(c *fiber.Ctx) error {
	var req dto.MembershipRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	m := &models.Membership{
		UserID:    uuid.MustParse(req.UserID),
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Kind:      req.Kind,
	}
	if err := h.membershipService.GrantMembership(c.Context(), middleware.GetUserID(c), m); err != nil {
		return h.membershipError(c, "grant membership failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: m})
}

// StripeWebhook records completed checkouts. Bad signatures answer 400 so
// Stripe retries only deliveries that failed on our side.
func (h *MembershipHandler) StripeWebhook(c *fiber.Ctx) error {
	err := h.recorder.HandleWebhook(c.Context(), c.Body(), c.Get("Stripe-Signature"))
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"received": true})
	case errors.Is(err, payments.ErrNotConfigured), errors.Is(err, payments.ErrInvalidSignature):
		h.log.Warn("stripe webhook rejected", zap.Error(err))
		return fail(c, fiber.StatusBadRequest, "invalid webhook")
	}
	return internalError(c, h.log, "stripe webhook failed", err)
}
