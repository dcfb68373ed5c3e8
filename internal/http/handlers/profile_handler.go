package handlers

import (
	"errors"
	"time"

	"github.com/civic-action/platform/internal/http/dto"
	"github.com/civic-action/platform/internal/middleware"
	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/repositories"
	"github.com/civic-action/platform/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProfileHandler serves the signed-in member's own data under /me.
type ProfileHandler struct {
	userRepo          *repositories.UserRepo
	profileService    *services.ProfileService
	membershipService *services.MembershipService
	log               *zap.Logger
}

func NewProfileHandler(
	userRepo *repositories.UserRepo,
	profileService *services.ProfileService,
	membershipService *services.MembershipService,
	log *zap.Logger,
) *ProfileHandler {
	return &ProfileHandler{
		userRepo:          userRepo,
		profileService:    profileService,
		membershipService: membershipService,
		log:               log,
	}
}

type MeResponse struct {
	User         *models.User        `json:"user"`
	Profile      *models.Profile     `json:"profile"`
	Memberships  []models.Membership `json:"memberships"`
	ActiveMember bool                `json:"active_member"`
}

func (h *ProfileHandler) GetMe(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	user, err := h.userRepo.GetByID(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "user not found")
		}
		return internalError(c, h.log, "get user failed", err)
	}
	profile, err := h.profileService.Get(c.Context(), userID)
	if err != nil {
		return internalError(c, h.log, "get profile failed", err)
	}
	memberships, err := h.membershipService.Memberships(c.Context(), userID)
	if err != nil {
		return internalError(c, h.log, "list memberships failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: MeResponse{
		User:         user,
		Profile:      profile,
		Memberships:  memberships,
		ActiveMember: services.IsActiveMember(memberships, time.Now()),
	}})
}

func (h *ProfileHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	profile, err := h.profileService.Update(c.Context(), middleware.GetUserID(c), services.ProfileUpdate{
		NewsletterOptIn: req.NewsletterOptIn,
		StreetAddress:   req.StreetAddress,
		ZipCode:         req.ZipCode,
	})
	if err != nil {
		return internalError(c, h.log, "update profile failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: profile})
}

func (h *ProfileHandler) GetDistricts(c *fiber.Ctx) error {
	set, err := h.profileService.Districts(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return internalError(c, h.log, "profile districts failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: set})
}

func (h *ProfileHandler) GetDonations(c *fiber.Ctx) error {
	v, err := h.profileService.Donations(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return internalError(c, h.log, "profile donations failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: v})
}

func (h *ProfileHandler) ListShirtOrders(c *fiber.Ctx) error {
	orders, err := h.profileService.ShirtOrders(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return internalError(c, h.log, "list shirt orders failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: orders})
}

func (h *ProfileHandler) CreateShirtOrder(c *fiber.Ctx) error {
	var req dto.ShirtOrderRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	order := &models.ShirtOrder{
		UserID:     middleware.GetUserID(c),
		Fit:        req.Fit,
		PrintColor: req.PrintColor,
		Size:       req.Size,
	}
	if err := h.profileService.CreateShirtOrder(c.Context(), order); err != nil {
		if errors.Is(err, services.ErrShirtOrdersClosed) {
			return fail(c, fiber.StatusForbidden, err.Error())
		}
		return internalError(c, h.log, "create shirt order failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: order})
}

func (h *ProfileHandler) DeleteShirtOrder(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid order id")
	}
	if err := h.profileService.DeleteShirtOrder(c.Context(), middleware.GetUserID(c), id); err != nil {
		switch {
		case errors.Is(err, services.ErrShirtOrdersClosed):
			return fail(c, fiber.StatusForbidden, err.Error())
		case errors.Is(err, repositories.ErrNotFound):
			return fail(c, fiber.StatusNotFound, "order not found")
		}
		return internalError(c, h.log, "delete shirt order failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *ProfileHandler) DeletePreview(c *fiber.Ctx) error {
	preview, err := h.profileService.DeletePreview(c.Context(), middleware.GetUserID(c))
	if err != nil {
		return internalError(c, h.log, "delete preview failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: preview})
}

func (h *ProfileHandler) DeleteAccount(c *fiber.Ctx) error {
	err := h.profileService.Delete(c.Context(), middleware.GetUserID(c))
	switch {
	case err == nil:
		return c.JSON(dto.SuccessResponse{OK: true})
	case errors.Is(err, services.ErrActiveSubscriptions), errors.Is(err, services.ErrHasApplications):
		return fail(c, fiber.StatusConflict, err.Error())
	}
	return internalError(c, h.log, "delete account failed", err)
}
