package handlers

import (
	"errors"
	"strings"

	"github.com/civic-action/platform/internal/http/dto"
	"github.com/civic-action/platform/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CampaignPageHandler serves the public, server-rendered campaign pages.
type CampaignPageHandler struct {
	campaignService *services.CampaignService
	signService     *services.SignService
	log             *zap.Logger
}

func NewCampaignPageHandler(campaignService *services.CampaignService, signService *services.SignService, log *zap.Logger) *CampaignPageHandler {
	return &CampaignPageHandler{campaignService: campaignService, signService: signService, log: log}
}

func (h *CampaignPageHandler) Index(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	view, err := h.campaignService.ListPublic(c.Context(), c.Query("status"), limit, offset)
	if errors.Is(err, services.ErrCampaignsIndexMissing) {
		return fiber.ErrNotFound
	}
	if err != nil {
		h.log.Error("list campaigns failed", zap.Error(err))
		return fiber.ErrInternalServerError
	}

	return c.Render("campaigns/index", fiber.Map{
		"Title": view.Index.Title,
		"View":  view,
		"Flash": popFlash(c),
	}, "layouts/main")
}

func (h *CampaignPageHandler) Page(c *fiber.Ctx) error {
	cp, err := h.campaignService.PageBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		if errors.Is(err, services.ErrCampaignNotFound) || errors.Is(err, services.ErrCampaignsIndexMissing) {
			return fiber.ErrNotFound
		}
		h.log.Error("load campaign failed", zap.Error(err))
		return fiber.ErrInternalServerError
	}

	view, err := h.campaignService.View(c.Context(), cp)
	if err != nil {
		h.log.Error("render campaign failed", zap.String("slug", cp.Slug), zap.Error(err))
		return fiber.ErrInternalServerError
	}

	return c.Render("campaigns/page", fiber.Map{
		"Title": cp.Title,
		"View":  view,
		"Flash": popFlash(c),
	}, "layouts/main")
}

func (h *CampaignPageHandler) Sign(c *fiber.Ctx) error {
	petitionID, err := uuid.Parse(c.Params("petitionID"))
	if err != nil {
		return fiber.ErrNotFound
	}

	var form dto.SignPetitionForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}

	res, err := h.signService.Sign(c.Context(), c.Params("slug"), petitionID, services.SignatureInput{
		FirstName:          form.FirstName,
		LastName:           form.LastName,
		Email:              form.Email,
		PhoneNumber:        form.PhoneNumber,
		PostalAddressLine1: form.PostalAddressLine1,
		PostalAddressLine2: form.PostalAddressLine2,
		City:               form.City,
		State:              form.State,
		ZipCode:            form.ZipCode,
		Comment:            form.Comment,
		SendEmail:          dto.Checked(form.SendEmail),
		NewsletterOptIn:    dto.Checked(form.NewsletterOptIn),
		CreateAccountOptIn: dto.Checked(form.CreateAccountOptIn),
	})

	var verr *services.SignatureValidationError
	switch {
	case errors.As(err, &verr):
		setFlash(c, res.FlashLevel, res.Flash)
		return c.Redirect(res.RedirectTo, fiber.StatusFound)
	case errors.Is(err, services.ErrCampaignNotFound),
		errors.Is(err, services.ErrCampaignsIndexMissing),
		errors.Is(err, services.ErrPetitionNotFound):
		return fiber.ErrNotFound
	case err != nil:
		h.log.Error("sign petition failed", zap.String("petition_id", petitionID.String()), zap.Error(err))
		return fiber.ErrInternalServerError
	}

	if res.Outcome == services.SignOutcomeMailto {
		c.Set(fiber.HeaderLocation, res.MailtoURL)
		return c.SendStatus(fiber.StatusSeeOther)
	}

	setFlash(c, res.FlashLevel, res.Flash)
	return c.Redirect(res.RedirectTo, fiber.StatusFound)
}

// Signatures renders the latest visible signatures as an html fragment.
func (h *CampaignPageHandler) Signatures(c *fiber.Ctx) error {
	petitionID, err := uuid.Parse(c.Params("petitionID"))
	if err != nil {
		return fiber.ErrNotFound
	}

	petition, sigs, err := h.signService.RecentSignatures(c.Context(), c.Params("slug"), petitionID)
	if err != nil {
		if errors.Is(err, services.ErrCampaignNotFound) ||
			errors.Is(err, services.ErrCampaignsIndexMissing) ||
			errors.Is(err, services.ErrPetitionNotFound) {
			return fiber.ErrNotFound
		}
		h.log.Error("load signatures failed", zap.Error(err))
		return fiber.ErrInternalServerError
	}

	return c.Render("petitions/_signatures", fiber.Map{
		"Petition":   petition,
		"Signatures": sigs,
	})
}

// RedirectFallback answers unmatched GET requests from the redirect table.
func (h *CampaignPageHandler) RedirectFallback(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodGet && c.Method() != fiber.MethodHead {
		return fiber.ErrNotFound
	}

	path := c.Path()
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	target, permanent, err := h.campaignService.ResolveRedirect(c.Context(), path)
	if err != nil {
		h.log.Error("redirect lookup failed", zap.String("path", path), zap.Error(err))
		return fiber.ErrInternalServerError
	}
	if target == "" {
		return fiber.ErrNotFound
	}

	status := fiber.StatusFound
	if permanent {
		status = fiber.StatusMovedPermanently
	}
	return c.Redirect(target, status)
}
