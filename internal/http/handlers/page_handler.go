package handlers

import (
	"errors"

	"github.com/civic-action/platform/internal/http/dto"
	"github.com/civic-action/platform/internal/middleware"
	"github.com/civic-action/platform/internal/repositories"
	"github.com/civic-action/platform/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PageHandler struct {
	pageService *services.PageService
	log         *zap.Logger
}

func NewPageHandler(pageService *services.PageService, log *zap.Logger) *PageHandler {
	return &PageHandler{pageService: pageService, log: log}
}

func (h *PageHandler) pageError(c *fiber.Ctx, msg string, err error) error {
	switch {
	case errors.Is(err, services.ErrPageNotFound), errors.Is(err, repositories.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "page not found")
	case errors.Is(err, repositories.ErrInvalidPageParent), errors.Is(err, repositories.ErrPageLimitReached),
		errors.Is(err, services.ErrIndexPathFixed):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, repositories.ErrAlreadyExists):
		return fail(c, fiber.StatusConflict, "a page with this slug already exists")
	}
	return internalError(c, h.log, msg, err)
}

func (h *PageHandler) GetPage(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid page id")
	}
	p, err := h.pageService.Get(c.Context(), id)
	if err != nil {
		return h.pageError(c, "get page failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: p})
}

// FindByPath answers ?path=/campaigns/foo/ with the page served there.
func (h *PageHandler) FindByPath(c *fiber.Ctx) error {
	path := c.Query("path")
	if path == "" {
		return fail(c, fiber.StatusBadRequest, "path is required")
	}
	p, err := h.pageService.GetByPath(c.Context(), path)
	if err != nil {
		return h.pageError(c, "find page failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: p})
}

func (h *PageHandler) GetChildren(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid page id")
	}
	children, err := h.pageService.Children(c.Context(), id)
	if err != nil {
		return h.pageError(c, "list children failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: children})
}

func (h *PageHandler) CreateCampaignsIndex(c *fiber.Ctx) error {
	var req dto.CreateCampaignsIndexRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	idx, err := h.pageService.CreateCampaignsIndex(c.Context(), middleware.GetUserID(c), req.Title, req.Slug)
	if err != nil {
		return h.pageError(c, "create campaigns index failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: idx})
}

func (h *PageHandler) ReorderChildren(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid page id")
	}
	var req dto.ReorderPagesRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	if err := h.pageService.Reorder(c.Context(), middleware.GetUserID(c), id, parseUUIDs(req.IDs)); err != nil {
		return h.pageError(c, "reorder pages failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *PageHandler) SetLive(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid page id")
	}
	var req dto.PageLiveRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	if err := h.pageService.SetLive(c.Context(), middleware.GetUserID(c), id, req.Live); err != nil {
		return h.pageError(c, "set page live failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

func (h *PageHandler) UpdateMeta(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid page id")
	}
	var req dto.UpdatePageMetaRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	if err := h.pageService.UpdateMeta(c.Context(), middleware.GetUserID(c), id, req.Title, req.ShowInMenus); err != nil {
		return h.pageError(c, "update page failed", err)
	}
	p, err := h.pageService.Get(c.Context(), id)
	if err != nil {
		return h.pageError(c, "get page failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: p})
}
