package handlers

import (
	"errors"

	"github.com/civic-action/platform/internal/http/dto"
	"github.com/civic-action/platform/internal/middleware"
	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ElectionHandler struct {
	electionService *services.ElectionService
	log             *zap.Logger
}

func NewElectionHandler(electionService *services.ElectionService, log *zap.Logger) *ElectionHandler {
	return &ElectionHandler{electionService: electionService, log: log}
}

func electionFromRequest(e *models.Election, req *dto.ElectionRequest) {
	e.Title = req.Title
	e.Description = req.Description
	e.MembershipEligibilityDeadline = req.MembershipEligibilityDeadline
	e.NominationsOpen = req.NominationsOpen
	e.NominationsClose = req.NominationsClose
	e.VotingOpens = req.VotingOpens
	e.VotingCloses = req.VotingCloses
}

func (h *ElectionHandler) ListElections(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	elections, err := h.electionService.List(c.Context(), c.Query("q"), limit, offset)
	if err != nil {
		return internalError(c, h.log, "list elections failed", err)
	}
	return c.JSON(dto.ListResponse{OK: true, Data: elections, Limit: limit, Offset: offset})
}

func (h *ElectionHandler) GetElection(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid election id")
	}
	v, err := h.electionService.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrElectionNotFound) {
			return fail(c, fiber.StatusNotFound, err.Error())
		}
		return internalError(c, h.log, "get election failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: v})
}

func (h *ElectionHandler) CreateElection(c *fiber.Ctx) error {
	var req dto.ElectionRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	e := &models.Election{}
	electionFromRequest(e, &req)

	if err := h.electionService.Create(c.Context(), middleware.GetUserID(c), e); err != nil {
		return internalError(c, h.log, "create election failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse{OK: true, Data: e})
}

func (h *ElectionHandler) UpdateElection(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid election id")
	}
	var req dto.ElectionRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	e := &models.Election{ID: id}
	electionFromRequest(e, &req)

	if err := h.electionService.Update(c.Context(), middleware.GetUserID(c), e); err != nil {
		if errors.Is(err, services.ErrElectionNotFound) {
			return fail(c, fiber.StatusNotFound, err.Error())
		}
		return internalError(c, h.log, "update election failed", err)
	}
	v, err := h.electionService.Get(c.Context(), id)
	if err != nil {
		return internalError(c, h.log, "get election failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: v})
}

func (h *ElectionHandler) DeleteElection(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid election id")
	}
	if err := h.electionService.Delete(c.Context(), middleware.GetUserID(c), id); err != nil {
		if errors.Is(err, services.ErrElectionNotFound) {
			return fail(c, fiber.StatusNotFound, err.Error())
		}
		return internalError(c, h.log, "delete election failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}
