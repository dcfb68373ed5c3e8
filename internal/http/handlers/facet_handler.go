package handlers

import (
	"errors"
	"strconv"

	"github.com/civic-action/platform/internal/http/dto"
	"github.com/civic-action/platform/internal/middleware"
	"github.com/civic-action/platform/internal/models"
	"github.com/civic-action/platform/internal/services"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type FacetHandler struct {
	facetService *services.FacetService
	log          *zap.Logger
}

func NewFacetHandler(facetService *services.FacetService, log *zap.Logger) *FacetHandler {
	return &FacetHandler{facetService: facetService, log: log}
}

func (h *FacetHandler) facetError(c *fiber.Ctx, msg string, err error) error {
	switch {
	case errors.Is(err, services.ErrFacetNotFound):
		return fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidPoint),
		errors.Is(err, services.ErrInvalidGeometry),
		errors.Is(err, services.ErrUnknownKind):
		return fail(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAddressNotFound):
		return fail(c, fiber.StatusNotFound, err.Error())
	}
	return internalError(c, h.log, msg, err)
}

// LookupPoint answers GET /facets/lookup?lng=..&lat=..
func (h *FacetHandler) LookupPoint(c *fiber.Ctx) error {
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	if errLng != nil || errLat != nil {
		return fail(c, fiber.StatusBadRequest, "lng and lat are required")
	}
	set, err := h.facetService.LookupPoint(c.Context(), models.Point{Lng: lng, Lat: lat})
	if err != nil {
		return h.facetError(c, "facet lookup failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: set})
}

func (h *FacetHandler) SearchAddress(c *fiber.Ctx) error {
	address := c.Query("address")
	if address == "" {
		return fail(c, fiber.StatusBadRequest, "address is required")
	}
	res, err := h.facetService.SearchAddress(c.Context(), address)
	if err != nil {
		return h.facetError(c, "address search failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: res})
}

func (h *FacetHandler) ListRCOs(c *fiber.Ctx) error {
	facets, err := h.facetService.ListByKind(c.Context(), models.FacetKindRCO)
	if err != nil {
		return h.facetError(c, "list rcos failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: facets})
}

func (h *FacetHandler) GetRCO(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid facet id")
	}
	detail, err := h.facetService.RCO(c.Context(), id, c.QueryBool("geometry"))
	if err != nil {
		return h.facetError(c, "rco detail failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: detail})
}

func (h *FacetHandler) ListCustom(c *fiber.Ctx) error {
	facets, err := h.facetService.ListByKind(c.Context(), models.FacetKindCustom)
	if err != nil {
		return h.facetError(c, "list custom facets failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: facets})
}

func (h *FacetHandler) GetCustom(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "invalid facet id")
	}
	detail, err := h.facetService.Custom(c.Context(), id)
	if err != nil {
		return h.facetError(c, "custom facet detail failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: detail})
}

func (h *FacetHandler) Report(c *fiber.Ctx) error {
	rows, err := h.facetService.Report(c.Context(), c.Query("kind"))
	if err != nil {
		return h.facetError(c, "facet report failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: rows})
}

func (h *FacetHandler) AllProfiles(c *fiber.Ctx) error {
	profiles, err := h.facetService.AllProfiles(c.Context())
	if err != nil {
		return h.facetError(c, "list located profiles failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: profiles})
}

func (h *FacetHandler) ListByKind(c *fiber.Ctx) error {
	kind := c.Params("kind")
	if !models.IsValidFacetKind(kind) {
		return fail(c, fiber.StatusBadRequest, "unknown facet kind")
	}
	facets, err := h.facetService.ListByKind(c.Context(), kind)
	if err != nil {
		return h.facetError(c, "list facets failed", err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: facets})
}

func (h *FacetHandler) UpsertFacet(c *fiber.Ctx) error {
	var req dto.FacetRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}
	f := &models.Facet{Kind: req.Kind, Name: req.Name, Geometry: req.Geometry, Properties: req.Properties}
	if err := h.facetService.Upsert(c.Context(), middleware.GetUserID(c), f); err != nil {
		return h.facetError(c, "upsert facet failed", err)
	}
	f.Geometry = nil
	return c.JSON(dto.SuccessResponse{OK: true, Data: f})
}
