package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// StaffHandler exposes catalog, reporting and profile administration.
type StaffHandler struct {
	catalog  *service.CatalogService
	reports  *service.ReportService
	profiles *service.ProfileService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(catalog *service.CatalogService, reports *service.ReportService, profiles *service.ProfileService) *StaffHandler {
	return &StaffHandler{catalog: catalog, reports: reports, profiles: profiles}
}

// ListPriorities GET /staff/priorities.
func (h *StaffHandler) ListPriorities(c *fiber.Ctx) error {
	items, err := h.catalog.ListPriorities(c.UserContext())
	if err != nil {
		return err
	}
	resp := make([]dto.PriorityResponse, 0, len(items))
	for i := range items {
		resp = append(resp, dto.NewPriorityResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// CreatePriority POST /staff/priorities.
func (h *StaffHandler) CreatePriority(c *fiber.Ctx) error {
	var req service.PriorityInput
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	priority, err := h.catalog.CreatePriority(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewPriorityResponse(priority)})
}

// UpdatePriority PUT /staff/priorities/:id.
func (h *StaffHandler) UpdatePriority(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req service.PriorityInput
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	priority, err := h.catalog.UpdatePriority(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPriorityResponse(priority)})
}

// DeletePriority DELETE /staff/priorities/:id.
func (h *StaffHandler) DeletePriority(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.DeletePriority(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListRules GET /staff/sla-rules.
func (h *StaffHandler) ListRules(c *fiber.Ctx) error {
	items, err := h.catalog.ListRules(c.UserContext())
	if err != nil {
		return err
	}
	resp := make([]dto.SLARuleResponse, 0, len(items))
	for i := range items {
		resp = append(resp, dto.NewSLARuleResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// CreateRule POST /staff/sla-rules.
func (h *StaffHandler) CreateRule(c *fiber.Ctx) error {
	var req service.SLARuleInput
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	rule, err := h.catalog.CreateRule(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewSLARuleResponse(rule)})
}

// DeleteRule DELETE /staff/sla-rules/:id.
func (h *StaffHandler) DeleteRule(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteRule(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListAreas GET /staff/areas.
func (h *StaffHandler) ListAreas(c *fiber.Ctx) error {
	items, err := h.catalog.ListAreas(c.UserContext())
	if err != nil {
		return err
	}
	resp := make([]dto.AreaResponse, 0, len(items))
	for i := range items {
		resp = append(resp, dto.NewAreaResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// CreateArea POST /staff/areas.
func (h *StaffHandler) CreateArea(c *fiber.Ctx) error {
	var req service.AreaInput
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	area, err := h.catalog.CreateArea(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewAreaResponse(area)})
}

// DeleteArea DELETE /staff/areas/:id.
func (h *StaffHandler) DeleteArea(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteArea(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ReportSummary GET /staff/reports/summary.
func (h *StaffHandler) ReportSummary(c *fiber.Ctx) error {
	summary, err := h.reports.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"total":              summary.Total,
		"by_status":          summary.ByStatus,
		"by_priority":        summary.ByPriority,
		"by_sla_state":       summary.BySLAState,
		"by_category":        summary.ByCategory,
		"average_resolution": durationSeconds(summary.AverageResolution),
		"agents":             agentStats(summary),
		"recent":             dto.NewTicketSummaries(summary.Recent),
		"generated_at":       summary.GeneratedAt,
	}})
}

// GetProfile GET /staff/users/:id/profile.
func (h *StaffHandler) GetProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	profile, err := h.profiles.GetProfile(c.UserContext(), user, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ProfileResponse{
		UserID:     profile.UserID,
		IsCritical: profile.IsCritical,
		NationalID: profile.NationalID,
	}})
}

// UpdateProfile PATCH /staff/users/:id/profile.
func (h *StaffHandler) UpdateProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req service.ProfileInput
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	result, err := h.profiles.UpdateProfile(c.UserContext(), user, id, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ProfileResponse{
		UserID:        result.Profile.UserID,
		IsCritical:    result.Profile.IsCritical,
		NationalID:    result.Profile.NationalID,
		TicketsSynced: result.TicketsSynced,
	}})
}
