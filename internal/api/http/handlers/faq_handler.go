package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// FAQHandler serves the knowledge base.
type FAQHandler struct {
	service *service.FAQService
}

// NewFAQHandler constructs handler.
func NewFAQHandler(faqService *service.FAQService) *FAQHandler {
	return &FAQHandler{service: faqService}
}

// List GET /faqs?q=.
func (h *FAQHandler) List(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	items, err := h.service.List(c.UserContext(), user, c.Query("q"))
	if err != nil {
		return err
	}
	resp := make([]dto.FAQResponse, 0, len(items))
	for i := range items {
		resp = append(resp, dto.NewFAQResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Create POST /staff/faqs.
func (h *FAQHandler) Create(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req service.FAQInput
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	faq, err := h.service.Create(c.UserContext(), user, req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewFAQResponse(faq)})
}

// Update PUT /staff/faqs/:id.
func (h *FAQHandler) Update(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req service.FAQInput
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	faq, err := h.service.Update(c.UserContext(), user, id, req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewFAQResponse(faq)})
}

// Delete DELETE /staff/faqs/:id.
func (h *FAQHandler) Delete(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), user, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
