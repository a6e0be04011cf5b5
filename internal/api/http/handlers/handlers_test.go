package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

func TestSplitCSV(t *testing.T) {
	assert.Nil(t, splitCSV(""))
	assert.Equal(t, []string{"open", "in_progress"}, splitCSV("open, in_progress,,"))
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 20, parseInt("", 20))
	assert.Equal(t, 20, parseInt("abc", 20))
	assert.Equal(t, 20, parseInt("-1", 20))
	assert.Equal(t, 5, parseInt("5", 20))
}

func TestTicketRoutesRejectBadIDs(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		de := apperrors.ToDomainError(err)
		return c.Status(de.HTTPStatus).JSON(fiber.Map{"code": de.Code})
	}})
	app.Use(func(c *fiber.Ctx) error {
		auth.WithPrincipal(c, &auth.Principal{User: &domain.User{ID: 1, IsActive: true}})
		return c.Next()
	})
	h := NewTicketsHandler(nil, nil)
	app.Get("/tickets/:id", h.GetTicket)
	app.Delete("/tickets/:id/attachments/:attachmentId", h.RemoveAttachment)

	cases := []struct{ method, path string }{
		{"GET", "/tickets/abc"},
		{"GET", "/tickets/0"},
		{"DELETE", "/tickets/3/attachments/x"},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest(tc.method, tc.path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, tc.path)
	}
}

func TestFAQRoutesRejectBadIDs(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	app.Use(func(c *fiber.Ctx) error {
		auth.WithPrincipal(c, &auth.Principal{User: &domain.User{ID: 1, IsActive: true, IsStaff: true}})
		return c.Next()
	})
	h := NewFAQHandler(nil)
	app.Put("/faqs/:id", h.Update)
	app.Delete("/faqs/:id", h.Delete)

	for _, method := range []string{"PUT", "DELETE"} {
		resp, err := app.Test(httptest.NewRequest(method, "/faqs/nope", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, method)
	}
}

func TestCurrentUserRequiresPrincipal(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	app.Get("/me", NewUsersHandler(nil).Me)

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
