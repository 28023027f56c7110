package handlers

import (
	"context"
	"html"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"textrecords/internal/models"
	"textrecords/internal/tally"
	"textrecords/internal/validation"
)

// RecordStore persists tallies across sessions.
type RecordStore interface {
	LoadRecords(ctx context.Context, userID uuid.UUID) ([]tally.Entry, error)
	SaveRecords(ctx context.Context, userID, batchID uuid.UUID, entries []tally.Entry) (bool, error)
}

// AccountStore manages local email/password accounts.
type AccountStore interface {
	CreateLocalUser(ctx context.Context, user *models.User) error
	GetLocalUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// htmxError returns an error message as HTML that HTMX will display.
// Uses 200 status so HTMX processes the swap (HTMX ignores non-2xx by default).
func htmxError(c fiber.Ctx, message string) error {
	return c.SendString(
		`<div class="alert alert-error">` + html.EscapeString(message) + `</div>`,
	)
}

func isHTMX(c fiber.Ctx) bool {
	return c.Get("HX-Request") == "true"
}

// textStatus is the response code for text rejected by validation.ValidateText.
func textStatus(text string, maxBytes int) int {
	if validation.TextTooLarge(text, maxBytes) {
		return fiber.StatusRequestEntityTooLarge
	}
	return fiber.StatusBadRequest
}
