package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"textrecords/internal/config"
	"textrecords/internal/metrics"
	"textrecords/internal/middleware"
	"textrecords/internal/models"
	"textrecords/internal/tally"
	"textrecords/internal/validation"
)

// RecordsHandler handles saved record history.
type RecordsHandler struct {
	store   RecordStore
	cfg     *config.Config
	display *config.YAMLConfig
	logger  *zap.Logger
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(store RecordStore, cfg *config.Config, display *config.YAMLConfig, logger *zap.Logger) *RecordsHandler {
	return &RecordsHandler{store: store, cfg: cfg, display: display, logger: logger}
}

// History renders the user's saved records, with an optional lookup.
func (h *RecordsHandler) History(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.Redirect().To("/login")
	}

	entries, err := h.store.LoadRecords(c.Context(), user.ID)
	if err != nil {
		return err
	}
	entries = tally.Sort(entries)

	view := currentView(c, h.display.Display.DefaultView)
	data := fiber.Map{
		"User":     user,
		"Entries":  entries,
		"Unique":   len(entries),
		"Total":    tally.Total(entries),
		"View":     view,
		"NextView": toggledView(view),
		"ReturnTo": "/records",
	}
	if view == config.ViewHistogram {
		data["Chart"] = BuildChart(entries, h.display.Display.ChartMaxBars)
	}

	if query := validation.NormalizeQuery(c.Query("q")); query != "" {
		data["Query"] = query
		if valid, msg := validation.ValidateQuery(query); !valid {
			data["SearchError"] = msg
		} else {
			result := models.NewFindResponse(entries, query)
			metrics.RecordLookup(result.Found)
			data["Result"] = result
			data["Position"] = result.Index + 1
		}
	}

	return c.Render("records", MergeBranding(data, h.cfg))
}

// Save merges the working tally into the user's saved records.
// Saving the same submission twice has no further effect.
func (h *RecordsHandler) Save(c fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	entries, batchID := currentTally(c)
	if len(entries) == 0 || batchID == uuid.Nil {
		return htmxError(c, "Process some text before saving")
	}

	saved, err := h.store.SaveRecords(c.Context(), user.ID, batchID, entries)
	if err != nil {
		h.logger.Error("failed to save records",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
		return htmxError(c, "Could not save records, please try again")
	}
	if saved {
		metrics.RecordSave(len(entries))
	}

	if !isHTMX(c) {
		return c.Redirect().To("/records")
	}

	return c.Render("partials/save_result", fiber.Map{
		"Saved":   saved,
		"Records": len(entries),
	}, "")
}
