package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"go.uber.org/zap"

	"textrecords/internal/config"
	"textrecords/internal/metrics"
	"textrecords/internal/middleware"
	"textrecords/internal/models"
	"textrecords/internal/suggest"
	"textrecords/internal/tally"
	"textrecords/internal/validation"
)

const suggestionLimit = 5

// TallyHandler handles text submission and the working tally views.
type TallyHandler struct {
	cfg     *config.Config
	display *config.YAMLConfig
	logger  *zap.Logger
}

// NewTallyHandler creates a new tally handler.
func NewTallyHandler(cfg *config.Config, display *config.YAMLConfig, logger *zap.Logger) *TallyHandler {
	return &TallyHandler{cfg: cfg, display: display, logger: logger}
}

// pageData assembles the shared index page bindings for the working tally.
func (h *TallyHandler) pageData(c fiber.Ctx, entries []tally.Entry) fiber.Map {
	view := currentView(c, h.display.Display.DefaultView)

	data := fiber.Map{
		"User":        middleware.CurrentUser(c),
		"Entries":     entries,
		"HasTally":    entries != nil,
		"Unique":      len(entries),
		"Total":       tally.Total(entries),
		"View":        view,
		"NextView":    toggledView(view),
		"SampleNames": h.display.SampleNames(),
		"MaxBytes":    h.cfg.MaxInputBytes,
		"ReturnTo":    "/",
	}
	if view == config.ViewHistogram {
		data["Chart"] = BuildChart(entries, h.display.Display.ChartMaxBars)
	}
	return MergeBranding(data, h.cfg)
}

// Index renders the input form and the working tally.
func (h *TallyHandler) Index(c fiber.Ctx) error {
	entries, _ := currentTally(c)
	return c.Render("index", h.pageData(c, entries))
}

// Sample renders the input form pre-filled with a sample dataset.
func (h *TallyHandler) Sample(c fiber.Ctx) error {
	text, ok := h.display.GetSample(c.Query("name"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "sample not found")
	}

	entries, _ := currentTally(c)
	data := h.pageData(c, entries)
	data["Text"] = text
	return c.Render("index", data)
}

// Process tallies the submitted text and makes it the working tally.
func (h *TallyHandler) Process(c fiber.Ctx) error {
	text := c.FormValue("text")

	if valid, msg := validation.ValidateText(text, h.cfg.MaxInputBytes); !valid {
		entries, _ := currentTally(c)
		data := h.pageData(c, entries)
		data["Text"] = text
		data["Error"] = msg
		return c.Status(textStatus(text, h.cfg.MaxInputBytes)).Render("index", data)
	}

	entries := tally.Sort(tally.Build(text))
	if err := setCurrentTally(c, entries); err != nil {
		return err
	}
	metrics.RecordTally(len(entries))

	h.logger.Debug("tallied submission",
		zap.Int("bytes", len(text)),
		zap.Int("unique", len(entries)))

	return c.Redirect().To("/")
}

// ToggleView flips between the list and histogram views.
func (h *TallyHandler) ToggleView(c fiber.Ctx) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}

	view := currentView(c, h.display.Display.DefaultView)
	sess.Set(sessionView, toggledView(view))

	return c.Redirect().To(middleware.SafeRedirect(c.FormValue("return")))
}

// Search looks up one record in the working tally, ignoring case.
func (h *TallyHandler) Search(c fiber.Ctx) error {
	query := validation.NormalizeQuery(c.Query("q"))
	entries, _ := currentTally(c)
	data := h.pageData(c, entries)
	data["Query"] = query

	if valid, msg := validation.ValidateQuery(query); !valid {
		data["SearchError"] = msg
		return c.Status(fiber.StatusBadRequest).Render("index", data)
	}

	result := models.NewFindResponse(entries, query)
	metrics.RecordLookup(result.Found)
	data["Result"] = result
	data["Position"] = result.Index + 1

	return c.Render("index", data)
}

// Filter returns the tally table narrowed to records containing the query.
func (h *TallyHandler) Filter(c fiber.Ctx) error {
	query := validation.NormalizeQuery(c.Query("q"))
	if len(query) > validation.MaxQueryLength {
		return htmxError(c, "Filter is too long")
	}

	entries, _ := currentTally(c)
	return c.Render("partials/records_table", fiber.Map{
		"Entries": tally.Filter(entries, query),
		"Filter":  query,
	}, "")
}

// Suggest returns completions from the working tally for HTMX.
func (h *TallyHandler) Suggest(c fiber.Ctx) error {
	query := validation.NormalizeQuery(c.Query("q"))
	if query == "" {
		return c.SendString("")
	}

	entries, _ := currentTally(c)
	return c.Render("partials/suggestions", fiber.Map{
		"Suggestions": suggest.New(entries).Complete(query, suggestionLimit),
		"Query":       query,
	}, "")
}
