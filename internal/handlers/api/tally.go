package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"textrecords/internal/config"
	"textrecords/internal/metrics"
	"textrecords/internal/models"
	"textrecords/internal/tally"
	"textrecords/internal/validation"
)

// TallyHandler exposes the tally and lookup operations as stateless JSON endpoints.
type TallyHandler struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewTallyHandler creates a new API tally handler.
func NewTallyHandler(cfg *config.Config, logger *zap.Logger) *TallyHandler {
	return &TallyHandler{cfg: cfg, logger: logger}
}

type tallyRequest struct {
	Text  string `json:"text"`
	Query string `json:"query"`
}

func (h *TallyHandler) parse(c fiber.Ctx) (*tallyRequest, int, string) {
	if h.cfg.MaxInputBytes > 0 && len(c.Body()) > h.cfg.MaxInputBytes {
		return nil, fiber.StatusRequestEntityTooLarge, "request body too large"
	}

	var body tallyRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return nil, fiber.StatusBadRequest, "invalid request body"
	}

	if valid, msg := validation.ValidateText(body.Text, h.cfg.MaxInputBytes); !valid {
		if validation.TextTooLarge(body.Text, h.cfg.MaxInputBytes) {
			return nil, fiber.StatusRequestEntityTooLarge, msg
		}
		return nil, fiber.StatusBadRequest, msg
	}
	return &body, 0, ""
}

// Tally returns the ordered frequency table for the submitted text.
func (h *TallyHandler) Tally(c fiber.Ctx) error {
	body, status, msg := h.parse(c)
	if body == nil {
		return jsonError(c, status, msg)
	}

	entries := tally.Sort(tally.Build(body.Text))
	metrics.RecordTally(len(entries))

	return jsonSuccess(c, models.NewTallyResponse(entries))
}

// Find tallies the submitted text and looks up the query in the ordered result.
func (h *TallyHandler) Find(c fiber.Ctx) error {
	body, status, msg := h.parse(c)
	if body == nil {
		return jsonError(c, status, msg)
	}

	query := validation.NormalizeQuery(body.Query)
	if valid, msg := validation.ValidateQuery(query); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	entries := tally.Sort(tally.Build(body.Text))
	resp := models.NewFindResponse(entries, query)
	metrics.RecordLookup(resp.Found)

	return jsonSuccess(c, resp)
}
