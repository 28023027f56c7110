package api

import (
	"context"
	"encoding/json"
	"strings"

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

// RecordStore persists tallies for a user.
type RecordStore interface {
	LoadRecords(ctx context.Context, userID uuid.UUID) ([]tally.Entry, error)
	SaveRecords(ctx context.Context, userID, batchID uuid.UUID, entries []tally.Entry) (bool, error)
}

// RecordHandler handles a user's persisted records via JSON API.
type RecordHandler struct {
	store  RecordStore
	cfg    *config.Config
	logger *zap.Logger
}

// NewRecordHandler creates a new API record handler.
func NewRecordHandler(store RecordStore, cfg *config.Config, logger *zap.Logger) *RecordHandler {
	return &RecordHandler{store: store, cfg: cfg, logger: logger}
}

func (h *RecordHandler) load(c fiber.Ctx) ([]tally.Entry, error) {
	user := middleware.CurrentUser(c)
	entries, err := h.store.LoadRecords(c.Context(), user.ID)
	if err != nil {
		return nil, err
	}
	return tally.Sort(entries), nil
}

// List returns the user's persisted records in order.
func (h *RecordHandler) List(c fiber.Ctx) error {
	entries, err := h.load(c)
	if err != nil {
		h.logger.Error("failed to load records", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, "failed to load records")
	}
	return jsonSuccess(c, models.NewTallyResponse(entries))
}

// Find looks up a record among the user's persisted records.
func (h *RecordHandler) Find(c fiber.Ctx) error {
	query := validation.NormalizeQuery(c.Query("q"))
	if valid, msg := validation.ValidateQuery(query); !valid {
		return jsonError(c, fiber.StatusBadRequest, msg)
	}

	entries, err := h.load(c)
	if err != nil {
		h.logger.Error("failed to load records", zap.Error(err))
		return jsonError(c, fiber.StatusInternalServerError, "failed to load records")
	}

	resp := models.NewFindResponse(entries, query)
	metrics.RecordLookup(resp.Found)
	return jsonSuccess(c, resp)
}

// Save merges a tally into the user's persisted records. The tally is either
// given as entries or as raw text. Repeating a request with the same batch_id
// does not count the tally twice.
func (h *RecordHandler) Save(c fiber.Ctx) error {
	if h.cfg.MaxInputBytes > 0 && len(c.Body()) > h.cfg.MaxInputBytes {
		return jsonError(c, fiber.StatusRequestEntityTooLarge, "request body too large")
	}

	var body struct {
		BatchID string        `json:"batch_id"`
		Entries []tally.Entry `json:"entries"`
		Text    *string       `json:"text"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid request body")
	}

	batchID := uuid.New()
	if body.BatchID != "" {
		parsed, err := uuid.Parse(body.BatchID)
		if err != nil {
			return jsonError(c, fiber.StatusBadRequest, "invalid batch_id")
		}
		batchID = parsed
	}

	var entries []tally.Entry
	switch {
	case body.Text != nil && body.Entries != nil:
		return jsonError(c, fiber.StatusBadRequest, "provide either entries or text, not both")
	case body.Text != nil:
		entries = tally.Build(*body.Text)
	default:
		if msg := checkEntries(body.Entries); msg != "" {
			return jsonError(c, fiber.StatusBadRequest, msg)
		}
		entries = body.Entries
	}

	user := middleware.CurrentUser(c)
	saved, err := h.store.SaveRecords(c.Context(), user.ID, batchID, entries)
	if err != nil {
		h.logger.Error("failed to save records", zap.Error(err), zap.String("batch_id", batchID.String()))
		return jsonError(c, fiber.StatusInternalServerError, "failed to save records")
	}
	if saved {
		metrics.RecordSave(len(entries))
	}

	return jsonSuccess(c, models.SaveResponse{BatchID: batchID, Saved: saved, Records: len(entries)})
}

// checkEntries enforces the shape Build produces: trimmed, non-empty,
// unique keys with positive counts.
func checkEntries(entries []tally.Entry) string {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Key == "" || strings.TrimSpace(e.Key) != e.Key {
			return "entry keys must be non-empty and have no surrounding whitespace"
		}
		if e.Count <= 0 {
			return "entry counts must be positive"
		}
		if _, dup := seen[e.Key]; dup {
			return "duplicate entry key: " + e.Key
		}
		seen[e.Key] = struct{}{}
	}
	return ""
}
