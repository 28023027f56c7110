package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/session"
	"github.com/google/uuid"

	"textrecords/internal/config"
	"textrecords/internal/tally"
)

// Session keys for the working tally.
const (
	sessionTally      = "tally"
	sessionTallyBatch = "tally_batch"
	sessionView       = "view"
)

// currentTally returns the ordered tally from the last submission and the
// batch ID it will be saved under. Entries are nil when nothing was submitted.
func currentTally(c fiber.Ctx) ([]tally.Entry, uuid.UUID) {
	sess := session.FromContext(c)
	if sess == nil {
		return nil, uuid.Nil
	}

	raw, _ := sess.Get(sessionTally).(string)
	if raw == "" {
		return nil, uuid.Nil
	}

	var entries []tally.Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		sess.Delete(sessionTally)
		return nil, uuid.Nil
	}

	batchID, _ := uuid.Parse(stringValue(sess.Get(sessionTallyBatch)))
	return entries, batchID
}

// setCurrentTally replaces the working tally. Each submission gets a new batch ID.
func setCurrentTally(c fiber.Ctx, entries []tally.Entry) error {
	sess := session.FromContext(c)
	if sess == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "session not available")
	}

	// An empty submission is still a tally; store [] rather than null.
	if entries == nil {
		entries = []tally.Entry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	sess.Set(sessionTally, string(raw))
	sess.Set(sessionTallyBatch, uuid.NewString())
	return nil
}

// currentView returns the list/histogram toggle, falling back to fallback.
func currentView(c fiber.Ctx, fallback string) string {
	if sess := session.FromContext(c); sess != nil {
		switch v := stringValue(sess.Get(sessionView)); v {
		case config.ViewList, config.ViewHistogram:
			return v
		}
	}
	return fallback
}

func toggledView(view string) string {
	if view == config.ViewList {
		return config.ViewHistogram
	}
	return config.ViewList
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
