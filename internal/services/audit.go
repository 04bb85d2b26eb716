package services

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

type AuditEntry struct {
	Action   AuditAction
	Entity   string
	EntityID string
	Detail   string
	At       time.Time
}

// AuditTrail is an append-only in-process record of every mutating
// operation, mirrored to the structured log.
type AuditTrail struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func NewAuditTrail() *AuditTrail {
	return &AuditTrail{}
}

func (a *AuditTrail) Record(ctx context.Context, action AuditAction, entity, entityID, detail string) {
	entry := AuditEntry{
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Detail:   detail,
		At:       time.Now(),
	}
	a.mu.Lock()
	a.entries = append(a.entries, entry)
	a.mu.Unlock()

	slog.InfoContext(ctx, "Audit",
		"action", string(action),
		"entity", entity,
		"id", entityID,
		"detail", detail)
}

// Entries returns a copy of the trail, oldest first.
func (a *AuditTrail) Entries() []AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]AuditEntry(nil), a.entries...)
}
