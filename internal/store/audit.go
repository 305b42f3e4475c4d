// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Academica Contributors

package store

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// newULID generates a monotonic ULID. ULID ordering keeps the audit log
// sortable by id.
func newULID() ulid.ULID {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
}

// AuditEvent is one recorded administrative action.
type AuditEvent struct {
	ID        ulid.ULID
	Type      string
	Subject   string
	Detail    map[string]any
	CreatedAt time.Time
}

// auditPool is the subset of *pgxpool.Pool the audit log needs. pgxmock's
// PgxPoolIface satisfies it.
type auditPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// AuditLog persists administrative audit events in PostgreSQL. It satisfies
// directory.AuditRecorder.
type AuditLog struct {
	pool auditPool
}

// NewAuditLog creates an AuditLog over the given pool.
func NewAuditLog(pool auditPool) *AuditLog {
	return &AuditLog{pool: pool}
}

// Record appends an audit event. The detail map is stored as JSONB.
func (l *AuditLog) Record(ctx context.Context, eventType, subject string, detail map[string]any) error {
	if detail == nil {
		detail = map[string]any{}
	}
	payload, err := json.Marshal(detail)
	if err != nil {
		return oops.Code("AUDIT_RECORD_FAILED").
			With("operation", "marshal detail").
			With("event_type", eventType).
			Wrap(err)
	}

	_, err = l.pool.Exec(ctx, `
		INSERT INTO audit_events (id, event_type, subject, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, newULID().String(), eventType, subject, payload, time.Now().UTC())
	if err != nil {
		return oops.Code("AUDIT_RECORD_FAILED").
			With("operation", "insert audit event").
			With("event_type", eventType).
			Wrap(err)
	}
	return nil
}

// Recent returns the newest events, most recent first.
func (l *AuditLog) Recent(ctx context.Context, limit int) ([]AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := l.pool.Query(ctx, `
		SELECT id, event_type, subject, detail, created_at
		FROM audit_events
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, oops.Code("AUDIT_LIST_FAILED").
			With("operation", "query audit events").
			Wrap(err)
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var e AuditEvent
		var idStr string
		var payload []byte
		if err := rows.Scan(&idStr, &e.Type, &e.Subject, &payload, &e.CreatedAt); err != nil {
			return nil, oops.Code("AUDIT_LIST_FAILED").
				With("operation", "scan audit row").
				Wrap(err)
		}
		e.ID, err = ulid.Parse(idStr)
		if err != nil {
			return nil, oops.Code("AUDIT_LIST_FAILED").
				With("operation", "parse audit id").
				With("id", idStr).
				Wrap(err)
		}
		if err := json.Unmarshal(payload, &e.Detail); err != nil {
			return nil, oops.Code("AUDIT_LIST_FAILED").
				With("operation", "unmarshal detail").
				With("id", idStr).
				Wrap(err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("AUDIT_LIST_FAILED").
			With("operation", "iterate audit events").
			Wrap(err)
	}
	return events, nil
}
