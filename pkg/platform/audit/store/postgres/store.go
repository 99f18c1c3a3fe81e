package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	id "github.com/werterpires/salt-in-forms-back-sub000/pkg/domain"
	audit "github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/audit"
	txcontext "github.com/werterpires/salt-in-forms-back-sub000/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// ApplySchema creates the audit table if it does not exist.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply audit schema: %w", err)
	}
	return nil
}

// Store keeps audit events in form_audit_events. Rows have no foreign key to
// forms so the trail outlives a deleted form.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Name() string { return "postgres" }

// Append joins the transaction carried by ctx, if any.
func (s *Store) Append(ctx context.Context, e audit.Event) error {
	detail := e.Detail
	if detail == nil {
		detail = map[string]string{}
	}
	payload, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("marshal audit detail: %w", err)
	}

	_, err = txcontext.Or(ctx, s.db).ExecContext(ctx, `
		INSERT INTO form_audit_events (
			id, form_id, action, category, actor_id, request_id,
			client_ip, agent, detail, occurred_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`,
		e.ID, uuid.UUID(e.FormID), string(e.Action), string(e.Category),
		e.ActorID, e.RequestID, e.ClientIP, e.Agent, payload, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByForm(ctx context.Context, formID id.FormID, limit int) ([]audit.Event, error) {
	query := `
		SELECT id, form_id, action, category, actor_id, request_id,
		       client_ip, agent, detail, occurred_at
		FROM form_audit_events
		WHERE form_id = $1
		ORDER BY occurred_at DESC, id`
	args := []any{uuid.UUID(formID)}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e       audit.Event
			form    uuid.UUID
			action  string
			cat     string
			payload []byte
		)
		if err := rows.Scan(&e.ID, &form, &action, &cat, &e.ActorID, &e.RequestID,
			&e.ClientIP, &e.Agent, &payload, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.FormID = id.FormID(form)
		e.Action = audit.Action(action)
		e.Category = audit.Category(cat)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &e.Detail); err != nil {
				return nil, fmt.Errorf("decode audit detail: %w", err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
