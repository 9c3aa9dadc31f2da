package conversations

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDispatchNotFound is returned when no scheduled dispatch matches a raw
// channel identifier. The service layer treats it as a discard, not a failure.
var ErrDispatchNotFound = errors.New("no scheduled dispatch for identifier")

// Repository provides data access for dispatches and the conversation log.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new conversations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindDispatchByPhone looks up the scheduled dispatch whose stored identifier
// exactly matches the raw value from the webhook payload. The dispatch stored
// the identifier in the same raw provider format at schedule time, so this is
// a plain string equality lookup; normalization is display-side only.
func (r *Repository) FindDispatchByPhone(ctx context.Context, rawPhone string) (Dispatch, error) {
	var d Dispatch
	err := r.pool.QueryRow(ctx, `
		SELECT id, company_id, company_phone, lead_name, status, created_at
		FROM scheduled_dispatches
		WHERE company_phone = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, rawPhone).Scan(
		&d.ID, &d.CompanyID, &d.CompanyPhone, &d.LeadName, &d.Status, &d.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Dispatch{}, ErrDispatchNotFound
	}
	return d, err
}

// AppendEntry appends one conversation-log row. The unique constraint on
// (instance, message_id) makes re-delivery of the same provider event a no-op;
// the returned bool reports whether a row was actually inserted. Concurrent
// deliveries of the same event race on the constraint, never on application
// state, so exactly one of them inserts.
func (r *Repository) AppendEntry(ctx context.Context, e Entry) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO conversation_entries
			(id, phone, lead_name, message, from_me, message_id, instance,
			 message_type, provider_timestamp, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (instance, message_id) DO NOTHING
	`, e.ID, e.Phone, e.LeadName, e.Message, e.FromMe, e.MessageID, e.Instance,
		e.MessageType, e.ProviderTimestamp, e.Status)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListEntries reads conversation-log rows ordered by creation time ascending,
// optionally filtered by contact, direction, or time window.
func (r *Repository) ListEntries(ctx context.Context, f EntryFilter) ([]Entry, error) {
	query := `
		SELECT id, phone, lead_name, message, from_me, message_id, instance,
		       message_type, provider_timestamp, status, created_at
		FROM conversation_entries
		WHERE 1=1`
	args := make([]interface{}, 0, 4)

	if f.Phone != "" {
		args = append(args, f.Phone)
		query += ` AND phone = $` + strconv.Itoa(len(args))
	}
	if f.FromMe != nil {
		args = append(args, *f.FromMe)
		query += ` AND from_me = $` + strconv.Itoa(len(args))
	}
	if f.Since != nil {
		args = append(args, *f.Since)
		query += ` AND created_at >= $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY created_at ASC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID, &e.Phone, &e.LeadName, &e.Message, &e.FromMe, &e.MessageID,
			&e.Instance, &e.MessageType, &e.ProviderTimestamp, &e.Status, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
