package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// threadWindow is the number of messages fetched for summarization.
const threadWindow = 30

// PgxPool is the subset of pgxpool.Pool the store needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists customers, the message log, and conversation
// summaries in Postgres.
type Store struct {
	pool PgxPool
}

func NewStore(pool PgxPool) *Store {
	if pool == nil {
		panic("conversation: pgx pool required")
	}
	return &Store{pool: pool}
}

// MessageRecord is one row of the append-only message log.
type MessageRecord struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Direction  string
	Body       string
	RawPayload []byte
	CreatedAt  time.Time
}

// UpsertCustomer inserts or refreshes a customer keyed by phone number
// and returns the customer id. An empty name never overwrites a stored
// one; last_seen_at is always bumped. The conflict target makes
// concurrent deliveries for the same phone converge on one row.
func (s *Store) UpsertCustomer(ctx context.Context, phone, name string) (uuid.UUID, error) {
	query := `
		INSERT INTO customers (id, phone, name, last_seen_at)
		VALUES ($1, $2, NULLIF($3, ''), now())
		ON CONFLICT (phone) DO UPDATE
		SET name = COALESCE(NULLIF(EXCLUDED.name, ''), customers.name),
			last_seen_at = now()
		RETURNING id
	`
	var id uuid.UUID
	if err := s.pool.QueryRow(ctx, query, uuid.New(), phone, name).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("conversation: upsert customer: %w", err)
	}
	return id, nil
}

// InsertMessage appends a message to the log and returns its id.
// RawPayload is only set for inbound messages (audit copy of the
// webhook body); nil is stored as NULL.
func (s *Store) InsertMessage(ctx context.Context, rec MessageRecord) (uuid.UUID, error) {
	query := `
		INSERT INTO messages (customer_id, direction, body, raw_payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	var id uuid.UUID
	if err := s.pool.QueryRow(ctx, query, rec.CustomerID, rec.Direction, rec.Body, rec.RawPayload).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("conversation: insert message: %w", err)
	}
	return id, nil
}

// RecentThread returns up to threadWindow messages for the customer in
// chronological order. Ordering ascending before limiting means that
// once a customer has more than threadWindow messages this returns the
// oldest ones, not the newest; kept as-is until the product side signs
// off on changing the summarization window.
func (s *Store) RecentThread(ctx context.Context, customerID uuid.UUID) ([]MessageRecord, error) {
	query := `
		SELECT id, customer_id, direction, body, created_at
		FROM messages
		WHERE customer_id = $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, customerID, threadWindow)
	if err != nil {
		return nil, fmt.Errorf("conversation: recent thread: %w", err)
	}
	defer rows.Close()

	var thread []MessageRecord
	for rows.Next() {
		var rec MessageRecord
		if err := rows.Scan(&rec.ID, &rec.CustomerID, &rec.Direction, &rec.Body, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("conversation: scan thread message: %w", err)
		}
		thread = append(thread, rec)
	}
	return thread, rows.Err()
}

// UpsertSummary overwrites the customer's conversation summary. One
// row per customer; summaries are derived data and are not versioned.
func (s *Store) UpsertSummary(ctx context.Context, customerID uuid.UUID, summary string, insights Insights) error {
	insightsJSON, err := json.Marshal(insights)
	if err != nil {
		return fmt.Errorf("conversation: marshal insights: %w", err)
	}
	query := `
		INSERT INTO conversation_summaries (customer_id, last_summary, last_insights)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id) DO UPDATE
		SET last_summary = EXCLUDED.last_summary,
			last_insights = EXCLUDED.last_insights,
			updated_at = now()
	`
	if _, err := s.pool.Exec(ctx, query, customerID, summary, insightsJSON); err != nil {
		return fmt.Errorf("conversation: upsert summary: %w", err)
	}
	return nil
}
