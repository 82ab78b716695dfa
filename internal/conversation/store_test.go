package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestStoreUpsertCustomer(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := &Store{pool: mock}
	id := uuid.New()
	mock.ExpectQuery("INSERT INTO customers").
		WithArgs(pgxmock.AnyArg(), "8801712345678", "Rahim").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))

	got, err := store.UpsertCustomer(context.Background(), "8801712345678", "Rahim")
	if err != nil {
		t.Fatalf("upsert customer: %v", err)
	}
	if got != id {
		t.Fatalf("expected id %s, got %s", id, got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreInsertMessage(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := &Store{pool: mock}
	customerID := uuid.New()
	raw := []byte(`{"entry":[]}`)
	mock.ExpectQuery("INSERT INTO messages").
		WithArgs(customerID, DirectionInbound, "Do you deliver to Gulshan?", raw).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(uuid.New()))

	if _, err := store.InsertMessage(context.Background(), MessageRecord{
		CustomerID: customerID,
		Direction:  DirectionInbound,
		Body:       "Do you deliver to Gulshan?",
		RawPayload: raw,
	}); err != nil {
		t.Fatalf("insert message: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreRecentThread(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := &Store{pool: mock}
	customerID := uuid.New()
	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "customer_id", "direction", "body", "created_at"}).
		AddRow(uuid.New(), customerID, DirectionInbound, "hello", now.Add(-2*time.Minute)).
		AddRow(uuid.New(), customerID, DirectionOutbound, "hi there", now.Add(-1*time.Minute))
	mock.ExpectQuery("SELECT id, customer_id, direction, body, created_at").
		WithArgs(customerID, threadWindow).
		WillReturnRows(rows)

	thread, err := store.RecentThread(context.Background(), customerID)
	if err != nil {
		t.Fatalf("recent thread: %v", err)
	}
	if len(thread) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(thread))
	}
	if thread[0].Body != "hello" || thread[1].Body != "hi there" {
		t.Fatalf("unexpected order: %+v", thread)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreUpsertSummary(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	store := &Store{pool: mock}
	customerID := uuid.New()
	mock.ExpectExec("INSERT INTO conversation_summaries").
		WithArgs(customerID, "Asked about delivery.", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.UpsertSummary(context.Background(), customerID, "Asked about delivery.", Insights{
		Sentiment: "positive",
		Topic:     "delivery",
		Urgency:   "low",
	})
	if err != nil {
		t.Fatalf("upsert summary: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
