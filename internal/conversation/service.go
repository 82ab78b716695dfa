package conversation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tanvirh/whatsapp-concierge/internal/channels/whatsapp"
	"github.com/tanvirh/whatsapp-concierge/internal/observability/metrics"
	"github.com/tanvirh/whatsapp-concierge/pkg/logging"
)

// ThreadStore is the persistence surface the pipeline needs.
type ThreadStore interface {
	UpsertCustomer(ctx context.Context, phone, name string) (uuid.UUID, error)
	InsertMessage(ctx context.Context, rec MessageRecord) (uuid.UUID, error)
	RecentThread(ctx context.Context, customerID uuid.UUID) ([]MessageRecord, error)
	UpsertSummary(ctx context.Context, customerID uuid.UUID, summary string, insights Insights) error
}

// Messenger sends text messages to a WhatsApp recipient.
type Messenger interface {
	SendText(ctx context.Context, to, body string) whatsapp.SendResult
}

// OwnerNotifier escalates a message to the human owner and sends the
// customer a holding reply.
type OwnerNotifier interface {
	Escalate(ctx context.Context, name, phone, text string)
}

// Service runs the inbound message pipeline: persist, classify, reply
// or escalate, then refresh the rolling conversation summary. Every
// step is a sequential remote call; a failed step aborts the rest of
// the pipeline but the webhook layer reports success upstream anyway.
type Service struct {
	store      ThreadStore
	classifier *Classifier
	summarizer *Summarizer
	messenger  Messenger
	notifier   OwnerNotifier
	metrics    *metrics.WebhookMetrics
	logger     *logging.Logger
}

// NewService wires the pipeline.
func NewService(store ThreadStore, classifier *Classifier, summarizer *Summarizer, messenger Messenger, notifier OwnerNotifier, m *metrics.WebhookMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("conversation: store cannot be nil")
	}
	if classifier == nil || summarizer == nil {
		panic("conversation: classifier and summarizer cannot be nil")
	}
	if messenger == nil {
		panic("conversation: messenger cannot be nil")
	}
	if notifier == nil {
		panic("conversation: notifier cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:      store,
		classifier: classifier,
		summarizer: summarizer,
		messenger:  messenger,
		notifier:   notifier,
		metrics:    m,
		logger:     logger,
	}
}

// ProcessInbound handles one parsed inbound message end to end.
func (s *Service) ProcessInbound(ctx context.Context, msg whatsapp.ParsedInboundMessage) error {
	customerID, err := s.store.UpsertCustomer(ctx, msg.From, msg.Name)
	if err != nil {
		s.metrics.ObserveProcessed("failed")
		return fmt.Errorf("conversation: upsert customer: %w", err)
	}

	if _, err := s.store.InsertMessage(ctx, MessageRecord{
		CustomerID: customerID,
		Direction:  DirectionInbound,
		Body:       msg.Text,
		RawPayload: msg.RawPayload,
	}); err != nil {
		s.metrics.ObserveProcessed("failed")
		return fmt.Errorf("conversation: persist inbound: %w", err)
	}

	cls, err := s.classifier.Classify(ctx, msg.Text)
	if err != nil {
		// cls already carries the safe default; record the fallback.
		s.logger.Warn("classification fell back to default", "error", err, "from", msg.From)
		s.metrics.ObserveLLMFailure("classification")
	}

	if cls.NeedsEscalation() {
		// The drafted reply is discarded on this branch and nothing
		// outbound is persisted; the owner takes over the thread.
		s.notifier.Escalate(ctx, msg.Name, msg.From, msg.Text)
		s.metrics.ObserveProcessed("escalated")
	} else {
		result := s.messenger.SendText(ctx, msg.From, cls.Reply)
		if !result.Delivered {
			s.metrics.ObserveSendFailure()
		}
		if _, err := s.store.InsertMessage(ctx, MessageRecord{
			CustomerID: customerID,
			Direction:  DirectionOutbound,
			Body:       cls.Reply,
		}); err != nil {
			s.metrics.ObserveProcessed("failed")
			return fmt.Errorf("conversation: persist outbound: %w", err)
		}
		s.metrics.ObserveProcessed("replied")
	}

	thread, err := s.store.RecentThread(ctx, customerID)
	if err != nil {
		return fmt.Errorf("conversation: load thread: %w", err)
	}

	summary, err := s.summarizer.Summarize(ctx, thread)
	if err != nil {
		s.logger.Warn("summarization fell back to empty summary", "error", err, "customer_id", customerID)
		s.metrics.ObserveLLMFailure("summarization")
	}

	if err := s.store.UpsertSummary(ctx, customerID, summary.Summary, summary.Insights); err != nil {
		return fmt.Errorf("conversation: upsert summary: %w", err)
	}
	return nil
}
