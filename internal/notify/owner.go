package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/tanvirh/whatsapp-concierge/internal/channels/whatsapp"
	"github.com/tanvirh/whatsapp-concierge/pkg/logging"
)

// Messenger sends text messages to a WhatsApp recipient.
type Messenger interface {
	SendText(ctx context.Context, to, body string) whatsapp.SendResult
}

// holdingReply acknowledges receipt without committing to content
// while a human picks up the thread.
const holdingReply = "Thanks for reaching out! A team member will get back to you shortly."

const alertTemplate = "Customer needs attention\nFrom: %s (%s)\nMessage: %s"

// Service sends escalation alerts to the business owner over WhatsApp.
type Service struct {
	messenger  Messenger
	ownerPhone string
	logger     *logging.Logger
}

// NewService creates an owner notification service.
func NewService(messenger Messenger, ownerPhone string, logger *logging.Logger) *Service {
	if messenger == nil {
		panic("notify: messenger cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		messenger:  messenger,
		ownerPhone: ownerPhone,
		logger:     logger,
	}
}

// Escalate alerts the owner about a message that needs a human and
// sends the customer the holding reply. Both sends are fire-and-forget;
// failures are logged and neither blocks the other.
func (s *Service) Escalate(ctx context.Context, name, phone, text string) {
	who := strings.TrimSpace(name)
	if who == "" {
		who = phone
	}

	if s.ownerPhone == "" {
		s.logger.Warn("owner phone not configured, skipping alert", "from", phone)
	} else {
		alert := fmt.Sprintf(alertTemplate, who, phone, text)
		if result := s.messenger.SendText(ctx, s.ownerPhone, alert); !result.Delivered {
			s.logger.Error("owner alert not delivered", "error", result.Err, "owner", s.ownerPhone)
		}
	}

	if result := s.messenger.SendText(ctx, phone, holdingReply); !result.Delivered {
		s.logger.Error("holding reply not delivered", "error", result.Err, "to", phone)
	}
}
