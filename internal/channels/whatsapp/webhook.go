package whatsapp

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tanvirh/whatsapp-concierge/pkg/logging"
)

// maxBodyBytes caps inbound webhook payloads at 2MB.
const maxBodyBytes = 2 << 20

// InboundProcessor runs the processing pipeline for one parsed message.
type InboundProcessor interface {
	ProcessInbound(ctx context.Context, msg ParsedInboundMessage) error
}

// WebhookHandler handles WhatsApp webhook verification and inbound
// message deliveries.
type WebhookHandler struct {
	verifyToken string
	appSecret   string
	processor   InboundProcessor
	logger      *logging.Logger
}

// NewWebhookHandler creates a new webhook handler. processor is invoked
// for each text message extracted from a delivery.
func NewWebhookHandler(verifyToken, appSecret string, processor InboundProcessor, logger *logging.Logger) *WebhookHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &WebhookHandler{
		verifyToken: verifyToken,
		appSecret:   appSecret,
		processor:   processor,
		logger:      logger,
	}
}

// HandleVerification handles the GET webhook verification challenge from Meta.
func (h *WebhookHandler) HandleVerification(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, challenge)
		return
	}

	http.Error(w, "Forbidden", http.StatusForbidden)
}

// HandleInbound handles POST webhook deliveries. Once the payload
// parses, the response is always 200 {"ok":true}: Meta retries
// anything else and a redelivery storm is worse than a lost message.
func (h *WebhookHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if h.appSecret != "" {
		signature := r.Header.Get("X-Hub-Signature-256")
		if !VerifySignature(h.appSecret, body, signature) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	msg, ok := ExtractFirstText(event)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if !ok {
		fmt.Fprint(w, `{"ok":true,"note":"no text message"}`)
		return
	}
	fmt.Fprint(w, `{"ok":true}`)

	msg.RawPayload = body
	if h.processor != nil {
		if err := h.processor.ProcessInbound(r.Context(), msg); err != nil {
			h.logger.Error("inbound processing failed", "error", err, "from", msg.From)
		}
	}
}

// ExtractFirstText pulls the first entry's first change's first message
// out of a delivery, along with the first contact's profile name. Any
// other messages delivered in the same payload are dropped. Returns
// false when there is no message or the message is not text.
func ExtractFirstText(event WebhookEvent) (ParsedInboundMessage, bool) {
	if len(event.Entry) == 0 || len(event.Entry[0].Changes) == 0 {
		return ParsedInboundMessage{}, false
	}
	value := event.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 {
		return ParsedInboundMessage{}, false
	}

	m := value.Messages[0]
	if m.Type != "text" || m.Text == nil {
		return ParsedInboundMessage{}, false
	}

	parsed := ParsedInboundMessage{
		From:      m.From,
		Text:      m.Text.Body,
		MessageID: m.ID,
	}
	if len(value.Contacts) > 0 {
		parsed.Name = value.Contacts[0].Profile.Name
	}
	return parsed, true
}

// VerifySignature verifies the X-Hub-Signature-256 header.
func VerifySignature(appSecret string, body []byte, signature string) bool {
	if appSecret == "" || signature == "" {
		return false
	}

	// Signature format: "sha256=<hex>"
	const prefix = "sha256="
	if len(signature) <= len(prefix) {
		return false
	}
	sigHex := signature[len(prefix):]

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(sigHex))
}
