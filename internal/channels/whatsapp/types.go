package whatsapp

// WebhookEvent is the top-level structure received from Meta's webhook.
type WebhookEvent struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry represents a single entry in the webhook payload.
type Entry struct {
	ID      string   `json:"id"`
	Changes []Change `json:"changes"`
}

// Change carries one field update inside an entry.
type Change struct {
	Field string      `json:"field"`
	Value ChangeValue `json:"value"`
}

// ChangeValue is the messages payload nested inside a change.
type ChangeValue struct {
	MessagingProduct string    `json:"messaging_product"`
	Metadata         Metadata  `json:"metadata"`
	Contacts         []Contact `json:"contacts"`
	Messages         []Message `json:"messages"`
}

// Metadata identifies the business number the message was sent to.
type Metadata struct {
	DisplayPhoneNumber string `json:"display_phone_number"`
	PhoneNumberID      string `json:"phone_number_id"`
}

// Contact describes the sender of a message.
type Contact struct {
	WaID    string  `json:"wa_id"`
	Profile Profile `json:"profile"`
}

// Profile holds the sender's WhatsApp profile fields.
type Profile struct {
	Name string `json:"name"`
}

// Message is a single inbound message.
type Message struct {
	ID        string `json:"id"`
	From      string `json:"from"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
	Text      *Text  `json:"text,omitempty"`
}

// Text is the body of a text-type message.
type Text struct {
	Body string `json:"body"`
}

// SendRequest is the payload sent to the Cloud API to send a message.
type SendRequest struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             SendText `json:"text"`
}

// SendText is the text body for outbound messages.
type SendText struct {
	Body string `json:"body"`
}

// SendResponse is the response from the Cloud API after sending a message.
type SendResponse struct {
	Messages []SentMessage `json:"messages"`
	Error    *APIError     `json:"error,omitempty"`
}

// SentMessage identifies a message accepted by the provider.
type SentMessage struct {
	ID string `json:"id"`
}

// APIError represents an error returned by the Graph API.
type APIError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	FBTraceID string `json:"fbtrace_id"`
}

// SendResult is the outcome of an outbound send. Sends are
// fire-and-forget: callers inspect Delivered for reporting but never
// abort on a failed send.
type SendResult struct {
	Delivered bool
	MessageID string
	Err       error
}

// ParsedInboundMessage is the normalized result of parsing a webhook
// delivery: the first text message of the first change of the first
// entry, plus the matching contact profile.
type ParsedInboundMessage struct {
	From       string
	Name       string
	Text       string
	MessageID  string
	RawPayload []byte
}
