package conversation

import (
	"context"
	"fmt"
	"strings"
)

// Intent is a classification label for an inbound message.
type Intent string

const (
	IntentOrder     Intent = "order_intent"
	IntentInfo      Intent = "info_request"
	IntentComplaint Intent = "complaint"
	IntentOther     Intent = "other"
)

// escalationThreshold is the confidence below which a message is
// handed to a human instead of auto-replied.
const escalationThreshold = 0.6

// clarificationReply is sent when classification fails entirely.
const clarificationReply = "Thanks for your message! Could you share a bit more detail so we can help you faster?"

const classifierPromptTemplate = `You are the customer assistant for %s, a business that sells to customers over WhatsApp.

Classify the customer's message and draft a short, friendly reply. Respond with JSON only:
{"intent": "<intent>", "confidence": <0..1>, "reply": "<draft reply>"}

Intents:
- order_intent: the customer wants to buy, order, or confirm a purchase
- info_request: questions about products, pricing, delivery areas, or hours
- complaint: something went wrong with an order or the service
- other: anything that does not fit the above

Customer message: %s`

// Classification is the structured result of classifying one message.
type Classification struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Reply      string  `json:"reply"`
}

// NeedsEscalation reports whether the message should go to a human
// owner instead of the drafted auto-reply.
func (c Classification) NeedsEscalation() bool {
	return c.Confidence < escalationThreshold || c.Intent == IntentOther
}

// DefaultClassification is the safe fallback used when the model call
// or extraction fails: low-confidence "other" with a generic
// clarification reply, which routes the message to a human.
func DefaultClassification() Classification {
	return Classification{
		Intent:     IntentOther,
		Confidence: 0,
		Reply:      clarificationReply,
	}
}

// Classifier derives intent, confidence, and a draft reply from an
// inbound message via a single LLM call.
type Classifier struct {
	client LLMClient
	brand  string
}

// NewClassifier creates an LLM-backed intent classifier.
func NewClassifier(client LLMClient, brand string) *Classifier {
	return &Classifier{client: client, brand: brand}
}

// Classify returns a usable classification in all cases. The error,
// when non-nil, describes why the fallback was substituted; callers
// log and count it but never abort on it.
func (c *Classifier) Classify(ctx context.Context, message string) (Classification, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return DefaultClassification(), nil
	}

	prompt := fmt.Sprintf(classifierPromptTemplate, c.brand, message)
	resp, err := c.client.Complete(ctx, LLMRequest{
		Messages:  []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens: 300,
	})
	if err != nil {
		return DefaultClassification(), fmt.Errorf("conversation: classify: %w", err)
	}

	var result Classification
	if err := ExtractJSONBlock(resp.Text, &result); err != nil {
		return DefaultClassification(), fmt.Errorf("conversation: classify parse: %w", err)
	}
	if !validIntent(result.Intent) {
		result.Intent = IntentOther
	}
	return result, nil
}

func validIntent(i Intent) bool {
	switch i {
	case IntentOrder, IntentInfo, IntentComplaint, IntentOther:
		return true
	}
	return false
}
