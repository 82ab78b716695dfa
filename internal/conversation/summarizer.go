package conversation

import (
	"context"
	"fmt"
	"strings"
)

const summarizerPromptTemplate = `You are reviewing a WhatsApp conversation between %s and a customer. Summarize it for the business owner. Respond with JSON only:
{"summary": "<2-3 sentence summary>", "insights": {"sentiment": "<positive|neutral|negative>", "topic": "<main topic>", "urgency": "<low|medium|high>", "action_items": ["..."]}}

Conversation:
%s`

// Insights are the structured fields attached to a conversation summary.
type Insights struct {
	Sentiment   string   `json:"sentiment"`
	Topic       string   `json:"topic"`
	Urgency     string   `json:"urgency"`
	ActionItems []string `json:"action_items"`
}

// ThreadSummary is the result of summarizing a customer's recent thread.
type ThreadSummary struct {
	Summary  string   `json:"summary"`
	Insights Insights `json:"insights"`
}

// Summarizer produces a rolling conversation summary via a single LLM call.
type Summarizer struct {
	client LLMClient
	brand  string
}

// NewSummarizer creates an LLM-backed thread summarizer.
func NewSummarizer(client LLMClient, brand string) *Summarizer {
	return &Summarizer{client: client, brand: brand}
}

// Summarize returns the summary for the given thread. On model or
// extraction failure it returns an empty summary and the error that
// caused it; the caller logs the error and stores the empty summary.
func (s *Summarizer) Summarize(ctx context.Context, thread []MessageRecord) (ThreadSummary, error) {
	transcript := Transcript(thread)
	if transcript == "" {
		return ThreadSummary{}, nil
	}

	prompt := fmt.Sprintf(summarizerPromptTemplate, s.brand, transcript)
	resp, err := s.client.Complete(ctx, LLMRequest{
		Messages:  []ChatMessage{{Role: ChatRoleUser, Content: prompt}},
		MaxTokens: 500,
	})
	if err != nil {
		return ThreadSummary{}, fmt.Errorf("conversation: summarize: %w", err)
	}

	var result ThreadSummary
	if err := ExtractJSONBlock(resp.Text, &result); err != nil {
		return ThreadSummary{}, fmt.Errorf("conversation: summarize parse: %w", err)
	}
	return result, nil
}

// Transcript renders a thread one message per line, prefixed
// "Customer:" or "You:" by direction.
func Transcript(thread []MessageRecord) string {
	var b strings.Builder
	for _, m := range thread {
		prefix := "Customer: "
		if m.Direction == DirectionOutbound {
			prefix = "You: "
		}
		b.WriteString(prefix)
		b.WriteString(m.Body)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
