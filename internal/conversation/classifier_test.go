package conversation

import (
	"context"
	"errors"
	"testing"
)

type stubLLMClient struct {
	responses []string
	err       error
	requests  []LLMRequest
}

func (s *stubLLMClient) Complete(_ context.Context, req LLMRequest) (LLMResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return LLMResponse{}, s.err
	}
	if len(s.responses) == 0 {
		return LLMResponse{}, errors.New("stub exhausted")
	}
	text := s.responses[0]
	s.responses = s.responses[1:]
	return LLMResponse{Text: text}, nil
}

func TestClassifierClassify(t *testing.T) {
	client := &stubLLMClient{responses: []string{
		`Here you go: {"intent":"info_request","confidence":0.9,"reply":"Yes, we deliver to Gulshan!"}`,
	}}
	c := NewClassifier(client, "Dhaka Sweets")

	cls, err := c.Classify(context.Background(), "Do you deliver to Gulshan?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls.Intent != IntentInfo {
		t.Fatalf("unexpected intent: %s", cls.Intent)
	}
	if cls.Confidence != 0.9 {
		t.Fatalf("unexpected confidence: %f", cls.Confidence)
	}
	if cls.Reply != "Yes, we deliver to Gulshan!" {
		t.Fatalf("unexpected reply: %s", cls.Reply)
	}
	if cls.NeedsEscalation() {
		t.Fatal("high-confidence info_request should not escalate")
	}
}

func TestClassifierLLMError(t *testing.T) {
	client := &stubLLMClient{err: errors.New("model unavailable")}
	c := NewClassifier(client, "Dhaka Sweets")

	cls, err := c.Classify(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected fallback error to be reported")
	}
	if cls.Intent != IntentOther || cls.Confidence != 0 {
		t.Fatalf("expected default classification, got %+v", cls)
	}
	if cls.Reply == "" {
		t.Fatal("default classification must carry a clarification reply")
	}
	if !cls.NeedsEscalation() {
		t.Fatal("default classification must escalate")
	}
}

func TestClassifierUnparseableOutput(t *testing.T) {
	client := &stubLLMClient{responses: []string{"I cannot produce JSON today."}}
	c := NewClassifier(client, "Dhaka Sweets")

	cls, err := c.Classify(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected parse fallback to be reported")
	}
	if cls.Intent != IntentOther {
		t.Fatalf("expected default intent, got %s", cls.Intent)
	}
}

func TestClassifierUnknownIntentNormalized(t *testing.T) {
	client := &stubLLMClient{responses: []string{`{"intent":"greeting","confidence":0.95,"reply":"Hi!"}`}}
	c := NewClassifier(client, "Dhaka Sweets")

	cls, err := c.Classify(context.Background(), "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls.Intent != IntentOther {
		t.Fatalf("expected unknown label coerced to other, got %s", cls.Intent)
	}
	if !cls.NeedsEscalation() {
		t.Fatal("coerced other intent must escalate")
	}
}

func TestClassifierEmptyMessage(t *testing.T) {
	client := &stubLLMClient{}
	c := NewClassifier(client, "Dhaka Sweets")

	cls, err := c.Classify(context.Background(), "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cls.Intent != IntentOther {
		t.Fatalf("expected default for empty message, got %+v", cls)
	}
	if len(client.requests) != 0 {
		t.Fatal("empty message must not reach the model")
	}
}

func TestNeedsEscalationThreshold(t *testing.T) {
	tests := []struct {
		name string
		cls  Classification
		want bool
	}{
		{"confident order", Classification{Intent: IntentOrder, Confidence: 0.95}, false},
		{"at threshold", Classification{Intent: IntentInfo, Confidence: 0.6}, false},
		{"below threshold", Classification{Intent: IntentInfo, Confidence: 0.59}, true},
		{"confident other", Classification{Intent: IntentOther, Confidence: 0.99}, true},
		{"confident complaint", Classification{Intent: IntentComplaint, Confidence: 0.8}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cls.NeedsEscalation(); got != tt.want {
				t.Fatalf("NeedsEscalation() = %v, want %v", got, tt.want)
			}
		})
	}
}
