package agents

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func echoCompleter() Completer {
	return CompleterFunc(func(_ context.Context, system, user string) (string, error) {
		return "system=" + system + " user=" + user, nil
	})
}

func TestAgentAsk(t *testing.T) {
	a := NewAgent(BookingAgent("gpt-4"), echoCompleter(), nil)

	reply, err := a.Ask(context.Background(), "how much is a moon trip?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(reply, "travel consultant") {
		t.Fatalf("system prompt missing role: %q", reply)
	}
	if !strings.Contains(reply, "how much is a moon trip?") {
		t.Fatalf("user content missing: %q", reply)
	}
}

func TestAgentAskValidation(t *testing.T) {
	a := NewAgent(SafetyAgent("gpt-4"), echoCompleter(), nil)
	if _, err := a.Ask(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty content")
	}

	unconfigured := NewAgent(SafetyAgent("gpt-4"), nil, nil)
	if _, err := unconfigured.Ask(context.Background(), "hi"); err == nil {
		t.Fatal("expected error without completer")
	}
}

func TestAgentAskWrapsErrors(t *testing.T) {
	failing := CompleterFunc(func(context.Context, string, string) (string, error) {
		return "", fmt.Errorf("upstream down")
	})
	a := NewAgent(CustomerServiceAgent("gpt-4"), failing, nil)

	_, err := a.Ask(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "customer-service") {
		t.Fatalf("error not attributed to agent: %v", err)
	}
}

func TestTeamDelegate(t *testing.T) {
	team := NewTeam(nil,
		NewAgent(BookingAgent("gpt-4"), echoCompleter(), nil),
		NewAgent(SafetyAgent("gpt-4"), echoCompleter(), nil),
	)

	result := team.Delegate(context.Background(), "booking", "plan a mars trip")
	if result.Err != "" {
		t.Fatalf("unexpected error result: %q", result.Err)
	}
	if result.Agent != "booking" {
		t.Fatalf("agent: got %q", result.Agent)
	}
	if result.Output == "" {
		t.Fatal("expected output")
	}
}

func TestTeamDelegateUnknownType(t *testing.T) {
	team := NewTeam(nil, NewAgent(BookingAgent("gpt-4"), echoCompleter(), nil))

	result := team.Delegate(context.Background(), "catering", "lunch?")
	if result.Err == "" {
		t.Fatal("expected failure result for unknown task type")
	}
	if result.Agent != "" {
		t.Fatalf("no agent should be attributed, got %q", result.Agent)
	}
}

func TestDeskHandle(t *testing.T) {
	desk := NewDesk(NewAgent(CustomerServiceAgent("gpt-4"), echoCompleter(), nil), nil)

	resp, err := desk.Handle(context.Background(), Inquiry{
		Type:    "Emergency",
		Name:    "Taro",
		Email:   "taro@example.com",
		Message: "cabin pressure warning",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Priority != "high" || resp.SLAHours != 1 {
		t.Fatalf("emergency SLA: got %s/%d", resp.Priority, resp.SLAHours)
	}
	if resp.Acknowledgement == "" {
		t.Fatal("expected acknowledgement")
	}
	if resp.AgentReply == "" {
		t.Fatal("expected delegated reply")
	}
}

func TestDeskHandleDegradesOnAgentFailure(t *testing.T) {
	failing := CompleterFunc(func(context.Context, string, string) (string, error) {
		return "", fmt.Errorf("upstream down")
	})
	desk := NewDesk(NewAgent(CustomerServiceAgent("gpt-4"), failing, nil), nil)

	resp, err := desk.Handle(context.Background(), Inquiry{Type: "general", Message: "hello"})
	if err != nil {
		t.Fatalf("intake must not fail on agent error: %v", err)
	}
	if resp.AgentReply != "" {
		t.Fatalf("expected acknowledgement only, got reply %q", resp.AgentReply)
	}
}

func TestDeskHandleValidation(t *testing.T) {
	desk := NewDesk(nil, nil)
	ctx := context.Background()

	if _, err := desk.Handle(ctx, Inquiry{Type: "billing", Message: "hi"}); err == nil {
		t.Fatal("expected error for unknown inquiry type")
	}
	if _, err := desk.Handle(ctx, Inquiry{Type: "general", Message: "  "}); err == nil {
		t.Fatal("expected error for empty message")
	}
}

func TestPriorityAndSLA(t *testing.T) {
	tests := []struct {
		inquiryType string
		priority    string
		hours       int
	}{
		{InquiryEmergency, "high", 1},
		{InquiryComplaint, "medium", 4},
		{InquiryBooking, "medium", 4},
		{InquiryGeneral, "low", 24},
		{InquiryFeedback, "low", 24},
	}
	for _, tt := range tests {
		p := Priority(tt.inquiryType)
		if p != tt.priority {
			t.Fatalf("%s priority: got %s want %s", tt.inquiryType, p, tt.priority)
		}
		h, err := SLAHours(p)
		if err != nil {
			t.Fatalf("%s sla: %v", tt.inquiryType, err)
		}
		if h != tt.hours {
			t.Fatalf("%s hours: got %d want %d", tt.inquiryType, h, tt.hours)
		}
	}
	if _, err := SLAHours("urgent"); err == nil {
		t.Fatal("expected error for unknown priority")
	}
}
