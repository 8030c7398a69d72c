// Package agents hosts the LLM-backed assistants behind the concierge
// endpoints: a booking planner, a safety advisor, a customer service desk and
// the coordinator that routes tasks between them.
package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/nekoneko-space/travel-platform/pkg/logger"
)

// Definition describes one assistant and the instructions it operates under.
type Definition struct {
	Name         string
	Role         string
	Model        string
	Instructions []string
}

// Agent binds a definition to a completer.
type Agent struct {
	def       Definition
	completer Completer
	log       *logger.Logger
}

// NewAgent constructs an agent. completer may be nil; Ask then fails with a
// configuration error rather than a transport one.
func NewAgent(def Definition, completer Completer, log *logger.Logger) *Agent {
	if log == nil {
		log = logger.NewDefault("agents")
	}
	return &Agent{def: def, completer: completer, log: log}
}

// Name returns the agent's registered name.
func (a *Agent) Name() string { return a.def.Name }

// Ask sends the user content to the model under the agent's instructions.
func (a *Agent) Ask(ctx context.Context, content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("content is required")
	}
	if a.completer == nil {
		return "", fmt.Errorf("agent %s has no completer configured", a.def.Name)
	}

	system := fmt.Sprintf("You are %s, %s.\n%s",
		a.def.Name, a.def.Role, strings.Join(a.def.Instructions, "\n"))

	reply, err := a.completer.Complete(ctx, system, content)
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", a.def.Name, err)
	}

	a.log.WithField("agent", a.def.Name).Debug("agent reply produced")
	return reply, nil
}

// BookingAgent plans itineraries and answers package questions.
func BookingAgent(model string) Definition {
	return Definition{
		Name:  "booking",
		Role:  "a travel consultant for a space travel agency",
		Model: model,
		Instructions: []string{
			"Help travellers choose a destination, package tier and departure date.",
			"Quote prices from the published rate table, never invent discounts.",
			"Flag bookings that conflict with launch windows.",
		},
	}
}

// SafetyAgent advises on health requirements and training.
func SafetyAgent(model string) Definition {
	return Definition{
		Name:  "safety",
		Role:  "a flight safety officer",
		Model: model,
		Instructions: []string{
			"Explain the pre-flight health requirements and training curriculum.",
			"Never clear a traveller for flight; only the medical team does that.",
			"Escalate anything that sounds like a medical emergency.",
		},
	}
}

// CustomerServiceAgent handles support conversations.
func CustomerServiceAgent(model string) Definition {
	return Definition{
		Name:  "customer-service",
		Role:  "a customer service representative",
		Model: model,
		Instructions: []string{
			"Answer politely and concretely, citing booking details when given.",
			"For complaints, acknowledge first and propose a resolution path.",
			"Hand off refund decisions to the payments team.",
		},
	}
}

// CoordinatorAgent routes work between the specialists.
func CoordinatorAgent(model string) Definition {
	return Definition{
		Name:  "coordinator",
		Role:  "the coordinator of a space travel support team",
		Model: model,
		Instructions: []string{
			"Decide which specialist should handle each task.",
			"Summarize multi-agent answers into one coherent reply.",
		},
	}
}

// TaskResult is the coordinator's outcome for one delegated task.
type TaskResult struct {
	TaskType string `json:"task_type"`
	Agent    string `json:"agent,omitempty"`
	Output   string `json:"output,omitempty"`
	Err      string `json:"error,omitempty"`
}

// Team routes tasks to the agent registered for each task type.
type Team struct {
	agents map[string]*Agent
	log    *logger.Logger
}

// NewTeam builds a team from the given agents, keyed by agent name.
func NewTeam(log *logger.Logger, members ...*Agent) *Team {
	if log == nil {
		log = logger.NewDefault("agent-team")
	}
	t := &Team{agents: make(map[string]*Agent, len(members)), log: log}
	for _, a := range members {
		t.agents[a.Name()] = a
	}
	return t
}

// Agent looks a member up by name.
func (t *Team) Agent(name string) (*Agent, bool) {
	a, ok := t.agents[strings.ToLower(strings.TrimSpace(name))]
	return a, ok
}

// Delegate routes a task to the agent registered for its type. An unknown
// type is a failure result, not an error.
func (t *Team) Delegate(ctx context.Context, taskType, content string) TaskResult {
	a, ok := t.Agent(taskType)
	if !ok {
		return TaskResult{
			TaskType: taskType,
			Err:      fmt.Sprintf("no agent registered for task type %q", taskType),
		}
	}

	out, err := a.Ask(ctx, content)
	if err != nil {
		t.log.WithError(err).WithField("agent", a.Name()).Warn("delegated task failed")
		return TaskResult{TaskType: taskType, Agent: a.Name(), Err: err.Error()}
	}
	return TaskResult{TaskType: taskType, Agent: a.Name(), Output: out}
}
