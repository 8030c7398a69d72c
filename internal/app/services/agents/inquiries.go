package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nekoneko-space/travel-platform/pkg/logger"
)

// Inquiry types accepted at intake.
const (
	InquiryGeneral   = "general"
	InquiryBooking   = "booking"
	InquiryComplaint = "complaint"
	InquiryEmergency = "emergency"
	InquiryFeedback  = "feedback"
)

// Response-time commitments in hours per priority.
var slaHours = map[string]int{
	"high":   1,
	"medium": 4,
	"low":    24,
}

var acknowledgements = map[string]string{
	InquiryGeneral:   "Thank you for contacting us. A consultant will follow up with the details you requested.",
	InquiryBooking:   "We have received your booking inquiry and will confirm availability shortly.",
	InquiryComplaint: "We are sorry to hear about your experience. A senior representative will review your case.",
	InquiryEmergency: "Your emergency report has been escalated to the operations team immediately.",
	InquiryFeedback:  "Thank you for your feedback. It has been shared with the relevant team.",
}

// Inquiry is a customer support request at intake.
type Inquiry struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// InquiryResponse is what the traveller gets back at intake time.
type InquiryResponse struct {
	Type            string    `json:"type"`
	Priority        string    `json:"priority"`
	SLAHours        int       `json:"sla_hours"`
	RespondBy       time.Time `json:"respond_by"`
	Acknowledgement string    `json:"acknowledgement"`
	AgentReply      string    `json:"agent_reply,omitempty"`
}

// Desk performs inquiry intake and optional agent delegation.
type Desk struct {
	agent *Agent
	log   *logger.Logger
	now   func() time.Time
}

// NewDesk constructs the support desk. agent may be nil; intake then returns
// only the canned acknowledgement.
func NewDesk(agent *Agent, log *logger.Logger) *Desk {
	if log == nil {
		log = logger.NewDefault("support-desk")
	}
	return &Desk{agent: agent, log: log, now: time.Now}
}

// Handle validates an inquiry, assigns priority and SLA, and delegates to the
// customer service agent when one is configured. Agent failures degrade to
// the acknowledgement alone.
func (d *Desk) Handle(ctx context.Context, inq Inquiry) (InquiryResponse, error) {
	inq.Type = strings.ToLower(strings.TrimSpace(inq.Type))
	ack, ok := acknowledgements[inq.Type]
	if !ok {
		return InquiryResponse{}, fmt.Errorf("unknown inquiry type %q", inq.Type)
	}
	if strings.TrimSpace(inq.Message) == "" {
		return InquiryResponse{}, fmt.Errorf("message is required")
	}

	priority := Priority(inq.Type)
	hours := slaHours[priority]
	resp := InquiryResponse{
		Type:            inq.Type,
		Priority:        priority,
		SLAHours:        hours,
		RespondBy:       d.now().Add(time.Duration(hours) * time.Hour),
		Acknowledgement: ack,
	}

	if d.agent != nil {
		prompt := fmt.Sprintf("Inquiry from %s <%s> (type: %s):\n%s",
			inq.Name, inq.Email, inq.Type, inq.Message)
		reply, err := d.agent.Ask(ctx, prompt)
		if err != nil {
			d.log.WithError(err).Warn("inquiry delegation failed, returning acknowledgement only")
		} else {
			resp.AgentReply = reply
		}
	}

	d.log.WithField("type", inq.Type).
		WithField("priority", priority).
		Info("inquiry received")
	return resp, nil
}

// Priority maps an inquiry type to a response priority.
func Priority(inquiryType string) string {
	switch inquiryType {
	case InquiryEmergency:
		return "high"
	case InquiryComplaint, InquiryBooking:
		return "medium"
	default:
		return "low"
	}
}

// SLAHours returns the response commitment for a priority.
func SLAHours(priority string) (int, error) {
	h, ok := slaHours[strings.ToLower(strings.TrimSpace(priority))]
	if !ok {
		return 0, fmt.Errorf("unknown priority %q", priority)
	}
	return h, nil
}
