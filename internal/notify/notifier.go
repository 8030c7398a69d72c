// Package notify fans alerts out to the configured operator channels: SMTP
// email, Slack, Discord and LINE Notify. Channels with empty endpoints are
// skipped; each configured channel is attempted independently.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/smtp"
	"net/url"
	"strings"
	"time"

	"github.com/nekoneko-space/travel-platform/internal/app/metrics"
	"github.com/nekoneko-space/travel-platform/internal/config"
	"github.com/nekoneko-space/travel-platform/pkg/logger"
)

// Severity levels for an alert.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Slack attachment colors per severity.
var slackColors = map[string]string{
	SeverityInfo:    "#36a64f",
	SeverityWarning: "#ffd700",
	SeverityError:   "#ff0000",
}

// Discord embed colors per severity (decimal RGB).
var discordColors = map[string]int{
	SeverityInfo:    0x36a64f,
	SeverityWarning: 0xffd700,
	SeverityError:   0xff0000,
}

// Alert is one message pushed to the operator channels.
type Alert struct {
	Title    string
	Message  string
	Severity string
}

// Result reports the outcome of one channel delivery.
type Result struct {
	Channel string `json:"channel"`
	OK      bool   `json:"ok"`
	Err     string `json:"error,omitempty"`
}

// Notifier broadcasts alerts.
type Notifier struct {
	cfg   config.NotifierConfig
	log   *logger.Logger
	httpc *http.Client

	// sendMail is swapped in tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// New constructs a notifier from the channel configuration.
func New(cfg config.NotifierConfig, log *logger.Logger) *Notifier {
	if log == nil {
		log = logger.NewDefault("notify")
	}
	return &Notifier{
		cfg:      cfg,
		log:      log,
		httpc:    &http.Client{Timeout: 10 * time.Second},
		sendMail: smtp.SendMail,
	}
}

// Broadcast delivers the alert to every configured channel and returns one
// result per channel attempted. A failing channel never blocks the others.
func (n *Notifier) Broadcast(ctx context.Context, a Alert) []Result {
	if a.Severity == "" {
		a.Severity = SeverityInfo
	}

	var results []Result
	if n.cfg.SMTPHost != "" && len(n.cfg.EmailRecipients) > 0 {
		results = append(results, n.deliver("email", n.sendEmail(a)))
	}
	if n.cfg.SlackWebhookURL != "" {
		results = append(results, n.deliver("slack", n.sendSlack(ctx, a)))
	}
	if n.cfg.DiscordWebhookURL != "" {
		results = append(results, n.deliver("discord", n.sendDiscord(ctx, a)))
	}
	if n.cfg.LINEToken != "" {
		results = append(results, n.deliver("line", n.sendLINE(ctx, a)))
	}

	if len(results) == 0 {
		n.log.WithField("title", a.Title).Warn("alert dropped: no channels configured")
	}
	return results
}

func (n *Notifier) deliver(channel string, err error) Result {
	metrics.RecordAlertDelivery(channel, err == nil)
	if err != nil {
		n.log.WithError(err).WithField("channel", channel).Error("alert delivery failed")
		return Result{Channel: channel, Err: err.Error()}
	}
	n.log.WithField("channel", channel).Debug("alert delivered")
	return Result{Channel: channel, OK: true}
}

func (n *Notifier) sendEmail(a Alert) error {
	addr := fmt.Sprintf("%s:%d", n.cfg.SMTPHost, n.cfg.SMTPPort)

	var auth smtp.Auth
	if n.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", n.cfg.SMTPUsername, n.cfg.SMTPPassword, n.cfg.SMTPHost)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", n.cfg.FromAddress)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(n.cfg.EmailRecipients, ", "))
	fmt.Fprintf(&msg, "Subject: [%s] %s\r\n", strings.ToUpper(a.Severity), a.Title)
	fmt.Fprintf(&msg, "\r\n%s\r\n", a.Message)

	if err := n.sendMail(addr, auth, n.cfg.FromAddress, n.cfg.EmailRecipients, msg.Bytes()); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}
	return nil
}

func (n *Notifier) sendSlack(ctx context.Context, a Alert) error {
	color, ok := slackColors[a.Severity]
	if !ok {
		color = slackColors[SeverityInfo]
	}
	payload := map[string]any{
		"attachments": []map[string]any{{
			"color": color,
			"title": a.Title,
			"text":  a.Message,
			"ts":    time.Now().Unix(),
		}},
	}
	return n.postJSON(ctx, "slack", n.cfg.SlackWebhookURL, payload)
}

func (n *Notifier) sendDiscord(ctx context.Context, a Alert) error {
	color, ok := discordColors[a.Severity]
	if !ok {
		color = discordColors[SeverityInfo]
	}
	payload := map[string]any{
		"embeds": []map[string]any{{
			"title":       a.Title,
			"description": a.Message,
			"color":       color,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		}},
	}
	return n.postJSON(ctx, "discord", n.cfg.DiscordWebhookURL, payload)
}

func (n *Notifier) sendLINE(ctx context.Context, a Alert) error {
	form := url.Values{}
	form.Set("message", fmt.Sprintf("[%s] %s\n%s", strings.ToUpper(a.Severity), a.Title, a.Message))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://notify-api.line.me/api/notify", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("line: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+n.cfg.LINEToken)

	return n.do("line", req)
}

func (n *Notifier) postJSON(ctx context.Context, channel, endpoint string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: encode payload: %w", channel, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: %w", channel, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return n.do(channel, req)
}

func (n *Notifier) do(channel string, req *http.Request) error {
	resp, err := n.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", channel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s: status %d: %s", channel, resp.StatusCode, bytes.TrimSpace(raw))
	}
	return nil
}
