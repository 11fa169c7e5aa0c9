package notify

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	defaultSendGridHost = "https://api.sendgrid.com"
	sendGridEndpoint    = "/v3/mail/send"
)

// SendGridConfig configures the SendGrid notifier.
type SendGridConfig struct {
	APIKey    string
	AppName   string
	FromEmail string
	Host      string
}

// SendGridNotifier delivers notifications as email through SendGrid.
type SendGridNotifier struct {
	key        string
	host       string
	from       *sgmail.Email
	subjPrefix string
}

var _ Notifier = (*SendGridNotifier)(nil)

// NewSendGrid creates a SendGrid notifier.
func NewSendGrid(cfg SendGridConfig) *SendGridNotifier {
	host := cfg.Host
	if host == "" {
		host = defaultSendGridHost
	}
	return &SendGridNotifier{
		key:        cfg.APIKey,
		host:       host,
		from:       sgmail.NewEmail(cfg.AppName, cfg.FromEmail),
		subjPrefix: "[" + cfg.AppName + "] ",
	}
}

// Notify implements Notifier.
func (n *SendGridNotifier) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p := sgmail.NewPersonalization()
	p.Subject = n.subjPrefix + msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.To))

	m := sgmail.NewV3Mail()
	m.SetFrom(n.from)
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", msg.Body),
		sgmail.NewContent("text/html", "<p>"+strings.ReplaceAll(html.EscapeString(msg.Body), "\n", "<br>")+"</p>"),
	)

	req := sendgrid.GetRequest(n.key, sendGridEndpoint, n.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m)

	res, err := sendgrid.API(req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
