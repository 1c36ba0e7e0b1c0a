package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// sendRequest is a seam for testing sendgrid.MakeRequestWithContext.
var sendRequest = func(ctx context.Context, req rest.Request) (*rest.Response, error) {
	return sendgrid.MakeRequestWithContext(ctx, req)
}

// SendgridNotifier emails notifications through the SendGrid v3 API.
type SendgridNotifier struct {
	key        string
	from       *sgmail.Email
	to         *sgmail.Email
	subjPrefix string
}

func NewSendgridNotifier(key, fromEmail, toEmail string) *SendgridNotifier {
	return &SendgridNotifier{
		key:        key,
		from:       sgmail.NewEmail("agendasync", fromEmail),
		to:         sgmail.NewEmail("", toEmail),
		subjPrefix: "[agendasync] ",
	}
}

func (n *SendgridNotifier) message(title, body string) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = n.subjPrefix + title
	p.AddTos(n.to)

	m := sgmail.NewV3Mail()
	m.SetFrom(n.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", body))
	return m
}

func (n *SendgridNotifier) Notify(ctx context.Context, title, body string) error {
	req := sendgrid.GetRequest(n.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(n.message(title, body))

	res, err := sendRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid: status %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
