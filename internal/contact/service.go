package contact

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/kagiso-dev/thriftbales-backend/pkg/config"
	"github.com/kagiso-dev/thriftbales-backend/pkg/email"
	pkgerrors "github.com/kagiso-dev/thriftbales-backend/pkg/errors"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
)

const maxMessageLength = 4000

// Input is one contact-form submission.
type Input struct {
	Name    string
	Email   string
	Message string
}

// Service relays contact-form submissions to the sales inbox.
type Service interface {
	SendContactEmail(ctx context.Context, input Input) error
}

type service struct {
	sender email.Sender
	cfg    config.NotifyConfig
	logg   *logger.Logger
}

// NewService builds the contact service with the required dependencies.
func NewService(sender email.Sender, cfg config.NotifyConfig, logg *logger.Logger) (Service, error) {
	if sender == nil {
		return nil, fmt.Errorf("email sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{sender: sender, cfg: cfg, logg: logg}, nil
}

func (s *service) SendContactEmail(ctx context.Context, input Input) error {
	name := strings.TrimSpace(input.Name)
	from := strings.TrimSpace(input.Email)
	message := strings.TrimSpace(input.Message)

	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if from == "" || !strings.Contains(from, "@") {
		return pkgerrors.New(pkgerrors.CodeValidation, "a valid email address is required")
	}
	if message == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}
	if len(message) > maxMessageLength {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("message must be at most %d characters", maxMessageLength))
	}

	body := fmt.Sprintf(
		"<p><strong>From:</strong> %s &lt;%s&gt;</p><p>%s</p>",
		html.EscapeString(name),
		html.EscapeString(from),
		strings.ReplaceAll(html.EscapeString(message), "\n", "<br>"),
	)
	msg := email.Message{
		From:    s.cfg.FromEmail,
		To:      []string{s.cfg.SalesEmail},
		Subject: fmt.Sprintf("Website enquiry from %s", name),
		HTML:    body,
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "relay contact email")
	}

	s.logg.Info(s.logg.WithField(ctx, "sender_email", from), "contact email relayed")
	return nil
}
