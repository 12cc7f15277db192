package notify

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/kagiso-dev/thriftbales-backend/pkg/config"
	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
	"github.com/kagiso-dev/thriftbales-backend/pkg/email"
	"github.com/kagiso-dev/thriftbales-backend/pkg/enums"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
	"github.com/kagiso-dev/thriftbales-backend/pkg/sms"
)

// DispatchSummary reports which channels delivered, so callers can tell the
// admin "customer notified via email only" instead of guessing from logs.
type DispatchSummary struct {
	EmailSent bool   `json:"email_sent"`
	SMSSent   bool   `json:"sms_sent"`
	EmailErr  error  `json:"-"`
	SMSErr    error  `json:"-"`
	Event     string `json:"event"`
}

// AnyDelivered reports whether at least one channel got through.
func (d DispatchSummary) AnyDelivered() bool {
	return d.EmailSent || d.SMSSent
}

// Err combines the per-channel failures for logging.
func (d DispatchSummary) Err() error {
	return multierr.Append(d.EmailErr, d.SMSErr)
}

// Options carries per-dispatch extras.
type Options struct {
	// Note is free text for note events and the shipping note on shipped
	// transitions.
	Note string
	// Attachment rides along on the email channel only (e.g. the packing
	// invoice PDF).
	Attachment *email.Attachment
}

// Dispatcher fans order events out to the customer over email and SMS.
// Provider failures never propagate as errors: they are logged and reported
// through the summary.
type Dispatcher interface {
	NotifyCustomer(ctx context.Context, order *models.Order, event enums.NotificationEvent, opts Options) DispatchSummary
	NotifySales(ctx context.Context, order *models.Order) DispatchSummary
}

type dispatcher struct {
	emailSender email.Sender
	smsSender   sms.Sender
	cfg         config.NotifyConfig
	logg        *logger.Logger
}

// NewDispatcher builds a notification dispatcher with the required deps.
// Either sender may be nil, which disables that channel.
func NewDispatcher(emailSender email.Sender, smsSender sms.Sender, cfg config.NotifyConfig, logg *logger.Logger) (Dispatcher, error) {
	if emailSender == nil && smsSender == nil {
		return nil, fmt.Errorf("at least one notification channel required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &dispatcher{
		emailSender: emailSender,
		smsSender:   smsSender,
		cfg:         cfg,
		logg:        logg,
	}, nil
}

func (d *dispatcher) NotifyCustomer(ctx context.Context, order *models.Order, event enums.NotificationEvent, opts Options) DispatchSummary {
	summary := DispatchSummary{Event: event.String()}
	if order == nil {
		return summary
	}

	ctx = d.logg.WithOrderNumber(ctx, order.OrderNumber)
	rendered := Render(d.cfg.StoreName, order, event, opts.Note)

	if d.emailSender != nil && order.CustomerEmail != nil && *order.CustomerEmail != "" {
		msg := email.Message{
			From:    d.cfg.FromEmail,
			To:      []string{*order.CustomerEmail},
			Subject: rendered.Subject,
			HTML:    rendered.HTML,
		}
		if opts.Attachment != nil {
			msg.Attachments = []email.Attachment{*opts.Attachment}
		}
		if err := d.emailSender.Send(ctx, msg); err != nil {
			summary.EmailErr = err
			d.logg.Error(ctx, fmt.Sprintf("customer email failed for event %s", event), err)
		} else {
			summary.EmailSent = true
		}
	}

	if d.smsSender != nil && order.CustomerPhone != nil && *order.CustomerPhone != "" {
		if err := d.smsSender.Send(ctx, rendered.SMS, []string{*order.CustomerPhone}); err != nil {
			summary.SMSErr = err
			d.logg.Error(ctx, fmt.Sprintf("customer sms failed for event %s", event), err)
		} else {
			summary.SMSSent = true
		}
	}

	return summary
}

func (d *dispatcher) NotifySales(ctx context.Context, order *models.Order) DispatchSummary {
	summary := DispatchSummary{Event: enums.EventSalesAlert.String()}
	if order == nil || d.emailSender == nil || d.cfg.SalesEmail == "" {
		return summary
	}

	ctx = d.logg.WithOrderNumber(ctx, order.OrderNumber)
	rendered := Render(d.cfg.StoreName, order, enums.EventSalesAlert, "")

	err := d.emailSender.Send(ctx, email.Message{
		From:    d.cfg.FromEmail,
		To:      []string{d.cfg.SalesEmail},
		Subject: rendered.Subject,
		HTML:    rendered.HTML,
	})
	if err != nil {
		summary.EmailErr = err
		d.logg.Error(ctx, "sales alert email failed", err)
		return summary
	}
	summary.EmailSent = true
	return summary
}
