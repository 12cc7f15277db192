package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/kagiso-dev/thriftbales-backend/internal/orders"
	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
	pkgerrors "github.com/kagiso-dev/thriftbales-backend/pkg/errors"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
)

type unpaidOrderReader interface {
	FindUnpaidBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
}

type paymentReminderSender interface {
	SendPaymentReminder(ctx context.Context, orderID uuid.UUID) (*orders.MutationResult, error)
}

// PaymentReminderJobParams configure the unpaid-order reminder job.
type PaymentReminderJobParams struct {
	Logger     *logger.Logger
	Reader     unpaidOrderReader
	Orders     paymentReminderSender
	MinimumAge time.Duration
}

// NewPaymentReminderJob builds the cron job that nudges customers with an
// outstanding balance.
func NewPaymentReminderJob(params PaymentReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reader == nil {
		return nil, fmt.Errorf("orders reader required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service required")
	}
	if params.MinimumAge <= 0 {
		return nil, fmt.Errorf("minimum age must be positive")
	}
	return &paymentReminderJob{
		logg:       params.Logger,
		reader:     params.Reader,
		orders:     params.Orders,
		minimumAge: params.MinimumAge,
		now:        time.Now,
	}, nil
}

type paymentReminderJob struct {
	logg       *logger.Logger
	reader     unpaidOrderReader
	orders     paymentReminderSender
	minimumAge time.Duration
	now        func() time.Time
}

func (j *paymentReminderJob) Name() string { return "payment-reminder" }

func (j *paymentReminderJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.minimumAge)
	stale, err := j.reader.FindUnpaidBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query unpaid orders: %w", err)
	}

	var errs []error
	reminded := 0
	for _, order := range stale {
		_, err := j.orders.SendPaymentReminder(ctx, order.ID)
		if err != nil {
			// The balance may have been settled between the query and the send.
			if pkgerrors.CodeOf(err) == pkgerrors.CodeStateConflict {
				continue
			}
			errs = append(errs, fmt.Errorf("remind order %s: %w", order.OrderNumber, err))
			continue
		}
		reminded++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"candidates": len(stale), "reminded": reminded})
	j.logg.Info(logCtx, "payment reminder loop complete")
	return multierr.Combine(errs...)
}
