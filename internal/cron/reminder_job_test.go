package cron

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kagiso-dev/thriftbales-backend/internal/orders"
	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
	pkgerrors "github.com/kagiso-dev/thriftbales-backend/pkg/errors"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
)

type stubUnpaidReader struct {
	rows   []models.Order
	cutoff time.Time
}

func (s *stubUnpaidReader) FindUnpaidBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	s.cutoff = cutoff
	return s.rows, nil
}

type stubReminderSender struct {
	reminded []uuid.UUID
	failFor  map[uuid.UUID]error
}

func (s *stubReminderSender) SendPaymentReminder(ctx context.Context, orderID uuid.UUID) (*orders.MutationResult, error) {
	if err, ok := s.failFor[orderID]; ok {
		return nil, err
	}
	s.reminded = append(s.reminded, orderID)
	return &orders.MutationResult{}, nil
}

func newReminderJob(t *testing.T, reader *stubUnpaidReader, sender *stubReminderSender) Job {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "cron-test", Level: zerolog.ErrorLevel, Output: io.Discard})
	job, err := NewPaymentReminderJob(PaymentReminderJobParams{
		Logger:     logg,
		Reader:     reader,
		Orders:     sender,
		MinimumAge: 72 * time.Hour,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	return job
}

func TestPaymentReminderJobRemindsStaleOrders(t *testing.T) {
	first := models.Order{ID: uuid.New(), OrderNumber: "TB-2026-000101"}
	second := models.Order{ID: uuid.New(), OrderNumber: "TB-2026-000102"}
	reader := &stubUnpaidReader{rows: []models.Order{first, second}}
	sender := &stubReminderSender{}
	job := newReminderJob(t, reader, sender)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sender.reminded) != 2 {
		t.Fatalf("reminded %d orders, want 2", len(sender.reminded))
	}
	if time.Since(reader.cutoff) < 72*time.Hour {
		t.Errorf("cutoff %v should be at least the minimum age in the past", reader.cutoff)
	}
}

func TestPaymentReminderJobSkipsSettledOrders(t *testing.T) {
	settled := models.Order{ID: uuid.New(), OrderNumber: "TB-2026-000103"}
	open := models.Order{ID: uuid.New(), OrderNumber: "TB-2026-000104"}
	reader := &stubUnpaidReader{rows: []models.Order{settled, open}}
	sender := &stubReminderSender{failFor: map[uuid.UUID]error{
		settled.ID: pkgerrors.New(pkgerrors.CodeStateConflict, "order has no outstanding balance"),
	}}
	job := newReminderJob(t, reader, sender)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sender.reminded) != 1 || sender.reminded[0] != open.ID {
		t.Fatalf("reminded = %v", sender.reminded)
	}
}

func TestPaymentReminderJobReportsFailuresAndContinues(t *testing.T) {
	broken := models.Order{ID: uuid.New(), OrderNumber: "TB-2026-000105"}
	open := models.Order{ID: uuid.New(), OrderNumber: "TB-2026-000106"}
	reader := &stubUnpaidReader{rows: []models.Order{broken, open}}
	sender := &stubReminderSender{failFor: map[uuid.UUID]error{
		broken.ID: errors.New("smtp down"),
	}}
	job := newReminderJob(t, reader, sender)

	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected an error for the failed reminder")
	}
	if len(sender.reminded) != 1 || sender.reminded[0] != open.ID {
		t.Fatalf("reminded = %v", sender.reminded)
	}
}
