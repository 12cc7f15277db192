package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kagiso-dev/thriftbales-backend/pkg/config"
	pkgerrors "github.com/kagiso-dev/thriftbales-backend/pkg/errors"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
	"github.com/kagiso-dev/thriftbales-backend/pkg/security"
	"github.com/kagiso-dev/thriftbales-backend/pkg/sms"
)

// PinStore is the Redis surface the verification service depends on.
// Implemented by pkg/redis.Client.
type PinStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	PinKey(phone string) string
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Service verifies customer phone numbers before e-wallet checkout.
type Service interface {
	SendPIN(ctx context.Context, phone string) error
	VerifyPIN(ctx context.Context, phone, pin string) error
}

type service struct {
	store  PinStore
	sender sms.Sender
	cfg    config.VerificationConfig
	logg   *logger.Logger
}

// NewService builds a verification service with the required dependencies.
func NewService(store PinStore, sender sms.Sender, cfg config.VerificationConfig, logg *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("pin store required")
	}
	if sender == nil {
		return nil, fmt.Errorf("sms sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{store: store, sender: sender, cfg: cfg, logg: logg}, nil
}

func (s *service) SendPIN(ctx context.Context, phone string) error {
	number, err := sms.NormalizeMSISDN(phone)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid phone number")
	}

	allowed, _, err := s.store.FixedWindowAllow(ctx, "pin:"+number, int64(s.cfg.SendLimit), s.cfg.SendWindow)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pin rate limit")
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many verification attempts, try again shortly")
	}

	pin, err := security.GeneratePIN(s.cfg.PinLength)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate pin")
	}
	if err := s.store.Set(ctx, s.store.PinKey(number), pin, s.cfg.PinTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store pin")
	}

	body := sms.Truncate(fmt.Sprintf("Your Thrift Bales verification code is %s. It expires in %d minutes.", pin, int(s.cfg.PinTTL.Minutes())))
	if err := s.sender.Send(ctx, body, []string{number}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send pin sms")
	}
	s.logg.Info(ctx, "verification pin sent")
	return nil
}

// VerifyPIN checks the submitted code and consumes it on success.
func (s *service) VerifyPIN(ctx context.Context, phone, pin string) error {
	number, err := sms.NormalizeMSISDN(phone)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid phone number")
	}

	key := s.store.PinKey(number)
	stored, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "verification code expired or not requested")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pin")
	}
	if !security.PINEqual(stored, pin) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "incorrect verification code")
	}
	if err := s.store.Del(ctx, key); err != nil {
		s.logg.Warn(ctx, "failed to consume verification pin: "+err.Error())
	}
	return nil
}
