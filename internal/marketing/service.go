package marketing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kagiso-dev/thriftbales-backend/pkg/config"
	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
	"github.com/kagiso-dev/thriftbales-backend/pkg/email"
	"github.com/kagiso-dev/thriftbales-backend/pkg/enums"
	pkgerrors "github.com/kagiso-dev/thriftbales-backend/pkg/errors"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
	"github.com/kagiso-dev/thriftbales-backend/pkg/sms"
)

// Service exposes campaign management and batch sending.
type Service interface {
	CreateCampaign(ctx context.Context, input CreateCampaignInput) (*CampaignDTO, error)
	UpdateCampaign(ctx context.Context, campaignID uuid.UUID, input UpdateCampaignInput) (*CampaignDTO, error)
	DeleteCampaign(ctx context.Context, campaignID uuid.UUID) error
	GetCampaign(ctx context.Context, campaignID uuid.UUID) (*CampaignDTO, error)
	ListCampaigns(ctx context.Context, limit int, cursor string) (*CampaignListResult, error)
	SendCampaign(ctx context.Context, campaignID uuid.UUID) (*SendResult, error)
}

// CreateCampaignInput holds the validated payload to create a campaign.
type CreateCampaignInput struct {
	Name        string
	Channel     enums.CampaignChannel
	Subject     *string
	Body        string
	ScheduledAt *time.Time
}

// UpdateCampaignInput holds optional mutation values for a draft campaign.
type UpdateCampaignInput struct {
	Name        *string
	Channel     *enums.CampaignChannel
	Subject     *string
	Body        *string
	ScheduledAt *time.Time
}

// SendResult summarizes one campaign batch.
type SendResult struct {
	Recipients  int `json:"recipients"`
	EmailSent   int `json:"email_sent"`
	EmailFailed int `json:"email_failed"`
	SMSSent     int `json:"sms_sent"`
	SMSFailed   int `json:"sms_failed"`
}

type service struct {
	repo        Repository
	emailSender email.Sender
	smsSender   sms.Sender
	cfg         config.NotifyConfig
	logg        *logger.Logger
}

// NewService builds a marketing service. Either sender may be nil, which
// disables that channel for campaigns.
func NewService(repo Repository, emailSender email.Sender, smsSender sms.Sender, cfg config.NotifyConfig, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("marketing repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:        repo,
		emailSender: emailSender,
		smsSender:   smsSender,
		cfg:         cfg,
		logg:        logg,
	}, nil
}

func (s *service) CreateCampaign(ctx context.Context, input CreateCampaignInput) (*CampaignDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign name required")
	}
	if !input.Channel.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid campaign channel")
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign body required")
	}
	if input.Channel != enums.CampaignChannelSMS && (input.Subject == nil || strings.TrimSpace(*input.Subject) == "") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email campaigns require a subject")
	}

	campaign, err := s.repo.Create(ctx, &models.Campaign{
		Name:        name,
		Channel:     input.Channel,
		Status:      enums.CampaignStatusDraft,
		Subject:     input.Subject,
		Body:        input.Body,
		ScheduledAt: input.ScheduledAt,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create campaign")
	}
	return toCampaignDTO(campaign), nil
}

func (s *service) UpdateCampaign(ctx context.Context, campaignID uuid.UUID, input UpdateCampaignInput) (*CampaignDTO, error) {
	campaign, err := s.loadCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status != enums.CampaignStatusDraft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only draft campaigns can be edited")
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign name required")
		}
		updates["name"] = name
	}
	if input.Channel != nil {
		if !input.Channel.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid campaign channel")
		}
		updates["channel"] = *input.Channel
	}
	if input.Subject != nil {
		updates["subject"] = *input.Subject
	}
	if input.Body != nil {
		if strings.TrimSpace(*input.Body) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign body required")
		}
		updates["body"] = *input.Body
	}
	if input.ScheduledAt != nil {
		updates["scheduled_at"] = *input.ScheduledAt
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, campaignID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update campaign")
		}
	}
	return s.GetCampaign(ctx, campaignID)
}

func (s *service) DeleteCampaign(ctx context.Context, campaignID uuid.UUID) error {
	if _, err := s.loadCampaign(ctx, campaignID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, campaignID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete campaign")
	}
	return nil
}

func (s *service) GetCampaign(ctx context.Context, campaignID uuid.UUID) (*CampaignDTO, error) {
	campaign, err := s.loadCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	sends, err := s.repo.FindSends(ctx, campaignID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign sends")
	}
	return toCampaignDTOWithSends(campaign, sends), nil
}

func (s *service) ListCampaigns(ctx context.Context, limit int, cursor string) (*CampaignListResult, error) {
	list, err := s.repo.List(ctx, paginationParams(limit, cursor))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list campaigns")
	}
	result := &CampaignListResult{
		Campaigns:  make([]CampaignDTO, 0, len(list.Campaigns)),
		NextCursor: list.NextCursor,
	}
	for i := range list.Campaigns {
		result.Campaigns = append(result.Campaigns, *toCampaignDTO(&list.Campaigns[i]))
	}
	return result, nil
}

// SendCampaign fans the campaign out to every past customer contact. Per
// recipient failures are recorded and logged but never abort the batch.
func (s *service) SendCampaign(ctx context.Context, campaignID uuid.UUID) (*SendResult, error) {
	campaign, err := s.loadCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.Status == enums.CampaignStatusSent {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "campaign already sent")
	}
	if campaign.Status == enums.CampaignStatusSending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "campaign send already in progress")
	}

	recipients, err := s.repo.ListRecipients(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recipients")
	}
	if err := s.repo.Update(ctx, campaignID, map[string]any{"status": enums.CampaignStatusSending}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark campaign sending")
	}

	result := &SendResult{Recipients: len(recipients)}
	wantEmail := campaign.Channel == enums.CampaignChannelEmail || campaign.Channel == enums.CampaignChannelBoth
	wantSMS := campaign.Channel == enums.CampaignChannelSMS || campaign.Channel == enums.CampaignChannelBoth

	for _, recipient := range recipients {
		if wantEmail && s.emailSender != nil && recipient.Email != nil {
			s.sendEmail(ctx, campaign, recipient, result)
		}
		if wantSMS && s.smsSender != nil && recipient.Phone != nil {
			s.sendSMS(ctx, campaign, recipient, result)
		}
	}

	now := time.Now().UTC()
	if err := s.repo.Update(ctx, campaignID, map[string]any{
		"status":  enums.CampaignStatusSent,
		"sent_at": now,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark campaign sent")
	}
	return result, nil
}

func (s *service) sendEmail(ctx context.Context, campaign *models.Campaign, recipient Recipient, result *SendResult) {
	subject := campaign.Name
	if campaign.Subject != nil {
		subject = *campaign.Subject
	}
	err := s.emailSender.Send(ctx, email.Message{
		From:    s.cfg.FromEmail,
		To:      []string{*recipient.Email},
		Subject: subject,
		HTML:    campaign.Body,
	})
	s.record(ctx, campaign.ID, *recipient.Email, enums.CampaignChannelEmail, err)
	if err != nil {
		result.EmailFailed++
		s.logg.Warn(ctx, "campaign email failed: "+err.Error())
		return
	}
	result.EmailSent++
}

func (s *service) sendSMS(ctx context.Context, campaign *models.Campaign, recipient Recipient, result *SendResult) {
	number, err := sms.NormalizeMSISDN(*recipient.Phone)
	if err == nil {
		err = s.smsSender.Send(ctx, sms.Truncate(campaign.Body), []string{number})
	}
	s.record(ctx, campaign.ID, *recipient.Phone, enums.CampaignChannelSMS, err)
	if err != nil {
		result.SMSFailed++
		s.logg.Warn(ctx, "campaign sms failed: "+err.Error())
		return
	}
	result.SMSSent++
}

func (s *service) record(ctx context.Context, campaignID uuid.UUID, recipient string, channel enums.CampaignChannel, sendErr error) {
	send := &models.CampaignSend{
		CampaignID: campaignID,
		Recipient:  recipient,
		Channel:    channel,
		Succeeded:  sendErr == nil,
	}
	if sendErr != nil {
		msg := sendErr.Error()
		send.Error = &msg
	}
	if err := s.repo.RecordSend(ctx, send); err != nil {
		s.logg.Warn(ctx, "failed to record campaign send: "+err.Error())
	}
}

func (s *service) loadCampaign(ctx context.Context, campaignID uuid.UUID) (*models.Campaign, error) {
	if campaignID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign id required")
	}
	campaign, err := s.repo.FindByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "campaign not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load campaign")
	}
	return campaign, nil
}
