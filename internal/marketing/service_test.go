package marketing

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kagiso-dev/thriftbales-backend/pkg/config"
	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
	"github.com/kagiso-dev/thriftbales-backend/pkg/email"
	"github.com/kagiso-dev/thriftbales-backend/pkg/enums"
	pkgerrors "github.com/kagiso-dev/thriftbales-backend/pkg/errors"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
	"github.com/kagiso-dev/thriftbales-backend/pkg/pagination"
)

type stubMarketingRepo struct {
	campaigns  map[uuid.UUID]*models.Campaign
	sends      []models.CampaignSend
	recipients []Recipient
}

func newStubMarketingRepo() *stubMarketingRepo {
	return &stubMarketingRepo{campaigns: map[uuid.UUID]*models.Campaign{}}
}

func (s *stubMarketingRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubMarketingRepo) Create(ctx context.Context, campaign *models.Campaign) (*models.Campaign, error) {
	if campaign.ID == uuid.Nil {
		campaign.ID = uuid.New()
	}
	copied := *campaign
	s.campaigns[campaign.ID] = &copied
	return campaign, nil
}

func (s *stubMarketingRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	campaign, ok := s.campaigns[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *campaign
	return &copied, nil
}

func (s *stubMarketingRepo) List(ctx context.Context, params pagination.Params) (*CampaignList, error) {
	list := &CampaignList{}
	for _, campaign := range s.campaigns {
		list.Campaigns = append(list.Campaigns, *campaign)
	}
	return list, nil
}

func (s *stubMarketingRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	campaign, ok := s.campaigns[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, ok := updates["status"].(enums.CampaignStatus); ok {
		campaign.Status = status
	}
	if body, ok := updates["body"].(string); ok {
		campaign.Body = body
	}
	if name, ok := updates["name"].(string); ok {
		campaign.Name = name
	}
	return nil
}

func (s *stubMarketingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.campaigns, id)
	return nil
}

func (s *stubMarketingRepo) RecordSend(ctx context.Context, send *models.CampaignSend) error {
	s.sends = append(s.sends, *send)
	return nil
}

func (s *stubMarketingRepo) FindSends(ctx context.Context, campaignID uuid.UUID) ([]models.CampaignSend, error) {
	out := []models.CampaignSend{}
	for _, send := range s.sends {
		if send.CampaignID == campaignID {
			out = append(out, send)
		}
	}
	return out, nil
}

func (s *stubMarketingRepo) ListRecipients(ctx context.Context) ([]Recipient, error) {
	return s.recipients, nil
}

type stubCampaignEmail struct {
	sent    []email.Message
	failFor string
}

func (s *stubCampaignEmail) Send(ctx context.Context, msg email.Message) error {
	if s.failFor != "" && len(msg.To) == 1 && msg.To[0] == s.failFor {
		return errors.New("mailbox unavailable")
	}
	s.sent = append(s.sent, msg)
	return nil
}

type stubCampaignSMS struct {
	bodies  []string
	numbers []string
}

func (s *stubCampaignSMS) Send(ctx context.Context, body string, numbers []string) error {
	s.bodies = append(s.bodies, body)
	s.numbers = append(s.numbers, numbers...)
	return nil
}

func newMarketingService(t *testing.T, repo Repository, emailSender *stubCampaignEmail, smsSender *stubCampaignSMS) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "marketing-test", Level: zerolog.ErrorLevel, Output: io.Discard})
	cfg := config.NotifyConfig{FromEmail: "orders@thriftbales.co.za", SalesEmail: "sales@thriftbales.co.za", StoreName: "Thrift Bales"}
	var es email.Sender
	if emailSender != nil {
		es = emailSender
	}
	svc, err := NewService(repo, es, smsSender, cfg, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func strPtr(v string) *string { return &v }

func TestSendCampaignBothChannels(t *testing.T) {
	repo := newStubMarketingRepo()
	repo.recipients = []Recipient{
		{Name: "Naledi", Email: strPtr("naledi@example.com"), Phone: strPtr("0821234567")},
		{Name: "Sipho", Email: strPtr("sipho@example.com")},
	}
	emailSender := &stubCampaignEmail{}
	smsSender := &stubCampaignSMS{}
	svc := newMarketingService(t, repo, emailSender, smsSender)

	created, err := svc.CreateCampaign(context.Background(), CreateCampaignInput{
		Name:    "Spring Drop",
		Channel: enums.CampaignChannelBoth,
		Subject: strPtr("New bales just landed"),
		Body:    "<p>Fresh stock in store.</p>",
	})
	if err != nil {
		t.Fatalf("CreateCampaign: %v", err)
	}

	result, err := svc.SendCampaign(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("SendCampaign: %v", err)
	}
	if result.Recipients != 2 {
		t.Errorf("recipients = %d, want 2", result.Recipients)
	}
	if result.EmailSent != 2 || result.EmailFailed != 0 {
		t.Errorf("email sent/failed = %d/%d", result.EmailSent, result.EmailFailed)
	}
	if result.SMSSent != 1 {
		t.Errorf("sms sent = %d, want 1", result.SMSSent)
	}
	if len(smsSender.numbers) != 1 || smsSender.numbers[0] != "27821234567" {
		t.Errorf("sms numbers = %v", smsSender.numbers)
	}

	campaign, err := svc.GetCampaign(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetCampaign: %v", err)
	}
	if campaign.Status != enums.CampaignStatusSent {
		t.Errorf("status = %s, want sent", campaign.Status)
	}
	if len(campaign.Sends) != 3 {
		t.Errorf("send records = %d, want 3", len(campaign.Sends))
	}
}

func TestSendCampaignRecipientFailureDoesNotAbort(t *testing.T) {
	repo := newStubMarketingRepo()
	repo.recipients = []Recipient{
		{Name: "Broken", Email: strPtr("broken@example.com")},
		{Name: "Fine", Email: strPtr("fine@example.com")},
	}
	emailSender := &stubCampaignEmail{failFor: "broken@example.com"}
	svc := newMarketingService(t, repo, emailSender, &stubCampaignSMS{})

	created, _ := svc.CreateCampaign(context.Background(), CreateCampaignInput{
		Name:    "Clearance",
		Channel: enums.CampaignChannelEmail,
		Subject: strPtr("Last chance"),
		Body:    "<p>Everything must go.</p>",
	})

	result, err := svc.SendCampaign(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("SendCampaign: %v", err)
	}
	if result.EmailSent != 1 || result.EmailFailed != 1 {
		t.Errorf("email sent/failed = %d/%d, want 1/1", result.EmailSent, result.EmailFailed)
	}

	campaign, _ := svc.GetCampaign(context.Background(), created.ID)
	failures := 0
	for _, send := range campaign.Sends {
		if !send.Succeeded {
			failures++
			if send.Error == nil {
				t.Error("failed send should record an error message")
			}
		}
	}
	if failures != 1 {
		t.Errorf("recorded failures = %d, want 1", failures)
	}
}

func TestSendCampaignTwiceRefused(t *testing.T) {
	repo := newStubMarketingRepo()
	svc := newMarketingService(t, repo, &stubCampaignEmail{}, &stubCampaignSMS{})

	created, _ := svc.CreateCampaign(context.Background(), CreateCampaignInput{
		Name:    "Welcome",
		Channel: enums.CampaignChannelEmail,
		Subject: strPtr("Hello"),
		Body:    "<p>Hi.</p>",
	})
	if _, err := svc.SendCampaign(context.Background(), created.ID); err != nil {
		t.Fatalf("first send: %v", err)
	}

	_, err := svc.SendCampaign(context.Background(), created.ID)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCreateCampaignEmailRequiresSubject(t *testing.T) {
	repo := newStubMarketingRepo()
	svc := newMarketingService(t, repo, &stubCampaignEmail{}, &stubCampaignSMS{})

	_, err := svc.CreateCampaign(context.Background(), CreateCampaignInput{
		Name:    "No subject",
		Channel: enums.CampaignChannelEmail,
		Body:    "<p>Body.</p>",
	})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateSentCampaignRefused(t *testing.T) {
	repo := newStubMarketingRepo()
	svc := newMarketingService(t, repo, &stubCampaignEmail{}, &stubCampaignSMS{})

	created, _ := svc.CreateCampaign(context.Background(), CreateCampaignInput{
		Name:    "Done",
		Channel: enums.CampaignChannelSMS,
		Body:    "Short blast",
	})
	if _, err := svc.SendCampaign(context.Background(), created.ID); err != nil {
		t.Fatalf("send: %v", err)
	}

	_, err := svc.UpdateCampaign(context.Background(), created.ID, UpdateCampaignInput{Name: strPtr("Renamed")})
	if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
