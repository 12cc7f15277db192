package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/kagiso-dev/thriftbales-backend/internal/auth"
	"github.com/kagiso-dev/thriftbales-backend/internal/bales"
	"github.com/kagiso-dev/thriftbales-backend/internal/categories"
	"github.com/kagiso-dev/thriftbales-backend/internal/contact"
	"github.com/kagiso-dev/thriftbales-backend/internal/marketing"
	"github.com/kagiso-dev/thriftbales-backend/internal/orders"
	"github.com/kagiso-dev/thriftbales-backend/internal/stock"
	"github.com/kagiso-dev/thriftbales-backend/internal/users"
	pkgAuth "github.com/kagiso-dev/thriftbales-backend/pkg/auth"
	"github.com/kagiso-dev/thriftbales-backend/pkg/auth/session"
	"github.com/kagiso-dev/thriftbales-backend/pkg/config"
	"github.com/kagiso-dev/thriftbales-backend/pkg/enums"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
	"github.com/kagiso-dev/thriftbales-backend/pkg/paystack"
	"github.com/kagiso-dev/thriftbales-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, input auth.LoginInput) (*auth.AuthResult, error) {
	return &auth.AuthResult{}, nil
}

func (stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*auth.RefreshResult, error) {
	return &auth.RefreshResult{}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessToken string) error {
	return nil
}

func (stubAuthService) RegisterAdmin(ctx context.Context, input auth.RegisterAdminInput) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

func (stubAuthService) VerifyPassword(ctx context.Context, userID uuid.UUID, password string) error {
	return nil
}

type stubOrdersService struct {
	listed  bool
	tracked bool
}

func (s *stubOrdersService) CreateOrder(ctx context.Context, input orders.CreateOrderInput) (*orders.MutationResult, error) {
	return &orders.MutationResult{}, nil
}

func (s *stubOrdersService) AdvanceStatus(ctx context.Context, input orders.AdvanceStatusInput) (*orders.MutationResult, error) {
	return &orders.MutationResult{}, nil
}

func (s *stubOrdersService) UpdatePayment(ctx context.Context, input orders.UpdatePaymentInput) (*orders.MutationResult, error) {
	return &orders.MutationResult{}, nil
}

func (s *stubOrdersService) SendNote(ctx context.Context, input orders.SendNoteInput) (*orders.MutationResult, error) {
	return &orders.MutationResult{}, nil
}

func (s *stubOrdersService) SendPaymentReminder(ctx context.Context, orderID uuid.UUID) (*orders.MutationResult, error) {
	return &orders.MutationResult{}, nil
}

func (s *stubOrdersService) DeleteOrder(ctx context.Context, input orders.DeleteOrderInput) error {
	return nil
}

func (s *stubOrdersService) GetOrder(ctx context.Context, orderID uuid.UUID) (*orders.OrderDTO, error) {
	return &orders.OrderDTO{ID: orderID}, nil
}

func (s *stubOrdersService) ListOrders(ctx context.Context, input orders.ListOrdersInput) (*orders.OrderListResult, error) {
	s.listed = true
	return &orders.OrderListResult{}, nil
}

func (s *stubOrdersService) TrackByNumber(ctx context.Context, orderNumber string) (*orders.TrackingDTO, error) {
	s.tracked = true
	return &orders.TrackingDTO{OrderNumber: orderNumber}, nil
}

type stubBalesService struct{}

func (stubBalesService) CreateBale(ctx context.Context, input bales.CreateBaleInput) (*bales.BaleDTO, error) {
	return &bales.BaleDTO{}, nil
}

func (stubBalesService) UpdateBale(ctx context.Context, baleID uuid.UUID, input bales.UpdateBaleInput) (*bales.BaleDTO, error) {
	return &bales.BaleDTO{}, nil
}

func (stubBalesService) DeleteBale(ctx context.Context, baleID uuid.UUID) error {
	return nil
}

func (stubBalesService) GetBale(ctx context.Context, baleID uuid.UUID) (*bales.BaleDTO, error) {
	return &bales.BaleDTO{ID: baleID}, nil
}

func (stubBalesService) ListBales(ctx context.Context, input bales.ListBalesInput) (*bales.BaleListResult, error) {
	return &bales.BaleListResult{}, nil
}

func (stubBalesService) ReorderBales(ctx context.Context, orderedIDs []uuid.UUID) error {
	return nil
}

type stubStockService struct{}

func (stubStockService) CreateStockItem(ctx context.Context, input stock.CreateStockItemInput) (*stock.StockItemDTO, error) {
	return &stock.StockItemDTO{}, nil
}

func (stubStockService) UpdateStockItem(ctx context.Context, itemID uuid.UUID, input stock.UpdateStockItemInput) (*stock.StockItemDTO, error) {
	return &stock.StockItemDTO{}, nil
}

func (stubStockService) DeleteStockItem(ctx context.Context, itemID uuid.UUID) error {
	return nil
}

func (stubStockService) GetStockItem(ctx context.Context, itemID uuid.UUID) (*stock.StockItemDTO, error) {
	return &stock.StockItemDTO{ID: itemID}, nil
}

func (stubStockService) ListStockItems(ctx context.Context, input stock.ListStockItemsInput) (*stock.StockItemListResult, error) {
	return &stock.StockItemListResult{}, nil
}

func (stubStockService) AddImage(ctx context.Context, itemID uuid.UUID, contentType string, data []byte) (*stock.StockItemDTO, error) {
	return &stock.StockItemDTO{ID: itemID}, nil
}

func (stubStockService) RemoveImage(ctx context.Context, itemID, imageID uuid.UUID) (*stock.StockItemDTO, error) {
	return &stock.StockItemDTO{ID: itemID}, nil
}

func (stubStockService) SetPrimaryImage(ctx context.Context, itemID, imageID uuid.UUID) (*stock.StockItemDTO, error) {
	return &stock.StockItemDTO{ID: itemID}, nil
}

type stubCategoriesService struct{}

func (stubCategoriesService) CreateCategory(ctx context.Context, input categories.CreateCategoryInput) (*categories.CategoryDTO, error) {
	return &categories.CategoryDTO{}, nil
}

func (stubCategoriesService) UpdateCategory(ctx context.Context, categoryID uuid.UUID, input categories.UpdateCategoryInput) (*categories.CategoryDTO, error) {
	return &categories.CategoryDTO{}, nil
}

func (stubCategoriesService) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	return nil
}

func (stubCategoriesService) GetCategory(ctx context.Context, categoryID uuid.UUID) (*categories.CategoryDTO, error) {
	return &categories.CategoryDTO{ID: categoryID}, nil
}

func (stubCategoriesService) ListCategories(ctx context.Context, kind *enums.CategoryKind) ([]categories.CategoryDTO, error) {
	return []categories.CategoryDTO{}, nil
}

type stubMarketingService struct{}

func (stubMarketingService) CreateCampaign(ctx context.Context, input marketing.CreateCampaignInput) (*marketing.CampaignDTO, error) {
	return &marketing.CampaignDTO{}, nil
}

func (stubMarketingService) UpdateCampaign(ctx context.Context, campaignID uuid.UUID, input marketing.UpdateCampaignInput) (*marketing.CampaignDTO, error) {
	return &marketing.CampaignDTO{}, nil
}

func (stubMarketingService) DeleteCampaign(ctx context.Context, campaignID uuid.UUID) error {
	return nil
}

func (stubMarketingService) GetCampaign(ctx context.Context, campaignID uuid.UUID) (*marketing.CampaignDTO, error) {
	return &marketing.CampaignDTO{ID: campaignID}, nil
}

func (stubMarketingService) ListCampaigns(ctx context.Context, limit int, cursor string) (*marketing.CampaignListResult, error) {
	return &marketing.CampaignListResult{}, nil
}

func (stubMarketingService) SendCampaign(ctx context.Context, campaignID uuid.UUID) (*marketing.SendResult, error) {
	return &marketing.SendResult{}, nil
}

type stubVerificationService struct{}

func (stubVerificationService) SendPIN(ctx context.Context, phone string) error {
	return nil
}

func (stubVerificationService) VerifyPIN(ctx context.Context, phone, pin string) error {
	return nil
}

type stubContactService struct {
	sent bool
}

func (s *stubContactService) SendContactEmail(ctx context.Context, input contact.Input) error {
	s.sent = true
	return nil
}

type stubVerifier struct{}

func (stubVerifier) VerifyTransaction(ctx context.Context, reference string) (paystack.Transaction, error) {
	return paystack.Transaction{}, paystack.ErrTransactionNotFound
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubSessionChecker{},
		nil, // metrics
		stubAuthService{},
		&stubOrdersService{},
		stubBalesService{},
		stubStockService{},
		stubCategoriesService{},
		stubMarketingService{},
		stubVerificationService{},
		&stubContactService{},
		stubVerifier{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "admin@thriftbales.co.za",
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live probe got %d", resp.Code)
	}
	if env := resp.Header().Get("X-ThriftBales-Env"); env != "test" {
		t.Fatalf("expected env header, got %q", env)
	}
}

func TestPublicBalesListing(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bales", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public bales got %d", resp.Code)
	}
}

func TestPublicOrderTracking(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/track/TB-00042", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for tracking got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "TB-00042") {
		t.Fatalf("expected order number in body, got %s", resp.Body.String())
	}
}

func TestContactForm(t *testing.T) {
	router := newTestRouter(testConfig())
	body := strings.NewReader(`{"name":"Thandi","email":"thandi@example.com","message":"Do you ship to Durban?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contact", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for contact got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestCartQuote(t *testing.T) {
	router := newTestRouter(testConfig())
	body := strings.NewReader(`{"lines":[{"bale_id":"` + uuid.NewString() + `","name":"Winter mix","unit_price":"150.00","quantity":2}],"delivery_fee":"60.00"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/quote", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for cart quote got %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"total":"360"`) {
		t.Fatalf("expected total 360 in body, got %s", resp.Body.String())
	}
}

func TestAdminGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminCampaignRoutesRequireAuth(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/campaigns", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthenticated campaigns got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/v1/admin/campaigns", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin campaigns got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestVerificationRoutes(t *testing.T) {
	router := newTestRouter(testConfig())

	send := httptest.NewRequest(http.MethodPost, "/api/v1/verification/pin", strings.NewReader(`{"phone":"+27821234567"}`))
	send.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, send)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for pin send got %d: %s", resp.Code, resp.Body.String())
	}

	verify := httptest.NewRequest(http.MethodPost, "/api/v1/verification/pin/verify", strings.NewReader(`{"phone":"+27821234567","pin":"123456"}`))
	verify.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, verify)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for pin verify got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUnknownPaymentReferenceReturns404(t *testing.T) {
	router := newTestRouter(testConfig())
	body := strings.NewReader(`{"reference":"ref-missing","expected_amount":"350.00"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/paystack/verify", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown reference got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}
