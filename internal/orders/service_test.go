package orders

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kagiso-dev/thriftbales-backend/internal/bales"
	"github.com/kagiso-dev/thriftbales-backend/internal/notify"
	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
	"github.com/kagiso-dev/thriftbales-backend/pkg/enums"
	pkgerrors "github.com/kagiso-dev/thriftbales-backend/pkg/errors"
	"github.com/kagiso-dev/thriftbales-backend/pkg/invoice"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
	"github.com/kagiso-dev/thriftbales-backend/pkg/pagination"
)

type stubOrdersRepo struct {
	orders  map[uuid.UUID]*models.Order
	items   map[uuid.UUID][]models.OrderItem
	history map[uuid.UUID][]models.OrderStatusHistory

	createErr      error
	createItemsErr error
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{
		orders:  map[uuid.UUID]*models.Order{},
		items:   map[uuid.UUID][]models.OrderItem{},
		history: map[uuid.UUID][]models.OrderStatusHistory{},
	}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.OrderNumber == "" {
		order.OrderNumber = "TB-2026-000001"
	}
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) CreateItems(ctx context.Context, items []models.OrderItem) error {
	if s.createItemsErr != nil {
		return s.createItemsErr
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		s.items[items[i].OrderID] = append(s.items[items[i].OrderID], items[i])
	}
	return nil
}

func (s *stubOrdersRepo) AppendHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	s.history[entry.OrderID] = append(s.history[entry.OrderID], *entry)
	return nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	copied.Items = s.items[id]
	return &copied, nil
}

func (s *stubOrdersRepo) FindByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	for _, order := range s.orders {
		if order.OrderNumber == orderNumber {
			return s.FindByID(ctx, order.ID)
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) FindHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	return s.history[orderID], nil
}

func (s *stubOrdersRepo) List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	list := &OrderList{}
	for _, order := range s.orders {
		copied := *order
		copied.Items = s.items[order.ID]
		list.Orders = append(list.Orders, copied)
	}
	return list, nil
}

func (s *stubOrdersRepo) FindUnpaidBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	var out []models.Order
	for _, order := range s.orders {
		if order.CreatedAt.Before(cutoff) &&
			(order.PaymentTrackingStatus == enums.PaymentTrackingAwaiting ||
				order.PaymentTrackingStatus == enums.PaymentTrackingPartiallyPaid) {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (s *stubOrdersRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	order, ok := s.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["fulfillment_status"]; ok {
		order.FulfillmentStatus = v.(enums.FulfillmentStatus)
	}
	if v, ok := updates["payment_tracking_status"]; ok {
		order.PaymentTrackingStatus = v.(enums.PaymentTrackingStatus)
	}
	if v, ok := updates["amount_paid"]; ok {
		order.AmountPaid = v.(decimal.Decimal)
	}
	if v, ok := updates["refund_reason"]; ok {
		reason := v.(string)
		order.RefundReason = &reason
	}
	return nil
}

func (s *stubOrdersRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.orders, id)
	delete(s.items, id)
	delete(s.history, id)
	return nil
}

type stubTx struct{}

func (stubTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type dispatchCall struct {
	event enums.NotificationEvent
	opts  notify.Options
}

type stubDispatcher struct {
	customer []dispatchCall
	sales    int
}

func (s *stubDispatcher) NotifyCustomer(ctx context.Context, order *models.Order, event enums.NotificationEvent, opts notify.Options) notify.DispatchSummary {
	s.customer = append(s.customer, dispatchCall{event: event, opts: opts})
	return notify.DispatchSummary{EmailSent: true, SMSSent: true, Event: event.String()}
}

func (s *stubDispatcher) NotifySales(ctx context.Context, order *models.Order) notify.DispatchSummary {
	s.sales++
	return notify.DispatchSummary{EmailSent: true}
}

type stubInvoices struct {
	rendered int
	err      error
}

func (s *stubInvoices) Render(data invoice.Data) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.rendered++
	return []byte("%PDF-stub"), nil
}

type stubPasswords struct {
	err error
}

func (s *stubPasswords) VerifyPassword(ctx context.Context, userID uuid.UUID, password string) error {
	return s.err
}

type stubBaleStock struct {
	stock      map[uuid.UUID]int
	decrements map[uuid.UUID]int
}

func newStubBaleStock() *stubBaleStock {
	return &stubBaleStock{stock: map[uuid.UUID]int{}, decrements: map[uuid.UUID]int{}}
}

func (s *stubBaleStock) WithTx(tx *gorm.DB) bales.Repository { return s }

func (s *stubBaleStock) Create(ctx context.Context, bale *models.Bale) (*models.Bale, error) {
	return bale, nil
}

func (s *stubBaleStock) FindByID(ctx context.Context, id uuid.UUID) (*models.Bale, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBaleStock) FindByNumber(ctx context.Context, baleNumber string) (*models.Bale, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubBaleStock) List(ctx context.Context, params pagination.Params, filters bales.ListFilters) (*bales.BaleList, error) {
	return &bales.BaleList{}, nil
}

func (s *stubBaleStock) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubBaleStock) ReplaceItems(ctx context.Context, baleID uuid.UUID, items []models.BaleItem) error {
	return nil
}

func (s *stubBaleStock) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (s *stubBaleStock) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	have, ok := s.stock[id]
	if !ok || have < qty {
		return gorm.ErrRecordNotFound
	}
	s.stock[id] = have - qty
	s.decrements[id] += qty
	return nil
}

type serviceDeps struct {
	repo       *stubOrdersRepo
	baleStock  *stubBaleStock
	dispatcher *stubDispatcher
	invoices   *stubInvoices
	passwords  *stubPasswords
}

func newTestService(t *testing.T) (Service, *serviceDeps) {
	t.Helper()
	deps := &serviceDeps{
		repo:       newStubOrdersRepo(),
		baleStock:  newStubBaleStock(),
		dispatcher: &stubDispatcher{},
		invoices:   &stubInvoices{},
		passwords:  &stubPasswords{},
	}
	logg := logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})
	svc, err := NewService(deps.repo, deps.baleStock, stubTx{}, deps.dispatcher, deps.invoices, deps.passwords, "Thrift Bales", logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, deps
}

func eftOrderInput() CreateOrderInput {
	emailAddr := "naledi@example.co.za"
	phone := "0821234567"
	imageURL := "https://cdn.thriftbales.co.za/bales/winter.jpg"
	return CreateOrderInput{
		CustomerName:   "Naledi M",
		CustomerEmail:  &emailAddr,
		CustomerPhone:  &phone,
		DeliveryMethod: enums.DeliveryMethodCourier,
		PaymentMethod:  enums.PaymentMethodEFT,
		Items: []CreateOrderItemInput{
			{Name: "Winter bale", ImageURL: &imageURL, Quantity: 2, UnitPrice: decimal.NewFromInt(100)},
			{Name: "Summer bale", Quantity: 1, UnitPrice: decimal.NewFromInt(50)},
		},
	}
}

func TestCreateOrderEFT(t *testing.T) {
	svc, deps := newTestService(t)

	result, err := svc.CreateOrder(context.Background(), eftOrderInput())
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	order := result.Order

	if !order.Total.Equal(decimal.NewFromInt(250)) {
		t.Errorf("total = %s, want 250", order.Total)
	}
	if order.PaymentTrackingStatus != enums.PaymentTrackingAwaiting {
		t.Errorf("payment tracking = %s, want Awaiting payment", order.PaymentTrackingStatus)
	}
	if !order.AmountPaid.IsZero() {
		t.Errorf("amount paid = %s, want 0", order.AmountPaid)
	}
	if len(order.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(order.Items))
	}
	if !order.Items[0].Subtotal.Equal(decimal.NewFromInt(200)) || !order.Items[1].Subtotal.Equal(decimal.NewFromInt(50)) {
		t.Errorf("subtotals = %s, %s; want 200, 50", order.Items[0].Subtotal, order.Items[1].Subtotal)
	}
	if order.Items[0].ImageURL == nil || *order.Items[0].ImageURL != "https://cdn.thriftbales.co.za/bales/winter.jpg" {
		t.Errorf("item image url not snapshotted")
	}
	if len(order.History) != 0 {
		t.Errorf("history rows = %d, want 0 on creation", len(order.History))
	}
	if len(deps.dispatcher.customer) != 1 || deps.dispatcher.customer[0].event != enums.EventOrderCreated {
		t.Errorf("expected one order_created customer notification")
	}
	if deps.dispatcher.sales != 1 {
		t.Errorf("expected one sales alert")
	}
}

func TestCreateOrderDecrementsBaleStock(t *testing.T) {
	svc, deps := newTestService(t)
	baleID := uuid.New()
	deps.baleStock.stock[baleID] = 3

	input := eftOrderInput()
	input.Items[0].BaleID = &baleID

	if _, err := svc.CreateOrder(context.Background(), input); err != nil {
		t.Fatalf("create order: %v", err)
	}
	if deps.baleStock.decrements[baleID] != 2 {
		t.Errorf("decremented %d, want 2", deps.baleStock.decrements[baleID])
	}
	if deps.baleStock.stock[baleID] != 1 {
		t.Errorf("stock = %d, want 1", deps.baleStock.stock[baleID])
	}
}

func TestCreateOrderRejectsOversoldBale(t *testing.T) {
	svc, deps := newTestService(t)
	baleID := uuid.New()
	deps.baleStock.stock[baleID] = 1

	input := eftOrderInput()
	input.Items[0].BaleID = &baleID

	_, err := svc.CreateOrder(context.Background(), input)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("err = %v, want state conflict", err)
	}
}

func TestCreateOrderVerifiedCardIsFullyPaid(t *testing.T) {
	svc, _ := newTestService(t)

	input := eftOrderInput()
	input.PaymentMethod = enums.PaymentMethodCard
	ref := "PSK_REF_123"
	input.PaymentReference = &ref

	result, err := svc.CreateOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if result.Order.PaymentTrackingStatus != enums.PaymentTrackingFullyPaid {
		t.Errorf("payment tracking = %s, want Fully Paid", result.Order.PaymentTrackingStatus)
	}
	if !result.Order.AmountPaid.Equal(result.Order.Total) {
		t.Errorf("amount paid = %s, want total %s", result.Order.AmountPaid, result.Order.Total)
	}
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	svc, _ := newTestService(t)

	input := eftOrderInput()
	input.Items = nil

	_, err := svc.CreateOrder(context.Background(), input)
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Errorf("expected validation error for empty items, got %v", err)
	}
}

func TestCreateOrderItemFailureRollsBack(t *testing.T) {
	svc, deps := newTestService(t)
	deps.repo.createItemsErr = errors.New("insert failed")

	_, err := svc.CreateOrder(context.Background(), eftOrderInput())
	if err == nil {
		t.Fatalf("expected error")
	}
	if deps.dispatcher.sales != 0 || len(deps.dispatcher.customer) != 0 {
		t.Errorf("no notifications should fire when the write fails")
	}
}

func createTestOrder(t *testing.T, svc Service) *OrderDTO {
	t.Helper()
	result, err := svc.CreateOrder(context.Background(), eftOrderInput())
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return result.Order
}

func TestAdvanceToShippedAppendsSingleHistoryRow(t *testing.T) {
	svc, deps := newTestService(t)
	order := createTestOrder(t, svc)
	deps.dispatcher.customer = nil

	note := "Tracking: XYZ123"
	result, err := svc.AdvanceStatus(context.Background(), AdvanceStatusInput{
		OrderID: order.ID,
		Status:  enums.FulfillmentStatusShipped,
		Note:    &note,
	})
	if err != nil {
		t.Fatalf("advance status: %v", err)
	}

	if result.Order.FulfillmentStatus != enums.FulfillmentStatusShipped {
		t.Errorf("fulfillment = %s, want shipped", result.Order.FulfillmentStatus)
	}
	rows := deps.repo.history[order.ID]
	if len(rows) != 1 {
		t.Fatalf("history rows = %d, want exactly 1", len(rows))
	}
	if rows[0].EntryType != "shipped" || rows[0].Note == nil || *rows[0].Note != note {
		t.Errorf("history row = %+v, want shipped with note %q", rows[0], note)
	}
	if len(deps.dispatcher.customer) != 1 {
		t.Fatalf("notifications = %d, want exactly 1", len(deps.dispatcher.customer))
	}
	call := deps.dispatcher.customer[0]
	if call.event != enums.EventStatusShipped || call.opts.Note != note {
		t.Errorf("notification = %+v, want shipped event carrying the tracking note", call)
	}
}

func TestAdvanceToPackingWithMarkPaidAttachesInvoice(t *testing.T) {
	svc, deps := newTestService(t)
	order := createTestOrder(t, svc)
	deps.dispatcher.customer = nil

	result, err := svc.AdvanceStatus(context.Background(), AdvanceStatusInput{
		OrderID:  order.ID,
		Status:   enums.FulfillmentStatusPacking,
		MarkPaid: true,
	})
	if err != nil {
		t.Fatalf("advance status: %v", err)
	}

	if result.Order.PaymentTrackingStatus != enums.PaymentTrackingFullyPaid {
		t.Errorf("payment tracking = %s, want Fully Paid", result.Order.PaymentTrackingStatus)
	}
	if !result.Order.AmountPaid.Equal(result.Order.Total) {
		t.Errorf("amount paid = %s, want total", result.Order.AmountPaid)
	}
	if deps.invoices.rendered != 1 {
		t.Errorf("invoice renders = %d, want 1", deps.invoices.rendered)
	}
	if len(deps.dispatcher.customer) != 1 || deps.dispatcher.customer[0].opts.Attachment == nil {
		t.Errorf("packing notification should carry the invoice attachment")
	}
}

func TestAdvanceToPackingWithoutMarkPaidKeepsPayment(t *testing.T) {
	svc, deps := newTestService(t)
	order := createTestOrder(t, svc)
	deps.dispatcher.customer = nil

	result, err := svc.AdvanceStatus(context.Background(), AdvanceStatusInput{
		OrderID: order.ID,
		Status:  enums.FulfillmentStatusPacking,
	})
	if err != nil {
		t.Fatalf("advance status: %v", err)
	}
	if result.Order.PaymentTrackingStatus != enums.PaymentTrackingAwaiting {
		t.Errorf("payment tracking = %s, should remain Awaiting payment", result.Order.PaymentTrackingStatus)
	}
}

func TestAdvanceStatusInvoiceFailureIsNonFatal(t *testing.T) {
	svc, deps := newTestService(t)
	order := createTestOrder(t, svc)
	deps.invoices.err = errors.New("pdf engine broke")
	deps.dispatcher.customer = nil

	result, err := svc.AdvanceStatus(context.Background(), AdvanceStatusInput{
		OrderID: order.ID,
		Status:  enums.FulfillmentStatusPacking,
	})
	if err != nil {
		t.Fatalf("advance status should not fail on invoice errors: %v", err)
	}
	if result.Order.FulfillmentStatus != enums.FulfillmentStatusPacking {
		t.Errorf("fulfillment status = %s, want packing", result.Order.FulfillmentStatus)
	}
	if len(deps.dispatcher.customer) != 1 || deps.dispatcher.customer[0].opts.Attachment != nil {
		t.Errorf("packing notification should go out without an attachment")
	}
}

func TestUpdatePaymentFullyPaidSetsAmountToTotal(t *testing.T) {
	svc, _ := newTestService(t)
	order := createTestOrder(t, svc)

	result, err := svc.UpdatePayment(context.Background(), UpdatePaymentInput{
		OrderID: order.ID,
		Status:  enums.PaymentTrackingFullyPaid,
	})
	if err != nil {
		t.Fatalf("update payment: %v", err)
	}
	if !result.Order.AmountPaid.Equal(result.Order.Total) {
		t.Errorf("amount paid = %s, want total %s", result.Order.AmountPaid, result.Order.Total)
	}
}

func TestUpdatePaymentAwaitingResetsAndIsSilent(t *testing.T) {
	svc, deps := newTestService(t)
	order := createTestOrder(t, svc)

	amount := decimal.NewFromInt(100)
	if _, err := svc.UpdatePayment(context.Background(), UpdatePaymentInput{
		OrderID:    order.ID,
		Status:     enums.PaymentTrackingPartiallyPaid,
		AmountPaid: &amount,
	}); err != nil {
		t.Fatalf("partial payment: %v", err)
	}
	deps.dispatcher.customer = nil

	result, err := svc.UpdatePayment(context.Background(), UpdatePaymentInput{
		OrderID: order.ID,
		Status:  enums.PaymentTrackingAwaiting,
	})
	if err != nil {
		t.Fatalf("update payment: %v", err)
	}
	if !result.Order.AmountPaid.IsZero() {
		t.Errorf("amount paid = %s, want 0", result.Order.AmountPaid)
	}
	if len(deps.dispatcher.customer) != 0 {
		t.Errorf("awaiting reset must not notify")
	}
	if result.Notification != nil {
		t.Errorf("awaiting reset should report no notification summary")
	}
}

func TestUpdatePaymentPartialRequiresAmount(t *testing.T) {
	svc, _ := newTestService(t)
	order := createTestOrder(t, svc)

	_, err := svc.UpdatePayment(context.Background(), UpdatePaymentInput{
		OrderID: order.ID,
		Status:  enums.PaymentTrackingPartiallyPaid,
	})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Errorf("expected validation error without an amount, got %v", err)
	}
}

func TestUpdatePaymentResendIsNotIdempotent(t *testing.T) {
	svc, deps := newTestService(t)
	order := createTestOrder(t, svc)
	deps.dispatcher.customer = nil

	for i := 0; i < 2; i++ {
		if _, err := svc.UpdatePayment(context.Background(), UpdatePaymentInput{
			OrderID: order.ID,
			Status:  enums.PaymentTrackingFullyPaid,
		}); err != nil {
			t.Fatalf("update payment: %v", err)
		}
	}
	if len(deps.dispatcher.customer) != 2 {
		t.Errorf("notifications = %d, want 2 (resubmits resend)", len(deps.dispatcher.customer))
	}
}

func TestSendNoteAppendsNoteRowWithoutStatusChange(t *testing.T) {
	svc, deps := newTestService(t)
	order := createTestOrder(t, svc)
	deps.dispatcher.customer = nil

	result, err := svc.SendNote(context.Background(), SendNoteInput{
		OrderID: order.ID,
		Note:    "Your bale ships Monday",
	})
	if err != nil {
		t.Fatalf("send note: %v", err)
	}

	rows := deps.repo.history[order.ID]
	if len(rows) != 1 || rows[0].EntryType != enums.HistoryEntryNote {
		t.Fatalf("expected one note-tagged history row, got %+v", rows)
	}
	if result.Order.FulfillmentStatus != enums.FulfillmentStatusNewOrder {
		t.Errorf("fulfillment changed by a note")
	}
	if len(deps.dispatcher.customer) != 1 || deps.dispatcher.customer[0].event != enums.EventOrderNote {
		t.Errorf("expected one note notification")
	}
}

func TestSendNoteRejectsOverlongNote(t *testing.T) {
	svc, _ := newTestService(t)
	order := createTestOrder(t, svc)

	long := make([]byte, MaxNoteLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err := svc.SendNote(context.Background(), SendNoteInput{OrderID: order.ID, Note: string(long)})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Errorf("expected validation error for overlong note, got %v", err)
	}
}

func TestSendPaymentReminderOnPartialOrder(t *testing.T) {
	svc, deps := newTestService(t)
	order := createTestOrder(t, svc)

	amount := decimal.NewFromInt(100)
	if _, err := svc.UpdatePayment(context.Background(), UpdatePaymentInput{
		OrderID:    order.ID,
		Status:     enums.PaymentTrackingPartiallyPaid,
		AmountPaid: &amount,
	}); err != nil {
		t.Fatalf("partial payment: %v", err)
	}
	deps.dispatcher.customer = nil

	result, err := svc.SendPaymentReminder(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("send reminder: %v", err)
	}
	if !result.Order.AmountOwing.Equal(decimal.NewFromInt(150)) {
		t.Errorf("owing = %s, want 150", result.Order.AmountOwing)
	}
	if len(deps.dispatcher.customer) != 1 || deps.dispatcher.customer[0].event != enums.EventPaymentReminder {
		t.Errorf("expected one reminder notification")
	}
}

func TestSendPaymentReminderRefusesSettledOrder(t *testing.T) {
	svc, _ := newTestService(t)
	order := createTestOrder(t, svc)

	if _, err := svc.UpdatePayment(context.Background(), UpdatePaymentInput{
		OrderID: order.ID,
		Status:  enums.PaymentTrackingFullyPaid,
	}); err != nil {
		t.Fatalf("update payment: %v", err)
	}

	_, err := svc.SendPaymentReminder(context.Background(), order.ID)
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Errorf("expected state conflict for settled order, got %v", err)
	}
}

func TestDeleteOrderRequiresLiveCredential(t *testing.T) {
	svc, deps := newTestService(t)
	order := createTestOrder(t, svc)
	deps.passwords.err = errors.New("wrong password")

	err := svc.DeleteOrder(context.Background(), DeleteOrderInput{
		OrderID:  order.ID,
		AdminID:  uuid.New(),
		Password: "nope",
	})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeUnauthorized {
		t.Errorf("expected unauthorized, got %v", err)
	}
	if _, ok := deps.repo.orders[order.ID]; !ok {
		t.Errorf("order must survive a failed re-auth")
	}
}

func TestDeleteOrderCascades(t *testing.T) {
	svc, deps := newTestService(t)
	order := createTestOrder(t, svc)

	if err := svc.DeleteOrder(context.Background(), DeleteOrderInput{
		OrderID:  order.ID,
		AdminID:  uuid.New(),
		Password: "correct",
	}); err != nil {
		t.Fatalf("delete order: %v", err)
	}
	if _, ok := deps.repo.orders[order.ID]; ok {
		t.Errorf("order still present after delete")
	}
	if len(deps.repo.items[order.ID]) != 0 || len(deps.repo.history[order.ID]) != 0 {
		t.Errorf("satellite rows must cascade")
	}
}

func TestTrackByNumber(t *testing.T) {
	svc, _ := newTestService(t)
	order := createTestOrder(t, svc)

	tracking, err := svc.TrackByNumber(context.Background(), order.OrderNumber)
	if err != nil {
		t.Fatalf("track order: %v", err)
	}
	if tracking.OrderNumber != order.OrderNumber {
		t.Errorf("order number mismatch")
	}
	if len(tracking.Items) != 2 {
		t.Errorf("tracking items = %d, want 2", len(tracking.Items))
	}

	if _, err := svc.TrackByNumber(context.Background(), "TB-0000-999999"); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Errorf("expected not found for unknown number, got %v", err)
	}
}

func TestDeliveredWhileAwaitingPaymentIsReachable(t *testing.T) {
	svc, _ := newTestService(t)
	order := createTestOrder(t, svc)

	result, err := svc.AdvanceStatus(context.Background(), AdvanceStatusInput{
		OrderID: order.ID,
		Status:  enums.FulfillmentStatusDelivered,
	})
	if err != nil {
		t.Fatalf("advance status: %v", err)
	}
	if result.Order.FulfillmentStatus != enums.FulfillmentStatusDelivered {
		t.Errorf("fulfillment = %s, want delivered", result.Order.FulfillmentStatus)
	}
	if result.Order.PaymentTrackingStatus != enums.PaymentTrackingAwaiting {
		t.Errorf("delivered while awaiting payment must remain representable")
	}
}
