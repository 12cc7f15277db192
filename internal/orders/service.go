package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kagiso-dev/thriftbales-backend/internal/bales"
	"github.com/kagiso-dev/thriftbales-backend/internal/notify"
	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
	"github.com/kagiso-dev/thriftbales-backend/pkg/email"
	"github.com/kagiso-dev/thriftbales-backend/pkg/enums"
	pkgerrors "github.com/kagiso-dev/thriftbales-backend/pkg/errors"
	"github.com/kagiso-dev/thriftbales-backend/pkg/invoice"
	"github.com/kagiso-dev/thriftbales-backend/pkg/logger"
	"github.com/kagiso-dev/thriftbales-backend/pkg/pagination"
)

// MaxNoteLength caps free-text notes so they fit a single SMS segment.
const MaxNoteLength = 140

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PasswordVerifier re-checks a live admin credential before destructive actions.
type PasswordVerifier interface {
	VerifyPassword(ctx context.Context, userID uuid.UUID, password string) error
}

// InvoiceRenderer produces the PDF attached to packing notifications.
type InvoiceRenderer interface {
	Render(data invoice.Data) ([]byte, error)
}

type pdfInvoiceRenderer struct{}

// NewInvoiceRenderer exposes the default PDF invoice implementation.
func NewInvoiceRenderer() InvoiceRenderer {
	return pdfInvoiceRenderer{}
}

func (pdfInvoiceRenderer) Render(data invoice.Data) ([]byte, error) {
	return invoice.Render(data)
}

// Service exposes the order lifecycle operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*MutationResult, error)
	AdvanceStatus(ctx context.Context, input AdvanceStatusInput) (*MutationResult, error)
	UpdatePayment(ctx context.Context, input UpdatePaymentInput) (*MutationResult, error)
	SendNote(ctx context.Context, input SendNoteInput) (*MutationResult, error)
	SendPaymentReminder(ctx context.Context, orderID uuid.UUID) (*MutationResult, error)
	DeleteOrder(ctx context.Context, input DeleteOrderInput) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, input ListOrdersInput) (*OrderListResult, error)
	TrackByNumber(ctx context.Context, orderNumber string) (*TrackingDTO, error)
}

// CreateOrderItemInput is one checkout line.
type CreateOrderItemInput struct {
	BaleID    *uuid.UUID
	Name      string
	ImageURL  *string
	Quantity  int
	UnitPrice decimal.Decimal
}

// CreateOrderInput holds the validated checkout payload.
type CreateOrderInput struct {
	CustomerName    string
	CustomerEmail   *string
	CustomerPhone   *string
	DeliveryMethod  enums.DeliveryMethod
	DeliveryAddress *string
	DeliveryNotes   *string
	DeliveryFee     decimal.Decimal
	PaymentMethod   enums.PaymentMethod
	// PaymentReference is set for card checkouts verified upstream; its
	// presence marks the order fully paid at creation.
	PaymentReference *string
	Items            []CreateOrderItemInput
}

// AdvanceStatusInput drives a fulfillment transition.
type AdvanceStatusInput struct {
	OrderID uuid.UUID
	Status  enums.FulfillmentStatus
	Note    *string
	// MarkPaid force-sets the order fully paid alongside a packing
	// transition. It is an explicit flag, never inferred.
	MarkPaid bool
	ActorID  *uuid.UUID
}

// UpdatePaymentInput drives a payment-tracking change.
type UpdatePaymentInput struct {
	OrderID      uuid.UUID
	Status       enums.PaymentTrackingStatus
	AmountPaid   *decimal.Decimal
	RefundReason *string
}

// SendNoteInput appends a free-text note to an order.
type SendNoteInput struct {
	OrderID uuid.UUID
	Note    string
	ActorID *uuid.UUID
}

// DeleteOrderInput gates order deletion behind a live credential re-check.
type DeleteOrderInput struct {
	OrderID  uuid.UUID
	AdminID  uuid.UUID
	Password string
}

// ListOrdersInput narrows and paginates admin order listings.
type ListOrdersInput struct {
	Limit                 int
	Cursor                string
	FulfillmentStatus     *enums.FulfillmentStatus
	PaymentTrackingStatus *enums.PaymentTrackingStatus
	Search                string
}

type service struct {
	repo       Repository
	baleStock  bales.Repository
	tx         txRunner
	dispatcher notify.Dispatcher
	invoices   InvoiceRenderer
	passwords  PasswordVerifier
	storeName  string
	logg       *logger.Logger
}

// NewService builds the order lifecycle service with the required deps.
func NewService(repo Repository, baleStock bales.Repository, tx txRunner, dispatcher notify.Dispatcher, invoices InvoiceRenderer, passwords PasswordVerifier, storeName string, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if baleStock == nil {
		return nil, fmt.Errorf("bales repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("notification dispatcher required")
	}
	if invoices == nil {
		return nil, fmt.Errorf("invoice renderer required")
	}
	if passwords == nil {
		return nil, fmt.Errorf("password verifier required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:       repo,
		baleStock:  baleStock,
		tx:         tx,
		dispatcher: dispatcher,
		invoices:   invoices,
		passwords:  passwords,
		storeName:  storeName,
		logg:       logg,
	}, nil
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*MutationResult, error) {
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if !input.DeliveryMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery method")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	subtotal := decimal.Zero
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if item.UnitPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item price cannot be negative")
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if input.DeliveryFee.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery fee cannot be negative")
	}

	total := subtotal.Add(input.DeliveryFee)
	order := &models.Order{
		CustomerName:          strings.TrimSpace(input.CustomerName),
		CustomerEmail:         input.CustomerEmail,
		CustomerPhone:         input.CustomerPhone,
		DeliveryMethod:        input.DeliveryMethod,
		DeliveryAddress:       input.DeliveryAddress,
		DeliveryNotes:         input.DeliveryNotes,
		DeliveryFee:           input.DeliveryFee,
		PaymentMethod:         input.PaymentMethod,
		PaymentReference:      input.PaymentReference,
		FulfillmentStatus:     enums.FulfillmentStatusNewOrder,
		PaymentTrackingStatus: enums.PaymentTrackingAwaiting,
		Subtotal:              subtotal,
		Total:                 total,
		AmountPaid:            decimal.Zero,
	}

	// Card payments are verified upstream before the order is created, so
	// they land already settled.
	if input.PaymentMethod == enums.PaymentMethodCard && input.PaymentReference != nil {
		order.PaymentTrackingStatus = enums.PaymentTrackingFullyPaid
		order.AmountPaid = total
	}

	// Order and items commit or roll back together.
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			items = append(items, models.OrderItem{
				OrderID:   created.ID,
				BaleID:    item.BaleID,
				Name:      strings.TrimSpace(item.Name),
				ImageURL:  item.ImageURL,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Subtotal:  item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))),
			})
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}
		// Stock comes off inside the same transaction so an oversold bale
		// rolls the whole order back.
		baleStock := s.baleStock.WithTx(tx)
		for _, item := range items {
			if item.BaleID == nil {
				continue
			}
			if err := baleStock.DecrementStock(ctx, *item.BaleID, item.Quantity); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeStateConflict, "bale is out of stock")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement bale stock")
			}
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)
	s.logg.Info(ctx, "order created")

	summary := s.dispatcher.NotifyCustomer(ctx, order, enums.EventOrderCreated, notify.Options{})
	s.dispatcher.NotifySales(ctx, order)

	return &MutationResult{Order: toOrderDTO(order, nil), Notification: &summary}, nil
}

func (s *service) AdvanceStatus(ctx context.Context, input AdvanceStatusInput) (*MutationResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fulfillment status")
	}
	if input.Note != nil && len(*input.Note) > MaxNoteLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("note exceeds %d characters", MaxNoteLength))
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loaded, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		updates := map[string]any{"fulfillment_status": input.Status}
		if input.Status == enums.FulfillmentStatusPacking && input.MarkPaid {
			updates["payment_tracking_status"] = enums.PaymentTrackingFullyPaid
			updates["amount_paid"] = loaded.Total
		}
		if err := repo.Update(ctx, loaded.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update fulfillment status")
		}

		entry := &models.OrderStatusHistory{
			OrderID:   loaded.ID,
			EntryType: input.Status.String(),
			Note:      input.Note,
			CreatedBy: input.ActorID,
		}
		if err := repo.AppendHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status history")
		}

		loaded.FulfillmentStatus = input.Status
		if input.Status == enums.FulfillmentStatusPacking && input.MarkPaid {
			loaded.PaymentTrackingStatus = enums.PaymentTrackingFullyPaid
			loaded.AmountPaid = loaded.Total
		}
		order = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)
	s.logg.Info(ctx, fmt.Sprintf("fulfillment status set to %s", input.Status))

	opts := notify.Options{}
	if input.Note != nil {
		opts.Note = *input.Note
	}
	if input.Status == enums.FulfillmentStatusPacking {
		if att, err := s.packingInvoice(order); err != nil {
			s.logg.Error(ctx, "invoice render failed, packing email sent without attachment", err)
		} else {
			opts.Attachment = att
		}
	}

	summary := s.dispatcher.NotifyCustomer(ctx, order, statusEvent(input.Status), opts)

	history, err := s.repo.FindHistory(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load status history")
	}
	return &MutationResult{Order: toOrderDTO(order, history), Notification: &summary}, nil
}

func (s *service) UpdatePayment(ctx context.Context, input UpdatePaymentInput) (*MutationResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment tracking status")
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	updates := map[string]any{"payment_tracking_status": input.Status}
	switch input.Status {
	case enums.PaymentTrackingFullyPaid:
		updates["amount_paid"] = order.Total
		order.AmountPaid = order.Total

	case enums.PaymentTrackingPartiallyPaid:
		if input.AmountPaid == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount paid required for a partial payment")
		}
		if input.AmountPaid.IsNegative() || input.AmountPaid.GreaterThan(order.Total) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount paid must be between zero and the order total")
		}
		updates["amount_paid"] = *input.AmountPaid
		order.AmountPaid = *input.AmountPaid

	case enums.PaymentTrackingAwaiting:
		updates["amount_paid"] = decimal.Zero
		order.AmountPaid = decimal.Zero

	case enums.PaymentTrackingRefunded:
		if input.RefundReason != nil {
			updates["refund_reason"] = *input.RefundReason
			order.RefundReason = input.RefundReason
		}
	}

	if err := s.repo.Update(ctx, order.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment tracking")
	}
	order.PaymentTrackingStatus = input.Status

	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)
	s.logg.Info(ctx, fmt.Sprintf("payment tracking set to %s", input.Status))

	// Resetting to awaiting is silent; every other transition notifies,
	// including repeats of the current status.
	var summary *notify.DispatchSummary
	if event, ok := paymentEvent(input.Status); ok {
		result := s.dispatcher.NotifyCustomer(ctx, order, event, notify.Options{})
		summary = &result
	}

	return &MutationResult{Order: toOrderDTO(order, nil), Notification: summary}, nil
}

func (s *service) SendNote(ctx context.Context, input SendNoteInput) (*MutationResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	note := strings.TrimSpace(input.Note)
	if note == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "note required")
	}
	if len(note) > MaxNoteLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("note exceeds %d characters", MaxNoteLength))
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	entry := &models.OrderStatusHistory{
		OrderID:   order.ID,
		EntryType: enums.HistoryEntryNote,
		Note:      &note,
		CreatedBy: input.ActorID,
	}
	if err := s.repo.AppendHistory(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append note")
	}

	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)
	summary := s.dispatcher.NotifyCustomer(ctx, order, enums.EventOrderNote, notify.Options{Note: note})

	history, err := s.repo.FindHistory(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load status history")
	}
	return &MutationResult{Order: toOrderDTO(order, history), Notification: &summary}, nil
}

func (s *service) SendPaymentReminder(ctx context.Context, orderID uuid.UUID) (*MutationResult, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.PaymentTrackingStatus == enums.PaymentTrackingFullyPaid ||
		order.PaymentTrackingStatus == enums.PaymentTrackingRefunded {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has no outstanding balance")
	}

	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)
	summary := s.dispatcher.NotifyCustomer(ctx, order, enums.EventPaymentReminder, notify.Options{})

	return &MutationResult{Order: toOrderDTO(order, nil), Notification: &summary}, nil
}

func (s *service) DeleteOrder(ctx context.Context, input DeleteOrderInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.AdminID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}
	if err := s.passwords.VerifyPassword(ctx, input.AdminID, input.Password); err != nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "incorrect password")
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return nil
	})
	if err != nil {
		return err
	}

	ctx = s.logg.WithOrderNumber(ctx, order.OrderNumber)
	s.logg.Info(ctx, "order deleted")
	return nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	history, err := s.repo.FindHistory(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load status history")
	}
	return toOrderDTO(order, history), nil
}

func (s *service) ListOrders(ctx context.Context, input ListOrdersInput) (*OrderListResult, error) {
	list, err := s.repo.List(ctx, pagination.Params{Limit: input.Limit, Cursor: input.Cursor}, ListFilters{
		FulfillmentStatus:     input.FulfillmentStatus,
		PaymentTrackingStatus: input.PaymentTrackingStatus,
		Search:                strings.TrimSpace(input.Search),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	result := &OrderListResult{
		Orders:     make([]OrderDTO, 0, len(list.Orders)),
		NextCursor: list.NextCursor,
	}
	for i := range list.Orders {
		result.Orders = append(result.Orders, *toOrderDTO(&list.Orders[i], nil))
	}
	return result, nil
}

func (s *service) TrackByNumber(ctx context.Context, orderNumber string) (*TrackingDTO, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number required")
	}

	order, err := s.repo.FindByNumber(ctx, orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	history, err := s.repo.FindHistory(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load status history")
	}
	return toTrackingDTO(order, history), nil
}

func (s *service) packingInvoice(order *models.Order) (*email.Attachment, error) {
	data := invoice.Data{
		StoreName:    s.storeName,
		OrderNumber:  order.OrderNumber,
		IssuedAt:     time.Now(),
		CustomerName: order.CustomerName,
		DeliveryFee:  order.DeliveryFee,
		Discount:     order.Discount,
		AmountPaid:   order.AmountPaid,
	}
	if order.CustomerEmail != nil {
		data.CustomerEmail = *order.CustomerEmail
	}
	if order.CustomerPhone != nil {
		data.CustomerPhone = *order.CustomerPhone
	}
	if order.DeliveryNotes != nil {
		data.DeliveryNotes = *order.DeliveryNotes
	}
	for _, item := range order.Items {
		data.Lines = append(data.Lines, invoice.Line{
			Description: item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	pdf, err := s.invoices.Render(data)
	if err != nil {
		return nil, err
	}
	return &email.Attachment{
		Filename: fmt.Sprintf("invoice-%s.pdf", order.OrderNumber),
		Content:  pdf,
	}, nil
}

func statusEvent(status enums.FulfillmentStatus) enums.NotificationEvent {
	switch status {
	case enums.FulfillmentStatusPacking:
		return enums.EventStatusPacking
	case enums.FulfillmentStatusShipped:
		return enums.EventStatusShipped
	case enums.FulfillmentStatusDelivered:
		return enums.EventStatusDelivered
	default:
		return enums.EventOrderCreated
	}
}

func paymentEvent(status enums.PaymentTrackingStatus) (enums.NotificationEvent, bool) {
	switch status {
	case enums.PaymentTrackingPartiallyPaid:
		return enums.EventPaymentPartial, true
	case enums.PaymentTrackingFullyPaid:
		return enums.EventPaymentFull, true
	case enums.PaymentTrackingRefunded:
		return enums.EventPaymentRefunded, true
	default:
		return "", false
	}
}
