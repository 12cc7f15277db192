package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kagiso-dev/thriftbales-backend/pkg/db/models"
	"github.com/kagiso-dev/thriftbales-backend/pkg/enums"
)

// Rendered is a channel-ready message pair for one event.
type Rendered struct {
	Subject string
	HTML    string
	SMS     string
}

// Render produces the email and SMS bodies for an order event. The note
// argument carries free-text for note events and the shipping note for
// shipped transitions; it is ignored by events that have no note slot.
func Render(storeName string, order *models.Order, event enums.NotificationEvent, note string) Rendered {
	owing := order.AmountOwing()
	// Customer-supplied text goes into HTML bodies, including the internal
	// sales alert, so it is escaped before interpolation.
	name := html.EscapeString(order.CustomerName)
	htmlNote := html.EscapeString(note)

	switch event {
	case enums.EventOrderCreated:
		return Rendered{
			Subject: fmt.Sprintf("Order %s received", order.OrderNumber),
			HTML: wrapHTML(storeName, fmt.Sprintf(
				"<p>Hi %s,</p><p>Thank you for your order <strong>%s</strong> totalling <strong>%s</strong>.</p><p>Use the order number as your payment reference. We will let you know as soon as packing starts.</p>%s",
				name, order.OrderNumber, money(order.Total), itemsTable(order.Items))),
			SMS: fmt.Sprintf("%s: order %s received, total %s. Use the order number as payment reference.",
				storeName, order.OrderNumber, money(order.Total)),
		}

	case enums.EventSalesAlert:
		return Rendered{
			Subject: fmt.Sprintf("New order %s (%s)", order.OrderNumber, money(order.Total)),
			HTML: wrapHTML(storeName, fmt.Sprintf(
				"<p>New order <strong>%s</strong> from %s for <strong>%s</strong>, paid via %s.</p>%s",
				order.OrderNumber, name, money(order.Total), order.PaymentMethod, itemsTable(order.Items))),
			SMS: fmt.Sprintf("New order %s from %s for %s.", order.OrderNumber, name, money(order.Total)),
		}

	case enums.EventStatusPacking:
		return Rendered{
			Subject: fmt.Sprintf("Order %s is being packed", order.OrderNumber),
			HTML: wrapHTML(storeName, fmt.Sprintf(
				"<p>Hi %s,</p><p>Your order <strong>%s</strong> is being packed. Your invoice is attached.</p>",
				name, order.OrderNumber)),
			SMS: fmt.Sprintf("%s: order %s is being packed.", storeName, order.OrderNumber),
		}

	case enums.EventStatusShipped:
		body := fmt.Sprintf("<p>Hi %s,</p><p>Your order <strong>%s</strong> has shipped.</p>", name, order.OrderNumber)
		sms := fmt.Sprintf("%s: order %s has shipped.", storeName, order.OrderNumber)
		if note != "" {
			body += fmt.Sprintf("<p>%s</p>", htmlNote)
			sms = fmt.Sprintf("%s: order %s has shipped. %s", storeName, order.OrderNumber, note)
		}
		return Rendered{
			Subject: fmt.Sprintf("Order %s has shipped", order.OrderNumber),
			HTML:    wrapHTML(storeName, body),
			SMS:     sms,
		}

	case enums.EventStatusDelivered:
		return Rendered{
			Subject: fmt.Sprintf("Order %s delivered", order.OrderNumber),
			HTML: wrapHTML(storeName, fmt.Sprintf(
				"<p>Hi %s,</p><p>Your order <strong>%s</strong> has been delivered. Enjoy!</p>",
				name, order.OrderNumber)),
			SMS: fmt.Sprintf("%s: order %s delivered. Enjoy!", storeName, order.OrderNumber),
		}

	case enums.EventPaymentPartial:
		return Rendered{
			Subject: fmt.Sprintf("Payment received for order %s", order.OrderNumber),
			HTML: wrapHTML(storeName, fmt.Sprintf(
				"<p>Hi %s,</p><p>We received a payment on order <strong>%s</strong>. Paid so far: <strong>%s</strong>. Amount owing: <strong>%s</strong>. Fulfillment stage: %s.</p>",
				name, order.OrderNumber, money(order.AmountPaid), money(owing), order.FulfillmentStatus)),
			SMS: fmt.Sprintf("%s: payment received on order %s. Paid %s, owing %s.",
				storeName, order.OrderNumber, money(order.AmountPaid), money(owing)),
		}

	case enums.EventPaymentFull:
		return Rendered{
			Subject: fmt.Sprintf("Order %s fully paid", order.OrderNumber),
			HTML: wrapHTML(storeName, fmt.Sprintf(
				"<p>Hi %s,</p><p>Your order <strong>%s</strong> is fully paid (%s). Fulfillment stage: %s.</p>",
				name, order.OrderNumber, money(order.AmountPaid), order.FulfillmentStatus)),
			SMS: fmt.Sprintf("%s: order %s fully paid (%s). Thank you!", storeName, order.OrderNumber, money(order.AmountPaid)),
		}

	case enums.EventPaymentRefunded:
		return Rendered{
			Subject: fmt.Sprintf("Order %s refunded", order.OrderNumber),
			HTML: wrapHTML(storeName, fmt.Sprintf(
				"<p>Hi %s,</p><p>Your order <strong>%s</strong> has been refunded.</p>",
				name, order.OrderNumber)),
			SMS: fmt.Sprintf("%s: order %s has been refunded.", storeName, order.OrderNumber),
		}

	case enums.EventPaymentReminder:
		return Rendered{
			Subject: fmt.Sprintf("Payment reminder for order %s", order.OrderNumber),
			HTML: wrapHTML(storeName, fmt.Sprintf(
				"<p>Hi %s,</p><p>This is a friendly reminder that order <strong>%s</strong> has an outstanding balance of <strong>%s</strong>. Please use the order number as your payment reference.</p>",
				name, order.OrderNumber, money(owing))),
			SMS: fmt.Sprintf("%s: reminder, order %s has %s outstanding. Ref: %s.",
				storeName, order.OrderNumber, money(owing), order.OrderNumber),
		}

	case enums.EventOrderNote:
		return Rendered{
			Subject: fmt.Sprintf("Update on order %s", order.OrderNumber),
			HTML: wrapHTML(storeName, fmt.Sprintf(
				"<p>Hi %s,</p><p>Update on your order <strong>%s</strong>:</p><p>%s</p>",
				name, order.OrderNumber, htmlNote)),
			SMS: fmt.Sprintf("%s re order %s: %s", storeName, order.OrderNumber, note),
		}

	default:
		return Rendered{
			Subject: fmt.Sprintf("Update on order %s", order.OrderNumber),
			HTML: wrapHTML(storeName, fmt.Sprintf(
				"<p>Hi %s,</p><p>There is an update on your order <strong>%s</strong>.</p>",
				name, order.OrderNumber)),
			SMS: fmt.Sprintf("%s: update on order %s.", storeName, order.OrderNumber),
		}
	}
}

func wrapHTML(storeName, body string) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">`)
	b.WriteString(fmt.Sprintf(`<div style="background:#1a1a1a;color:#fff;padding:16px;text-align:center"><h2 style="margin:0">%s</h2></div>`, storeName))
	b.WriteString(fmt.Sprintf(`<div style="padding:16px">%s</div>`, body))
	b.WriteString(fmt.Sprintf(`<div style="padding:12px;color:#888;font-size:12px;text-align:center">%s &middot; Secondhand clothing bales</div>`, storeName))
	b.WriteString(`</div>`)
	return b.String()
}

func itemsTable(items []models.OrderItem) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<table style="width:100%;border-collapse:collapse"><tr><th align="left">Item</th><th align="center">Qty</th><th align="right">Subtotal</th></tr>`)
	for _, item := range items {
		b.WriteString(fmt.Sprintf(`<tr><td>%s</td><td align="center">%d</td><td align="right">%s</td></tr>`,
			html.EscapeString(item.Name), item.Quantity, money(item.Subtotal)))
	}
	b.WriteString(`</table>`)
	return b.String()
}

func money(v decimal.Decimal) string {
	return "R" + v.StringFixed(2)
}
