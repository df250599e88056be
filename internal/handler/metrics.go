package handler

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/kart-storefront/internal/domain/order"
)

// checkoutMetrics mirrors the ledger counters as OpenTelemetry instruments.
type checkoutMetrics struct {
	orders   metric.Int64Counter
	items    metric.Int64Counter
	revenue  metric.Float64Counter
	discount metric.Float64Counter
	codes    metric.Int64Counter
}

func newCheckoutMetrics(m metric.Meter) (*checkoutMetrics, error) {
	var (
		cm  checkoutMetrics
		err error
	)
	if cm.orders, err = m.Int64Counter("storefront.orders",
		metric.WithDescription("Orders placed"),
		metric.WithUnit("{order}"),
	); err != nil {
		return nil, errors.Wrap(err, "orders")
	}
	if cm.items, err = m.Int64Counter("storefront.items_sold",
		metric.WithDescription("Units sold across all orders"),
		metric.WithUnit("{item}"),
	); err != nil {
		return nil, errors.Wrap(err, "items")
	}
	if cm.revenue, err = m.Float64Counter("storefront.revenue",
		metric.WithDescription("Order totals after discount"),
	); err != nil {
		return nil, errors.Wrap(err, "revenue")
	}
	if cm.discount, err = m.Float64Counter("storefront.discount",
		metric.WithDescription("Discount amounts granted"),
	); err != nil {
		return nil, errors.Wrap(err, "discount")
	}
	if cm.codes, err = m.Int64Counter("storefront.discount_codes",
		metric.WithDescription("Discount code lifecycle events"),
	); err != nil {
		return nil, errors.Wrap(err, "codes")
	}
	return &cm, nil
}

func (cm *checkoutMetrics) recordOrder(ctx context.Context, o *order.Order) {
	attrs := metric.WithAttributes(attribute.Bool("discounted", o.DiscountCode != ""))
	cm.orders.Add(ctx, 1, attrs)
	cm.items.Add(ctx, int64(o.Quantity()), attrs)
	cm.revenue.Add(ctx, o.TotalAfterDiscount.InexactFloat64(), attrs)
	cm.discount.Add(ctx, o.DiscountAmount.InexactFloat64(), attrs)
}

func (cm *checkoutMetrics) recordCode(ctx context.Context, event string) {
	cm.codes.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
}
