package handler

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/discount"
	"github.com/xenking/kart-storefront/internal/domain/order"
)

// Checkout places an order from the caller's cart with an optional
// discount code.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "Checkout")
	defer span.End()

	id, _ := IdentityFromContext(ctx)
	lg := zctx.From(ctx)

	data, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var code string
	err = decodeObject(data, func(d *jx.Decoder, key string) error {
		if key == "discountCode" {
			var err error
			code, err = optString(d)
			return err
		}
		return d.Skip()
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	span.SetAttributes(attribute.Bool("discount_code", code != ""))

	o, err := h.checkout.Checkout(id.UserID, code)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())

		var (
			empty   *order.EmptyCartError
			invalid *discount.InvalidDiscountError
		)
		switch {
		case errors.As(err, &empty):
			writeError(w, http.StatusBadRequest, empty.Error())
		case errors.As(err, &invalid):
			h.metrics.recordCode(ctx, "rejected")
			lg.Info("Discount code rejected", zap.String("code", invalid.Code))
			writeError(w, http.StatusBadRequest, invalid.Error())
		default:
			lg.Error("Checkout", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	h.metrics.recordOrder(ctx, o)
	if o.DiscountCode != "" {
		h.metrics.recordCode(ctx, "used")
	}
	span.SetAttributes(attribute.String("order_id", o.ID))
	lg.Info("Order placed",
		zap.String("order_id", o.ID),
		zap.Int("items", o.Quantity()),
		zap.Stringer("total", o.TotalAfterDiscount),
		zap.Stringer("discount", o.DiscountAmount),
	)
	h.archive(ctx, o)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Field("order", func(e *jx.Encoder) { encodeOrder(e, o) })
	})
}

// archive persists the order when an archive is configured. The order is
// already committed in memory, so a failure is logged and not returned.
func (h *Handler) archive(ctx context.Context, o *order.Order) {
	if h.orders == nil {
		return
	}
	if err := h.orders.Create(ctx, o); err != nil {
		zctx.From(ctx).Error("Archive order", zap.String("order_id", o.ID), zap.Error(err))
	}
}
