package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/discount"
	"github.com/xenking/kart-storefront/internal/domain/ledger"
	"github.com/xenking/kart-storefront/pkg/jxdecimal"
)

var errIneligible = &discount.IneligibleError{}

// GenerateDiscount issues a discount code when the Nth-order rule allows it.
func (h *Handler) GenerateDiscount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lg := zctx.From(ctx)

	if !h.discounts.IsEligible() {
		writeError(w, http.StatusBadRequest, errIneligible.Error())
		return
	}

	c, err := h.discounts.GenerateCode()
	if err != nil {
		var ie *discount.IneligibleError
		if errors.As(err, &ie) {
			lg.Info("Discount generation refused", zap.String("reason", ie.Detail()))
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		lg.Error("Generate discount code", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.metrics.recordCode(ctx, "generated")
	lg.Info("Discount code generated", zap.String("code", c.Code), zap.Int("window", c.Window))

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Field("discountCode", func(e *jx.Encoder) { encodeDiscountCode(e, *c) })
	})
}

// ExpireDiscount retires an active code without redeeming it.
func (h *Handler) ExpireDiscount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	c, err := h.discounts.Expire(r.PathValue("code"))
	if err != nil {
		var invalid *discount.InvalidDiscountError
		if errors.As(err, &invalid) {
			writeError(w, http.StatusBadRequest, invalid.Error())
			return
		}
		zctx.From(ctx).Error("Expire discount code", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.metrics.recordCode(ctx, "expired")
	zctx.From(ctx).Info("Discount code expired", zap.String("code", c.Code))

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Field("discountCode", func(e *jx.Encoder) { encodeDiscountCode(e, *c) })
	})
}

// Stats reports the ledger counters and the discount code history.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	s := h.ledger.Snapshot()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeStats(e, s)
	})
}

// encodeStats writes the fields of s into the enclosing object.
func encodeStats(e *jx.Encoder, s ledger.Snapshot) {
	e.Field("totalItemsSold", func(e *jx.Encoder) { e.Int(s.TotalItemsSold) })
	e.Field("totalPurchaseAmount", func(e *jx.Encoder) { jxdecimal.Encode(e, s.TotalPurchaseAmount) })
	e.Field("totalDiscountAmount", func(e *jx.Encoder) { jxdecimal.Encode(e, s.TotalDiscountAmount) })
	e.Field("totalOrdersPlaced", func(e *jx.Encoder) { e.Int(s.TotalOrdersPlaced) })
	e.Field("discountCodes", func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, c := range s.DiscountCodes {
				encodeDiscountCode(e, c)
			}
		})
	})
	e.Field("activeDiscountCode", func(e *jx.Encoder) { encodeOptString(e, s.ActiveDiscountCode) })
}
