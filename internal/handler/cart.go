package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/pkg/jxdecimal"
)

// maxQuantity bounds a requested quantity before it is converted to int.
var maxQuantity = decimal.NewFromInt(cart.MaxQuantity)

// GetCart returns the caller's cart.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFromContext(r.Context())
	c := h.carts.GetCart(id.UserID)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Field("cart", func(e *jx.Encoder) { encodeCart(e, c) })
	})
}

// AddCartItem validates the product and quantity, then adds the product to
// the caller's cart at the current catalog price.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := IdentityFromContext(ctx)

	data, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		productID string
		quantity  decimal.Decimal
	)
	err = decodeObject(data, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			productID, err = optString(d)
		case "quantity":
			if d.Next() == jx.Null {
				return d.Null()
			}
			quantity, err = jxdecimal.Decode(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if productID == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}
	if !quantity.IsPositive() || !quantity.IsInteger() || quantity.GreaterThan(maxQuantity) {
		writeError(w, http.StatusBadRequest, "quantity must be a positive number")
		return
	}

	p, err := h.products.GetByID(ctx, productID)
	if err != nil {
		var nf *product.NotFoundError
		if errors.As(err, &nf) {
			writeError(w, http.StatusNotFound, nf.Error())
			return
		}
		zctx.From(ctx).Error("Get product", zap.String("product_id", productID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	c, err := h.carts.AddItem(id.UserID, cart.Item{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  int(quantity.IntPart()),
	})
	if err != nil {
		var qe *cart.QuantityError
		if errors.As(err, &qe) {
			writeError(w, http.StatusBadRequest, qe.Error())
			return
		}
		zctx.From(ctx).Error("Add cart item", zap.String("product_id", productID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Field("cart", func(e *jx.Encoder) { encodeCart(e, c) })
	})
}
