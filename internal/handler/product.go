package handler

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/pkg/jxdecimal"
)

// ListProducts returns every product in the catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		zctx.From(r.Context()).Error("List products", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Field("products", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, p := range products {
					encodeProduct(e, p)
				}
			})
		})
	})
}

// AddProduct inserts or replaces a catalog entry.
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var (
		p        product.Product
		hasPrice bool
	)
	err = decodeObject(data, func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			p.ID, err = optString(d)
		case "name":
			p.Name, err = optString(d)
		case "price":
			if d.Next() == jx.Null {
				return d.Null()
			}
			p.Price, err = jxdecimal.Decode(d)
			hasPrice = true
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if p.ID == "" || p.Name == "" || !hasPrice {
		writeError(w, http.StatusBadRequest, "productId, name and price are required")
		return
	}
	if p.Price.LessThan(decimal.Zero) {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return
	}

	if err := h.products.Add(r.Context(), p); err != nil {
		zctx.From(r.Context()).Error("Add product", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	zctx.From(r.Context()).Info("Product added", zap.String("product_id", p.ID))

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Field("message", func(e *jx.Encoder) { e.Str("Product added successfully") })
	})
}
