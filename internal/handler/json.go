package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/ledger"
	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/pkg/jxdecimal"
)

const maxBodyBytes = 1 << 20

// readBody returns the request body, or nil when it is empty.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	return data, nil
}

// decodeObject decodes a JSON object body field by field. An empty body is
// treated as an empty object.
func decodeObject(data []byte, field func(d *jx.Decoder, key string) error) error {
	if len(data) == 0 {
		return nil
	}
	d := jx.DecodeBytes(data)
	if d.Next() == jx.Null {
		return d.Null()
	}
	return d.Obj(field)
}

// optString reads a string that may be null.
func optString(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

func writeJSON(w http.ResponseWriter, status int, body func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	e.Obj(body)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Field("error", func(e *jx.Encoder) { e.Str(msg) })
	})
}

func encodeTime(e *jx.Encoder, t time.Time) {
	e.Str(t.UTC().Format(time.RFC3339Nano))
}

func encodeOptString(e *jx.Encoder, s string) {
	if s == "" {
		e.Null()
		return
	}
	e.Str(s)
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("productId", func(e *jx.Encoder) { e.Str(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("price", func(e *jx.Encoder) { jxdecimal.Encode(e, p.Price) })
	})
}

func encodeCart(e *jx.Encoder, c *cart.Cart) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("userId", func(e *jx.Encoder) { e.Str(c.UserID) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range c.Items {
					encodeLine(e, item.ProductID, item.Name, item.Price, item.Quantity)
				}
			})
		})
	})
}

func encodeLine(e *jx.Encoder, productID, name string, price decimal.Decimal, quantity int) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("productId", func(e *jx.Encoder) { e.Str(productID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(name) })
		e.Field("price", func(e *jx.Encoder) { jxdecimal.Encode(e, price) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(quantity) })
	})
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(o.ID) })
		e.Field("userId", func(e *jx.Encoder) { e.Str(o.UserID) })
		e.Field("items", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, item := range o.Items {
					encodeLine(e, item.ProductID, item.Name, item.Price, item.Quantity)
				}
			})
		})
		e.Field("totalBeforeDiscount", func(e *jx.Encoder) { jxdecimal.Encode(e, o.TotalBeforeDiscount) })
		e.Field("discountAmount", func(e *jx.Encoder) { jxdecimal.Encode(e, o.DiscountAmount) })
		e.Field("totalAfterDiscount", func(e *jx.Encoder) { jxdecimal.Encode(e, o.TotalAfterDiscount) })
		e.Field("appliedDiscountCode", func(e *jx.Encoder) { encodeOptString(e, o.DiscountCode) })
		e.Field("createdAt", func(e *jx.Encoder) { encodeTime(e, o.CreatedAt) })
	})
}

func encodeDiscountCode(e *jx.Encoder, c ledger.DiscountCode) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Str(c.Code) })
		e.Field("used", func(e *jx.Encoder) { e.Bool(c.Used) })
		e.Field("expired", func(e *jx.Encoder) { e.Bool(c.Expired) })
		e.Field("createdAt", func(e *jx.Encoder) { encodeTime(e, c.CreatedAt) })
		e.Field("rate", func(e *jx.Encoder) { jxdecimal.Encode(e, c.Rate) })
	})
}
