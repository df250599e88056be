// Package handler exposes the storefront over HTTP. It resolves the caller
// identity from request headers, validates request bodies and maps domain
// errors to status codes; all business rules live in the domain packages.
package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/kart-storefront/internal/domain/cart"
	"github.com/xenking/kart-storefront/internal/domain/discount"
	"github.com/xenking/kart-storefront/internal/domain/ledger"
	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/internal/domain/product"
)

const instrumentationName = "github.com/xenking/kart-storefront/internal/handler"

// HandlerConfig holds non-domain dependencies for the Handler.
type HandlerConfig struct {
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// Handler serves the storefront API.
type Handler struct {
	products  product.Repository
	carts     *cart.Manager
	checkout  *order.Engine
	discounts *discount.Manager
	ledger    *ledger.Ledger
	// orders archives placed orders; nil disables archiving.
	orders order.Repository

	tracer  trace.Tracer
	metrics *checkoutMetrics
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	cfg HandlerConfig,
	products product.Repository,
	carts *cart.Manager,
	checkout *order.Engine,
	discounts *discount.Manager,
	l *ledger.Ledger,
	orders order.Repository,
) (*Handler, error) {
	m, err := newCheckoutMetrics(cfg.MeterProvider.Meter(instrumentationName))
	if err != nil {
		return nil, errors.Wrap(err, "create metrics")
	}
	return &Handler{
		products:  products,
		carts:     carts,
		checkout:  checkout,
		discounts: discounts,
		ledger:    l,
		orders:    orders,
		tracer:    cfg.TracerProvider.Tracer(instrumentationName),
		metrics:   m,
	}, nil
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("GET /api/products", h.identified(h.ListProducts))
	mux.Handle("POST /api/products", h.admin(h.AddProduct))

	mux.Handle("GET /api/cart", h.identified(h.GetCart))
	mux.Handle("POST /api/cart/items", h.identified(h.AddCartItem))
	mux.Handle("POST /api/checkout", h.identified(h.Checkout))

	mux.Handle("POST /api/admin/discounts/generate", h.admin(h.GenerateDiscount))
	mux.Handle("POST /api/admin/discounts/{code}/expire", h.admin(h.ExpireDiscount))
	mux.Handle("GET /api/admin/stats", h.identified(h.Stats))
}
