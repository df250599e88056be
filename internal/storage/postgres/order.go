package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/kart-storefront/internal/domain/order"
	"github.com/xenking/kart-storefront/pkg/jxdecimal"
)

const insertOrderSQL = `INSERT INTO orders
	(id, user_id, items, total_before_discount, discount_amount, total_after_discount, discount_code, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const selectOrderSQL = `SELECT
	id::text, user_id, items, total_before_discount, discount_amount, total_after_discount, discount_code, created_at
	FROM orders WHERE id = $1`

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository stores orders in the orders table.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository using pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts o. Items are stored as a JSONB array.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	var code *string
	if o.DiscountCode != "" {
		code = &o.DiscountCode
	}

	_, err := r.pool.Exec(ctx, insertOrderSQL,
		o.ID,
		o.UserID,
		encodeItems(o.Items),
		o.TotalBeforeDiscount,
		o.DiscountAmount,
		o.TotalAfterDiscount,
		code,
		o.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "insert order %s", o.ID)
	}
	return nil
}

// Get loads an archived order by id. It returns pgx.ErrNoRows when absent.
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	var (
		o     order.Order
		items []byte
		code  *string
	)
	err := r.pool.QueryRow(ctx, selectOrderSQL, id).Scan(
		&o.ID,
		&o.UserID,
		&items,
		&o.TotalBeforeDiscount,
		&o.DiscountAmount,
		&o.TotalAfterDiscount,
		&code,
		&o.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select order %s", id)
	}
	if code != nil {
		o.DiscountCode = *code
	}
	if o.Items, err = decodeItems(items); err != nil {
		return nil, errors.Wrapf(err, "decode items of order %s", id)
	}
	return &o, nil
}

func encodeItems(items []order.Item) []byte {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.Arr(func(e *jx.Encoder) {
		for _, item := range items {
			e.Obj(func(e *jx.Encoder) {
				e.Field("productId", func(e *jx.Encoder) { e.Str(item.ProductID) })
				e.Field("name", func(e *jx.Encoder) { e.Str(item.Name) })
				e.Field("price", func(e *jx.Encoder) { jxdecimal.Encode(e, item.Price) })
				e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
			})
		}
	})
	return append([]byte(nil), e.Bytes()...)
}

func decodeItems(data []byte) ([]order.Item, error) {
	var items []order.Item
	err := jx.DecodeBytes(data).Arr(func(d *jx.Decoder) error {
		var item order.Item
		if err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error
			switch key {
			case "productId":
				item.ProductID, err = d.Str()
			case "name":
				item.Name, err = d.Str()
			case "price":
				item.Price, err = jxdecimal.Decode(d)
			case "quantity":
				item.Quantity, err = d.Int()
			default:
				err = d.Skip()
			}
			return err
		}); err != nil {
			return err
		}
		items = append(items, item)
		return nil
	})
	return items, err
}
