package postgres

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-storefront/internal/domain/order"
)

func TestItemsJSON(t *testing.T) {
	items := []order.Item{
		{ProductID: "p1", Name: "Widget", Price: decimal.RequireFromString("12.50"), Quantity: 2},
		{ProductID: "p2", Name: `Quote "and" slash \`, Price: decimal.NewFromInt(3), Quantity: 1},
	}

	data := encodeItems(items)
	assert.JSONEq(t, `[
		{"productId":"p1","name":"Widget","price":12.5,"quantity":2},
		{"productId":"p2","name":"Quote \"and\" slash \\","price":3,"quantity":1}
	]`, string(data))

	got, err := decodeItems(data)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, items[0].Price.Equal(got[0].Price))
	assert.Equal(t, items[1].Name, got[1].Name)
	assert.Equal(t, 2, got[0].Quantity)
}

func TestDecodeItems_Reordered(t *testing.T) {
	got, err := decodeItems([]byte(`[{"quantity": 4, "price": "1.25", "extra": true, "productId": "p9", "name": "X"}]`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p9", got[0].ProductID)
	assert.True(t, decimal.RequireFromString("1.25").Equal(got[0].Price))
	assert.Equal(t, 4, got[0].Quantity)
}

func TestDecodeItems_Invalid(t *testing.T) {
	_, err := decodeItems([]byte(`{"productId":"p1"}`))
	assert.Error(t, err)
}
