package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/kart-storefront/internal/catalog"
)

func TestRun(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.json")
	extra := filepath.Join(dir, "extra.json")
	require.NoError(t, os.WriteFile(base, []byte(`[
		{"productId":"p1","name":"Mug","price":10},
		{"productId":"p2","name":"Tee","price":20}
	]`), 0o600))
	require.NoError(t, os.WriteFile(extra, []byte(`[
		{"productId":"p2","name":"Tee v2","price":"22.5"},
		{"productId":"p3","name":"Cap","price":5}
	]`), 0o600))

	out := filepath.Join(dir, "catalog.json.gz")
	require.NoError(t, run(context.Background(), out, []string{base, extra}))

	products, err := catalog.LoadFile(out)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "Tee v2", products[1].Name)
	assert.Equal(t, "22.5", products[1].Price.String())
	assert.Equal(t, "p3", products[2].ID)
}

func TestRun_InvalidInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(in, []byte(`[{"productId":"p1","price":1}]`), 0o600))

	err := run(context.Background(), filepath.Join(dir, "out.json"), []string{in})
	assert.ErrorContains(t, err, "bad.json")
}
