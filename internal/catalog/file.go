package catalog

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"

	"github.com/xenking/kart-storefront/internal/domain/product"
	"github.com/xenking/kart-storefront/pkg/jxdecimal"
)

const readBufSize = 64 * 1024

// LoadFile reads a JSON array of products from path. Files ending in ".gz"
// are decompressed first.
//
//	[{"productId": "p1", "name": "Mug", "price": 12.5}]
func LoadFile(path string) ([]product.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = bufio.NewReaderSize(f, readBufSize)
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	return Decode(r)
}

// Decode parses a JSON array of products.
func Decode(r io.Reader) ([]product.Product, error) {
	var products []product.Product
	d := jx.Decode(r, readBufSize)
	err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return errors.Wrapf(err, "product %d", len(products))
		}
		products = append(products, p)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	return products, nil
}

func decodeProduct(d *jx.Decoder) (product.Product, error) {
	var (
		p        product.Product
		hasPrice bool
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId":
			p.ID, err = d.Str()
		case "name":
			p.Name, err = d.Str()
		case "price":
			p.Price, err = jxdecimal.Decode(d)
			hasPrice = true
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return product.Product{}, err
	}

	switch {
	case p.ID == "":
		return product.Product{}, errors.New("productId is required")
	case p.Name == "":
		return product.Product{}, errors.Errorf("name is required for %s", p.ID)
	case !hasPrice || p.Price.IsNegative():
		return product.Product{}, errors.Errorf("non-negative price is required for %s", p.ID)
	}
	return p, nil
}

// WriteFile writes products to path as a JSON array, gzip-compressed when the
// path ends in ".gz".
func WriteFile(path string, products []product.Product) (rerr error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create catalog")
	}
	defer func() {
		if err := f.Close(); err != nil && rerr == nil {
			rerr = errors.Wrap(err, "close catalog")
		}
	}()

	bw := bufio.NewWriterSize(f, readBufSize)
	var w io.Writer = bw
	var gz *pgzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = pgzip.NewWriter(bw)
		w = gz
	}

	if err := Encode(w, products); err != nil {
		return err
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return errors.Wrap(err, "close gzip")
		}
	}
	return errors.Wrap(bw.Flush(), "flush catalog")
}

// Encode writes products as a JSON array in the format read by Decode.
func Encode(w io.Writer, products []product.Product) error {
	e := jx.NewStreamingEncoder(w, readBufSize)
	e.Arr(func(e *jx.Encoder) {
		for _, p := range products {
			e.Obj(func(e *jx.Encoder) {
				e.Field("productId", func(e *jx.Encoder) { e.Str(p.ID) })
				e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
				e.Field("price", func(e *jx.Encoder) { jxdecimal.Encode(e, p.Price) })
			})
		}
	})
	return errors.Wrap(e.Close(), "encode catalog")
}
