// Command catalog-pack merges JSON product catalogs into one seed file for
// the storefront's catalog-file setting. Later inputs override products with
// the same id.
//
//	catalog-pack -out catalog.json.gz base.json seasonal.json
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/go-faster/errors"

	"github.com/xenking/kart-storefront/internal/catalog"
)

func main() {
	var out string
	flag.StringVar(&out, "out", "catalog.json.gz", "output file; gzip-compressed when it ends in .gz")
	flag.Parse()

	if flag.NArg() == 0 {
		slog.Error("at least one input catalog is required")
		os.Exit(2)
	}

	if err := run(context.Background(), out, flag.Args()); err != nil {
		slog.Error("catalog pack failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, out string, inputs []string) error {
	merged := catalog.NewMemory()
	for _, in := range inputs {
		products, err := catalog.LoadFile(in)
		if err != nil {
			return errors.Wrapf(err, "load %s", in)
		}
		for _, p := range products {
			if err := merged.Add(ctx, p); err != nil {
				return errors.Wrapf(err, "add %s", p.ID)
			}
		}
		slog.Info("catalog loaded", slog.String("file", in), slog.Int("products", len(products)))
	}

	products, err := merged.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list products")
	}
	if err := catalog.WriteFile(out, products); err != nil {
		return errors.Wrapf(err, "write %s", out)
	}

	slog.Info("catalog written", slog.String("file", out), slog.Int("products", len(products)))
	return nil
}
