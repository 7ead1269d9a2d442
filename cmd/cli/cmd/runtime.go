package cmd

import (
	"context"
	"io"
	"os"

	"github.com/goccy/go-json"

	"cleanquote/adapters/seed"
	"cleanquote/adapters/storage"
	"cleanquote/core/pricing"
	"cleanquote/core/types"
	"cleanquote/internal/config"
	"cleanquote/internal/errors"
)

// openStore opens the configured persister and restores the pricing store
// from it, seeding from the HCL file when nothing was persisted yet.
// The caller closes the returned persister.
func openStore(ctx context.Context, c *config.Config, opts ...pricing.Option) (*pricing.Store, storage.Store, error) {
	persister, err := storage.StoreFactory(ctx, c.Storage)
	if err != nil {
		return nil, nil, err
	}

	sd, err := seed.LoadFile(c.Seed.Path)
	if err != nil {
		persister.Close()
		return nil, nil, err
	}

	store, err := pricing.Open(ctx, persister, sd.Settings, sd.Cities, sd.Source, opts...)
	if err != nil {
		persister.Close()
		return nil, nil, err
	}
	return store, persister, nil
}

// readRequest decodes a quote request from path, or from stdin when path is
// empty or "-"
func readRequest(path string, stdin io.Reader) (types.QuoteRequest, error) {
	var req types.QuoteRequest

	r := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, err
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, errors.Wrap(errors.TypeInvalidInput, "invalid quote request", err)
	}
	return req, nil
}
