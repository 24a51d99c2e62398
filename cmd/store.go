package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/taxiblocks/internal/config"
	"github.com/sells-group/taxiblocks/internal/store"
)

// initStore opens the configured store. It returns nil when no store is configured.
func initStore(ctx context.Context, c *config.Config) (store.Store, error) {
	st, err := store.Open(ctx, store.Config{Driver: c.Store.Driver, DatabaseURL: c.Store.DatabaseURL})
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	return st, nil
}
