package interfaces

import (
	"context"

	"crypto-signals/src/models"
)

// -----------------------------------------------------------------------------
// ITickProvider is the single capability every raw market source exposes.
// New providers plug in behind this interface; aggregation logic never
// changes when one is added.
// -----------------------------------------------------------------------------

type ITickProvider interface {

	// Name returns the unique identifier of the provider
	Name() string

	// -----------------------------------------------------------------------------

	// FetchTick retrieves one current observation for the symbol. Must
	// respect ctx cancellation; the adapter bounds every call with a
	// timeout.
	FetchTick(ctx context.Context, symbol string) (models.MTick, error)
}
