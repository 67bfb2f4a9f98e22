package interfaces

import "crypto-signals/src/models"

// -----------------------------------------------------------------------------
// IBroadcaster fans published snapshots out to streaming subscribers.
// -----------------------------------------------------------------------------

type IBroadcaster interface {

	// Publish pushes one snapshot to every open subscriber. Delivery
	// failures are isolated per subscriber and never propagate back.
	Publish(snap models.MSnapshot)

	// -----------------------------------------------------------------------------

	// MarkStale flags the retained latest snapshot for a symbol without
	// publishing anything new.
	MarkStale(symbol string)

	// -----------------------------------------------------------------------------

	// Start the server
	Start() error

	// -----------------------------------------------------------------------------

	// Stop the server gracefully
	Stop() error
}

// -----------------------------------------------------------------------------
// INetworkManager defines the contract for HTTP requests with retry logic.
// -----------------------------------------------------------------------------

type INetworkManager interface {

	// Get performs a GET request to the specified URL with parameters.
	// Returns the response body as bytes or an error.
	Get(url string, params map[string]string) ([]byte, error)
}
