package providers

import (
	"context"
	"errors"
	"testing"

	"crypto-signals/src/logger"
	"crypto-signals/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

type stubNetwork struct {
	body    []byte
	err     error
	lastURL string
}

func (n *stubNetwork) Get(url string, params map[string]string) ([]byte, error) {
	n.lastURL = url
	return n.body, n.err
}

func newCoinbase(net *stubNetwork) *CoinbaseProvider {
	return NewCoinbaseProvider(models.MSourceConfig{
		Name: "coinbase",
		Type: "coinbase",
	}, net, logger.NewLogger("ERROR", "test"))
}

// -----------------------------------------------------------------------------

func TestCoinbaseFetchTick(t *testing.T) {
	net := &stubNetwork{body: []byte(`{"price":"50123.45","volume":"12.5","time":"2025-06-01T12:00:00Z"}`)}
	p := newCoinbase(net)

	tick, err := p.FetchTick(context.Background(), "BTC-USD")
	require.NoError(t, err)

	assert.Equal(t, "https://api.exchange.coinbase.com/products/BTC-USD/ticker", net.lastURL)
	assert.Equal(t, 50123.45, tick.Price)
	assert.Equal(t, 12.5, tick.Volume)
	assert.Equal(t, "coinbase", tick.SourceID)
	assert.Equal(t, int64(1748779200), tick.Timestamp)
}

// -----------------------------------------------------------------------------

func TestCoinbaseRejectsInvalidPrice(t *testing.T) {
	cases := []string{
		`{"price":"0","volume":"1","time":"2025-06-01T12:00:00Z"}`,
		`{"price":"-5","volume":"1","time":"2025-06-01T12:00:00Z"}`,
		`{"price":"not-a-number","volume":"1","time":"2025-06-01T12:00:00Z"}`,
	}

	for _, body := range cases {
		p := newCoinbase(&stubNetwork{body: []byte(body)})
		_, err := p.FetchTick(context.Background(), "BTC-USD")
		assert.Error(t, err)
	}
}

// -----------------------------------------------------------------------------

func TestCoinbasePropagatesNetworkError(t *testing.T) {
	p := newCoinbase(&stubNetwork{err: errors.New("timeout")})

	_, err := p.FetchTick(context.Background(), "BTC-USD")
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestCoinbaseHonorsCancelledContext(t *testing.T) {
	p := newCoinbase(&stubNetwork{body: []byte(`{"price":"1","volume":"1"}`)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.FetchTick(ctx, "BTC-USD")
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestSimulatedWalkIsBounded(t *testing.T) {
	p := NewSimulatedProvider(models.MSourceConfig{Name: "sim", Type: "simulated"})

	prev, err := p.FetchTick(context.Background(), "BTC-USD")
	require.NoError(t, err)
	require.Greater(t, prev.Price, 0.0)

	for i := 0; i < 100; i++ {
		tick, err := p.FetchTick(context.Background(), "BTC-USD")
		require.NoError(t, err)

		// Each step moves at most 0.5% from the previous price
		ratio := tick.Price / prev.Price
		assert.GreaterOrEqual(t, ratio, 0.995)
		assert.LessOrEqual(t, ratio, 1.005)
		prev = tick
	}
}

// -----------------------------------------------------------------------------

func TestSimulatedSymbolsAreIndependent(t *testing.T) {
	p := NewSimulatedProvider(models.MSourceConfig{Name: "sim", Type: "simulated"})

	btc, err := p.FetchTick(context.Background(), "BTC-USD")
	require.NoError(t, err)
	eth, err := p.FetchTick(context.Background(), "ETH-USD")
	require.NoError(t, err)

	assert.NotEqual(t, btc.Price, eth.Price)
}
