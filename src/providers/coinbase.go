package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"crypto-signals/src/interfaces"
	"crypto-signals/src/logger"
	"crypto-signals/src/models"
)

// -----------------------------------------------------------------------------
// CoinbaseProvider fetches spot ticks from the Coinbase Exchange REST API.
// -----------------------------------------------------------------------------

const defaultCoinbaseURL = "https://api.exchange.coinbase.com"

type CoinbaseProvider struct {
	SourceConfig models.MSourceConfig
	Network      interfaces.INetworkManager
	Logger       *logger.Logger
	baseURL      string
}

// -----------------------------------------------------------------------------

func NewCoinbaseProvider(sourceCfg models.MSourceConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *CoinbaseProvider {
	baseURL := sourceCfg.BaseURL
	if baseURL == "" {
		baseURL = defaultCoinbaseURL
	}
	return &CoinbaseProvider{
		SourceConfig: sourceCfg,
		Network:      netMgr,
		Logger:       log.Named("CoinbaseProvider-" + sourceCfg.Name),
		baseURL:      baseURL,
	}
}

// -----------------------------------------------------------------------------

func (p *CoinbaseProvider) Name() string {
	return p.SourceConfig.Name
}

// -----------------------------------------------------------------------------

// tickerResponse mirrors the /products/{id}/ticker payload; numeric fields
// arrive as strings.
type tickerResponse struct {
	Price  string `json:"price"`
	Volume string `json:"volume"`
	Time   string `json:"time"`
}

// -----------------------------------------------------------------------------

// FetchTick retrieves the current ticker for a product.
func (p *CoinbaseProvider) FetchTick(ctx context.Context, symbol string) (models.MTick, error) {
	if err := ctx.Err(); err != nil {
		return models.MTick{}, err
	}

	url := fmt.Sprintf("%s/products/%s/ticker", p.baseURL, symbol)
	body, err := p.Network.Get(url, nil)
	if err != nil {
		return models.MTick{}, fmt.Errorf("coinbase ticker fetch for %s: %w", symbol, err)
	}

	var ticker tickerResponse
	if err := json.Unmarshal(body, &ticker); err != nil {
		return models.MTick{}, fmt.Errorf("coinbase ticker parse for %s: %w", symbol, err)
	}

	price, err := strconv.ParseFloat(ticker.Price, 64)
	if err != nil || price <= 0 {
		return models.MTick{}, fmt.Errorf("coinbase returned invalid price %q for %s", ticker.Price, symbol)
	}

	volume, _ := strconv.ParseFloat(ticker.Volume, 64)
	if volume < 0 {
		volume = 0
	}

	ts := time.Now().Unix()
	if parsed, perr := time.Parse(time.RFC3339, ticker.Time); perr == nil {
		ts = parsed.Unix()
	}

	return models.MTick{
		Symbol:    symbol,
		Price:     price,
		Volume:    volume,
		Timestamp: ts,
		SourceID:  p.Name(),
	}, nil
}
