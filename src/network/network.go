package network

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"crypto-signals/src/logger"
	"crypto-signals/src/models"
)

// -----------------------------------------------------------------------------
// Manager performs outbound HTTP requests for tick providers, with a shared
// timeout and bounded retries.
// -----------------------------------------------------------------------------

type Manager struct {
	Config *models.MConfig
	Client *http.Client
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewManager(cfg *models.MConfig, log *logger.Logger) *Manager {
	return &Manager{
		Config: cfg,
		Logger: log,
		Client: &http.Client{
			Timeout: time.Duration(cfg.Network.RequestTimeout) * time.Second,
		},
	}
}

// -----------------------------------------------------------------------------

// Get performs a GET request with retries.
func (nm *Manager) Get(urlStr string, params map[string]string) ([]byte, error) {
	reqURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, err
	}

	if len(params) > 0 {
		q := reqURL.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		reqURL.RawQuery = q.Encode()
	}

	retries := nm.Config.Network.MaxRetries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		body, err := nm.doGet(reqURL.String())
		if err == nil {
			return body, nil
		}
		lastErr = err
		nm.Logger.Warning("GET %s failed (attempt %d/%d): %v", reqURL.Host, attempt+1, retries, err)
	}

	return nil, lastErr
}

// -----------------------------------------------------------------------------

func (nm *Manager) doGet(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if ua := nm.Config.Network.UserAgent; ua != "" {
		req.Header.Set("User-Agent", ua)
	}

	resp, err := nm.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}
