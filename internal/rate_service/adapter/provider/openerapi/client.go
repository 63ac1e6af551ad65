package openerapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ratefeed/ratefeed/internal/entities"
)

const availabilityTimeout = 3 * time.Second

// Client fetches rates from the open.er-api.com v6 API.
type Client struct {
	client  *http.Client
	baseURL string
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *Client) Name() string {
	return "open-er-api"
}

type latestResponse struct {
	Result   string                 `json:"result"`
	BaseCode string                 `json:"base_code"`
	Rates    map[string]json.Number `json:"rates"`
}

func (c *Client) FetchLatestRates(ctx context.Context, base entities.CurrencyCode) (map[entities.CurrencyCode]decimal.Decimal, error) {
	url := fmt.Sprintf("%s/latest/%s", c.baseURL, base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request error: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api_client get error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body error: %w", err)
	}

	var result latestResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("json unmarshal error: %w", err)
	}

	if result.Result != "success" {
		return nil, fmt.Errorf("api returned result %q", result.Result)
	}

	rates := make(map[entities.CurrencyCode]decimal.Decimal, len(result.Rates))
	for symbol, value := range result.Rates {
		code, err := entities.ParseCurrencyCode(symbol)
		if err != nil {
			continue
		}

		rate, err := decimal.NewFromString(value.String())
		if err != nil {
			continue
		}

		rates[code] = rate
	}

	return rates, nil
}

// FetchHistoricalRate is not served by the open endpoint; callers fall back
// to other providers or the local history.
func (c *Client) FetchHistoricalRate(ctx context.Context, base, target entities.CurrencyCode, date time.Time) (decimal.Decimal, error) {
	return decimal.Zero, entities.ErrRateNotFound
}

func (c *Client) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/latest/USD", nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}
