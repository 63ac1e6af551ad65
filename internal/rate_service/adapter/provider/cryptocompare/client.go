package cryptocompare

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ratefeed/ratefeed/internal/entities"
)

const availabilityTimeout = 3 * time.Second

// Client fetches rates from min-api.cryptocompare.com. The API wants the
// full target symbol list per request, so the client is constructed with
// the registry's tracked currencies.
type Client struct {
	client  *http.Client
	baseURL string
	targets []entities.CurrencyCode
}

func New(baseURL string, targets []entities.CurrencyCode, timeout time.Duration) *Client {
	return &Client{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		targets: targets,
	}
}

func (c *Client) Name() string {
	return "cryptocompare"
}

func (c *Client) FetchLatestRates(ctx context.Context, base entities.CurrencyCode) (map[entities.CurrencyCode]decimal.Decimal, error) {
	tsyms := make([]string, 0, len(c.targets))
	for _, target := range c.targets {
		if target == base {
			continue
		}
		tsyms = append(tsyms, target.String())
	}
	if len(tsyms) == 0 {
		return map[entities.CurrencyCode]decimal.Decimal{}, nil
	}

	u, err := url.Parse(c.baseURL + "/data/price")
	if err != nil {
		return nil, fmt.Errorf("parse url error: %w", err)
	}

	q := u.Query()
	q.Set("fsym", base.String())
	q.Set("tsyms", strings.Join(tsyms, ","))
	u.RawQuery = q.Encode()

	body, err := c.get(ctx, u.String())
	if err != nil {
		return nil, err
	}

	var result map[string]json.Number
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("json unmarshal error: %w", err)
	}

	rates := make(map[entities.CurrencyCode]decimal.Decimal, len(result))
	for symbol, value := range result {
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

func (c *Client) FetchHistoricalRate(ctx context.Context, base, target entities.CurrencyCode, date time.Time) (decimal.Decimal, error) {
	u, err := url.Parse(c.baseURL + "/data/pricehistorical")
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse url error: %w", err)
	}

	q := u.Query()
	q.Set("fsym", base.String())
	q.Set("tsyms", target.String())
	q.Set("ts", strconv.FormatInt(date.Unix(), 10))
	u.RawQuery = q.Encode()

	body, err := c.get(ctx, u.String())
	if err != nil {
		return decimal.Zero, err
	}

	var result map[string]map[string]json.Number
	if err := json.Unmarshal(body, &result); err != nil {
		return decimal.Zero, fmt.Errorf("json unmarshal error: %w", err)
	}

	value, ok := result[base.String()][target.String()]
	if !ok {
		return decimal.Zero, entities.ErrRateNotFound
	}

	rate, err := decimal.NewFromString(value.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse rate error: %w", err)
	}

	return rate, nil
}

func (c *Client) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()

	_, err := c.get(ctx, c.baseURL+"/data/price?fsym=USD&tsyms=EUR")

	return err == nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
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

	return body, nil
}
