// Package oanda implements the broker boundary against the OANDA v20 REST
// API. Responses are picked apart with gjson instead of mirroring the full
// v20 schema in structs; the engine only needs a handful of fields.
package oanda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/quantfx/trader/broker"
)

const (
	// PracticeURL is OANDA's demo environment.
	PracticeURL = "https://api-fxpractice.oanda.com"
	// LiveURL is OANDA's live trading environment.
	LiveURL = "https://api-fxtrade.oanda.com"
)

// Client talks to one OANDA account.
type Client struct {
	baseURL    string
	token      string
	accountID  string
	httpClient *http.Client
}

// NewClient builds a client for the given account. Pass practice=true for
// the demo environment.
func NewClient(token, accountID string, practice bool) *Client {
	baseURL := LiveURL
	if practice {
		baseURL = PracticeURL
	}
	return &Client{
		baseURL:   baseURL,
		token:     token,
		accountID: accountID,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (gjson.Result, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return gjson.Result{}, err
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, body any) (gjson.Result, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return gjson.Result{}, 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doWithStatus(req)
}

func (c *Client) do(req *http.Request) (gjson.Result, error) {
	res, status, err := c.doWithStatus(req)
	if err != nil {
		return gjson.Result{}, err
	}
	if status < 200 || status >= 300 {
		return gjson.Result{}, fmt.Errorf("oanda: %s %s returned %d: %s",
			req.Method, req.URL.Path, status, res.Get("errorMessage").String())
	}
	return res, nil
}

func (c *Client) doWithStatus(req *http.Request) (gjson.Result, int, error) {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, 0, fmt.Errorf("oanda: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, 0, fmt.Errorf("oanda: read response: %w", err)
	}
	return gjson.ParseBytes(data), resp.StatusCode, nil
}

// GetBalance returns the account balance from the account summary.
func (c *Client) GetBalance(ctx context.Context) (float64, error) {
	res, err := c.get(ctx, "/v3/accounts/"+c.accountID+"/summary", nil)
	if err != nil {
		return 0, err
	}
	balance := res.Get("account.balance")
	if !balance.Exists() {
		return 0, fmt.Errorf("oanda: account summary missing balance")
	}
	return balance.Float(), nil
}

// GetQuotes fetches current pricing for the instruments.
func (c *Client) GetQuotes(ctx context.Context, instruments []string) (map[string]broker.Quote, error) {
	query := url.Values{"instruments": {strings.Join(instruments, ",")}}
	res, err := c.get(ctx, "/v3/accounts/"+c.accountID+"/pricing", query)
	if err != nil {
		return nil, err
	}

	out := make(map[string]broker.Quote, len(instruments))
	for _, p := range res.Get("prices").Array() {
		inst := p.Get("instrument").String()
		bid := p.Get("bids.0.price").Float()
		ask := p.Get("asks.0.price").Float()
		if inst == "" || bid == 0 || ask == 0 {
			continue
		}
		out[inst] = broker.Quote{
			Instrument: inst,
			Bid:        bid,
			Ask:        ask,
			Time:       p.Get("time").Time(),
		}
	}
	return out, nil
}

// PlaceMarketOrder submits a FOK market order with stop loss and take
// profit attached on fill.
func (c *Client) PlaceMarketOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderFill, error) {
	order := map[string]any{
		"order": map[string]any{
			"type":         "MARKET",
			"instrument":   req.Instrument,
			"units":        fmt.Sprintf("%.0f", req.Units),
			"timeInForce":  "FOK",
			"positionFill": "DEFAULT",
			"stopLossOnFill": map[string]string{
				"price":       formatPrice(req.StopPrice),
				"timeInForce": "GTC",
			},
			"takeProfitOnFill": map[string]string{
				"price":       formatPrice(req.TargetPrice),
				"timeInForce": "GTC",
			},
		},
	}

	res, status, err := c.post(ctx, "/v3/accounts/"+c.accountID+"/orders", order)
	if err != nil {
		return broker.OrderFill{}, err
	}

	fill := res.Get("orderFillTransaction")
	if !fill.Exists() {
		reason := res.Get("orderCancelTransaction.reason").String()
		if reason == "" {
			reason = res.Get("errorMessage").String()
		}
		if status >= 500 {
			return broker.OrderFill{}, fmt.Errorf("oanda: order failed with %d: %s", status, reason)
		}
		return broker.OrderFill{}, fmt.Errorf("%w: %s", broker.ErrRejected, reason)
	}

	return broker.OrderFill{
		TradeID:    fill.Get("id").String(),
		Instrument: req.Instrument,
		Units:      req.Units,
		FillPrice:  fill.Get("price").Float(),
		Commission: fill.Get("commission").Float(),
		Time:       fill.Get("time").Time(),
	}, nil
}

// GetOpenExposure sums long and short units per instrument from the
// account's position list.
func (c *Client) GetOpenExposure(ctx context.Context) (map[string]float64, error) {
	res, err := c.get(ctx, "/v3/accounts/"+c.accountID, nil)
	if err != nil {
		return nil, err
	}

	out := make(map[string]float64)
	for _, pos := range res.Get("account.positions").Array() {
		net := pos.Get("long.units").Float() + pos.Get("short.units").Float()
		if net != 0 {
			out[pos.Get("instrument").String()] = net
		}
	}
	return out, nil
}

func formatPrice(p float64) string {
	return fmt.Sprintf("%.5f", p)
}
