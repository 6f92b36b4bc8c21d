// Package ouraclient fetches metrics from a running server's /api/oura
// route, one request per metric type.
package ouraclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/oura"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrUpstream = errors.New("oura api request failed")
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Fetch(ctx context.Context, t oura.MetricType, r oura.DateRange) ([]json.RawMessage, error) {
	q := url.Values{}
	q.Set("type", string(t))
	if r.Start != nil {
		q.Set("start_date", r.Start.String())
	}
	if r.End != nil {
		q.Set("end_date", r.End.String())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/oura?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Join(err, ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: failed to fetch %s: status %d", ErrUpstream, t, resp.StatusCode)
	}

	var body struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Join(fmt.Errorf("decode %s: %w", t, err), ErrUpstream)
	}
	if body.Data == nil {
		body.Data = make([]json.RawMessage, 0)
	}
	return body.Data, nil
}
