package clash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrUpstream = errors.New("clash of clans request failed")
	ErrNoToken  = errors.New("clash of clans token not configured")
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Player returns the raw player record for tag, e.g. "#29YOY8UJQ".
func (c *Client) Player(ctx context.Context, tag string) (json.RawMessage, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}

	u := c.baseURL + "/players/" + url.PathEscape(tag)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Join(err, ErrUpstream)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(err, ErrUpstream)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, body)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: invalid json body", ErrUpstream)
	}
	return body, nil
}
