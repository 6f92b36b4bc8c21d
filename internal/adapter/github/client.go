package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ashwin-iyer1/portfolio_backend/internal/domain/project"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrUpstream = errors.New("github request failed")
)

const maxPages = 10

type repo struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	HTMLURL     string  `json:"html_url"`
}

type Client struct {
	baseURL string
	user    string
	token   string
	http    *http.Client
}

func New(baseURL, user, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		user:    user,
		token:   token,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// ListRepos returns every public repository of the user.
func (c *Client) ListRepos(ctx context.Context) ([]*project.Project, error) {
	projects := make([]*project.Project, 0)
	for page := 1; page <= maxPages; page++ {
		repos, err := c.listPage(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, r := range repos {
			description := ""
			if r.Description != nil {
				description = *r.Description
			}
			projects = append(projects, project.New(r.Name, description, r.HTMLURL))
		}
		if len(repos) < 100 {
			break
		}
	}
	return projects, nil
}

func (c *Client) listPage(ctx context.Context, page int) ([]repo, error) {
	u := fmt.Sprintf("%s/users/%s/repos?per_page=100&page=%d", c.baseURL, url.PathEscape(c.user), page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Join(err, ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var repos []repo
	if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
		return nil, errors.Join(fmt.Errorf("decode repos: %w", err), ErrUpstream)
	}
	return repos, nil
}
