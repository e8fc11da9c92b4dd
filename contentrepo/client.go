// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package contentrepo

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

	"github.com/jellydator/ttlcache/v3"

	"github.com/danielhkuo/mqr-hub/mqr"
)

// StatusError is returned when the content repository answers with a
// non-2xx status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("content repository returned %d for %s", e.StatusCode, e.URL)
}

// Client resolves study content from the content repository REST API.
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
	cache   *ttlcache.Cache[string, mqr.ContentResult]
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCacheTTL caches found pages for ttl. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl <= 0 {
			c.cache = nil
			return
		}
		c.cache = ttlcache.New(
			ttlcache.WithTTL[string, mqr.ContentResult](ttl),
			ttlcache.WithDisableTouchOnHit[string, mqr.ContentResult](),
		)
	}
}

// New returns a client for the repository at baseURL. Requests carry
// "Authorization: Token <token>" when token is set.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid content repository URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		baseURL: u,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache != nil {
		go c.cache.Start()
	}
	return c, nil
}

// Close stops the cache janitor.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Stop()
	}
}

type pageList struct {
	Count   int `json:"count"`
	Results []struct {
		ID int `json:"id"`
	} `json:"results"`
}

type pageDetail struct {
	Body struct {
		IsWhatsappTemplate bool `json:"is_whatsapp_template"`
		Text               struct {
			Value struct {
				Message string `json:"message"`
			} `json:"value"`
		} `json:"text"`
	} `json:"body"`
}

type menuItem struct {
	Order json.Number `json:"order"`
	Title string      `json:"title"`
}

// ResolveByTag looks up the single page tagged tag.
func (c *Client) ResolveByTag(ctx context.Context, tag string) (mqr.ContentResult, error) {
	if c.cache != nil {
		if item := c.cache.Get(tag); item != nil {
			return item.Value(), nil
		}
	}

	var list pageList
	if err := c.get(ctx, "api/v2/pages/", url.Values{"tag": {tag}}, &list); err != nil {
		return mqr.ContentResult{}, err
	}

	switch {
	case len(list.Results) == 0:
		return mqr.ContentResult{Status: mqr.ContentNotFound}, nil
	case len(list.Results) > 1:
		return mqr.ContentResult{Status: mqr.ContentMultipleFound}, nil
	}

	var page pageDetail
	path := "api/v2/pages/" + strconv.Itoa(list.Results[0].ID) + "/"
	if err := c.get(ctx, path, url.Values{"whatsapp": {"true"}}, &page); err != nil {
		return mqr.ContentResult{}, err
	}

	message := page.Body.Text.Value.Message
	res := mqr.ContentResult{
		Status:        mqr.ContentFound,
		IsTemplate:    page.Body.IsWhatsappTemplate,
		HasParameters: strings.Contains(message, "{{1}}"),
		Message:       message,
	}
	if c.cache != nil {
		c.cache.Set(tag, res, ttlcache.DefaultTTL)
	}
	return res, nil
}

// ResolveMenu fetches the FAQ topics for tag. The repository is told which
// FAQs were viewed so it can leave them out.
func (c *Client) ResolveMenu(ctx context.Context, tag string, viewed mqr.Viewed) ([]mqr.MenuEntry, error) {
	params := url.Values{
		"tag":    {strings.ToLower(tag)},
		"viewed": {strings.Join(viewed.Items(), ",")},
	}
	var items []menuItem
	if err := c.get(ctx, "faqmenu", params, &items); err != nil {
		return nil, err
	}

	entries := make([]mqr.MenuEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, mqr.MenuEntry{Order: it.Order.String(), Title: it.Title})
	}
	return entries, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, v interface{}) error {
	u := c.baseURL.ResolveReference(&url.URL{Path: path, RawQuery: params.Encode()})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("building content request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("content request %s: %w", u.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, URL: u.Path}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding content response from %s: %w", u.Path, err)
	}
	return nil
}
