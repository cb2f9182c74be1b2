package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ndvoropaev/linkup/internal/services/enrichment"
)

// Client talks to the external text-generation service over HTTP. It
// implements enrichment.Generator.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("textgen base url is empty")
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}, nil
}

type profilePayload struct {
	DisplayName   string   `json:"display_name"`
	Headline      string   `json:"headline"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	Bio           string   `json:"bio"`
	PortfolioTags []string `json:"portfolio_tags"`
}

type pairRequest struct {
	First  profilePayload `json:"first"`
	Second profilePayload `json:"second"`
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

type icebreakersResponse struct {
	Icebreakers []string `json:"icebreakers"`
}

func (c *Client) Summarize(ctx context.Context, a, b enrichment.Profile) (string, error) {
	var out summaryResponse
	if err := c.post(ctx, "/v1/match-summary", pairRequest{
		First:  toPayload(a),
		Second: toPayload(b),
	}, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

func (c *Client) Icebreakers(ctx context.Context, a, b enrichment.Profile) ([]string, error) {
	var out icebreakersResponse
	if err := c.post(ctx, "/v1/icebreakers", pairRequest{
		First:  toPayload(a),
		Second: toPayload(b),
	}, &out); err != nil {
		return nil, err
	}
	return out.Icebreakers, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode textgen request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create textgen request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call textgen service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("unexpected textgen status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode textgen response: %w", err)
	}
	return nil
}

func toPayload(p enrichment.Profile) profilePayload {
	tags := p.PortfolioTags
	if tags == nil {
		tags = []string{}
	}
	return profilePayload{
		DisplayName:   p.DisplayName,
		Headline:      p.Headline,
		City:          p.City,
		State:         p.State,
		Bio:           p.Bio,
		PortfolioTags: tags,
	}
}
