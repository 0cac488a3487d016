package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	httpClient "github.com/Alias1177/ForecastBot/internal/platform/http"
	"github.com/Alias1177/ForecastBot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultModelURL is the hosted FinBERT inference endpoint
const DefaultModelURL = "https://api-inference.huggingface.co/models/ProsusAI/finbert"

// ClientOptions holds options for creating a new classifier client
type ClientOptions struct {
	APIKey         string
	ModelURL       string
	RequestTimeout time.Duration
}

// Client calls a hosted text-classification model
type Client struct {
	apiKey     string
	modelURL   string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// NewClient creates a new classifier client. Requests are never retried.
func NewClient(options ClientOptions) *Client {
	if options.ModelURL == "" {
		options.ModelURL = DefaultModelURL
	}
	return &Client{
		apiKey:   options.APIKey,
		modelURL: options.ModelURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:        options.RequestTimeout,
			RequestsPerSec: 5,
		}),
		logger: log.With().Str("component", "huggingface_client").Logger(),
	}
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

// Classify sends the text to the model and returns its label scores
func (c *Client) Classify(ctx context.Context, text string) ([]models.ClassifierLabel, error) {
	payload, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Str("text", text).Msg("Sending text to classifier")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	labels, err := parseLabels(body)
	if err != nil {
		c.logger.Error().Err(err).Str("response", string(body)).Msg("Error parsing classifier response")
		return nil, err
	}
	return labels, nil
}

// parseLabels accepts both the nested [[...]] and the flat [...] response shapes
func parseLabels(body []byte) ([]models.ClassifierLabel, error) {
	var nested [][]models.ClassifierLabel
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 || len(nested[0]) == 0 {
			return nil, fmt.Errorf("empty classifier response")
		}
		return nested[0], nil
	}

	var flat []models.ClassifierLabel
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if len(flat) == 0 {
		return nil, fmt.Errorf("empty classifier response")
	}
	return flat, nil
}
