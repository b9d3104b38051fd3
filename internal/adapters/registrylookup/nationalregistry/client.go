package nationalregistry

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"animal-registry/internal/platform/httpclient"
	"animal-registry/internal/ports/registrylookup"
)

var (
	ErrNotConfigured = errors.New("national registry client not configured")
	ErrUpstream      = errors.New("national registry upstream error")
)

// Config del cliente del registro nacional de identificadores.
// BaseURL y APIKey vienen de env vars (NATIONAL_REGISTRY_URL / _API_KEY).
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: nombre del header donde se manda la API key.
	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

// Client implementa registrylookup.Lookup contra el registro central.
// Un fallo upstream se propaga como error: el core lo traduce a
// "validación incompleta", nunca a válido ni a duplicado.
type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}

	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

type existsResponse struct {
	Exists bool `json:"exists"`
}

func (c *Client) Exists(ctx context.Context, field registrylookup.Field, value, excludeID string) (bool, error) {
	if !c.IsConfigured() {
		return false, ErrNotConfigured
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}

	q := url.Values{}
	q.Set("field", string(field))
	q.Set("value", value)
	if strings.TrimSpace(excludeID) != "" {
		q.Set("exclude_id", strings.TrimSpace(excludeID))
	}

	var out existsResponse
	err := c.http.DoJSON(ctx, "GET", "/v1/identifiers/exists?"+q.Encode(),
		map[string]string{c.apiKeyHeader: c.apiKey}, nil, &out)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	return out.Exists, nil
}
