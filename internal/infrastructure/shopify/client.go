package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"palantir/internal/config"
	"palantir/internal/domain"
	apperrors "palantir/internal/errors"
)

// Client talks to the external inventory API. Two endpoints: the location
// listing and the cursor-paginated inventory-by-location listing. The
// upstream is rate limited, so every call goes through a limiter, and a
// circuit breaker keeps a struggling backend from being hammered further.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	pageTimeout time.Duration
	rateLimiter *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	logger      *zap.Logger
}

func NewClient(cfg config.InventoryConfig, pageTimeout time.Duration, logger *zap.Logger) *Client {
	settings := gobreaker.Settings{
		Name:    "inventory-api",
		Timeout: cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &Client{
		httpClient:  &http.Client{},
		baseURL:     cfg.BaseURL,
		pageTimeout: pageTimeout,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		breaker:     gobreaker.NewCircuitBreaker(settings),
		logger:      logger,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type locationsPayload struct {
	Locations []locationWire `json:"locations"`
}

type locationWire struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
	Address  string `json:"address"`
}

type inventoryPayload struct {
	Inventory []productWire `json:"inventory"`
	HasMore   bool          `json:"hasMore"`
	PageInfo  pageInfoWire  `json:"pageInfo"`
}

type pageInfoWire struct {
	EndCursor string `json:"endCursor"`
}

type productWire struct {
	ProductID string        `json:"productId"`
	Title     string        `json:"title"`
	Status    string        `json:"status"`
	Image     *imageWire    `json:"image"`
	Variants  []variantWire `json:"variants"`
}

type imageWire struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

type variantWire struct {
	VariantID       string `json:"variantId"`
	SKU             string `json:"sku"`
	Barcode         string `json:"barcode"`
	Price           string `json:"price"`
	CompareAtPrice  string `json:"compareAtPrice"`
	Available       int    `json:"available"`
	InventoryItemID string `json:"inventoryItemId"`
}

func (c *Client) GetLocations(ctx context.Context) ([]domain.Location, error) {
	body, err := c.get(ctx, c.baseURL+"/locations")
	if err != nil {
		return nil, err
	}

	var payload locationsPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding locations response: %w", err)
	}

	locations := make([]domain.Location, len(payload.Locations))
	for i, l := range payload.Locations {
		locations[i] = domain.Location{
			ID:       l.ID,
			Name:     l.Name,
			IsActive: l.IsActive,
			Address:  l.Address,
		}
	}
	return locations, nil
}

// GetInventoryPage fetches one page of a location's inventory. An empty
// cursor requests the first page.
func (c *Client) GetInventoryPage(ctx context.Context, locationID string, limit int, after string) (*domain.InventoryPage, error) {
	params := url.Values{}
	params.Set("locationId", locationID)
	params.Set("limit", fmt.Sprintf("%d", limit))
	if after != "" {
		params.Set("after", after)
	}

	body, err := c.get(ctx, c.baseURL+"/inventory?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var payload inventoryPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding inventory response: %w", err)
	}

	page := &domain.InventoryPage{
		Products:  make([]domain.ProductDetail, len(payload.Inventory)),
		HasMore:   payload.HasMore,
		EndCursor: payload.PageInfo.EndCursor,
	}
	for i, p := range payload.Inventory {
		page.Products[i] = mapProduct(p)
	}
	return page, nil
}

func mapProduct(p productWire) domain.ProductDetail {
	detail := domain.ProductDetail{
		ProductID: p.ProductID,
		Title:     p.Title,
		Status:    p.Status,
		Variants:  make([]domain.VariantDetail, len(p.Variants)),
	}
	if p.Image != nil {
		detail.ImageURL = p.Image.URL
		detail.ImageAltText = p.Image.AltText
	}
	for i, v := range p.Variants {
		detail.Variants[i] = domain.VariantDetail{
			VariantID:       v.VariantID,
			SKU:             v.SKU,
			Barcode:         v.Barcode,
			Price:           v.Price,
			CompareAtPrice:  v.CompareAtPrice,
			Available:       v.Available,
			InventoryItemID: v.InventoryItemID,
		}
	}
	return detail
}

// get performs one rate-limited, breaker-guarded request and unwraps the
// {success, data, error} envelope.
func (c *Client) get(ctx context.Context, reqURL string) (json.RawMessage, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.pageTimeout)
	defer cancel()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doRequest(callCtx, reqURL)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, apperrors.NewUnavailableError("inventory API unavailable", err)
		}
		return nil, err
	}
	return result.(json.RawMessage), nil
}

func (c *Client) doRequest(ctx context.Context, reqURL string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inventory API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inventory API status %d", resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding response envelope: %w", err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "unknown error"
		}
		return nil, fmt.Errorf("inventory API reported failure: %s", msg)
	}

	return env.Data, nil
}
