package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tair/orderflow/internal/checkout/domain"
	"github.com/tair/orderflow/pkg/logger"
)

const catalogCacheTTL = 5 * time.Minute

// CatalogClient resolves purchasable units against the catalog service
// over HTTP, with a Redis read-through cache for the snapshots
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
	redis      *redis.Client
}

// NewCatalogClient creates a new catalog client. The redis client may be
// nil, in which case caching is disabled.
func NewCatalogClient(baseURL string, redisClient *redis.Client) *CatalogClient {
	return &CatalogClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   3 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		redis: redisClient,
	}
}

// ResolveUnit looks up the catalog snapshot for a purchasable unit
func (c *CatalogClient) ResolveUnit(ctx context.Context, sku string) (*domain.UnitSnapshot, error) {
	if snapshot := c.cachedSnapshot(ctx, sku); snapshot != nil {
		return snapshot, nil
	}

	url := fmt.Sprintf("%s/api/catalog/units/%s", c.baseURL, sku)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call catalog service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog service returned status %d", resp.StatusCode)
	}

	var payload struct {
		Success bool                `json:"success"`
		Data    domain.UnitSnapshot `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	snapshot := payload.Data
	snapshot.SKU = sku
	c.cacheSnapshot(ctx, sku, &snapshot)

	return &snapshot, nil
}

func (c *CatalogClient) cachedSnapshot(ctx context.Context, sku string) *domain.UnitSnapshot {
	if c.redis == nil {
		return nil
	}

	data, err := c.redis.Get(ctx, catalogCacheKey(sku)).Bytes()
	if err != nil || len(data) == 0 {
		return nil
	}

	var snapshot domain.UnitSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil
	}

	logger.Debug(ctx).Str("sku", sku).Msg("Catalog cache hit")
	return &snapshot
}

func (c *CatalogClient) cacheSnapshot(ctx context.Context, sku string, snapshot *domain.UnitSnapshot) {
	if c.redis == nil {
		return
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return
	}

	if err := c.redis.Set(ctx, catalogCacheKey(sku), data, catalogCacheTTL).Err(); err != nil {
		logger.Warn(ctx).Err(err).Str("sku", sku).Msg("Failed to cache catalog snapshot")
	}
}

func catalogCacheKey(sku string) string {
	return "catalog:unit:" + sku
}
