package proxy

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tair/orderflow/api-gateway/config"
	"github.com/tair/orderflow/pkg/logger"
)

// Forwarder proxies requests to configured upstream backends.
type Forwarder struct {
	config *config.GatewayConfig
	client *http.Client
}

// NewForwarder creates a new forwarder
func NewForwarder(cfg *config.GatewayConfig) *Forwarder {
	return &Forwarder{
		config: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Forward sends the request to the named upstream and writes the response back
func (f *Forwarder) Forward(c *fiber.Ctx, upstream string) error {
	target, ok := f.config.Upstreams[upstream]
	if !ok {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": fmt.Sprintf("Unknown upstream '%s'", upstream),
		})
	}

	targetURL := f.buildTargetURL(c, target)

	logger.Logger.Debug().
		Str("upstream", upstream).
		Str("target_url", targetURL).
		Msg("Forwarding request")

	req, err := http.NewRequestWithContext(
		c.UserContext(),
		c.Method(),
		targetURL,
		bytes.NewReader(c.Body()),
	)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create request",
		})
	}

	f.copyRequestHeaders(c, req)

	resp, err := f.client.Do(req)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":    "Failed to reach backend service",
			"upstream": upstream,
			"details":  err.Error(),
		})
	}
	defer resp.Body.Close()

	f.copyResponseHeaders(c, resp)
	c.Status(resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to read response",
		})
	}

	return c.Send(body)
}

func (f *Forwarder) buildTargetURL(c *fiber.Ctx, target config.UpstreamConfig) string {
	path := string(c.Request().URI().Path())

	queryString := string(c.Request().URI().QueryString())
	if queryString != "" {
		queryString = "?" + queryString
	}

	return target.BaseURL + path + queryString
}

func (f *Forwarder) copyRequestHeaders(c *fiber.Ctx, req *http.Request) {
	c.Request().Header.VisitAll(func(key, value []byte) {
		keyStr := string(key)
		if strings.ToLower(keyStr) == "host" {
			return
		}
		req.Header.Set(keyStr, string(value))
	})

	req.Header.Set("X-Forwarded-For", c.IP())
	req.Header.Set("X-Forwarded-Proto", c.Protocol())
	req.Header.Set("X-Forwarded-Host", c.Hostname())
}

func (f *Forwarder) copyResponseHeaders(c *fiber.Ctx, resp *http.Response) {
	for key, values := range resp.Header {
		if strings.ToLower(key) == "content-length" {
			continue
		}
		for _, value := range values {
			c.Set(key, value)
		}
	}
}
