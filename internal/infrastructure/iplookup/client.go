package iplookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"golang.org/x/time/rate"

	"agency-rbac/internal/ports"
)

const Unknown = "unknown"

// Client asks an external echo service (ipify-style JSON {"ip": "..."}) for
// the public address of whoever calls it. Run server side that is the
// service's own egress address, never the operator's; it only fills audit
// entries whose request carried no client address. Disabled when the URL is
// empty. Lookups are rate limited; any failure yields Unknown and is only
// logged.
type Client struct {
	url     string
	http    *http.Client
	limiter *rate.Limiter
	logger  ports.Logger
}

func NewClient(url string, timeout time.Duration, perSecond float64, logger ports.Logger) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if perSecond <= 0 {
		perSecond = 5
	}
	return &Client{
		url:     url,
		http:    xray.Client(&http.Client{Timeout: timeout}),
		limiter: rate.NewLimiter(rate.Limit(perSecond), int(perSecond)+1),
		logger:  logger,
	}
}

func (c *Client) ClientIP(ctx context.Context) string {
	if c.url == "" {
		return Unknown
	}
	if !c.limiter.Allow() {
		c.logger.Debug(ctx, "ip lookup rate limited")
		return Unknown
	}
	ip, err := c.lookup(ctx)
	if err != nil {
		c.logger.Warn(ctx, "ip lookup failed", "error", err)
		return Unknown
	}
	return ip
}

func (c *Client) lookup(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ip lookup returned status %d", resp.StatusCode)
	}
	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err != nil {
		return "", err
	}
	if net.ParseIP(body.IP) == nil {
		return "", errors.New("ip lookup returned an invalid address")
	}
	return body.IP, nil
}
