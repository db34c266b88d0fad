package arcgis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"floorplan-sync/core/reconcile"

	"golang.org/x/sync/singleflight"
)

// APIError is returned for non-200 responses and for ArcGIS error envelopes.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	Details    []string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("arcgis error (status %d", e.StatusCode)
	if e.Code != 0 {
		msg += fmt.Sprintf(", code %d", e.Code)
	}
	msg += "): " + e.Message
	if len(e.Details) > 0 {
		msg += " (" + strings.Join(e.Details, "; ") + ")"
	}
	return msg
}

// Is reports server-side and throttling failures as transient.
func (e *APIError) Is(target error) bool {
	if target != reconcile.ErrTransientIO {
		return false
	}
	status := e.StatusCode
	if e.Code != 0 {
		status = e.Code
	}
	return status >= 500 || status == http.StatusTooManyRequests
}

// tokenExpired reports the ArcGIS "invalid token" family of codes.
func (e *APIError) tokenExpired() bool {
	return e.Code == 498 || e.Code == 499
}

// Client talks to an ArcGIS portal and one of its feature layers.
// It implements reconcile.Source.
type Client struct {
	http *http.Client
	cfg  Config
	base string

	mu       sync.Mutex
	token    string
	expires  time.Time
	layerURL string
	resolve  singleflight.Group

	now func() time.Time
}

// NewClient returns a client for cfg. No request is made until first use.
func NewClient(cfg Config) *Client {
	return &Client{
		http: &http.Client{Timeout: cfg.Timeout()},
		cfg:  cfg,
		base: strings.TrimRight(cfg.URL, "/"),
		now:  time.Now,
	}
}

// get performs a GET with query parameters and decodes the JSON body into target.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, target any) error {
	params.Set("f", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request GET %s: %w", endpoint, err)
	}
	return c.do(req, target)
}

// post performs a form-encoded POST and decodes the JSON body into target.
func (c *Client) post(ctx context.Context, endpoint string, form url.Values, target any) error {
	form.Set("f", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request POST %s: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, target)
}

func (c *Client) do(req *http.Request, target any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &reconcile.TransientIOError{Op: req.Method + " " + req.URL.Path, Err: err}
	}
	return decodeResponse(resp, target)
}

// decodeResponse checks the status and the error envelope, then decodes with UseNumber so
// integral attributes survive as integers.
func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &reconcile.TransientIOError{Op: "read response body", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var envelope struct {
		Error *struct {
			Code    int      `json:"code"`
			Message string   `json:"message"`
			Details []string `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       envelope.Error.Code,
			Message:    envelope.Error.Message,
			Details:    envelope.Error.Details,
		}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// authorize adds the current token to params, generating one if needed.
func (c *Client) authorize(ctx context.Context, params url.Values) error {
	token, err := c.Token(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		params.Set("token", token)
	}
	return nil
}

// Token returns a valid token, refreshing it one minute before it expires.
// It returns an empty token when no user is configured.
func (c *Client) Token(ctx context.Context) (string, error) {
	if c.cfg.User == "" {
		return "", nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Add(time.Minute).Before(c.expires) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("username", c.cfg.User)
	form.Set("password", c.cfg.Password)
	form.Set("referer", c.cfg.Referer)
	form.Set("client", "referer")
	form.Set("expiration", "60")

	var out struct {
		Token   string `json:"token"`
		Expires int64  `json:"expires"`
	}
	if err := c.post(ctx, c.base+"/sharing/rest/generateToken", form, &out); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	if out.Token == "" {
		return "", fmt.Errorf("generate token: empty token in response")
	}

	c.token = out.Token
	c.expires = time.UnixMilli(out.Expires)
	if out.Expires == 0 {
		c.expires = c.now().Add(time.Hour)
	}
	return c.token, nil
}

// invalidateToken forces the next call to generate a fresh token.
func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// LayerURL resolves the REST URL of the configured layer once and caches it.
// Concurrent callers share a single item lookup.
func (c *Client) LayerURL(ctx context.Context) (string, error) {
	c.mu.Lock()
	cached := c.layerURL
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	v, err, _ := c.resolve.Do("layer", func() (any, error) {
		layer, err := c.resolveLayerURL(ctx)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.layerURL = layer
		c.mu.Unlock()
		return layer, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Client) resolveLayerURL(ctx context.Context) (string, error) {
	serviceURL := c.cfg.FeatureLayerID
	if !strings.HasPrefix(serviceURL, "http://") && !strings.HasPrefix(serviceURL, "https://") {
		params := url.Values{}
		if err := c.authorize(ctx, params); err != nil {
			return "", err
		}
		var item struct {
			URL   string `json:"url"`
			Type  string `json:"type"`
			Title string `json:"title"`
		}
		endpoint := c.base + "/sharing/rest/content/items/" + url.PathEscape(c.cfg.FeatureLayerID)
		if err := c.get(ctx, endpoint, params, &item); err != nil {
			return "", fmt.Errorf("resolve item %s: %w", c.cfg.FeatureLayerID, err)
		}
		if item.URL == "" {
			return "", fmt.Errorf("resolve item %s: item has no service url", c.cfg.FeatureLayerID)
		}
		serviceURL = item.URL
	}

	return strings.TrimRight(serviceURL, "/") + "/" + strconv.Itoa(c.cfg.LayerIndex), nil
}
