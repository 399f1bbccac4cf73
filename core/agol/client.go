package agol

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// tokenSkew is the refresh margin: a cached token this close to expiry is
// treated as expired and exchanged for a fresh one.
const tokenSkew = 60 * time.Second

// tokenLifetime is the lifetime recorded for a freshly acquired token. The
// exchange requests 60 minutes and the expiry is bookkept locally rather
// than read back from the response.
const tokenLifetime = 3600 * time.Second

// Client defines the operations of the feature service client.
type Client interface {
	// EnsureToken returns a valid token, exchanging credentials if the
	// cached one is absent or within the refresh margin of its expiry.
	EnsureToken(ctx context.Context) (string, error)
	// Get issues an authenticated GET and returns the parsed JSON body.
	Get(ctx context.Context, rawURL string, params map[string]string) (map[string]any, error)
	// Post issues an authenticated form POST and returns the parsed JSON body.
	Post(ctx context.Context, rawURL string, form map[string]string) (map[string]any, error)
	// Query fetches features from a layer or table endpoint.
	Query(ctx context.Context, layerURL string, opts QueryOptions) (*QueryResult, error)
	// AddFeatures submits features without remote identifiers.
	AddFeatures(ctx context.Context, layerURL string, features []Feature) ([]EditResult, error)
	// UpdateFeatures submits features that carry their remote identifier
	// inside attributes.
	UpdateFeatures(ctx context.Context, layerURL string, features []Feature) ([]EditResult, error)
	// DeleteFeatures removes every record matching the predicate.
	DeleteFeatures(ctx context.Context, layerURL string, where string) ([]EditResult, error)
	// ApplyEdits bundles adds, updates and deletions in one request.
	// Atomicity is determined by the remote service, not by this client.
	ApplyEdits(ctx context.Context, layerURL string, adds, updates []Feature, deleteIDs []int64) (*EditResponse, error)
	// ServiceInfo fetches feature server metadata (layers and tables).
	ServiceInfo(ctx context.Context, serviceURL string) (*ServiceInfo, error)
}

// restClient is the HTTP implementation of Client.
type restClient struct {
	cfg  Config
	http *http.Client
	now  func() time.Time

	sf singleflight.Group

	mu      sync.Mutex // protects token and expires
	token   string
	expires time.Time
}

// NewClient creates a feature service client from the configuration.
func NewClient(cfg Config) Client {
	tokenTimeout := cfg.TokenTimeoutSeconds
	if tokenTimeout <= 0 {
		tokenTimeout = 30
	}
	requestTimeout := cfg.RequestTimeoutSeconds
	if requestTimeout <= 0 {
		requestTimeout = 60
	}
	cfg.TokenTimeoutSeconds = tokenTimeout
	cfg.RequestTimeoutSeconds = requestTimeout
	cfg.Portal = strings.TrimRight(cfg.Portal, "/")

	dialTimeout := time.Duration(tokenTimeout) * time.Second
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   dialTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &restClient{
		cfg:  cfg,
		http: &http.Client{Transport: transport},
		now:  time.Now,
	}
}

// EnsureToken implements the acquisition protocol: reuse while more than a
// minute from expiry, otherwise exchange credentials once even under
// concurrent callers.
func (c *restClient) EnsureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && c.now().Before(c.expires.Add(-tokenSkew)) {
		tok := c.token
		c.mu.Unlock()
		return tok, nil
	}
	c.mu.Unlock()

	v, err, _ := c.sf.Do("token", func() (any, error) {
		// Re-check: another caller may have refreshed between the fast
		// path and entering the group.
		c.mu.Lock()
		if c.token != "" && c.now().Before(c.expires.Add(-tokenSkew)) {
			tok := c.token
			c.mu.Unlock()
			return tok, nil
		}
		c.mu.Unlock()

		tok, expires, err := c.generateToken(ctx)
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.token = tok
		c.expires = expires
		c.mu.Unlock()
		return tok, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// generateToken performs the credential exchange against the portal.
func (c *restClient) generateToken(ctx context.Context) (string, time.Time, error) {
	endpoint := c.cfg.Portal + "/sharing/rest/generateToken"

	form := url.Values{}
	form.Set("f", "json")
	form.Set("username", c.cfg.Username)
	form.Set("password", c.cfg.Password)
	form.Set("referer", c.cfg.Referer)
	form.Set("expiration", "60")

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TokenTimeoutSeconds)*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, &TransportError{URL: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.readBody(req)
	if err != nil {
		return "", time.Time{}, err
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", time.Time{}, &TransportError{URL: endpoint, Err: fmt.Errorf("decode response: %w", err)}
	}

	tok, ok := payload["token"].(string)
	if !ok || tok == "" {
		return "", time.Time{}, &AuthenticationError{Response: payload}
	}

	return tok, c.now().Add(tokenLifetime), nil
}

// readBody executes the request and returns the body of a 2xx response.
func (c *restClient) readBody(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: req.URL.String(), Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			URL: req.URL.String(),
			Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}
	return body, nil
}

// do issues an authenticated call and returns the raw JSON body after the
// embedded-error inspection.
func (c *restClient) do(ctx context.Context, method, rawURL string, params map[string]string) ([]byte, error) {
	tok, err := c.EnsureToken(ctx)
	if err != nil {
		return nil, err
	}

	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	values.Set("f", "json")
	values.Set("token", tok)

	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.RequestTimeoutSeconds)*time.Second)
	defer cancel()

	var req *http.Request
	if method == http.MethodGet {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+values.Encode(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(values.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}

	body, err := c.readBody(req)
	if err != nil {
		return nil, err
	}

	// The service reports application failures inside a 2xx body.
	var envelope struct {
		Error *ServiceError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("decode response: %w", err)}
	}
	if envelope.Error != nil {
		return nil, envelope.Error
	}
	return body, nil
}

// Get implements Client.
func (c *restClient) Get(ctx context.Context, rawURL string, params map[string]string) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodGet, rawURL, params)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("decode response: %w", err)}
	}
	return payload, nil
}

// Post implements Client.
func (c *restClient) Post(ctx context.Context, rawURL string, form map[string]string) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodPost, rawURL, form)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("decode response: %w", err)}
	}
	return payload, nil
}

// Query implements Client.
func (c *restClient) Query(ctx context.Context, layerURL string, opts QueryOptions) (*QueryResult, error) {
	where := opts.Where
	if where == "" {
		where = "1=1"
	}
	outFields := opts.OutFields
	if outFields == "" {
		outFields = "*"
	}

	params := map[string]string{
		"where":          where,
		"outFields":      outFields,
		"returnGeometry": strconv.FormatBool(!opts.OmitGeometry),
	}
	for k, v := range opts.Extra {
		params[k] = v
	}

	endpoint := strings.TrimRight(layerURL, "/") + "/query"
	body, err := c.do(ctx, http.MethodGet, endpoint, params)
	if err != nil {
		return nil, err
	}

	var result QueryResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &TransportError{URL: endpoint, Err: fmt.Errorf("decode query result: %w", err)}
	}
	return &result, nil
}

// edit posts JSON-encoded features to an edit endpoint and decodes the named
// result list.
func (c *restClient) edit(ctx context.Context, layerURL, operation string, form map[string]string, resultKey string) ([]EditResult, error) {
	endpoint := strings.TrimRight(layerURL, "/") + "/" + operation
	body, err := c.do(ctx, http.MethodPost, endpoint, form)
	if err != nil {
		return nil, err
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &TransportError{URL: endpoint, Err: fmt.Errorf("decode edit response: %w", err)}
	}

	var results []EditResult
	if raw, ok := payload[resultKey]; ok {
		if err := json.Unmarshal(raw, &results); err != nil {
			return nil, &TransportError{URL: endpoint, Err: fmt.Errorf("decode %s: %w", resultKey, err)}
		}
	}
	return results, nil
}

// AddFeatures implements Client.
func (c *restClient) AddFeatures(ctx context.Context, layerURL string, features []Feature) ([]EditResult, error) {
	encoded, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("encode features: %w", err)
	}
	return c.edit(ctx, layerURL, "addFeatures", map[string]string{"features": string(encoded)}, "addResults")
}

// UpdateFeatures implements Client.
func (c *restClient) UpdateFeatures(ctx context.Context, layerURL string, features []Feature) ([]EditResult, error) {
	encoded, err := json.Marshal(features)
	if err != nil {
		return nil, fmt.Errorf("encode features: %w", err)
	}
	return c.edit(ctx, layerURL, "updateFeatures", map[string]string{"features": string(encoded)}, "updateResults")
}

// DeleteFeatures implements Client.
func (c *restClient) DeleteFeatures(ctx context.Context, layerURL string, where string) ([]EditResult, error) {
	return c.edit(ctx, layerURL, "deleteFeatures", map[string]string{"where": where}, "deleteResults")
}

// ApplyEdits implements Client.
func (c *restClient) ApplyEdits(ctx context.Context, layerURL string, adds, updates []Feature, deleteIDs []int64) (*EditResponse, error) {
	form := map[string]string{}

	if len(adds) > 0 {
		encoded, err := json.Marshal(adds)
		if err != nil {
			return nil, fmt.Errorf("encode adds: %w", err)
		}
		form["adds"] = string(encoded)
	}
	if len(updates) > 0 {
		encoded, err := json.Marshal(updates)
		if err != nil {
			return nil, fmt.Errorf("encode updates: %w", err)
		}
		form["updates"] = string(encoded)
	}
	if len(deleteIDs) > 0 {
		ids := make([]string, len(deleteIDs))
		for i, id := range deleteIDs {
			ids[i] = strconv.FormatInt(id, 10)
		}
		form["deletes"] = strings.Join(ids, ",")
	}

	endpoint := strings.TrimRight(layerURL, "/") + "/applyEdits"
	body, err := c.do(ctx, http.MethodPost, endpoint, form)
	if err != nil {
		return nil, err
	}

	var response EditResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, &TransportError{URL: endpoint, Err: fmt.Errorf("decode applyEdits response: %w", err)}
	}
	return &response, nil
}

// ServiceInfo implements Client.
func (c *restClient) ServiceInfo(ctx context.Context, serviceURL string) (*ServiceInfo, error) {
	endpoint := strings.TrimRight(serviceURL, "/")
	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var info ServiceInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, &TransportError{URL: endpoint, Err: fmt.Errorf("decode service info: %w", err)}
	}
	return &info, nil
}
