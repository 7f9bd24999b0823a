package vkapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	DefaultBaseURL  = "https://api.vk.com/method/"
	DefaultVersion  = "5.131"
	DefaultTimeout  = time.Second * 30
	maxErrorBodyLog = 512
)

// Client makes calls to the API's method endpoints. It is safe to share between tests, but the
// suite only ever uses it from one goroutine.
type Client struct {
	baseURL    string
	version    string
	httpClient *http.Client
	logger     logrus.FieldLogger
}

// Option configures a Client at creation time.
type Option func(*Client)

// WithBaseURL sets the URL that method names are appended to.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithVersion sets the API version sent as the "v" parameter.
func WithVersion(version string) Option {
	return func(c *Client) { c.version = version }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithLogger sets the logger for request/response debug lines.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a Client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		version:    DefaultVersion,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	if !strings.HasSuffix(c.baseURL, "/") {
		c.baseURL += "/"
	}
	if c.logger == nil {
		silent := logrus.New()
		silent.SetOutput(ioutil.Discard)
		c.logger = silent
	}
	return c
}

// Derive returns a copy of the client with more options applied. The copy shares the HTTP
// client unless an option replaces it.
func (c *Client) Derive(opts ...Option) *Client {
	c2 := *c
	for _, o := range opts {
		o(&c2)
	}
	return &c2
}

// Likes returns the request builders for the likes.* methods.
func (c *Client) Likes() *Likes {
	return &Likes{client: c}
}

type envelope struct {
	Response json.RawMessage `json:"response"`
	Error    *errorBody      `json:"error"`
}

type errorBody struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

// params accumulates form parameters for one method call.
type params url.Values

func (p params) setString(key, value string) params {
	url.Values(p).Set(key, value)
	return p
}

func (p params) setInt(key string, value int) params {
	return p.setString(key, strconv.Itoa(value))
}

func (p params) setOptionalInt(key string, value ldvalue.OptionalInt) params {
	if v, ok := value.Get(); ok {
		p.setInt(key, v)
	}
	return p
}

func (c *Client) call(ctx context.Context, method string, actor UserActor, p params, out interface{}) error {
	form := url.Values(p)
	if form == nil {
		form = url.Values{}
	}
	form.Set("access_token", actor.AccessToken)
	form.Set("v", c.version)

	log := c.logger.WithFields(logrus.Fields{
		"method": method,
		"userId": actor.ID,
	})
	log.WithField("params", redactedQuery(form)).Debug("Sending API request")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+method, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("API request failed")
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}
	log = log.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithField("body", truncate(string(body), maxErrorBodyLog)).Warn("Unexpected HTTP status")
		return fmt.Errorf("%s returned HTTP status %d", method, resp.StatusCode)
	}
	log.WithField("body", string(body)).Debug("Received API response")

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("malformed %s response: %w", method, err)
	}
	if env.Error != nil {
		return newError(method, env.Error.Code, env.Error.Message)
	}
	if len(env.Response) == 0 {
		return fmt.Errorf("%s response contained neither a result nor an error", method)
	}
	if err := json.Unmarshal(env.Response, out); err != nil {
		return fmt.Errorf("malformed %s result: %w", method, err)
	}
	return nil
}

func redactedQuery(form url.Values) string {
	copied := url.Values{}
	for k, v := range form {
		if k == "access_token" {
			copied.Set(k, "***")
			continue
		}
		copied[k] = v
	}
	return copied.Encode()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
