package petango

import (
	"crypto/tls"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bigwing/petango/internal/singleflight"
)

const (
	// DefaultBaseURL is the PetAndGo adoption web service.
	DefaultBaseURL = "https://ws.petango.com/webservices/wsadoption.asmx"

	// DefaultCacheTTL applies to both searches and pet details.
	DefaultCacheTTL = 15 * time.Minute

	// DefaultTimeout bounds a single request to the service.
	DefaultTimeout = 30 * time.Second

	// EndpointAdoptableSearch lists adoptable animals.
	EndpointAdoptableSearch = "AdoptableSearch"

	// EndpointAdoptableDetails describes one animal.
	EndpointAdoptableDetails = "AdoptableDetails"
)

// Middleware wraps the request sent to the service.
type Middleware func(req *http.Request, next RoundTripper) (*http.Response, error)

// RoundTripper represents the HTTP transport interface
type RoundTripper interface {
	RoundTrip(*http.Request) (*http.Response, error)
}

// RoundTripperFunc is a helper type for middleware
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Client queries the PetAndGo adoption service and caches parsed results.
// It is immutable after New and safe for concurrent use.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	timeout    time.Duration
	timeoutSet bool
	headers    http.Header
	middleware []Middleware
	cache      Cache
	cacheTTL   time.Duration
	coalesce   bool
	logger     Logger
	metrics    *MetricsCollector

	parser          *Parser
	aside           *cacheAside
	validationError error
}

// New constructs a Client authenticating with authKey. Configuration problems
// do not fail construction; check IsValid / ValidationError.
func New(authKey string, options ...Option) *Client {
	client := &Client{
		baseURL:    DefaultBaseURL,
		authToken:  authKey,
		httpClient: newHTTPClient(DefaultTimeout),
		timeout:    DefaultTimeout,
		headers:    make(http.Header),
		middleware: []Middleware{},
		cache:      NewInMemoryCache(),
		cacheTTL:   DefaultCacheTTL,
		logger:     NopLogger{},
	}

	for _, option := range options {
		option(client)
	}

	if client.logger == nil {
		client.logger = NopLogger{}
	}

	client.parser = NewParser(client.logger)
	client.aside = &cacheAside{
		cache:   client.cache,
		logger:  client.logger,
		metrics: client.metrics,
	}
	if client.coalesce {
		client.aside.group = singleflight.New[[]byte]()
	}

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}

	return client
}

// newHTTPClient speaks HTTP/1.1 only and lets the transport negotiate gzip.
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ForceAttemptHTTP2 = false
	transport.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
	transport.DisableCompression = false

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// BaseURL returns the configured service URL as given.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// AuthToken returns the key sent as authkey.
func (c *Client) AuthToken() string {
	return c.authToken
}

// Cache returns the cache in use, nil when caching is disabled.
func (c *Client) Cache() Cache {
	return c.cache
}

// Metrics returns the metrics collector, possibly nil.
func (c *Client) Metrics() *MetricsCollector {
	return c.metrics
}

// EndpointURL joins the base URL and endpoint. It returns "" unless the
// result is an absolute http or https URL.
func (c *Client) EndpointURL(endpoint string) string {
	raw := strings.TrimRight(strings.TrimSpace(c.baseURL), "/")
	if endpoint = strings.TrimLeft(endpoint, " /"); endpoint != "" {
		raw = raw + "/" + endpoint
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	if u.Host == "" || u.Hostname() == "" {
		return ""
	}

	return u.String()
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

func (c *Client) executeMiddleware(req *http.Request) (*http.Response, error) {
	if len(c.middleware) == 0 {
		return c.httpClient.Do(req)
	}

	current := RoundTripperFunc(c.httpClient.Do)

	for i := len(c.middleware) - 1; i >= 0; i-- {
		middleware := c.middleware[i]
		next := current
		current = RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return middleware(r, next)
		})
	}

	return current.RoundTrip(req)
}
