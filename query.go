package petango

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxResponseSize = 10 * 1024 * 1024

// QueryOptions adjusts a single Query call.
type QueryOptions struct {
	// Endpoint is appended to the base URL; empty queries the base URL.
	Endpoint string
	// Method overrides POST.
	Method string
	// Headers are added after the client's own headers.
	Headers http.Header
}

// searchDefaults is the complete AdoptableSearch parameter set.
var searchDefaults = map[string]string{
	"authkey":        "",
	"speciesID":      "0",
	"sex":            "A",
	"ageGroup":       "All",
	"location":       "",
	"site":           "",
	"onHold":         "A",
	"orderBy":        "ID",
	"primaryBreed":   "All",
	"secondaryBreed": "All",
	"specialNeeds":   "",
	"noDogs":         "",
	"noCats":         "",
	"noKids":         "",
	"stageID":        "",
}

// SearchDefaults returns a copy of the default AdoptableSearch parameters.
func SearchDefaults() map[string]string {
	m := make(map[string]string, len(searchDefaults))
	for k, v := range searchDefaults {
		m[k] = v
	}
	return m
}

// SearchArgs merges overrides over the default search parameters, coercing
// every value to its form string.
func (c *Client) SearchArgs(overrides map[string]any) map[string]string {
	args := SearchDefaults()
	for k, v := range overrides {
		args[k] = FormValue(v)
	}
	return args
}

// FormValue renders v the way the service expects form values: nil and
// false are empty, true is "1", numbers are decimal.
func FormValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "1"
		}
		return ""
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case Species:
		return val.ID()
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// Query posts args plus the auth key to the service and returns the raw
// response body. An unusable endpoint URL is reported as InvalidArgument
// without any request being made; network failures and non-2xx answers are
// TransportErrors. Both return "".
func (c *Client) Query(ctx context.Context, args map[string]string, opts QueryOptions) (string, error) {
	form := make(url.Values, len(args)+1)
	for k, v := range args {
		form.Set(k, v)
	}
	form.Set("authkey", c.authToken)

	label := endpointLabel(opts.Endpoint)
	target := c.EndpointURL(opts.Endpoint)
	if target == "" {
		c.logger.Error("Invalid URL provided to Query", "baseURL", c.baseURL, "endpoint", opts.Endpoint)
		return "", &Error{
			Kind:     ErrorKindInvalidArgument,
			Message:  "invalid endpoint URL",
			Endpoint: opts.Endpoint,
		}
	}
	if c.httpClient == nil {
		c.logger.Error("No HTTP client configured", "endpoint", label)
		return "", &Error{Kind: ErrorKindTransport, Message: "no HTTP client configured", Endpoint: opts.Endpoint}
	}

	method := http.MethodPost
	if opts.Method != "" {
		method = strings.ToUpper(opts.Method)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, strings.NewReader(form.Encode()))
	if err != nil {
		c.logger.Error("Cannot build request", "endpoint", label, "error", err)
		return "", &Error{Kind: ErrorKindTransport, Message: "cannot build request", Cause: err, Endpoint: opts.Endpoint}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", UserAgent())
	copyHeaders(req.Header, c.headers)
	copyHeaders(req.Header, opts.Headers)

	c.logger.Debug("Starting request", "method", method, "endpoint", label)

	start := time.Now()
	resp, err := c.executeMiddleware(req)
	if err != nil {
		c.metrics.RecordRequest(label, 0, time.Since(start))
		c.logger.Error("Request to adoption service failed", "endpoint", label, "error", err)
		return "", &Error{Kind: ErrorKindTransport, Message: "request failed", Cause: err, Endpoint: opts.Endpoint}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	c.metrics.RecordRequest(label, resp.StatusCode, time.Since(start))
	if err != nil {
		c.logger.Error("Cannot read response body", "endpoint", label, "error", err)
		return "", &Error{
			Kind:       ErrorKindTransport,
			Message:    "cannot read response body",
			Cause:      err,
			Endpoint:   opts.Endpoint,
			StatusCode: resp.StatusCode,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Adoption service returned an error status", "endpoint", label, "statusCode", resp.StatusCode)
		return "", &Error{
			Kind:       ErrorKindTransport,
			Message:    fmt.Sprintf("unexpected status %d", resp.StatusCode),
			Endpoint:   opts.Endpoint,
			StatusCode: resp.StatusCode,
			Document:   string(body),
		}
	}

	return string(body), nil
}

func copyHeaders(dst, src http.Header) {
	for k, vs := range src {
		dst.Del(k)
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}

func endpointLabel(endpoint string) string {
	if endpoint == "" {
		return "base"
	}
	return strings.TrimLeft(endpoint, " /")
}

// redact drops the auth key before args are logged or attached to errors.
func redact(args map[string]string) map[string]string {
	out := make(map[string]string, len(args))
	for k, v := range args {
		if k == "authkey" {
			continue
		}
		out[k] = v
	}
	return out
}
