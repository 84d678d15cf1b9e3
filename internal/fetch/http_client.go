package fetch

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// ClientOptions for the fetch client.
type ClientOptions struct {
	Timeout   time.Duration
	UserAgent string
	// RetryMax is the number of retries after the first attempt. Zero means
	// a single attempt.
	RetryMax int
	// DenyInternal refuses connections to loopback, private and link-local
	// addresses. Set it for clients that fetch user-influenced URLs.
	DenyInternal bool
	Logger       *zap.Logger
}

// Client is a small wrapper around retryablehttp to provide timeouts and UA.
type Client struct {
	inner     *retryablehttp.Client
	userAgent string
}

// NewClient creates a new Client.
func NewClient(opts ClientOptions) *Client {
	r := retryablehttp.NewClient()
	r.RetryMax = opts.RetryMax
	r.HTTPClient.Timeout = opts.Timeout
	r.RetryWaitMin = 200 * time.Millisecond
	r.RetryWaitMax = 2 * time.Second
	// hand the last response back instead of a generic "giving up" error
	r.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if opts.DenyInternal {
		if t, ok := r.HTTPClient.Transport.(*http.Transport); ok {
			dialer := &net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
				Control:   denyInternal,
			}
			t.DialContext = dialer.DialContext
			t.Proxy = nil
		}
	}
	if opts.Logger != nil {
		r.Logger = leveledLogger{opts.Logger.Sugar()}
	} else {
		r.Logger = nil
	}
	return &Client{inner: r, userAgent: opts.UserAgent}
}

// Get issues a GET request bound to ctx. The caller closes the body.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.inner.Do(req)
}

// leveledLogger bridges retryablehttp's logger to zap.
type leveledLogger struct {
	s *zap.SugaredLogger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, keysAndValues...)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Infow(msg, keysAndValues...)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.s.Warnw(msg, keysAndValues...)
}
