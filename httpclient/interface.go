package httpclient

import (
	"context"
	nethttp "net/http"
	"net/url"
	"time"
)

// Client defines the REST client interface for making HTTP requests.
type Client interface {
	Get(ctx context.Context, req *Request) (*Response, error)
	Post(ctx context.Context, req *Request) (*Response, error)
	Put(ctx context.Context, req *Request) (*Response, error)
	Delete(ctx context.Context, req *Request) (*Response, error)
	Do(ctx context.Context, method string, req *Request) (*Response, error)
	SetAuth(kind AuthKind, creds Credentials) error
	SetHeaders(headers map[string]string)
	DownloadFile(ctx context.Context, rawURL, destPath string) error
	UploadFile(ctx context.Context, rawURL, srcPath string) (*Response, error)
}

// Request represents an HTTP request. URL may be an absolute URL or a path
// relative to the client's base URL. JSONBody and RawBody are mutually
// exclusive.
type Request struct {
	URL      string
	Query    url.Values
	Headers  map[string]string
	JSONBody any
	RawBody  []byte
}

// Response represents an HTTP response with tracking information.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    nethttp.Header
	Stats      Stats
}

// Stats contains request execution statistics. Attempts counts the total
// transport attempts made for the request, so callers can tell a
// first-attempt failure from retry exhaustion.
type Stats struct {
	ElapsedTime time.Duration
	CallCount   int64
	Attempts    int
}

// SleepFunc delays between retry attempts. It is injectable so tests can
// run the retry loop without real sleeps.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config holds the REST client configuration. Header and auth mutation is
// not synchronized with in-flight requests; configure the client before
// sharing it across goroutines.
type Config struct {
	BaseURL        string            `validate:"omitempty,url"`
	DefaultHeaders map[string]string `validate:"-"`
	Timeout        time.Duration     `validate:"min=0"`
	MaxRetries     int               `validate:"min=0"`
	RetryBackoff   time.Duration     `validate:"min=0"`
}
