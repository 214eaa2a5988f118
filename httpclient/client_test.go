package httpclient

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/robinmagnussen/go-devtools/logger"
)

const (
	testContentTypeHdr = "Content-Type"
	testJSONType       = "application/json"
	testBaseURL        = "https://api.example.com"
)

func createTestLogger() logger.Logger {
	return logger.New("error", false)
}

type roundTripperFunc func(*nethttp.Request) (*nethttp.Response, error)

func (f roundTripperFunc) RoundTrip(req *nethttp.Request) (*nethttp.Response, error) {
	return f(req)
}

// stubResponse builds a minimal *http.Response for transport stubs.
func stubResponse(status int, body string) *nethttp.Response {
	return &nethttp.Response{
		StatusCode: status,
		Header:     make(nethttp.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// recordingSleep collects backoff waits instead of sleeping.
func recordingSleep(waits *[]time.Duration) SleepFunc {
	return func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return nil
	}
}

func TestNewClient(t *testing.T) {
	c := NewClient(createTestLogger())
	assert.NotNil(t, c)
}

func TestBuilderDefaults(t *testing.T) {
	built := NewBuilder(createTestLogger()).Build()
	impl, ok := built.(*client)
	require.True(t, ok)

	assert.Equal(t, DefaultTimeout, impl.config.Timeout)
	assert.Equal(t, DefaultMaxRetries, impl.config.MaxRetries)
	assert.Equal(t, DefaultRetryBackoff, impl.config.RetryBackoff)
	assert.Empty(t, impl.config.BaseURL)
	assert.Empty(t, impl.config.DefaultHeaders)
}

func TestBuilderOptions(t *testing.T) {
	t.Run("with base URL and timeout", func(t *testing.T) {
		built := NewBuilder(createTestLogger()).
			WithBaseURL(testBaseURL).
			WithTimeout(5 * time.Second).
			Build()
		impl := built.(*client)
		assert.Equal(t, testBaseURL, impl.config.BaseURL)
		assert.Equal(t, 5*time.Second, impl.httpClient.Timeout)
	})

	t.Run("with retries", func(t *testing.T) {
		built := NewBuilder(createTestLogger()).
			WithRetries(5, 200*time.Millisecond).
			Build()
		impl := built.(*client)
		assert.Equal(t, 5, impl.config.MaxRetries)
		assert.Equal(t, 200*time.Millisecond, impl.config.RetryBackoff)
	})

	t.Run("with default headers", func(t *testing.T) {
		built := NewBuilder(createTestLogger()).
			WithDefaultHeader("X-API-Version", "v1").
			WithDefaultHeader("Accept", testJSONType).
			Build()
		impl := built.(*client)
		assert.Equal(t, "v1", impl.config.DefaultHeaders["X-API-Version"])
		assert.Equal(t, testJSONType, impl.config.DefaultHeaders["Accept"])
	})

	t.Run("with custom http client zero timeout uses builder timeout", func(t *testing.T) {
		custom := &nethttp.Client{}
		built := NewBuilder(createTestLogger()).
			WithHTTPClient(custom).
			WithTimeout(2 * time.Second).
			Build()
		impl := built.(*client)
		assert.Equal(t, 2*time.Second, impl.httpClient.Timeout)
	})

	t.Run("nil sleep func keeps default", func(t *testing.T) {
		built := NewBuilder(createTestLogger()).WithSleepFunc(nil).Build()
		impl := built.(*client)
		assert.NotNil(t, impl.sleep)
	})
}

func TestNewFromConfig(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		c, err := NewFromConfig(Config{
			BaseURL:        testBaseURL,
			Timeout:        10 * time.Second,
			MaxRetries:     2,
			RetryBackoff:   time.Second,
			DefaultHeaders: map[string]string{"Accept": testJSONType},
		}, createTestLogger())
		require.NoError(t, err)
		impl := c.(*client)
		assert.Equal(t, testBaseURL, impl.config.BaseURL)
		assert.Equal(t, 2, impl.config.MaxRetries)
		assert.Equal(t, testJSONType, impl.config.DefaultHeaders["Accept"])
	})

	t.Run("zero config uses defaults", func(t *testing.T) {
		c, err := NewFromConfig(Config{}, createTestLogger())
		require.NoError(t, err)
		impl := c.(*client)
		assert.Equal(t, DefaultTimeout, impl.config.Timeout)
		assert.Equal(t, DefaultMaxRetries, impl.config.MaxRetries)
	})

	t.Run("invalid base URL rejected", func(t *testing.T) {
		_, err := NewFromConfig(Config{BaseURL: "not a url"}, createTestLogger())
		require.Error(t, err)
		assert.True(t, IsErrorType(err, InvalidRequestError))
	})
}

func TestDoRetriesOn503(t *testing.T) {
	var attempts int32
	transport := roundTripperFunc(func(_ *nethttp.Request) (*nethttp.Response, error) {
		atomic.AddInt32(&attempts, 1)
		return stubResponse(nethttp.StatusServiceUnavailable, "unavailable"), nil
	})

	var waits []time.Duration
	backoff := 100 * time.Millisecond
	c := NewBuilder(createTestLogger()).
		WithTransport(transport).
		WithRetries(2, backoff).
		WithSleepFunc(recordingSleep(&waits)).
		Build()

	resp, err := c.Get(context.Background(), &Request{URL: "https://svc.example.com/health"})

	// max_retries=2 means exactly 3 attempts with linear backoff between.
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.Equal(t, []time.Duration{1 * backoff, 2 * backoff}, waits)

	require.NotNil(t, resp)
	assert.Equal(t, nethttp.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, 3, resp.Stats.Attempts)
	assert.True(t, IsHTTPStatusError(err, nethttp.StatusServiceUnavailable))
}

func TestDoRetryableStatuses(t *testing.T) {
	for _, status := range []int{429, 500, 502, 503, 504} {
		t.Run(fmt.Sprintf("status %d", status), func(t *testing.T) {
			var attempts int32
			transport := roundTripperFunc(func(_ *nethttp.Request) (*nethttp.Response, error) {
				atomic.AddInt32(&attempts, 1)
				return stubResponse(status, ""), nil
			})

			var waits []time.Duration
			c := NewBuilder(createTestLogger()).
				WithTransport(transport).
				WithRetries(1, time.Millisecond).
				WithSleepFunc(recordingSleep(&waits)).
				Build()

			resp, _ := c.Get(context.Background(), &Request{URL: "https://svc.example.com/"})
			assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
			assert.Equal(t, status, resp.StatusCode)
		})
	}
}

func TestDoNonRetryableStatusSingleAttempt(t *testing.T) {
	var attempts int32
	transport := roundTripperFunc(func(_ *nethttp.Request) (*nethttp.Response, error) {
		atomic.AddInt32(&attempts, 1)
		return stubResponse(nethttp.StatusNotFound, "missing"), nil
	})

	var waits []time.Duration
	c := NewBuilder(createTestLogger()).
		WithTransport(transport).
		WithRetries(5, time.Second).
		WithSleepFunc(recordingSleep(&waits)).
		Build()

	resp, err := c.Get(context.Background(), &Request{URL: "https://svc.example.com/missing"})

	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	assert.Empty(t, waits)
	require.NotNil(t, resp)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1, resp.Stats.Attempts)
	assert.True(t, IsErrorType(err, HTTPError))
}

func TestDoRetriesTransportErrors(t *testing.T) {
	var attempts int32
	transport := roundTripperFunc(func(_ *nethttp.Request) (*nethttp.Response, error) {
		atomic.AddInt32(&attempts, 1)
		return nil, fmt.Errorf("connection refused")
	})

	var waits []time.Duration
	c := NewBuilder(createTestLogger()).
		WithTransport(transport).
		WithRetries(2, 10*time.Millisecond).
		WithSleepFunc(recordingSleep(&waits)).
		Build()

	resp, err := c.Get(context.Background(), &Request{URL: "https://down.example.com/"})

	assert.Nil(t, resp)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
	assert.True(t, IsErrorType(err, NetworkError))
}

func TestDoRecoversAfterTransientFailure(t *testing.T) {
	var attempts int32
	transport := roundTripperFunc(func(_ *nethttp.Request) (*nethttp.Response, error) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return stubResponse(nethttp.StatusBadGateway, ""), nil
		}
		return stubResponse(nethttp.StatusOK, `{"ok":true}`), nil
	})

	var waits []time.Duration
	c := NewBuilder(createTestLogger()).
		WithTransport(transport).
		WithRetries(3, time.Millisecond).
		WithSleepFunc(recordingSleep(&waits)).
		Build()

	resp, err := c.Get(context.Background(), &Request{URL: "https://flaky.example.com/"})

	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, resp.Stats.Attempts)
	assert.Len(t, waits, 2)
}

func TestDoZeroRetries(t *testing.T) {
	var attempts int32
	transport := roundTripperFunc(func(_ *nethttp.Request) (*nethttp.Response, error) {
		atomic.AddInt32(&attempts, 1)
		return stubResponse(nethttp.StatusServiceUnavailable, ""), nil
	})

	c := NewBuilder(createTestLogger()).
		WithTransport(transport).
		WithRetries(0, time.Second).
		Build()

	resp, _ := c.Get(context.Background(), &Request{URL: "https://svc.example.com/"})
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
	assert.Equal(t, 1, resp.Stats.Attempts)
}

func TestHeaderMergePrecedence(t *testing.T) {
	var got nethttp.Header
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		got = r.Header.Clone()
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer server.Close()

	c := NewBuilder(createTestLogger()).
		WithBaseURL(server.URL).
		WithDefaultHeader("X", "1").
		Build()
	require.NoError(t, c.SetAuth(AuthBearer, Credentials{Token: "tok"}))

	// Per-call header overrides the auth-derived Authorization header,
	// case-insensitively.
	_, err := c.Get(context.Background(), &Request{
		URL:     "/resource",
		Headers: map[string]string{"authorization": "Override"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Override", got.Get("Authorization"))
	assert.Equal(t, "1", got.Get("X"))
}

func TestAuthHeaderApplied(t *testing.T) {
	var got nethttp.Header
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		got = r.Header.Clone()
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer server.Close()

	c := NewBuilder(createTestLogger()).WithBaseURL(server.URL).Build()
	require.NoError(t, c.SetAuth(AuthBasic, Credentials{Username: "u", Password: "p"}))

	_, err := c.Get(context.Background(), &Request{URL: "/secure"})
	require.NoError(t, err)

	expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("u:p"))
	assert.Equal(t, expected, got.Get("Authorization"))
}

func TestRequestIDInjected(t *testing.T) {
	var got nethttp.Header
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		got = r.Header.Clone()
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer server.Close()

	c := NewBuilder(createTestLogger()).WithBaseURL(server.URL).Build()
	_, err := c.Get(context.Background(), &Request{URL: "/"})
	require.NoError(t, err)

	assert.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestJSONBodyEncoding(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotContentType = r.Header.Get(testContentTypeHdr)
		w.WriteHeader(nethttp.StatusCreated)
	}))
	defer server.Close()

	c := NewBuilder(createTestLogger()).WithBaseURL(server.URL).Build()
	resp, err := c.Post(context.Background(), &Request{
		URL:      "/things",
		JSONBody: map[string]string{"name": "widget"},
	})
	require.NoError(t, err)

	assert.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"name":"widget"}`, string(gotBody))
	assert.Equal(t, testJSONType, gotContentType)
}

func TestConflictingBodiesRejectedBeforeNetwork(t *testing.T) {
	var attempts int32
	transport := roundTripperFunc(func(_ *nethttp.Request) (*nethttp.Response, error) {
		atomic.AddInt32(&attempts, 1)
		return stubResponse(nethttp.StatusOK, ""), nil
	})

	c := NewBuilder(createTestLogger()).WithTransport(transport).Build()
	resp, err := c.Post(context.Background(), &Request{
		URL:      "https://svc.example.com/",
		JSONBody: map[string]string{"a": "b"},
		RawBody:  []byte("raw"),
	})

	assert.Nil(t, resp)
	assert.True(t, IsErrorType(err, InvalidRequestError))
	assert.Equal(t, int32(0), atomic.LoadInt32(&attempts), "no network call should be attempted")
}

func TestNilRequestRejected(t *testing.T) {
	c := NewClient(createTestLogger())
	_, err := c.Get(context.Background(), nil)
	assert.True(t, IsErrorType(err, InvalidRequestError))
}

func TestSetHeadersMerges(t *testing.T) {
	built := NewBuilder(createTestLogger()).
		WithDefaultHeader("A", "1").
		WithDefaultHeader("B", "2").
		Build()
	built.SetHeaders(map[string]string{"B": "changed", "C": "3"})

	impl := built.(*client)
	assert.Equal(t, "1", impl.config.DefaultHeaders["A"])
	assert.Equal(t, "changed", impl.config.DefaultHeaders["B"])
	assert.Equal(t, "3", impl.config.DefaultHeaders["C"])
}

func TestQueryParamsEncoded(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		gotQuery = r.URL.RawQuery
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer server.Close()

	c := NewBuilder(createTestLogger()).WithBaseURL(server.URL).Build()
	_, err := c.Get(context.Background(), &Request{
		URL:   "/search",
		Query: map[string][]string{"q": {"golang"}, "limit": {"10"}},
	})
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "q=golang")
	assert.Contains(t, gotQuery, "limit=10")
}

func TestContextCancellationStopsRetries(t *testing.T) {
	var attempts int32
	transport := roundTripperFunc(func(_ *nethttp.Request) (*nethttp.Response, error) {
		atomic.AddInt32(&attempts, 1)
		return stubResponse(nethttp.StatusServiceUnavailable, ""), nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	c := NewBuilder(createTestLogger()).
		WithTransport(transport).
		WithRetries(10, time.Second).
		WithSleepFunc(func(_ context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		}).
		Build()

	_, err := c.Get(ctx, &Request{URL: "https://svc.example.com/"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestDeleteAndPutMethods(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		gotMethod = r.Method
		w.WriteHeader(nethttp.StatusOK)
	}))
	defer server.Close()

	c := NewBuilder(createTestLogger()).WithBaseURL(server.URL).Build()

	_, err := c.Put(context.Background(), &Request{URL: "/item", RawBody: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, nethttp.MethodPut, gotMethod)

	_, err = c.Delete(context.Background(), &Request{URL: "/item"})
	require.NoError(t, err)
	assert.Equal(t, nethttp.MethodDelete, gotMethod)
}

// brokenBody fails partway through reading, like a dropped connection.
type brokenBody struct{}

func (brokenBody) Read([]byte) (int, error) {
	return 0, errors.New("read tcp 127.0.0.1:443: connection reset by peer")
}

func (brokenBody) Close() error { return nil }

func TestDoRetriesOnBodyReadFailure(t *testing.T) {
	t.Run("recovers after interrupted bodies", func(t *testing.T) {
		var calls int32
		transport := roundTripperFunc(func(_ *nethttp.Request) (*nethttp.Response, error) {
			n := atomic.AddInt32(&calls, 1)
			if n < 3 {
				return &nethttp.Response{
					StatusCode: nethttp.StatusOK,
					Header:     make(nethttp.Header),
					Body:       brokenBody{},
				}, nil
			}
			return stubResponse(nethttp.StatusOK, `{"ok":true}`), nil
		})

		var waits []time.Duration
		built := NewBuilder(createTestLogger()).
			WithBaseURL(testBaseURL).
			WithRetries(3, 10*time.Millisecond).
			WithSleepFunc(recordingSleep(&waits)).
			WithTransport(transport).
			Build()

		resp, err := built.Get(context.Background(), &Request{URL: "/resource"})
		require.NoError(t, err)
		assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
		assert.Equal(t, 3, resp.Stats.Attempts)
		assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, waits)
	})

	t.Run("surfaces the last error after exhaustion", func(t *testing.T) {
		var calls int32
		transport := roundTripperFunc(func(_ *nethttp.Request) (*nethttp.Response, error) {
			atomic.AddInt32(&calls, 1)
			return &nethttp.Response{
				StatusCode: nethttp.StatusOK,
				Header:     make(nethttp.Header),
				Body:       brokenBody{},
			}, nil
		})

		var waits []time.Duration
		built := NewBuilder(createTestLogger()).
			WithBaseURL(testBaseURL).
			WithRetries(2, time.Millisecond).
			WithSleepFunc(recordingSleep(&waits)).
			WithTransport(transport).
			Build()

		resp, err := built.Get(context.Background(), &Request{URL: "/resource"})
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.True(t, IsErrorType(err, NetworkError))
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
		assert.Len(t, waits, 2)
	})
}

func TestDoWithRateLimiter(t *testing.T) {
	t.Run("permissive limiter lets requests through", func(t *testing.T) {
		var calls int32
		transport := roundTripperFunc(func(_ *nethttp.Request) (*nethttp.Response, error) {
			atomic.AddInt32(&calls, 1)
			return stubResponse(nethttp.StatusOK, "ok"), nil
		})

		built := NewBuilder(createTestLogger()).
			WithBaseURL(testBaseURL).
			WithRateLimiter(rate.NewLimiter(rate.Inf, 1)).
			WithTransport(transport).
			Build()

		resp, err := built.Get(context.Background(), &Request{URL: "/resource"})
		require.NoError(t, err)
		assert.Equal(t, nethttp.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("limiter wait failure stops before the transport", func(t *testing.T) {
		var calls int32
		transport := roundTripperFunc(func(_ *nethttp.Request) (*nethttp.Response, error) {
			atomic.AddInt32(&calls, 1)
			return stubResponse(nethttp.StatusOK, "ok"), nil
		})

		// A zero-burst limiter can never admit a request.
		built := NewBuilder(createTestLogger()).
			WithBaseURL(testBaseURL).
			WithRateLimiter(rate.NewLimiter(1, 0)).
			WithTransport(transport).
			Build()

		resp, err := built.Get(context.Background(), &Request{URL: "/resource"})
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
	})
}

func TestBuildSnapshotsConfig(t *testing.T) {
	var got []string
	transport := roundTripperFunc(func(req *nethttp.Request) (*nethttp.Response, error) {
		got = append(got, req.Header.Get("X-Extra"))
		return stubResponse(nethttp.StatusOK, "ok"), nil
	})

	b := NewBuilder(createTestLogger()).
		WithBaseURL(testBaseURL).
		WithTransport(transport)
	first := b.Build()
	second := b.Build()

	first.SetHeaders(map[string]string{"X-Extra": "only-first"})

	_, err := first.Get(context.Background(), &Request{URL: "/resource"})
	require.NoError(t, err)
	_, err = second.Get(context.Background(), &Request{URL: "/resource"})
	require.NoError(t, err)

	assert.Equal(t, []string{"only-first", ""}, got)
}
