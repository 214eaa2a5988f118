package httpclient

import (
	"fmt"
	"net/url"
	"strings"
)

// resolveURL builds the full request URL. Absolute URLs pass through
// verbatim; relative paths are joined to the base URL with exactly one
// separating slash. Query values are encoded onto the result.
func (c *client) resolveURL(rawURL string, query url.Values) (string, error) {
	target := strings.TrimSpace(rawURL)
	if target == "" {
		return "", NewInvalidRequestError("URL cannot be empty", "url")
	}

	if !hasScheme(target) {
		base := strings.TrimSpace(c.config.BaseURL)
		if base == "" {
			return "", NewInvalidRequestError("relative path requires a base URL", "url")
		}
		target = strings.TrimRight(base, "/") + "/" + strings.TrimLeft(target, "/")
	}

	if len(query) == 0 {
		return target, nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", NewInvalidRequestError("cannot parse URL: "+target, "url")
	}
	q := u.Query()
	for key, values := range query {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func hasScheme(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && u.IsAbs()
}

// IsValidURL reports whether candidate parses as an absolute http or https
// URL with a non-empty host. It is a pure function.
func IsValidURL(candidate string) bool {
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// BuildQueryString encodes params into a URL query string, skipping nil
// values. Keys are sorted by the encoder for a stable result.
func BuildQueryString(params map[string]any) string {
	values := url.Values{}
	for key, v := range params {
		if v == nil {
			continue
		}
		values.Set(key, fmt.Sprint(v))
	}
	return values.Encode()
}
