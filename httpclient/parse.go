package httpclient

import (
	"encoding/json"
)

// ParseMode selects how ParseResponse decodes a response body.
type ParseMode string

const (
	ParseJSON  ParseMode = "json"
	ParseText  ParseMode = "text"
	ParseBytes ParseMode = "bytes"
)

// ParseResponse decodes the response body according to mode: any JSON
// value for ParseJSON, string for ParseText, []byte for ParseBytes. A body
// that is not valid JSON fails with a ResponseParseError, as does an
// unknown mode. Pure function; the response is not mutated.
func ParseResponse(resp *Response, mode ParseMode) (any, error) {
	if resp == nil {
		return nil, NewResponseParseError("response is nil", nil)
	}
	switch mode {
	case ParseJSON:
		var decoded any
		if err := json.Unmarshal(resp.Body, &decoded); err != nil {
			return nil, NewResponseParseError("body is not valid JSON", err)
		}
		return decoded, nil
	case ParseText:
		return string(resp.Body), nil
	case ParseBytes:
		return resp.Body, nil
	default:
		return nil, NewResponseParseError("unknown parse mode: "+string(mode), nil)
	}
}

// DecodeJSON unmarshals the response body into v, failing with a
// ResponseParseError on invalid JSON.
func DecodeJSON(resp *Response, v any) error {
	if resp == nil {
		return NewResponseParseError("response is nil", nil)
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return NewResponseParseError("body is not valid JSON", err)
	}
	return nil
}
