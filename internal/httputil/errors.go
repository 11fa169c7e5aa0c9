package httputil

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

const maxPlainMessage = 512

// Error is the single failure shape produced by Client.
// Its message is what users see.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// ErrorMessage turns an error response body into one readable string.
//
// Precedence: a bare string body, then "message", then "error", then the
// elements of an array body, then every leaf value of an object body.
// Array and object parts are joined with " | ". When nothing usable is found
// the generic "HTTP error! status: <code>" is returned.
func ErrorMessage(status int, body []byte) string {
	if msg := extractMessage(body); msg != "" {
		return msg
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}

func extractMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	if !gjson.ValidBytes(trimmed) {
		text := string(trimmed)
		if len(text) > maxPlainMessage {
			text = text[:maxPlainMessage]
		}
		return text
	}

	res := gjson.ParseBytes(trimmed)
	switch {
	case res.Type == gjson.String:
		return res.String()
	case res.IsArray():
		return strings.Join(leaves(res), " | ")
	case res.IsObject():
		for _, key := range []string{"message", "error"} {
			if field := res.Get(key); truthy(field) {
				if field.IsObject() || field.IsArray() {
					return strings.Join(leaves(field), " | ")
				}
				return field.String()
			}
		}
		return strings.Join(leaves(res), " | ")
	}
	return ""
}

// leaves collects scalar values depth-first in document order.
func leaves(res gjson.Result) []string {
	var out []string
	var walk func(gjson.Result)
	walk = func(r gjson.Result) {
		switch {
		case r.IsObject() || r.IsArray():
			r.ForEach(func(_, value gjson.Result) bool {
				walk(value)
				return true
			})
		case r.Type == gjson.String:
			if s := r.String(); s != "" {
				out = append(out, s)
			}
		case r.Type == gjson.Null:
		default:
			out = append(out, r.Raw)
		}
	}
	walk(res)
	return out
}

func truthy(r gjson.Result) bool {
	if !r.Exists() {
		return false
	}
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return r.String() != ""
	case gjson.Number:
		return r.Num != 0
	}
	return true
}
