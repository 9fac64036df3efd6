// Package payload decodes the raw webhook body into a flat field map.
package payload

import (
	"encoding/base64"
	"fmt"
	"net/url"
)

// Decode parses a form-encoded request body, base64-unwrapping it first when
// the transport flagged it. Repeated keys keep only their first value; blank
// values are preserved as empty strings.
func Decode(body string, isBase64 bool) (map[string]string, error) {
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, fmt.Errorf("decode base64 body: %w", err)
		}
		body = string(decoded)
	}

	values, err := url.ParseQuery(body)
	if err != nil {
		return nil, fmt.Errorf("parse form body: %w", err)
	}

	fields := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			fields[key] = vals[0]
		} else {
			fields[key] = ""
		}
	}

	return fields, nil
}
