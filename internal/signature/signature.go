// Package signature implements the provider's webhook request signature
// scheme: HMAC-SHA1 over the callback URL concatenated with the sorted
// payload fields, base64-encoded.
package signature

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"sort"
	"strings"
)

// Sign computes the expected signature for a callback URL and payload.
func Sign(url string, params map[string]string, authToken string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(url)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(params[k])
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Validate reports whether the supplied signature matches the payload. It is
// false, never an error, when the URL, token or signature is empty. This check
// runs before any authorization or business logic.
func Validate(url string, params map[string]string, sig, authToken string) bool {
	if url == "" || sig == "" || authToken == "" {
		return false
	}

	expected := Sign(url, params, authToken)

	return hmac.Equal([]byte(expected), []byte(sig))
}
