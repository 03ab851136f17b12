package binanceclient

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// params is an insertion-ordered parameter list. Ordering is semantically
// significant for signing: the exchange verifies the signature against the
// query string exactly as sent, so net/url.Values (which sorts keys on
// Encode) cannot be used here.
type params struct {
	pairs []paramPair
}

type paramPair struct {
	key   string
	value string
}

// Set appends a key/value pair, preserving insertion order.
func (p *params) Set(key, value string) {
	p.pairs = append(p.pairs, paramPair{key: key, value: value})
}

// Get returns the first value for key, or "" if absent.
func (p *params) Get(key string) string {
	for _, pair := range p.pairs {
		if pair.key == key {
			return pair.value
		}
	}
	return ""
}

// Encode joins the pairs as key=value with & separators, in insertion order.
// Parameter values on this API are plain alphanumerics, so no percent
// escaping is applied - escaping would also corrupt the signed payload.
func (p *params) Encode() string {
	var sb strings.Builder
	for i, pair := range p.pairs {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(pair.key)
		sb.WriteByte('=')
		sb.WriteString(pair.value)
	}
	return sb.String()
}

// Sign computes an HMAC-SHA256 hex digest of the encoded parameters keyed by
// secretKey and appends it under the "signature" key. Existing entries are
// left untouched; the signature must be the final parameter so the payload
// the exchange reconstructs matches the one that was signed.
func (p *params) Sign(secretKey string) {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(p.Encode()))
	p.Set("signature", hex.EncodeToString(mac.Sum(nil)))
}
