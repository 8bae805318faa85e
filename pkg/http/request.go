package http

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
)

const maxRequestBodyBytes = 1 << 20 // 1 MB

// DecodeJSON decodes a JSON request body into dst with a size cap and
// unknown-field rejection.
func DecodeJSON(r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// ClientIP extracts the client IP from RemoteAddr, dropping the port. Proxy
// headers are handled upstream by chi's RealIP middleware.
func ClientIP(r *http.Request) string {
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}
