package resilience

import (
	"net/http"
)

// Transport is an http.RoundTripper guarded by a Breaker. It performs no
// retries: a request either passes through once or fails fast with
// ErrOpenCircuit while the upstream is considered down. Responses with a
// 5xx status count as failures.
type Transport struct {
	Base    http.RoundTripper
	Breaker *Breaker
}

// RoundTrip implements http.RoundTripper.
func (t Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.Breaker == nil {
		return base.RoundTrip(req)
	}
	if !t.Breaker.Allow() {
		return nil, ErrOpenCircuit
	}
	resp, err := base.RoundTrip(req)
	t.Breaker.Report(err == nil && resp.StatusCode < http.StatusInternalServerError)
	return resp, err
}
