package transport

import (
	"net/http"
	"strings"
)

// MethodOverrideHeader carries the real method when it is tunnelled through POST.
const MethodOverrideHeader = "X-HTTP-Method-Override"

// MethodOverrideTransport sends the listed methods as POST with the X-HTTP-Method-Override header,
// for servers and proxies that reject PATCH.
type MethodOverrideTransport struct {
	Base    http.RoundTripper
	Methods []string
}

// NewMethodOverrideTransport overrides PATCH unless other methods are given.
func NewMethodOverrideTransport(base http.RoundTripper, methods ...string) *MethodOverrideTransport {
	if len(methods) == 0 {
		methods = []string{http.MethodPatch}
	}
	return &MethodOverrideTransport{Base: base, Methods: methods}
}

func (t *MethodOverrideTransport) overrides(method string) bool {
	for _, m := range t.Methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

func (t *MethodOverrideTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if !t.overrides(req.Method) {
		return base.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set(MethodOverrideHeader, strings.ToUpper(req.Method))
	clone.Method = http.MethodPost
	if clone.Body == nil {
		// POST without a body still needs an explicit zero length
		clone.Body = http.NoBody
		clone.ContentLength = 0
	}
	return base.RoundTrip(clone)
}
