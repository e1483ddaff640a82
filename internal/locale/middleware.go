package locale

import (
	"net/http"
	"strings"
)

// Supported locale tags. Requests without a locale prefix are redirected
// based on a best-effort geolocation header set by the CDN.
const (
	Dutch   = "nl"
	English = "en"
)

// dutchRegionCountries are served the Dutch storefront by default.
var dutchRegionCountries = map[string]struct{}{
	"NL": {},
	"BE": {},
}

// Supported reports whether the tag is one of the two storefront locales.
func Supported(tag string) bool {
	return tag == Dutch || tag == English
}

// FromPath extracts the locale prefix of a request path, if any.
func FromPath(path string) (string, bool) {
	trimmed := strings.TrimPrefix(path, "/")
	head, _, _ := strings.Cut(trimmed, "/")
	if Supported(head) {
		return head, true
	}
	return "", false
}

// Router redirects unprefixed page requests to a locale-prefixed path.
type Router struct {
	// GeoHeader names the CDN country header, e.g. "X-Vercel-IP-Country".
	GeoHeader string
	// DefaultLocale is used when the geolocation signal is absent or
	// ambiguous.
	DefaultLocale string
}

func (rt Router) defaultLocale() string {
	if Supported(rt.DefaultLocale) {
		return rt.DefaultLocale
	}
	return Dutch
}

// Resolve picks the locale for a request carrying no locale prefix.
func (rt Router) Resolve(r *http.Request) string {
	country := strings.ToUpper(strings.TrimSpace(r.Header.Get(rt.GeoHeader)))
	if country == "" {
		return rt.defaultLocale()
	}
	if _, ok := dutchRegionCountries[country]; ok {
		return Dutch
	}
	return English
}

// Middleware redirects requests without a locale prefix. Locale-prefixed
// requests pass through untouched; this is presentation routing, not part
// of the commerce core.
func (rt Router) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromPath(r.URL.Path); ok {
			next.ServeHTTP(w, r)
			return
		}
		target := "/" + rt.Resolve(r) + r.URL.Path
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusTemporaryRedirect)
	})
}
