package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	// AllowOrigins lists origins permitted to make cross-origin requests.
	// Empty, or a single "*" entry, allows every origin.
	AllowOrigins []string

	// AllowMethods lists HTTP methods permitted in actual requests.
	// Empty defaults to "GET, POST, PUT, DELETE, OPTIONS".
	AllowMethods []string

	// AllowHeaders lists request headers clients may send. When empty the
	// preflight response echoes Access-Control-Request-Headers back.
	AllowHeaders []string

	// ExposeHeaders lists response headers scripts may read.
	ExposeHeaders []string

	// AllowCredentials permits cookies and Authorization headers on
	// cross-origin requests. Incompatible with the "*" origin, so enabling
	// it forces specific-origin echo even when AllowOrigins is empty.
	AllowCredentials bool

	// MaxAge is the preflight cache lifetime in seconds. Zero omits the
	// header; negative sends "0".
	MaxAge int
}

// corsHeaders holds the precomputed header values shared by all requests.
type corsHeaders struct {
	allowAll    bool
	origins     map[string]string // lowercase -> configured case
	methods     string
	headers     string
	expose      string
	maxAge      string
	credentials bool
}

func buildCORSHeaders(cfg CORSConfig) corsHeaders {
	h := corsHeaders{
		allowAll:    len(cfg.AllowOrigins) == 0,
		origins:     make(map[string]string, len(cfg.AllowOrigins)),
		methods:     strings.Join(cfg.AllowMethods, ", "),
		headers:     strings.Join(cfg.AllowHeaders, ", "),
		expose:      strings.Join(cfg.ExposeHeaders, ", "),
		credentials: cfg.AllowCredentials,
	}

	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			h.allowAll = true
			break
		}
		h.origins[strings.ToLower(o)] = o
	}
	if h.credentials {
		// Browsers reject "*" together with credentials; echo the specific
		// origin instead.
		h.allowAll = false
	}

	if h.methods == "" {
		h.methods = "GET, POST, PUT, DELETE, OPTIONS"
	}
	switch {
	case cfg.MaxAge > 0:
		h.maxAge = strconv.Itoa(cfg.MaxAge)
	case cfg.MaxAge < 0:
		h.maxAge = "0"
	}

	return h
}

// allowOrigin returns the Access-Control-Allow-Origin value for the given
// request origin, or "" when the origin is not allowed. Matching is
// case-insensitive; the configured-case value is echoed.
func (h corsHeaders) allowOrigin(origin string) string {
	if h.allowAll {
		return "*"
	}
	return h.origins[strings.ToLower(origin)]
}

// CORS returns a middleware handling Cross-Origin Resource Sharing,
// including preflight requests. Vary headers are always set so shared
// caches never serve a response for one origin to another.
func CORS(cfg CORSConfig) Middleware {
	hdrs := buildCORSHeaders(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// Same-origin or non-browser request. Still vary on Origin when
			// responses differ per origin.
			if origin == "" {
				if !hdrs.allowAll {
					w.Header().Add("Vary", "Origin")
				}
				next.ServeHTTP(w, r)
				return
			}

			if isPreflight(r) {
				hdrs.writePreflight(w, r, origin)
				return
			}

			if !hdrs.allowAll {
				w.Header().Add("Vary", "Origin")
			}
			if allow := hdrs.allowOrigin(origin); allow != "" {
				w.Header().Set("Access-Control-Allow-Origin", allow)
				if hdrs.credentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				if hdrs.expose != "" {
					w.Header().Set("Access-Control-Expose-Headers", hdrs.expose)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
}

// writePreflight answers an OPTIONS preflight with 204. A disallowed origin
// still gets 204, just without any Access-Control headers.
func (h corsHeaders) writePreflight(w http.ResponseWriter, r *http.Request, origin string) {
	w.Header().Add("Vary", "Origin")
	w.Header().Add("Vary", "Access-Control-Request-Method")
	w.Header().Add("Vary", "Access-Control-Request-Headers")

	allow := h.allowOrigin(origin)
	if allow == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", allow)
	w.Header().Set("Access-Control-Allow-Methods", h.methods)

	if h.headers != "" {
		w.Header().Set("Access-Control-Allow-Headers", h.headers)
	} else if rh := r.Header.Get("Access-Control-Request-Headers"); rh != "" {
		w.Header().Set("Access-Control-Allow-Headers", rh)
	}
	if h.credentials {
		w.Header().Set("Access-Control-Allow-Credentials", "true")
	}
	if h.maxAge != "" {
		w.Header().Set("Access-Control-Max-Age", h.maxAge)
	}

	w.WriteHeader(http.StatusNoContent)
}
