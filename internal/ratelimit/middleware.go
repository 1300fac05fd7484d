package ratelimit

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

type KeyFunc func(r *http.Request) string

// RejectFunc writes the response for a throttled request. Retry-After is
// already set when it runs.
type RejectFunc func(w http.ResponseWriter, r *http.Request, retryAfter time.Duration)

type Options struct {
	KeyFn    KeyFunc
	OnReject RejectFunc
}

// RemoteIPKey keys requests by the host part of RemoteAddr.
func RemoteIPKey(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	host, _, err := net.SplitHostPort(addr)
	if err == nil && host != "" {
		return host
	}
	if addr != "" {
		return addr
	}
	return "unknown"
}

func defaultReject(w http.ResponseWriter, _ *http.Request, _ time.Duration) {
	http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
}

// Middleware rejects requests whose bucket is empty with 429 and a
// Retry-After header in whole seconds.
func Middleware(store *Store, opts Options) func(next http.Handler) http.Handler {
	if opts.KeyFn == nil {
		opts.KeyFn = RemoteIPKey
	}
	if opts.OnReject == nil {
		opts.OnReject = defaultReject
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lim := store.Get(opts.KeyFn(r))

			res := lim.Reserve()
			if delay := res.Delay(); delay > 0 {
				res.Cancel()
				if delay == rate.InfDuration {
					delay = time.Second
				}
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
				opts.OnReject(w, r, delay)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
