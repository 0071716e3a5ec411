package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/hlog"
)

// Recovery turns panics into 500 responses. The panic is logged with its
// stack and, when Sentry is initialised, reported there as well.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			var stack [4096]byte
			n := runtime.Stack(stack[:], false)

			hlog.FromRequest(r).Error().
				Str("panic", fmt.Sprintf("%v", rec)).
				Str("stack", string(stack[:n])).
				Msg("panic recovered")

			hub := sentry.CurrentHub().Clone()
			hub.Scope().SetRequest(r)
			hub.Recover(rec)

			writeError(w, http.StatusInternalServerError, "internal server error")
		}()
		next.ServeHTTP(w, r)
	})
}
