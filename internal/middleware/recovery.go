package middleware

import (
	"net/http"
	"runtime/debug"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
	"github.com/yasinhessnawi1/backoffice-auth/internal/utils"
)

// Recovery is a middleware that recovers from panics and returns a 500 envelope.
func Recovery() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					logger := utils.RequestLogger(chimiddleware.GetReqID(r.Context()), r.Method, r.URL.Path)
					logger.Error().
						Str("remote_addr", r.RemoteAddr).
						Msg("Panic recovered in request handler")
					utils.LogPanic(err, debug.Stack())

					utils.Error(w, http.StatusInternalServerError, constants.MsgInternalServerError, nil)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// LogAndContinueOnError logs an error but allows execution to continue.
func LogAndContinueOnError(err error, message string) {
	if err != nil {
		log.Error().Err(err).Msg(message)
	}
}
