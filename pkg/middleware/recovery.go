package middleware

import (
	"os"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/express-plugin/pkg/errors"
	mwopts "github.com/kart-io/express-plugin/pkg/options/middleware"
	"github.com/kart-io/express-plugin/pkg/response"
)

// RecoveryName is the plugin name of the recovery middleware.
const RecoveryName = "recovery"

// PanicHandler is called after a panic has been recovered and logged.
type PanicHandler func(c *gin.Context, err any, stack []byte)

// NewRecovery returns a plugin installing the recovery middleware.
func NewRecovery(opts *mwopts.RecoveryOptions, onPanic PanicHandler) *Plugin {
	if opts == nil {
		opts = mwopts.NewRecoveryOptions()
	}
	return New(RecoveryName, Recovery(*opts, onPanic))
}

// Recovery returns a middleware that turns handler panics into a JSON error
// response. The stack is always logged, but only returned to the client
// when EnableStackTrace is set outside production.
func Recovery(opts mwopts.RecoveryOptions, onPanic PanicHandler) gin.HandlerFunc {
	withStack := opts.EnableStackTrace
	if withStack && isProduction() {
		logger.Warn("Stack trace is enabled but running in production; it will only be logged")
		withStack = false
	}

	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			stack := debug.Stack()
			logger.Errorw("panic recovered",
				"panic", r,
				"stack_trace", string(stack),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"request_id", c.GetString(response.RequestIDKey),
			)
			if onPanic != nil {
				onPanic(c, r, stack)
			}

			if withStack {
				response.Fail(c, errors.ErrPanic.WithMessagef("panic: %v\n%s", r, stack))
				return
			}
			response.Fail(c, errors.ErrPanic)
		}()
		c.Next()
	}
}

func isProduction() bool {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("GO_ENV")
	}
	switch strings.ToLower(env) {
	case "production", "prod":
		return true
	default:
		return false
	}
}
