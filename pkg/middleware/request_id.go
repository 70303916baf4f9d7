package middleware

import (
	"context"
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"

	mwopts "github.com/kart-io/express-plugin/pkg/options/middleware"
	"github.com/kart-io/express-plugin/pkg/response"
)

// RequestIDName is the plugin name of the request ID middleware.
const RequestIDName = "request-id"

type requestIDKey struct{}

// ulidGenerator produces monotonic ULIDs. ulid.Monotonic is not safe for
// concurrent use.
type ulidGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
}

func newULIDGenerator() *ulidGenerator {
	return &ulidGenerator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ulidGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

// NewRequestID returns a plugin installing the request ID middleware.
func NewRequestID(opts *mwopts.RequestIDOptions) *Plugin {
	if opts == nil {
		opts = mwopts.NewRequestIDOptions()
	}
	return New(RequestIDName, RequestID(*opts))
}

// RequestID returns a middleware that reuses the incoming request ID header
// or generates a ULID. The ID is echoed in the response header, stored on
// the gin context under response.RequestIDKey and attached to the request
// context.
func RequestID(opts mwopts.RequestIDOptions) gin.HandlerFunc {
	header := opts.Header
	if header == "" {
		header = mwopts.NewRequestIDOptions().Header
	}
	gen := newULIDGenerator()

	return func(c *gin.Context) {
		id := c.GetHeader(header)
		if id == "" {
			id = gen.Generate()
		}
		c.Header(header, id)
		c.Set(response.RequestIDKey, id)
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// WithRequestID returns a copy of ctx carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID returns the request ID from the context, or "" if none.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
