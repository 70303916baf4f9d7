package express

import (
	"context"

	"github.com/gin-gonic/gin"
)

// StopFunc vetoes startup when called before the server listens, and closes
// the listening server when called after. Calling it more than once is safe.
type StopFunc func()

// Configurer is implemented by sibling plugins that register routes or
// middleware on the HTTP application.
type Configurer interface {
	// InitExpress configures app. Siblings are called one at a time in host
	// order, so routes registered by earlier siblings are visible to later
	// ones. Calling stop prevents the server from ever listening.
	InitExpress(ctx context.Context, app *gin.Engine, stop StopFunc) error
}

// Finalizer is implemented by sibling plugins that need a second pass after
// every Configurer has run.
type Finalizer interface {
	// PostInitExpress runs after all InitExpress calls have returned and
	// before the server starts listening.
	PostInitExpress(ctx context.Context) error
}
