package expressd

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/express-plugin/pkg/middleware"
	"github.com/kart-io/express-plugin/pkg/plugin"
	"github.com/kart-io/express-plugin/pkg/plugin/express"
	"github.com/kart-io/express-plugin/pkg/response"
)

// helloPlugin registers the demo route of the service.
type helloPlugin struct {
	plugin.Base
}

var _ express.Configurer = (*helloPlugin)(nil)

func (*helloPlugin) Name() string { return "hello" }

func (*helloPlugin) InitExpress(_ context.Context, app *gin.Engine, _ express.StopFunc) error {
	app.GET("/hello", func(c *gin.Context) {
		response.OK(c, gin.H{
			"message":    "Hello from " + Name + "!",
			"request_id": middleware.GetRequestID(c.Request.Context()),
		})
	})
	return nil
}
