package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/version"

	mwopts "github.com/kart-io/express-plugin/pkg/options/middleware"
	"github.com/kart-io/express-plugin/pkg/plugin"
	"github.com/kart-io/express-plugin/pkg/plugin/express"
)

// VersionName is the plugin name of the version endpoint.
const VersionName = "version"

// VersionResponse represents the version endpoint response.
type VersionResponse struct {
	ServiceName  string `json:"service_name,omitempty"`
	GitVersion   string `json:"git_version"`
	GitCommit    string `json:"git_commit,omitempty"`
	GitBranch    string `json:"git_branch,omitempty"`
	GitTreeState string `json:"git_tree_state,omitempty"`
	BuildDate    string `json:"build_date,omitempty"`
	GoVersion    string `json:"go_version,omitempty"`
	Compiler     string `json:"compiler,omitempty"`
	Platform     string `json:"platform,omitempty"`
}

// VersionPlugin registers the build information endpoint.
type VersionPlugin struct {
	plugin.Base
	opts mwopts.VersionOptions
}

var _ express.Configurer = (*VersionPlugin)(nil)

// NewVersion returns the version endpoint plugin.
func NewVersion(opts *mwopts.VersionOptions) *VersionPlugin {
	if opts == nil {
		opts = mwopts.NewVersionOptions()
	}
	return &VersionPlugin{opts: *opts}
}

// Name implements plugin.Plugin.
func (p *VersionPlugin) Name() string { return VersionName }

// InitExpress implements express.Configurer.
func (p *VersionPlugin) InitExpress(_ context.Context, app *gin.Engine, _ express.StopFunc) error {
	if !p.opts.Enabled {
		return nil
	}
	path := p.opts.Path
	if path == "" {
		path = "/version"
	}
	app.GET(path, p.handle)
	return nil
}

func (p *VersionPlugin) handle(c *gin.Context) {
	info := version.Get()

	resp := VersionResponse{GitVersion: info.GitVersion}
	if !p.opts.HideDetails {
		resp.ServiceName = info.ServiceName
		resp.GitCommit = info.GitCommit
		resp.GitBranch = info.GitBranch
		resp.GitTreeState = info.GitTreeState
		resp.BuildDate = info.BuildDate
		resp.GoVersion = info.GoVersion
		resp.Compiler = info.Compiler
		resp.Platform = info.Platform
	}

	c.JSON(http.StatusOK, resp)
}
