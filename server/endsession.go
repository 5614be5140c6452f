package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/legit-games/oidc-core/logout"
	"github.com/legit-games/oidc-core/manage"
)

// EndSessionHandler adapts the logout pipeline to gin. When the pipeline
// reports the request unhandled the chain continues, so hosts can mount
// their own fallback page behind it.
func EndSessionHandler(p *logout.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		handled, err := p.Process(c.Writer, c.Request)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if handled {
			c.Abort()
		}
	}
}

// NewGinEngine wires the end-session endpoint over the manager's pipeline.
func NewGinEngine(m *manage.Manager) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	pipeline := m.Logout()
	// Any, not GET/POST: method classification belongs to the pipeline, which
	// answers unsupported methods with invalid_request.
	engine.Any("/oauth/endsession", EndSessionHandler(pipeline))
	return engine
}
