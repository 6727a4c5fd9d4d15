package http

import (
	"github.com/EternisAI/user-directory/internal/api/http/handler"
	"github.com/EternisAI/user-directory/internal/api/http/middleware"
	"github.com/EternisAI/user-directory/internal/metrics"
	"github.com/EternisAI/user-directory/internal/registration"
	"github.com/EternisAI/user-directory/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Services struct {
	Version      string
	Users        *users.Controller
	Registration *registration.Controller
	Positions    handler.PositionLister
	Fetcher      handler.UserFetcher
	// Metrics is served on /metrics; the default gatherer when nil.
	Metrics prometheus.Gatherer
}

func SetupRoute(engine *gin.Engine, srvs *Services) {
	engine.Use(middleware.RequestLogger())

	healthHandler := handler.NewHealthHandler(srvs.Version)
	engine.GET("/health", healthHandler.Check)
	engine.GET("/metrics", gin.WrapH(metrics.Handler(srvs.Metrics)))

	v1 := engine.Group("/api/v1")

	if srvs.Users != nil {
		usersHandler := handler.NewUsersHandler(srvs.Users, srvs.Fetcher)
		v1.GET("/users", usersHandler.Snapshot)
		v1.POST("/users/load-more", usersHandler.LoadMore)
		v1.POST("/users/reset", usersHandler.Reset)
		v1.POST("/users/retry", usersHandler.Retry)
		if srvs.Fetcher != nil {
			v1.GET("/users/:id", usersHandler.GetUser)
		}
	}

	if srvs.Positions != nil {
		positionsHandler := handler.NewPositionsHandler(srvs.Positions)
		v1.GET("/positions", positionsHandler.List)
	}

	if srvs.Registration != nil {
		signupHandler := handler.NewSignupHandler(srvs.Registration)
		v1.GET("/signup", signupHandler.Snapshot)
		v1.POST("/signup", signupHandler.Submit)
		v1.POST("/signup/retry", signupHandler.Retry)
		v1.POST("/signup/positions", signupHandler.LoadPositions)
		v1.POST("/signup/reset", signupHandler.Reset)
	}
}
