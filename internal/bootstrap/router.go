package bootstrap

import (
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httpapi "github.com/guidari-center/guidari-backend/internal/api/http"
	"github.com/guidari-center/guidari-backend/internal/api/http/middleware"
	"github.com/guidari-center/guidari-backend/internal/auth"
	"github.com/guidari-center/guidari-backend/internal/clinic/billing"
	clinicsync "github.com/guidari-center/guidari-backend/internal/clinic/sync"
	"github.com/guidari-center/guidari-backend/internal/settings"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	Sync           *clinicsync.Synchronizer
	Auth           *auth.Service
	Settings       *settings.Store
	Basis          billing.LiabilityBasis
	DB             *sql.DB
	Redis          *redis.Client
	Logger         *zap.Logger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Logger))

	corsCfg := cors.DefaultConfig()
	if len(dep.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = dep.AllowedOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "X-Request-Id")
	corsCfg.MaxAge = 12 * time.Hour
	r.Use(cors.New(corsCfg))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	handler := httpapi.NewHandler(dep.Sync, dep.Auth, dep.Settings, dep.Basis, dep.Logger)
	handler.Register(api)

	return r
}
