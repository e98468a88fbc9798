package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ProvinceMap-App/internal/usecase"
)

// MetricsExporter は/metricsで公開するメトリクス
type MetricsExporter interface {
	HTTPObserver
	Handler() http.Handler
}

// NewRouter はAPI全体のルーティングを組み立てる
func NewRouter(store *usecase.SessionStore, metrics MetricsExporter, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(AccessLog(log, metrics))

	system := NewSystemHandler(store)
	sessions := NewSessionHandler(store)

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	api.GET("/health", system.Health)
	api.GET("/legend", system.Legend)
	api.GET("/basemaps", system.BaseLayers)

	api.POST("/sessions", sessions.CreateSession)
	s := api.Group("/sessions/:id")
	{
		s.GET("", sessions.GetSession)
		s.DELETE("", sessions.DeleteSession)

		s.GET("/search", sessions.Search)
		s.POST("/filters/toggle", sessions.ToggleFilter)

		s.GET("/regions", sessions.Regions)
		s.POST("/regions/select", sessions.SelectRegion)
		s.GET("/markers", sessions.Markers)
		s.GET("/geojson/regions", sessions.RegionFeatures)
		s.GET("/geojson/outline", sessions.Outline)

		s.POST("/select", sessions.Select)
		s.POST("/click", sessions.Click)
		s.DELETE("/selection", sessions.ClearSelection)
		s.POST("/camera/moveend", sessions.MoveEnded)

		s.POST("/location", sessions.Location)
		s.POST("/route/start", sessions.RouteStart)

		s.PUT("/ethnicity-query", sessions.EthnicityQuery)
		s.PUT("/region-query", sessions.RegionQuery)
		s.PUT("/basemap", sessions.BaseLayer)
	}

	return r
}
