// Package web serves the image library over HTTP.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/ironsheep/image-tagger/internal/library"
)

const shutdownTimeout = 5 * time.Second

// NewRouter builds the gin engine with every route of the API.
func NewRouter(lib *library.Library) *gin.Engine {
	router := gin.New()
	router.Use(LoggingMiddleware())
	router.Use(gin.CustomRecovery(HandlePanics()))

	h := &handlers{lib: lib}

	router.GET("/healthz", h.health)
	router.GET("/images/*name", h.serveImage)

	api := router.Group("/api/images")
	{
		api.GET("", h.listImages)
		api.GET("/:name", h.info)
		api.GET("/:name/tags", h.getTags)
		api.PUT("/:name/tags", h.putTags)
		api.GET("/:name/regions", h.getRegions)
		api.PUT("/:name/regions", h.putRegions)
		api.POST("/:name/redact", h.redact)
		api.POST("/:name/restore", h.restore)
		api.POST("/:name/preview", h.preview)
		api.GET("/:name/suggestions", h.suggestions)
	}

	return router
}

// Run serves the API on addr until ctx is canceled, then shuts down
// gracefully.
func Run(ctx context.Context, addr string, lib *library.Library) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: NewRouter(lib),
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("folder", lib.Root()).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}
