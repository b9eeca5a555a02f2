// Package api configures an http server for the PACS metadata index.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/spf13/viper"

	"pacs-index-api/api/pacs"
	"pacs-index-api/database"
	"pacs-index-api/fs"
	"pacs-index-api/indexer"
	"pacs-index-api/logging"
	"pacs-index-api/orthanc"
)

// New configures application resources and routes.
func New(enableCORS bool) (*chi.Mux, error) {
	logger := logging.NewLogger()

	dbPath := viper.GetString("db_path")
	if dbPath == "" {
		dbPath = fs.MetadataDBPath()
	}

	db, err := database.DBConn(dbPath)
	if err != nil {
		logger.WithField("module", "database").Error(err)
		return nil, err
	}

	idx := indexer.New(db, dbPath, logger)

	var orthancClient pacs.OrthancProxy
	if url := viper.GetString("orthanc_url"); url != "" {
		orthancClient = orthanc.NewClient(url, 15*time.Second)
	}

	pacsAPI, err := pacs.NewAPI(db, idx, orthancClient, viper.GetString("nas_path"))
	if err != nil {
		logger.WithField("module", "pacs").Error(err)
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(logging.NewStructuredLogger(logger))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	// use CORS middleware if client is not served by this api, e.g. from other domain or CDN
	if enableCORS {
		r.Use(corsConfig().Handler)
	}

	r.Mount("/api/pacs", pacsAPI.Router())

	return r, nil
}

func corsConfig() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400, // Maximum value not ignored by any of major browsers
	})
}
