// Command server runs the superhero poster service: it accepts a photo plus a
// name and designation, obtains a character image from the generation API and
// composites the final poster.
package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/youruser/posterapp/internal/api"
	"github.com/youruser/posterapp/internal/assets"
	"github.com/youruser/posterapp/internal/config"
	"github.com/youruser/posterapp/internal/gallery"
	"github.com/youruser/posterapp/internal/genapi"
	"github.com/youruser/posterapp/internal/logger"
	"github.com/youruser/posterapp/internal/poster"
	"github.com/youruser/posterapp/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, closer := logger.New(cfg.Log.File, logger.ParseLevel(cfg.Log.Level), cfg.Log.MaxSizeMB)
	defer closer.Close()

	store := assets.NewStore(cfg.Assets, log)
	if err := store.Preflight(); err != nil {
		log.Error("asset preflight failed", "error", err)
		os.Exit(1)
	}

	fonts := poster.NewLibrary(store, log)
	renderer := &poster.FallbackRenderer{
		Primary:  &poster.RasterBackend{Fonts: fonts},
		Fallback: &poster.MarkupBackend{Fonts: fonts},
		Log:      log,
	}
	generator, err := poster.NewGenerator(store, renderer, cfg.Layout, log)
	if err != nil {
		log.Error("generator setup failed", "error", err)
		os.Exit(1)
	}

	posterStore, err := storage.New(cfg.Storage.Dir, cfg.Storage.BaseURL)
	if err != nil {
		log.Error("poster storage setup failed", "error", err)
		os.Exit(1)
	}
	index, err := gallery.Load(cfg.Storage.Index)
	if err != nil {
		log.Error("gallery index load failed", "error", err)
		os.Exit(1)
	}

	genClient := genapi.New(cfg.GenAPI, log)
	if genClient == nil {
		log.Warn("no generation endpoint configured, only pre-generated character uploads will work")
	}

	r := gin.Default()
	api.RegisterRoutes(r, api.NewServer(generator, genClient, posterStore, index, log))

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}
	log.Info("starting server", "addr", "http://localhost:"+port)
	if err := r.Run(":" + port); err != nil && err != http.ErrServerClosed {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
