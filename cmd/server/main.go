package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beautypos/workstation/internal/catalog"
	"github.com/beautypos/workstation/internal/config"
	"github.com/beautypos/workstation/internal/router"
	"github.com/beautypos/workstation/internal/service"
	"github.com/beautypos/workstation/internal/ws"
)

func main() {
	cfg := config.Load()

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		loaded, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			log.Fatalf("Unable to load catalog: %v", err)
		}
		cat = loaded
		log.Printf("Loaded %d products from %s", cat.Len(), cfg.CatalogPath)
	}

	var scanner *catalog.RandomScanner
	if cfg.ScanSeed != nil {
		scanner = catalog.NewSeededScanner(cat, *cfg.ScanSeed)
		log.Printf("Scanner seeded with %d", *cfg.ScanSeed)
	} else {
		scanner = catalog.NewRandomScanner(cat, nil)
	}

	hub := ws.NewHub()
	go hub.Run()

	sessions := service.NewSessionService(cat, scanner, hub)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.New(cfg, cat, sessions, hub),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("ERROR: shutdown: %v", err)
	}
	log.Println("Server stopped")
}
