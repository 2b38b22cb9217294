package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/pefman/naval-duel/internal/models"
	"github.com/pefman/naval-duel/internal/rules"
	"github.com/pefman/naval-duel/internal/server"
)

// ========================= Config =========================
var (
	gameListenAddr    string
	rulesPath         string
	placementAttempts int
)

// Build metadata injected via -ldflags at build time
var (
	buildVersion = "dev"
	buildTime    = ""
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func init() {
	p := os.Getenv("PORT")
	if p == "" {
		p = getenv("GAME_PORT", "8081")
	}
	gameListenAddr = ":" + p
	rulesPath = os.Getenv("NAVAL_RULES")
	n, err := strconv.Atoi(getenv("NAVAL_PLACEMENT_ATTEMPTS", "0"))
	if err != nil {
		log.Printf("config: ignoring NAVAL_PLACEMENT_ATTEMPTS: %v", err)
	}
	placementAttempts = n
}

func main() {
	cat := models.DefaultCatalog()
	if rulesPath != "" {
		var err error
		if cat, err = rules.LoadFile(rulesPath); err != nil {
			log.Fatalf("rules %s: %v", rulesPath, err)
		}
		log.Printf("rules: loaded %d ship types and %d abilities from %s", len(cat.Ships), len(cat.Abilities), rulesPath)
	}

	srv := server.New(server.Config{
		Catalog:           cat,
		PlacementAttempts: placementAttempts,
		BuildVersion:      buildVersion,
		BuildTime:         buildTime,
	})
	stop := make(chan struct{})
	defer close(stop)
	go srv.Janitor(stop, time.Minute, 30*time.Minute)

	log.Printf("naval-duel-game %s starting on %s", buildVersion, gameListenAddr)
	if err := http.ListenAndServe(gameListenAddr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
