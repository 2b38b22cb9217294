package main

import (
	"flag"
	"log"
	"math/rand"
	"os"

	"github.com/pefman/naval-duel/internal/api"
	"github.com/pefman/naval-duel/internal/engine"
	"github.com/pefman/naval-duel/internal/models"
	"github.com/pefman/naval-duel/internal/rules"
)

// Build metadata injected via -ldflags at build time
var (
	buildVersion = "dev"
	buildTime    = ""
)

func main() {
	rulesPath := flag.String("rules", os.Getenv("NAVAL_RULES"), "Lua rules file with ship and ability definitions")
	serverURL := flag.String("server", "", "play against a match service at this URL instead of in process")
	name := flag.String("name", "Player", "player name reported to the match service")
	seed := flag.Int64("seed", 0, "seed for placement and computer targeting; 0 picks one")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		log.Printf("naval %s %s", buildVersion, buildTime)
		return
	}

	cat := models.DefaultCatalog()
	if *rulesPath != "" {
		var err error
		if cat, err = rules.LoadFile(*rulesPath); err != nil {
			log.Fatalf("rules %s: %v", *rulesPath, err)
		}
	}

	var open func() (session, error)
	shown := func() models.Catalog { return cat }
	if *serverURL != "" {
		client := api.NewClient(*serverURL)
		shown = serverRules(client, cat)
		open = func() (session, error) {
			var s *int64
			if *seed != 0 {
				s = seed
			}
			return newRemoteSession(client, *name, s)
		}
	} else {
		var rng engine.Rand
		if *seed != 0 {
			rng = rand.New(rand.NewSource(*seed))
		}
		open = func() (session, error) { return newLocalSession(cat, rng) }
	}

	if err := newConsole(os.Stdin, os.Stdout, shown).run(open); err != nil {
		log.Fatal(err)
	}
}
