package main

import (
	"bytes"
	"crypto/rand"
	"log"

	"github.com/rawblock/cryptomunge/internal/api"
	"github.com/rawblock/cryptomunge/internal/bench"
	"github.com/rawblock/cryptomunge/internal/config"
	"github.com/rawblock/cryptomunge/internal/cutlist"
	"github.com/rawblock/cryptomunge/internal/registry"
	"github.com/rawblock/cryptomunge/internal/search"
	"github.com/rawblock/cryptomunge/internal/settings"
	"github.com/rawblock/cryptomunge/internal/store"
	"github.com/rawblock/cryptomunge/pkg/models"
)

func main() {
	log.Println("Starting cryptomunge transform-sequence discovery engine...")

	cfg := config.Load()

	// ─── Optional Postgres persistence ──────────────────────────────
	// A missing/unreachable DATABASE_URL degrades to JSON-file-only
	// operation rather than refusing to start.
	var dbStore *store.Store
	if cfg.DatabaseURL != "" {
		var err error
		dbStore, err = store.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: failed to connect to PostgreSQL, continuing with JSON-file persistence only. Error: %v", err)
			dbStore = nil
		} else {
			if err := dbStore.InitSchema(); err != nil {
				log.Printf("Warning: DB schema init failed: %v", err)
			}
		}
	}
	if dbStore != nil {
		defer dbStore.Close()
	}

	// ─── Declarative global settings ────────────────────────────────
	globalSettings, err := settings.Load(cfg.GlobalSettingsPath)
	if err != nil {
		log.Printf("Warning: failed to load %s, using schema defaults: %v", cfg.GlobalSettingsPath, err)
	}

	// ─── Transform registry, benchmarked once at startup ────────────
	reg := registry.Default()
	if results, err := bench.Run(reg); err != nil {
		log.Printf("Warning: transform benchmarking failed: %v", err)
	} else if err := bench.WriteJSON(cfg.BenchResultsPath, results); err != nil {
		log.Printf("Warning: failed to write %s: %v", cfg.BenchResultsPath, err)
	}

	// ─── CutList, loaded once at startup ────────────────────────────
	cuts, err := cutlist.Load(cfg.CutListPath)
	if err != nil {
		log.Printf("Warning: CutList load failed, continuing with no cuts: %v", err)
	}
	defer func() {
		if err := cuts.Save(); err != nil {
			log.Printf("Warning: CutList save failed: %v", err)
		}
	}()

	// ─── Shared scorer and environment pool ─────────────────────────
	scorer := search.NewScorer(reg, fixedSamplePlaintext())
	envTemplate := models.ExecutionEnvironment{
		Salt:          randomSalt(),
		Password:      []byte("cryptomunge-default-password"),
		GlobalRounds:  globalSettings.GetInt("Rounds"),
		OperationMode: models.OperationMode(globalSettings.GetString("Mode")),
		ScoringMode:   models.ScoringMode(globalSettings.GetString("ScoringMode")),
	}
	envs := search.NewEnvPool(envTemplate)

	// ─── WebSocket hub for contender/level-complete broadcast ───────
	wsHub := api.NewHub()
	go wsHub.Run()

	// ─── Run manager dispatches Munge/BTR/Best-Fit over HTTP ────────
	runs := api.NewRunManager(reg, scorer, envs, cuts, dbStore, wsHub, globalSettings.GetInt("DesiredContenders"))

	if !api.HealthCheck(reg) {
		log.Fatal("FATAL: transform registry is empty, refusing to serve")
	}

	r := api.SetupRouter(reg, runs, wsHub, cfg.AuthToken, cfg.RateLimitPerMin, cfg.RateLimitBurst)

	log.Printf("Engine running on :%s (registry: %d transforms, cutlist: %d rows)\n",
		cfg.Port, reg.Len(), cuts.Len())
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// fixedSamplePlaintext is the canonical test input every search driver
// scores candidates against, the in-process analogue of the
// Frankenstein.bin fixture.
func fixedSamplePlaintext() []byte {
	return bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 64)
}

// randomSalt seeds the default ExecutionEnvironment template with a
// process-lifetime salt. The Scorer passes it to EncryptWithSalt for every
// candidate's reversibility check and avalanche/key-dependency payloads,
// so all candidates scored by this process share one salt.
func randomSalt() []byte {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		log.Fatalf("FATAL: failed to generate startup salt: %v", err)
	}
	return salt
}
