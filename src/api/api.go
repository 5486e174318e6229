package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/roadway-app/roadway/src/api/config"
	"github.com/roadway-app/roadway/src/api/data"
	"github.com/roadway-app/roadway/src/api/moderation"
	"github.com/roadway-app/roadway/src/api/types"
	"github.com/roadway-app/roadway/src/api/webserver"
	"github.com/roadway-app/roadway/src/shared/ai"
)

func main() {
	cfg := config.Load()

	db := data.MustMySQL(cfg.MySQLDSN)
	if err := db.AutoMigrate(
		&types.User{},
		&types.Post{},
		&types.Comment{},
		&types.Course{},
		&types.Notification{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	rdb := data.MustRedis(cfg.RedisURL)

	aiClient := ai.NewClient(ai.FactoryConfig{
		Provider:  cfg.AIProvider,
		OpenAIKey: cfg.OpenAIKey,
		ClaudeKey: cfg.ClaudeKey,
		Model:     cfg.AIModel,
	})

	classifier := moderation.NewClassifier(aiClient, cfg.ModerationTimeout)
	linkChecker := moderation.NewLinkSafetyChecker(aiClient, cfg.ModerationTimeout)
	ledger := moderation.NewLedger(db, cfg.TrustThreshold)
	sink := data.NewNotificationSink(rdb)
	gate := moderation.NewGate(db, moderation.NewFilter(), classifier, linkChecker, ledger, sink)
	review := moderation.NewReview(db, ledger)

	ctx, cancel := context.WithCancel(context.Background())

	// Materialize notification events into rows.
	go data.NotificationConsumer(ctx, db, rdb)

	router := webserver.New(cfg, db, rdb, webserver.Deps{
		Gate:   gate,
		Review: review,
		Links:  linkChecker,
	})

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	log.Printf("Roadway API listening on %s (moderation provider: %s)", cfg.Port, cfg.AIProvider)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	cancel()
	shutCtx, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()
	_ = httpSrv.Shutdown(shutCtx)
}
