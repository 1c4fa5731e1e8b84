package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"cabwatch/config"
	"cabwatch/engine"
	"cabwatch/fleet/autocabfleet"
	"cabwatch/messaging"
	"cabwatch/store"
	"cabwatch/vehiclestate"
	"cabwatch/www"
)

var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "cabwatch.yaml", "path to config file")
	flag.Parse()

	if *showVersion {
		fmt.Println("cabwatch", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Database
	db, err := store.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	log.Printf("cabwatch: database open (%s)", cfg.Database.Driver)

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	redisUp := redisClient.Ping(ctx).Err() == nil
	cancel()
	if redisUp {
		log.Printf("cabwatch: redis connected (%s)", cfg.Redis.Address)
	} else {
		log.Printf("cabwatch: redis not available, vehicle cache will not survive restarts")
	}
	defer redisClient.Close()

	// Vehicle state manager
	var redisStore *vehiclestate.RedisStore
	if redisUp {
		redisStore = vehiclestate.NewRedisStore(redisClient)
	}
	vehicles := vehiclestate.NewManager(vehiclestate.NewMemoryCache(), redisStore)

	// Fleet provider (Autocab adapter)
	fleetAdapter := autocabfleet.New(autocabfleet.Config{
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Timeout: cfg.Provider.Timeout,
	})
	if err := fleetAdapter.Ping(); err == nil {
		log.Printf("cabwatch: fleet provider connected (%s)", fleetAdapter.Name())
	} else {
		log.Printf("cabwatch: fleet provider not available (%v)", err)
	}

	// Messaging client
	msgClient := messaging.NewClient(&cfg.Messaging)
	if err := msgClient.Connect(); err != nil {
		log.Printf("cabwatch: messaging connect failed (%v)", err)
	} else {
		log.Printf("cabwatch: messaging connected (%s)", cfg.Messaging.Backend)
	}
	defer msgClient.Close()

	// Engine
	eng := engine.New(engine.Config{
		AppConfig:  cfg,
		ConfigPath: *configPath,
		DB:         db,
		Fleet:      fleetAdapter,
		Vehicles:   vehicles,
		MsgClient:  msgClient,
	})
	eng.Start()
	defer eng.Stop()

	// Position consumer (inbound from driver apps)
	consumer := messaging.NewPositionConsumer(msgClient, cfg.Messaging.PositionsTopic, vehicles)
	if err := consumer.Start(); err != nil {
		log.Printf("cabwatch: position consumer subscribe failed: %v", err)
	} else {
		log.Printf("cabwatch: position consumer listening on %s", cfg.Messaging.PositionsTopic)
	}

	// Outbox drainer (outbound fleet events)
	drainer := messaging.NewOutboxDrainer(db, msgClient, cfg.Messaging.OutboxDrainInterval)
	drainer.Start()
	defer drainer.Stop()

	// Web server
	handler, stopWeb := www.NewRouter(eng)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Printf("cabwatch: web server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("web server: %v", err)
		}
	}()

	log.Printf("cabwatch: ready")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("cabwatch: shutting down...")
	stopWeb()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	log.Printf("cabwatch: stopped")
}
