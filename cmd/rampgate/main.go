package main

import (
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/layer-3/rampgate/adapters/assertion"
	"github.com/layer-3/rampgate/adapters/events"
	"github.com/layer-3/rampgate/adapters/fallback"
	"github.com/layer-3/rampgate/adapters/keys"
	"github.com/layer-3/rampgate/adapters/provider"
	"github.com/layer-3/rampgate/adapters/store"
	"github.com/layer-3/rampgate/internal/config"
	"github.com/layer-3/rampgate/internal/logging"
	"github.com/layer-3/rampgate/ports"
	"github.com/layer-3/rampgate/redirect"
	"github.com/layer-3/rampgate/service"
	"github.com/layer-3/rampgate/transport/http"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.Setup("rampgate", string(cfg.Environment))

	// Invalid key material is a configuration defect: fail here, never
	// substitute embedded key material.
	signingKey, err := keys.Normalize(cfg.ProviderKeyID, cfg.ProviderPrivateKey)
	if err != nil {
		log.Fatalf("normalize provider key: %v", err)
	}

	var (
		degradedStore ports.Store
		eventPub      ports.EventPublisher
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("parse redis url: %v", err)
		}
		redisClient := redis.NewClient(opts)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: redisClient},
			watermill.NewStdLogger(false, false),
		)
		if err != nil {
			log.Fatalf("create redis publisher: %v", err)
		}

		degradedStore = store.NewRedisStore(redisClient)
		eventPub = events.NewWatermillPublisher(publisher)
	} else {
		degradedStore = store.NewMemoryStore()
	}

	checkout := service.NewCheckoutService(
		assertion.NewSigner(signingKey, cfg.TokenEndpoint),
		provider.NewClient(cfg.TokenEndpoint),
		fallback.NewIssuer([]byte(cfg.FallbackSecret)),
		redirect.NewBuilder(cfg.Environment),
		degradedStore,
		eventPub,
		cfg.DefaultRedirectURL,
		logger,
	)

	router := http.SetupRouter(checkout, logger)

	logger.Info("rampgate listening", "addr", cfg.ListenAddress)
	if err := router.Run(cfg.ListenAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
