package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gobwas/ws"
	"github.com/redis/go-redis/v9"
	kafka "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/api"
	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/feed"
	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/gateway"
	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/hub"
	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/orders"
	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/quotes"
	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/repository"
	"github.com/umairaslam2/Kits-Backend/cmd/server/internal/ticker"
	"github.com/umairaslam2/Kits-Backend/pkg/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := config.NewLogger(cfg.Logger)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Order persistence: durable or in-memory behind one contract.
	var orderStore repository.OrderStore
	switch cfg.Storage.Driver {
	case "postgres":
		pg, err := repository.NewPostgresStore(ctx, cfg.Postgres.DSN)
		if err != nil {
			logger.Fatal("Failed to connect to Postgres", zap.Error(err))
		}
		orderStore = pg
	default:
		orderStore = repository.NewMemoryStore()
	}
	defer orderStore.Close()

	// Separate rand sources: the quote store generates baselines from
	// connection handlers while the ticker runs its own goroutine.
	quoteStore := quotes.NewStore(
		ticker.RealRand{Rand: rand.New(rand.NewSource(time.Now().UnixNano()))},
		ticker.RealClock{},
	)
	seeded := quoteStore.Seed(cfg.Tick.Symbols)
	logger.Info("Quote store seeded", zap.Int("symbols", len(seeded)))

	wsHub := hub.NewHub(quoteStore, logger)

	ledger, err := orders.NewLedger(ctx, orderStore)
	if err != nil {
		logger.Fatal("Failed to initialize ledger", zap.Error(err))
	}
	orderSvc := orders.NewService(quoteStore, ledger, logger)

	sinks := []ticker.Sink{wsHub}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		cache := repository.NewRedisCache(rdb, logger)
		defer cache.Close()
		sinks = append(sinks, cache)
		logger.Info("Redis snapshot cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	if cfg.Kafka.Enabled {
		dialer := &feed.RealKafkaDialer{Dialer: &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true}}
		feed.NewTopicCreator(logger, dialer).Create(cfg.Kafka.Brokers, cfg.Kafka.Topic)

		journal := feed.NewJournal(feed.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic), logger)
		defer journal.Close()
		sinks = append(sinks, journal)
		logger.Info("Kafka tick journal enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	tick := ticker.New(quoteStore, sinks, logger,
		cfg.Tick.Interval, cfg.Tick.MaxSymbols,
		ticker.RealRand{Rand: rand.New(rand.NewSource(time.Now().UnixNano()))},
		ticker.RealClock{},
	)
	go tick.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			return
		}

		client := gateway.NewClient(conn, wsHub, orderSvc, logger)
		wsHub.Register(client)
		client.Start()
	})
	api.NewHandler(quoteStore, ledger, logger).Register(mux)

	srv := &http.Server{Addr: cfg.App.Port, Handler: mux}

	go func() {
		logger.Info("Server Started", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("HTTP Error", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)
	logger.Info("Shutdown Complete")
}
