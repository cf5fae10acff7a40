package bootstrap

import (
	"context"
	"log"
	"time"

	"acaradar-web/internal/config"
	"acaradar-web/internal/controller"
	"acaradar-web/internal/handler"
	"acaradar-web/internal/mapper"
	"acaradar-web/internal/pkg/logger"
	"acaradar-web/internal/pkg/serverutils"
	"acaradar-web/internal/repository/contract"
	"acaradar-web/internal/repository/memory"
	"acaradar-web/internal/repository/redisstore"
	"acaradar-web/internal/service"
	"acaradar-web/internal/websocket"
	"acaradar-web/pkg/upstream"

	pktNats "acaradar-web/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const activityTopic = "relay_activity"

type Container struct {
	Logger logger.ILogger

	// Controllers
	HomeController             controller.IHomeController
	ResearchInterestController controller.IResearchInterestController
	PaperController            controller.IPaperController
	WatchlistController        controller.IWatchlistController

	// Session handling, installed by the server in front of the controllers
	Session serverutils.SessionConfig

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	ProgressHandler *handler.ProgressHandler
	WebSocketHub    *websocket.Hub

	closers []func()
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Infrastructure
	var closers []func()

	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
			closers = append(closers, pub.Close)
		}
	}

	rdb := connectRedis(cfg)
	if rdb != nil {
		closers = append(closers, func() { _ = rdb.Close() })
	}

	var sessionRepo contract.SessionRepository
	if cfg.Session.Store == "redis" && rdb != nil {
		sessionRepo = redisstore.NewSessionRepository(rdb, cfg.Session.TTL)
		log.Printf("[INFO] Using session store: REDIS")
	} else {
		sessionRepo = memory.NewSessionRepository(cfg.Session.TTL)
		log.Printf("[INFO] Using session store: MEMORY")
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := websocket.NewHub(rdb, wsLogger)

	// 4. Upstream
	jar := upstream.NewCookieJar(cfg.Upstream.CookieName, sysLogger)
	client := upstream.NewClient(cfg.Upstream.BaseURL, jar, sysLogger)
	poller := upstream.NewPoller(client, sysLogger,
		upstream.WithMaxAttempts(cfg.Relay.PollMaxAttempts),
		upstream.WithInterval(cfg.Relay.PollInterval),
		upstream.WithJobPath(cfg.Upstream.JobPath),
	)

	// 5. Services
	publisherService := service.NewPublisherService(activityTopic, pubSub, sysLogger)

	var forwarder service.EventForwarder
	if natsPub != nil {
		forwarder = natsPub
	}
	consumerService := service.NewActivityConsumerService(pubSub, activityTopic, forwarder, sysLogger)

	journalService := service.NewJournalService(client, cfg.Relay.JournalsCacheTTL, sysLogger)
	researchInterestService := service.NewResearchInterestService(client, poller, wsHub, publisherService, sysLogger)
	paperService := service.NewPaperService(client, mapper.NewPaperMapper(), publisherService, sysLogger)
	watchlistService := service.NewWatchlistService(cfg.Relay.WatchedLimit, publisherService)

	// 6. Controllers
	return &Container{
		Logger: sysLogger,

		HomeController:             controller.NewHomeController(journalService, watchlistService),
		ResearchInterestController: controller.NewResearchInterestController(researchInterestService),
		PaperController:            controller.NewPaperController(paperService, cfg.Relay.MaxTopN),
		WatchlistController:        controller.NewWatchlistController(watchlistService),

		Session: serverutils.SessionConfig{
			CookieName: cfg.Session.CookieName,
			Secure:     cfg.IsProduction(),
			TTL:        cfg.Session.TTL,
			Tokens:     serverutils.NewSessionTokenCodec(cfg.Session.Secret, cfg.Session.TTL),
			Repository: sessionRepo,
			Logger:     sysLogger,
		},

		ConsumerService: consumerService,

		ProgressHandler: handler.NewProgressHandler(wsHub, wsLogger),
		WebSocketHub:    wsHub,

		closers: append(closers, func() { _ = pubSub.Close() }),
	}
}

// Close releases broker and cache connections.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

// connectRedis returns nil when Redis is unreachable; the relay then runs on a
// single instance with in-memory sessions.
func connectRedis(cfg *config.Config) *redis.Client {
	if cfg.App.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}
