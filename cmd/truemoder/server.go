package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/truemoder/truemoder/automod/cachestore"
	"github.com/truemoder/truemoder/automod/consumer"
	"github.com/truemoder/truemoder/automod/engine"
	"github.com/truemoder/truemoder/automod/keyword"
	"github.com/truemoder/truemoder/automod/setstore"
	"github.com/truemoder/truemoder/automod/throttle"
	"github.com/truemoder/truemoder/internal/ticker"
	"github.com/truemoder/truemoder/pkg/metrics"
	"github.com/truemoder/truemoder/telegram"
	"github.com/truemoder/truemoder/util"

	"github.com/carlmjohnson/versioninfo"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type Server struct {
	logger *slog.Logger
	engine *engine.Engine
	router *consumer.Router
	tg     *telegram.Client
	rdb    *redis.Client
	config Config
}

type Config struct {
	BotToken        string
	BotName         string
	APIHost         string
	ProxyURL        string
	APIRateLimit    float64
	SuperAdmins     []int64
	FAQLink         string
	WordsFileJSON   string
	BlockLinks      bool
	LimitsFileYAML  string
	RedisURL        string
	SlackWebhookURL string
	Parallelism     int
	PollTimeout     time.Duration
	WebhookURL      string
	WebhookSecret   string
	WebhookBind     string
	WebhookPath     string
	MetricsListen   string
	Logger          *slog.Logger
}

// how long a confirmed admin status is trusted; non-admins are always looked up
const adminCacheTTL = 10 * time.Minute

func NewServer(ctx context.Context, config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	if config.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	httpOpts := util.DefaultHTTPClientOptions()
	httpOpts.Logger = logger
	// API error bodies carry the details we classify on
	httpOpts.PassthroughErrors = true
	if config.PollTimeout > 0 {
		httpOpts.Timeout = config.PollTimeout + 15*time.Second
	}
	if config.ProxyURL != "" {
		proxy, err := url.Parse(config.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parsing proxy URL: %w", err)
		}
		httpOpts.Proxy = proxy
		logger.Info("using outbound proxy", "scheme", proxy.Scheme, "host", proxy.Host)
	}

	ua := fmt.Sprintf("truemoder/%s", versioninfo.Short())
	tg := telegram.NewClient(config.BotToken)
	tg.Client = util.RobustHTTPClientWith(httpOpts)
	tg.UserAgent = &ua
	tg.Logger = logger
	if config.APIHost != "" {
		tg.Host = config.APIHost
	}
	if config.APIRateLimit > 0 {
		tg.Limiter = rate.NewLimiter(rate.Limit(config.APIRateLimit), 1)
	}

	me, err := tg.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching bot account: %w", err)
	}
	botName := config.BotName
	if botName == "" {
		botName = "@" + me.Username
	} else if !strings.HasPrefix(botName, "@") {
		botName = "@" + botName
	}
	logger.Info("bot account", "id", me.ID, "name", botName)

	sets := setstore.NewMemSetStore()
	sets.Normalize = keyword.NormalizeToken
	if config.WordsFileJSON != "" {
		if err := sets.LoadFromFileJSON(config.WordsFileJSON); err != nil {
			return nil, fmt.Errorf("initializing in-process setstore: %v", err)
		} else {
			logger.Info("loaded word lists from JSON", "path", config.WordsFileJSON, "sets", sets.Names())
		}
	} else {
		logger.Warn("no word lists configured, explicit content will not be detected")
	}
	classifier := keyword.NewClassifier(sets)
	classifier.BlockLinks = config.BlockLinks
	classifier.Logger = logger

	limits := throttle.DefaultLimits()
	if config.LimitsFileYAML != "" {
		limits, err = throttle.LoadLimitsYAML(config.LimitsFileYAML)
		if err != nil {
			return nil, fmt.Errorf("loading flood limits: %w", err)
		}
		logger.Info("loaded flood limits from YAML", "path", config.LimitsFileYAML)
	}

	var cache cachestore.CacheStore
	var rdb *redis.Client
	if config.RedisURL != "" {
		// generic client, for cursor state
		opt, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis URL: %v", err)
		}
		rdb = redis.NewClient(opt)
		// check redis connection
		_, err = rdb.Ping(ctx).Result()
		if err != nil {
			return nil, fmt.Errorf("redis ping failed: %v", err)
		}
		cache = cachestore.NewRedisCacheStoreFromClient(rdb, adminCacheTTL)
	} else {
		cache = cachestore.NewMemCacheStore(5_000, adminCacheTTL)
	}

	engConfig := engine.DefaultConfig()
	engConfig.BotUserID = me.ID
	engConfig.BotName = botName
	engConfig.FAQLink = config.FAQLink
	engConfig.SuperAdmins = config.SuperAdmins
	engConfig.Limits = limits

	eng, err := engine.NewEngine(engConfig, tg, classifier)
	if err != nil {
		return nil, err
	}
	eng.Logger = logger
	eng.Cache = cache
	if config.SlackWebhookURL != "" {
		eng.Notifier = &engine.SlackNotifier{
			SlackWebhookURL: config.SlackWebhookURL,
			Client:          util.RobustHTTPClient(),
		}
	}

	s := &Server{
		logger: logger,
		engine: eng,
		router: &consumer.Router{
			Engine:  eng,
			Logger:  logger,
			BotName: botName,
		},
		tg:     tg,
		rdb:    rdb,
		config: config,
	}
	return s, nil
}

// Runs update intake until ctx is done, or until a component fails.
func (s *Server) Run(ctx context.Context) error {
	if s.config.WebhookURL != "" {
		if err := s.tg.SetWebhook(ctx, s.config.WebhookURL, s.config.WebhookSecret); err != nil {
			return fmt.Errorf("registering webhook: %w", err)
		}
		s.logger.Info("registered webhook", "path", s.config.WebhookPath)
	} else {
		// updates can't be polled for while a webhook is registered
		if err := s.tg.DeleteWebhook(ctx); err != nil {
			return fmt.Errorf("removing webhook: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return metrics.RunServer(gctx, s.logger, s.config.MetricsListen) })
	g.Go(func() error { return ticker.Periodically(gctx, time.Minute, s.sweep) })

	if s.config.WebhookURL != "" {
		scheduler := consumer.NewScheduler(gctx, s.config.Parallelism, "webhook", s.router.HandleUpdate)
		srv := consumer.NewWebhookServer(consumer.WebhookConfig{
			Logger: s.logger,
			Bind:   s.config.WebhookBind,
			Path:   s.config.WebhookPath,
			Secret: s.config.WebhookSecret,
		}, scheduler)
		g.Go(func() error { return srv.Run(gctx) })

		err := g.Wait()
		scheduler.Shutdown()
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}

	pc := &consumer.PollingConsumer{
		Parallelism: s.config.Parallelism,
		Logger:      s.logger,
		RedisClient: s.rdb,
		Source:      s.tg,
		Router:      s.router,
		PollTimeout: s.config.PollTimeout,
	}
	g.Go(func() error { return pc.Run(gctx) })
	g.Go(func() error { return pc.RunPersistCursor(gctx) })

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Drops idle flood gate state, so memory is bounded by recently active senders.
func (s *Server) sweep(ctx context.Context) error {
	n := s.engine.Throttle.Sweep(10 * time.Minute)
	throttleKeysSwept.Add(float64(n))
	throttleKeys.Set(float64(s.engine.Throttle.Len()))
	jailedUsers.Set(float64(s.engine.Jail.Len()))
	if n > 0 {
		s.logger.Debug("swept idle flood gate keys", "count", n)
	}
	return nil
}
