package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
	_ "go.uber.org/automaxprocs"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "truemoder",
		Usage:   "chat moderation bot daemon",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			Value:   "info",
			EnvVars: []string{"TRUEMODER_LOG_LEVEL", "LOG_LEVEL"},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

func configLogger(cctx *cli.Context, writer io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cctx.String("log-level")) {
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the bot",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "bot-token",
			Usage:    "Bot API token",
			Required: true,
			EnvVars:  []string{"TRUEMODER_BOT_TOKEN", "BOT_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "bot-name",
			Usage:   "bot username, with leading '@'; looked up from the API when not set",
			EnvVars: []string{"TRUEMODER_BOT_NAME"},
		},
		&cli.StringFlag{
			Name:    "api-host",
			Usage:   "Bot API server base URL",
			Value:   "https://api.telegram.org",
			EnvVars: []string{"TRUEMODER_API_HOST"},
		},
		&cli.StringFlag{
			Name:    "proxy",
			Usage:   "outbound proxy URL for Bot API calls (http, https, or socks5)",
			EnvVars: []string{"TRUEMODER_PROXY", "HTTPS_PROXY"},
		},
		&cli.Float64Flag{
			Name:    "api-rate-limit",
			Usage:   "max Bot API requests per second",
			Value:   25,
			EnvVars: []string{"TRUEMODER_API_RATE_LIMIT"},
		},
		&cli.Int64SliceFlag{
			Name:    "super-admins",
			Usage:   "user IDs treated as administrators of every chat",
			EnvVars: []string{"TRUEMODER_SUPER_ADMINS"},
		},
		&cli.StringFlag{
			Name:    "faq-link",
			Usage:   "link to setup instructions, posted in greetings",
			Value:   "https://telegra.ph/TrueModer-FAQ",
			EnvVars: []string{"TRUEMODER_FAQ_LINK"},
		},
		&cli.StringFlag{
			Name:    "words-file",
			Usage:   "path to JSON file with named word lists for the classifier",
			EnvVars: []string{"TRUEMODER_WORDS_FILE"},
		},
		&cli.BoolFlag{
			Name:    "block-links",
			Usage:   "treat any link in a message as a violation",
			EnvVars: []string{"TRUEMODER_BLOCK_LINKS"},
		},
		&cli.StringFlag{
			Name:    "limits-file",
			Usage:   "path to YAML file with per-handler flood limits",
			EnvVars: []string{"TRUEMODER_LIMITS_FILE"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL, for the update offset and admin status cache",
			EnvVars: []string{"TRUEMODER_REDIS_URL", "REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "slack-webhook-url",
			Usage:   "full URL of slack webhook, notified of bans",
			EnvVars: []string{"SLACK_WEBHOOK_URL"},
		},
		&cli.IntFlag{
			Name:    "parallelism",
			Usage:   "number of updates handled concurrently",
			Value:   64,
			EnvVars: []string{"TRUEMODER_PARALLELISM"},
		},
		&cli.DurationFlag{
			Name:    "poll-timeout",
			Usage:   "long poll timeout for update intake",
			Value:   30 * time.Second,
			EnvVars: []string{"TRUEMODER_POLL_TIMEOUT"},
		},
		&cli.StringFlag{
			Name:    "webhook-url",
			Usage:   "public URL to register as webhook; updates are long-polled when not set",
			EnvVars: []string{"TRUEMODER_WEBHOOK_URL"},
		},
		&cli.StringFlag{
			Name:    "webhook-secret",
			Usage:   "secret token the Bot API sends along with webhook requests",
			EnvVars: []string{"TRUEMODER_WEBHOOK_SECRET"},
		},
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for webhook requests",
			Value:   ":8443",
			EnvVars: []string{"TRUEMODER_BIND"},
		},
		&cli.StringFlag{
			Name:    "webhook-path",
			Usage:   "HTTP path webhook requests are served on",
			Value:   "/webhook",
			EnvVars: []string{"TRUEMODER_WEBHOOK_PATH"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3998",
			EnvVars: []string{"TRUEMODER_METRICS_LISTEN"},
		},
	},
	Action: runBot,
}

func runBot(cctx *cli.Context) error {
	logger := configLogger(cctx, os.Stdout)

	shutdownOTEL, err := configOTEL("truemoder")
	if err != nil {
		return err
	}
	defer shutdownOTEL()

	// Trap SIGINT to trigger a shutdown.
	ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := NewServer(ctx, Config{
		BotToken:        cctx.String("bot-token"),
		BotName:         cctx.String("bot-name"),
		APIHost:         cctx.String("api-host"),
		ProxyURL:        cctx.String("proxy"),
		APIRateLimit:    cctx.Float64("api-rate-limit"),
		SuperAdmins:     cctx.Int64Slice("super-admins"),
		FAQLink:         cctx.String("faq-link"),
		WordsFileJSON:   cctx.String("words-file"),
		BlockLinks:      cctx.Bool("block-links"),
		LimitsFileYAML:  cctx.String("limits-file"),
		RedisURL:        cctx.String("redis-url"),
		SlackWebhookURL: cctx.String("slack-webhook-url"),
		Parallelism:     cctx.Int("parallelism"),
		PollTimeout:     cctx.Duration("poll-timeout"),
		WebhookURL:      cctx.String("webhook-url"),
		WebhookSecret:   cctx.String("webhook-secret"),
		WebhookBind:     cctx.String("bind"),
		WebhookPath:     cctx.String("webhook-path"),
		MetricsListen:   cctx.String("metrics-listen"),
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run moderation bot: %w", err)
	}
	logger.Info("shut down")
	return nil
}
