package consumer

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/truemoder/truemoder/telegram"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	slogecho "github.com/samber/slog-echo"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// Receives updates pushed by the Bot API, and hands them to a [Scheduler].
type WebhookServer struct {
	Logger *slog.Logger
	// must match the secret registered along with the webhook; empty disables the check
	Secret string

	scheduler *Scheduler
	echo      *echo.Echo
	httpd     *http.Server
}

type WebhookConfig struct {
	Logger *slog.Logger
	Bind   string
	Path   string
	Secret string
	// for the HTTP request metrics; defaults to the global prometheus registry
	Registerer prometheus.Registerer
}

func NewWebhookServer(config WebhookConfig, scheduler *Scheduler) *WebhookServer {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	path := config.Path
	if path == "" {
		path = "/webhook"
	}

	e := echo.New()
	// httpd
	var (
		httpTimeout        = 1 * time.Minute
		httpMaxHeaderBytes = 1 * (1024 * 1024)
	)
	srv := &WebhookServer{
		Logger:    logger,
		Secret:    config.Secret,
		scheduler: scheduler,
		echo:      e,
	}
	srv.httpd = &http.Server{
		Handler:        srv,
		Addr:           config.Bind,
		WriteTimeout:   httpTimeout,
		ReadTimeout:    httpTimeout,
		MaxHeaderBytes: httpMaxHeaderBytes,
	}

	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))
	reg := config.Registerer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "truemoder_webhook",
		Registerer: reg,
	}))

	e.GET("/_health", srv.HandleHealthCheck)
	e.POST(path, srv.HandleUpdate)
	return srv
}

func (srv *WebhookServer) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	srv.echo.ServeHTTP(rw, req)
}

type GenericStatus struct {
	Daemon  string `json:"daemon"`
	Status  string `json:"status"`
	Message string `json:"msg,omitempty"`
}

func (srv *WebhookServer) HandleHealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, GenericStatus{Status: "ok", Daemon: "truemoder"})
}

func (srv *WebhookServer) HandleUpdate(c echo.Context) error {
	if srv.Secret != "" {
		got := c.Request().Header.Get(secretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(srv.Secret)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "bad webhook secret")
		}
	}

	var upd telegram.Update
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid update body")
	}
	updatesReceived.WithLabelValues("webhook").Inc()

	// handling outlives the request: the Bot API only needs the acknowledgement
	if err := srv.scheduler.AddWork(c.Request().Context(), UpdateKey(&upd), &upd); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "not accepting updates")
	}
	return c.NoContent(http.StatusOK)
}

// Serves until ctx is done, then shuts down gracefully.
func (srv *WebhookServer) Run(ctx context.Context) error {
	srv.Logger.Info("starting webhook server", "bind", srv.httpd.Addr)
	errc := make(chan error, 1)
	go func() {
		if err := srv.httpd.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			srv.Logger.Error("HTTP server shutting down unexpectedly", "err", err)
		}
		return err
	case <-ctx.Done():
	}
	return srv.Shutdown()
}

func (srv *WebhookServer) Shutdown() error {
	srv.Logger.Info("shutting down webhook server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.httpd.Shutdown(ctx)
}
