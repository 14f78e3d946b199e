package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/junaidrashid-git/restaurant-api/app"
	"github.com/junaidrashid-git/restaurant-api/auth"
	"github.com/junaidrashid-git/restaurant-api/config"
	"github.com/junaidrashid-git/restaurant-api/database"
	"github.com/junaidrashid-git/restaurant-api/logger"
	"github.com/junaidrashid-git/restaurant-api/notify"
	"github.com/junaidrashid-git/restaurant-api/realtime"
	"github.com/junaidrashid-git/restaurant-api/routes"
	"github.com/junaidrashid-git/restaurant-api/uploads"
)

const (
	shutdownTimeout = 10 * time.Second
	backupRetention = 4 * 24 * time.Hour
	backupHour      = 2
)

var skipMigrate bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API, kitchen websocket feed and nightly upload backup",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not AutoMigrate on start")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	if !skipMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	notifier, closeNotifier := newNotifier(cfg)
	defer closeNotifier()

	var google auth.GoogleVerifier
	if cfg.Firebase.Enabled() {
		if google, err = auth.NewFirebaseVerifier(ctx, cfg.Firebase); err != nil {
			return err
		}
	} else {
		log.Warn("Firebase is not configured, Google sign-in is disabled")
	}

	hub := realtime.NewHub()
	env := &app.Env{
		DB:       db,
		Config:   cfg,
		Notifier: notifier,
		Hub:      hub,
		Uploads:  uploads.Store{Dir: cfg.Uploads.Dir, PublicBase: cfg.Uploads.PublicBase},
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newEngine(env, google),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return uploads.StartDailyBackup(ctx, cfg.Uploads.Dir, cfg.Uploads.BackupDir, backupRetention, backupHour, 0)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		// Hijacked websocket connections are not closed by Shutdown.
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newEngine(env *app.Env, google auth.GoogleVerifier) *gin.Engine {
	if env.Config.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.GinLogger())

	// Allow large file uploads (menu sheets, images)
	r.MaxMultipartMemory = 64 << 20

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, env, google)
	return r
}

// newNotifier publishes through RabbitMQ when AMQP_URL is set and falls back
// to logging otherwise. The returned func drains and closes it.
func newNotifier(cfg *config.Config) (notify.Notifier, func()) {
	if cfg.Broker.URL == "" {
		log.Warn("AMQP_URL is not set, notifications are only logged")
		return notify.LogNotifier{}, func() {}
	}
	pub, err := notify.NewAMQPPublisher(cfg.Broker.URL, cfg.Broker.Exchange)
	if err != nil {
		log.WithError(err).Warn("rabbitmq unavailable, notifications are only logged")
		return notify.LogNotifier{}, func() {}
	}
	async := notify.NewAsync(pub, 256, 5*time.Second)
	return async, func() {
		async.Close()
		if err := pub.Close(); err != nil {
			log.WithError(err).Warn("failed to close rabbitmq publisher")
		}
	}
}
