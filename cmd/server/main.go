package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/donatewisely/donatewisely/assets"
	"github.com/donatewisely/donatewisely/internal"
	"github.com/donatewisely/donatewisely/internal/agency"
	"github.com/donatewisely/donatewisely/internal/auth"
	"github.com/donatewisely/donatewisely/internal/auth/google"
	"github.com/donatewisely/donatewisely/internal/captcha"
	"github.com/donatewisely/donatewisely/internal/db"
	"github.com/donatewisely/donatewisely/internal/db/migrate"
	"github.com/donatewisely/donatewisely/internal/email"
	"github.com/donatewisely/donatewisely/internal/email/mailgun"
	"github.com/donatewisely/donatewisely/internal/email/postmark"
	emailview "github.com/donatewisely/donatewisely/internal/email/view"
	"github.com/donatewisely/donatewisely/internal/mongostore"
	"github.com/donatewisely/donatewisely/internal/sqlite"
	"github.com/donatewisely/donatewisely/internal/storage"
	"github.com/donatewisely/donatewisely/internal/storage/s3"
	"github.com/donatewisely/donatewisely/internal/telemetry"
	"github.com/donatewisely/donatewisely/internal/web"
	"github.com/donatewisely/donatewisely/internal/web/sessions"
	"github.com/donatewisely/donatewisely/internal/web/view"
	"github.com/donatewisely/donatewisely/internal/wishcard"
	"github.com/donatewisely/donatewisely/migrations"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName = "donatewisely"

	// outboundTimeout limits calls to mail and captcha APIs.
	outboundTimeout = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Stderr))
}

// store is everything the services need from a database.
type store interface {
	auth.Store
	agency.Store
	wishcard.Store
}

func run(ctx context.Context, w io.Writer) int {
	logger := slog.New(slog.NewTextHandler(w, nil))

	cfg, err := configFromEnv()
	if err != nil {
		logger.Error("failed to get config from environment", "error", err)
		return 1
	}

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, internal.Version(), cfg.telemetry)
	if err != nil {
		logger.Error("failed to setup tracing", "error", err)
		return 1
	}

	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.http.shutdownTimeout)
		defer cancel()

		err := shutdownTracing(shutCtx)
		if err != nil {
			logger.Error("failed to shutdown tracing", "error", err)
		}
	}()

	st, closeStore, err := openStore(ctx, logger, cfg.db)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.db.driver, "error", err)
		return 1
	}

	defer func() {
		err := closeStore()
		if err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	emailRenderer, err := emailview.NewMemRenderer(assets.EmailFS)
	if err != nil {
		logger.Error("failed to parse email templates", "error", err)
		return 1
	}

	emailSvc := email.NewService(emailRenderer, newEmailSender(logger, cfg.email), cfg.email.service)

	var googleVerifier auth.IDTokenVerifier
	if cfg.http.server.Client.GoogleClientID != "" {
		googleVerifier = google.NewVerifier(cfg.http.server.Client.GoogleClientID)
	}

	authSvc, err := auth.NewService(st, emailSvc, googleVerifier, func(err error) {
		logger.Error("auth worker failed", "error", err)
	}, cfg.auth)
	if err != nil {
		logger.Error("failed to create auth service", "error", err)
		return 1
	}

	uploader, uploadFS, err := newUploader(ctx, cfg.upload)
	if err != nil {
		logger.Error("failed to create uploader", "driver", cfg.upload.driver, "error", err)
		return 1
	}

	var captchaVerifier captcha.Verifier = captcha.AllowAll{}
	if !cfg.captcha.Secret.IsEmpty() {
		captchaVerifier = captcha.NewReCAPTCHA(&http.Client{Timeout: outboundTimeout}, cfg.captcha)
	} else {
		logger.Warn("captcha verification disabled, RECAPTCHA_SECRET is not set")
	}

	viewRenderer, err := newViewRenderer(logger, cfg.http.viewDir)
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		return 1
	}

	handler := web.NewServer(&web.ServerDeps{
		Logger:          logger,
		ViewRenderer:    viewRenderer,
		Sessions:        sessions.NewStore(cfg.session),
		AuthService:     authSvc,
		AgencyService:   agency.NewService(st),
		WishCardService: wishcard.NewService(st, uploader),
		Captcha:         captchaVerifier,
		DistFS:          http.FS(assets.DistFS),
		UploadFS:        uploadFS,
	}, cfg.http.server)

	srv := &http.Server{
		Addr:         cfg.http.addr,
		ReadTimeout:  cfg.http.readTimeout,
		WriteTimeout: cfg.http.writeTimeout,
		IdleTimeout:  cfg.http.idleTimeout,
		Handler:      otelhttp.NewHandler(handler, serviceName),
	}

	// We need to run two tasks concurrently:
	// - Listen and serving of the HTTP server.
	// - Waiting for a signal to stop the server.

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server",
			"addr", cfg.http.addr,
			"version", internal.Version(),
			"buildRevision", internal.BuildRevision,
			"buildTime", internal.BuildTime,
		)
		// ListenAndServe always returns a non-nil error,
		// g will cancel gCtx when an error is returned, so
		// this will also stop the other goroutine.
		return srv.ListenAndServe()
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("stopping http server")

		shutCtx, cancel := context.WithTimeout(context.Background(), cfg.http.shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutCtx)
	})

	err = g.Wait()

	// emails may still be on their way.
	authSvc.Wait()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server stopped with error", "error", err)
		return 1
	}

	logger.Info("http server stopped successfully")

	return 0
}

func openStore(ctx context.Context, logger *slog.Logger, cfg dbConfig) (store, func() error, error) {
	if cfg.driver == dbDriverMongo {
		s, err := mongostore.Connect(ctx, cfg.mongoURI, cfg.mongoDatabase)
		if err != nil {
			return nil, nil, err
		}

		closeFunc := func() error {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return s.Close(closeCtx)
		}

		err = s.EnsureIndexes(ctx)
		if err != nil {
			return nil, nil, errors.Join(err, closeFunc())
		}

		return s, closeFunc, nil
	}

	writeDB, err := db.OpenSQLite(cfg.file, true)
	if err != nil {
		return nil, nil, err
	}

	readDB, err := db.OpenSQLite(cfg.file, false)
	if err != nil {
		return nil, nil, errors.Join(err, writeDB.Close())
	}

	closeFunc := func() error {
		return errors.Join(writeDB.Close(), readDB.Close())
	}

	if cfg.migrate {
		err = migrateDB(ctx, logger, writeDB)
		if err != nil {
			return nil, nil, errors.Join(err, closeFunc())
		}
	}

	return sqlite.New(writeDB, readDB), closeFunc, nil
}

func migrateDB(ctx context.Context, logger *slog.Logger, sqlDB *sql.DB) error {
	logger.Info("attempting to migrate database")

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	ran, err := migrate.RunFS(ctx, sqlDB, migrations.FS)
	if err != nil {
		return err
	}

	for _, m := range ran {
		logger.Info("migration ran", "version", m.Version, "file", m.Filename)
	}

	return nil
}

func newEmailSender(logger *slog.Logger, cfg emailConfig) email.Sender {
	client := &http.Client{Timeout: outboundTimeout}

	switch cfg.driver {
	case emailDriverPostmark:
		return postmark.NewSender(client, cfg.postmark)
	case emailDriverMailgun:
		return mailgun.NewSender(client, cfg.mailgun)
	default:
		return email.NewLogSender(logger)
	}
}

// newUploader returns the uploader and, for uploads kept on disk, the file
// system they are served from.
func newUploader(ctx context.Context, cfg uploadConfig) (storage.Uploader, http.FileSystem, error) {
	if cfg.driver == uploadDriverS3 {
		u, err := s3.New(ctx, cfg.s3)
		if err != nil {
			return nil, nil, err
		}
		return u, nil, nil
	}

	err := os.MkdirAll(cfg.dir, 0o755)
	if err != nil {
		return nil, nil, err
	}

	u := &storage.DiskUploader{
		Dir:     cfg.dir,
		BaseURL: &url.URL{Path: "/uploads"},
	}

	return u, http.Dir(cfg.dir), nil
}

func newViewRenderer(logger *slog.Logger, dir string) (web.ViewRenderer, error) {
	if dir != "" {
		logger.Info("loading templates from disk", "dir", dir)
		return view.NewFSRenderer(os.DirFS(dir)), nil
	}

	return view.NewMemRenderer(assets.TemplateFS)
}
