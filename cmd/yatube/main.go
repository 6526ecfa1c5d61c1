package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/golang-migrate/migrate/v4"
	migratep "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jessevdk/go-flags"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Decentr-net/logrus/sentry"

	"github.com/Decentr-net/yatube/internal/api/health"
	"github.com/Decentr-net/yatube/internal/auth"
	"github.com/Decentr-net/yatube/internal/metrics"
	mm "github.com/Decentr-net/yatube/internal/middleware"
	"github.com/Decentr-net/yatube/internal/middleware/memory"
	redisstorage "github.com/Decentr-net/yatube/internal/middleware/redis"
	"github.com/Decentr-net/yatube/internal/server"
	"github.com/Decentr-net/yatube/internal/service/impl"
	"github.com/Decentr-net/yatube/internal/storage/postgres"
)

// nolint:lll,gochecknoglobals
var opts = struct {
	Host           string        `long:"http.host" env:"HTTP_HOST" default:"0.0.0.0" description:"IP to listen on"`
	Port           int           `long:"http.port" env:"HTTP_PORT" default:"8080" description:"port to listen on for insecure connections, defaults to a random value"`
	RequestTimeout time.Duration `long:"http.request-timeout" env:"HTTP_REQUEST_TIMEOUT" default:"45s" description:"request processing timeout"`

	Postgres                   string `long:"postgres" env:"POSTGRES" default:"host=localhost port=5432 user=postgres password=root sslmode=disable" description:"postgres dsn"`
	PostgresMaxOpenConnections int    `long:"postgres.max_open_connections" env:"POSTGRES_MAX_OPEN_CONNECTIONS" default:"0" description:"postgres maximal open connections count, 0 means unlimited"`
	PostgresMaxIdleConnections int    `long:"postgres.max_idle_connections" env:"POSTGRES_MAX_IDLE_CONNECTIONS" default:"5" description:"postgres maximal idle connections count"`
	PostgresMigrations         string `long:"postgres.migrations" env:"POSTGRES_MIGRATIONS" default:"scripts/migrations/postgres" description:"postgres migrations directory"`

	Redis    string        `long:"redis" env:"REDIS" description:"redis address, in-memory cache is used when empty"`
	CacheTTL time.Duration `long:"cache.ttl" env:"CACHE_TTL" default:"20s" description:"lifetime of cached posts pages"`

	AuthSecret string        `long:"auth.secret" env:"AUTH_SECRET" required:"true" description:"secret to sign tokens with"`
	AuthIssuer string        `long:"auth.issuer" env:"AUTH_ISSUER" default:"yatube" description:"tokens issuer"`
	AuthTTL    time.Duration `long:"auth.ttl" env:"AUTH_TTL" default:"24h" description:"tokens lifetime"`

	RateLimit float64 `long:"ratelimit.rps" env:"RATELIMIT_RPS" default:"1" description:"allowed write requests per second per user, 0 disables limiting"`
	RateBurst int     `long:"ratelimit.burst" env:"RATELIMIT_BURST" default:"5" description:"write requests burst per user"`

	LogLevel  string `long:"log.level" env:"LOG_LEVEL" default:"info" description:"Log level" choice:"debug" choice:"info" choice:"warning" choice:"error"`
	SentryDSN string `long:"sentry.dsn" env:"SENTRY_DSN" description:"sentry dsn"`
}{}

var errTerminated = errors.New("terminated")

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.ShortDescription = "Yatube"
	parser.LongDescription = "Yatube blogging service"

	_, err := parser.Parse()

	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			parser.WriteHelp(os.Stdout)
			os.Exit(0)
		}
		logrus.WithError(err).Fatal("error occurred while parsing flags")
	}

	lvl, _ := logrus.ParseLevel(opts.LogLevel) // err will always be nil
	logrus.SetLevel(lvl)

	logrus.Info("service started")

	if opts.SentryDSN != "" {
		hook, err := sentry.NewHook(sentry.Options{
			Dsn:              opts.SentryDSN,
			AttachStacktrace: true,
			Release:          health.GetVersion(),
			ServerName:       "yatube",
		}, logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel)

		if err != nil {
			logrus.WithError(err).Fatal("failed to init sentry")
		}

		logrus.AddHook(hook)
	} else {
		logrus.Info("empty sentry dsn")
		logrus.Warn("skip sentry initialization")
	}

	db := mustGetDB()
	s := postgres.New(db)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewCollector(reg)

	pingers := []health.Pinger{health.SubjectPinger("postgres", s.Ping)}

	var cacheStorage mm.Storage
	if opts.Redis != "" {
		rs := redisstorage.NewStorage(redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{opts.Redis},
		}))
		pingers = append(pingers, health.SubjectPinger("redis", rs.Ping))
		cacheStorage = rs
	} else {
		logrus.Warn("empty redis address, cache is kept in memory")
		cacheStorage = memory.NewStorage()
	}

	var rl *mm.RateLimiter
	if opts.RateLimit > 0 {
		rl = mm.NewRateLimiter(rate.Limit(opts.RateLimit), opts.RateBurst, time.Minute)
		defer rl.Stop()
	}

	r := chi.NewMux()

	server.SetupRouter(server.Dependencies{
		Service:       impl.New(s),
		Cache:         mm.NewCache(cacheStorage, opts.CacheTTL, m),
		Authenticator: auth.New([]byte(opts.AuthSecret), opts.AuthIssuer, opts.AuthTTL),
		RateLimiter:   rl,
		Metrics:       m,
	}, r, opts.RequestTimeout)

	r.Get("/health", health.Handler(5*time.Second, pingers...))
	r.Handle("/metrics", metrics.Handler(reg))

	srv := http.Server{
		Addr:    fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler: r,
	}

	gr, _ := errgroup.WithContext(context.Background())
	gr.Go(srv.ListenAndServe)
	gr.Go(func() error {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

		s := <-sigs

		logrus.Infof("terminating by %s signal", s)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logrus.WithError(err).Error("failed to gracefully shutdown server")
		}

		return errTerminated
	})

	logrus.Infof("listening on %s", srv.Addr)

	if err := gr.Wait(); err != nil && !errors.Is(err, errTerminated) && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Fatal("service unexpectedly closed")
	}
}

func mustGetDB() *sql.DB {
	db, err := sql.Open("postgres", opts.Postgres)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create postgres connection")
	}
	db.SetMaxOpenConns(opts.PostgresMaxOpenConnections)
	db.SetMaxIdleConns(opts.PostgresMaxIdleConnections)

	if err := db.PingContext(context.Background()); err != nil {
		logrus.WithError(err).Fatal("failed to ping postgres")
	}

	driver, err := migratep.WithInstance(db, &migratep.Config{})
	if err != nil {
		logrus.WithError(err).Fatal("failed to create database migrate driver")
	}

	migrator, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", opts.PostgresMigrations), "postgres", driver)
	if err != nil {
		logrus.WithError(err).Fatal("failed to create migrator")
	}

	switch v, d, err := migrator.Version(); err {
	case nil:
		logrus.Infof("database version %d with dirty state %t", v, d)
	case migrate.ErrNilVersion:
		logrus.Info("database version: nil")
	default:
		logrus.WithError(err).Fatal("failed to get version")
	}

	switch err := migrator.Up(); err {
	case nil:
		logrus.Info("database was migrated")
	case migrate.ErrNoChange:
		logrus.Info("database is up-to-date")
	default:
		logrus.WithError(err).Fatal("failed to migrate db")
	}

	return db
}
