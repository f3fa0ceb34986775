package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"survey-service/internal/app"
	"survey-service/internal/config"
	"survey-service/internal/infra/memory"
	pgstore "survey-service/internal/infra/postgres"
	redisstore "survey-service/internal/infra/redis"
	"survey-service/internal/infra/remote"
	"survey-service/internal/log"
	"survey-service/internal/metrics"
	transport "survey-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewServeCmd builds the CLI subcommand that starts the HTTP server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	var remoteURL string
	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Serve the question API, the websocket bridge and metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port, remoteURL)
		},
	}
	cmd.Flags().StringVar(&remoteURL, "remote", "", "drive websocket sessions against this question service instead of the local catalog")
	return cmd
}

func runServer(ctx context.Context, configPath, portFlag, remoteURL string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, false); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	catalog := buildCatalog(cfg, redisClient, pool)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	sessionMetrics := metrics.NewSessionMetrics(registry, "survey")

	var sessionService app.QuestionService = catalog
	if remoteURL != "" {
		timeout := config.TTLDuration(cfg.Survey.RequestTimeout, 10*time.Second)
		sessionService = remote.NewQuestionClient(remoteURL, timeout)
		log.Infof("websocket sessions use remote question service %s", remoteURL)
	}
	wsHandler := transport.NewWSHandler(sessionService, sessionMetrics,
		app.WithNotificationDelay(config.TTLDuration(cfg.Survey.NotificationDelay, app.DefaultNotificationDelay)),
		app.WithRecorder(sessionMetrics),
	)

	router := transport.NewRouter(transport.NewQuestionsHandler(catalog), wsHandler, metrics.Handler(registry))
	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("starting survey service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildCatalog picks the question source, its cache and the answer sink from
// what is configured. Postgres wins over Redis, Redis over memory.
func buildCatalog(cfg config.Config, redisClient *redis.Client, pool *pgxpool.Pool) *app.Catalog {
	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(memory.SampleQuestions())
	if pool != nil {
		loader = pgstore.NewQuestionLoader(pool)
	}

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var questions app.QuestionRepository
	if redisClient != nil {
		questions = redisstore.NewQuestionRepository(redisClient, loader, config.TTLDuration(cfg.Redis.TTL, questionTTL))
	} else {
		questions = memory.NewQuestionRepository(loader, questionTTL)
	}

	var answers app.AnswerStore
	switch {
	case pool != nil:
		answers = pgstore.NewAnswerStore(pool)
	case redisClient != nil:
		answers = redisstore.NewAnswerStore(redisClient)
	default:
		answers = memory.NewAnswerStore()
	}
	return app.NewCatalog(questions, answers)
}
