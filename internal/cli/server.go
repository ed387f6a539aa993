package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecoquiz-service/internal/app"
	"ecoquiz-service/internal/config"
	"ecoquiz-service/internal/infra/memory"
	"ecoquiz-service/internal/infra/openai"
	pgstore "ecoquiz-service/internal/infra/postgres"
	redisstore "ecoquiz-service/internal/infra/redis"
	"ecoquiz-service/internal/infra/trivia"
	transport "ecoquiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
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

	triviaBase := cfg.Trivia.BaseURL
	if triviaBase == "" {
		triviaBase = "https://opentdb.com"
	}
	questions := trivia.NewClient(triviaBase, config.TTLDuration(cfg.Trivia.Timeout, 10*time.Second))

	var attempts app.AttemptStore
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		attempts = pgstore.NewAttemptStore(pool)
	} else {
		attempts = memory.NewAttemptStore()
	}

	var leaderboard app.LeaderboardStore
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		leaderboard = redisstore.NewLeaderboard(redisClient)
	} else {
		leaderboard = memory.NewLeaderboard()
	}

	var recommender app.Recommender
	if cfg.OpenAI.APIKey != "" {
		client := openai.NewClient(cfg.OpenAI.APIKey,
			openai.WithModel(cfg.OpenAI.Model),
			openai.WithMaxTokens(cfg.OpenAI.MaxTokens),
			openai.WithTimeout(config.TTLDuration(cfg.OpenAI.Timeout, 30*time.Second)),
		)
		if cfg.OpenAI.BaseURL != "" {
			openai.WithBaseURL(cfg.OpenAI.BaseURL)(client)
		}
		recTTL := config.TTLDuration(cfg.Quiz.RecommendationTTL, time.Hour)
		recommender = memory.NewRecommendationCache(client, recTTL)
	} else {
		log.Printf("OPENAI_API_KEY not set; recommendations will serve the static fallback")
	}

	registry := memory.NewSessionRegistry()
	service := app.NewQuizService(registry, questions, attempts, leaderboard, recommender)

	sessionTTL := config.TTLDuration(cfg.Quiz.SessionTTL, 10*time.Minute)
	reaper := cron.New()
	if _, err := reaper.AddFunc("@every 1m", func() { service.ReapIdle(sessionTTL) }); err != nil {
		return err
	}
	reaper.Start()
	defer reaper.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", transport.NewWSHandler(service).ServeWS)
	mux.Handle("/recommendations", transport.NewRecommendationsHandler(service))
	mux.Handle("/leaderboard", transport.NewLeaderboardHandler(service))

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
