package scheduler

import (
	"context"
	"fmt"

	"prospecta_backend/internal/conversations"
	"prospecta_backend/platform/config"
	"prospecta_backend/platform/logger"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// Worker runs the asynq server processing background tasks.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *conversations.Repository
	cache  *conversations.RedisStatsCache
	log    *logger.Logger
}

// NewWorker creates the background worker.
func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, cache *conversations.RedisStatsCache, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	queue := queueName(cfg)
	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   conversations.NewRepository(pool),
		cache:  cache,
		log:    log,
	}

	mux.HandleFunc(TaskStatsSnapshot, w.handleStatsSnapshot)

	return w, nil
}

// Run starts the worker and blocks until shutdown.
func (w *Worker) Run() error {
	return w.server.Run(w.mux)
}

// Shutdown stops the worker.
func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

// handleStatsSnapshot folds the conversation log into the stats rollup and
// stores it in redis. Threads are folded alongside only for the activity log;
// both folds are pure, so they run in parallel over the same slice.
func (w *Worker) handleStatsSnapshot(ctx context.Context, _ *asynq.Task) error {
	entries, err := w.repo.ListEntries(ctx, conversations.EntryFilter{})
	if err != nil {
		w.log.DatabaseError("list conversation entries", err)
		return err
	}

	var (
		stats   conversations.Stats
		threads []conversations.Thread
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats = conversations.BuildStats(entries)
		return nil
	})
	g.Go(func() error {
		threads = conversations.BuildThreads(entries)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := w.cache.Set(ctx, stats); err != nil {
		w.log.Error("failed to store stats snapshot", "error", err)
		return err
	}

	w.log.Info("stats snapshot stored",
		"totalMessages", stats.TotalMessages,
		"distinctContacts", stats.DistinctContacts,
		"threads", len(threads),
		"replyRate", stats.ReplyRate,
	)
	return nil
}
