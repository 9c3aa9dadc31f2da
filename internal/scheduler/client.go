package scheduler

import (
	"crypto/tls"
	"fmt"
	"time"

	"prospecta_backend/platform/config"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Periodic registers the recurring tasks with an asynq scheduler.
type Periodic struct {
	scheduler *asynq.Scheduler
}

// NewPeriodic creates the periodic task scheduler.
func NewPeriodic(cfg config.SchedulerConfig) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	scheduler := asynq.NewScheduler(opt, nil)

	interval := cfg.GetStatsSnapshotInterval()
	if interval <= 0 {
		interval = time.Minute
	}
	spec := fmt.Sprintf("@every %s", interval)
	if _, err := scheduler.Register(spec, NewStatsSnapshotTask(), asynq.Queue(queueName(cfg))); err != nil {
		return nil, err
	}

	return &Periodic{scheduler: scheduler}, nil
}

// Run starts the scheduler loop and blocks until shutdown.
func (p *Periodic) Run() error {
	return p.scheduler.Run()
}

// Shutdown stops the scheduler.
func (p *Periodic) Shutdown() {
	p.scheduler.Shutdown()
}

func queueName(cfg config.SchedulerConfig) string {
	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		return "default"
	}
	return queue
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
