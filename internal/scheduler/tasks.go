// Package scheduler provides the asynq background task definitions and worker.
package scheduler

import (
	"github.com/hibiken/asynq"
)

// TaskStatsSnapshot recomputes the conversation statistics rollup and stores
// it in redis for the UI read path.
const TaskStatsSnapshot = "conversations.stats_snapshot"

// NewStatsSnapshotTask creates the stats snapshot task. It carries no payload;
// the rollup is always recomputed from the full log.
func NewStatsSnapshotTask() *asynq.Task {
	return asynq.NewTask(TaskStatsSnapshot, nil)
}
