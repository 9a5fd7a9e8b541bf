package job

import (
	"schooldesk/database"
	"schooldesk/logger"
)

// CheckpointJob periodically merges the sqlite WAL back into the main
// database file so it does not grow without bound.
type CheckpointJob struct{}

func NewCheckpointJob() *CheckpointJob {
	return new(CheckpointJob)
}

func (j *CheckpointJob) Run() {
	if err := database.Checkpoint(); err != nil {
		logger.Warning("wal checkpoint failed:", err)
	}
}
