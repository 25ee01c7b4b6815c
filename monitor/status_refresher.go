package monitor

import (
	"context"
	"log"
	"time"

	"github.com/medvolt/airawat-backend/batch"
	"github.com/medvolt/airawat-backend/config"
	"github.com/medvolt/airawat-backend/models"
)

// RefreshInterval is the minimum age before a non-terminal status is
// polled again
const RefreshInterval = 30 * time.Second

// Describer is the bulk job-status lookup the refresher polls through
type Describer interface {
	Describe(ctx context.Context, jobIDs []string) (map[string]batch.JobRecord, error)
}

// Store persists merged batch state
type Store interface {
	UpdateBatchStatus(experiment *config.Experiment) error
}

// StatusRefresher reconciles locally persisted batch state with the
// remote queue. Refresh is request-triggered, not a background loop;
// concurrent redundant polls are tolerated (last write wins).
type StatusRefresher struct {
	store     Store
	describer Describer
	now       func() time.Time
}

// NewStatusRefresher creates a new status refresher
func NewStatusRefresher(store Store, describer Describer) *StatusRefresher {
	return &StatusRefresher{
		store:     store,
		describer: describer,
		now:       time.Now,
	}
}

// needsRefresh decides whether one experiment is due for a poll:
// never polled means poll, terminal status means never poll again,
// otherwise poll once the last refresh is RefreshInterval old.
func (s *StatusRefresher) needsRefresh(experiment *config.Experiment) bool {
	if experiment.BatchJobID == "" {
		return false
	}
	if experiment.BatchStatus == nil {
		return true
	}
	if models.IsTerminalStatus(*experiment.BatchStatus) {
		return false
	}
	if experiment.BatchStatusUpdatedAt == nil {
		return true
	}
	return s.now().Sub(*experiment.BatchStatusUpdatedAt) >= RefreshInterval
}

// Refresh polls the remote queue for every stale experiment in the set
// and persists the merged state. A failed bulk describe degrades to a
// logged no-op so the read path still serves persisted data. Callers
// should re-read from the store afterwards for a consistent view.
func (s *StatusRefresher) Refresh(ctx context.Context, experiments []config.Experiment) {
	var stale []*config.Experiment
	var jobIDs []string
	for i := range experiments {
		if s.needsRefresh(&experiments[i]) {
			stale = append(stale, &experiments[i])
			jobIDs = append(jobIDs, experiments[i].BatchJobID)
		}
	}

	// No network call when nothing is due
	if len(stale) == 0 {
		return
	}

	records, err := s.describer.Describe(ctx, jobIDs)
	if err != nil {
		log.Printf("Failed to describe batch jobs: %v", err)
		return
	}

	for _, experiment := range stale {
		record, ok := records[experiment.BatchJobID]
		if !ok {
			continue
		}
		s.merge(experiment, record)
		if err := s.store.UpdateBatchStatus(experiment); err != nil {
			log.Printf("Failed to persist batch status for experiment %d: %v", experiment.ID, err)
		}
	}
}

// merge applies one describe record: status and reason are overwritten,
// remote timestamps only when present, and the local refresh timestamp
// is bumped because a response was actually applied.
func (s *StatusRefresher) merge(experiment *config.Experiment, record batch.JobRecord) {
	status := record.Status
	experiment.BatchStatus = &status
	experiment.BatchStatusReason = record.StatusReason
	if record.CreatedAt != nil {
		experiment.BatchCreatedAt = record.CreatedAt
	}
	if record.StartedAt != nil {
		experiment.BatchStartedAt = record.StartedAt
	}
	if record.StoppedAt != nil {
		experiment.BatchStoppedAt = record.StoppedAt
	}
	refreshedAt := s.now()
	experiment.BatchStatusUpdatedAt = &refreshedAt
}
