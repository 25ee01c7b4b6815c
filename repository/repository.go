package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/medvolt/airawat-backend/config"
	"github.com/medvolt/airawat-backend/models"
)

// ErrNotFound is returned when a lookup matches no row. Ownership misses
// and genuinely absent ids are deliberately indistinguishable.
var ErrNotFound = errors.New("record not found")

// Repository handles database operations
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new repository instance
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser creates a new user account
func (r *Repository) CreateUser(email, passwordHash string) (*config.User, error) {
	user := &config.User{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	if err := r.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email
func (r *Repository) GetUserByEmail(email string) (*config.User, error) {
	var user config.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateExperiment creates a new experiment record with no batch state yet
func (r *Repository) CreateExperiment(userID uint, req *models.CreateExperimentRequest) (*config.Experiment, error) {
	experiment := &config.Experiment{
		UserID:         userID,
		Name:           req.Name,
		Description:    req.Description,
		PDBFileURL:     req.PDBFileURL,
		SimulationTime: req.SimulationTime,
		Smile:          req.Smile,
		CreatedAt:      time.Now(),
	}
	if err := r.db.Create(experiment).Error; err != nil {
		return nil, fmt.Errorf("failed to create experiment: %w", err)
	}
	return experiment, nil
}

// SetResultsFolder records the output prefix. Called exactly once, right
// after creation and before job submission.
func (r *Repository) SetResultsFolder(experiment *config.Experiment, s3URL string) error {
	experiment.ResultsFolderS3URL = s3URL
	return r.db.Model(experiment).Update("results_folder_s3_url", s3URL).Error
}

// SetBatchJobID records the job id assigned by the remote queue
func (r *Repository) SetBatchJobID(experiment *config.Experiment, jobID string) error {
	experiment.BatchJobID = jobID
	return r.db.Model(experiment).Update("batch_job_id", jobID).Error
}

// GetExperimentForUser retrieves an experiment scoped by both id and
// owner. Lookups are never done by id alone.
func (r *Repository) GetExperimentForUser(id, userID uint) (*config.Experiment, error) {
	var experiment config.Experiment
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&experiment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &experiment, nil
}

// ListExperimentsForUser lists all experiments owned by a user
func (r *Repository) ListExperimentsForUser(userID uint) ([]config.Experiment, error) {
	var experiments []config.Experiment
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&experiments).Error
	if err != nil {
		return nil, err
	}
	return experiments, nil
}

// UpdateBatchStatus persists the batch state fields after a status merge
func (r *Repository) UpdateBatchStatus(experiment *config.Experiment) error {
	return r.db.Model(experiment).
		Updates(map[string]interface{}{
			"batch_status":            experiment.BatchStatus,
			"batch_status_reason":     experiment.BatchStatusReason,
			"batch_created_at":        experiment.BatchCreatedAt,
			"batch_started_at":        experiment.BatchStartedAt,
			"batch_stopped_at":        experiment.BatchStoppedAt,
			"batch_status_updated_at": experiment.BatchStatusUpdatedAt,
		}).Error
}

// ToResponse converts a database Experiment to its API shape
func (r *Repository) ToResponse(experiment *config.Experiment) *models.ExperimentResponse {
	resp := &models.ExperimentResponse{
		ID:             experiment.ID,
		Name:           experiment.Name,
		Description:    experiment.Description,
		PDBFileURL:     experiment.PDBFileURL,
		SimulationTime: experiment.SimulationTime,
		Smile:          experiment.Smile,
		CreatedAt:      experiment.CreatedAt,
	}
	if experiment.BatchStatus != nil {
		resp.Status = &models.BatchStatusResponse{
			Status:       *experiment.BatchStatus,
			StatusReason: experiment.BatchStatusReason,
			CreatedAt:    experiment.BatchCreatedAt,
			StartedAt:    experiment.BatchStartedAt,
			StoppedAt:    experiment.BatchStoppedAt,
		}
	}
	return resp
}
