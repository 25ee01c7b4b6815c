package models

import "time"

// Batch job statuses as reported by the remote scheduler
const (
	StatusSubmitted = "SUBMITTED"
	StatusPending   = "PENDING"
	StatusRunnable  = "RUNNABLE"
	StatusStarting  = "STARTING"
	StatusRunning   = "RUNNING"
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

// IsTerminalStatus reports whether no further status change is expected
func IsTerminalStatus(status string) bool {
	return status == StatusSucceeded || status == StatusFailed
}

// RegisterRequest represents the payload for POST /auth/register
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest represents the payload for POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateExperimentRequest represents the payload for POST /experiments/
type CreateExperimentRequest struct {
	Name           string `json:"name" binding:"required"`
	Description    string `json:"description"`
	PDBFileURL     string `json:"pdb_file_url" binding:"required"`
	SimulationTime int    `json:"simulation_time" binding:"required,gt=0"`
	Smile          string `json:"smile" binding:"required"`
}

// BatchStatusResponse is the nested remote-job state in experiment listings
type BatchStatusResponse struct {
	Status       string     `json:"status"`
	StatusReason string     `json:"status_reason"`
	CreatedAt    *time.Time `json:"created_at"`
	StartedAt    *time.Time `json:"started_at"`
	StoppedAt    *time.Time `json:"stopped_at"`
}

// ExperimentResponse represents one experiment in GET /experiments/
type ExperimentResponse struct {
	ID             uint                 `json:"id"`
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	PDBFileURL     string               `json:"pdb_file_url"`
	SimulationTime int                  `json:"simulation_time"`
	Smile          string               `json:"smile"`
	CreatedAt      time.Time            `json:"created_at"`
	Status         *BatchStatusResponse `json:"status"`
}

// ArtifactEntry is one classified object with its signed download URL
type ArtifactEntry struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// StructureEntry is a recommended structure file, optionally with rendered
// 3-D markup. Error is set when fetching or rendering this one structure
// failed; the rest of the listing is unaffected.
type StructureEntry struct {
	Key               string `json:"key"`
	Filename          string `json:"filename"`
	URL               string `json:"url"`
	VisualizationHTML string `json:"visualization_html,omitempty"`
	Error             string `json:"error,omitempty"`
}

// ExperimentResultsResponse is the classified artifact listing
type ExperimentResultsResponse struct {
	Reports               []ArtifactEntry  `json:"reports"`
	Visualizations        []ArtifactEntry  `json:"visualizations"`
	RecommendedStructures []StructureEntry `json:"recommended_structures"`
}

// SeriesResponse is a paired-series metric for charting
type SeriesResponse struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}
