package config

import (
	"time"
)

// User represents a registered account
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex;size:255"`
	PasswordHash string
	CreatedAt    time.Time
}

// TableName overrides the table name
func (User) TableName() string {
	return "users"
}

// Experiment represents a submitted simulation and its tracked batch job state
type Experiment struct {
	ID          uint `gorm:"primaryKey"`
	UserID      uint `gorm:"index"`
	Name        string
	Description string
	// Object key of the uploaded input structure file
	PDBFileURL string
	// s3://bucket/prefix under which the batch job writes artifacts.
	// Set once right after creation, immutable afterwards.
	ResultsFolderS3URL string
	// Simulation time in nanoseconds
	SimulationTime int
	Smile          string `gorm:"size:1000"`
	CreatedAt      time.Time

	// Remote execution state, assigned on submission / refreshed on read
	BatchJobID        string `gorm:"size:100;index"`
	BatchStatus       *string
	BatchStatusReason string `gorm:"type:text"`
	BatchCreatedAt    *time.Time
	BatchStartedAt    *time.Time
	BatchStoppedAt    *time.Time
	// Local timestamp of the last applied status refresh, used only for
	// poll gating
	BatchStatusUpdatedAt *time.Time
}

// TableName overrides the table name
func (Experiment) TableName() string {
	return "experiments"
}
