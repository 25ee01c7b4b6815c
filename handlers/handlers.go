package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/medvolt/airawat-backend/batch"
	"github.com/medvolt/airawat-backend/config"
	"github.com/medvolt/airawat-backend/metrics"
	"github.com/medvolt/airawat-backend/middleware"
	"github.com/medvolt/airawat-backend/models"
	"github.com/medvolt/airawat-backend/monitor"
	"github.com/medvolt/airawat-backend/repository"
	"github.com/medvolt/airawat-backend/results"
	"github.com/medvolt/airawat-backend/storage"
)

const (
	// Upload presign parameters for new structure files
	uploadKeyPrefix   = "airawat-backend/cmd/inputs/"
	uploadContentType = "chemical/x-pdb"
	uploadURLTTL      = time.Hour

	// Prefix under which batch jobs write their artifacts
	outputPathPrefix = "airawat/traj_analysis"

	// Metric artifact filenames
	gyrationRadiusArtifact = "gyration_radius.csv"
	rmsdArtifact           = "rmsd.csv"
	cmdOutputArtifact      = "cmd_output.csv"
)

// Store is the persistence surface handlers depend on
type Store interface {
	CreateUser(email, passwordHash string) (*config.User, error)
	GetUserByEmail(email string) (*config.User, error)
	CreateExperiment(userID uint, req *models.CreateExperimentRequest) (*config.Experiment, error)
	SetResultsFolder(experiment *config.Experiment, s3URL string) error
	SetBatchJobID(experiment *config.Experiment, jobID string) error
	GetExperimentForUser(id, userID uint) (*config.Experiment, error)
	ListExperimentsForUser(userID uint) ([]config.Experiment, error)
	ToResponse(experiment *config.Experiment) *models.ExperimentResponse
}

// ObjectStore is the storage surface handlers use directly
type ObjectStore interface {
	Bucket() string
	PresignUpload(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
}

// JobSubmitter queues one batch job
type JobSubmitter interface {
	Submit(ctx context.Context, jobName string, payload batch.JobPayload) (string, error)
}

// Handler handles HTTP requests
type Handler struct {
	repo       Store
	store      ObjectStore
	submitter  JobSubmitter
	refresher  *monitor.StatusRefresher
	classifier *results.Classifier
	extractor  *metrics.Extractor
	jwtSecret  string
	tokenTTL   time.Duration
}

// NewHandler creates a new handler instance. Every external client is
// injected; handlers own no hidden state.
func NewHandler(repo Store, store ObjectStore, submitter JobSubmitter,
	refresher *monitor.StatusRefresher, classifier *results.Classifier,
	extractor *metrics.Extractor, authCfg config.AuthConfig) *Handler {
	return &Handler{
		repo:       repo,
		store:      store,
		submitter:  submitter,
		refresher:  refresher,
		classifier: classifier,
		extractor:  extractor,
		jwtSecret:  authCfg.JWTSecret,
		tokenTTL:   time.Duration(authCfg.TokenTTLHours) * time.Hour,
	}
}

// Home handles GET /
func (h *Handler) Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Welcome to the API Home Page"})
}

// Register handles POST /auth/register
func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	user, err := h.repo.CreateUser(req.Email, string(hash))
	if err != nil {
		log.Printf("Failed to create user %s: %v", req.Email, err)
		c.JSON(http.StatusConflict, gin.H{"error": "Email is already registered"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": user.ID, "email": user.Email})
}

// Login handles POST /auth/login
func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
		return
	}

	user, err := h.repo.GetUserByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := middleware.IssueToken(h.jwtSecret, user.ID, h.tokenTTL)
	if err != nil {
		log.Printf("Failed to issue token for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GeneratePresignedURL handles POST /generate-presigned-url
func (h *Handler) GeneratePresignedURL(c *gin.Context) {
	key := fmt.Sprintf("%s%s.pdb", uploadKeyPrefix, uuid.New().String())

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	url, err := h.store.PresignUpload(ctx, key, uploadContentType, uploadURLTTL)
	if err != nil {
		log.Printf("Failed to presign upload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate upload URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upload_url": url,
		"s3_key":     key,
	})
}

// ListExperiments handles GET /experiments/
func (h *Handler) ListExperiments(c *gin.Context) {
	userID := middleware.GetUserID(c)

	experiments, err := h.repo.ListExperimentsForUser(userID)
	if err != nil {
		log.Printf("Failed to list experiments for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list experiments"})
		return
	}

	// Refresh stale batch statuses, then re-read for a consistent view.
	// A failed refresh degrades to serving the persisted state.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()
	h.refresher.Refresh(ctx, experiments)

	experiments, err = h.repo.ListExperimentsForUser(userID)
	if err != nil {
		log.Printf("Failed to re-read experiments for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list experiments"})
		return
	}

	responses := make([]*models.ExperimentResponse, 0, len(experiments))
	for i := range experiments {
		responses = append(responses, h.repo.ToResponse(&experiments[i]))
	}

	c.JSON(http.StatusOK, responses)
}

// CreateExperiment handles POST /experiments/
func (h *Handler) CreateExperiment(c *gin.Context) {
	var req models.CreateExperimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request payload",
			"details": err.Error(),
		})
		return
	}

	userID := middleware.GetUserID(c)

	experiment, err := h.repo.CreateExperiment(userID, &req)
	if err != nil {
		log.Printf("Failed to create experiment for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create experiment"})
		return
	}

	// Output prefix is derived from the experiment id and fixed before
	// the job is submitted
	outputPath := fmt.Sprintf("%s/exp_%d", outputPathPrefix, experiment.ID)
	resultsURL := fmt.Sprintf("s3://%s/%s", h.store.Bucket(), outputPath)
	if err := h.repo.SetResultsFolder(experiment, resultsURL); err != nil {
		log.Printf("Failed to set results folder for experiment %d: %v", experiment.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create experiment"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	jobID, err := h.submitter.Submit(ctx, fmt.Sprintf("cmd-exp-%d", experiment.ID), batch.JobPayload{
		SimulationTime: experiment.SimulationTime,
		S3Bucket:       h.store.Bucket(),
		S3InputPDBKey:  experiment.PDBFileURL,
		S3OutputPath:   outputPath,
		Smile:          experiment.Smile,
	})
	if err != nil {
		log.Printf("Failed to submit batch job for experiment %d: %v", experiment.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to submit batch job",
			"details": err.Error(),
		})
		return
	}

	if err := h.repo.SetBatchJobID(experiment, jobID); err != nil {
		log.Printf("Failed to persist batch job id for experiment %d: %v", experiment.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create experiment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"experiment_id": experiment.ID,
		"batch_job_id":  jobID,
	})
}

// ExperimentResults handles GET /experiment-results/:id/
func (h *Handler) ExperimentResults(c *gin.Context) {
	experiment, ok := h.ownedExperiment(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	resp, err := h.classifier.Classify(ctx, experiment.ResultsFolderS3URL, false)
	if err != nil {
		log.Printf("Failed to list results for experiment %d: %v", experiment.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list experiment results"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RecommendStructures handles GET /experiment-recommend-structures/:id/
func (h *Handler) RecommendStructures(c *gin.Context) {
	experiment, ok := h.ownedExperiment(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	prefix := experiment.ResultsFolderS3URL + "/recommended_structures/"
	resp, err := h.classifier.Classify(ctx, prefix, true)
	if err != nil {
		log.Printf("Failed to list structures for experiment %d: %v", experiment.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list recommended structures"})
		return
	}

	c.JSON(http.StatusOK, resp.RecommendedStructures)
}

// GyrationRadius handles GET /experiment-gyration-radius/:id/
func (h *Handler) GyrationRadius(c *gin.Context) {
	h.pairedSeries(c, gyrationRadiusArtifact)
}

// RMSD handles GET /experiment-rmsd/:id/
func (h *Handler) RMSD(c *gin.Context) {
	h.pairedSeries(c, rmsdArtifact)
}

// CmdOutput handles GET /experiment-cmd-output/:id/
func (h *Handler) CmdOutput(c *gin.Context) {
	experiment, ok := h.ownedExperiment(c)
	if !ok {
		return
	}

	bucket, prefix, err := storage.ParseS3URI(experiment.ResultsFolderS3URL)
	if err != nil {
		log.Printf("Experiment %d has malformed results folder: %v", experiment.ID, err)
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	result := h.extractor.WideRow(ctx, bucket, joinKey(prefix, cmdOutputArtifact))
	if result.Kind != metrics.OK {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	c.JSON(http.StatusOK, result.Values)
}

func (h *Handler) pairedSeries(c *gin.Context, artifact string) {
	experiment, ok := h.ownedExperiment(c)
	if !ok {
		return
	}

	bucket, prefix, err := storage.ParseS3URI(experiment.ResultsFolderS3URL)
	if err != nil {
		log.Printf("Experiment %d has malformed results folder: %v", experiment.ID, err)
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	result := h.extractor.PairedSeries(ctx, bucket, joinKey(prefix, artifact))
	if result.Kind != metrics.OK {
		c.JSON(http.StatusOK, gin.H{})
		return
	}

	c.JSON(http.StatusOK, models.SeriesResponse{X: result.X, Y: result.Y})
}

// ownedExperiment resolves the :id route parameter against the
// authenticated owner. A bad id, a missing row and an ownership miss all
// answer the same 404.
func (h *Handler) ownedExperiment(c *gin.Context) (*config.Experiment, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Experiment not found"})
		return nil, false
	}

	experiment, err := h.repo.GetExperimentForUser(uint(id), middleware.GetUserID(c))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Printf("Failed to look up experiment %d: %v", id, err)
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Experiment not found"})
		return nil, false
	}

	return experiment, true
}

func joinKey(prefix, name string) string {
	return strings.TrimSuffix(prefix, "/") + "/" + name
}
