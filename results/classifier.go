package results

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/medvolt/airawat-backend/models"
	"github.com/medvolt/airawat-backend/storage"
)

// DownloadURLTTL is the lifetime of signed artifact download links
const DownloadURLTTL = time.Hour

// Fixed filename sets the pipeline writes. Keys matching none of the
// rules are silently excluded from every bucket.
var reportFilenames = map[string]bool{
	"analysis_report.pdf":    true,
	"cmd_output.csv":         true,
	"simulation_summary.txt": true,
}

var visualizationFilenames = map[string]bool{
	"rmsd_plot.png":            true,
	"gyration_radius_plot.png": true,
	"rmsf_plot.png":            true,
	"trajectory.gif":           true,
}

const structuresSegment = "recommended_structures/"

// ObjectStore is the storage surface the classifier needs
type ObjectStore interface {
	ListPrefix(ctx context.Context, bucket, prefix string) ([]storage.ObjectInfo, error)
	PresignDownload(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
	FetchObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Classifier buckets an experiment's output objects into reports,
// visualizations and recommended structures, attaching signed URLs
type Classifier struct {
	store ObjectStore
}

// NewClassifier creates a new classifier
func NewClassifier(store ObjectStore) *Classifier {
	return &Classifier{store: store}
}

// Classify lists every object under the s3:// prefix and buckets it by
// filename. When renderStructures is set, each recommended structure is
// additionally fetched and rendered to embeddable markup; a failure on
// one structure is recorded on that entry and does not abort the rest.
func (c *Classifier) Classify(ctx context.Context, s3Prefix string, renderStructures bool) (*models.ExperimentResultsResponse, error) {
	bucket, prefix, err := storage.ParseS3URI(s3Prefix)
	if err != nil {
		return nil, err
	}

	objects, err := c.store.ListPrefix(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}

	resp := &models.ExperimentResultsResponse{
		Reports:               []models.ArtifactEntry{},
		Visualizations:        []models.ArtifactEntry{},
		RecommendedStructures: []models.StructureEntry{},
	}

	for _, obj := range objects {
		filename := path.Base(obj.Key)

		switch {
		case reportFilenames[filename]:
			entry, err := c.signedEntry(ctx, bucket, obj.Key)
			if err != nil {
				return nil, err
			}
			resp.Reports = append(resp.Reports, entry)

		case visualizationFilenames[filename]:
			entry, err := c.signedEntry(ctx, bucket, obj.Key)
			if err != nil {
				return nil, err
			}
			resp.Visualizations = append(resp.Visualizations, entry)

		case strings.Contains(obj.Key, structuresSegment) && strings.HasSuffix(obj.Key, ".pdb"):
			resp.RecommendedStructures = append(resp.RecommendedStructures,
				c.structureEntry(ctx, bucket, obj.Key, filename, renderStructures))
		}
	}

	return resp, nil
}

func (c *Classifier) signedEntry(ctx context.Context, bucket, key string) (models.ArtifactEntry, error) {
	url, err := c.store.PresignDownload(ctx, bucket, key, DownloadURLTTL)
	if err != nil {
		return models.ArtifactEntry{}, fmt.Errorf("failed to sign %s: %w", key, err)
	}
	return models.ArtifactEntry{Key: key, URL: url}, nil
}

func (c *Classifier) structureEntry(ctx context.Context, bucket, key, filename string, render bool) models.StructureEntry {
	entry := models.StructureEntry{Key: key, Filename: filename}

	url, err := c.store.PresignDownload(ctx, bucket, key, DownloadURLTTL)
	if err != nil {
		entry.Error = err.Error()
		return entry
	}
	entry.URL = url

	if !render {
		return entry
	}

	data, err := c.store.FetchObject(ctx, bucket, key)
	if err != nil {
		entry.Error = err.Error()
		return entry
	}

	html, err := RenderStructureHTML(string(data))
	if err != nil {
		entry.Error = err.Error()
		return entry
	}
	entry.VisualizationHTML = html

	return entry
}
