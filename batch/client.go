package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsbatch "github.com/aws/aws-sdk-go-v2/service/batch"
	"github.com/aws/aws-sdk-go-v2/service/batch/types"

	"github.com/medvolt/airawat-backend/config"
)

// DescribeJobs accepts at most 100 job ids per call
const describePageSize = 100

// JobRecord is the remote scheduler's view of one job
type JobRecord struct {
	Status       string
	StatusReason string
	CreatedAt    *time.Time
	StartedAt    *time.Time
	StoppedAt    *time.Time
}

// Client wraps the AWS Batch API
type Client struct {
	api           *awsbatch.Client
	jobQueue      string
	jobDefinition string
}

// NewClient creates an AWS Batch client from the default credential chain
func NewClient(ctx context.Context, cfg config.BatchConfig) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithRetryMaxAttempts(3),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Client{
		api:           awsbatch.NewFromConfig(awsCfg),
		jobQueue:      cfg.JobQueue,
		jobDefinition: cfg.JobDefinition,
	}, nil
}

// Submit queues one job carrying the encoded payload as its sole command
// argument. Submission failures surface synchronously; retries are the
// SDK client's concern.
func (c *Client) Submit(ctx context.Context, jobName string, payload JobPayload) (string, error) {
	encoded, err := payload.Encode()
	if err != nil {
		return "", err
	}

	out, err := c.api.SubmitJob(ctx, &awsbatch.SubmitJobInput{
		JobName:       aws.String(jobName),
		JobQueue:      aws.String(c.jobQueue),
		JobDefinition: aws.String(c.jobDefinition),
		ContainerOverrides: &types.ContainerOverrides{
			Command: []string{encoded},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to submit batch job %s: %w", jobName, err)
	}

	return aws.ToString(out.JobId), nil
}

// Describe looks up the current state of the given jobs in bulk. Ids are
// chunked to the API page limit; there is no per-id fan-out.
func (c *Client) Describe(ctx context.Context, jobIDs []string) (map[string]JobRecord, error) {
	records := make(map[string]JobRecord, len(jobIDs))

	for start := 0; start < len(jobIDs); start += describePageSize {
		end := start + describePageSize
		if end > len(jobIDs) {
			end = len(jobIDs)
		}

		out, err := c.api.DescribeJobs(ctx, &awsbatch.DescribeJobsInput{
			Jobs: jobIDs[start:end],
		})
		if err != nil {
			return nil, fmt.Errorf("failed to describe batch jobs: %w", err)
		}

		for _, job := range out.Jobs {
			records[aws.ToString(job.JobId)] = JobRecord{
				Status:       string(job.Status),
				StatusReason: aws.ToString(job.StatusReason),
				CreatedAt:    epochMillis(job.CreatedAt),
				StartedAt:    epochMillis(job.StartedAt),
				StoppedAt:    epochMillis(job.StoppedAt),
			}
		}
	}

	return records, nil
}

func epochMillis(ms *int64) *time.Time {
	if ms == nil {
		return nil
	}
	t := time.UnixMilli(*ms)
	return &t
}
