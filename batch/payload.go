package batch

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// JobPayload is the parameter blob the batch job entrypoint decodes.
// It travels as a single base64(JSON) string in the container command,
// so the wire form is reversible and self-describing.
type JobPayload struct {
	SimulationTime int    `json:"simulation_time"`
	S3Bucket       string `json:"s3_bucket"`
	S3InputPDBKey  string `json:"s3_input_pdb_file_key"`
	S3OutputPath   string `json:"s3_output_path"`
	Smile          string `json:"smile"`
}

// Encode serializes the payload into its base64(JSON) wire form
func (p JobPayload) Encode() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("failed to marshal job payload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeJobPayload reverses Encode
func DecodeJobPayload(encoded string) (JobPayload, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return JobPayload{}, fmt.Errorf("failed to decode job payload: %w", err)
	}

	var p JobPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return JobPayload{}, fmt.Errorf("failed to unmarshal job payload: %w", err)
	}
	return p, nil
}
