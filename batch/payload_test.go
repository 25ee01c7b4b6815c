package batch

import (
	"encoding/base64"
	"encoding/json"
	"testing"
)

func TestJobPayloadRoundTrip(t *testing.T) {
	payload := JobPayload{
		SimulationTime: 50,
		S3Bucket:       "medvolt-cmd-standalone-test",
		S3InputPDBKey:  "airawat-backend/cmd/inputs/x.pdb",
		S3OutputPath:   "airawat/traj_analysis/exp_12",
		Smile:          "C[N+]1(C)C2CCC1CC(O(C(=O)C(O)c1ccccc1)C2))",
	}

	encoded, err := payload.Encode()
	if err != nil {
		t.Fatalf("Failed to encode payload: %v", err)
	}

	decoded, err := DecodeJobPayload(encoded)
	if err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}

	if decoded != payload {
		t.Errorf("Round trip mismatch: got %+v, want %+v", decoded, payload)
	}
}

func TestJobPayloadWireShape(t *testing.T) {
	payload := JobPayload{
		SimulationTime: 100,
		S3Bucket:       "bucket",
		S3InputPDBKey:  "inputs/structure.pdb",
		S3OutputPath:   "airawat/traj_analysis/exp_1",
		Smile:          "CCO",
	}

	encoded, err := payload.Encode()
	if err != nil {
		t.Fatalf("Failed to encode payload: %v", err)
	}

	// The job entrypoint decodes base64 then JSON; field names are part
	// of the contract
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("Encoded payload is not valid base64: %v", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("Encoded payload is not valid JSON: %v", err)
	}

	for _, name := range []string{"simulation_time", "s3_bucket", "s3_input_pdb_file_key", "s3_output_path", "smile"} {
		if _, ok := fields[name]; !ok {
			t.Errorf("Encoded payload is missing field %q", name)
		}
	}

	if fields["simulation_time"] != float64(100) {
		t.Errorf("Expected simulation_time=100, got %v", fields["simulation_time"])
	}
	if fields["s3_input_pdb_file_key"] != "inputs/structure.pdb" {
		t.Errorf("Expected s3_input_pdb_file_key=inputs/structure.pdb, got %v", fields["s3_input_pdb_file_key"])
	}
}

func TestDecodeJobPayloadInvalid(t *testing.T) {
	if _, err := DecodeJobPayload("not base64!!!"); err == nil {
		t.Error("Expected error for invalid base64")
	}
	if _, err := DecodeJobPayload(base64.StdEncoding.EncodeToString([]byte("not json"))); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}
