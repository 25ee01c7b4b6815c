package storage

import (
	"testing"
)

func TestParseS3URI(t *testing.T) {
	bucket, key, err := ParseS3URI("s3://medvolt-cmd-standalone-test/airawat/traj_analysis/exp_7")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if bucket != "medvolt-cmd-standalone-test" {
		t.Errorf("Expected bucket medvolt-cmd-standalone-test, got %s", bucket)
	}
	if key != "airawat/traj_analysis/exp_7" {
		t.Errorf("Expected key airawat/traj_analysis/exp_7, got %s", key)
	}
}

func TestParseS3URIRoundTrip(t *testing.T) {
	uris := map[string][2]string{
		"s3://bucket/key":            {"bucket", "key"},
		"s3://b/a/b/c.pdb":           {"b", "a/b/c.pdb"},
		"s3://data/prefix/":          {"data", "prefix/"},
		"s3://data//double//slashes": {"data", "/double//slashes"},
	}
	for uri, want := range uris {
		bucket, key, err := ParseS3URI(uri)
		if err != nil {
			t.Errorf("ParseS3URI(%q) returned error: %v", uri, err)
			continue
		}
		if bucket != want[0] || key != want[1] {
			t.Errorf("ParseS3URI(%q) = (%q, %q), want (%q, %q)", uri, bucket, key, want[0], want[1])
		}
	}
}

func TestParseS3URIInvalid(t *testing.T) {
	invalid := []string{
		"",
		"bucket/key",
		"http://bucket/key",
		"s3://bucket",
		"s3://bucket/",
		"s3:///key",
		"s3://",
	}
	for _, uri := range invalid {
		if _, _, err := ParseS3URI(uri); err == nil {
			t.Errorf("ParseS3URI(%q) should have failed", uri)
		}
	}
}
