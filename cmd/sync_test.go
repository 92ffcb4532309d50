package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"s3dirstat/internal/models"
	"s3dirstat/internal/progress"
)

func TestSyncCommand(t *testing.T) {
	store := setupConfig(t)
	store.Put("photos/x.jpg", 10).
		Put("photos/sub/y.jpg", 20).
		Put("docs/z.txt", 5)
	if err := afero.WriteFile(syncFs, "/dst/old/Y.JPG", []byte("old"), 0o644); err != nil {
		t.Fatalf("Failed to seed local file: %v", err)
	}

	output := runCommand(t, "sync", "photos", "-d", "/dst", "--confirm", "--progress=false")

	var summary models.SyncSummary
	if err := json.Unmarshal([]byte(output), &summary); err != nil {
		t.Fatalf("Invalid JSON output: %v\n%s", err, output)
	}
	if summary.Prefix != "photos/" {
		t.Errorf("Prefix = %s, want %s", summary.Prefix, "photos/")
	}
	if summary.Downloaded != 1 || summary.Skipped != 1 || summary.Total != 2 {
		t.Errorf("Summary = %+v, want 1 downloaded, 1 skipped, 2 total", summary)
	}

	data, err := afero.ReadFile(syncFs, "/dst/x.jpg")
	if err != nil {
		t.Fatalf("Downloaded file missing: %v", err)
	}
	if len(data) != 10 {
		t.Errorf("Downloaded %d bytes, want %d", len(data), 10)
	}
	if exists, _ := afero.Exists(syncFs, "/dst/sub/y.jpg"); exists {
		t.Errorf("sub/y.jpg should have been skipped")
	}
}

func TestSyncCommandS3URL(t *testing.T) {
	store := setupConfig(t)
	store.Put("photos/x.jpg", 10)

	output := runCommand(t, "sync", "s3://bucket/photos", "-d", "/dst", "--confirm", "--progress=false", "-c", "100")

	var summary models.SyncSummary
	if err := json.Unmarshal([]byte(output), &summary); err != nil {
		t.Fatalf("Invalid JSON output: %v\n%s", err, output)
	}
	if summary.Downloaded != 1 {
		t.Errorf("Downloaded = %d, want %d", summary.Downloaded, 1)
	}
}

func TestSyncCommandRejectsInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"Other bucket", "s3://other/photos", `"other"`},
		{"Missing prefix", "nothing", "not found"},
		{"Foreign scheme", "https://example.com/photos", "inside the bucket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupConfig(t)
			store.Put("photos/x.jpg", 10)

			output := runCommand(t, "sync", tt.input, "-d", "/dst", "--confirm", "--progress=false")

			var result models.ErrorResponse
			if err := json.Unmarshal([]byte(output), &result); err != nil {
				t.Fatalf("Invalid JSON output: %v\n%s", err, output)
			}
			if result.ErrorKind != "validation" {
				t.Errorf("ErrorKind = %s, want %s", result.ErrorKind, "validation")
			}
			if !strings.Contains(result.Error, tt.message) {
				t.Errorf("Error = %q, want it to contain %q", result.Error, tt.message)
			}
			if len(store.Downloads()) != 0 {
				t.Errorf("Nothing should be downloaded, got %v", store.Downloads())
			}
		})
	}
}

func TestDescribeSync(t *testing.T) {
	p := models.SyncProgress{Total: 4, Downloaded: 1, Skipped: 1, TotalBytes: 4096, DownloadedBytes: 1024, SkippedBytes: 1024}

	got := describeSync(p, progress.Estimate{BytesPerSecond: 2048})
	if got != "1 new, 1 skipped, 2.0 KB/s, ETA --" {
		t.Errorf("describeSync() = %q", got)
	}

	got = describeSync(p, progress.EstimateSync(p, 0))
	if !strings.HasSuffix(got, "ETA 0s") {
		t.Errorf("describeSync() = %q", got)
	}
}
