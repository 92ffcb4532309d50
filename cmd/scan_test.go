package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"s3dirstat/internal/models"
)

func seedScanStore(t *testing.T) {
	store := setupConfig(t)
	store.Put("photos/2024/a.jpg", 100).
		Put("photos/2024/b.jpg", 50).
		Put("photos/", 0).
		Put("docs/readme.md", 10).
		Put("tmp/scratch.part", 5)
}

func TestScanCommandJSON(t *testing.T) {
	seedScanStore(t)

	output := runCommand(t, "scan")

	var result models.ScanResult
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v\n%s", err, output)
	}
	if result.ObjectCount != 4 {
		t.Errorf("ObjectCount = %d, want %d", result.ObjectCount, 4)
	}
	if result.TotalSizeBytes != 165 {
		t.Errorf("TotalSizeBytes = %d, want %d", result.TotalSizeBytes, 165)
	}
	if result.Tree == nil {
		t.Fatalf("Tree is missing")
	}
	photos := result.Tree.Children["photos"]
	if photos == nil || photos.Size != 150 || photos.Children["2024"].FileCount != 2 {
		t.Errorf("photos node = %+v", photos)
	}
	if stat := result.Tree.Extensions[".jpg"]; stat == nil || stat.Count != 2 {
		t.Errorf(".jpg extension = %+v", stat)
	}
}

func TestScanCommandIgnore(t *testing.T) {
	seedScanStore(t)
	cfg.IgnorePrefixes = "tmp/"

	output := runCommand(t, "scan", "--ignore-glob", "**.md")

	var result models.ScanResult
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v\n%s", err, output)
	}
	if result.ObjectCount != 2 {
		t.Errorf("ObjectCount = %d, want %d", result.ObjectCount, 2)
	}
	if _, ok := result.Tree.Children["tmp"]; ok {
		t.Errorf("tmp/ should be ignored")
	}
}

func TestScanCommandPrefix(t *testing.T) {
	seedScanStore(t)

	output := runCommand(t, "scan", "photos", "--format", "csv")

	expected := "Path,Size\nbucket,150\nbucket/photos,150\nbucket/photos/2024,150\n"
	if output != expected {
		t.Errorf("Output = %q, want %q", output, expected)
	}
}

func TestScanCommandTree(t *testing.T) {
	seedScanStore(t)

	output := runCommand(t, "scan", "--format", "tree", "--depth", "1")

	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Got %d lines, want 4:\n%s", len(lines), output)
	}
	if !strings.HasPrefix(lines[1], "  photos") {
		t.Errorf("Largest folder should come first: %q", lines[1])
	}
}

func TestScanCommandOutputFile(t *testing.T) {
	seedScanStore(t)
	path := filepath.Join(t.TempDir(), "usage.csv")

	output := runCommand(t, "scan", "--format", "csv", "--output", path)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read report: %v", err)
	}
	if !strings.HasPrefix(string(data), "Path,Size\nbucket,165\n") {
		t.Errorf("Report = %q", string(data))
	}

	var result models.ScanResult
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v\n%s", err, output)
	}
	if result.Tree != nil {
		t.Errorf("Tree should be omitted when writing to a file")
	}
	if result.ObjectCount != 4 {
		t.Errorf("ObjectCount = %d, want %d", result.ObjectCount, 4)
	}
}

func TestScanCommandInvalidFormat(t *testing.T) {
	store := setupConfig(t)

	output := runCommand(t, "scan", "--format", "xml")

	var result models.ErrorResponse
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v\n%s", err, output)
	}
	if result.ErrorKind != "validation" {
		t.Errorf("ErrorKind = %s, want %s", result.ErrorKind, "validation")
	}
	if result.Command != "scan" {
		t.Errorf("Command = %s, want %s", result.Command, "scan")
	}
	if store.ListCalls() != 0 {
		t.Errorf("Store was called %d times, want 0", store.ListCalls())
	}
}
