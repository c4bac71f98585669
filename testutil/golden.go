// Package testutil provides golden-file comparison for generated C output
// and diagnostic text.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// UpdateGoldens controls whether to update golden files.
// Set via environment variable: UPDATE_GOLDENS=true go test ./...
var UpdateGoldens = os.Getenv("UPDATE_GOLDENS") == "true"

// GetGoldenPath returns the path to a golden file under testdata/<feature>.
func GetGoldenPath(feature, name string) string {
	return filepath.Join("testdata", feature, name+".golden")
}

// CompareWithGolden compares actual text (generated C, rendered diagnostics)
// against a checked-in golden file, failing with a unified diff on mismatch.
// Run with UPDATE_GOLDENS=true to create or refresh the golden file.
func CompareWithGolden(t *testing.T, feature, name, actual string) {
	t.Helper()

	goldenPath := GetGoldenPath(feature, name)

	if UpdateGoldens {
		if err := os.MkdirAll(filepath.Dir(goldenPath), 0o755); err != nil {
			t.Fatalf("failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(goldenPath, []byte(actual), 0o644); err != nil {
			t.Fatalf("failed to write golden file: %v", err)
		}
		t.Logf("updated golden file: %s", goldenPath)
		return
	}

	want, err := os.ReadFile(goldenPath)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file does not exist: %s\nrun with UPDATE_GOLDENS=true to create", goldenPath)
		}
		t.Fatalf("failed to read golden file: %v", err)
	}

	if diff := cmp.Diff(string(want), actual); diff != "" {
		t.Errorf("golden mismatch for %s/%s (-want +got):\n%s", feature, name, diff)
	}
}
