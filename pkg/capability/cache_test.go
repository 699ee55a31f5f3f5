package capability

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "capabilities.json")

	want := &Capabilities{
		OSType:            "linux",
		NixOSVersion:      "24.11",
		CPUCores:          8,
		RAMGB:             15.6,
		HasNativeAPI:      true,
		HasModernCLI:      true,
		HasLegacyCLI:      true,
		HasOllama:         true,
		InternetAvailable: true,
		DetectedAt:        time.Now().UTC().Truncate(time.Second),
	}

	if err := Save(want, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got := Load(path)
	if got == nil {
		t.Fatal("Load returned nil for a saved cache")
	}
	if got.NixOSVersion != want.NixOSVersion ||
		got.CPUCores != want.CPUCores ||
		got.RAMGB != want.RAMGB ||
		got.HasNativeAPI != want.HasNativeAPI ||
		!got.DetectedAt.Equal(want.DetectedAt) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if got := Load(filepath.Join(t.TempDir(), "absent.json")); got != nil {
		t.Errorf("Load of missing file = %+v, want nil", got)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capabilities.json")
	if err := os.WriteFile(path, []byte("{not json"), 0640); err != nil {
		t.Fatal(err)
	}
	if got := Load(path); got != nil {
		t.Errorf("Load of malformed file = %+v, want nil", got)
	}
}
