package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/leakhound/leakhound/internal/types"
)

// LastScan stores the most recent scan result so the review TUI can open
// without rescanning.
type LastScan struct {
	Result    types.ScanResult `json:"result"`
	Timestamp time.Time        `json:"timestamp"`
	Root      string           `json:"root"`
}

func resultsPath(root string) string {
	gitDir := filepath.Join(root, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return filepath.Join(gitDir, "leakhound_last_scan.json")
	}
	return filepath.Join(root, ".leakhound_last_scan.json")
}

func SaveResult(root string, res types.ScanResult) error {
	b, err := json.MarshalIndent(LastScan{Result: res, Timestamp: time.Now(), Root: root}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(resultsPath(root), b, 0644)
}

func LoadResult(root string) (LastScan, error) {
	var last LastScan
	b, err := os.ReadFile(resultsPath(root))
	if err != nil {
		return last, err
	}
	if err := json.Unmarshal(b, &last); err != nil {
		return last, err
	}
	return last, nil
}
