package output

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StatusDisabled as a status file setting turns the sidecar off
const StatusDisabled = "-"

// Status is the run summary written next to the CSV. It lets consumers tell
// an empty search apart from a blocked one, which the CSV alone cannot.
type Status struct {
	RunID      string    `json:"run_id"`
	Query      string    `json:"query"`
	Status     string    `json:"status"`
	Message    string    `json:"message,omitempty"`
	Records    int       `json:"records"`
	Pages      int       `json:"pages"`
	Strategy   string    `json:"strategy,omitempty"`
	OutputFile string    `json:"output_file"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	PageStrategies []string `json:"page_strategies,omitempty"`
}

// NewRunID returns a random run identifier
func NewRunID() string {
	return uuid.NewString()
}

// StatusPath resolves the sidecar location. An empty setting derives
// "<csv without extension>.status.json"; StatusDisabled returns "".
func StatusPath(csvPath, setting string) string {
	switch setting {
	case StatusDisabled:
		return ""
	case "":
		return strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + ".status.json"
	default:
		return setting
	}
}

// SaveStatus writes s as indented JSON to path
func SaveStatus(path string, s Status) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	return writeFileAtomic(path, append(data, '\n'))
}
