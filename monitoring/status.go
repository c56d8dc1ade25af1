package monitoring

import (
	"time"

	"healthpredict/form"
)

// ModelStatus is the one-shot result of the startup artifact load. It never
// changes for the life of the process.
type ModelStatus struct {
	Loaded     bool      `json:"models_loaded"`
	Message    string    `json:"message"`
	Error      string    `json:"error,omitempty"`
	SleepPath  string    `json:"sleep_model"`
	StressPath string    `json:"stress_model"`
	CheckedAt  time.Time `json:"checked_at"`
}

// NewModelStatus records the outcome of loading the two artifacts.
func NewModelStatus(sleepPath, stressPath string, loadErr error) ModelStatus {
	status := ModelStatus{
		Loaded:     loadErr == nil,
		Message:    form.MsgModelsLoaded,
		SleepPath:  sleepPath,
		StressPath: stressPath,
		CheckedAt:  time.Now(),
	}
	if loadErr != nil {
		status.Message = form.MsgLoadFailed
		status.Error = loadErr.Error()
	}
	return status
}
