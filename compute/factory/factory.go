// Package factory selects and manages compute.Backend instances,
// mirroring the teacher's pkg/hashing/factory.HashMethodFactory: a
// config naming a preferred backend order, detection performed once at
// construction, and a best-backend selection the caller can override by
// name.
package factory

import (
	"sort"

	"lareveal/compute"
	"lareveal/compute/gpu"
	"lareveal/compute/vector"
)

// Config mirrors the teacher's HashMethodConfig, trimmed to what this
// domain's two backends actually need.
type Config struct {
	// PreferredOrder lists backend names, highest priority first.
	PreferredOrder []string
}

// DefaultConfig prefers the GPU-shaped backend when available (mirroring
// the teacher's TrainingHashMethodConfig ordering CUDA first), falling
// back to the always-available vector backend.
func DefaultConfig() *Config {
	return &Config{PreferredOrder: []string{"gpu", "vector"}}
}

// Factory detects available backends once and picks the best one per
// Config.PreferredOrder, mirroring HashMethodFactory.
type Factory struct {
	config   *Config
	backends map[string]compute.Backend
	best     compute.Backend
}

// New constructs a Factory, detecting both backends immediately.
func New(config *Config) *Factory {
	if config == nil {
		config = DefaultConfig()
	}
	f := &Factory{
		config:   config,
		backends: make(map[string]compute.Backend),
	}
	f.backends["vector"] = vector.New()
	f.backends["gpu"] = gpu.New()
	f.selectBest()
	return f
}

func (f *Factory) selectBest() {
	for _, name := range f.config.PreferredOrder {
		if b, ok := f.backends[name]; ok && b.IsAvailable() {
			f.best = b
			return
		}
	}
	f.best = f.backends["vector"]
}

// GetBestBackend returns the backend selected at construction time.
func (f *Factory) GetBestBackend() compute.Backend {
	return f.best
}

// GetBackend returns a specific backend by name, or nil if unknown.
func (f *Factory) GetBackend(name string) compute.Backend {
	return f.backends[name]
}

// Redetect re-runs availability detection and reselects the best
// backend, mirroring HashMethodFactory.ReinitializeDetection (useful if
// a GPU becomes available mid-run, e.g. a driver reload).
func (f *Factory) Redetect() {
	f.backends["vector"] = vector.New()
	f.backends["gpu"] = gpu.New()
	f.selectBest()
}

// DetectionReport mirrors the teacher's DetectionReport/MethodStatus
// pair: a snapshot of which backends were found and which one won.
type DetectionReport struct {
	Backends       []BackendStatus
	BestBackend    string
	TotalBackends  int
	AvailableCount int
}

// BackendStatus describes one backend's detection outcome.
type BackendStatus struct {
	Name         string
	Available    bool
	Priority     int
	Capabilities compute.Capabilities
}

// GetDetectionReport builds a DetectionReport ordered by Config's
// preference, with any backend missing from PreferredOrder appended
// last, exactly as HashMethodFactory.GetDetectionReport does.
func (f *Factory) GetDetectionReport() *DetectionReport {
	report := &DetectionReport{
		BestBackend:   "none",
		TotalBackends: len(f.backends),
	}

	names := append([]string(nil), f.config.PreferredOrder...)
	for name := range f.backends {
		found := false
		for _, p := range f.config.PreferredOrder {
			if p == name {
				found = true
				break
			}
		}
		if !found {
			names = append(names, name)
		}
	}

	for _, name := range names {
		b, ok := f.backends[name]
		if !ok {
			continue
		}
		status := BackendStatus{
			Name:         name,
			Available:    b.IsAvailable(),
			Priority:     f.priority(name),
			Capabilities: b.Capabilities(),
		}
		report.Backends = append(report.Backends, status)
		if status.Available {
			report.AvailableCount++
		}
	}
	sort.Slice(report.Backends, func(i, j int) bool {
		return report.Backends[i].Priority < report.Backends[j].Priority
	})
	if f.best != nil {
		report.BestBackend = f.best.Name()
	}
	return report
}

func (f *Factory) priority(name string) int {
	for i, p := range f.config.PreferredOrder {
		if p == name {
			return i
		}
	}
	return 999
}
