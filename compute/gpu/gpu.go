// Package gpu is the GPU-shaped compute.Backend selected when a
// CUDA-capable device is detected. Per spec.md §9's design note there is
// no OpenCL/CUDA binding in the dependency pack to drive real device
// code, so — exactly as the teacher's own CudaMethod is commented "CUDA
// Simulator (Training Only)" and runs its mock bridge internally — this
// backend delegates every search to the identical vector kernel and
// differs only in its reported name and Capabilities.
package gpu

import (
	"os/exec"
	"strings"

	"lareveal/compute"
	"lareveal/compute/vector"
	"lareveal/internal/model"
)

// Backend wraps a vector.Backend, reporting GPU-shaped capabilities.
type Backend struct {
	inner     *vector.Backend
	available bool
	deviceErr string
}

// New probes for an NVIDIA device via nvidia-smi (the same probe idiom
// as the teacher's hardware.DeviceDetector.detectCUDA) and returns a
// Backend whose IsAvailable reflects that probe.
func New() *Backend {
	b := &Backend{inner: vector.New()}
	b.available, b.deviceErr = probeDevice()
	return b
}

func probeDevice() (bool, string) {
	out, err := exec.Command("nvidia-smi", "--query-gpu=name", "--format=csv,noheader").Output()
	if err != nil {
		return false, "nvidia-smi not found"
	}
	if strings.TrimSpace(string(out)) == "" {
		return false, "no NVIDIA GPUs found"
	}
	return true, ""
}

func (b *Backend) Name() string      { return "CUDA Simulator (Training Only)" }
func (b *Backend) IsAvailable() bool { return b.available }

func (b *Backend) Capabilities() compute.Capabilities {
	caps := compute.Capabilities{
		Name:            "CUDA Simulator (Training Only)",
		IsHardware:      true,
		ThroughputHint:  5_000_000_000,
		ProductionReady: false,
	}
	if !b.available {
		caps.Reason = b.deviceErr
	}
	return caps
}

func (b *Backend) FindFixedSeeds(spec compute.KernelSpec, steps int) ([]uint64, error) {
	return b.inner.FindFixedSeeds(spec, steps)
}

func (b *Backend) FindGeneratorSeeds(fixedSeeds []uint64, steps int) ([]uint64, error) {
	return b.inner.FindGeneratorSeeds(fixedSeeds, steps)
}

func (b *Backend) FindGroupSeed(generatorSeeds, fixedSeeds2 []uint64, isMulti bool) (*model.GroupSeed, error) {
	return b.inner.FindGroupSeed(generatorSeeds, fixedSeeds2, isMulti)
}

var _ compute.Backend = (*Backend)(nil)
