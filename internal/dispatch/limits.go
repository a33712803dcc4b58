package dispatch

import (
	"runtime"

	"github.com/vvka-141/sheetload/pkg/sheetload"
)

// Limits bounds the worker pool and the number of tasks in flight.
// MaxConcurrentTasks never exceeds MaxWorkers.
type Limits struct {
	MaxWorkers         int
	MaxConcurrentTasks int
}

// HostParallelism is the number of logical CPUs usable by the process.
func HostParallelism() int {
	return runtime.GOMAXPROCS(0)
}

// ResolveLimits clamps the requested values. Zero selects the default:
// host-1 workers and DefaultConcurrentTasks tasks. Workers are kept within
// [MinWorkers, host], with MinWorkers winning on hosts smaller than that;
// concurrency is kept within [1, workers].
func ResolveLimits(requestedWorkers, requestedConcurrent, host int) Limits {
	ceiling := host
	if ceiling < sheetload.MinWorkers {
		ceiling = sheetload.MinWorkers
	}

	workers := requestedWorkers
	if workers <= 0 {
		workers = host - 1
	}
	workers = clamp(workers, sheetload.MinWorkers, ceiling)

	concurrent := requestedConcurrent
	if concurrent <= 0 {
		concurrent = sheetload.DefaultConcurrentTasks
	}
	concurrent = clamp(concurrent, 1, workers)

	return Limits{MaxWorkers: workers, MaxConcurrentTasks: concurrent}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
