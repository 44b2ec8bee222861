package utils

import (
	"github.com/Luismorlan/rambagiza/utils/flag"
	Logger "github.com/Luismorlan/rambagiza/utils/log"
	"gopkg.in/DataDog/dd-trace-go.v1/profiler"
)

// StartProfiler starts the Datadog continuous profiler.
func StartProfiler() {
	if err := profiler.Start(
		profiler.WithService(*flag.ServiceName),
		profiler.WithEnv(datadogEnv()),
		profiler.WithProfileTypes(
			profiler.CPUProfile,
			profiler.HeapProfile,
			// The profiles below are disabled by
			// default to keep overhead low, but
			// can be enabled as needed.
			// profiler.BlockProfile,
			// profiler.MutexProfile,
			// profiler.GoroutineProfile,
		),
	); err != nil {
		Logger.Log.Fatal(err)
	}
	Logger.Log.Info("profiler initialized")
}

// Stop profiler, OK to be closed multiple times
func CloseProfiler() {
	// Datadog profiler
	profiler.Stop()
}
