package bootstrap

import (
	"fmt"

	"github.com/grafana/pyroscope-go"
)

const PyroscopeURLEnv = "PYROSCOPE_URL"

// StartProfiling starts continuous profiling to serverAddress. An empty address disables it and returns nil.
func StartProfiling(applicationName, serverAddress string) (*pyroscope.Profiler, error) {
	if serverAddress == "" {
		return nil, nil
	}
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: applicationName,
		ServerAddress:   serverAddress,
		Logger:          pyroscope.StandardLogger,
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileBlockDuration,
			pyroscope.ProfileMutexDuration,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize pyroscope client: %w", err)
	}
	return profiler, nil
}
