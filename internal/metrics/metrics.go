package metrics

import (
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()

	runsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sigfuzz",
		Name:      "runs_total",
		Help:      "Total number of completed spawn/supervise cycles.",
	})

	crashesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sigfuzz",
		Name:      "crashes_total",
		Help:      "Total number of crash-worthy terminations observed.",
	})

	uniqueCrashesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sigfuzz",
		Name:      "unique_crashes_total",
		Help:      "Total number of terminations counted as unique crashes.",
	})

	saveFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sigfuzz",
		Name:      "artifact_save_failures_total",
		Help:      "Total number of crash artifacts that could not be persisted.",
	})

	spawnFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sigfuzz",
		Name:      "spawn_failures_total",
		Help:      "Total number of target launches that failed before exec.",
	})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "sigfuzz",
		Name:      "build_info",
		Help:      "Build metadata for the running sigfuzz binary.",
	}, []string{"go_version", "vcs", "vcs_revision", "vcs_time", "vcs_modified"})

	buildInfoOnce sync.Once
)

func init() {
	registry.MustRegister(runsTotal, crashesTotal, uniqueCrashesTotal, saveFailuresTotal, spawnFailuresTotal, buildInfo)
}

// Registry returns the Prometheus registry containing all sigfuzz metrics.
func Registry() *prometheus.Registry {
	return registry
}

// IncRun records one completed fuzzing iteration.
func IncRun() { runsTotal.Inc() }

// IncCrash records one crash-worthy termination.
func IncCrash() { crashesTotal.Inc() }

// IncUniqueCrash records one termination counted as a unique crash.
func IncUniqueCrash() { uniqueCrashesTotal.Inc() }

// IncSaveFailure records a failed artifact copy.
func IncSaveFailure() { saveFailuresTotal.Inc() }

// IncSpawnFailure records a target launch that failed before exec.
func IncSpawnFailure() { spawnFailuresTotal.Inc() }

// EmitBuildInfo publishes build metadata about the running binary.
func EmitBuildInfo() {
	buildInfoOnce.Do(func() {
		labels := prometheus.Labels{
			"go_version":   runtime.Version(),
			"vcs":          "",
			"vcs_revision": "",
			"vcs_time":     "",
			"vcs_modified": "",
		}
		if info, ok := debug.ReadBuildInfo(); ok {
			if info.GoVersion != "" {
				labels["go_version"] = info.GoVersion
			}
			for _, setting := range info.Settings {
				switch setting.Key {
				case "vcs":
					labels["vcs"] = setting.Value
				case "vcs.revision":
					labels["vcs_revision"] = setting.Value
				case "vcs.time":
					labels["vcs_time"] = setting.Value
				case "vcs.modified":
					labels["vcs_modified"] = setting.Value
				}
			}
		}
		buildInfo.With(labels).Set(1)
	})
}
