package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(crashesTotal)
	IncCrash()
	IncUniqueCrash()
	IncRun()
	IncSaveFailure()
	IncSpawnFailure()
	if got := testutil.ToFloat64(crashesTotal); got != before+1 {
		t.Fatalf("crashes_total = %v, want %v", got, before+1)
	}
}

func TestEmitBuildInfoIdempotent(t *testing.T) {
	EmitBuildInfo()
	EmitBuildInfo()
	if got := testutil.CollectAndCount(buildInfo); got != 1 {
		t.Fatalf("build_info series = %d, want 1", got)
	}
}
