package main

import (
	"github.com/mkrein/sigfuzz/internal/cli"
	"github.com/mkrein/sigfuzz/internal/metrics"
)

func main() {
	metrics.EmitBuildInfo()
	cli.Execute()
}
