package main

import (
	"github.com/tilt-dev/tilt-alerts/internal/cli"
	"github.com/tilt-dev/tilt-alerts/pkg/model"
)

// Magic variables set by goreleaser
var version string
var commit string
var date string

func main() {
	cli.SetBuildInfo(model.BuildInfo{
		Version:   version,
		CommitSHA: commit,
		Date:      date,
	})
	cli.Execute()
}
