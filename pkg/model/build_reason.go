package model

import "fmt"

// BuildReason is a bitset of the things that caused a build.
type BuildReason int

const BuildReasonNone = BuildReason(0)

const (
	BuildReasonFlagChangedFiles BuildReason = 1 << iota
	BuildReasonFlagConfig

	// The pod crashed and lost its live-updated state, so we rebuilt it.
	BuildReasonFlagCrash

	BuildReasonFlagInit

	BuildReasonFlagTriggerWeb
	BuildReasonFlagTriggerCLI
)

func (r BuildReason) With(flag BuildReason) BuildReason {
	return r | flag
}

func (r BuildReason) Has(flag BuildReason) bool {
	return r&flag == flag
}

// A crash rebuild is a build that happened only because of a crash.
// If files changed at the same time, the files are what the user cares about.
func (r BuildReason) IsCrashOnly() bool {
	return r == BuildReasonFlagCrash
}

var buildReasonNames = map[string]BuildReason{
	"changed-files": BuildReasonFlagChangedFiles,
	"config":        BuildReasonFlagConfig,
	"crash":         BuildReasonFlagCrash,
	"init":          BuildReasonFlagInit,
	"trigger-web":   BuildReasonFlagTriggerWeb,
	"trigger-cli":   BuildReasonFlagTriggerCLI,
}

// ParseBuildReason combines the named reasons, e.g. "crash" or "changed-files".
func ParseBuildReason(names ...string) (BuildReason, error) {
	result := BuildReasonNone
	for _, name := range names {
		flag, ok := buildReasonNames[name]
		if !ok {
			return BuildReasonNone, fmt.Errorf("unknown build reason %q", name)
		}
		result = result.With(flag)
	}
	return result, nil
}
