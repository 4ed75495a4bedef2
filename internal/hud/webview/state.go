package webview

import (
	"time"

	"github.com/pkg/errors"
	v1 "k8s.io/api/core/v1"

	"github.com/tilt-dev/tilt-alerts/pkg/model"
	"github.com/tilt-dev/tilt-alerts/pkg/webview"
)

// EngineState is the engine's own record of its resources, before any of it
// has been summarized for the view: build reasons instead of a crash-rebuild
// flag, and each pod exactly as `kubectl get pod -o json` prints it.
type EngineState struct {
	Resources []EngineResource `json:"resources,omitempty"`
}

type EngineResource struct {
	Name string `json:"name"`

	// Most recent build first.
	BuildHistory []EngineBuildRecord `json:"buildHistory,omitempty"`

	CrashLog string  `json:"crashLog,omitempty"`
	Pod      *v1.Pod `json:"pod,omitempty"`
}

type EngineBuildRecord struct {
	// Present (even if empty) when the build failed.
	Error *string `json:"error,omitempty"`

	Warnings   []string  `json:"warnings,omitempty"`
	StartTime  time.Time `json:"startTime,omitempty"`
	FinishTime time.Time `json:"finishTime,omitempty"`

	// Names accepted by model.ParseBuildReason, e.g. ["crash"].
	Reason []string `json:"reason,omitempty"`

	Log string `json:"log,omitempty"`
}

func (br EngineBuildRecord) toModel() (model.BuildRecord, error) {
	reason, err := model.ParseBuildReason(br.Reason...)
	if err != nil {
		return model.BuildRecord{}, err
	}

	var buildErr error
	if br.Error != nil {
		buildErr = errors.New(*br.Error)
	}

	return model.BuildRecord{
		Error:      buildErr,
		Warnings:   br.Warnings,
		StartTime:  br.StartTime,
		FinishTime: br.FinishTime,
		Reason:     reason,
		Log:        model.NewLog(br.Log),
	}, nil
}

// ResourceStates converts the decoded state into what StateToWebView consumes.
func (s EngineState) ResourceStates() ([]ResourceState, error) {
	result := make([]ResourceState, 0, len(s.Resources))
	for _, r := range s.Resources {
		history := make([]model.BuildRecord, 0, len(r.BuildHistory))
		for i, br := range r.BuildHistory {
			record, err := br.toModel()
			if err != nil {
				return nil, errors.Wrapf(err, "resource %s: build %d", r.Name, i)
			}
			history = append(history, record)
		}

		result = append(result, ResourceState{
			Name:         model.ManifestName(r.Name),
			BuildHistory: history,
			CrashLog:     model.NewLog(r.CrashLog),
			Pod:          r.Pod,
		})
	}
	return result, nil
}

// EngineStateToWebView builds the view, alerts included, from engine state.
func EngineStateToWebView(s EngineState) (webview.View, error) {
	states, err := s.ResourceStates()
	if err != nil {
		return webview.View{}, err
	}
	return StateToWebView(states), nil
}
