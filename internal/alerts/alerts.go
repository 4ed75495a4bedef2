// Package alerts derives the alerts shown in the alert pane from the
// recorded state of a resource.
//
// Derivation is stateless. Every call recomputes the full list from the
// resource it is handed, so a resource whose pod status flaps between polls
// never accumulates stale or duplicate alerts.
package alerts

import (
	"fmt"

	"github.com/tilt-dev/tilt-alerts/internal/k8sconv"
	"github.com/tilt-dev/tilt-alerts/pkg/webview"
)

const crashRebuildTitle = "Pod crashed"
const buildErrorTitle = "Build error"
const warningTitle = "Warning"

// DefaultCrashingPodStatuses returns the pod statuses that mean the pod is
// crashing rather than starting up or running.
func DefaultCrashingPodStatuses() []string {
	return k8sconv.ErrorWaitingReasonList()
}

// Deriver computes alerts with a configurable set of crashing pod statuses.
// It holds no mutable state and is safe for concurrent use.
type Deriver struct {
	crashing map[string]bool
}

// NewDeriver creates a Deriver that treats the given pod statuses as crashing.
// With no statuses, it uses DefaultCrashingPodStatuses.
func NewDeriver(crashingPodStatuses ...string) Deriver {
	if len(crashingPodStatuses) == 0 {
		crashingPodStatuses = DefaultCrashingPodStatuses()
	}
	crashing := make(map[string]bool, len(crashingPodStatuses))
	for _, s := range crashingPodStatuses {
		crashing[s] = true
	}
	return Deriver{crashing: crashing}
}

var defaultDeriver = NewDeriver()

// Derive computes the alerts for a resource with the default crashing statuses.
func Derive(res webview.Resource) []webview.Alert {
	return defaultDeriver.Derive(res)
}

// IsK8sResourceInfo reports whether the resource runs on Kubernetes,
// and if so returns its pod info.
func IsK8sResourceInfo(info webview.ResourceInfo) (webview.K8sResourceInfo, bool) {
	switch info := info.(type) {
	case webview.K8sResourceInfo:
		return info, true
	case *webview.K8sResourceInfo:
		if info == nil {
			return webview.K8sResourceInfo{}, false
		}
		return *info, true
	default:
		return webview.K8sResourceInfo{}, false
	}
}

// Derive computes the alerts for a resource.
//
// Alerts come out grouped: build errors, then pod restarts and crash
// rebuilds, then warnings. The resource is never modified.
func (d Deriver) Derive(res webview.Resource) []webview.Alert {
	result := []webview.Alert{}
	lastBuild := res.LastBuild()

	if lastBuild.HasError() {
		result = append(result, webview.Alert{
			Kind:         webview.AlertKindUnrecognizedError,
			Title:        buildErrorTitle,
			Message:      lastBuild.ErrorMessage(),
			Timestamp:    lastBuild.FinishTime,
			ResourceName: res.Name,
		})
	}

	if podInfo, ok := IsK8sResourceInfo(res.ResourceInfo); ok {
		if d.crashing[podInfo.PodStatus] && podInfo.PodRestarts > 0 {
			result = append(result, webview.Alert{
				Kind:         webview.AlertKindPodRestart,
				Title:        restartTitle(podInfo.PodRestarts),
				Message:      restartMessage(podInfo.PodRestarts, res.CrashLog),
				Timestamp:    podInfo.PodCreationTime,
				ResourceName: res.Name,
			})
		}

		// Keyed off the build record, not the pod, so that a pod
		// flapping between Error and CrashLoopBackOff doesn't change it.
		if lastBuild.IsCrashRebuild {
			result = append(result, webview.Alert{
				Kind:         webview.AlertKindCrashRebuild,
				Title:        crashRebuildTitle,
				Message:      res.CrashLog,
				Timestamp:    lastBuild.FinishTime,
				ResourceName: res.Name,
			})
		}
	}

	for _, w := range lastBuild.Warnings {
		result = append(result, webview.Alert{
			Kind:         webview.AlertKindWarning,
			Title:        warningTitle,
			Message:      w,
			Timestamp:    lastBuild.FinishTime,
			ResourceName: res.Name,
		})
	}

	return result
}

func restartTitle(restarts int32) string {
	return fmt.Sprintf("Restarts: %d", restarts)
}

func restartMessage(restarts int32, crashLog string) string {
	if crashLog == "" {
		return restartTitle(restarts)
	}
	return restartTitle(restarts) + "\n" + crashLog
}

// Populate stores the derived alerts on each resource.
func (d Deriver) Populate(resources []webview.Resource) {
	for i := range resources {
		resources[i].Alerts = d.Derive(resources[i])
	}
}

// Populate stores the default alerts on each resource.
func Populate(resources []webview.Resource) {
	defaultDeriver.Populate(resources)
}

// ForView collects the alerts of every resource in the view, in view order.
func (d Deriver) ForView(v webview.View) []webview.Alert {
	result := []webview.Alert{}
	for _, res := range v.Resources {
		result = append(result, d.Derive(res)...)
	}
	return result
}

// ForView collects the default alerts of every resource in the view.
func ForView(v webview.View) []webview.Alert {
	return defaultDeriver.ForView(v)
}

// Filter keeps the alerts of the given kinds. With no kinds, keeps everything.
func Filter(alerts []webview.Alert, kinds ...webview.AlertKind) []webview.Alert {
	if len(kinds) == 0 {
		return alerts
	}
	result := []webview.Alert{}
	for _, a := range alerts {
		for _, k := range kinds {
			if a.Kind == k {
				result = append(result, a)
				break
			}
		}
	}
	return result
}
