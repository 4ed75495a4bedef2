package webview

import (
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/tilt-dev/tilt-alerts/internal/alerts"
	"github.com/tilt-dev/tilt-alerts/internal/k8sconv"
	"github.com/tilt-dev/tilt-alerts/pkg/model"
	"github.com/tilt-dev/tilt-alerts/pkg/webview"
)

const unknownErrorMessage = "unknown error"

// ResourceState is what the engine knows about one manifest.
type ResourceState struct {
	Name model.ManifestName

	// Most recent build first.
	BuildHistory []model.BuildRecord

	CrashLog model.Log

	// Nil for resources that don't run on Kubernetes, or whose pod
	// hasn't been seen yet.
	Pod *v1.Pod
}

func ToWebViewBuildRecord(br model.BuildRecord) webview.BuildRecord {
	var e *string
	if br.Error != nil {
		msg := br.Error.Error()
		if msg == "" {
			msg = unknownErrorMessage
		}
		e = &msg
	}

	var warnings []string
	if len(br.Warnings) > 0 {
		warnings = append([]string{}, br.Warnings...)
	}

	return webview.BuildRecord{
		Log:            br.Log.String(),
		Error:          e,
		Warnings:       warnings,
		StartTime:      metav1.NewMicroTime(br.StartTime),
		FinishTime:     metav1.NewMicroTime(br.FinishTime),
		IsCrashRebuild: br.Reason.IsCrashOnly(),
	}
}

func ToWebViewBuildRecords(brs []model.BuildRecord) []webview.BuildRecord {
	ret := make([]webview.BuildRecord, len(brs))
	for i, br := range brs {
		ret[i] = ToWebViewBuildRecord(br)
	}
	return ret
}

// ToWebViewResource builds the view of a resource, alerts included.
func ToWebViewResource(s ResourceState) webview.Resource {
	r := webview.Resource{
		Name:         s.Name.String(),
		BuildHistory: ToWebViewBuildRecords(s.BuildHistory),
		CrashLog:     s.CrashLog.String(),
	}
	if info := k8sconv.K8sResourceInfo(s.Pod); info != nil {
		r.ResourceInfo = *info
	}
	r.Alerts = alerts.Derive(r)
	return r
}

// StateToWebView builds the view of every resource, in the given order.
func StateToWebView(states []ResourceState) webview.View {
	ret := webview.View{}
	for _, s := range states {
		ret.Resources = append(ret.Resources, ToWebViewResource(s))
	}
	return ret
}
