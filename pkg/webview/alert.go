package webview

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

type AlertKind string

const (
	AlertKindUnrecognizedError AlertKind = "UnrecognizedError"
	AlertKindPodRestart        AlertKind = "PodRestart"
	AlertKindCrashRebuild      AlertKind = "CrashRebuild"
	AlertKindWarning           AlertKind = "Warning"
)

var AllAlertKinds = []AlertKind{
	AlertKindUnrecognizedError,
	AlertKindPodRestart,
	AlertKindCrashRebuild,
	AlertKindWarning,
}

func (k AlertKind) String() string { return string(k) }

// An Alert is a display-ready notice about the current state of a resource.
//
// Message is kept exactly as it appeared in the underlying log or error,
// including line breaks. Wrapping and truncation belong to whoever draws it.
type Alert struct {
	Kind         AlertKind        `json:"kind"`
	Title        string           `json:"title,omitempty"`
	Message      string           `json:"message"`
	Timestamp    metav1.MicroTime `json:"timestamp"`
	ResourceName string           `json:"resourceName"`
}
