package webview

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

type BuildRecord struct {
	Log string `json:"log,omitempty"`

	// Set when the build failed with an error we don't know how to classify.
	Error *string `json:"error,omitempty"`

	Warnings       []string         `json:"warnings,omitempty"`
	StartTime      metav1.MicroTime `json:"startTime,omitempty"`
	FinishTime     metav1.MicroTime `json:"finishTime,omitempty"`
	IsCrashRebuild bool             `json:"isCrashRebuild,omitempty"`
}

func (br BuildRecord) HasError() bool {
	return br.Error != nil
}

func (br BuildRecord) ErrorMessage() string {
	if br.Error == nil {
		return ""
	}
	return *br.Error
}

type Resource struct {
	Name string `json:"name,omitempty"`

	// Most recent build first.
	BuildHistory []BuildRecord `json:"buildHistory,omitempty"`

	// If a pod had to be killed because it was crashing, we keep the old log around
	// for a little while.
	CrashLog string `json:"crashLog,omitempty"`

	ResourceInfo ResourceInfo `json:"-"`

	Alerts []Alert `json:"alerts,omitempty"`
}

func (r Resource) LastBuild() BuildRecord {
	if len(r.BuildHistory) == 0 {
		return BuildRecord{}
	}
	return r.BuildHistory[0]
}

type View struct {
	Resources []Resource `json:"resources,omitempty"`
}

func (v View) Resource(name string) (Resource, bool) {
	for _, res := range v.Resources {
		if res.Name == name {
			return res, true
		}
	}
	return Resource{}, false
}

type Snapshot struct {
	View      *View            `json:"view,omitempty"`
	CreatedAt metav1.MicroTime `json:"createdAt,omitempty"`
}
