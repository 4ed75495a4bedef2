package alerts

import (
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/tilt-dev/tilt-alerts/pkg/webview"
)

var ts = metav1.NewMicroTime(time.Unix(1555970585, 39000000))

func fillResourceFields() webview.Resource {
	return webview.Resource{
		Name:         "foo",
		BuildHistory: []webview.BuildRecord{},
		CrashLog:     "",
		ResourceInfo: webview.K8sResourceInfo{},
	}
}

func errPtr(s string) *string { return &s }

func kinds(alerts []webview.Alert) []webview.AlertKind {
	result := []webview.AlertKind{}
	for _, a := range alerts {
		result = append(result, a.Kind)
	}
	return result
}

func TestNoAlertsOnHealthyResource(t *testing.T) {
	res := fillResourceFields()
	res.ResourceInfo = webview.K8sResourceInfo{PodStatus: "Running"}
	assert.Empty(t, Derive(res))
}

func TestNoAlertsOnEmptyResource(t *testing.T) {
	assert.Empty(t, Derive(webview.Resource{}))
}

func TestOneContainerStartError(t *testing.T) {
	res := fillResourceFields()
	res.CrashLog = "Eeeeek there is a problem"
	res.BuildHistory = []webview.BuildRecord{
		{Log: "laa dee daa I'm not an error\nI'm serious", FinishTime: ts},
	}
	res.ResourceInfo = webview.K8sResourceInfo{
		PodCreationTime: ts,
		PodStatus:       "Error",
		PodRestarts:     2,
	}

	alerts := Derive(res)
	require.Len(t, alerts, 1)
	assert.Equal(t, webview.Alert{
		Kind:         webview.AlertKindPodRestart,
		Title:        "Restarts: 2",
		Message:      "Restarts: 2\nEeeeek there is a problem",
		Timestamp:    ts,
		ResourceName: "foo",
	}, alerts[0])
}

func TestRestartWithoutCrashLog(t *testing.T) {
	res := fillResourceFields()
	res.ResourceInfo = webview.K8sResourceInfo{PodStatus: "CrashLoopBackOff", PodRestarts: 4}

	alerts := Derive(res)
	require.Len(t, alerts, 1)
	assert.Equal(t, "Restarts: 4", alerts[0].Message)
}

func TestRestartsOnHealthyPodAreQuiet(t *testing.T) {
	res := fillResourceFields()
	res.CrashLog = "Eeeeek the container crashed"
	res.ResourceInfo = webview.K8sResourceInfo{PodStatus: "ok", PodRestarts: 1, PodCreationTime: ts}
	assert.Empty(t, Derive(res))
}

func TestCrashingStatusWithoutRestartsIsQuiet(t *testing.T) {
	res := fillResourceFields()
	res.ResourceInfo = webview.K8sResourceInfo{PodStatus: "Error"}
	assert.Empty(t, Derive(res))
}

func TestCrashRebuild(t *testing.T) {
	res := fillResourceFields()
	res.CrashLog = "Eeeeek the container crashed"
	res.BuildHistory = []webview.BuildRecord{
		{Log: "laa dee daa I'm not an error\nseriously", FinishTime: ts, IsCrashRebuild: true},
	}
	res.ResourceInfo = webview.K8sResourceInfo{PodCreationTime: ts, PodStatus: "ok"}

	alerts := Derive(res)
	require.Len(t, alerts, 1)
	assert.Equal(t, webview.Alert{
		Kind:         webview.AlertKindCrashRebuild,
		Title:        "Pod crashed",
		Message:      "Eeeeek the container crashed",
		Timestamp:    ts,
		ResourceName: "foo",
	}, alerts[0])
}

func TestCrashRebuildStableUnderFlapping(t *testing.T) {
	res := fillResourceFields()
	res.CrashLog = "Eeeeek there is a problem"
	res.BuildHistory = []webview.BuildRecord{
		{FinishTime: ts, IsCrashRebuild: true},
	}
	res.ResourceInfo = webview.K8sResourceInfo{PodCreationTime: ts, PodStatus: "Error", PodRestarts: 2}

	before := Derive(res)
	assert.Equal(t, []webview.AlertKind{webview.AlertKindPodRestart, webview.AlertKindCrashRebuild}, kinds(before))

	// the pod status flaps between "Error" and "CrashLoopBackOff"
	res.ResourceInfo = webview.K8sResourceInfo{PodCreationTime: ts, PodStatus: "CrashLoopBackOff", PodRestarts: 3}
	after := Derive(res)
	assert.Equal(t, kinds(before), kinds(after))

	crashRebuilds := Filter(after, webview.AlertKindCrashRebuild)
	require.Len(t, crashRebuilds, 1)
	assert.Equal(t, Filter(before, webview.AlertKindCrashRebuild), crashRebuilds)
}

func TestMultilineCrashLogIsPreserved(t *testing.T) {
	res := fillResourceFields()
	res.CrashLog = "Eeeeek the container crashed\nno but really it crashed"
	res.BuildHistory = []webview.BuildRecord{
		{FinishTime: ts, IsCrashRebuild: true},
	}
	res.ResourceInfo = webview.K8sResourceInfo{PodCreationTime: ts, PodStatus: "Error", PodRestarts: 1}

	alerts := Derive(res)
	require.Len(t, alerts, 2)
	assert.Equal(t, "Restarts: 1\nEeeeek the container crashed\nno but really it crashed", alerts[0].Message)
	assert.Equal(t, "Eeeeek the container crashed\nno but really it crashed", alerts[1].Message)
}

func TestWarnings(t *testing.T) {
	res := fillResourceFields()
	res.CrashLog = "Eeeeek the container crashed"
	res.BuildHistory = []webview.BuildRecord{
		{FinishTime: ts, IsCrashRebuild: true, Warnings: []string{"a", "b"}},
	}
	res.ResourceInfo = webview.K8sResourceInfo{PodCreationTime: ts, PodStatus: "ok"}

	alerts := Derive(res)
	assert.Equal(t, []webview.AlertKind{
		webview.AlertKindCrashRebuild,
		webview.AlertKindWarning,
		webview.AlertKindWarning,
	}, kinds(alerts))

	warnings := Filter(alerts, webview.AlertKindWarning)
	assert.Equal(t, "a", warnings[0].Message)
	assert.Equal(t, "b", warnings[1].Message)
	assert.Equal(t, ts, warnings[1].Timestamp)
}

func TestOnlyLatestBuildCounts(t *testing.T) {
	res := fillResourceFields()
	res.BuildHistory = []webview.BuildRecord{
		{FinishTime: ts},
		{Error: errPtr("old failure"), Warnings: []string{"old warning"}, IsCrashRebuild: true},
	}
	assert.Empty(t, Derive(res))
}

func TestUnrecognizedError(t *testing.T) {
	res := fillResourceFields()
	res.BuildHistory = []webview.BuildRecord{
		{Log: "Step 1/3 : FROM golang\nunexpected EOF", Error: errPtr("failed to pull image"), FinishTime: ts},
	}

	alerts := Derive(res)
	require.Len(t, alerts, 1)
	assert.Equal(t, webview.Alert{
		Kind:         webview.AlertKindUnrecognizedError,
		Title:        "Build error",
		Message:      "failed to pull image",
		Timestamp:    ts,
		ResourceName: "foo",
	}, alerts[0])
}

func TestUnrecognizedErrorComesFirst(t *testing.T) {
	res := fillResourceFields()
	res.CrashLog = "Eeeeek"
	res.BuildHistory = []webview.BuildRecord{
		{Error: errPtr("boom"), IsCrashRebuild: true, Warnings: []string{"w"}, FinishTime: ts},
	}
	res.ResourceInfo = webview.K8sResourceInfo{PodStatus: "CrashLoopBackOff", PodRestarts: 1}

	assert.Equal(t, []webview.AlertKind{
		webview.AlertKindUnrecognizedError,
		webview.AlertKindPodRestart,
		webview.AlertKindCrashRebuild,
		webview.AlertKindWarning,
	}, kinds(Derive(res)))
}

func TestCrashSignalsNeedKubernetes(t *testing.T) {
	for _, info := range []webview.ResourceInfo{
		nil,
		webview.DCResourceInfo{ContainerStatus: "Error"},
		webview.LocalResourceInfo{},
		(*webview.K8sResourceInfo)(nil),
	} {
		res := fillResourceFields()
		res.CrashLog = "Eeeeek"
		res.BuildHistory = []webview.BuildRecord{{IsCrashRebuild: true, Warnings: []string{"w"}}}
		res.ResourceInfo = info
		assert.Equal(t, []webview.AlertKind{webview.AlertKindWarning}, kinds(Derive(res)), "info: %#v", info)
	}
}

func TestIsK8sResourceInfo(t *testing.T) {
	_, ok := IsK8sResourceInfo(webview.K8sResourceInfo{})
	assert.True(t, ok)

	info, ok := IsK8sResourceInfo(&webview.K8sResourceInfo{PodStatus: "Error"})
	assert.True(t, ok)
	assert.Equal(t, "Error", info.PodStatus)

	_, ok = IsK8sResourceInfo(webview.DCResourceInfo{})
	assert.False(t, ok)

	_, ok = IsK8sResourceInfo(nil)
	assert.False(t, ok)
}

func TestDeriveIsIdempotent(t *testing.T) {
	res := fillResourceFields()
	res.CrashLog = "Eeeeek\nthere is a problem"
	res.BuildHistory = []webview.BuildRecord{
		{Error: errPtr("boom"), IsCrashRebuild: true, Warnings: []string{"a", "b"}, FinishTime: ts},
	}
	res.ResourceInfo = webview.K8sResourceInfo{PodStatus: "Error", PodRestarts: 2, PodCreationTime: ts}

	first := Derive(res)
	second := Derive(res)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("alerts changed between calls (-first +second):\n%s", diff)
	}
}

func TestDeriveDoesNotMutate(t *testing.T) {
	res := fillResourceFields()
	res.BuildHistory = []webview.BuildRecord{{Warnings: []string{"a"}}}
	res.Alerts = []webview.Alert{{Kind: webview.AlertKindWarning, Message: "stale"}}

	_ = Derive(res)
	assert.Equal(t, "stale", res.Alerts[0].Message)
	assert.Equal(t, []string{"a"}, res.BuildHistory[0].Warnings)
}

func TestCustomCrashingStatuses(t *testing.T) {
	d := NewDeriver("OOMKilled")
	res := fillResourceFields()
	res.ResourceInfo = webview.K8sResourceInfo{PodStatus: "OOMKilled", PodRestarts: 1}
	assert.Equal(t, []webview.AlertKind{webview.AlertKindPodRestart}, kinds(d.Derive(res)))

	res.ResourceInfo = webview.K8sResourceInfo{PodStatus: "CrashLoopBackOff", PodRestarts: 1}
	assert.Empty(t, d.Derive(res))
}

func TestPopulate(t *testing.T) {
	healthy := fillResourceFields()
	healthy.Name = "healthy"
	healthy.Alerts = []webview.Alert{{Kind: webview.AlertKindWarning, Message: "stale"}}

	broken := fillResourceFields()
	broken.Name = "broken"
	broken.BuildHistory = []webview.BuildRecord{{Error: errPtr("boom")}}

	resources := []webview.Resource{healthy, broken}
	Populate(resources)

	assert.Empty(t, resources[0].Alerts)
	require.Len(t, resources[1].Alerts, 1)
	assert.Equal(t, "broken", resources[1].Alerts[0].ResourceName)
}

func TestForView(t *testing.T) {
	a := fillResourceFields()
	a.Name = "a"
	a.BuildHistory = []webview.BuildRecord{{Warnings: []string{"a1"}}}

	b := fillResourceFields()
	b.Name = "b"
	b.BuildHistory = []webview.BuildRecord{{Error: errPtr("b1")}}

	alerts := ForView(webview.View{Resources: []webview.Resource{b, a}})
	require.Len(t, alerts, 2)
	assert.Equal(t, "b", alerts[0].ResourceName)
	assert.Equal(t, "a", alerts[1].ResourceName)
}

func TestFilterNoKinds(t *testing.T) {
	alerts := []webview.Alert{{Kind: webview.AlertKindWarning}}
	assert.Equal(t, alerts, Filter(alerts))
}

func TestDeriveConcurrently(t *testing.T) {
	res := fillResourceFields()
	res.CrashLog = "Eeeeek there is a problem"
	res.BuildHistory = []webview.BuildRecord{
		{Error: errPtr("docker build failed"), Warnings: []string{"a", "b"}, FinishTime: ts, IsCrashRebuild: true},
	}
	res.ResourceInfo = webview.K8sResourceInfo{PodStatus: "CrashLoopBackOff", PodRestarts: 3, PodCreationTime: ts}

	expected := Derive(res)
	require.Len(t, expected, 5)

	d := NewDeriver()
	var wg sync.WaitGroup
	results := make([][]webview.Alert, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				results[i] = d.Derive(res)
			} else {
				results[i] = Derive(res)
			}
		}(i)
	}
	wg.Wait()

	for i, actual := range results {
		if diff := cmp.Diff(expected, actual); diff != "" {
			t.Errorf("result %d differs (-want +got):\n%s", i, diff)
		}
	}
}
