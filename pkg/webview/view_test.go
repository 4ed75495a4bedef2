package webview

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func TestEncodeK8sResourceInfo(t *testing.T) {
	res := Resource{
		Name: "foo",
		ResourceInfo: K8sResourceInfo{
			PodName:     "foo-abc",
			PodStatus:   "Error",
			PodRestarts: 2,
		},
	}

	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{
  "name": "foo",
  "resourceInfo": {
    "type": "k8s",
    "k8s": {
      "podName": "foo-abc",
      "podCreationTime": null,
      "podUpdateStartTime": null,
      "podStatus": "Error",
      "podRestarts": 2
    }
  }
}`, string(b))
}

func TestDecodeK8sResourceInfo(t *testing.T) {
	var res Resource
	err := json.Unmarshal([]byte(`{
  "name": "foo",
  "crashLog": "Eeeeek\nthere is a problem",
  "buildHistory": [{"error": "oh no", "warnings": ["a", "b"], "isCrashRebuild": true}],
  "resourceInfo": {"type": "k8s", "k8s": {"podStatus": "CrashLoopBackOff", "podRestarts": 3, "podCreationTime": "2019-04-22T22:03:05.039000Z"}}
}`), &res)
	require.NoError(t, err)

	info, ok := res.ResourceInfo.(K8sResourceInfo)
	require.True(t, ok, "expected K8sResourceInfo, got %T", res.ResourceInfo)
	assert.Equal(t, "CrashLoopBackOff", info.PodStatus)
	assert.Equal(t, int32(3), info.PodRestarts)
	assert.True(t, info.PodCreationTime.Time.Equal(time.Unix(1555970585, 39000000)))

	assert.Equal(t, "Eeeeek\nthere is a problem", res.CrashLog)
	assert.True(t, res.LastBuild().HasError())
	assert.Equal(t, "oh no", res.LastBuild().ErrorMessage())
	assert.Equal(t, []string{"a", "b"}, res.LastBuild().Warnings)
	assert.True(t, res.LastBuild().IsCrashRebuild)
}

func TestDecodeOtherResourceInfo(t *testing.T) {
	var res Resource
	err := json.Unmarshal([]byte(`{"name": "db", "resourceInfo": {"type": "docker-compose", "dc": {"containerStatus": "crashed"}}}`), &res)
	require.NoError(t, err)
	assert.Equal(t, DCResourceInfo{ContainerStatus: "crashed"}, res.ResourceInfo)

	err = json.Unmarshal([]byte(`{"name": "lint", "resourceInfo": {"type": "local"}}`), &res)
	require.NoError(t, err)
	assert.Equal(t, LocalResourceInfo{}, res.ResourceInfo)
}

func TestDecodeMissingResourceInfo(t *testing.T) {
	var res Resource
	err := json.Unmarshal([]byte(`{"name": "foo"}`), &res)
	require.NoError(t, err)
	assert.Nil(t, res.ResourceInfo)
}

func TestDecodeUnknownResourceInfo(t *testing.T) {
	var res Resource
	err := json.Unmarshal([]byte(`{"name": "foo", "resourceInfo": {"type": "nomad"}}`), &res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unrecognized resource info type "nomad"`)

	err = json.Unmarshal([]byte(`{"name": "foo", "resourceInfo": {"k8s": {}}}`), &res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing a type")
}

func TestEncodePointerResourceInfo(t *testing.T) {
	res := Resource{Name: "foo", ResourceInfo: &LocalResourceInfo{Pid: 12}}
	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "foo", "resourceInfo": {"type": "local", "local": {"pid": 12}}}`, string(b))
}

func TestEncodeAlert(t *testing.T) {
	ts := metav1.NewMicroTime(time.Unix(1555970585, 39000000).UTC())
	b, err := json.Marshal(Alert{
		Kind:         AlertKindWarning,
		Message:      "line 1\nline 2",
		Timestamp:    ts,
		ResourceName: "foo",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
  "kind": "Warning",
  "message": "line 1\nline 2",
  "timestamp": "2019-04-22T22:03:05.039000Z",
  "resourceName": "foo"
}`, string(b))
}

func TestLastBuildEmptyHistory(t *testing.T) {
	assert.Equal(t, BuildRecord{}, Resource{}.LastBuild())
}
