package webview

import (
	"encoding/json"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

type ResourceInfoType string

const (
	ResourceInfoTypeK8s           ResourceInfoType = "k8s"
	ResourceInfoTypeDockerCompose ResourceInfoType = "docker-compose"
	ResourceInfoTypeLocal         ResourceInfoType = "local"
)

// ResourceInfo is the runtime half of a Resource.
//
// The set of implementations is closed: K8sResourceInfo, DCResourceInfo and
// LocalResourceInfo.
type ResourceInfo interface {
	resourceInfo()
	Type() ResourceInfoType
}

type K8sResourceInfo struct {
	PodName            string           `json:"podName,omitempty"`
	PodCreationTime    metav1.MicroTime `json:"podCreationTime,omitempty"`
	PodUpdateStartTime metav1.MicroTime `json:"podUpdateStartTime,omitempty"`
	PodStatus          string           `json:"podStatus,omitempty"`
	PodStatusMessage   string           `json:"podStatusMessage,omitempty"`
	PodRestarts        int32            `json:"podRestarts,omitempty"`
}

var _ ResourceInfo = K8sResourceInfo{}

func (K8sResourceInfo) resourceInfo()          {}
func (K8sResourceInfo) Type() ResourceInfoType { return ResourceInfoTypeK8s }

type DCResourceInfo struct {
	ContainerStatus string           `json:"containerStatus,omitempty"`
	ContainerID     string           `json:"containerID,omitempty"`
	StartTime       metav1.MicroTime `json:"startTime,omitempty"`
}

var _ ResourceInfo = DCResourceInfo{}

func (DCResourceInfo) resourceInfo()          {}
func (DCResourceInfo) Type() ResourceInfoType { return ResourceInfoTypeDockerCompose }

type LocalResourceInfo struct {
	Pid    int64 `json:"pid,omitempty"`
	IsTest bool  `json:"isTest,omitempty"`
}

var _ ResourceInfo = LocalResourceInfo{}

func (LocalResourceInfo) resourceInfo()          {}
func (LocalResourceInfo) Type() ResourceInfoType { return ResourceInfoTypeLocal }

// On the wire, ResourceInfo is a tagged envelope:
//
//	{"type": "k8s", "k8s": {...}}
type resourceInfoEnvelope struct {
	Type  ResourceInfoType   `json:"type"`
	K8s   *K8sResourceInfo   `json:"k8s,omitempty"`
	DC    *DCResourceInfo    `json:"dc,omitempty"`
	Local *LocalResourceInfo `json:"local,omitempty"`
}

func toEnvelope(info ResourceInfo) (*resourceInfoEnvelope, error) {
	switch info := info.(type) {
	case nil:
		return nil, nil
	case K8sResourceInfo:
		return &resourceInfoEnvelope{Type: info.Type(), K8s: &info}, nil
	case *K8sResourceInfo:
		if info == nil {
			return nil, nil
		}
		return toEnvelope(*info)
	case DCResourceInfo:
		return &resourceInfoEnvelope{Type: info.Type(), DC: &info}, nil
	case *DCResourceInfo:
		if info == nil {
			return nil, nil
		}
		return toEnvelope(*info)
	case LocalResourceInfo:
		return &resourceInfoEnvelope{Type: info.Type(), Local: &info}, nil
	case *LocalResourceInfo:
		if info == nil {
			return nil, nil
		}
		return toEnvelope(*info)
	default:
		return nil, fmt.Errorf("unrecognized resource info %T", info)
	}
}

func (e *resourceInfoEnvelope) resourceInfo() (ResourceInfo, error) {
	if e == nil {
		return nil, nil
	}
	switch e.Type {
	case ResourceInfoTypeK8s:
		if e.K8s == nil {
			return K8sResourceInfo{}, nil
		}
		return *e.K8s, nil
	case ResourceInfoTypeDockerCompose:
		if e.DC == nil {
			return DCResourceInfo{}, nil
		}
		return *e.DC, nil
	case ResourceInfoTypeLocal:
		if e.Local == nil {
			return LocalResourceInfo{}, nil
		}
		return *e.Local, nil
	case "":
		if e.K8s == nil && e.DC == nil && e.Local == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("resource info is missing a type")
	default:
		return nil, fmt.Errorf("unrecognized resource info type %q", e.Type)
	}
}

type resourceAlias Resource

type resourceJSON struct {
	resourceAlias
	ResourceInfo *resourceInfoEnvelope `json:"resourceInfo,omitempty"`
}

func (r Resource) MarshalJSON() ([]byte, error) {
	env, err := toEnvelope(r.ResourceInfo)
	if err != nil {
		return nil, fmt.Errorf("resource %s: %v", r.Name, err)
	}
	return json.Marshal(resourceJSON{resourceAlias: resourceAlias(r), ResourceInfo: env})
}

func (r *Resource) UnmarshalJSON(b []byte) error {
	var decoded resourceJSON
	err := json.Unmarshal(b, &decoded)
	if err != nil {
		return err
	}

	info, err := decoded.ResourceInfo.resourceInfo()
	if err != nil {
		return fmt.Errorf("resource %s: %v", decoded.Name, err)
	}

	*r = Resource(decoded.resourceAlias)
	r.ResourceInfo = info
	return nil
}
