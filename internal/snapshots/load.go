package snapshots

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	hudwebview "github.com/tilt-dev/tilt-alerts/internal/hud/webview"
	"github.com/tilt-dev/tilt-alerts/pkg/logger"
	"github.com/tilt-dev/tilt-alerts/pkg/webview"
)

// Read reads a snapshot from a path, or from stdin if the path is "-".
func Read(path string) ([]byte, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "reading snapshot")
		}
		r = f
		defer func() { _ = f.Close() }()
	}

	b, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "reading snapshot %s", path)
	}
	return b, nil
}

// ErrEmpty is returned for a snapshot with no content at all, like a file
// that has been truncated but not yet rewritten.
var ErrEmpty = errors.New("snapshot is empty")

// Parse decodes a snapshot. Accepts JSON or YAML, in one of three forms:
// a full snapshot ({"view": {...}}), a bare view ({"resources": [...]}),
// or engine state ({"state": {"resources": [...]}}) whose resources carry
// raw build reasons and pods.
func Parse(b []byte) (webview.Snapshot, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return webview.Snapshot{}, ErrEmpty
	}

	var envelope struct {
		webview.Snapshot
		Resources json.RawMessage         `json:"resources,omitempty"`
		State     *hudwebview.EngineState `json:"state,omitempty"`
	}
	err := yaml.Unmarshal(b, &envelope)
	if err != nil {
		return webview.Snapshot{}, errors.Wrap(err, "decoding snapshot")
	}

	snapshot := envelope.Snapshot
	if envelope.State != nil {
		if snapshot.View != nil || len(envelope.Resources) > 0 {
			return webview.Snapshot{}, errors.New("decoding snapshot: has both a view and engine state")
		}
		v, err := hudwebview.EngineStateToWebView(*envelope.State)
		if err != nil {
			return webview.Snapshot{}, errors.Wrap(err, "decoding engine state")
		}
		snapshot.View = &v
	}

	if snapshot.View == nil && len(envelope.Resources) > 0 {
		var v webview.View
		err := yaml.Unmarshal(b, &v)
		if err != nil {
			return webview.Snapshot{}, errors.Wrap(err, "decoding view")
		}
		snapshot.View = &v
	}
	if snapshot.View == nil {
		snapshot.View = &webview.View{}
	}
	return snapshot, nil
}

// Load reads and decodes the snapshot at path.
func Load(ctx context.Context, path string) (webview.Snapshot, error) {
	b, err := Read(path)
	if err != nil {
		return webview.Snapshot{}, err
	}

	snapshot, err := Parse(b)
	if err != nil {
		return webview.Snapshot{}, errors.Wrapf(err, "loading %s", path)
	}

	logger.Get(ctx).Debugf("Loaded %d resources from %s", len(snapshot.View.Resources), path)
	return snapshot, nil
}
