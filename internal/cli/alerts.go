package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/cli-runtime/pkg/genericclioptions"

	"github.com/tilt-dev/tilt-alerts/internal/alerts"
	"github.com/tilt-dev/tilt-alerts/internal/snapshots"
	"github.com/tilt-dev/tilt-alerts/pkg/logger"
	"github.com/tilt-dev/tilt-alerts/pkg/webview"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

type alertsCmd struct {
	streams genericclioptions.IOStreams
	clock   clockwork.Clock

	output           string
	resources        []string
	kinds            []string
	crashingStatuses []string
	watch            bool
}

var _ tiltCmd = &alertsCmd{}

func newAlertsCmd() *alertsCmd {
	return &alertsCmd{
		streams: genericclioptions.IOStreams{Out: os.Stdout, ErrOut: os.Stderr, In: os.Stdin},
		clock:   clockwork.NewRealClock(),
	}
}

func (c *alertsCmd) register() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts <path/to/snapshot.json>",
		Short: "List the alerts for every resource in a snapshot",
		Long: `Lists the alerts for every resource in a snapshot.

An alert is one of:
  UnrecognizedError  the latest build failed
  PodRestart         the pod is crashing and has restarted
  CrashRebuild       the latest build happened because the pod crashed
  Warning            the latest build logged a warning

The snapshot may be JSON or YAML, and may be a full snapshot
({"view": {"resources": [...]}}), a bare view ({"resources": [...]}),
or engine state ({"state": {"resources": [...]}}), where each resource
lists its build reasons and its pod as printed by 'kubectl get pod -o json'.
`,
		Example: `
# List alerts in a saved snapshot
tilt-alerts alerts snapshot.json

# Only build errors for the frontend, as JSON
tilt-alerts alerts snapshot.json -r frontend --kind UnrecognizedError -o json

# Re-list alerts every time the snapshot changes
tilt-alerts alerts snapshot.json --watch

# Read the snapshot from stdin
curl http://myci.com/path/to/snapshot | tilt-alerts alerts -
`,
		Args: cobra.ExactArgs(1),
	}

	cmd.Flags().StringVarP(&c.output, "output", "o", outputText, "Output format: text, json or yaml")
	cmd.Flags().StringSliceVarP(&c.resources, "resource", "r", nil, "Only show alerts for these resources")
	cmd.Flags().StringSliceVar(&c.kinds, "kind", nil, "Only show alerts of these kinds")
	cmd.Flags().StringSliceVar(&c.crashingStatuses, "crashing-status", nil,
		fmt.Sprintf("Pod statuses that count as crashing (default %v)", alerts.DefaultCrashingPodStatuses()))
	cmd.Flags().BoolVar(&c.watch, "watch", false, "Re-list alerts whenever the snapshot file changes")

	return cmd
}

func (c *alertsCmd) validate(path string) error {
	switch c.output {
	case outputText, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unknown output format %q (expected one of: text, json, yaml)", c.output)
	}

	for _, k := range c.kinds {
		if !isAlertKind(k) {
			return fmt.Errorf("unknown alert kind %q (expected one of: %v)", k, webview.AllAlertKinds)
		}
	}

	if c.watch && path == "-" {
		return fmt.Errorf("--watch needs a snapshot file, not stdin")
	}
	return nil
}

func isAlertKind(k string) bool {
	for _, kind := range webview.AllAlertKinds {
		if string(kind) == k {
			return true
		}
	}
	return false
}

func (c *alertsCmd) run(ctx context.Context, args []string) error {
	path := args[0]
	err := c.validate(path)
	if err != nil {
		return err
	}

	deriver := alerts.NewDeriver(c.crashingStatuses...)
	if !c.watch {
		return c.render(ctx, deriver, path)
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	w, err := newSnapshotWatcher(path)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	err = c.renderWhenReady(ctx, deriver, path)
	if err != nil {
		return err
	}

	return w.run(ctx, func() error {
		err := c.renderWhenReady(ctx, deriver, path)
		if err != nil {
			// The file may be half-written; wait for the next change.
			logger.Get(ctx).Warnf("%v", err)
		}
		return nil
	})
}

// renderWhenReady renders the snapshot, but leaves the previous output alone
// while the file is empty.
func (c *alertsCmd) renderWhenReady(ctx context.Context, deriver alerts.Deriver, path string) error {
	err := c.render(ctx, deriver, path)
	if errors.Cause(err) == snapshots.ErrEmpty {
		logger.Get(ctx).Debugf("%s is empty, waiting for it to be written", path)
		return nil
	}
	return err
}

func (c *alertsCmd) render(ctx context.Context, deriver alerts.Deriver, path string) error {
	snapshot, err := snapshots.Load(ctx, path)
	if err != nil {
		return err
	}

	result := deriver.ForView(c.selectResources(ctx, *snapshot.View))
	result = alerts.Filter(result, c.alertKinds()...)
	logger.Get(ctx).Verbosef("Found %d alerts in %d resources", len(result), len(snapshot.View.Resources))

	switch c.output {
	case outputJSON:
		return snapshots.EncodeJSON(c.streams.Out, result)
	case outputYAML:
		return snapshots.EncodeYAML(c.streams.Out, result)
	default:
		return snapshots.EncodeText(c.streams.Out, logger.Get(ctx), c.clock, result)
	}
}

func (c *alertsCmd) selectResources(ctx context.Context, v webview.View) webview.View {
	if len(c.resources) == 0 {
		return v
	}

	result := webview.View{}
	seen := make(map[string]bool, len(c.resources))
	for _, name := range c.resources {
		if seen[name] {
			continue
		}
		seen[name] = true

		res, ok := v.Resource(name)
		if !ok {
			logger.Get(ctx).Warnf("No resource named %q in snapshot", name)
			continue
		}
		result.Resources = append(result.Resources, res)
	}
	return result
}

func (c *alertsCmd) alertKinds() []webview.AlertKind {
	result := make([]webview.AlertKind, 0, len(c.kinds))
	for _, k := range c.kinds {
		result = append(result, webview.AlertKind(k))
	}
	return result
}
