package snapshots

import (
	"fmt"
	"io"
	"strings"

	"github.com/docker/go-units"
	"github.com/fatih/color"
	"github.com/jonboulle/clockwork"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/tilt-dev/tilt-alerts/pkg/logger"
	"github.com/tilt-dev/tilt-alerts/pkg/webview"
)

var alertJSON = jsoniter.Config{
	SortMapKeys:            true,
	EscapeHTML:             false,
	ValidateJsonRawMessage: true,
}.Froze()

func EncodeJSON(w io.Writer, alerts []webview.Alert) error {
	if alerts == nil {
		alerts = []webview.Alert{}
	}
	encoder := alertJSON.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(alerts), "encoding alerts")
}

// EncodeViewJSON writes a whole view, for debugging.
func EncodeViewJSON(w io.Writer, v webview.View) error {
	encoder := alertJSON.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(v), "encoding view")
}

func EncodeYAML(w io.Writer, alerts []webview.Alert) error {
	if alerts == nil {
		alerts = []webview.Alert{}
	}
	b, err := yaml.Marshal(alerts)
	if err != nil {
		return errors.Wrap(err, "encoding alerts")
	}
	_, err = w.Write(b)
	return err
}

// EncodeText writes one block per alert: a header line, then the message
// exactly as it was recorded.
func EncodeText(w io.Writer, l logger.Logger, clock clockwork.Clock, alerts []webview.Alert) error {
	if len(alerts) == 0 {
		_, err := fmt.Fprintln(w, "No alerts")
		return err
	}

	for i, a := range alerts {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		header := fmt.Sprintf("%s %s", kindColor(l, a.Kind).Sprintf("[%s]", a.Kind), a.ResourceName)
		if a.Title != "" && a.Title != a.Message {
			header += ": " + a.Title
		}
		if !a.Timestamp.IsZero() {
			header += fmt.Sprintf(" (%s ago)", units.HumanDuration(clock.Since(a.Timestamp.Time)))
		}

		if _, err := fmt.Fprintln(w, header); err != nil {
			return err
		}
		if a.Message == "" {
			continue
		}
		msg := a.Message
		if !strings.HasSuffix(msg, "\n") {
			msg += "\n"
		}
		if _, err := io.WriteString(w, msg); err != nil {
			return err
		}
	}
	return nil
}

func kindColor(l logger.Logger, kind webview.AlertKind) *color.Color {
	switch kind {
	case webview.AlertKindWarning:
		return logger.Yellow(l)
	case webview.AlertKindCrashRebuild:
		return logger.Blue(l)
	default:
		return logger.Red(l)
	}
}
