package cli

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"k8s.io/cli-runtime/pkg/genericclioptions"

	"github.com/tilt-dev/tilt-alerts/internal/alerts"
	"github.com/tilt-dev/tilt-alerts/internal/snapshots"
)

func newDumpCmd(rootCmd *cobra.Command) *cobra.Command {
	result := &cobra.Command{
		Use:   "dump",
		Short: "Dump internal state",
		Long: `Dumps internal state to stdout.

Intended to help developers see exactly what the alert pane would be handed.

The format of the dump does not make any API or compatibility promises,
and may change frequently.
`,
	}

	addCommand(result, newDumpViewCmd())
	addCommand(result, newDumpCliDocsCmd(rootCmd))

	return result
}

type dumpViewCmd struct {
	streams genericclioptions.IOStreams
}

func newDumpViewCmd() *dumpViewCmd {
	return &dumpViewCmd{
		streams: genericclioptions.IOStreams{Out: os.Stdout, ErrOut: os.Stderr, In: os.Stdin},
	}
}

func (c *dumpViewCmd) register() *cobra.Command {
	return &cobra.Command{
		Use:   "view <path/to/snapshot.json>",
		Short: "Dump the view in a snapshot, with alerts filled in",
		Long: `Dumps the view in a snapshot to stdout as JSON.

Every resource's alerts are re-derived from its current state, replacing
whatever alerts the snapshot had recorded.
`,
		Args: cobra.ExactArgs(1),
	}
}

func (c *dumpViewCmd) run(ctx context.Context, args []string) error {
	snapshot, err := snapshots.Load(ctx, args[0])
	if err != nil {
		return errors.Wrap(err, "dump view")
	}

	v := *snapshot.View
	alerts.Populate(v.Resources)
	return snapshots.EncodeViewJSON(c.streams.Out, v)
}

type dumpCliDocsCmd struct {
	rootCmd *cobra.Command
	dir     string
}

func newDumpCliDocsCmd(rootCmd *cobra.Command) *dumpCliDocsCmd {
	return &dumpCliDocsCmd{rootCmd: rootCmd}
}

func (c *dumpCliDocsCmd) register() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cli-docs",
		Short: "Dumps markdown docs of the CLI",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&c.dir, "dir", ".", "The directory to dump to")
	return cmd
}

func (c *dumpCliDocsCmd) filePrepender(path string) string {
	return `---
title: tilt-alerts CLI Reference
layout: docs
---
`
}

func (c *dumpCliDocsCmd) linkHandler(link string) string {
	if strings.HasSuffix(link, ".md") {
		return strings.TrimSuffix(link, ".md") + ".html"
	}
	return link
}

func (c *dumpCliDocsCmd) run(ctx context.Context, args []string) error {
	err := doc.GenMarkdownTreeCustom(c.rootCmd, c.dir, c.filePrepender, c.linkHandler)
	if err != nil {
		return errors.Wrap(err, "generating CLI docs")
	}
	return nil
}
