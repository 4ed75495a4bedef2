package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/cli-runtime/pkg/genericclioptions"
)

type versionCmd struct {
	streams genericclioptions.IOStreams
}

var _ tiltCmd = &versionCmd{}

func newVersionCmd() *versionCmd {
	return &versionCmd{
		streams: genericclioptions.IOStreams{Out: os.Stdout, ErrOut: os.Stderr, In: os.Stdin},
	}
}

func (c *versionCmd) register() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Current tilt-alerts version",
		Args:  cobra.NoArgs,
	}
}

func (c *versionCmd) run(ctx context.Context, args []string) error {
	_, err := fmt.Fprintln(c.streams.Out, buildInfo.String())
	return err
}
