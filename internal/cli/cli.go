package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tilt-dev/tilt-alerts/pkg/logger"
	"github.com/tilt-dev/tilt-alerts/pkg/model"
)

var debug bool
var verbose bool

func logLevel() logger.Level {
	if debug {
		return logger.DebugLvl
	} else if verbose {
		return logger.VerboseLvl
	} else {
		return logger.InfoLvl
	}
}

var buildInfo = model.BuildInfo{Version: "dev"}

func SetBuildInfo(info model.BuildInfo) {
	if info.Version == "" {
		info.Version = "dev"
	}
	buildInfo = info
}

func Cmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tilt-alerts",
		Short: "tilt-alerts shows what's wrong with your resources",
		Long: `Reads a snapshot of your resources and lists their alerts:
crashing pods, crash rebuilds, build errors and build warnings.`,
		SilenceUsage: true,
	}

	addCommand(rootCmd, newAlertsCmd())
	addCommand(rootCmd, newVersionCmd())
	rootCmd.AddCommand(newDumpCmd(rootCmd))

	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	return rootCmd
}

func Execute() {
	if err := Cmd().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type tiltCmd interface {
	register() *cobra.Command
	run(ctx context.Context, args []string) error
}

func addCommand(parent *cobra.Command, child tiltCmd) {
	cobraChild := child.register()
	cobraChild.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := preCommand(cmd.Context())
		return child.run(ctx, args)
	}

	parent.AddCommand(cobraChild)
}

func preCommand(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	l := logger.NewLogger(logLevel(), os.Stderr)
	return logger.WithLogger(ctx, l)
}
