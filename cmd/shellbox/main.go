package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	policyPath string // overridable via --policy flag
)

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	root := &cobra.Command{
		Use:     "shellbox",
		Short:   "Run shell commands inside an OS sandbox",
		Long:    "shellbox executes shell commands confined to a workspace, wrapped in the\nplatform sandbox (Seatbelt on macOS, bubblewrap on Linux), with timeouts\nand cancellation.",
		Version: version,
	}

	root.PersistentFlags().StringVar(&policyPath, "policy", "", "path to sandbox policy JSON (default: ~/.shellbox/sandbox-policy.json)")

	root.AddCommand(runCmd())
	root.AddCommand(policyCmd())
	root.AddCommand(doctorCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
