package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shellbox-dev/shellbox"
)

func runCmd() *cobra.Command {
	var (
		workspace  string
		workdir    string
		timeout    time.Duration
		token      string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "run [flags] -- <command>",
		Short: "Execute a command inside the sandbox",
		Long: `Executes a shell command confined to the workspace. The command's exit
code becomes shellbox's exit code; timeouts and cancellations exit with
code 1. Press Ctrl-C to cancel a running command.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			if workspace == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("resolve working directory: %w", err)
				}
				workspace = cwd
			}
			if token == "" {
				token = uuid.NewString()
			}

			cfg := shellbox.DefaultConfig()
			cfg.PolicyPath = policyPath
			cfg.Logger = logger
			engine, err := shellbox.NewEngine(cfg)
			if err != nil {
				return err
			}

			// Ctrl-C cancels the command instead of killing shellbox, so
			// the partial output and result still come back.
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				<-sigCh
				engine.Cancel(token)
			}()

			res, err := engine.Run(context.Background(), shellbox.RunCommandArgs{
				WorkspaceRoot: workspace,
				Command:       strings.Join(args, " "),
				Workdir:       workdir,
				TimeoutMS:     timeout.Milliseconds(),
				CancelToken:   token,
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			fmt.Print(res.Stdout)
			fmt.Fprint(os.Stderr, res.Stderr)
			switch {
			case res.TimedOut:
				fmt.Fprintln(os.Stderr, "shellbox: command timed out")
			case res.Cancelled:
				fmt.Fprintln(os.Stderr, "shellbox: command cancelled")
			}
			if res.Truncated {
				fmt.Fprintln(os.Stderr, "shellbox: output truncated")
			}
			if !res.Sandboxed {
				fmt.Fprintln(os.Stderr, "shellbox: ran without sandbox")
			}
			if res.ExitCode != 0 {
				code := res.ExitCode
				if code < 0 {
					code = 1
				}
				os.Exit(code)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", "", "workspace root the command is confined to (default: current directory)")
	cmd.Flags().StringVarP(&workdir, "workdir", "d", "", "working directory, relative to the workspace root")
	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "wall-clock timeout (default 2m, max 10m)")
	cmd.Flags().StringVar(&token, "token", "", "cancel token key (default: random UUID)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full result record as JSON")

	return cmd
}
