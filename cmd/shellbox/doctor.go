package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shellbox-dev/shellbox/platform"
	"github.com/shellbox-dev/shellbox/sandbox"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check sandbox support on this system",
		Long:  "Probes the platform sandbox backend and the policy file, and reports\nwhether commands will actually run sandboxed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			backend := platform.Detect()
			fmt.Printf("backend: %s\n", backend.Name())

			check := backend.CheckDependencies()
			for _, e := range check.Errors {
				printFail(e)
			}
			for _, w := range check.Warnings {
				printWarn(w)
			}
			if check.OK() {
				printPass("sandbox wrapper available")
			}

			path := resolvePolicyPath()
			if _, err := os.Stat(path); err != nil {
				printWarn(fmt.Sprintf("no policy file at %s, using defaults", path))
			} else {
				printPass(fmt.Sprintf("policy file: %s", path))
			}

			p := sandbox.LoadFrom(path)
			if !p.Enabled {
				printWarn("sandboxing disabled by policy")
			}
			if p.AllowNetwork {
				printWarn("policy allows network access")
			}

			if !check.OK() {
				fmt.Println("\ncommands will run WITHOUT a sandbox")
			}
			return nil
		},
	}
}

func printPass(msg string) { fmt.Printf("  ok    %s\n", msg) }
func printWarn(msg string) { fmt.Printf("  warn  %s\n", msg) }
func printFail(msg string) { fmt.Printf("  FAIL  %s\n", msg) }
