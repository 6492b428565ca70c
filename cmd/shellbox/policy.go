package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shellbox-dev/shellbox/sandbox"
)

func policyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect and manage the sandbox policy",
	}
	cmd.AddCommand(policyShowCmd(), policyInitCmd(), policyPathCmd())
	return cmd
}

// resolvePolicyPath honors the global --policy flag.
func resolvePolicyPath() string {
	if policyPath != "" {
		return policyPath
	}
	return sandbox.DefaultPath()
}

func policyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective policy",
		Long:  "Prints the policy that would apply to the next run: the policy file if it\nparses, otherwise the built-in defaults.",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := sandbox.LoadFrom(resolvePolicyPath())
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	}
}

func policyInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default policy to the policy file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := resolvePolicyPath()
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("policy file already exists at %s (use --force to overwrite)", path)
				}
			}
			if err := sandbox.SaveTo(path, sandbox.DefaultPolicy()); err != nil {
				return err
			}
			fmt.Printf("wrote default policy to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing policy file")
	return cmd
}

func policyPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the policy file location",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(resolvePolicyPath())
		},
	}
}
