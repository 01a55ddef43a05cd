package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fsplan/fsplan/pkg/fsplan"
	"github.com/fsplan/fsplan/pkg/fsplan/execution"
	"github.com/fsplan/fsplan/pkg/fsplan/filesystem"
)

func newApplyCommand() *cobra.Command {
	var (
		root            string
		dryRun          bool
		validateFirst   bool
		bestEffort      bool
		transactional   bool
		verifyChecksums bool
		logLevel        string
	)

	cmd := &cobra.Command{
		Use:   "apply [plan-file]",
		Short: "Apply an operation plan",
		Long:  "Apply the operations from a YAML plan file under the selected execution policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planFile := args[0]

			data, err := os.ReadFile(planFile)
			if err != nil {
				return fmt.Errorf("failed to read plan file %s: %w", planFile, err)
			}
			plan, err := fsplan.LoadPlan(data)
			if err != nil {
				return err
			}
			queue, err := plan.Queue()
			if err != nil {
				return err
			}

			level, err := fsplan.LogLevelFromString(logLevel)
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", logLevel, err)
			}

			if root == "" {
				root = "."
			}
			fsys := filesystem.NewOSFileSystem(root)

			processor := execution.NewWithLogger(execution.Options{
				ValidateFirst:   validateFirst,
				BestEffort:      bestEffort,
				Transactional:   transactional,
				VerifyChecksums: verifyChecksums,
				DryRun:          dryRun,
			}, fsplan.NewLogger(os.Stderr, level))

			result := processor.Process(context.Background(), queue, fsys)

			if dryRun {
				fmt.Printf("DRY RUN: plan %q validation summary:\n", plan.Description)
			} else {
				fmt.Printf("Plan %q execution summary:\n", plan.Description)
			}
			for _, opResult := range result.Operations {
				status := "✓"
				if opResult.Status != execution.StatusCompleted && opResult.Status != execution.StatusRolledBack {
					status = "✗"
				}
				fmt.Printf("  %s %d. %s (%s)\n", status, opResult.Index+1, opResult.Op, opResult.Status)
				if opResult.Err != nil {
					fmt.Printf("      %v\n", opResult.Err)
				}
			}

			if result.Success {
				fmt.Printf("\n✓ Plan applied successfully in %v (%d executed)\n",
					result.Duration, result.ExecutedCount)
				return nil
			}
			fmt.Printf("\n✗ Plan failed in %v (%d executed, %d rolled back)\n",
				result.Duration, result.ExecutedCount, result.RollbackCount)
			for _, e := range result.Errors {
				fmt.Printf("  - [%s/%s] %v\n", e.Phase, e.Severity, e.Err)
			}
			return fmt.Errorf("plan application failed")
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Root directory for filesystem operations (default: current directory)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the plan without making changes")
	cmd.Flags().BoolVar(&validateFirst, "validate-first", false, "Validate every operation before executing any")
	cmd.Flags().BoolVar(&bestEffort, "best-effort", false, "Skip failed operations and continue")
	cmd.Flags().BoolVar(&transactional, "transactional", false, "Roll back executed operations when one fails")
	cmd.Flags().BoolVar(&verifyChecksums, "verify-checksums", false, "Re-verify output checksums after each operation")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")

	return cmd
}

func newValidateCommand() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "validate [plan-file]",
		Short: "Validate an operation plan",
		Long:  "Parse a plan file, resolve step dependencies, and validate every operation without executing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			planFile := args[0]

			data, err := os.ReadFile(planFile)
			if err != nil {
				return fmt.Errorf("failed to read plan file %s: %w", planFile, err)
			}
			plan, err := fsplan.LoadPlan(data)
			if err != nil {
				return err
			}
			queue, err := plan.Queue()
			if err != nil {
				return fmt.Errorf("plan validation failed: %w", err)
			}

			if root == "" {
				root = "."
			}
			fsys := filesystem.NewOSFileSystem(root)

			processor := execution.New(execution.Options{DryRun: true})
			result := processor.Process(context.Background(), queue, fsys)

			fmt.Printf("Plan: %s (%d operations)\n", plan.Description, queue.Size())
			for _, op := range queue.Operations() {
				fmt.Printf("  - %s\n", op.Describe())
			}
			if !result.Success {
				for _, e := range result.Errors {
					fmt.Printf("✗ %v\n", e.Err)
				}
				return fmt.Errorf("plan validation failed")
			}
			fmt.Printf("✓ Plan is valid\n")
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Root directory for filesystem operations (default: current directory)")

	return cmd
}
