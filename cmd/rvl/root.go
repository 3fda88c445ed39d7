package main

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/cmdrvl/rvl/internal/orchestrator"
	"github.com/cmdrvl/rvl/internal/output"
	"github.com/cmdrvl/rvl/internal/refusal"
)

var (
	rootCmd = &cobra.Command{
		Use:           "rvl <old.csv> <new.csv>",
		Short:         "rvl compares two CSV snapshots and renders a real-change verdict",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCompare,
	}

	keyValue               keyFlag
	delimiterValue          delimiterFlag
	threshold               float64
	tolerance               float64
	jsonOutput              bool
	allowSingleColumnOutput bool
)

// Execute runs the rvl CLI. A non-nil return is always a process error
// (bad flags, unreadable file); main.go maps it to exit 2. A verdict or
// domain refusal exits the process directly from runCompare, since cobra's
// Execute only models a binary success/failure, not rvl's three-way exit
// code.
func Execute() error {
	rootCmd.Flags().Var(&keyValue, "key", "join key column: plain|u8:<utf8>|hex:<hex>")
	rootCmd.Flags().Var(&delimiterValue, "delimiter", "forced delimiter: comma|tab|semicolon|pipe|caret|0xNN|<byte>")
	rootCmd.Flags().Float64Var(&threshold, "threshold", 0.95, "minimum top-K coverage fraction, 0 < x <= 1")
	rootCmd.Flags().Float64Var(&tolerance, "tolerance", 1e-9, "per-cell magnitude below which a delta is ignored, x >= 0")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the rvl.v0 JSON object instead of human text")
	rootCmd.Flags().BoolVar(&allowSingleColumnOutput, "allow-single-column", false, "accept a genuine one-column header instead of refusing E_DIALECT")
	return rootCmd.Execute()
}

func runCompare(cmd *cobra.Command, args []string) error {
	if threshold <= 0 || threshold > 1 {
		return fmt.Errorf("--threshold must satisfy 0 < x <= 1, got %v", threshold)
	}
	if tolerance < 0 || math.IsNaN(tolerance) || math.IsInf(tolerance, 0) {
		return fmt.Errorf("--tolerance must be finite and >= 0, got %v", tolerance)
	}

	pipelineArgs := orchestrator.Args{
		OldPath:           args[0],
		NewPath:           args[1],
		Threshold:         threshold,
		Tolerance:         tolerance,
		AllowSingleColumn: allowSingleColumnOutput,
	}
	if keyValue.set {
		pipelineArgs.KeyColumn = keyValue.value
	}
	if delimiterValue.set {
		d := delimiterValue.value
		pipelineArgs.Delimiter = &d
	}

	result, err := orchestrator.Run(pipelineArgs)
	if err != nil {
		if jsonOutput {
			writeProcessErrorJSON(args[0], args[1], err)
		}
		return err
	}

	if jsonOutput {
		if werr := output.WriteJSON(os.Stdout, result); werr != nil {
			return werr
		}
	} else {
		w := os.Stdout
		if result.Outcome == output.Refusal {
			w = os.Stderr
		}
		if werr := output.WriteHuman(w, result); werr != nil {
			return werr
		}
	}

	os.Exit(result.ExitCode())
	return nil
}

// writeProcessErrorJSON emits a best-effort minimal JSON refusal for a
// process error (per the CLI's --json contract, §7), naming whichever
// side's path appears in the error text.
func writeProcessErrorJSON(oldPath, newPath string, err error) {
	side := refusal.Old
	if len(newPath) > 0 && len(oldPath) > 0 && errMentionsNew(err, newPath, oldPath) {
		side = refusal.New
	}
	detail := refusal.Detail{
		Code: refusal.Io,
		Kind: refusal.Kind{IoFile: side, IoError: err.Error()},
		Next: "fix the reported I/O problem and rerun",
	}
	result := output.Result{
		OldPath:       oldPath,
		NewPath:       newPath,
		Outcome:       output.Refusal,
		RefusalDetail: &detail,
	}
	_ = output.WriteJSON(os.Stdout, result)
}

func errMentionsNew(err error, newPath, oldPath string) bool {
	msg := err.Error()
	return len(msg) >= len(newPath) && contains(msg, newPath) && !contains(msg, oldPath)
}

func contains(haystack, needle string) bool {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}
