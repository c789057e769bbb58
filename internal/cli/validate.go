package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/motif/internal/graphfile"
	"github.com/roach88/motif/internal/motif"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	File string // file with one pattern per line
}

// PatternValidation is the outcome for a single pattern.
type PatternValidation struct {
	Pattern string    `json:"pattern"`
	Valid   bool      `json:"valid"`
	Columns []string  `json:"columns,omitempty"`
	Error   *CLIError `json:"error,omitempty"`
}

// ValidationResult holds the outcome for every pattern checked.
type ValidationResult struct {
	Valid    bool                `json:"valid"`
	Invalid  int                 `json:"invalid"`
	Patterns []PatternValidation `json:"patterns"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [pattern...]",
		Short: "Check patterns without running them",
		Long: `Parse, resolve and compile each pattern and report its error code.

Patterns come from the arguments and from --file, one per line. Blank
lines and lines starting with # are skipped.

Exit codes:
  0 - All patterns valid
  1 - One or more patterns invalid
  2 - Command error (missing file, no patterns)`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "file with one pattern per line")

	return cmd
}

func runValidate(opts *ValidateOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	patterns := append([]string(nil), args...)
	if opts.File != "" {
		fromFile, err := readPatterns(opts.File)
		if err != nil {
			return formatter.Fail(err)
		}
		patterns = append(patterns, fromFile...)
	}
	if len(patterns) == 0 {
		return formatter.Fail(&CommandError{Code: ErrCodeGeneric, Message: "no patterns given"})
	}

	sess, err := newSession(opts.RootOptions, cmd)
	if err != nil {
		return formatter.Fail(err)
	}
	defer sess.close(cmd)

	result := ValidationResult{Valid: true, Patterns: make([]PatternValidation, 0, len(patterns))}
	for _, p := range patterns {
		v := PatternValidation{Pattern: p, Valid: true}
		q, err := sess.finder.Compile(p)
		if err != nil {
			v.Valid = false
			v.Error = &CLIError{Code: motif.ErrorCode(err), Message: err.Error(), Details: errorDetails(err)}
			result.Valid = false
			result.Invalid++
		} else {
			v.Columns = q.Columns()
		}
		formatter.VerboseLog("validated %q: valid=%t", p, v.Valid)
		result.Patterns = append(result.Patterns, v)
	}

	if formatter.Format == "json" {
		return outputValidationJSON(formatter, result)
	}
	return outputValidationText(formatter, result)
}

// readPatterns reads one pattern per line, skipping blanks and # comments.
func readPatterns(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &CommandError{Code: graphfile.ErrCodeNotFound, Message: fmt.Sprintf("pattern file not found: %s", path)}
	}
	if err != nil {
		return nil, &CommandError{Code: graphfile.ErrCodeLoadFailed, Message: fmt.Sprintf("failed to read %s: %v", path, err)}
	}

	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns, nil
}

func outputValidationJSON(formatter *OutputFormatter, result ValidationResult) error {
	if result.Valid {
		return formatter.Success(result)
	}

	first := firstError(result)
	if err := json.NewEncoder(formatter.Writer).Encode(CLIResponse{
		Status: "error",
		Data:   result,
		Error: &CLIError{
			Code:    first.Code,
			Message: fmt.Sprintf("%d of %d patterns invalid", result.Invalid, len(result.Patterns)),
		},
	}); err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", first.Code, first.Message))
}

func outputValidationText(formatter *OutputFormatter, result ValidationResult) error {
	w := formatter.Writer
	for _, p := range result.Patterns {
		if p.Valid {
			fmt.Fprintf(w, "✓ %s\n", p.Pattern)
			if formatter.Verbose {
				fmt.Fprintf(w, "  columns: %s\n", strings.Join(p.Columns, ", "))
			}
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", p.Pattern)
		fmt.Fprintf(w, "  [%s] %s\n", p.Error.Code, p.Error.Message)
	}

	if result.Valid {
		fmt.Fprintln(w, "✓ All patterns valid")
		return nil
	}

	fmt.Fprintf(w, "\n✗ %d of %d patterns invalid\n", result.Invalid, len(result.Patterns))
	first := firstError(result)
	return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", first.Code, first.Message))
}

func firstError(result ValidationResult) *CLIError {
	for _, p := range result.Patterns {
		if p.Error != nil {
			return p.Error
		}
	}
	return &CLIError{Code: ErrCodeGeneric}
}
