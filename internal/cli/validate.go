package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planarcad/planar/internal/compiler"
	"github.com/planarcad/planar/internal/sketch"
)

// ValidationResult holds the full validation report for a sketch.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <sketch.cue>",
		Short: "Validate a sketch without solving",
		Long: `Validate a CUE sketch document without running the solver.

Reports every structural problem found: unknown kinds and constraint
types, missing dimension values, and refs that name points, edges, or
circles the target element does not own.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	v, err := LoadSketchValue(path)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return outputCommandError(formatter, loadErr.Code, loadErr.Message)
		}
		return outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}

	// Parse without validating so the report covers everything, not just
	// the first problem.
	doc, err := compiler.ParseSketch(v)
	if err != nil {
		return outputCommandError(formatter, ErrCodeCompile, err.Error())
	}

	formatter.VerboseLog("Validating sketch %q: %d element(s), %d constraint(s)",
		doc.Name, len(doc.Elements), len(doc.Constraints))

	result := ValidationResult{Valid: true}
	for _, verr := range sketch.Validate(doc) {
		result.Valid = false
		result.Errors = append(result.Errors, verr.Error())
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
		if !result.Valid {
			return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(result.Errors)))
		}
		return nil
	}

	if result.Valid {
		fmt.Fprintf(formatter.Writer, "✓ %q is valid\n", doc.Name)
		return nil
	}

	fmt.Fprintf(formatter.Writer, "✗ %q has %d problem(s):\n", doc.Name, len(result.Errors))
	for _, msg := range result.Errors {
		fmt.Fprintf(formatter.Writer, "  - %s\n", msg)
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(result.Errors)))
}
