package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planarcad/planar/internal/engine"
	"github.com/planarcad/planar/internal/sketch"
	"github.com/planarcad/planar/internal/solver"
	"github.com/planarcad/planar/internal/store"
)

// SolveOptions holds flags for the solve command.
type SolveOptions struct {
	*RootOptions
	DBPath string // optional store to record the solve in
	Output string // output file path for the solved document
}

// SolveData is the JSON payload of a successful solve.
type SolveData struct {
	Name       string  `json:"name"`
	Iterations int     `json:"iterations"`
	Residual   float64 `json:"residual"`
	Converged  bool    `json:"converged"`
	Diverged   bool    `json:"diverged,omitempty"`
	DocHash    string  `json:"doc_hash"`
	Document   string  `json:"document"`
}

// NewSolveCommand creates the solve command.
func NewSolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "solve <sketch.cue>",
		Short: "Solve a sketch's constraints",
		Long: `Compile a CUE sketch, run the constraint solver, and print the
solved document with convergence statistics.

With --db the sketch and its solve record are persisted to a SQLite
store, creating the sketch row if needed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "SQLite store to record the solve in")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the solved document to a file")

	return cmd
}

func runSolve(opts *SolveOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	doc, err := compileSketchFile(path, formatter)
	if err != nil {
		return err
	}

	formatter.VerboseLog("Solving %q: %d element(s), %d constraint(s)",
		doc.Name, len(doc.Elements), len(doc.Constraints))

	solved, res, err := engine.SolveDocument(doc, solver.DefaultParams())
	if err != nil {
		_ = formatter.Error(ErrCodeSolveFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "solve failed", err)
	}

	hash, err := sketch.DocumentHash(solved)
	if err != nil {
		return outputCommandError(formatter, ErrCodeSolveFailed, fmt.Sprintf("document hash: %v", err))
	}

	if opts.DBPath != "" {
		if err := recordSolve(opts.DBPath, cmd, solved, res, hash); err != nil {
			return outputCommandError(formatter, ErrCodeStore, err.Error())
		}
		formatter.VerboseLog("Recorded solve in %s", opts.DBPath)
	}

	canonical, err := sketch.CanonicalJSON(solved)
	if err != nil {
		return outputCommandError(formatter, ErrCodeSolveFailed, fmt.Sprintf("canonical form: %v", err))
	}
	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, canonical, 0o644); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(SolveData{
			Name:       solved.Name,
			Iterations: res.Iterations,
			Residual:   res.Residual,
			Converged:  res.Converged,
			Diverged:   res.Diverged,
			DocHash:    hash,
			Document:   string(canonical),
		})
	}

	status := "✓ converged"
	switch {
	case res.Diverged:
		status = "✗ diverged"
	case !res.Converged:
		status = "✗ did not converge"
	}
	fmt.Fprintf(formatter.Writer, "%s after %d iteration(s), residual %.6g\n",
		status, res.Iterations, res.Residual)
	fmt.Fprintf(formatter.Writer, "doc hash: %s\n", hash)
	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "Wrote solved document to %s\n", opts.Output)
	} else {
		fmt.Fprintln(formatter.Writer, string(canonical))
	}

	if !res.Converged {
		return NewExitError(ExitFailure, "solve did not converge")
	}
	return nil
}

// recordSolve persists the solved document and its solve record, using
// the sketch name as the store id.
func recordSolve(dbPath string, cmd *cobra.Command, solved *sketch.Document, res solver.Result, hash string) error {
	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	id := solved.Name

	if err := s.CreateSketch(ctx, id, solved.Name); err != nil {
		return err
	}
	meta, err := s.GetSketch(ctx, id)
	if err != nil {
		return err
	}
	rev := meta.Revision + 1
	if err := s.SaveDocument(ctx, id, solved, rev, hash); err != nil {
		return err
	}
	return s.RecordSolve(ctx, store.SolveRecord{
		SketchID:   id,
		Revision:   rev,
		Iterations: res.Iterations,
		Residual:   res.Residual,
		Converged:  res.Converged,
		Diverged:   res.Diverged,
		DocHash:    hash,
	})
}
