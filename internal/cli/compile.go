package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/planarcad/planar/internal/compiler"
	"github.com/planarcad/planar/internal/sketch"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompileData is the JSON payload of a successful compile.
type CompileData struct {
	Name        string `json:"name"`
	Elements    int    `json:"elements"`
	Constraints int    `json:"constraints"`
	DocHash     string `json:"doc_hash"`
	Canonical   string `json:"canonical"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <sketch.cue>",
		Short: "Compile a CUE sketch to canonical JSON",
		Long: `Compile a CUE sketch document to its canonical JSON form.

The compiler parses the sketch, checks every element kind, constraint
type, and ref, and prints the canonical document used for hashing.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
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

	formatter.VerboseLog("Compiled sketch %q: %d element(s), %d constraint(s)",
		doc.Name, len(doc.Elements), len(doc.Constraints))

	canonical, err := sketch.CanonicalJSON(doc)
	if err != nil {
		return outputCommandError(formatter, ErrCodeCompile, fmt.Sprintf("canonical form: %v", err))
	}
	hash, err := sketch.DocumentHash(doc)
	if err != nil {
		return outputCommandError(formatter, ErrCodeCompile, fmt.Sprintf("document hash: %v", err))
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, canonical, 0o644); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err))
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(CompileData{
			Name:        doc.Name,
			Elements:    len(doc.Elements),
			Constraints: len(doc.Constraints),
			DocHash:     hash,
			Canonical:   string(canonical),
		})
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %q: %d element(s), %d constraint(s)\n",
		doc.Name, len(doc.Elements), len(doc.Constraints))
	fmt.Fprintf(formatter.Writer, "doc hash: %s\n", hash)
	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "Wrote canonical JSON to %s\n", opts.Output)
	} else {
		fmt.Fprintln(formatter.Writer, string(canonical))
	}
	return nil
}

// compileSketchFile loads and compiles a sketch file, reporting failures
// through the formatter.
func compileSketchFile(path string, formatter *OutputFormatter) (*sketch.Document, error) {
	v, err := LoadSketchValue(path)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			return nil, outputCommandError(formatter, loadErr.Code, loadErr.Message)
		}
		return nil, outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}

	doc, err := compiler.CompileSketch(v)
	if err != nil {
		return nil, outputCommandError(formatter, ErrCodeCompile, err.Error())
	}
	return doc, nil
}

// outputCommandError reports an error and returns the command-level exit code.
func outputCommandError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}
