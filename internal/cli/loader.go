package cli

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Path not found
	ErrCodeBuildFailed = "E003" // CUE build failed
	ErrCodeNoSketch    = "E004" // File has no sketch value
	ErrCodeCompile     = "E005" // Sketch compilation failed
	ErrCodeWriteFailed = "E006" // File write error
	ErrCodeInvalid     = "E101" // Document validation failed
	ErrCodeSolveFailed = "E102" // Solve pipeline failed
	ErrCodeStore       = "E103" // Store operation failed
)

// LoadError represents an error that occurred during sketch loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSketchValue reads a .cue file and returns its top-level "sketch"
// value, ready for compilation.
func LoadSketchValue(path string) (cue.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cue.Value{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("sketch file not found: %s", path)}
		}
		return cue.Value{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return cue.Value{}, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	sketchVal := v.LookupPath(cue.ParsePath("sketch"))
	if !sketchVal.Exists() {
		return cue.Value{}, &LoadError{Code: ErrCodeNoSketch, Message: fmt.Sprintf("%s has no top-level sketch value", path)}
	}
	return sketchVal, nil
}
