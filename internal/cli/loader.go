package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/roach88/stricttuple/internal/compiler"
	"github.com/roach88/stricttuple/internal/ir"
)

// LoadError represents an error that occurred while reading an input file.
type LoadError struct {
	Code    string
	Message string
	Line    int
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", e.Code, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// detail is the message with its line, without the code.
func (e *LoadError) detail() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// LoadSchema reads and compiles a schema file, choosing the parser by extension:
// .cue for CUE, .yaml/.yml/.json for YAML.
func LoadSchema(path string) (*ir.SchemaFile, error) {
	if path == "" {
		return nil, &LoadError{Code: ErrCodeNoSchema, Message: "no schema file given (pass one or set \"schema\" in stricttuple.yaml)"}
	}

	data, err := readInput(path)
	if err != nil {
		return nil, err
	}

	var sf *ir.SchemaFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		sf, err = compiler.CompileCUE(path, data)
	case ".yaml", ".yml", ".json":
		sf, err = compiler.ParseYAML(path, data)
	default:
		return nil, &LoadError{
			Code:    ErrCodeUnsupported,
			Message: fmt.Sprintf("unsupported schema file %s: want .cue, .yaml, .yml or .json", path),
		}
	}
	if err != nil {
		return nil, convertCompileError(err)
	}
	return sf, nil
}

// LoadRecords reads a records file: a YAML or JSON sequence of {record, values} entries.
// Values are normalized so that integers decode as int.
func LoadRecords(path string) ([]ir.RecordEntry, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}

	var entries []ir.RecordEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("%s: %v", path, err)}
	}

	for i := range entries {
		if entries[i].Record == "" {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("%s: entry %d has no record name", path, i)}
		}
		values, err := ir.NormalizeValues(entries[i].Values)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("%s: entry %d: %v", path, i, err)}
		}
		entries[i].Values = values
	}
	return entries, nil
}

// LoadRecordFiles reads several records files concurrently. The result is indexed
// like paths; the first failure cancels the rest.
func LoadRecordFiles(ctx context.Context, paths []string) ([][]ir.RecordEntry, error) {
	results := make([][]ir.RecordEntry, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entries, err := LoadRecords(path)
			if err != nil {
				return err
			}
			results[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func readInput(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("file not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("reading %s: %v", path, err)}
	}
	return data, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		line := compileErr.Line
		if compileErr.Pos.IsValid() {
			line = compileErr.Pos.Line()
		}
		return &LoadError{
			Code:    ErrCodeLoadFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Line:    line,
		}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
}

// asLoadError normalizes any loader failure.
func asLoadError(err error) *LoadError {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr
	}
	return &LoadError{Code: ErrCodeGeneric, Message: err.Error()}
}
