package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/stricttuple/internal/compiler"
	"github.com/roach88/stricttuple/internal/ir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Records []string                   `json:"records,omitempty"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [schema-file]",
		Short: "Check a schema file for definition problems",
		Long: `Compile a CUE or YAML schema file and report every definition problem:
invalid names, duplicate records or fields, unknown rules and bad rule arguments.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, rootOpts.schemaArg(args), cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, schemaPath string, cmd *cobra.Command) error {
	formatter := NewOutputFormatter(opts.Format, cmd.OutOrStdout())
	log := opts.logger()

	sf, err := LoadSchema(schemaPath)
	if err != nil {
		loadErr := asLoadError(err)
		if loadErr.Code == ErrCodeLoadFailed {
			// Syntax and shape problems are definition problems, not command errors.
			return outputValidationErrors(formatter, []compiler.ValidationError{{
				Field:   "schema",
				Message: loadErr.Message,
				Code:    loadErr.Code,
				Line:    loadErr.Line,
			}})
		}
		return commandError(formatter, loadErr.Code, loadErr.Message)
	}
	log.Debug("schema compiled", "file", schemaPath, "records", len(sf.Records))

	catalog, errs := compiler.BuildCatalog(sf, schemaOptions(opts, false)...)
	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	return outputValidateSuccess(formatter, recordNames(sf), catalog.Len())
}

func recordNames(sf *ir.SchemaFile) []string {
	names := make([]string, len(sf.Records))
	for i, r := range sf.Records {
		names[i] = r.Name
	}
	return names
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, names []string, n int) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Records: names})
	}

	fmt.Fprintf(formatter.Writer, "%s %d record type(s) valid\n", formatter.Good("✓"), n)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		if err := formatter.JSON(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error:  &CLIError{Code: errs[0].Code, Message: errs[0].Message},
		}); err != nil {
			return err
		}
		return reported(NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs))))
	}

	fmt.Fprintf(formatter.Writer, "%s Validation failed\n\n", formatter.Bad("✗"))
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n\n", err.Code, err.Field, err.Message)
	}

	return reported(NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs))))
}
