package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/stricttuple"
	"github.com/roach88/stricttuple/internal/compiler"
	"github.com/roach88/stricttuple/internal/ir"
	"github.com/roach88/stricttuple/render"
)

// CodeUnknownRecord marks an entry naming a record type the schema does not declare.
const CodeUnknownRecord = "UNKNOWN_RECORD"

// watchDebounce is how long file events must settle before a re-check.
const watchDebounce = 100 * time.Millisecond

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	Table bool // render accepted records as tables
	Watch bool // re-check when the schema or records files change
}

// CheckResult summarizes one check run.
type CheckResult struct {
	Accepted int           `json:"accepted"`
	Rejected int           `json:"rejected"`
	Entries  []EntryResult `json:"entries"`
}

// EntryResult is the outcome for one records-file entry.
type EntryResult struct {
	File   string    `json:"file"`
	Index  int       `json:"index"`
	Record string    `json:"record"`
	Valid  bool      `json:"valid"`
	Value  string    `json:"value,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	checkOpts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check [schema-file] <records-file>...",
		Short: "Build records from data files and report rejections",
		Long: `Build every {record, values} entry of the records files against the record
types of a schema file. Accepted records are printed; each rejection is reported
with the failing field and rule. Exits 1 if any entry is rejected.

When a schema is configured (schema key, STRICTTUPLE_SCHEMA), every argument is a
records file.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaPath, recordPaths := rootOpts.Schema, args
			if schemaPath == "" {
				if len(args) < 2 {
					return NewExitError(ExitCommandError, "check needs a schema file and at least one records file")
				}
				schemaPath, recordPaths = args[0], args[1:]
			}
			return runCheck(cmd.Context(), rootOpts, checkOpts, schemaPath, recordPaths, cmd)
		},
	}

	cmd.Flags().BoolVarP(&checkOpts.Table, "table", "t", false, "render accepted records as tables")
	cmd.Flags().BoolVarP(&checkOpts.Watch, "watch", "w", false, "re-check when input files change")

	return cmd
}

func runCheck(ctx context.Context, opts *RootOptions, checkOpts *CheckOptions, schemaPath string, recordPaths []string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := NewOutputFormatter(opts.Format, cmd.OutOrStdout())

	err := checkOnce(ctx, opts, checkOpts, formatter, schemaPath, recordPaths)
	if !checkOpts.Watch {
		return err
	}

	log := opts.logger()
	w, werr := newFileWatcher(append([]string{schemaPath}, recordPaths...))
	if werr != nil {
		return WrapExitError(ExitCommandError, "watching input files", werr)
	}
	defer func() { _ = w.Close() }()

	log.Info("watching for changes", "files", len(recordPaths)+1)
	return w.run(ctx, watchDebounce, log, func() {
		fmt.Fprintln(formatter.Writer)
		_ = checkOnce(ctx, opts, checkOpts, formatter, schemaPath, recordPaths)
	})
}

// checkOnce loads the schema and records and reports every entry.
func checkOnce(ctx context.Context, opts *RootOptions, checkOpts *CheckOptions, formatter *OutputFormatter, schemaPath string, recordPaths []string) error {
	catalog, err := loadCatalog(opts, formatter, schemaPath, checkOpts.Table)
	if err != nil {
		return err
	}

	files, err := LoadRecordFiles(ctx, recordPaths)
	if err != nil {
		loadErr := asLoadError(err)
		return commandError(formatter, loadErr.Code, loadErr.detail())
	}

	result := CheckResult{Entries: []EntryResult{}}
	for i, entries := range files {
		for j, entry := range entries {
			er := checkEntry(catalog, recordPaths[i], j, entry)
			if er.Valid {
				result.Accepted++
			} else {
				result.Rejected++
			}
			result.Entries = append(result.Entries, er)
		}
	}
	opts.logger().Debug("check finished", "accepted", result.Accepted, "rejected", result.Rejected)

	return outputCheckResult(formatter, result)
}

func checkEntry(catalog *compiler.Catalog, file string, index int, entry ir.RecordEntry) EntryResult {
	er := EntryResult{File: file, Index: index, Record: entry.Record}

	rt, ok := catalog.Lookup(entry.Record)
	if !ok {
		er.Error = &CLIError{
			Code:    CodeUnknownRecord,
			Message: fmt.Sprintf("schema declares no record %q", entry.Record),
		}
		return er
	}

	rec, err := rt.New(stricttuple.Values(entry.Values))
	if err != nil {
		er.Error = rejection(err)
		return er
	}

	er.Valid = true
	er.Value = rec.String()
	return er
}

// rejection converts a construction error into its reported form.
func rejection(err error) *CLIError {
	var se *stricttuple.Error
	if !errors.As(err, &se) {
		return &CLIError{Code: ErrCodeGeneric, Message: err.Error()}
	}

	details := map[string]any{}
	if se.Field != "" {
		details["field"] = se.Field
	}
	if se.Expected != "" {
		details["expected"] = se.Expected
	}
	if len(se.Missing) > 0 {
		details["missing"] = se.Missing
	}
	if len(se.Extra) > 0 {
		details["extra"] = se.Extra
	}
	return &CLIError{Code: string(se.Code), Message: se.Error(), Details: details}
}

func outputCheckResult(formatter *OutputFormatter, result CheckResult) error {
	var failed error
	if result.Rejected > 0 {
		failed = reported(NewExitError(ExitFailure, fmt.Sprintf("%d record(s) rejected", result.Rejected)))
	}

	if formatter.Format == "json" {
		resp := CLIResponse{Status: "ok", Data: result}
		if failed != nil {
			resp.Status = "error"
			resp.Error = &CLIError{Code: "REJECTED", Message: failed.Error()}
		}
		if err := formatter.JSON(resp); err != nil {
			return err
		}
		return failed
	}

	w := formatter.Writer
	for _, er := range result.Entries {
		where := fmt.Sprintf("%s[%d]", er.File, er.Index)
		if er.Valid {
			if strings.Contains(er.Value, "\n") {
				fmt.Fprintf(w, "%s %s %s\n%s\n", formatter.Good("✓"), where, er.Record, er.Value)
			} else {
				fmt.Fprintf(w, "%s %s %s\n", formatter.Good("✓"), where, er.Value)
			}
			continue
		}
		fmt.Fprintf(w, "%s %s %s [%s]\n%s\n", formatter.Bad("✗"), where, er.Record, er.Error.Code, indent(er.Error.Message))
	}
	fmt.Fprintf(w, "\n%d accepted, %d rejected\n", result.Accepted, result.Rejected)

	return failed
}

func indent(s string) string {
	return "    " + strings.ReplaceAll(s, "\n", "\n    ")
}

// schemaOptions configures record types built for a command.
func schemaOptions(opts *RootOptions, table bool) []stricttuple.Option {
	o := []stricttuple.Option{stricttuple.WithLogger(opts.logger())}
	if table {
		o = append(o, stricttuple.WithRenderer(render.NewTable(opts.tableStyle())))
	}
	return o
}
