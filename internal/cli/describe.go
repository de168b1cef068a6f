package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/stricttuple/internal/compiler"
	"github.com/roach88/stricttuple/render"
)

// RecordDescription is the JSON form of one described record type.
type RecordDescription struct {
	Name   string             `json:"name"`
	Typed  bool               `json:"typed"`
	Fields []FieldDescription `json:"fields"`
}

// FieldDescription lists a field's rules in evaluation order.
type FieldDescription struct {
	Name  string   `json:"name"`
	Rules []string `json:"rules"`
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe [schema-file]",
		Short: "List record types, fields and rules",
		Long: `Build every record type in a schema file and print its fields with the
rule descriptions that a violation would report, in evaluation order.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(rootOpts, rootOpts.schemaArg(args), cmd)
		},
	}

	return cmd
}

func runDescribe(opts *RootOptions, schemaPath string, cmd *cobra.Command) error {
	formatter := NewOutputFormatter(opts.Format, cmd.OutOrStdout())

	catalog, err := loadCatalog(opts, formatter, schemaPath, false)
	if err != nil {
		return err
	}

	descs := describeCatalog(catalog)
	if formatter.Format == "json" {
		return formatter.Success(descs)
	}

	var rows [][]string
	for _, d := range descs {
		kind := "rules"
		if d.Typed {
			kind = "typed"
		}
		if len(d.Fields) == 0 {
			rows = append(rows, []string{d.Name, kind, "", ""})
			continue
		}
		for _, f := range d.Fields {
			rows = append(rows, []string{d.Name, kind, f.Name, strings.Join(f.Rules, "; ")})
		}
	}
	fmt.Fprintln(formatter.Writer, render.Grid(opts.tableStyle(), []string{"record", "kind", "field", "rules"}, rows))
	return nil
}

func describeCatalog(c *compiler.Catalog) []RecordDescription {
	descs := make([]RecordDescription, 0, c.Len())
	for _, rt := range c.Types() {
		d := RecordDescription{Name: rt.Name(), Typed: rt.Typed(), Fields: []FieldDescription{}}
		for _, f := range rt.Fields() {
			rules, _ := rt.Rules(f)
			d.Fields = append(d.Fields, FieldDescription{Name: f, Rules: rules})
		}
		descs = append(descs, d)
	}
	return descs
}

// loadCatalog loads and builds a schema file, reporting failures through formatter.
func loadCatalog(opts *RootOptions, formatter *OutputFormatter, schemaPath string, table bool) (*compiler.Catalog, error) {
	sf, err := LoadSchema(schemaPath)
	if err != nil {
		loadErr := asLoadError(err)
		return nil, commandError(formatter, loadErr.Code, loadErr.detail())
	}

	catalog, errs := compiler.BuildCatalog(sf, schemaOptions(opts, table)...)
	if len(errs) > 0 {
		return nil, outputValidationErrors(formatter, errs)
	}
	opts.logger().Debug("schema loaded", "file", schemaPath, "records", catalog.Len())
	return catalog, nil
}
