package ir

// SchemaFile is the compiled content of one schema file.
type SchemaFile struct {
	Path    string      `json:"path,omitempty"`
	Records []RecordDef `json:"records"`
}

// Lookup returns the record definition with the given name.
func (s *SchemaFile) Lookup(name string) (*RecordDef, bool) {
	for i := range s.Records {
		if s.Records[i].Name == name {
			return &s.Records[i], true
		}
	}
	return nil, false
}

// RecordDef is one record declaration.
type RecordDef struct {
	Name   string     `json:"name"`
	Typed  bool       `json:"typed,omitempty"` // type-checked variant: one type name per field
	Fields []FieldDef `json:"fields"`
	Line   int        `json:"line,omitempty"`
}

// FieldDef is one field with its rules in evaluation order.
type FieldDef struct {
	Name  string    `json:"name"`
	Rules []RuleRef `json:"rules"`
	Line  int       `json:"line,omitempty"`
}

// RuleRef names a type or a builtin rule, with arguments for parameterized rules.
// "int" and {in_range: [0, 15]} become RuleRef{Name: "int"} and
// RuleRef{Name: "in_range", Args: []any{0, 15}}.
type RuleRef struct {
	Name string `json:"name"`
	Args []any  `json:"args,omitempty"`
}

// RecordEntry is one record instance to construct, as read from a records file.
type RecordEntry struct {
	Record string         `json:"record" yaml:"record"`
	Values map[string]any `json:"values" yaml:"values"`
}
