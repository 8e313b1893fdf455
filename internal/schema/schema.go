// Package schema holds the versioned column layouts accepted for payroll workbooks
// and the header-name resolution used by every stage of the intake pipeline.
package schema

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type DataType string

const (
	TypeText   DataType = "text"
	TypeNumber DataType = "number"
	TypeDate   DataType = "date"
)

// Field is the semantic identifier a column maps to, independent of its header text.
type Field string

// Column describes one expected header cell.
type Column struct {
	Name     string
	Variants []string
	Field    Field
	Type     DataType
	Required bool
}

// DisplayName is the header as shown to users: multi-line titles collapsed to one line.
func (c Column) DisplayName() string {
	return NormalizeHeader(c.Name)
}

// Schema is an immutable column layout. Build it with New.
type Schema struct {
	version      string
	sheetName    string
	sheetAliases []string
	sheetPattern *regexp.Regexp
	columns      []Column

	byKey   map[string]int
	byField map[Field]int
}

type Option func(*Schema)

// WithSheetAliases accepts additional worksheet titles besides the canonical one.
func WithSheetAliases(names ...string) Option {
	return func(s *Schema) {
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				s.sheetAliases = append(s.sheetAliases, n)
			}
		}
	}
}

// WithSheetPattern accepts any worksheet whose title matches re.
func WithSheetPattern(re *regexp.Regexp) Option {
	return func(s *Schema) {
		s.sheetPattern = re
	}
}

// New builds a schema and checks that fields and header names are unique.
func New(version, sheetName string, columns []Column, opts ...Option) (*Schema, error) {
	s := &Schema{
		version:   version,
		sheetName: sheetName,
		columns:   append([]Column(nil), columns...),
		byKey:     make(map[string]int),
		byField:   make(map[Field]int),
	}

	for i, col := range s.columns {
		if col.Field == "" {
			return nil, fmt.Errorf("schema %s: column %q has no field", version, col.Name)
		}
		if _, dup := s.byField[col.Field]; dup {
			return nil, fmt.Errorf("schema %s: field %q mapped twice", version, col.Field)
		}
		s.byField[col.Field] = i

		for _, name := range append([]string{col.Name}, col.Variants...) {
			key := matchKey(name)
			if key == "" {
				return nil, fmt.Errorf("schema %s: column %q has an empty name variant", version, col.Name)
			}
			if prev, dup := s.byKey[key]; dup && prev != i {
				return nil, fmt.Errorf("schema %s: header %q maps to both %q and %q",
					version, name, s.columns[prev].Field, col.Field)
			}
			s.byKey[key] = i
		}
	}

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MustNew is New for package-level layouts.
func MustNew(version, sheetName string, columns []Column, opts ...Option) *Schema {
	s, err := New(version, sheetName, columns, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// With returns a copy of s with the options applied. The receiver is not modified.
func (s *Schema) With(opts ...Option) *Schema {
	c := *s
	c.sheetAliases = append([]string(nil), s.sheetAliases...)
	for _, opt := range opts {
		opt(&c)
	}
	return &c
}

func (s *Schema) Version() string {
	return s.version
}

func (s *Schema) ExpectedSheetName() string {
	return s.sheetName
}

// ExpectedColumnNames returns the canonical header names in the required order.
func (s *Schema) ExpectedColumnNames() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

func (s *Schema) Columns() []Column {
	return append([]Column(nil), s.columns...)
}

// ResolveField maps header text to its field. Canonical names and variants are
// matched ignoring case, accents and line breaks.
func (s *Schema) ResolveField(header string) (Field, bool) {
	i, ok := s.byKey[matchKey(header)]
	if !ok {
		return "", false
	}
	return s.columns[i].Field, true
}

// Column returns the column definition for f.
func (s *Schema) Column(f Field) (Column, bool) {
	i, ok := s.byField[f]
	if !ok {
		return Column{}, false
	}
	return s.columns[i], true
}

// Position returns the zero-based position f must occupy in the header row.
func (s *Schema) Position(f Field) (int, bool) {
	i, ok := s.byField[f]
	return i, ok
}

func (s *Schema) DataTypeOf(f Field) (DataType, bool) {
	c, ok := s.Column(f)
	if !ok {
		return "", false
	}
	return c.Type, true
}

func (s *Schema) IsRequired(f Field) bool {
	c, ok := s.Column(f)
	return ok && c.Required
}

// MatchesSheet reports whether a worksheet title is acceptable for this layout.
func (s *Schema) MatchesSheet(name string) bool {
	if name == s.sheetName {
		return true
	}
	for _, alias := range s.sheetAliases {
		if name == alias {
			return true
		}
	}
	return s.sheetPattern != nil && s.sheetPattern.MatchString(name)
}

// FindSheet picks the first acceptable worksheet, preferring the canonical title.
func (s *Schema) FindSheet(names []string) (string, bool) {
	for _, n := range names {
		if n == s.sheetName {
			return n, true
		}
	}
	for _, n := range names {
		if s.MatchesSheet(n) {
			return n, true
		}
	}
	return "", false
}

// NormalizeHeader collapses line breaks and runs of whitespace into single spaces.
func NormalizeHeader(h string) string {
	return strings.Join(strings.Fields(h), " ")
}

// HeaderEqual compares two header texts the way ResolveField does.
func HeaderEqual(a, b string) bool {
	return matchKey(a) == matchKey(b)
}

func matchKey(h string) string {
	h = NormalizeHeader(h)
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), h)
	if err == nil {
		h = folded
	}
	return strings.ToLower(h)
}
