// Package schema declares the semantic column model shared by every dataset:
// a fixed set of column types (timestamp, integer, decimal, text), ordered
// column schemas, and the casting rules that turn raw cell values into
// database-ready Go values.
//
// The type set is deliberately small. Destination tables carry no constraints
// beyond these types, and every cast is resolved once per run from the
// declared schema, never inferred from the data.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Type is the semantic type of a destination column.
type Type uint8

const (
	TypeText Type = iota
	TypeTimestamp
	TypeInteger
	TypeDecimal
)

var typeNames = map[Type]string{
	TypeText:      "text",
	TypeTimestamp: "timestamp",
	TypeInteger:   "integer",
	TypeDecimal:   "decimal",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// ParseType maps a configuration string onto a Type. A few aliases are
// accepted so probe output and hand-written configs both work.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "string", "varchar":
		return TypeText, nil
	case "timestamp", "datetime":
		return TypeTimestamp, nil
	case "integer", "int", "bigint":
		return TypeInteger, nil
	case "decimal", "numeric", "real", "float":
		return TypeDecimal, nil
	default:
		return TypeText, fmt.Errorf("unknown column type %q", s)
	}
}

func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Type) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := ParseType(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Column declares one destination column. Required columns must be present in
// the source; optional columns are null-filled when the source lacks them.
type Column struct {
	Name     string `json:"name"`
	Type     Type   `json:"type"`
	Required bool   `json:"required,omitempty"`
}

// Schema is the ordered column set of one destination table.
type Schema []Column

// Names returns the declared column names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Name
	}
	return out
}

// Validate checks that the schema is usable: at least one column, no empty or
// duplicate names. Declared names are expected in normalized form.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("schema has no columns")
	}
	seen := make(map[string]struct{}, len(s))
	for i, c := range s {
		if c.Name == "" {
			return fmt.Errorf("column %d has an empty name", i)
		}
		if c.Name != NormalizeName(c.Name) {
			return fmt.Errorf("column %q is not in normalized form (want %q)", c.Name, NormalizeName(c.Name))
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("duplicate column %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}

// NormalizeName converts arbitrary source header text into a lowercase ASCII
// identifier suitable for SQL schemas:
//  1. lowercase
//  2. strip accents (NFD → remove Mn → NFC)
//  3. keep [a-z0-9_]; convert space/dash/dot to underscore; drop others
//  4. fallback to "col" if empty
//
// Source columns are matched against declared names after normalization, so
// "LocationID", "locationid" and "LOCATIONID " all name the same column.
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	// Decompose → remove nonspacing marks (accents) → recompose.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	ascii, _, _ := transform.String(t, s)

	var b strings.Builder
	prevUnderscore := false
	for _, r := range ascii {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
			prevUnderscore = false
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		default:
			// drop anything else
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "col"
	}
	return truncateName(name)
}

// truncateName keeps identifiers under PostgreSQL's 63-byte limit, preserving
// the first 10 and last 53 characters of overlong names.
func truncateName(s string) string {
	if len(s) > 63 {
		return s[:10] + s[len(s)-53:]
	}
	return s
}
