// Package parse turns free-form spreadsheet cells into numbers and dates.
//
// Exports from industrial spreadsheets rarely follow a schema: numeric cells
// carry units, decimal commas and error markers, and date columns mix real
// dates with month abbreviations such as "fev/25". The functions here never
// fail; a cell that cannot be read yields a value with Valid set to false.
package parse

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// Number is a parsed numeric cell. Valid is false when the cell holds no value.
type Number struct {
	Value float64
	Valid bool
}

// Some returns a valid Number.
func Some(v float64) Number {
	return Number{Value: v, Valid: true}
}

// None is the "no value" Number.
var None = Number{}

// MarshalJSON encodes a missing number as null.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON accepts a number or null.
func (n *Number) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = None
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Some(v)
	return nil
}

// String renders the value the way it is stored in derived table columns.
func (n Number) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// invalidTokens are cell contents that spreadsheets use to mean "nothing here".
var invalidTokens = map[string]bool{
	"":      true,
	"nan":   true,
	"none":  true,
	"erro":  true,
	"texto": true,
	"-":     true,
	"--":    true,
	"%":     true,
}

var numberPattern = regexp.MustCompile(`-?\d+(\.\d+)?`)

// Value extracts a number from a cell.
//
// Spaces are removed, a decimal comma becomes a point and percent signs are
// dropped; then the first numeric run in the text is used. "12 de 20" reads as
// 12, and "R$ 1.000" as 1.
func Value(cell string) Number {
	s := strings.ToLower(strings.TrimSpace(cell))
	if invalidTokens[s] {
		return None
	}

	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.ReplaceAll(s, "%", "")

	match := numberPattern.FindString(s)
	if match == "" {
		return None
	}

	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return None
	}
	return Some(v)
}

// Values parses every cell of a column.
func Values(cells []string) []Number {
	out := make([]Number, len(cells))
	for i, c := range cells {
		out[i] = Value(c)
	}
	return out
}
