// Package records defines the raw record shape shared by the parser and the
// normalization pipeline.
package records

// RawRecord is one parsed source row: an ordered sequence of string fields.
// The books export is positional, so fields carry no names and no types.
// Rows narrower than the full layout are legal; a missing field reads as "".
type RawRecord []string

// Field returns the field at index i, or "" when the row is too short.
func (r RawRecord) Field(i int) string {
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}
