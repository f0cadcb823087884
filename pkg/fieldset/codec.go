package fieldset

import (
	"strconv"
	"strings"
	"time"
)

// Values are persisted as raw text regardless of the declared field type.
const DateLayout = "2006-01-02"

// booleanTrueSet contains the tokens that decode to true. Anything outside
// this set decodes to false, there is no invalid-boolean state.
var booleanTrueSet = map[string]struct{}{
	"true": {},
	"1":    {},
	"yes":  {},
	"on":   {},
}

// Encode converts a typed raw input into its stored representation. Storage
// is text, so encoding is the identity function. Kept as an explicit step so
// callers pair it with Decode.
func Encode(raw string, _ FieldType) string {
	return raw
}

// Decode converts a stored value into its typed representation:
//
//   - text/textarea/choice: the string itself, empty decodes to nil
//   - integer: int64, falling back to the original string when unparseable
//   - decimal: float64, same fallback
//   - boolean: membership test against {"true","1","yes","on"}, never fails
//   - date: strict YYYY-MM-DD, same fallback as the numeric types
//
// Decode never returns an error. Malformed legacy values surface as strings
// so that they stay visible instead of silently disappearing; callers that
// compare or aggregate decoded values have to account for that.
func Decode(stored string, fieldType FieldType) any {
	if stored == "" {
		return nil
	}

	switch fieldType {
	case FieldTypeInteger:
		n, err := strconv.ParseInt(stored, 10, 64)
		if err != nil {
			return stored
		}
		return n
	case FieldTypeDecimal:
		f, err := strconv.ParseFloat(stored, 64)
		if err != nil {
			return stored
		}
		return f
	case FieldTypeBoolean:
		_, ok := booleanTrueSet[strings.ToLower(stored)]
		return ok
	case FieldTypeDate:
		d, err := time.Parse(DateLayout, stored)
		if err != nil {
			return stored
		}
		return d
	default:
		return stored
	}
}
