package fieldset

// FieldType is the closed set of value types a dataset field can declare.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeInteger  FieldType = "integer"
	FieldTypeDecimal  FieldType = "decimal"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeDate     FieldType = "date"
	FieldTypeChoice   FieldType = "choice"
)

func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeTextarea,
		FieldTypeInteger,
		FieldTypeDecimal,
		FieldTypeBoolean,
		FieldTypeDate,
		FieldTypeChoice,
	}
}

func (ft FieldType) Valid() bool {
	switch ft {
	case FieldTypeText, FieldTypeTextarea, FieldTypeInteger, FieldTypeDecimal,
		FieldTypeBoolean, FieldTypeDate, FieldTypeChoice:
		return true
	}
	return false
}
