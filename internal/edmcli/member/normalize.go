package member

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/dimasma0305/edmcli/internal/edmcli/sheet"
)

// Normalize maps one spreadsheet row onto a Member. It performs no I/O and depends only on
// row and cm. On failure the returned error is ValidationErrors listing every bad field and
// the Member is the zero value.
func (cm ColumnMap) Normalize(row sheet.RawRow) (Member, error) {
	var errs ValidationErrors
	values := make(map[Field]string, len(cm))

	for _, col := range cm {
		raw, header, ok := col.lookup(row)
		if !ok {
			if col.Required {
				errs = append(errs, ValidationError{
					Field:   col.Field,
					Code:    CodeMissingColumn,
					Message: "no column among " + strings.Join(col.Headers, ", "),
				})
			}
			continue
		}
		text, err := scalarString(raw)
		if err != nil {
			errs = append(errs, ValidationError{Field: col.Field, Code: CodeUnreadable, Message: "column " + header + " holds " + err.Error()})
			continue
		}
		values[col.Field] = text
	}

	reported := func(f Field) bool {
		for _, e := range errs {
			if e.Field == f {
				return true
			}
		}
		return false
	}

	m := Member{
		Name:   values[FieldName],
		Email:  values[FieldEmail],
		Mobile: values[FieldMobile],
		Status: StatusActive,
	}

	if !reported(FieldName) {
		if verr := ValidateName(m.Name); verr != nil {
			errs = append(errs, *verr)
		}
	}

	if !reported(FieldEmail) {
		_, mapped := values[FieldEmail]
		required := cm.column(FieldEmail) != nil && cm.column(FieldEmail).Required
		if m.Email != "" || (mapped && required) {
			if verr := ValidateEmail(m.Email); verr != nil {
				errs = append(errs, *verr)
			}
		}
	}

	if !reported(FieldMobile) {
		if verr := ValidateMobile(m.Mobile); verr != nil {
			errs = append(errs, *verr)
		}
	}

	if text := values[FieldStatus]; text != "" && !reported(FieldStatus) {
		status, err := ParseStatus(statusValue(cm, row, text))
		if err != nil {
			errs = append(errs, ValidationError{Field: FieldStatus, Code: CodeInvalidStatus, Value: text, Message: "status must be active or inactive"})
		} else {
			m.Status = status
		}
	}

	if len(errs) > 0 {
		return Member{}, errs
	}
	return m, nil
}

// NormalizeAll runs Normalize over rows, keeping positions aligned with the input
func (cm ColumnMap) NormalizeAll(rows []sheet.RawRow) ([]Member, []error) {
	members := make([]Member, len(rows))
	errs := make([]error, len(rows))
	for i, row := range rows {
		members[i], errs[i] = cm.Normalize(row)
	}
	return members, errs
}

// scalarString renders a cell as trimmed text. Nil is the empty string.
func scalarString(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// statusValue hands booleans and numbers to ParseStatus untouched so TRUE and 1.0 cells
// are understood; everything else goes as text.
func statusValue(cm ColumnMap, row sheet.RawRow, text string) any {
	col := cm.column(FieldStatus)
	if col == nil {
		return text
	}
	raw, _, _ := col.lookup(row)
	switch raw.(type) {
	case bool, float64:
		return raw
	}
	return text
}
