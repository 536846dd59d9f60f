package member

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/dimasma0305/edmcli/internal/edmcli/errors"
	"github.com/dimasma0305/edmcli/internal/edmcli/sheet"
)

// Field names a Member attribute that can be filled from a spreadsheet column
type Field string

const (
	FieldName   Field = "name"
	FieldEmail  Field = "email"
	FieldMobile Field = "mobile"
	FieldStatus Field = "status"
)

// Fields lists the importable fields in the order they are validated
var Fields = []Field{FieldName, FieldEmail, FieldMobile, FieldStatus}

func knownField(f Field) bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// Column binds one field to the spreadsheet headers that may carry it
type Column struct {
	Field    Field
	Headers  []string
	Required bool
}

// ColumnMap declares how spreadsheet headers map onto Member fields.
// Headers not named by any column are ignored.
type ColumnMap []Column

// DefaultColumnMap matches the sample member sheet and plain English headers
func DefaultColumnMap() ColumnMap {
	return ColumnMap{
		{Field: FieldName, Headers: []string{"姓名", "name", "Name"}, Required: true},
		{Field: FieldEmail, Headers: []string{"信箱", "電子郵件", "email", "Email", "E-mail"}, Required: true},
		{Field: FieldMobile, Headers: []string{"手機", "電話", "mobile", "Mobile", "phone"}},
		{Field: FieldStatus, Headers: []string{"狀態", "status", "Status"}},
	}
}

// NewColumnMap builds a map from per-field header aliases. Fields absent from aliases keep
// the default headers; required replaces the default required set when non-empty.
func NewColumnMap(aliases map[Field][]string, required []Field) (ColumnMap, error) {
	for f := range aliases {
		if !knownField(f) {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown column field %q", f)
		}
	}

	cm := DefaultColumnMap()
	for i := range cm {
		if headers, ok := aliases[cm[i].Field]; ok {
			cm[i].Headers = headers
		}
		if len(required) > 0 {
			cm[i].Required = false
		}
	}
	for _, f := range required {
		col := cm.column(f)
		if col == nil {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown required field %q", f)
		}
		col.Required = true
	}
	return cm, cm.Validate()
}

// Validate rejects maps that can never produce a Member
func (cm ColumnMap) Validate() error {
	seen := make(map[Field]struct{}, len(cm))
	for _, col := range cm {
		if !knownField(col.Field) {
			return errors.Wrapf(errors.ErrInvalidConfig, "unknown column field %q", col.Field)
		}
		if _, dup := seen[col.Field]; dup {
			return errors.Wrapf(errors.ErrInvalidConfig, "field %q mapped twice", col.Field)
		}
		seen[col.Field] = struct{}{}
		if col.Required && len(nonBlank(col.Headers)) == 0 {
			return errors.Wrapf(errors.ErrInvalidConfig, "required field %q has no headers", col.Field)
		}
	}
	if _, ok := seen[FieldName]; !ok {
		return errors.Wrapf(errors.ErrInvalidConfig, "field %q must be mapped", FieldName)
	}
	return nil
}

// Missing returns the required fields none of whose headers appear in headers
func (cm ColumnMap) Missing(headers []string) []Field {
	present := make(sheet.RawRow, len(headers))
	for _, h := range headers {
		present[h] = nil
	}
	var missing []Field
	for _, col := range cm {
		if !col.Required {
			continue
		}
		if _, _, ok := col.lookup(present); !ok {
			missing = append(missing, col.Field)
		}
	}
	return missing
}

// String lists the mapping for log output
func (cm ColumnMap) String() string {
	parts := make([]string, 0, len(cm))
	for _, col := range cm {
		mark := ""
		if col.Required {
			mark = "*"
		}
		parts = append(parts, fmt.Sprintf("%s%s=%s", col.Field, mark, strings.Join(col.Headers, "|")))
	}
	return strings.Join(parts, " ")
}

func (cm ColumnMap) column(f Field) *Column {
	for i := range cm {
		if cm[i].Field == f {
			return &cm[i]
		}
	}
	return nil
}

// lookup finds the first header alias present in row. An exact match on any alias beats a
// case-insensitive one; keys are scanned sorted so the result does not depend on map order.
func (col Column) lookup(row sheet.RawRow) (value any, header string, ok bool) {
	for _, h := range col.Headers {
		if v, found := row[h]; found {
			return v, h, true
		}
	}
	keys := slices.Sorted(maps.Keys(row))
	for _, h := range col.Headers {
		for _, key := range keys {
			if strings.EqualFold(strings.TrimSpace(key), strings.TrimSpace(h)) {
				return row[key], key, true
			}
		}
	}
	return nil, "", false
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
