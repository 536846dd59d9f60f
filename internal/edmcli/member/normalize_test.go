package member

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimasma0305/edmcli/internal/edmcli/errors"
	"github.com/dimasma0305/edmcli/internal/edmcli/sheet"
)

func TestNormalizeValidRow(t *testing.T) {
	cm := DefaultColumnMap()

	m, err := cm.Normalize(sheet.RawRow{
		"姓名":   "  王小明 ",
		"信箱":   "ming@example.com",
		"手機":   float64(912345678),
		"狀態":   "已禁用",
		"備註":   "ignored",
		"部門代號": float64(42),
	})
	require.NoError(t, err)

	assert.Equal(t, Member{
		Name:   "王小明",
		Email:  "ming@example.com",
		Mobile: "912345678",
		Status: StatusInactive,
	}, m)
	assert.Empty(t, m.ID, "id is server assigned")
	assert.Empty(t, m.CreateTime, "createTime is server assigned")
}

func TestNormalizeStatusDefaultsToActive(t *testing.T) {
	cm := DefaultColumnMap()

	withoutColumn, err := cm.Normalize(sheet.RawRow{"name": "Ann", "email": "ann@example.com"})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, withoutColumn.Status)

	blankCell, err := cm.Normalize(sheet.RawRow{"name": "Ann", "email": "ann@example.com", "status": nil})
	require.NoError(t, err)
	assert.Equal(t, StatusActive, blankCell.Status)
}

func TestNormalizeStatusSpellings(t *testing.T) {
	cm := DefaultColumnMap()
	tests := []struct {
		in   any
		want Status
	}{
		{"active", StatusActive},
		{"Inactive", StatusInactive},
		{"已啟用", StatusActive},
		{true, StatusActive},
		{false, StatusInactive},
		{float64(1), StatusActive},
		{float64(0), StatusInactive},
		{"0", StatusInactive},
	}

	for _, tt := range tests {
		m, err := cm.Normalize(sheet.RawRow{"name": "Ann", "email": "ann@example.com", "status": tt.in})
		require.NoError(t, err, "status %v", tt.in)
		assert.Equal(t, tt.want, m.Status, "status %v", tt.in)
	}
}

func TestNormalizeFieldErrors(t *testing.T) {
	cm := DefaultColumnMap()
	tests := []struct {
		name  string
		row   sheet.RawRow
		codes []Code
	}{
		{
			name:  "empty name",
			row:   sheet.RawRow{"name": "   ", "email": "ann@example.com"},
			codes: []Code{CodeEmptyName},
		},
		{
			name:  "nil name",
			row:   sheet.RawRow{"name": nil, "email": "ann@example.com"},
			codes: []Code{CodeEmptyName},
		},
		{
			name:  "name column missing",
			row:   sheet.RawRow{"email": "ann@example.com"},
			codes: []Code{CodeMissingColumn},
		},
		{
			name:  "bad email",
			row:   sheet.RawRow{"name": "Ann", "email": "ann.example.com"},
			codes: []Code{CodeInvalidEmail},
		},
		{
			name:  "empty required email",
			row:   sheet.RawRow{"name": "Ann", "email": nil},
			codes: []Code{CodeMissingValue},
		},
		{
			name:  "bad mobile",
			row:   sheet.RawRow{"name": "Ann", "email": "ann@example.com", "mobile": "call me"},
			codes: []Code{CodeInvalidMobile},
		},
		{
			name:  "punctuation only mobile",
			row:   sheet.RawRow{"name": "Ann", "email": "ann@example.com", "mobile": "--"},
			codes: []Code{CodeInvalidMobile},
		},
		{
			name:  "unknown status",
			row:   sheet.RawRow{"name": "Ann", "email": "ann@example.com", "status": "pending"},
			codes: []Code{CodeInvalidStatus},
		},
		{
			name:  "several at once",
			row:   sheet.RawRow{"name": "", "email": "nope", "mobile": "x1", "status": "maybe"},
			codes: []Code{CodeEmptyName, CodeInvalidEmail, CodeInvalidMobile, CodeInvalidStatus},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := cm.Normalize(tt.row)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrValidation)
			assert.Equal(t, Member{}, m, "no partial record on failure")

			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			require.Len(t, verrs, len(tt.codes))
			for i, code := range tt.codes {
				assert.Equal(t, code, verrs[i].Code)
			}
		})
	}
}

func TestNormalizeMobileAccepted(t *testing.T) {
	cm := DefaultColumnMap()
	for _, mobile := range []any{"0912-345-678", "+886 912 345 678", "(02) 2345-6789", float64(912345678), nil} {
		_, err := cm.Normalize(sheet.RawRow{"name": "Ann", "email": "ann@example.com", "mobile": mobile})
		assert.NoError(t, err, "mobile %v", mobile)
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	cm := DefaultColumnMap()
	row := sheet.RawRow{"NAME": "Ann", "name ": "Annie", "Email": "ann@example.com"}

	first, err1 := cm.Normalize(row)
	for i := 0; i < 50; i++ {
		again, err2 := cm.Normalize(row)
		assert.Equal(t, first, again)
		assert.Equal(t, err1, err2)
	}
	assert.Equal(t, "Ann", first.Name, "sorted key scan picks NAME before name")
}

func TestNormalizeExactHeaderBeatsCaseFold(t *testing.T) {
	cm := ColumnMap{
		{Field: FieldName, Headers: []string{"Name", "name"}, Required: true},
	}

	m, err := cm.Normalize(sheet.RawRow{"NAME": "shout", "name": "plain"})
	require.NoError(t, err)
	assert.Equal(t, "plain", m.Name)
}

func TestNormalizeAllKeepsPositions(t *testing.T) {
	cm := DefaultColumnMap()
	rows := []sheet.RawRow{
		{"name": "Ann", "email": "ann@example.com"},
		{"name": "", "email": "bob@example.com"},
		{"name": "Cid", "email": "cid@example.com"},
	}

	members, errs := cm.NormalizeAll(rows)
	require.Len(t, members, 3)
	require.Len(t, errs, 3)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], errors.ErrValidation)
	assert.NoError(t, errs[2])
	assert.Equal(t, "Cid", members[2].Name)
}
