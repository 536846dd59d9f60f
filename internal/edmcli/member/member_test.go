package member

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimasma0305/edmcli/internal/edmcli/errors"
)

func TestStatusToggleAndCode(t *testing.T) {
	assert.Equal(t, StatusInactive, StatusActive.Toggle())
	assert.Equal(t, StatusActive, StatusInactive.Toggle())
	assert.Equal(t, 1, StatusActive.Code())
	assert.Equal(t, 0, StatusInactive.Code())
	assert.False(t, Status("").Valid())
}

func TestParseStatusRejectsUnknown(t *testing.T) {
	for _, v := range []any{"pending", float64(2), float64(0.5), "", nil, Status("archived")} {
		_, err := ParseStatus(v)
		assert.Error(t, err, "value %v", v)
	}
}

func TestMemberJSON(t *testing.T) {
	var m Member
	require.NoError(t, json.Unmarshal([]byte(`{"id": 90071992547409931, "name": "Ann", "email": "ann@example.com", "status": "active", "createTime": "2026-01-02 03:04:05", "group_id": "g-1"}`), &m))

	assert.Equal(t, ID("90071992547409931"), m.ID, "numeric ids keep every digit")
	assert.Equal(t, StatusActive, m.Status)
	assert.Equal(t, ID("g-1"), m.GroupID)
	assert.Equal(t, "2026-01-02 03:04:05", m.CreateTime)

	var numeric Member
	require.NoError(t, json.Unmarshal([]byte(`{"id": "m-7", "status": 0}`), &numeric))
	assert.Equal(t, StatusInactive, numeric.Status)

	out, err := json.Marshal(Member{Name: "Ann", Email: "ann@example.com", Status: StatusActive})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ann","email":"ann@example.com","status":"active"}`, string(out))
}

func TestGroupJSONAcceptsBothSpellings(t *testing.T) {
	var a, b Group
	require.NoError(t, json.Unmarshal([]byte(`{"id": 3, "name": "VIP", "note": "n", "status": 1}`), &a))
	require.NoError(t, json.Unmarshal([]byte(`{"group_id": 3, "group_name": "VIP", "note": "n", "status": "active"}`), &b))

	assert.Equal(t, Group{ID: "3", Name: "VIP", Note: "n", Status: StatusActive}, a)
	assert.Equal(t, a, b)
}

func TestNewColumnMap(t *testing.T) {
	cm, err := NewColumnMap(map[Field][]string{
		FieldName:  {"Full Name"},
		FieldEmail: {"Mail"},
	}, []Field{FieldName})
	require.NoError(t, err)

	assert.Equal(t, []string{"Full Name"}, cm.column(FieldName).Headers)
	assert.True(t, cm.column(FieldName).Required)
	assert.False(t, cm.column(FieldEmail).Required)
	assert.Equal(t, DefaultColumnMap().column(FieldMobile).Headers, cm.column(FieldMobile).Headers)

	_, err = NewColumnMap(map[Field][]string{"nickname": {"Nick"}}, nil)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)

	_, err = NewColumnMap(map[Field][]string{FieldName: {" "}}, nil)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestColumnMapMissing(t *testing.T) {
	cm := DefaultColumnMap()

	assert.Empty(t, cm.Missing([]string{"姓名", "信箱", "其他"}))
	assert.Equal(t, []Field{FieldEmail}, cm.Missing([]string{"Name", "手機"}))
	assert.Equal(t, []Field{FieldName, FieldEmail}, cm.Missing(nil))
}

func TestColumnMapValidate(t *testing.T) {
	assert.NoError(t, DefaultColumnMap().Validate())

	dup := append(DefaultColumnMap(), Column{Field: FieldName, Headers: []string{"x"}})
	assert.ErrorIs(t, dup.Validate(), errors.ErrInvalidConfig)

	noName := ColumnMap{{Field: FieldEmail, Headers: []string{"email"}}}
	assert.ErrorIs(t, noName.Validate(), errors.ErrInvalidConfig)
}
