// Package member holds the EDM member and group model and turns spreadsheet rows into members
package member

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// Status is the two-valued lifecycle flag shared by members and groups
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Valid reports whether s is one of the two known values
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Toggle returns the opposite status
func (s Status) Toggle() Status {
	if s == StatusActive {
		return StatusInactive
	}
	return StatusActive
}

// Code is the numeric form the group endpoints use
func (s Status) Code() int {
	if s == StatusActive {
		return 1
	}
	return 0
}

// ParseStatus accepts the textual, numeric and boolean spellings a spreadsheet or the
// remote may use. Anything else is an error.
func ParseStatus(v any) (Status, error) {
	switch t := v.(type) {
	case Status:
		if t.Valid() {
			return t, nil
		}
	case bool:
		if t {
			return StatusActive, nil
		}
		return StatusInactive, nil
	case float64, float32, int, int64, int32, uint, uint64, uint32:
		n, err := cast.ToFloat64E(t)
		if err == nil {
			switch n {
			case 1:
				return StatusActive, nil
			case 0:
				return StatusInactive, nil
			}
		}
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			break
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "active", "enabled", "enable", "1", "true", "yes", "已啟用", "啟用", "已启用", "启用":
			return StatusActive, nil
		case "inactive", "disabled", "disable", "0", "false", "no", "已禁用", "禁用":
			return StatusInactive, nil
		}
	}
	return "", fmt.Errorf("unknown status %v", v)
}

// UnmarshalJSON accepts both the string and the numeric wire forms
func (s *Status) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ID is the opaque identifier the remote assigns. The remote may send it as a number or a string.
type ID string

// UnmarshalJSON keeps numeric ids verbatim instead of going through float64
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Member is one person on a group's mailing list
//
//nolint:revive // Field names match API responses
type Member struct {
	ID         ID     `json:"id,omitempty"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Mobile     string `json:"mobile,omitempty"`
	Status     Status `json:"status"`
	CreateTime string `json:"createTime,omitempty"`
	GroupID    ID     `json:"group_id,omitempty"`
}

// Group is a named collection members reference by id
type Group struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Note   string `json:"note,omitempty"`
	Status Status `json:"status"`
}

// UnmarshalJSON also accepts the group_id/group_name spelling the create endpoint uses
func (g *Group) UnmarshalJSON(b []byte) error {
	var wire struct {
		ID        ID     `json:"id"`
		GroupID   ID     `json:"group_id"`
		Name      string `json:"name"`
		GroupName string `json:"group_name"`
		Note      string `json:"note"`
		Status    Status `json:"status"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	g.ID = wire.ID
	if g.ID == "" {
		g.ID = wire.GroupID
	}
	g.Name = wire.Name
	if g.Name == "" {
		g.Name = wire.GroupName
	}
	g.Note = wire.Note
	g.Status = wire.Status
	return nil
}
