package edmapi

import (
	"context"
	"fmt"

	"github.com/dimasma0305/edmcli/internal/edmcli/errors"
	"github.com/dimasma0305/edmcli/internal/edmcli/member"
)

// MemberPage is one page of /edm/member/list
type MemberPage = Page[member.Member]

// memberForm is the body of /edm/member/add
type memberForm struct {
	GroupID member.ID     `json:"group_id"`
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Mobile  string        `json:"mobile,omitempty"`
	Status  member.Status `json:"status"`
}

// ListMembers returns one page of members matching params
func (s *Service) ListMembers(ctx context.Context, params ListParams) (*MemberPage, error) {
	var page MemberPage
	if err := s.r.Post(ctx, "/edm/member/list", params.body(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ViewMember fetches one member by id
func (s *Service) ViewMember(ctx context.Context, id member.ID) (*member.Member, error) {
	var m member.Member
	if err := s.r.Post(ctx, "/edm/member/view", map[string]any{"id": id}, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// AddMember creates one member in group and returns it with the remote-assigned id.
// A success answer without an id is treated as a rejection.
func (s *Service) AddMember(ctx context.Context, groupID member.ID, m member.Member) (*member.Member, error) {
	var created member.Member
	form := memberForm{
		GroupID: groupID,
		Name:    m.Name,
		Email:   m.Email,
		Mobile:  m.Mobile,
		Status:  m.Status,
	}
	if err := s.r.Post(ctx, "/edm/member/add", form, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, fmt.Errorf("%w: %w for %s", errors.ErrRemoteRejection, errors.ErrMissingID, m.Email)
	}

	out := m
	out.ID = created.ID
	out.GroupID = groupID
	if created.CreateTime != "" {
		out.CreateTime = created.CreateTime
	}
	if created.GroupID != "" {
		out.GroupID = created.GroupID
	}
	return &out, nil
}

// EditMemberStatus sets a member's status
func (s *Service) EditMemberStatus(ctx context.Context, id member.ID, status member.Status) error {
	return s.r.Post(ctx, "/edm/member/editStatus", map[string]any{"member_id": id, "status": status}, nil)
}

// EditMemberMobile sets a member's mobile number
func (s *Service) EditMemberMobile(ctx context.Context, id member.ID, mobile string) error {
	return s.r.Post(ctx, "/edm/member/editMobile", map[string]any{"id": id, "mobile": mobile}, nil)
}

// EditMemberEmail sets a member's email address
func (s *Service) EditMemberEmail(ctx context.Context, id member.ID, email string) error {
	return s.r.Post(ctx, "/edm/member/editEmail", map[string]any{"id": id, "email": email}, nil)
}
