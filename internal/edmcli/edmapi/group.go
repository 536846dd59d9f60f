package edmapi

import (
	"context"

	"github.com/dimasma0305/edmcli/internal/edmcli/member"
)

// GroupPage is one page of /edm/group/list
type GroupPage = Page[member.Group]

// GroupForm is the body of /edm/group/create
type GroupForm struct {
	Name string `json:"group_name"`
	Note string `json:"note,omitempty"`
}

// ListGroups returns one page of groups matching params
func (s *Service) ListGroups(ctx context.Context, params ListParams) (*GroupPage, error) {
	var page GroupPage
	if err := s.r.Post(ctx, "/edm/group/list", params.body(), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ViewGroup fetches one group by id
func (s *Service) ViewGroup(ctx context.Context, id member.ID) (*member.Group, error) {
	var group member.Group
	if err := s.r.Post(ctx, "/edm/group/view", map[string]any{"id": id}, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// CreateGroup creates a group and returns it as the remote stored it
func (s *Service) CreateGroup(ctx context.Context, form GroupForm) (*member.Group, error) {
	var group member.Group
	if err := s.r.Post(ctx, "/edm/group/create", form, &group); err != nil {
		return nil, err
	}
	if group.Name == "" {
		group.Name = form.Name
		group.Note = form.Note
	}
	return &group, nil
}

// EditGroupStatus switches a group on or off. Groups take the numeric status form.
func (s *Service) EditGroupStatus(ctx context.Context, id member.ID, status member.Status) error {
	return s.r.Post(ctx, "/edm/group/editStatus", map[string]any{"group_id": id, "status": status.Code()}, nil)
}
