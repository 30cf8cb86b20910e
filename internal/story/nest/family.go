package nest

import (
	"context"
	"errors"
	"strings"

	"livetsstemme/internal/domain/story"
	"livetsstemme/internal/domain/user"
	"livetsstemme/internal/store"
)

type Invite struct {
	Email        string   `json:"email"`
	Relationship string   `json:"relationship"`
	Permissions  []string `json:"permissions"`
}

func (n *Nest) InviteFamilyMember(ctx context.Context, userID string, in Invite) (*user.FamilyMember, error) {
	u, err := n.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	perms, err := user.ParsePermissions(in.Permissions)
	if err != nil {
		return nil, invalid("%s", err.Error())
	}
	m, err := user.NewFamilyMember(strings.TrimSpace(in.Email), strings.TrimSpace(in.Relationship), perms, n.now())
	if err != nil {
		return nil, invalid("%s", err.Error())
	}
	u.AddFamilyMember(m)
	if err := n.store.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	return &m, nil
}

func (n *Nest) RespondToInvite(ctx context.Context, userID, memberID string, accept bool) (*user.FamilyMember, error) {
	u, err := n.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	m, err := u.RespondToInvite(memberID, accept)
	switch {
	case errors.Is(err, user.ErrMemberNotFound):
		return nil, store.ErrNotFound
	case err != nil:
		return nil, invalid("%s", err.Error())
	}
	out := *m
	if err := n.store.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	return &out, nil
}

func (n *Nest) RemoveFamilyMember(ctx context.Context, userID, memberID string) error {
	u, err := n.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := u.RemoveFamilyMember(memberID); err != nil {
		return store.ErrNotFound
	}
	return n.store.SaveUser(ctx, u)
}

// FamilyStories lists the stories of owner for a viewer that owner has
// accepted into the family with view permission.
func (n *Nest) FamilyStories(ctx context.Context, viewerID, ownerID string, q story.Query) ([]story.Story, error) {
	viewer, err := n.getUser(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	owner, err := n.store.GetUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !owner.HasPermission(viewer.Email, user.PermissionView) {
		return nil, ErrForbidden
	}
	stories, err := n.store.ListStories(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return publicAll(q.Apply(stories)), nil
}

func publicAll(stories []story.Story) []story.Story {
	out := make([]story.Story, len(stories))
	for i, s := range stories {
		out[i] = s.Public()
	}
	return out
}
