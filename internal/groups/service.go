package groups

import (
	"context"

	"github.com/teamgrid/backend/internal/membership"
	"github.com/teamgrid/backend/internal/models"
)

// Store is the persistence surface the group membership service depends on.
// Lookups return nil (or a short result) for absent entities rather than an
// error; batch mutations must commit all edges or none.
type Store interface {
	GetGroup(ctx context.Context, id int64) (*models.Group, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []int64) ([]*models.User, error)
	GetGroupsByIDs(ctx context.Context, ids []int64) ([]*models.Group, error)
	ListHierarchyEdges(ctx context.Context) ([]models.HierarchyEdge, error)
	// GroupIDsByUsers returns, for each of the given users, the ids of the
	// groups the user is a direct member of.
	GroupIDsByUsers(ctx context.Context, userIDs []int64) (map[int64][]int64, error)
	IsMember(ctx context.Context, groupID, userID int64) (bool, error)
	AddMembers(ctx context.Context, groupID int64, userIDs []int64) error
	RemoveMember(ctx context.Context, groupID, userID int64) error
	AddSubGroups(ctx context.Context, parentID int64, childIDs []int64) error
}

// Service orchestrates group membership mutations: it validates the whole
// request against the business rules first and only then writes, so a failed
// call never leaves a partial batch behind.
type Service struct {
	store Store
}

// NewService creates a group membership service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// AddUsers adds the given users as direct members of the group and returns
// their public projections, in the order the store resolved them.
func (s *Service) AddUsers(ctx context.Context, groupID int64, userIDs []int64) ([]models.AddedMember, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, membership.NotFound("group %d not found", groupID)
	}

	users, err := s.store.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	if len(users) != len(userIDs) {
		return nil, membership.InvalidBatch("batch addition failed, a user couldn't be found")
	}

	memberOf, err := s.store.GroupIDsByUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		for _, gid := range memberOf[u.ID] {
			if gid == groupID {
				return nil, membership.AlreadyMember("user %d is already a member of group %d", u.ID, groupID)
			}
		}
	}
	for _, u := range users {
		if len(memberOf[u.ID]) >= models.MaxUserGroups {
			return nil, membership.LimitExceeded("user %d has reached the limit of groups they can join", u.ID)
		}
	}

	if err := s.store.AddMembers(ctx, groupID, userIDs); err != nil {
		return nil, err
	}

	added := make([]models.AddedMember, 0, len(users))
	for _, u := range users {
		added = append(added, models.AddedMember{ID: u.ID, Name: u.FullName()})
	}
	return added, nil
}

// AddSubGroups attaches the given groups as direct children of parentID and
// echoes the attached ids. The hierarchy constraints are checked against the
// graph as it exists before this batch.
func (s *Service) AddSubGroups(ctx context.Context, parentID int64, childIDs []int64) ([]int64, error) {
	parent, err := s.store.GetGroup(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, membership.NotFound("group %d not found", parentID)
	}

	children, err := s.store.GetGroupsByIDs(ctx, childIDs)
	if err != nil {
		return nil, err
	}
	if len(children) != len(childIDs) {
		return nil, membership.InvalidBatch("batch addition failed, a group couldn't be found")
	}

	edges, err := s.store.ListHierarchyEdges(ctx)
	if err != nil {
		return nil, err
	}
	if err := NewHierarchy(edges).CanAttach(parentID, childIDs); err != nil {
		return nil, err
	}

	if err := s.store.AddSubGroups(ctx, parentID, childIDs); err != nil {
		return nil, err
	}
	return childIDs, nil
}

// RemoveUser deletes the user's direct membership in the group and echoes
// the pair that was removed.
func (s *Service) RemoveUser(ctx context.Context, groupID, userID int64) (models.GroupMembership, error) {
	var removed models.GroupMembership

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return removed, err
	}
	if group == nil {
		return removed, membership.NotFound("group %d not found", groupID)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return removed, err
	}
	if user == nil {
		return removed, membership.NotFound("user %d not found", userID)
	}

	isMember, err := s.store.IsMember(ctx, groupID, userID)
	if err != nil {
		return removed, err
	}
	if !isMember {
		return removed, membership.NotMember("user %d is not a member of group %d", userID, groupID)
	}

	if err := s.store.RemoveMember(ctx, groupID, userID); err != nil {
		return removed, err
	}
	return models.GroupMembership{GroupID: groupID, UserID: userID}, nil
}
