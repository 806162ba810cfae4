package projects

import (
	"context"
	"sort"

	"github.com/teamgrid/backend/internal/groups"
	"github.com/teamgrid/backend/internal/membership"
	"github.com/teamgrid/backend/internal/models"
)

// Store is the persistence surface the project membership service depends
// on. Lookups return nil (or a short result) for absent entities; batch
// mutations must commit all edges or none.
type Store interface {
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []int64) ([]*models.User, error)
	GetGroupsByIDs(ctx context.Context, ids []int64) ([]*models.Group, error)
	ListHierarchyEdges(ctx context.Context) ([]models.HierarchyEdge, error)
	// ProjectIDsByUsers returns, for each of the given users, the ids of the
	// projects the user is a direct member of.
	ProjectIDsByUsers(ctx context.Context, userIDs []int64) (map[int64][]int64, error)
	// GroupIDsByUsers returns, for each of the given users, the ids of the
	// groups the user is a direct member of.
	GroupIDsByUsers(ctx context.Context, userIDs []int64) (map[int64][]int64, error)
	// ListProjectGroupIDs returns the groups directly attached to a project.
	ListProjectGroupIDs(ctx context.Context, projectID int64) ([]int64, error)
	// ListProjectUserIDs returns the users directly added to a project.
	ListProjectUserIDs(ctx context.Context, projectID int64) ([]int64, error)
	// MembershipsByGroups returns, per user, the user's direct memberships
	// among the given groups.
	MembershipsByGroups(ctx context.Context, groupIDs []int64) (map[int64][]int64, error)
	IsMember(ctx context.Context, projectID, userID int64) (bool, error)
	AddMembers(ctx context.Context, projectID int64, userIDs []int64) error
	RemoveMember(ctx context.Context, projectID, userID int64) error
	AddGroups(ctx context.Context, projectID int64, groupIDs []int64) error
}

// Service orchestrates project membership mutations and the flattened member
// overview. Like the group service, it validates the full request before any
// write.
type Service struct {
	store Store
}

// NewService creates a project membership service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// AddUsers adds the given users as direct members of the project and returns
// their public projections, in the order the store resolved them. The
// per-user group cap does not apply to projects.
func (s *Service) AddUsers(ctx context.Context, projectID int64, userIDs []int64) ([]models.AddedMember, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, membership.NotFound("project %d not found", projectID)
	}

	users, err := s.store.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	if len(users) != len(userIDs) {
		return nil, membership.InvalidBatch("batch addition failed, a user couldn't be found")
	}

	memberOf, err := s.store.ProjectIDsByUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		for _, pid := range memberOf[u.ID] {
			if pid == projectID {
				return nil, membership.AlreadyMember("user %d is already a member of project %d", u.ID, projectID)
			}
		}
	}

	if err := s.store.AddMembers(ctx, projectID, userIDs); err != nil {
		return nil, err
	}

	added := make([]models.AddedMember, 0, len(users))
	for _, u := range users {
		added = append(added, models.AddedMember{ID: u.ID, Name: u.FullName()})
	}
	return added, nil
}

// AddGroups attaches the given groups to the project and echoes the attached
// ids.
func (s *Service) AddGroups(ctx context.Context, projectID int64, groupIDs []int64) ([]int64, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, membership.NotFound("project %d not found", projectID)
	}

	resolved, err := s.store.GetGroupsByIDs(ctx, groupIDs)
	if err != nil {
		return nil, err
	}
	if len(resolved) != len(groupIDs) {
		return nil, membership.InvalidBatch("batch addition failed, a group couldn't be found")
	}

	attached, err := s.store.ListProjectGroupIDs(ctx, projectID)
	if err != nil {
		return nil, err
	}
	existing := make(map[int64]bool, len(attached))
	for _, id := range attached {
		existing[id] = true
	}
	for _, id := range groupIDs {
		if existing[id] {
			return nil, membership.AlreadyMember("group %d is already a member of project %d", id, projectID)
		}
	}

	if err := s.store.AddGroups(ctx, projectID, groupIDs); err != nil {
		return nil, err
	}
	return groupIDs, nil
}

// RemoveUser deletes the user's direct membership in the project and echoes
// the pair that was removed.
func (s *Service) RemoveUser(ctx context.Context, projectID, userID int64) (models.ProjectMembership, error) {
	var removed models.ProjectMembership

	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return removed, err
	}
	if project == nil {
		return removed, membership.NotFound("project %d not found", projectID)
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return removed, err
	}
	if user == nil {
		return removed, membership.NotFound("user %d not found", userID)
	}

	isMember, err := s.store.IsMember(ctx, projectID, userID)
	if err != nil {
		return removed, err
	}
	if !isMember {
		return removed, membership.NotMember("user %d is not a member of project %d", userID, projectID)
	}

	if err := s.store.RemoveMember(ctx, projectID, userID); err != nil {
		return removed, err
	}
	return models.ProjectMembership{ProjectID: projectID, UserID: userID}, nil
}

// ListMembers returns the project with its effective members flattened
// across the group hierarchy: every user directly on the project or in any
// group attached to it (including nested sub-groups), each with the
// deduplicated names of every group the user directly belongs to plus every
// ancestor of those groups. The group list is not restricted to groups
// attached to the project.
func (s *Service) ListMembers(ctx context.Context, projectID int64) (*models.ProjectOverview, error) {
	project, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, membership.NotFound("project %d not found", projectID)
	}

	directUserIDs, err := s.store.ListProjectUserIDs(ctx, projectID)
	if err != nil {
		return nil, err
	}
	directGroupIDs, err := s.store.ListProjectGroupIDs(ctx, projectID)
	if err != nil {
		return nil, err
	}
	edges, err := s.store.ListHierarchyEdges(ctx)
	if err != nil {
		return nil, err
	}
	hierarchy := groups.NewHierarchy(edges)

	// Groups linked to the project, directly or through nesting.
	linked := make(map[int64]bool)
	for _, gid := range directGroupIDs {
		linked[gid] = true
		for _, desc := range hierarchy.Descendants(gid) {
			linked[desc] = true
		}
	}
	linkedIDs := make([]int64, 0, len(linked))
	for gid := range linked {
		linkedIDs = append(linkedIDs, gid)
	}

	// Linked groups only widen the member set; the per-user group list below
	// is unrestricted.
	reached, err := s.store.MembershipsByGroups(ctx, linkedIDs)
	if err != nil {
		return nil, err
	}

	userSet := make(map[int64]bool)
	for _, uid := range directUserIDs {
		userSet[uid] = true
	}
	for uid := range reached {
		userSet[uid] = true
	}
	userIDs := make([]int64, 0, len(userSet))
	for uid := range userSet {
		userIDs = append(userIDs, uid)
	}

	users, err := s.store.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	memberOf, err := s.store.GroupIDsByUsers(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	// Per user: all their direct groups plus every ancestor of those.
	groupIDsByUser := make(map[int64]map[int64]bool, len(users))
	nameIDs := make(map[int64]bool)
	for uid, gids := range memberOf {
		set := make(map[int64]bool)
		for _, gid := range gids {
			set[gid] = true
			nameIDs[gid] = true
			for _, anc := range hierarchy.Ancestors(gid) {
				set[anc] = true
				nameIDs[anc] = true
			}
		}
		groupIDsByUser[uid] = set
	}

	allIDs := make([]int64, 0, len(nameIDs))
	for gid := range nameIDs {
		allIDs = append(allIDs, gid)
	}
	named, err := s.store.GetGroupsByIDs(ctx, allIDs)
	if err != nil {
		return nil, err
	}
	nameOf := make(map[int64]string, len(named))
	for _, g := range named {
		nameOf[g.ID] = g.Name
	}

	members := make([]models.ProjectMember, 0, len(users))
	for _, u := range users {
		names := make([]string, 0, len(groupIDsByUser[u.ID]))
		for gid := range groupIDsByUser[u.ID] {
			if name, ok := nameOf[gid]; ok {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		members = append(members, models.ProjectMember{ID: u.ID, Name: u.FullName(), Groups: names})
	}

	return &models.ProjectOverview{ID: project.ID, Name: project.Name, Members: members}, nil
}
