package groups

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamgrid/backend/internal/membership"
	"github.com/teamgrid/backend/internal/models"
)

// fakeStore is an in-memory Store for exercising the service in isolation.
type fakeStore struct {
	groups  map[int64]*models.Group
	users   map[int64]*models.User
	edges   []models.HierarchyEdge
	members map[int64][]int64 // groupID → userIDs
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		groups:  make(map[int64]*models.Group),
		users:   make(map[int64]*models.User),
		members: make(map[int64][]int64),
	}
}

func (f *fakeStore) addGroup(id int64, name string) {
	f.groups[id] = &models.Group{ID: id, Name: name}
}

func (f *fakeStore) addUser(id int64, first, last string) {
	f.users[id] = &models.User{ID: id, FirstName: first, LastName: last}
}

func (f *fakeStore) memberCount(groupID int64) int {
	return len(f.members[groupID])
}

func (f *fakeStore) GetGroup(_ context.Context, id int64) (*models.Group, error) {
	return f.groups[id], nil
}

func (f *fakeStore) GetUser(_ context.Context, id int64) (*models.User, error) {
	return f.users[id], nil
}

func (f *fakeStore) GetUsersByIDs(_ context.Context, ids []int64) ([]*models.User, error) {
	var out []*models.User
	for _, id := range resolved(ids) {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeStore) GetGroupsByIDs(_ context.Context, ids []int64) ([]*models.Group, error) {
	var out []*models.Group
	for _, id := range resolved(ids) {
		if g, ok := f.groups[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStore) ListHierarchyEdges(_ context.Context) ([]models.HierarchyEdge, error) {
	return f.edges, nil
}

func (f *fakeStore) GroupIDsByUsers(_ context.Context, userIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64)
	for gid, uids := range f.members {
		for _, uid := range uids {
			for _, want := range userIDs {
				if uid == want {
					out[uid] = append(out[uid], gid)
				}
			}
		}
	}
	return out, nil
}

func (f *fakeStore) IsMember(_ context.Context, groupID, userID int64) (bool, error) {
	for _, uid := range f.members[groupID] {
		if uid == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) AddMembers(_ context.Context, groupID int64, userIDs []int64) error {
	f.members[groupID] = append(f.members[groupID], userIDs...)
	return nil
}

func (f *fakeStore) RemoveMember(_ context.Context, groupID, userID int64) error {
	kept := f.members[groupID][:0]
	for _, uid := range f.members[groupID] {
		if uid != userID {
			kept = append(kept, uid)
		}
	}
	f.members[groupID] = kept
	return nil
}

func (f *fakeStore) AddSubGroups(_ context.Context, parentID int64, childIDs []int64) error {
	for _, childID := range childIDs {
		f.edges = append(f.edges, models.HierarchyEdge{ParentGroupID: parentID, ChildGroupID: childID})
	}
	return nil
}

// resolved mimics the store: distinct ids in ascending order.
func resolved(ids []int64) []int64 {
	seen := make(map[int64]bool)
	var out []int64
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestAddUsersToGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("adds members and returns projections", func(t *testing.T) {
		store := newFakeStore()
		store.addGroup(1, "Engineering")
		store.addUser(1, "Alice", "Merveille")
		store.addUser(2, "Jean", "Bon")
		svc := NewService(store)

		added, err := svc.AddUsers(ctx, 1, []int64{1, 2})
		require.NoError(t, err)
		assert.Equal(t, []models.AddedMember{
			{ID: 1, Name: "Alice Merveille"},
			{ID: 2, Name: "Jean Bon"},
		}, added)
		assert.Equal(t, 2, store.memberCount(1))
	})

	t.Run("group not found", func(t *testing.T) {
		store := newFakeStore()
		store.addUser(1, "Alice", "Merveille")
		svc := NewService(store)

		_, err := svc.AddUsers(ctx, 9, []int64{1})
		assert.Equal(t, membership.KindNotFound, membership.KindOf(err))
	})

	t.Run("unresolved user rejects the whole batch", func(t *testing.T) {
		store := newFakeStore()
		store.addGroup(1, "Engineering")
		store.addUser(1, "Alice", "Merveille")
		svc := NewService(store)

		_, err := svc.AddUsers(ctx, 1, []int64{1, 2})
		assert.Equal(t, membership.KindInvalidBatch, membership.KindOf(err))
		assert.Equal(t, 0, store.memberCount(1))
	})

	t.Run("second add of the same pair fails, edge stays single", func(t *testing.T) {
		store := newFakeStore()
		store.addGroup(1, "Engineering")
		store.addUser(1, "Alice", "Merveille")
		svc := NewService(store)

		_, err := svc.AddUsers(ctx, 1, []int64{1})
		require.NoError(t, err)
		_, err = svc.AddUsers(ctx, 1, []int64{1})
		assert.Equal(t, membership.KindAlreadyMember, membership.KindOf(err))
		assert.Equal(t, 1, store.memberCount(1))
	})

	t.Run("user at the group cap", func(t *testing.T) {
		store := newFakeStore()
		for id := int64(1); id <= 6; id++ {
			store.addGroup(id, fmt.Sprintf("Group %d", id))
		}
		store.addUser(1, "Alice", "Merveille")
		for gid := int64(1); gid <= 5; gid++ {
			store.members[gid] = []int64{1}
		}
		svc := NewService(store)

		_, err := svc.AddUsers(ctx, 6, []int64{1})
		assert.Equal(t, membership.KindLimitExceeded, membership.KindOf(err))
		assert.Equal(t, 0, store.memberCount(6))
	})

	t.Run("duplicate pair reported before group cap", func(t *testing.T) {
		store := newFakeStore()
		for id := int64(1); id <= 6; id++ {
			store.addGroup(id, fmt.Sprintf("Group %d", id))
		}
		store.addUser(1, "Alice", "Merveille") // member of group 6 already
		store.addUser(2, "Jean", "Bon")        // at the cap
		store.members[6] = []int64{1}
		for gid := int64(1); gid <= 5; gid++ {
			store.members[gid] = append(store.members[gid], 2)
		}
		svc := NewService(store)

		_, err := svc.AddUsers(ctx, 6, []int64{1, 2})
		assert.Equal(t, membership.KindAlreadyMember, membership.KindOf(err))
	})
}

func TestAddSubGroups(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches a group that already has another parent", func(t *testing.T) {
		// Groups 1, 2, 3 with edges 1→3 and 2→3.
		store := newFakeStore()
		store.addGroup(1, "A")
		store.addGroup(2, "B")
		store.addGroup(3, "C")
		store.edges = []models.HierarchyEdge{
			{ParentGroupID: 1, ChildGroupID: 3},
			{ParentGroupID: 2, ChildGroupID: 3},
		}
		svc := NewService(store)

		attached, err := svc.AddSubGroups(ctx, 1, []int64{2})
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, attached)
		assert.Len(t, store.edges, 3)
	})

	t.Run("parent not found", func(t *testing.T) {
		store := newFakeStore()
		store.addGroup(2, "B")
		svc := NewService(store)

		_, err := svc.AddSubGroups(ctx, 1, []int64{2})
		assert.Equal(t, membership.KindNotFound, membership.KindOf(err))
	})

	t.Run("unresolved group rejects the whole batch", func(t *testing.T) {
		store := newFakeStore()
		store.addGroup(1, "A")
		svc := NewService(store)

		_, err := svc.AddSubGroups(ctx, 1, []int64{2})
		assert.Equal(t, membership.KindInvalidBatch, membership.KindOf(err))
		assert.Empty(t, store.edges)
	})

	t.Run("group cannot be its own child", func(t *testing.T) {
		store := newFakeStore()
		store.addGroup(1, "A")
		svc := NewService(store)

		_, err := svc.AddSubGroups(ctx, 1, []int64{1})
		assert.Equal(t, membership.KindSelfReference, membership.KindOf(err))
		assert.Empty(t, store.edges)
	})

	t.Run("five-deep chain rejects further children", func(t *testing.T) {
		// 1→2, 1→3, 3→4, 4→5, 5→6: five descendants under group 1.
		store := newFakeStore()
		for id := int64(1); id <= 7; id++ {
			store.addGroup(id, fmt.Sprintf("G%d", id))
		}
		store.edges = []models.HierarchyEdge{
			{ParentGroupID: 1, ChildGroupID: 2},
			{ParentGroupID: 1, ChildGroupID: 3},
			{ParentGroupID: 3, ChildGroupID: 4},
			{ParentGroupID: 4, ChildGroupID: 5},
			{ParentGroupID: 5, ChildGroupID: 6},
		}
		svc := NewService(store)

		_, err := svc.AddSubGroups(ctx, 1, []int64{7})
		assert.Equal(t, membership.KindDepthExceeded, membership.KindOf(err))
		assert.Len(t, store.edges, 5)
	})

	t.Run("already a direct child", func(t *testing.T) {
		store := newFakeStore()
		store.addGroup(1, "A")
		store.addGroup(2, "B")
		store.edges = []models.HierarchyEdge{{ParentGroupID: 1, ChildGroupID: 2}}
		svc := NewService(store)

		_, err := svc.AddSubGroups(ctx, 1, []int64{2})
		assert.Equal(t, membership.KindAlreadyMember, membership.KindOf(err))
		assert.Len(t, store.edges, 1)
	})
}

func TestRemoveUserFromGroup(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the membership and echoes the pair", func(t *testing.T) {
		store := newFakeStore()
		store.addGroup(1, "Engineering")
		store.addUser(2, "Jean", "Bon")
		store.members[1] = []int64{2}
		svc := NewService(store)

		removed, err := svc.RemoveUser(ctx, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, models.GroupMembership{GroupID: 1, UserID: 2}, removed)
		assert.Equal(t, 0, store.memberCount(1))
	})

	t.Run("group not found", func(t *testing.T) {
		store := newFakeStore()
		store.addUser(2, "Jean", "Bon")
		svc := NewService(store)

		_, err := svc.RemoveUser(ctx, 1, 2)
		assert.Equal(t, membership.KindNotFound, membership.KindOf(err))
	})

	t.Run("user not found", func(t *testing.T) {
		store := newFakeStore()
		store.addGroup(1, "Engineering")
		svc := NewService(store)

		_, err := svc.RemoveUser(ctx, 1, 2)
		assert.Equal(t, membership.KindNotFound, membership.KindOf(err))
	})

	t.Run("user never joined", func(t *testing.T) {
		store := newFakeStore()
		store.addGroup(1, "Engineering")
		store.addUser(2, "Jean", "Bon")
		store.members[1] = []int64{}
		svc := NewService(store)

		_, err := svc.RemoveUser(ctx, 1, 2)
		assert.Equal(t, membership.KindNotMember, membership.KindOf(err))
		assert.Equal(t, 0, store.memberCount(1))
	})
}
