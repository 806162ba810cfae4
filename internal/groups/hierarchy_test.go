package groups

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamgrid/backend/internal/membership"
	"github.com/teamgrid/backend/internal/models"
)

func edge(parent, child int64) models.HierarchyEdge {
	return models.HierarchyEdge{ParentGroupID: parent, ChildGroupID: child}
}

func TestDescendants(t *testing.T) {
	t.Run("empty graph", func(t *testing.T) {
		h := NewHierarchy(nil)
		assert.Empty(t, h.Descendants(1))
	})

	t.Run("chain", func(t *testing.T) {
		h := NewHierarchy([]models.HierarchyEdge{edge(1, 2), edge(2, 3), edge(3, 4)})
		assert.ElementsMatch(t, []int64{2, 3, 4}, h.Descendants(1))
		assert.ElementsMatch(t, []int64{4}, h.Descendants(3))
	})

	t.Run("never includes the root", func(t *testing.T) {
		h := NewHierarchy([]models.HierarchyEdge{edge(1, 2), edge(1, 3), edge(3, 4)})
		for _, id := range []int64{1, 2, 3, 4} {
			assert.NotContains(t, h.Descendants(id), id)
		}
	})

	t.Run("diamond counted once", func(t *testing.T) {
		// 1→2, 1→3, 2→4, 3→4: group 4 is reachable via two paths.
		h := NewHierarchy([]models.HierarchyEdge{edge(1, 2), edge(1, 3), edge(2, 4), edge(3, 4)})
		assert.ElementsMatch(t, []int64{2, 3, 4}, h.Descendants(1))
	})
}

func TestAncestors(t *testing.T) {
	h := NewHierarchy([]models.HierarchyEdge{edge(1, 2), edge(2, 3), edge(4, 3)})
	assert.ElementsMatch(t, []int64{1, 2, 4}, h.Ancestors(3))
	assert.ElementsMatch(t, []int64{1}, h.Ancestors(2))
	assert.Empty(t, h.Ancestors(1))
}

func TestCanAttach(t *testing.T) {
	t.Run("multi-parent child can be attached elsewhere", func(t *testing.T) {
		// Groups 1, 2, 3 with 1→3 and 2→3: attaching 2 under 1 is legal.
		h := NewHierarchy([]models.HierarchyEdge{edge(1, 3), edge(2, 3)})
		require.NoError(t, h.CanAttach(1, []int64{2}))
	})

	t.Run("self reference", func(t *testing.T) {
		h := NewHierarchy(nil)
		err := h.CanAttach(1, []int64{1})
		require.Error(t, err)
		assert.Equal(t, membership.KindSelfReference, membership.KindOf(err))
	})

	t.Run("cycle through existing edges", func(t *testing.T) {
		h := NewHierarchy([]models.HierarchyEdge{edge(1, 2), edge(2, 3)})
		err := h.CanAttach(3, []int64{1})
		require.Error(t, err)
		assert.Equal(t, membership.KindSelfReference, membership.KindOf(err))
	})

	t.Run("sub-group limit", func(t *testing.T) {
		// 1→2, 1→3, 3→4, 4→5, 5→6: five descendants under group 1.
		h := NewHierarchy([]models.HierarchyEdge{
			edge(1, 2), edge(1, 3), edge(3, 4), edge(4, 5), edge(5, 6),
		})
		err := h.CanAttach(1, []int64{7})
		require.Error(t, err)
		assert.Equal(t, membership.KindDepthExceeded, membership.KindOf(err))
	})

	t.Run("limit checked before duplicate child", func(t *testing.T) {
		h := NewHierarchy([]models.HierarchyEdge{
			edge(1, 2), edge(1, 3), edge(3, 4), edge(4, 5), edge(5, 6),
		})
		err := h.CanAttach(1, []int64{2})
		require.Error(t, err)
		assert.Equal(t, membership.KindDepthExceeded, membership.KindOf(err))
	})

	t.Run("already a direct child", func(t *testing.T) {
		h := NewHierarchy([]models.HierarchyEdge{edge(1, 2)})
		err := h.CanAttach(1, []int64{2})
		require.Error(t, err)
		assert.Equal(t, membership.KindAlreadyMember, membership.KindOf(err))
	})

	t.Run("ok below the limit", func(t *testing.T) {
		h := NewHierarchy([]models.HierarchyEdge{edge(1, 2), edge(2, 3)})
		require.NoError(t, h.CanAttach(1, []int64{4, 5}))
	})
}
