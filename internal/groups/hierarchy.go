package groups

import (
	"github.com/teamgrid/backend/internal/membership"
	"github.com/teamgrid/backend/internal/models"
)

// Hierarchy is an in-memory view of the group nesting graph, built fresh
// from the full edge list on every call that needs it. Nothing is cached
// across requests.
type Hierarchy struct {
	children map[int64][]int64
	parents  map[int64][]int64
}

// NewHierarchy builds adjacency maps from the hierarchy edge list.
func NewHierarchy(edges []models.HierarchyEdge) *Hierarchy {
	h := &Hierarchy{
		children: make(map[int64][]int64),
		parents:  make(map[int64][]int64),
	}
	for _, e := range edges {
		h.children[e.ParentGroupID] = append(h.children[e.ParentGroupID], e.ChildGroupID)
		h.parents[e.ChildGroupID] = append(h.parents[e.ChildGroupID], e.ParentGroupID)
	}
	return h
}

// Descendants returns every distinct group transitively reachable from
// groupID by following child edges. The result never contains groupID
// itself, and a group reachable via multiple paths is reported once.
func (h *Hierarchy) Descendants(groupID int64) []int64 {
	return h.walk(groupID, h.children)
}

// Ancestors returns every distinct group from which groupID is reachable
// by following child edges, i.e. the transitive closure over parent edges.
func (h *Hierarchy) Ancestors(groupID int64) []int64 {
	return h.walk(groupID, h.parents)
}

func (h *Hierarchy) walk(start int64, adjacency map[int64][]int64) []int64 {
	seen := map[int64]bool{start: true}
	var out []int64
	stack := append([]int64(nil), adjacency[start]...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
		stack = append(stack, adjacency[id]...)
	}
	return out
}

// IsDirectChild reports whether childID is already a direct child of parentID.
func (h *Hierarchy) IsDirectChild(parentID, childID int64) bool {
	for _, id := range h.children[parentID] {
		if id == childID {
			return true
		}
	}
	return false
}

// CanAttach checks whether the given child edges may be added under
// parentID, against the hierarchy as it exists before the batch. Violations
// are reported in priority order: self-reference (direct, then a cycle
// through the existing graph), then the sub-group limit, then duplicate
// direct children.
func (h *Hierarchy) CanAttach(parentID int64, childIDs []int64) error {
	for _, id := range childIDs {
		if id == parentID {
			return membership.SelfReference("can't add group %d to itself", parentID)
		}
	}
	for _, id := range childIDs {
		for _, desc := range h.Descendants(id) {
			if desc == parentID {
				return membership.SelfReference(
					"adding group %d under group %d would create a cycle", id, parentID)
			}
		}
	}
	if len(h.Descendants(parentID)) >= models.MaxSubGroups {
		return membership.DepthExceeded("group %d has reached the sub-group limit", parentID)
	}
	for _, id := range childIDs {
		if h.IsDirectChild(parentID, id) {
			return membership.AlreadyMember("group %d is already a member of group %d", id, parentID)
		}
	}
	return nil
}
