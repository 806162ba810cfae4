package models

import "time"

// MaxUserGroups is the maximum number of groups a single user may belong to.
const MaxUserGroups = 5

// MaxSubGroups is the maximum number of transitive sub-groups a group may
// hold; a new child edge is rejected once the count reaches this limit.
const MaxSubGroups = 5

// Group represents a named set of users. Groups nest inside other groups
// through hierarchy edges; the nesting graph is a DAG, not a tree, so a
// group may have several parents.
type Group struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// HierarchyEdge is a directed parent→child edge in the group nesting graph.
type HierarchyEdge struct {
	ParentGroupID int64 `json:"parent_group_id"`
	ChildGroupID  int64 `json:"child_group_id"`
}

// GroupMembership links a user to a group they are a direct member of.
type GroupMembership struct {
	GroupID int64 `json:"group_id"`
	UserID  int64 `json:"user_id"`
}
