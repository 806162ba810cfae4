package models

import "time"

// Project represents a project with directly-added member users and groups.
type Project struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectMembership links a user to a project they are a direct member of.
type ProjectMembership struct {
	ProjectID int64 `json:"project_id"`
	UserID    int64 `json:"user_id"`
}

// ProjectMember is one row of the flattened member overview: a user together
// with every applicable group name, deduplicated, including ancestors of the
// groups that tie the user to the project.
type ProjectMember struct {
	ID     int64    `json:"id"`
	Name   string   `json:"name"`
	Groups []string `json:"groups"`
}

// ProjectOverview is a project with its effective members flattened across
// the group hierarchy.
type ProjectOverview struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Members []ProjectMember `json:"members"`
}
