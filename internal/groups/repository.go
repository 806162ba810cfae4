package groups

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamgrid/backend/internal/models"
)

// Repository implements Store against PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a groups repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetGroup returns a group by id, or nil if it does not exist.
func (r *Repository) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	const q = `SELECT id, name, created_at FROM groups WHERE id = $1`
	var g models.Group
	err := r.pool.QueryRow(ctx, q, id).Scan(&g.ID, &g.Name, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return &g, nil
}

// GetUser returns a user by id, or nil if it does not exist.
func (r *Repository) GetUser(ctx context.Context, id int64) (*models.User, error) {
	const q = `SELECT id, first_name, last_name, created_at FROM users WHERE id = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.FirstName, &u.LastName, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// GetUsersByIDs returns the users that exist among ids, ordered by id.
func (r *Repository) GetUsersByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	const q = `SELECT id, first_name, last_name, created_at FROM users WHERE id = ANY($1) ORDER BY id`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("get users by ids: %w", err)
	}
	defer rows.Close()
	var list []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.FirstName, &u.LastName, &u.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

// GetGroupsByIDs returns the groups that exist among ids, ordered by id.
func (r *Repository) GetGroupsByIDs(ctx context.Context, ids []int64) ([]*models.Group, error) {
	const q = `SELECT id, name, created_at FROM groups WHERE id = ANY($1) ORDER BY id`
	rows, err := r.pool.Query(ctx, q, ids)
	if err != nil {
		return nil, fmt.Errorf("get groups by ids: %w", err)
	}
	defer rows.Close()
	var list []*models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &g)
	}
	return list, rows.Err()
}

// ListHierarchyEdges returns every parent→child edge in the nesting graph.
func (r *Repository) ListHierarchyEdges(ctx context.Context) ([]models.HierarchyEdge, error) {
	const q = `SELECT parent_group_id, child_group_id FROM group_hierarchy`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list hierarchy edges: %w", err)
	}
	defer rows.Close()
	var edges []models.HierarchyEdge
	for rows.Next() {
		var e models.HierarchyEdge
		if err := rows.Scan(&e.ParentGroupID, &e.ChildGroupID); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// GroupIDsByUsers returns the direct group memberships of each given user.
func (r *Repository) GroupIDsByUsers(ctx context.Context, userIDs []int64) (map[int64][]int64, error) {
	const q = `SELECT user_id, group_id FROM groups_members WHERE user_id = ANY($1)`
	rows, err := r.pool.Query(ctx, q, userIDs)
	if err != nil {
		return nil, fmt.Errorf("group ids by users: %w", err)
	}
	defer rows.Close()
	out := make(map[int64][]int64)
	for rows.Next() {
		var userID, groupID int64
		if err := rows.Scan(&userID, &groupID); err != nil {
			return nil, err
		}
		out[userID] = append(out[userID], groupID)
	}
	return out, rows.Err()
}

// IsMember reports whether the user is a direct member of the group.
func (r *Repository) IsMember(ctx context.Context, groupID, userID int64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM groups_members WHERE group_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, groupID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("is member: %w", err)
	}
	return exists, nil
}

// AddMembers inserts one membership edge per user inside a single
// transaction; either all edges are written or none.
func (r *Repository) AddMembers(ctx context.Context, groupID int64, userIDs []int64) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		const q = `INSERT INTO groups_members (group_id, user_id) VALUES ($1, $2)`
		for _, userID := range userIDs {
			if _, err := tx.Exec(ctx, q, groupID, userID); err != nil {
				return fmt.Errorf("add member %d: %w", userID, err)
			}
		}
		return nil
	})
}

// RemoveMember deletes a single membership edge.
func (r *Repository) RemoveMember(ctx context.Context, groupID, userID int64) error {
	const q = `DELETE FROM groups_members WHERE group_id = $1 AND user_id = $2`
	if _, err := r.pool.Exec(ctx, q, groupID, userID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

// AddSubGroups inserts one hierarchy edge per child inside a single
// transaction.
func (r *Repository) AddSubGroups(ctx context.Context, parentID int64, childIDs []int64) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		const q = `INSERT INTO group_hierarchy (parent_group_id, child_group_id) VALUES ($1, $2)`
		for _, childID := range childIDs {
			if _, err := tx.Exec(ctx, q, parentID, childID); err != nil {
				return fmt.Errorf("add sub-group %d: %w", childID, err)
			}
		}
		return nil
	})
}

func (r *Repository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
