package store

import (
	"context"
	"database/sql"
	"time"
)

// SubscriptionRepository handles the follower/followee relation between users.
type SubscriptionRepository struct {
	db *sql.DB
}

func NewSubscriptionRepository(db *sql.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Exists reports whether userID follows followeeID.
func (r *SubscriptionRepository) Exists(ctx context.Context, userID, followeeID int) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM subscriptions
			WHERE user_id = $1 AND subscription_id = $2
		)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, followeeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts the (follower, followee) pair.
// Returns ErrAlreadyExists when the pair is already present.
func (r *SubscriptionRepository) Create(ctx context.Context, userID, followeeID int) error {
	const query = `
		INSERT INTO subscriptions (user_id, subscription_id, created_at)
		VALUES ($1, $2, $3)`
	if _, err := r.db.ExecContext(ctx, query, userID, followeeID, time.Now()); err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

// Delete removes the (follower, followee) pair.
// Returns ErrNotFound when the pair does not exist.
func (r *SubscriptionRepository) Delete(ctx context.Context, userID, followeeID int) error {
	const query = `
		DELETE FROM subscriptions
		WHERE user_id = $1 AND subscription_id = $2`
	result, err := r.db.ExecContext(ctx, query, userID, followeeID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFollowees returns a page of the users userID is subscribed to,
// ordered by subscription id, with the total count.
func (r *SubscriptionRepository) ListFollowees(ctx context.Context, userID, offset, limit int) ([]int, int, error) {
	const countQuery = `SELECT COUNT(1) FROM subscriptions WHERE user_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT subscription_id
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY id
		OFFSET $2 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, listQuery, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	ids := make([]int, 0, limit)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return ids, total, nil
}

// FolloweeSet returns the set of user ids the given user is subscribed to.
func (r *SubscriptionRepository) FolloweeSet(ctx context.Context, userID int) (map[int]bool, error) {
	const query = `
		SELECT subscription_id
		FROM subscriptions
		WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[int]bool)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		set[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return set, nil
}
