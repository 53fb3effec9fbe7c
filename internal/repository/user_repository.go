package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recipehub/internal/apperrors"
	"recipehub/internal/models"
)

// idAllocRetries bounds the max+1 insert loop when concurrent creates race
// on the same id.
const idAllocRetries = 5

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetActiveByID(ctx context.Context, id int64) (*models.User, error)
	NameExists(ctx context.Context, name string) (bool, error)
	FollowerIDs(ctx context.Context, id int64) ([]int64, error)
	FollowingIDs(ctx context.Context, id int64) ([]int64, error)
	UpdateProfile(ctx context.Context, id int64, updates map[string]interface{}) error
	ToggleFollow(ctx context.Context, followerID, followeeID int64) (bool, error)
	DeleteAccount(ctx context.Context, id int64) error
	HighestFollowRatio(ctx context.Context) (*models.FollowRatio, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts the user with id = max+1, retrying a bounded number of
// times when a concurrent insert wins the same id. A name collision is not
// retried; it surfaces as a conflict.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	var lastErr error
	for attempt := 0; attempt < idAllocRetries; attempt++ {
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var nextID int64
			if err := tx.Model(&models.User{}).
				Select("COALESCE(MAX(id), 0) + 1").
				Scan(&nextID).Error; err != nil {
				return err
			}
			user.ID = nextID
			return tx.Create(user).Error
		})
		if err == nil {
			return nil
		}
		if !apperrors.IsDuplicateKey(err) {
			return err
		}
		// The unique name index also reports as a duplicate key; only the
		// id race is worth retrying.
		exists, checkErr := r.NameExists(ctx, user.Name)
		if checkErr != nil {
			return checkErr
		}
		if exists {
			return apperrors.Conflictf("username %q is taken", user.Name)
		}
		lastErr = err
	}
	return apperrors.Conflictf("could not allocate a user id after %d attempts: %v", idAllocRetries, lastErr)
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetActiveByID resolves a user that has not been soft-deleted.
func (r *userRepository) GetActiveByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) NameExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("name = ?", name).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) FollowerIDs(ctx context.Context, id int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.UserFollow{}).
		Where("followee_id = ?", id).
		Order("follower_id").
		Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *userRepository) FollowingIDs(ctx context.Context, id int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&models.UserFollow{}).
		Where("follower_id = ?", id).
		Order("followee_id").
		Pluck("followee_id", &ids).Error
	return ids, err
}

func (r *userRepository) UpdateProfile(ctx context.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ToggleFollow flips the follower->followee edge inside one transaction and
// keeps both cached counters in step. Both user rows are locked in ascending
// id order so two concurrent toggles cannot deadlock. Returns whether the
// edge exists after the call.
func (r *userRepository) ToggleFollow(ctx context.Context, followerID, followeeID int64) (bool, error) {
	var nowFollowing bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lockOrder := []int64{followerID, followeeID}
		if followeeID < followerID {
			lockOrder = []int64{followeeID, followerID}
		}
		for _, id := range lockOrder {
			var locked models.User
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ? AND is_deleted = ?", id, false).
				First(&locked).Error; err != nil {
				return err
			}
		}

		var count int64
		if err := tx.Model(&models.UserFollow{}).
			Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
			Count(&count).Error; err != nil {
			return err
		}

		if count > 0 {
			if err := tx.Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
				Delete(&models.UserFollow{}).Error; err != nil {
				return err
			}
			// Decrements are clamped so a stale counter can never go negative.
			if err := tx.Model(&models.User{}).Where("id = ?", followerID).
				Update("following", gorm.Expr("GREATEST(following - 1, 0)")).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.User{}).Where("id = ?", followeeID).
				Update("followers", gorm.Expr("GREATEST(followers - 1, 0)")).Error; err != nil {
				return err
			}
			nowFollowing = false
			return nil
		}

		edge := models.UserFollow{FollowerID: followerID, FolloweeID: followeeID}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Lost a race with an identical toggle; the edge is already there.
			nowFollowing = true
			return nil
		}
		if err := tx.Model(&models.User{}).Where("id = ?", followerID).
			Update("following", gorm.Expr("following + 1")).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("id = ?", followeeID).
			Update("followers", gorm.Expr("followers + 1")).Error; err != nil {
			return err
		}
		nowFollowing = true
		return nil
	})
	return nowFollowing, err
}

// DeleteAccount soft-deletes the user and purges its follow edges. Every
// neighbor touched by a removed edge has its counters recounted from the
// surviving edges rather than decremented blindly.
func (r *userRepository) DeleteAccount(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_deleted = ?", id, false).
			First(&user).Error; err != nil {
			return err
		}

		var neighborIDs []int64
		if err := tx.Model(&models.UserFollow{}).
			Distinct().
			Where("follower_id = ?", id).
			Pluck("followee_id", &neighborIDs).Error; err != nil {
			return err
		}
		var followerIDs []int64
		if err := tx.Model(&models.UserFollow{}).
			Distinct().
			Where("followee_id = ?", id).
			Pluck("follower_id", &followerIDs).Error; err != nil {
			return err
		}
		neighborIDs = append(neighborIDs, followerIDs...)

		if err := tx.Where("follower_id = ? OR followee_id = ?", id, id).
			Delete(&models.UserFollow{}).Error; err != nil {
			return err
		}

		seen := make(map[int64]bool, len(neighborIDs))
		for _, neighborID := range neighborIDs {
			if neighborID == id || seen[neighborID] {
				continue
			}
			seen[neighborID] = true
			err := tx.Model(&models.User{}).Where("id = ?", neighborID).
				Updates(map[string]interface{}{
					"followers": gorm.Expr("(SELECT COUNT(*) FROM user_follows WHERE followee_id = ?)", neighborID),
					"following": gorm.Expr("(SELECT COUNT(*) FROM user_follows WHERE follower_id = ?)", neighborID),
				}).Error
			if err != nil {
				return err
			}
		}

		return tx.Model(&models.User{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"is_deleted": true,
				"followers":  0,
				"following":  0,
			}).Error
	})
}

// HighestFollowRatio computes followers/following per active user from the
// live edge table and returns the maximum, ties broken by lowest id. Users
// who follow nobody are excluded; nil when no user qualifies.
func (r *userRepository) HighestFollowRatio(ctx context.Context) (*models.FollowRatio, error) {
	const query = `
		SELECT u.id AS user_id,
		       (SELECT COUNT(*) FROM user_follows WHERE followee_id = u.id)::float /
		       (SELECT COUNT(*) FROM user_follows WHERE follower_id = u.id) AS ratio
		FROM users u
		WHERE u.is_deleted = false
		  AND (SELECT COUNT(*) FROM user_follows WHERE follower_id = u.id) > 0
		ORDER BY ratio DESC, u.id ASC
		LIMIT 1`

	var result models.FollowRatio
	err := r.db.WithContext(ctx).Raw(query).Scan(&result).Error
	if err != nil {
		return nil, err
	}
	if result.UserID == 0 {
		return nil, nil
	}
	return &result, nil
}
