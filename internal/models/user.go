package models

// User is a platform account. IDs are allocated by the service layer
// (max+1 with bounded retries), not by the database.
type User struct {
	ID        int64  `json:"id" gorm:"primaryKey"`
	Name      string `json:"name" gorm:"uniqueIndex;not null"`
	Password  string `json:"-" gorm:"column:password_hash;not null"`
	Gender    string `json:"gender" gorm:"not null"`
	Age       int    `json:"age" gorm:"not null"`
	IsDeleted bool   `json:"-" gorm:"not null;default:false"`

	// Cached edge counters, maintained transactionally with user_follows.
	Followers int `json:"followers" gorm:"not null;default:0"`
	Following int `json:"following" gorm:"not null;default:0"`
}

func (User) TableName() string {
	return "users"
}

// UserFollow is a directed follow edge: follower -> followee.
type UserFollow struct {
	FollowerID int64 `json:"follower_id" gorm:"primaryKey;autoIncrement:false"`
	FolloweeID int64 `json:"followee_id" gorm:"primaryKey;autoIncrement:false"`
}

func (UserFollow) TableName() string {
	return "user_follows"
}
