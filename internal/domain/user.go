package domain

import "time"

// User is a storefront account. Password holds the bcrypt hash and is never
// serialized.
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id,string" form:"id"`
	Name      string    `gorm:"size:128" json:"name" form:"name"`
	Email     string    `gorm:"size:200;uniqueIndex" json:"email" form:"email"`
	Password  string    `gorm:"size:128" json:"-" form:"-"`
	IsAdmin   bool      `json:"is_admin" form:"is_admin"`
	LastLogin time.Time `json:"last_login"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (User) TableName() string {
	return "sys_user"
}
