package model

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
)

func (r UserRole) Valid() bool {
	return r == Student || r == Teacher
}

// User 认证凭据，资料信息在 Profile 中
// swagger:model User
type User struct {
	UUIDBase
	Email    string `gorm:"size:100;unique;not null" json:"email"`
	Password string `gorm:"size:100;not null" json:"-"`
	FullName string `gorm:"size:100" json:"fullName"`
	UserType string `gorm:"size:20" json:"userType"`
}

func (User) TableName() string {
	return "users"
}
