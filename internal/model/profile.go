package model

// swagger:model Profile
type Profile struct {
	UUIDBase
	FullName string   `gorm:"size:100" json:"fullName"`
	Email    string   `gorm:"size:100;index" json:"email"`
	UserType UserRole `gorm:"size:20" json:"userType"`
}

func (Profile) TableName() string {
	return "profiles"
}

// ProfileUpdate 仅非空字段会被写入
type ProfileUpdate struct {
	FullName string   `json:"fullName"`
	Email    string   `json:"email"`
	UserType UserRole `json:"userType"`
}
