package model

type MaterialType string

const (
	PDF   MaterialType = "pdf"
	Video MaterialType = "video"
	Image MaterialType = "image"
)

// swagger:model Course
type Course struct {
	UUIDBase
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Topic
type Topic struct {
	UUIDBase
	CourseID string `gorm:"type:varchar(36);index;not null" json:"courseId"`
	Name     string `gorm:"size:255;not null" json:"name"`
	Order    int    `gorm:"default:0" json:"order"`
}

func (Topic) TableName() string {
	return "topics"
}

// swagger:model Material
type Material struct {
	UUIDBase
	CourseID    string       `gorm:"type:varchar(36);index;not null" json:"courseId"`
	Name        string       `gorm:"size:255;not null" json:"name"`
	Type        MaterialType `gorm:"size:20;not null" json:"type"`
	Bucket      string       `gorm:"size:50" json:"bucket"`
	Path        string       `gorm:"size:255" json:"path"`
	Description string       `gorm:"type:text" json:"description"`
	Duration    float64      `gorm:"default:0" json:"duration,omitempty"` // 视频时长（秒）
	Size        int64        `gorm:"default:0" json:"size,omitempty"`
	UploaderID  string       `gorm:"type:varchar(36);index" json:"uploaderId"`
}

func (Material) TableName() string {
	return "materials"
}
