package model

// Test 教师创建的测试
// swagger:model Test
type Test struct {
	UUIDBase
	Name            string     `gorm:"size:255;not null" json:"name"`
	CourseID        string     `gorm:"type:varchar(36);index" json:"courseId"`
	DurationMinutes int        `gorm:"default:10" json:"durationMinutes"`
	AuthorID        string     `gorm:"type:varchar(36);index" json:"authorId"`
	Questions       []Question `gorm:"foreignKey:TestID" json:"questions,omitempty"`
}

func (Test) TableName() string {
	return "tests"
}

// swagger:model Question
type Question struct {
	UUIDBase
	TestID       string   `gorm:"type:varchar(36);index;not null" json:"testId"`
	Text         string   `gorm:"type:text;not null" json:"text"`
	Options      []string `gorm:"serializer:json;type:json" json:"options"`
	CorrectIndex int      `gorm:"not null" json:"correctIndex"`
	Position     int      `gorm:"default:0" json:"position"`
}

func (Question) TableName() string {
	return "questions"
}

// TestResult 一次完成的测验成绩；QuizKind 为内置测验类型或 "test"
// swagger:model TestResult
type TestResult struct {
	UUIDBase
	UserID     string `gorm:"type:varchar(36);index;not null" json:"userId"`
	TestID     string `gorm:"type:varchar(36);index" json:"testId,omitempty"`
	QuizKind   string `gorm:"size:30" json:"quizKind"`
	Correct    int    `gorm:"not null" json:"correct"`
	Total      int    `gorm:"not null" json:"total"`
	Percentage int    `gorm:"not null" json:"percentage"`
	TimedOut   bool   `gorm:"default:false" json:"timedOut"`
	Test       *Test  `gorm:"foreignKey:TestID" json:"test,omitempty"`
}

func (TestResult) TableName() string {
	return "test_results"
}
