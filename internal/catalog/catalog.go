// Package catalog 内置测验与静态课程目录，数据库中没有对应课程时作为兜底
package catalog

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"

	"edu_portal_backend/internal/quiz"

	"gopkg.in/yaml.v3"
)

const (
	KindQuick         = "quick"
	KindGroup         = "group"
	KindComprehensive = "comprehensive"
)

//go:embed catalog.yaml
var raw []byte

type quizEntry struct {
	Title            string          `yaml:"title"`
	TimeLimitSeconds int             `yaml:"time_limit_seconds"`
	IsGroup          bool            `yaml:"is_group"`
	Questions        []quiz.Question `yaml:"questions"`
}

type Course struct {
	Name      string   `yaml:"name" json:"name"`
	Topics    []string `yaml:"topics" json:"topics"`
	Materials []string `yaml:"materials" json:"materials"`
}

type document struct {
	Quizzes map[string]quizEntry `yaml:"quizzes"`
	Courses []Course             `yaml:"courses"`
}

var doc document

func init() {
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		panic(fmt.Sprintf("catalog: invalid embedded document: %v", err))
	}
	for kind, entry := range doc.Quizzes {
		q := quiz.Quiz{Kind: kind, Questions: entry.Questions}
		if err := q.Validate(); err != nil {
			panic(fmt.Sprintf("catalog: quiz %q: %v", kind, err))
		}
	}
}

// Kinds 按字母序返回所有内置测验类型
func Kinds() []string {
	kinds := make([]string, 0, len(doc.Quizzes))
	for k := range doc.Quizzes {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Quiz 每次调用都返回新的副本；小组测验会生成新的六位以内数字码
func Quiz(kind string) (quiz.Quiz, bool) {
	entry, ok := doc.Quizzes[kind]
	if !ok {
		return quiz.Quiz{}, false
	}

	questions := make([]quiz.Question, len(entry.Questions))
	for i, q := range entry.Questions {
		options := make([]string, len(q.Options))
		copy(options, q.Options)
		questions[i] = quiz.Question{Text: q.Text, Options: options, CorrectIndex: q.CorrectIndex}
	}

	q := quiz.Quiz{
		Kind:             kind,
		Title:            entry.Title,
		Questions:        questions,
		TimeLimitSeconds: entry.TimeLimitSeconds,
		IsGroup:          entry.IsGroup,
	}
	if q.IsGroup {
		q.GroupCode = GroupCode()
	}
	return q, true
}

func GroupCode() string {
	return strconv.Itoa(rand.IntN(1000000))
}

func Courses() []Course {
	out := make([]Course, len(doc.Courses))
	copy(out, doc.Courses)
	return out
}

func CourseByName(name string) (Course, bool) {
	for _, c := range doc.Courses {
		if c.Name == name {
			return c, true
		}
	}
	return Course{}, false
}
