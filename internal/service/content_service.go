package service

import (
	"context"
	"edu_portal_backend/internal/gateway"
	"edu_portal_backend/internal/model"
	"edu_portal_backend/internal/quiz"
	"edu_portal_backend/internal/util"
	"edu_portal_backend/pkg/logger"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultTestDurationMinutes = 10

// ContentBackend 教师内容工具需要的网关能力
type ContentBackend interface {
	CreateTest(ctx context.Context, test *model.Test) gateway.Result[*model.Test]
	GetTests(ctx context.Context, courseID string) gateway.Result[[]model.Test]
	GetTestResults(ctx context.Context, userID string) gateway.Result[[]model.TestResult]
	CreateMaterial(ctx context.Context, material *model.Material) gateway.Result[*model.Material]
	UploadFile(ctx context.Context, bucket, path string, reader io.Reader, size int64, contentType string) gateway.Result[string]
	GetFileURL(bucket, path string) string
}

type QuestionDraft struct {
	Text         string   `json:"text" binding:"required"`
	Options      []string `json:"options" binding:"required"`
	CorrectIndex int      `json:"correctIndex"`
}

// TestDraft 教师提交的新测试
type TestDraft struct {
	Name            string          `json:"name" binding:"required"`
	CourseID        string          `json:"courseId"`
	DurationMinutes int             `json:"durationMinutes"`
	Questions       []QuestionDraft `json:"questions" binding:"required"`
}

// MaterialUpload 待上传的教学资料；Body 需支持回绕以便检测类型
type MaterialUpload struct {
	Kind        model.MaterialType
	CourseID    string
	Description string
	FileName    string
	Size        int64
	Body        io.ReadSeeker
}

type ContentService struct {
	Backend ContentBackend
	// ProbeVideo 返回视频时长（秒），默认调用 ffprobe
	ProbeVideo func(path string) (float64, error)
}

func NewContentService(backend ContentBackend) *ContentService {
	return &ContentService{
		Backend: backend,
		ProbeVideo: func(path string) (float64, error) {
			info, err := util.GetVideoInfo(path)
			if err != nil {
				return 0, err
			}
			return info.Duration, nil
		},
	}
}

func (d TestDraft) toModel(authorID string) (*model.Test, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", util.ErrInvalidTestDraft)
	}
	duration := d.DurationMinutes
	if duration == 0 {
		duration = defaultTestDurationMinutes
	}
	if duration < 1 {
		return nil, fmt.Errorf("%w: duration must be at least 1 minute", util.ErrInvalidTestDraft)
	}
	if len(d.Questions) == 0 {
		return nil, fmt.Errorf("%w: at least one question is required", util.ErrInvalidTestDraft)
	}

	test := &model.Test{
		Name:            name,
		CourseID:        d.CourseID,
		DurationMinutes: duration,
		AuthorID:        authorID,
	}
	for i, q := range d.Questions {
		text := strings.TrimSpace(q.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: question %d has no text", util.ErrInvalidTestDraft, i+1)
		}
		if len(q.Options) != quiz.OptionCount {
			return nil, fmt.Errorf("%w: question %d needs %d options", util.ErrInvalidTestDraft, i+1, quiz.OptionCount)
		}
		for _, opt := range q.Options {
			if strings.TrimSpace(opt) == "" {
				return nil, fmt.Errorf("%w: question %d has an empty option", util.ErrInvalidTestDraft, i+1)
			}
		}
		if q.CorrectIndex < 0 || q.CorrectIndex >= quiz.OptionCount {
			return nil, fmt.Errorf("%w: question %d correct answer out of range", util.ErrInvalidTestDraft, i+1)
		}
		test.Questions = append(test.Questions, model.Question{
			Text:         text,
			Options:      append([]string(nil), q.Options...),
			CorrectIndex: q.CorrectIndex,
			Position:     i,
		})
	}
	return test, nil
}

func (s *ContentService) CreateTest(ctx context.Context, authorID string, draft TestDraft) (*model.Test, error) {
	test, err := draft.toModel(authorID)
	if err != nil {
		return nil, err
	}

	res := s.Backend.CreateTest(ctx, test)
	if res.Error != nil {
		return nil, res.Error
	}
	logger.Log.Info("Test created",
		zap.String("author_id", authorID),
		zap.String("name", test.Name),
		zap.Int("questions", len(test.Questions)))
	return res.Data, nil
}

func (s *ContentService) ListTests(ctx context.Context, courseID string) ([]model.Test, error) {
	res := s.Backend.GetTests(ctx, courseID)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.Data == nil {
		return []model.Test{}, nil
	}
	return res.Data, nil
}

func (s *ContentService) Results(ctx context.Context, userID string) ([]model.TestResult, error) {
	res := s.Backend.GetTestResults(ctx, userID)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.Data == nil {
		return []model.TestResult{}, nil
	}
	return res.Data, nil
}

func bucketFor(kind model.MaterialType) (string, []string, []string, error) {
	switch kind {
	case model.PDF:
		return util.BucketPDFs, []string{util.MimePDF}, []string{".pdf"}, nil
	case model.Video:
		// mkv/webm 会被识别为 video/webm，部分容器只能识别为 octet-stream
		return util.BucketVideos, []string{util.MimeVideo, util.MimeOctetStream}, util.AllowedVideoExtensions, nil
	case model.Image:
		return util.BucketImages, []string{util.MimeImage}, util.AllowedImageExtensions, nil
	default:
		return "", nil, nil, util.ErrInvalidMaterial
	}
}

// UploadMaterial 校验文件内容、上传到对应桶并登记资料
func (s *ContentService) UploadMaterial(ctx context.Context, uploaderID string, up MaterialUpload) (*MaterialLink, error) {
	if up.Body == nil {
		return nil, util.ErrMissingUploadFile
	}
	if up.Size > util.MaxUploadSize {
		return nil, util.ErrFileTooLarge
	}

	bucket, mimeTypes, exts, err := bucketFor(up.Kind)
	if err != nil {
		return nil, err
	}
	if !util.HasExtension(up.FileName, exts) {
		switch up.Kind {
		case model.Video:
			return nil, util.ErrInvalidVideoExt
		case model.Image:
			return nil, util.ErrInvalidImageExt
		default:
			return nil, util.ErrInvalidFileType
		}
	}

	contentType, err := util.SniffAndRewind(up.Body, mimeTypes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrInvalidFileType, err)
	}

	material := &model.Material{
		CourseID:    up.CourseID,
		Name:        filepath.Base(up.FileName),
		Type:        up.Kind,
		Bucket:      bucket,
		Description: up.Description,
		Size:        up.Size,
		UploaderID:  uploaderID,
	}
	material.Path = time.Now().Format("20060102150405") + "_" + uuid.NewString()[:8] + strings.ToLower(filepath.Ext(up.FileName))

	body := io.Reader(up.Body)
	if up.Kind == model.Video {
		tmp, duration, err := s.spool(up.Body, filepath.Ext(up.FileName))
		if err != nil {
			return nil, err
		}
		defer func() {
			tmp.Close()
			os.Remove(tmp.Name())
		}()
		material.Duration = duration
		body = tmp
	}

	uploaded := s.Backend.UploadFile(ctx, bucket, material.Path, body, up.Size, contentType)
	if uploaded.Error != nil {
		return nil, uploaded.Error
	}

	created := s.Backend.CreateMaterial(ctx, material)
	if created.Error != nil {
		return nil, created.Error
	}

	logger.Log.Info("Material uploaded",
		zap.String("uploader_id", uploaderID),
		zap.String("bucket", bucket),
		zap.String("path", material.Path))

	saved := material
	if created.Data != nil {
		saved = created.Data
	}
	return &MaterialLink{Material: *saved, URL: s.Backend.GetFileURL(bucket, saved.Path)}, nil
}

// spool 视频写入临时文件供 ffprobe 读取；探测失败时时长记为 0
func (s *ContentService) spool(src io.Reader, ext string) (*os.File, float64, error) {
	tmp, err := os.CreateTemp("", "material-*"+ext)
	if err != nil {
		return nil, 0, err
	}
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, 0, err
	}

	var duration float64
	if s.ProbeVideo != nil {
		d, err := s.ProbeVideo(tmp.Name())
		if err != nil {
			logger.Log.Warn("Failed to probe video duration", zap.Error(err))
		} else {
			duration = d
		}
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, 0, err
	}
	return tmp, duration, nil
}
