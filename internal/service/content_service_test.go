package service

import (
	"bytes"
	"context"
	"edu_portal_backend/internal/gateway"
	"edu_portal_backend/internal/model"
	"edu_portal_backend/internal/util"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDraft() TestDraft {
	return TestDraft{
		Name:     "Ünite Testi",
		CourseID: "c1",
		Questions: []QuestionDraft{
			{Text: "Soru 1", Options: []string{"A", "B", "C", "D"}, CorrectIndex: 2},
			{Text: "Soru 2", Options: []string{"A", "B", "C", "D"}, CorrectIndex: 0},
		},
	}
}

func TestCreateTest(t *testing.T) {
	backend := newFakeBackend()
	svc := NewContentService(backend)

	test, err := svc.CreateTest(context.Background(), "teacher-1", validDraft())
	require.NoError(t, err)
	assert.Equal(t, "t-new", test.ID)
	assert.Equal(t, defaultTestDurationMinutes, test.DurationMinutes)
	assert.Equal(t, "teacher-1", test.AuthorID)
	require.Len(t, test.Questions, 2)
	assert.Equal(t, 1, test.Questions[1].Position)
}

func TestCreateTestValidation(t *testing.T) {
	cases := map[string]func(d *TestDraft){
		"empty name":        func(d *TestDraft) { d.Name = "  " },
		"negative duration": func(d *TestDraft) { d.DurationMinutes = -5 },
		"no questions":      func(d *TestDraft) { d.Questions = nil },
		"three options":     func(d *TestDraft) { d.Questions[0].Options = []string{"A", "B", "C"} },
		"blank option":      func(d *TestDraft) { d.Questions[0].Options[3] = "" },
		"correct too high":  func(d *TestDraft) { d.Questions[1].CorrectIndex = 4 },
		"blank question":    func(d *TestDraft) { d.Questions[1].Text = "" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			backend := newFakeBackend()
			draft := validDraft()
			mutate(&draft)

			_, err := NewContentService(backend).CreateTest(context.Background(), "teacher-1", draft)
			assert.ErrorIs(t, err, util.ErrInvalidTestDraft)
			assert.Empty(t, backend.created)
		})
	}
}

func TestCreateTestOffline(t *testing.T) {
	svc := NewContentService(gateway.NewOfflineBackend(demoURL))

	test, err := svc.CreateTest(context.Background(), "offline-1", validDraft())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(test.ID, "offline-"))
}

func TestUploadPDFMaterial(t *testing.T) {
	backend := newFakeBackend()
	svc := NewContentService(backend)
	body := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

	link, err := svc.UploadMaterial(context.Background(), "teacher-1", MaterialUpload{
		Kind:        model.PDF,
		CourseID:    "c1",
		Description: "Ses bilgisi özeti",
		FileName:    "ses-bilgisi.pdf",
		Size:        int64(len(body)),
		Body:        bytes.NewReader(body),
	})
	require.NoError(t, err)
	assert.Equal(t, util.BucketPDFs, link.Bucket)
	assert.Equal(t, "ses-bilgisi.pdf", link.Name)
	assert.True(t, strings.HasSuffix(link.Path, ".pdf"))
	assert.Equal(t, "/files/pdfs/"+link.Path, link.URL)

	// 类型检测后回到开头，完整内容被上传
	assert.Equal(t, body, backend.uploads["pdfs/"+link.Path])
}

func TestUploadRejectsMismatchedContent(t *testing.T) {
	backend := newFakeBackend()
	svc := NewContentService(backend)

	_, err := svc.UploadMaterial(context.Background(), "teacher-1", MaterialUpload{
		Kind:     model.PDF,
		FileName: "notes.pdf",
		Size:     11,
		Body:     bytes.NewReader([]byte("plain text!")),
	})
	assert.ErrorIs(t, err, util.ErrInvalidFileType)
	assert.Empty(t, backend.uploads)
}

func TestUploadRejectsBadExtensionAndKind(t *testing.T) {
	svc := NewContentService(newFakeBackend())

	_, err := svc.UploadMaterial(context.Background(), "teacher-1", MaterialUpload{
		Kind: model.Video, FileName: "clip.txt", Size: 1, Body: bytes.NewReader([]byte{0}),
	})
	assert.ErrorIs(t, err, util.ErrInvalidVideoExt)

	_, err = svc.UploadMaterial(context.Background(), "teacher-1", MaterialUpload{
		Kind: "audio", FileName: "a.mp3", Size: 1, Body: bytes.NewReader([]byte{0}),
	})
	assert.ErrorIs(t, err, util.ErrInvalidMaterial)

	_, err = svc.UploadMaterial(context.Background(), "teacher-1", MaterialUpload{Kind: model.PDF, FileName: "a.pdf"})
	assert.ErrorIs(t, err, util.ErrMissingUploadFile)
}

func TestUploadVideoProbesDuration(t *testing.T) {
	backend := newFakeBackend()
	svc := NewContentService(backend)
	var probed string
	svc.ProbeVideo = func(path string) (float64, error) {
		probed = path
		return 42.5, nil
	}
	body := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}

	link, err := svc.UploadMaterial(context.Background(), "teacher-1", MaterialUpload{
		Kind: model.Video, FileName: "ders.mp4", Size: int64(len(body)), Body: bytes.NewReader(body),
	})
	require.NoError(t, err)
	assert.Equal(t, 42.5, link.Duration)
	assert.Equal(t, util.BucketVideos, link.Bucket)
	assert.Equal(t, body, backend.uploads["videos/"+link.Path])

	_, statErr := os.Stat(probed)
	assert.True(t, os.IsNotExist(statErr), "temporary file should be removed")
}

func TestUploadVideoProbeFailureIsIgnored(t *testing.T) {
	svc := NewContentService(newFakeBackend())
	svc.ProbeVideo = func(string) (float64, error) { return 0, errors.New("ffprobe not found") }

	link, err := svc.UploadMaterial(context.Background(), "teacher-1", MaterialUpload{
		Kind: model.Video, FileName: "ders.webm", Size: 4, Body: bytes.NewReader([]byte{0, 1, 2, 3}),
	})
	require.NoError(t, err)
	assert.Zero(t, link.Duration)
}

func TestResultsOfflineIsEmpty(t *testing.T) {
	results, err := NewContentService(gateway.NewOfflineBackend(demoURL)).Results(context.Background(), "u1")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}
