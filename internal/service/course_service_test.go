package service

import (
	"context"
	"edu_portal_backend/internal/gateway"
	"edu_portal_backend/internal/model"
	"edu_portal_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCourseJoinsTopicsAndMaterials(t *testing.T) {
	backend := newFakeBackend()
	course := model.Course{UUIDBase: model.UUIDBase{ID: "c1"}, Name: "Türkçe"}
	backend.courses = []model.Course{course}
	backend.topics = gateway.OK([]model.Topic{{Name: "Paragraf"}})
	backend.materials = gateway.OK([]model.Material{{Name: "paragraf.pdf"}, {Name: "ders.mp4", Bucket: util.BucketVideos, Path: "x.mp4"}})

	svc := NewCourseService(backend)
	detail, err := svc.OpenCourseByName(context.Background(), "Türkçe")
	require.NoError(t, err)
	assert.False(t, detail.Static)
	assert.Len(t, detail.Topics, 1)
	require.Len(t, detail.Materials, 2)
	assert.Equal(t, "/files/pdfs/paragraf.pdf", detail.Materials[0].URL)
	assert.Equal(t, "/files/videos/x.mp4", detail.Materials[1].URL)
}

func TestOpenCourseNilDataBecomesEmpty(t *testing.T) {
	backend := newFakeBackend()
	backend.courses = []model.Course{{UUIDBase: model.UUIDBase{ID: "c1"}, Name: "Rehberlik"}}

	detail, err := NewCourseService(backend).OpenCourseByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.NotNil(t, detail.Topics)
	assert.NotNil(t, detail.Materials)
	assert.Empty(t, detail.Topics)
}

func TestOpenCourseDegradesWhenOneFetchFails(t *testing.T) {
	backend := newFakeBackend()
	backend.topics = gateway.OK([]model.Topic{{Name: "Paragraf"}})
	backend.materials = gateway.Fail[[]model.Material](gateway.NewError(gateway.KindInternal, "query failed"))

	detail, err := NewCourseService(backend).OpenCourse(context.Background(), model.Course{Name: "Türkçe"})
	require.NoError(t, err)
	require.Len(t, detail.Topics, 1)
	assert.Equal(t, "Paragraf", detail.Topics[0].Name)
	assert.NotNil(t, detail.Materials)
	assert.Empty(t, detail.Materials)

	backend.topics = gateway.Fail[[]model.Topic](gateway.NewError(gateway.KindInternal, "query failed"))
	backend.materials = gateway.OK([]model.Material{{Name: "paragraf.pdf"}})

	detail, err = NewCourseService(backend).OpenCourse(context.Background(), model.Course{Name: "Türkçe"})
	require.NoError(t, err)
	assert.NotNil(t, detail.Topics)
	assert.Empty(t, detail.Topics)
	assert.Len(t, detail.Materials, 1)
}

func TestOpenCourseByNameFallsBackToCatalog(t *testing.T) {
	svc := NewCourseService(gateway.NewOfflineBackend(demoURL))

	detail, err := svc.OpenCourseByName(context.Background(), "Türk Dili ve Edebiyatı")
	require.NoError(t, err)
	assert.True(t, detail.Static)
	assert.Len(t, detail.Topics, 6)
	require.Len(t, detail.Materials, 3)
	assert.Equal(t, demoURL, detail.Materials[0].URL)

	_, err = svc.OpenCourseByName(context.Background(), "Fizik")
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestListCoursesOfflineIsEmpty(t *testing.T) {
	courses, err := NewCourseService(gateway.NewOfflineBackend(demoURL)).ListCourses(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, courses)
	assert.Empty(t, courses)
}

func TestMaterialURL(t *testing.T) {
	assert.Equal(t, "/files/pdfs/siir-analizi.pdf", NewCourseService(newFakeBackend()).MaterialURL("siir-analizi.pdf"))
}
