package util

import (
	"bytes"
	"edu_portal_backend/internal/model"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	tok, err := GenerateJWT("offline-1700000000000", "ali@example.com", model.Teacher, true, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ParseJWT(tok, "secret")
	require.NoError(t, err)
	assert.Equal(t, "offline-1700000000000", claims.UserID)
	assert.Equal(t, model.Teacher, claims.Role)
	assert.True(t, claims.Offline)

	_, err = ParseJWT(tok, "other")
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	tok, err := GenerateJWT("u1", "a@b.c", model.Student, false, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(tok, "secret")
	assert.Error(t, err)
}

func TestSniffAndRewind(t *testing.T) {
	r := bytes.NewReader([]byte("%PDF-1.7\n%âãÏÓ\n"))
	mime, err := SniffAndRewind(r, []string{MimePDF})
	require.NoError(t, err)
	assert.Equal(t, MimePDF, mime)

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(rest[:8]))

	_, err = SniffAndRewind(bytes.NewReader([]byte("hello")), []string{MimeImage})
	assert.Error(t, err)
}

func TestHasExtension(t *testing.T) {
	assert.True(t, HasExtension("Ders.MP4", AllowedVideoExtensions))
	assert.False(t, HasExtension("ders.mp3", AllowedVideoExtensions))
	assert.True(t, HasExtension("kapak.png", AllowedImageExtensions))
}

func TestParseProbeOutput(t *testing.T) {
	info, err := ParseProbeOutput(`{
		"streams": [{"codec_type": "audio"}, {"codec_type": "video", "width": 1280, "height": 720}],
		"format": {"duration": "63.5", "format_name": "mov,mp4,m4a"}
	}`)
	require.NoError(t, err)
	assert.Equal(t, 63.5, info.Duration)
	assert.Equal(t, 1280, info.Width)
	assert.Equal(t, "mov", info.Format)

	_, err = ParseProbeOutput("not json")
	assert.Error(t, err)
}
