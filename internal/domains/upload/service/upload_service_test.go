package service

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podcast-catalog/internal/domains/upload/model"
	"podcast-catalog/internal/infrastructure/storage"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func newService(t *testing.T) (*UploadService, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir, "http://localhost:5000/uploads")
	require.NoError(t, err)
	return NewUploadService(store, Limits{MaxAudioBytes: 1 << 20, MaxImageBytes: 64}), dir
}

func file(name, declared string, body []byte) *model.File {
	return &model.File{
		Name:         name,
		Size:         int64(len(body)),
		DeclaredType: declared,
		Reader:       bytes.NewReader(body),
	}
}

func TestUploadImage(t *testing.T) {
	svc, dir := newService(t)

	asset, err := svc.Upload(context.Background(), model.KindImage, file("Cover.PNG", "image/png", pngHeader))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(asset.Key, "image/"))
	assert.True(t, strings.HasSuffix(asset.Key, ".png"))
	assert.Equal(t, "http://localhost:5000/uploads/"+asset.Key, asset.URL)

	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(asset.Key)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)
}

func TestUploadKeysAreUnique(t *testing.T) {
	svc, _ := newService(t)

	a, err := svc.Upload(context.Background(), model.KindImage, file("a.png", "image/png", pngHeader))
	require.NoError(t, err)
	b, err := svc.Upload(context.Background(), model.KindImage, file("a.png", "image/png", pngHeader))
	require.NoError(t, err)
	assert.NotEqual(t, a.URL, b.URL)
}

func TestUploadRejectsWrongType(t *testing.T) {
	svc, dir := newService(t)

	_, err := svc.Upload(context.Background(), model.KindAudio, file("notes.txt", "text/plain", []byte("hello")))
	assert.ErrorIs(t, err, model.ErrWrongType)

	_, err = svc.Upload(context.Background(), model.KindImage, file("song.mp3", "audio/mpeg", []byte("ID3")))
	assert.ErrorIs(t, err, model.ErrWrongType)

	// không có file nào được ghi
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadDeclaredTypeWithParameters(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Upload(context.Background(), model.KindAudio, file("a.ogg", "Audio/Ogg; codecs=opus", []byte("OggS\x00\x02\x00\x00\x00\x00\x00\x00\x00\x00")))
	assert.NoError(t, err)
}

func TestUploadMissingFile(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Upload(context.Background(), model.KindAudio, nil)
	assert.ErrorIs(t, err, model.ErrFileMissing)

	_, err = svc.Upload(context.Background(), model.KindAudio, file("empty.mp3", "audio/mpeg", nil))
	assert.ErrorIs(t, err, model.ErrFileMissing)
}

func TestUploadTooLarge(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Upload(context.Background(), model.KindImage, file("big.png", "image/png", bytes.Repeat([]byte{1}, 65)))
	assert.ErrorIs(t, err, model.ErrFileTooLarge)
}

func TestUploadExtensionComesFromValidatedType(t *testing.T) {
	svc, _ := newService(t)

	asset, err := svc.Upload(context.Background(), model.KindImage, file("blob", "image/png", pngHeader))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(asset.Key, ".png"), asset.Key)

	// tên file client gửi không quyết định đuôi file được serve
	asset, err = svc.Upload(context.Background(), model.KindAudio,
		file("evil.html", "audio/mpeg", []byte("ID3\x03\x00\x00\x00\x00\x00\x00")))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(asset.Key, ".mp3"), asset.Key)
}

func TestUploadRejectsTextualPayload(t *testing.T) {
	svc, dir := newService(t)

	for name, body := range map[string]string{
		"evil.html": "<html><body><script>alert(1)</script></body></html>",
		"evil.svg":  `<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`,
		"plain.mp3": "just some words",
	} {
		_, err := svc.Upload(context.Background(), model.KindAudio, file(name, "audio/mpeg", []byte(body)))
		assert.ErrorIs(t, err, model.ErrWrongType, name)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// cancelingStore giả lập client ngắt kết nối ngay sau khi Put xong
type cancelingStore struct {
	cancel  context.CancelFunc
	deleted []string
}

func (s *cancelingStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	s.cancel()
	return "http://store/" + key, nil
}

func (s *cancelingStore) Delete(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return ctx.Err()
}

func TestUploadRemovesAssetWhenRequestAbandoned(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := &cancelingStore{cancel: cancel}
	svc := NewUploadService(store, Limits{MaxImageBytes: 1 << 10})

	asset, err := svc.Upload(ctx, model.KindImage, file("a.png", "image/png", pngHeader))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, asset)
	require.Len(t, store.deleted, 1)
	assert.True(t, strings.HasPrefix(store.deleted[0], "image/"))
}

func TestUploadAudioProbeIsBestEffort(t *testing.T) {
	svc, _ := newService(t)

	// không phải mp3 hợp lệ: upload vẫn thành công, không có metadata
	asset, err := svc.Upload(context.Background(), model.KindAudio, file("ep.mp3", "audio/mpeg", []byte{0x00, 0x01, 0x02, 0xfe, 0xff, 0x10, 0x20, 0x30}))
	require.NoError(t, err)
	assert.Empty(t, asset.Title)
	assert.Nil(t, asset.Duration)
	assert.True(t, strings.HasSuffix(asset.Key, ".mp3"))
}

func TestNormalizeMediaType(t *testing.T) {
	assert.Equal(t, "audio/mpeg", normalizeMediaType(" audio/mpeg "))
	assert.Equal(t, "audio/ogg", normalizeMediaType("AUDIO/OGG; codecs=vorbis"))
	assert.Equal(t, "", normalizeMediaType(""))
}
