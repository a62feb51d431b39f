package service

import (
	"context"
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/dhowden/tag"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tcolgate/mp3"

	"podcast-catalog/internal/domains/upload/model"
	"podcast-catalog/internal/infrastructure/storage"
)

// Limits là kích thước tối đa theo loại asset
type Limits struct {
	MaxAudioBytes int64
	MaxImageBytes int64
}

// UploadService là Asset Upload Gate
type UploadService struct {
	store  storage.ObjectStore
	limits Limits
}

func NewUploadService(store storage.ObjectStore, limits Limits) *UploadService {
	return &UploadService{store: store, limits: limits}
}

func (s *UploadService) maxBytes(kind model.Kind) int64 {
	if kind == model.KindImage {
		return s.limits.MaxImageBytes
	}
	return s.limits.MaxAudioBytes
}

// Upload kiểm tra declared mime type rồi lưu file dưới key <kind>/<uuid><ext>.
// Không có cleanup cho file không được podcast nào tham chiếu.
func (s *UploadService) Upload(ctx context.Context, kind model.Kind, file *model.File) (*model.Asset, error) {
	if file == nil || file.Reader == nil || file.Size == 0 {
		return nil, model.ErrFileMissing
	}

	contentType := normalizeMediaType(file.DeclaredType)
	if !strings.HasPrefix(contentType, string(kind)+"/") {
		return nil, model.ErrWrongType
	}

	if limit := s.maxBytes(kind); limit > 0 && file.Size > limit {
		return nil, model.ErrFileTooLarge
	}

	detected, err := sniff(file.Reader)
	if err != nil {
		return nil, err
	}
	// nội dung text (html, svg, script...) không được lưu dưới dạng media
	if isTextual(detected) {
		log.Warn().
			Str("declared", contentType).
			Str("detected", detected.String()).
			Msg("[UPLOAD] Rejected textual payload")
		return nil, model.ErrWrongType
	}
	ext := extensionFor(kind, contentType, detected)

	asset := &model.Asset{
		Key:         fmt.Sprintf("%s/%s%s", kind, uuid.New(), ext),
		ContentType: contentType,
		Size:        file.Size,
	}

	if kind == model.KindAudio {
		asset.Title, asset.Duration = probeAudio(file.Reader, ext, contentType)
	}

	if _, err := file.Reader.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	url, err := s.store.Put(ctx, asset.Key, file.Reader, file.Size, contentType)
	if err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	// client đã bỏ đi trong lúc ghi: không ai nhận được URL, xóa object luôn
	if err := ctx.Err(); err != nil {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), asset.Key); delErr != nil {
			log.Warn().Err(delErr).Str("key", asset.Key).Msg("[UPLOAD] Failed to remove abandoned asset")
		}
		return nil, err
	}
	asset.URL = url

	log.Info().
		Str("kind", string(kind)).
		Str("key", asset.Key).
		Str("size", humanize.Bytes(uint64(file.Size))).
		Msg("[UPLOAD] Stored asset")

	return asset, nil
}

// normalizeMediaType bỏ parameters (charset...) và lowercase
func normalizeMediaType(declared string) string {
	declared = strings.TrimSpace(declared)
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
		return strings.ToLower(mediaType)
	}
	return strings.ToLower(declared)
}

func sniff(r io.ReadSeeker) (*mimetype.MIME, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}
	detected, err := mimetype.DetectReader(r)
	if err != nil {
		return nil, fmt.Errorf("detect file type: %w", err)
	}
	return detected, nil
}

func isTextual(detected *mimetype.MIME) bool {
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// extensionFor lấy đuôi file từ mime type đã validate, không bao giờ từ tên file client gửi.
// Thứ tự: mimetype registry -> mime package -> nội dung sniff được (nếu cùng kind) -> .bin
func extensionFor(kind model.Kind, contentType string, detected *mimetype.MIME) string {
	if m := mimetype.Lookup(contentType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	if strings.HasPrefix(detected.String(), string(kind)+"/") && detected.Extension() != "" {
		return detected.Extension()
	}
	return ".bin"
}

// probeAudio đọc title (ID3/MP4 tags) và duration (MP3 frames).
// Best-effort: lỗi probe không làm fail upload.
func probeAudio(r io.ReadSeeker, ext, contentType string) (title string, duration *float64) {
	// parser chạy trên file do user gửi lên
	defer func() {
		if p := recover(); p != nil {
			log.Warn().Interface("panic", p).Msg("[UPLOAD] Audio probe failed")
			title, duration = "", nil
		}
	}()

	if _, err := r.Seek(0, io.SeekStart); err == nil {
		if meta, err := tag.ReadFrom(r); err == nil {
			title = strings.TrimSpace(meta.Title())
		}
	}

	if ext != ".mp3" && contentType != "audio/mpeg" && contentType != "audio/mp3" {
		return title, nil
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return title, nil
	}

	var (
		decoder = mp3.NewDecoder(r)
		frame   mp3.Frame
		skipped int
		seconds float64
	)
	for {
		if err := decoder.Decode(&frame, &skipped); err != nil {
			break
		}
		seconds += frame.Duration().Seconds()
	}

	if seconds <= 0 {
		return title, nil
	}
	rounded := float64(int64(seconds + 0.5))
	return title, &rounded
}
