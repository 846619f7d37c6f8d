package model

import "errors"

const (
	MaxIconSizeBytes = 5 * 1024 * 1024
	IconWidth        = 200
	IconHeight       = 200
	IconFolder       = "icons"
	IconExt          = ".jpg"
	IconCacheControl = "public, max-age=31536000"

	AttachmentFolder      = "attachments"
	MaxAttachmentSize     = 10 * 1024 * 1024
	AttachmentPresignTTLS = 900
)

// Supported image content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
)

var allowedImageTypes = map[string]string{
	ContentTypeJPEG: ".jpg",
	ContentTypePNG:  ".png",
	ContentTypeGIF:  ".gif",
	ContentTypeWebP: ".webp",
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
)

var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
	ErrMediaDisabled    = errors.New("media storage is not configured")
)

// UploadResult is the stored object location.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// PresignAttachmentRequest asks for a direct-to-bucket upload URL. The
// returned PublicURL is what the client sends as a tweet attachment.
type PresignAttachmentRequest struct {
	ContentType string `json:"content_type"`
	FileSize    int64  `json:"file_size"`
}

type PresignAttachmentResponse struct {
	UploadURL  string `json:"upload_url"`
	PublicURL  string `json:"public_url"`
	Key        string `json:"key"`
	ExpiresInS int    `json:"expires_in"`
}

// IsAllowedImageType reports if the provided content type is supported
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// ImageExt returns the object extension for a supported content type.
func ImageExt(contentType string) string {
	return allowedImageTypes[contentType]
}
