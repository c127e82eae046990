package domain

import "io"

// MaxImageSize caps uploaded recipe and category images at 5 MB.
const MaxImageSize = 5 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// ImageExt returns the file extension for an allowed image content type,
// or false when the type is not accepted.
func ImageExt(contentType string) (string, bool) {
	ext, ok := allowedImageTypes[contentType]
	return ext, ok
}

// ImageUpload carries a multipart image file from the transport layer to a service.
type ImageUpload struct {
	Body        io.Reader
	ContentType string
	Size        int64
}
