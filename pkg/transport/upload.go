package transport

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"storefront/pkg/common/domain"
)

var (
	errImagesOnly    = domain.Validation("Images only! (jpg, jpeg, png)")
	errNoImage       = domain.Validation("no image uploaded")
	errImageTooLarge = domain.Validation("image is too large")
)

var allowedImageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// upload stores a product image under UploadDir and returns the public path it is served from.
// Both the file extension and the sniffed content type must be jpeg or png.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if err := requireAdmin(r); err != nil {
		writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.config.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, errImageTooLarge)
			return
		}
		writeError(w, errNoImage)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, errNoImage)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedImageExtensions[ext] {
		writeError(w, errImagesOnly)
		return
	}
	mime, err := mimetype.DetectReader(file)
	if err != nil {
		writeError(w, errors.Wrap(err, "detect image type"))
		return
	}
	if !mime.Is("image/jpeg") && !mime.Is("image/png") {
		writeError(w, errImagesOnly)
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		writeError(w, errors.Wrap(err, "rewind upload"))
		return
	}

	name := fmt.Sprintf("image-%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	if err := saveUpload(filepath.Join(h.config.UploadDir, name), file); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		Image   string `json:"image"`
	}{"Image uploaded successfully", "/uploads/" + name})
}

func saveUpload(path string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create upload dir")
	}
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, "create upload file")
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return errors.Wrap(err, "write upload file")
	}
	return errors.Wrap(dst.Close(), "close upload file")
}

// uploadFiles serves stored images without listing the directory.
func uploadFiles(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
