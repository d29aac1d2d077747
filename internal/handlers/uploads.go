package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/videotube/backend/internal/apperr"
	"github.com/videotube/backend/internal/media"
)

const multipartMemory = 8 << 20

type fileField struct {
	name     string
	category media.Category
}

// multipartUpload holds the text fields and staged file paths of a parsed form.
// Paths of fields that were not supplied are empty.
type multipartUpload struct {
	values map[string][]string
	paths  map[string]string
}

func (u multipartUpload) value(name string) string {
	if v := u.values[name]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

func (u multipartUpload) path(name string) string {
	return u.paths[name]
}

func (u multipartUpload) all() []string {
	out := make([]string, 0, len(u.paths))
	for _, p := range u.paths {
		out = append(out, p)
	}
	return out
}

// parseUpload parses a multipart request and stages the named files. On error
// anything already staged is removed.
func parseUpload(w http.ResponseWriter, r *http.Request, stager Stager, files ...fileField) (multipartUpload, error) {
	if stager == nil {
		return multipartUpload{}, apperr.Upstream("uploads", errors.New("stager not configured"))
	}

	limit := stager.MaxBytes()*int64(len(files)) + multipartMemory
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return multipartUpload{}, apperr.Validation("request body too large")
		}
		return multipartUpload{}, apperr.Validation("invalid multipart form")
	}
	defer r.MultipartForm.RemoveAll()

	upload := multipartUpload{values: r.MultipartForm.Value, paths: map[string]string{}}
	for _, f := range files {
		headers := r.MultipartForm.File[f.name]
		if len(headers) == 0 {
			continue
		}
		path, err := stager.Stage(headers[0], f.category)
		if err != nil {
			media.RemoveStaged(r.Context(), upload.all()...)
			return multipartUpload{}, stageError(f.name, err)
		}
		upload.paths[f.name] = path
	}
	return upload, nil
}

func stageError(field string, err error) error {
	switch {
	case errors.Is(err, media.ErrUnsupportedType):
		return apperr.Validation("unsupported file type", apperr.FieldError{Field: field, Message: "file type is not allowed"})
	case errors.Is(err, media.ErrTooLarge):
		return apperr.Validation("file too large", apperr.FieldError{Field: field, Message: "file exceeds the size limit"})
	}
	return apperr.Upstream("stage upload", err)
}
