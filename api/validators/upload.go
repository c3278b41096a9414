package validators

import (
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	pkgerrors "github.com/harvestlane/veggiebox-backend/pkg/errors"
)

// Upload formats accepted by the order importer.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var uploadFormats = map[string]string{
	"text/csv":                 FormatCSV,
	"application/csv":          FormatCSV,
	"application/vnd.ms-excel": FormatXLSX,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FormatXLSX,
}

// OpenUpload pulls the uploaded file out of the multipart form and maps its
// content type onto a supported import format. Any other mime type is a
// validation failure.
func OpenUpload(r *http.Request, field string, maxBytes int64) (multipart.File, string, error) {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "upload file is required").WithDetails(map[string]any{"field": field})
	}

	contentType := header.Header.Get("Content-Type")
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = parsed
	}
	format, ok := uploadFormats[strings.ToLower(contentType)]
	if !ok {
		file.Close()
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported upload type").
			WithDetails(map[string]any{"content_type": contentType})
	}
	return file, format, nil
}
