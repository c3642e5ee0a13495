package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"mime/multipart"
	"net/http"
	"strings"

	"blogsite/internal/service"
	"blogsite/internal/storage"

	"github.com/gin-gonic/gin"
)

const (
	uploadField = "upload"

	errUploadMissing  = "post error"
	errUploadTooLarge = "ERROR_FILE_TOO_LARGE"
	errUploadFailed   = "ERROR_UPLOAD_FAILED"
)

// ckUpload receives an image from CKEditor and answers with the script that
// hands the stored URL (or an error code) back to the editor.
func (h *Handler) ckUpload(c *gin.Context) {
	callback := callbackNumber(c.Query("CKEditorFuncNum"))
	if h.opts.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)
	}

	var url, code string
	fh, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			code = errUploadTooLarge
		} else {
			code = errUploadMissing
		}
	} else {
		url, code = h.saveUpload(c, fh)
	}

	c.Data(http.StatusOK, "text/html", []byte(ckCallbackScript(callback, url, code)))
}

// saveUpload returns the stored URL, or an empty URL and an error code.
func (h *Handler) saveUpload(c *gin.Context, fh *multipart.FileHeader) (string, string) {
	f, err := fh.Open()
	if err != nil {
		return "", h.uploadFailed(fh.Filename, err)
	}
	defer f.Close()

	url, err := h.services.SaveImage(c.Request.Context(), fh.Filename, f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		return "", h.uploadFailed(fh.Filename, err)
	}
	if h.log != nil {
		h.log.Infow("upload_saved", "filename", fh.Filename, "url", url)
	}
	return url, ""
}

// uploadFailed logs err and returns the code reported to the editor.
func (h *Handler) uploadFailed(filename string, err error) string {
	code := errUploadFailed
	for _, known := range []error{service.ErrUnsupportedFileType, storage.ErrCreateDir, storage.ErrDirNotWritable} {
		if errors.Is(err, known) {
			code = known.Error()
			break
		}
	}
	if h.log != nil {
		h.log.Infow("upload_failed", "filename", filename, "code", code, "err", err)
	}
	return code
}

// callbackNumber keeps only the digits of the editor's callback id.
func callbackNumber(raw string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return "0"
	}
	return digits
}

func ckCallbackScript(callback, url, code string) string {
	return fmt.Sprintf(`<script type="text/javascript">window.parent.CKEDITOR.tools.callFunction(%s, '%s', '%s');</script>`,
		callback, template.JSEscapeString(url), template.JSEscapeString(code))
}
