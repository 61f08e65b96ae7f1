package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"llm_relay/backend/go/internal/models"
	"llm_relay/backend/go/internal/qa_service/normalizer"
	"llm_relay/backend/go/internal/qa_service/service"
	"llm_relay/backend/go/pkg/httpmiddleware"
	"llm_relay/backend/go/pkg/logger"

	"github.com/gin-gonic/gin"
)

// WelcomeMessage is returned by GET /.
const WelcomeMessage = "Welcome to the LLM API! Use GET or POST on /api/ to ask questions and upload files."

// multipart 表单在内存中保留的上限，超出部分写入临时文件。
const formMemory = 8 << 20

var (
	errMissingQuestion = errors.New("question is required")
	errUploadTooLarge  = errors.New("upload exceeds the request size limit")
)

// Handler 将 QAService 暴露为 HTTP 接口。
type Handler struct {
	service        *service.QAService
	log            *logger.Logger
	maxUploadBytes int64
}

// NewHandler creates a Handler. maxUploadBytes <= 0 disables the body limit.
func NewHandler(svc *service.QAService, log *logger.Logger, maxUploadBytes int64) *Handler {
	return &Handler{service: svc, log: log, maxUploadBytes: maxUploadBytes}
}

func (h *Handler) home(c *gin.Context) {
	c.JSON(http.StatusOK, models.WelcomeResponse{Message: WelcomeMessage})
}

// askGet 处理 GET /api/?question=...
func (h *Handler) askGet(c *gin.Context) {
	question := c.Query("question")
	if strings.TrimSpace(question) == "" {
		h.fail(c, errMissingQuestion)
		return
	}
	resp, err := h.service.Ask(c.Request.Context(), question, nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// askPost 处理 POST /api/，表单字段 question（必填）与 file（可选）。
func (h *Handler) askPost(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	if err := c.Request.ParseMultipartForm(formMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		if isTooLarge(err) {
			h.fail(c, errUploadTooLarge)
			return
		}
		h.fail(c, &badRequest{err: fmt.Errorf("invalid form: %w", err)})
		return
	}

	question := c.Request.PostFormValue("question")
	if strings.TrimSpace(question) == "" {
		h.fail(c, errMissingQuestion)
		return
	}

	upload, err := readUpload(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp, err := h.service.Ask(c.Request.Context(), question, upload)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// readUpload returns nil when the request carries no file, or an empty file field.
func readUpload(c *gin.Context) (*normalizer.Upload, error) {
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, &badRequest{err: fmt.Errorf("invalid file field: %w", err)}
	}
	if fh.Filename == "" && fh.Size == 0 {
		return nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return &normalizer.Upload{Filename: fh.Filename, Data: data}, nil
}

// badRequest marks a client error that is not a normalizer error.
type badRequest struct{ err error }

func (e *badRequest) Error() string { return e.err.Error() }
func (e *badRequest) Unwrap() error { return e.err }

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe) || strings.Contains(err.Error(), "request body too large")
}

// statusFor 把错误映射为 HTTP 状态码，最后一个分支是通用兜底。
func statusFor(err error) (int, string) {
	var nerr *normalizer.Error
	var bad *badRequest
	switch {
	case errors.As(err, &nerr):
		return http.StatusBadRequest, nerr.Kind.String()
	case errors.Is(err, errMissingQuestion), errors.As(err, &bad):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, errUploadTooLarge):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, service.ErrProvider):
		return http.StatusInternalServerError, "provider_error"
	default:
		return http.StatusInternalServerError, "unknown"
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	status, kind := statusFor(err)
	detail := err.Error()
	if status >= http.StatusInternalServerError {
		detail = "Server Error: " + detail
	}

	entry := h.log.WithError(models.ErrorInfo{Message: err.Error(), Type: kind, StatusCode: status})
	if id := httpmiddleware.RequestIDFromContext(c.Request.Context()); id != "" {
		entry = entry.WithTraceID(id)
	}
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Warn("request rejected")
	}

	c.AbortWithStatusJSON(status, models.ErrorResponse{Detail: detail})
}
