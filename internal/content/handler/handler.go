package handler

import (
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/harryzhoudev/portfolio-api/internal/content"
	"github.com/harryzhoudev/portfolio-api/pkg/logger"
)

// ContentService is the behaviour the HTTP layer needs from the content service.
type ContentService interface {
	GetHome(ctx context.Context) (*content.Home, error)
	UpdateHome(ctx context.Context, in content.HomeInput) (*content.Home, error)
	GetAbout(ctx context.Context) (*content.About, error)
	UpdateAboutText(ctx context.Context, in content.AboutTextInput) (*content.About, error)
	ReplaceAboutAsset(ctx context.Context, slot content.AboutSlot, f content.File) (*content.About, error)
	ResumeDownloadURL(ctx context.Context) (string, error)
	ListServiceSections(ctx context.Context) ([]*content.ServiceSection, error)
	UpdateServiceSections(ctx context.Context, items []content.ServiceSectionInput) (*content.BatchResult, error)
	ReplaceServiceBackground(ctx context.Context, id int, f content.File) (*content.ServiceSection, error)
}

// multipartOverhead is allowed on top of the file size for part headers and boundaries.
const multipartOverhead = 1 << 20

type Handler struct {
	svc       ContentService
	maxBytes  int64
	maxMemory int64
}

// New builds the content handler. maxBytes caps an uploaded file; maxMemory is
// how much of a multipart body is held in memory before spilling to temp files.
func New(svc ContentService, maxBytes, maxMemory int64) *Handler {
	if maxMemory <= 0 {
		maxMemory = 8 << 20
	}
	return &Handler{svc: svc, maxBytes: maxBytes, maxMemory: maxMemory}
}

// Register mounts the content routes on api. protect, when non-nil, guards every write.
func (h *Handler) Register(api *gin.RouterGroup, protect gin.HandlerFunc) {
	write := func(fn gin.HandlerFunc) []gin.HandlerFunc {
		if protect == nil {
			return []gin.HandlerFunc{fn}
		}
		return []gin.HandlerFunc{protect, fn}
	}

	api.GET("/home", h.GetHome)
	api.PUT("/home", write(h.UpdateHome)...)

	api.GET("/about", h.GetAbout)
	api.PUT("/about", write(h.UpdateAbout)...)
	api.PUT("/about/resume", write(h.UploadResume)...)
	api.PUT("/about/profile-pic", write(h.UploadProfilePic)...)
	api.GET("/about/resume/download", h.DownloadResume)

	api.GET("/service", h.ListServices)
	api.PUT("/service", write(h.UpdateServices)...)
	api.PUT("/service/:id/background", write(h.UploadServiceBackground)...)
}

// publicMessages are the error texts safe to show to clients, in match order.
var publicMessages = []error{
	content.ErrNoFile,
	content.ErrFileTooLarge,
	content.ErrNotFound,
	content.ErrUpload,
	content.ErrPersistence,
}

func writeError(c *gin.Context, err error) {
	status := content.MapHTTPStatus(err)
	body := gin.H{"error": "internal server error"}

	var fe *content.FieldError
	if errors.As(err, &fe) {
		body["error"] = fe.Error()
		body["field"] = fe.Field
	} else {
		for _, pub := range publicMessages {
			if errors.Is(err, pub) {
				body["error"] = pub.Error()
				break
			}
		}
	}

	log := logger.Op("http.content")
	if status >= http.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	} else {
		log.Debugf("%s %s -> %d: %v", c.Request.Method, c.FullPath(), status, err)
	}
	c.AbortWithStatusJSON(status, body)
}

func (h *Handler) GetHome(c *gin.Context) {
	home, err := h.svc.GetHome(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, home)
}

func (h *Handler) UpdateHome(c *gin.Context) {
	var in content.HomeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, content.Invalid("body", "must be a JSON object"))
		return
	}
	home, err := h.svc.UpdateHome(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, home)
}

func (h *Handler) GetAbout(c *gin.Context) {
	about, err := h.svc.GetAbout(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, about)
}

func (h *Handler) UpdateAbout(c *gin.Context) {
	var in content.AboutTextInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, content.Invalid("body", "must be a JSON object"))
		return
	}
	about, err := h.svc.UpdateAboutText(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, about)
}

func (h *Handler) UploadResume(c *gin.Context) {
	h.uploadAbout(c, content.SlotResume, "Resume uploaded successfully")
}

func (h *Handler) UploadProfilePic(c *gin.Context) {
	h.uploadAbout(c, content.SlotProfilePic, "Profile picture uploaded successfully")
}

func (h *Handler) uploadAbout(c *gin.Context, slot content.AboutSlot, msg string) {
	f, done, err := h.formFile(c)
	if err != nil {
		writeError(c, err)
		return
	}
	defer done()

	about, err := h.svc.ReplaceAboutAsset(c.Request.Context(), slot, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msg, "about": about})
}

// DownloadResume redirects to a short-lived link that serves the resume as an attachment.
func (h *Handler) DownloadResume(c *gin.Context) {
	u, err := h.svc.ResumeDownloadURL(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.Redirect(http.StatusFound, u)
}

func (h *Handler) ListServices(c *gin.Context) {
	sections, err := h.svc.ListServiceSections(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sections)
}

// UpdateServices answers 200 with the three sections when every write
// succeeded and 207 with per-id results when only some did.
func (h *Handler) UpdateServices(c *gin.Context) {
	var items []content.ServiceSectionInput
	if err := c.ShouldBindJSON(&items); err != nil {
		writeError(c, content.Invalid("body", "must be an array of sections"))
		return
	}
	res, err := h.svc.UpdateServiceSections(c.Request.Context(), items)
	if err != nil {
		writeError(c, err)
		return
	}
	if res.Partial() {
		c.JSON(http.StatusMultiStatus, res)
		return
	}
	c.JSON(http.StatusOK, res.Sections)
}

func (h *Handler) UploadServiceBackground(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		writeError(c, content.Invalid("id", "must be an integer"))
		return
	}
	f, done, err := h.formFile(c)
	if err != nil {
		writeError(c, err)
		return
	}
	defer done()

	section, err := h.svc.ReplaceServiceBackground(c.Request.Context(), id, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, section)
}

// formFile extracts the "file" part of a multipart request. The returned func
// closes the part and removes any temp files the parser spilled to disk; it
// must be called once the upload has been handled.
func (h *Handler) formFile(c *gin.Context) (content.File, func(), error) {
	if h.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	}
	if err := c.Request.ParseMultipartForm(h.maxMemory); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.As(err, &tooBig):
			return content.File{}, nil, content.ErrFileTooLarge
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			return content.File{}, nil, content.ErrNoFile
		}
		return content.File{}, nil, content.Invalid("file", "malformed multipart body")
	}

	form := c.Request.MultipartForm
	cleanup := func() {
		if err := form.RemoveAll(); err != nil {
			logger.Op("http.upload").Warnf("removing multipart temp files: %v", err)
		}
	}

	headers := form.File["file"]
	if len(headers) == 0 {
		cleanup()
		return content.File{}, nil, content.ErrNoFile
	}
	fh := headers[0]
	part, err := fh.Open()
	if err != nil {
		cleanup()
		return content.File{}, nil, content.Invalid("file", "could not be read")
	}

	f := content.File{Name: fh.Filename, ContentType: contentType(fh), Size: fh.Size, Reader: part}
	return f, func() {
		_ = part.Close()
		cleanup()
	}, nil
}

func contentType(fh *multipart.FileHeader) string {
	ct := fh.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(fh.Filename)); byExt != "" {
			return byExt
		}
	}
	return ct
}
