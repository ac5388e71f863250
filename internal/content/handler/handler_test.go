package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harryzhoudev/portfolio-api/internal/content/repository"
	"github.com/harryzhoudev/portfolio-api/internal/content/service"
	"github.com/harryzhoudev/portfolio-api/internal/storage"
)

type fixture struct {
	g      *gin.Engine
	repo   *repository.MemoryRepo
	assets *storage.MemoryStorage
}

func setup(t *testing.T, protect gin.HandlerFunc) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo()
	assets := storage.NewMemoryStorage("")
	svc := service.NewService(repo, assets, service.Options{
		Folder:            "portfolio",
		MaxUploadBytes:    64,
		ResumeDownloadURL: "http://api.local/api/about/resume/download",
	})
	g := gin.New()
	New(svc, 64, 1<<10).Register(g.Group("/api"), protect)
	return &fixture{g: g, repo: repo, assets: assets}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.g.ServeHTTP(w, req)
	return w
}

func jsonReq(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadReq(t *testing.T, path, field, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
		h.Set("Content-Type", contentType)
		pw, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file here"))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPut, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHomeLifecycle(t *testing.T) {
	f := setup(t, nil)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/home", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(jsonReq(http.MethodPut, "/api/home", `{"greetingMessage":"Hi","mainMessage":"I'm Harry","subMessage":"I build things"}`))
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(httptest.NewRequest(http.MethodGet, "/api/home", nil))
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.Equal(t, "Hi", got["greetingMessage"])
	assert.Equal(t, "I'm Harry", got["mainMessage"])
	assert.Equal(t, "I build things", got["subMessage"])

	// a missing field is rejected and the stored document is kept
	w = f.do(jsonReq(http.MethodPut, "/api/home", `{"greetingMessage":"Yo","mainMessage":"x"}`))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "subMessage", decode(t, w)["field"])

	w = f.do(httptest.NewRequest(http.MethodGet, "/api/home", nil))
	assert.Equal(t, "Hi", decode(t, w)["greetingMessage"])

	w = f.do(jsonReq(http.MethodPut, "/api/home", `not json`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAboutCreatedOnFirstWrite(t *testing.T) {
	f := setup(t, nil)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/about", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(jsonReq(http.MethodPut, "/api/about", `{"title":"Hi","description":"Bio"}`))
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(httptest.NewRequest(http.MethodGet, "/api/about", nil))
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.Equal(t, "Hi", got["title"])
	assert.Equal(t, "Bio", got["description"])
	assert.Contains(t, got, "resume")
	assert.Nil(t, got["resume"])
	assert.Nil(t, got["profilePic"])
}

func TestResumeReplaceKeepsOneReference(t *testing.T) {
	f := setup(t, nil)

	w := f.do(uploadReq(t, "/api/about/resume", "file", "CV one.pdf", "application/pdf", []byte("first")))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Resume uploaded successfully", body["message"])
	about := body["about"].(map[string]interface{})
	assert.Equal(t, "About me", about["title"])
	resume := about["resume"].(map[string]interface{})
	assert.Equal(t, "portfolio/about/resume/CV_one.pdf", resume["publicId"])
	assert.Equal(t, "http://api.local/api/about/resume/download", resume["downloadUrl"])

	w = f.do(uploadReq(t, "/api/about/resume", "file", "CV two.pdf", "application/pdf", []byte("second")))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, 1, f.assets.Len())
	assert.False(t, f.assets.Has("portfolio/about/resume/CV_one.pdf"))
	assert.True(t, f.assets.Has("portfolio/about/resume/CV_two.pdf"))

	w = f.do(httptest.NewRequest(http.MethodGet, "/api/about/resume/download", nil))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Contains(t, w.Header().Get("Location"), "CV_two.pdf")
}

func TestUploadWithoutFile(t *testing.T) {
	f := setup(t, nil)

	w := f.do(jsonReq(http.MethodPut, "/api/about", `{"title":"Kept"}`))
	require.Equal(t, http.StatusOK, w.Code)

	for _, path := range []string{"/api/about/resume", "/api/about/profile-pic", "/api/service/1/background"} {
		w = f.do(uploadReq(t, path, "", "", "", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, "no file uploaded", decode(t, w)["error"], path)

		w = f.do(jsonReq(http.MethodPut, path, `{}`))
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}

	w = f.do(httptest.NewRequest(http.MethodGet, "/api/about", nil))
	got := decode(t, w)
	assert.Equal(t, "Kept", got["title"])
	assert.Nil(t, got["resume"])
	assert.Nil(t, got["profilePic"])
	assert.Equal(t, 0, f.assets.Len())
}

func TestUploadTooLarge(t *testing.T) {
	f := setup(t, nil)
	w := f.do(uploadReq(t, "/api/about/resume", "file", "cv.pdf", "application/pdf", bytes.Repeat([]byte("a"), 65)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestProfilePicMustBeImage(t *testing.T) {
	f := setup(t, nil)

	w := f.do(uploadReq(t, "/api/about/profile-pic", "file", "me.pdf", "application/pdf", []byte("x")))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "file", decode(t, w)["field"])

	w = f.do(uploadReq(t, "/api/about/profile-pic", "file", "me.png", "image/png", []byte("x")))
	require.Equal(t, http.StatusOK, w.Code)
	pic := decode(t, w)["about"].(map[string]interface{})["profilePic"].(map[string]interface{})
	assert.True(t, strings.HasPrefix(pic["publicId"].(string), "portfolio/about/profilePic/"))
	assert.NotContains(t, pic, "downloadUrl")
}

func TestServiceSections(t *testing.T) {
	f := setup(t, nil)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/service", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 3)
	for i, s := range list {
		assert.EqualValues(t, i, s["id"])
		assert.Nil(t, s["bgImg"])
	}

	w = f.do(jsonReq(http.MethodPut, "/api/service", `[{"id":1,"title":"APIs","description":"Go services"}]`))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 3)
	assert.Equal(t, "APIs", list[1]["title"])

	w = f.do(jsonReq(http.MethodPut, "/api/service", `[]`))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 3)
	assert.Equal(t, "APIs", list[1]["title"])

	w = f.do(jsonReq(http.MethodPut, "/api/service", `[{"id":5,"title":"x"}]`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(jsonReq(http.MethodPut, "/api/service", `{"id":1}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(uploadReq(t, "/api/service/2/background", "file", "bg.jpg", "image/jpeg", []byte("img")))
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.EqualValues(t, 2, got["id"])
	assert.NotNil(t, got["bgImg"])

	w = f.do(uploadReq(t, "/api/service/abc/background", "file", "bg.jpg", "image/jpeg", []byte("img")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.do(uploadReq(t, "/api/service/9/background", "file", "bg.jpg", "image/jpeg", []byte("img")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStoreOutageIs500(t *testing.T) {
	f := setup(t, nil)
	f.repo.Fail = fmt.Errorf("dial tcp: connection refused")

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/about", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	// driver detail stays in the log
	assert.Equal(t, "content store unavailable", decode(t, w)["error"])

	w = f.do(jsonReq(http.MethodPut, "/api/about", `{"title":"x"}`))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWritesAreProtected(t *testing.T) {
	deny := func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer ok" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
	f := setup(t, deny)

	w := f.do(jsonReq(http.MethodPut, "/api/home", `{"greetingMessage":"a","mainMessage":"b","subMessage":"c"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := jsonReq(http.MethodPut, "/api/home", `{"greetingMessage":"a","mainMessage":"b","subMessage":"c"}`)
	req.Header.Set("Authorization", "Bearer ok")
	w = f.do(req)
	assert.Equal(t, http.StatusOK, w.Code)

	// reads stay public
	w = f.do(httptest.NewRequest(http.MethodGet, "/api/home", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
