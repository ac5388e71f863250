package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/harryzhoudev/portfolio-api/internal/content"
	"github.com/harryzhoudev/portfolio-api/internal/content/repository"
	"github.com/harryzhoudev/portfolio-api/internal/storage"
	"github.com/harryzhoudev/portfolio-api/pkg/logger"
	"github.com/harryzhoudev/portfolio-api/pkg/metrics"
)

// AssetStore is the binary object store the service uploads into.
type AssetStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (content.AssetRef, error)
	Delete(ctx context.Context, assetID string) error
	PresignDownload(ctx context.Context, assetID, filename string, expires time.Duration) (string, error)
}

// Options tunes key layout and upload limits.
type Options struct {
	// Folder prefixes every asset key.
	Folder string
	// MaxUploadBytes rejects larger files; zero disables the check.
	MaxUploadBytes int64
	// ResumeDownloadURL is stored as resume.downloadUrl.
	ResumeDownloadURL string
	// DownloadTTL is how long a presigned resume link stays valid.
	DownloadTTL time.Duration
}

// Service mediates between the HTTP layer, the document store and the asset store.
type Service struct {
	repo   repository.Repository
	assets AssetStore
	opts   Options
}

func NewService(repo repository.Repository, assets AssetStore, opts Options) *Service {
	if opts.DownloadTTL <= 0 {
		opts.DownloadTTL = 10 * time.Minute
	}
	return &Service{repo: repo, assets: assets, opts: opts}
}

// storeErr converts a repository failure into a content domain error.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%s: %w", op, content.ErrNotFound)
	case errors.Is(err, content.ErrValidation):
		return err
	}
	return content.Persistence(op, err)
}

func recordWrite(kind string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.ContentWrites.WithLabelValues(kind, result).Inc()
}

func (s *Service) GetHome(ctx context.Context) (*content.Home, error) {
	h, err := s.repo.GetHome(ctx)
	if err != nil {
		return nil, storeErr("home.get", err)
	}
	return h, nil
}

// UpdateHome replaces all three Home fields; a missing field is rejected and nothing is written.
func (s *Service) UpdateHome(ctx context.Context, in content.HomeInput) (h *content.Home, err error) {
	defer func() { recordWrite("home", err) }()
	in, err = in.Normalize()
	if err != nil {
		return nil, err
	}
	h, err = s.repo.UpsertHome(ctx, in)
	if err != nil {
		return nil, storeErr("home.upsert", err)
	}
	return h, nil
}

func (s *Service) GetAbout(ctx context.Context) (*content.About, error) {
	a, err := s.repo.GetAbout(ctx)
	if err != nil {
		return nil, storeErr("about.get", err)
	}
	return a, nil
}

// UpdateAboutText sets the supplied text fields, creating the document with
// defaults for anything not supplied when it does not exist yet.
func (s *Service) UpdateAboutText(ctx context.Context, in content.AboutTextInput) (a *content.About, err error) {
	defer func() { recordWrite("about", err) }()
	in, err = in.Normalize()
	if err != nil {
		return nil, err
	}
	a, err = s.repo.UpsertAboutText(ctx, in.Title, in.Description)
	if err != nil {
		return nil, storeErr("about.upsertText", err)
	}
	return a, nil
}

func (s *Service) checkFile(f content.File, imageOnly bool) error {
	if f.Reader == nil || f.Size == 0 {
		return content.ErrNoFile
	}
	if s.opts.MaxUploadBytes > 0 && f.Size > s.opts.MaxUploadBytes {
		return content.ErrFileTooLarge
	}
	if imageOnly && !strings.HasPrefix(strings.ToLower(f.ContentType), "image/") {
		return content.Invalid("file", "must be an image")
	}
	return nil
}

// replaceAsset runs the delete-old, upload-new part of an asset replacement.
// A failed delete is logged and counted but never aborts the upload. The
// caller persists the returned ref.
func (s *Service) replaceAsset(ctx context.Context, slot string, old *content.AssetRef, key string, f content.File) (*content.AssetRef, error) {
	log := logger.Op("content.replaceAsset")

	// the same key is overwritten in place by the upload
	if old != nil && old.AssetID != "" && old.AssetID != key {
		if err := s.assets.Delete(ctx, old.AssetID); err != nil {
			metrics.AssetCleanupFailures.WithLabelValues(slot).Inc()
			log.Warnf("slot=%s delete of previous asset %q failed, continuing: %v", slot, old.AssetID, err)
		}
	}

	ref, err := s.assets.Upload(ctx, key, f.Reader, f.Size, f.ContentType)
	if err != nil {
		metrics.AssetUploads.WithLabelValues(slot, "error").Inc()
		log.Errorf("slot=%s upload of %q failed: %v", slot, key, err)
		return nil, fmt.Errorf("%w: %w", content.ErrUpload, err)
	}
	metrics.AssetUploads.WithLabelValues(slot, "ok").Inc()
	log.Infof("slot=%s stored %q (%d bytes)", slot, ref.AssetID, f.Size)
	return &ref, nil
}

// ReplaceAboutAsset swaps the resume or profile picture for f.
func (s *Service) ReplaceAboutAsset(ctx context.Context, slot content.AboutSlot, f content.File) (*content.About, error) {
	var key string
	switch slot {
	case content.SlotResume:
		if err := s.checkFile(f, false); err != nil {
			return nil, err
		}
		key = storage.ResumeKey(s.opts.Folder, f.Name)
	case content.SlotProfilePic:
		if err := s.checkFile(f, true); err != nil {
			return nil, err
		}
		key = storage.ProfilePicKey(s.opts.Folder, f.Name)
	default:
		return nil, content.Invalid("slot", "is unknown")
	}

	about, err := s.repo.GetOrInitAbout(ctx)
	if err != nil {
		return nil, storeErr("about.getOrInit", err)
	}

	ref, err := s.replaceAsset(ctx, string(slot), about.Slot(slot), key, f)
	if err != nil {
		return nil, err
	}
	if slot == content.SlotResume {
		ref.DownloadURL = s.opts.ResumeDownloadURL
	}

	about, err = s.repo.SetAboutAsset(ctx, slot, ref)
	recordWrite("about", err)
	if err != nil {
		return nil, storeErr("about.setAsset", err)
	}
	return about, nil
}

// ResumeDownloadURL returns a short-lived link that downloads the resume as an attachment.
func (s *Service) ResumeDownloadURL(ctx context.Context) (string, error) {
	about, err := s.GetAbout(ctx)
	if err != nil {
		return "", err
	}
	if about.Resume == nil || about.Resume.AssetID == "" {
		return "", fmt.Errorf("resume: %w", content.ErrNotFound)
	}
	u, err := s.assets.PresignDownload(ctx, about.Resume.AssetID, path.Base(about.Resume.AssetID), s.opts.DownloadTTL)
	if err != nil {
		return "", fmt.Errorf("%w: presign: %w", content.ErrUpload, err)
	}
	return u, nil
}

// ListServiceSections always returns exactly ServiceSectionCount sections
// ordered by id; sections never written come back as empty placeholders.
func (s *Service) ListServiceSections(ctx context.Context) ([]*content.ServiceSection, error) {
	stored, err := s.repo.ListServiceSections(ctx)
	if err != nil {
		return nil, storeErr("service.list", err)
	}
	out := make([]*content.ServiceSection, content.ServiceSectionCount)
	for _, sec := range stored {
		if content.ValidSectionID(sec.ID) {
			out[sec.ID] = sec
		}
	}
	for id := range out {
		if out[id] == nil {
			out[id] = content.PlaceholderSection(id)
		}
	}
	return out, nil
}

// UpdateServiceSections validates the whole batch, then upserts each id
// independently. The result lists per-id outcomes; the error is non-nil only
// when validation fails or no write succeeded.
func (s *Service) UpdateServiceSections(ctx context.Context, items []content.ServiceSectionInput) (*content.BatchResult, error) {
	items, err := content.NormalizeSections(items)
	if err != nil {
		return nil, err
	}
	log := logger.Op("content.updateServiceSections")

	res := &content.BatchResult{Results: make([]content.SectionResult, 0, len(items))}
	var lastErr error
	for _, it := range items {
		id := *it.ID
		_, err := s.repo.UpsertServiceSectionText(ctx, id, it.Title, it.Description)
		recordWrite("service", err)
		if err != nil {
			lastErr = err
			log.Errorf("section %d upsert failed: %v", id, err)
			res.Results = append(res.Results, content.SectionResult{ID: id, Error: "write failed"})
			continue
		}
		res.Results = append(res.Results, content.SectionResult{ID: id, OK: true})
	}
	if lastErr != nil && !anyOK(res.Results) {
		return nil, storeErr("service.upsertText", lastErr)
	}

	res.Sections, err = s.ListServiceSections(ctx)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func anyOK(rs []content.SectionResult) bool {
	for _, r := range rs {
		if r.OK {
			return true
		}
	}
	return false
}

// ReplaceServiceBackground swaps the background image of section id for f.
func (s *Service) ReplaceServiceBackground(ctx context.Context, id int, f content.File) (*content.ServiceSection, error) {
	if !content.ValidSectionID(id) {
		return nil, content.Invalid("id", fmt.Sprintf("must be between 0 and %d", content.ServiceSectionCount-1))
	}
	if err := s.checkFile(f, true); err != nil {
		return nil, err
	}

	sec, err := s.repo.GetOrInitServiceSection(ctx, id)
	if err != nil {
		return nil, storeErr("service.getOrInit", err)
	}

	slot := "bgImg:" + strconv.Itoa(id)
	ref, err := s.replaceAsset(ctx, slot, sec.BackgroundImage, storage.ServiceBackgroundKey(s.opts.Folder, id, f.Name), f)
	if err != nil {
		return nil, err
	}

	sec, err = s.repo.SetServiceBackground(ctx, id, ref)
	recordWrite("service", err)
	if err != nil {
		return nil, storeErr("service.setBackground", err)
	}
	return sec, nil
}
