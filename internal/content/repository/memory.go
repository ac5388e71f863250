package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/harryzhoudev/portfolio-api/internal/content"
)

// MemoryRepo is an in-memory Repository used by unit tests and by the
// development fallback when MongoDB is unreachable.
type MemoryRepo struct {
	mu       sync.RWMutex
	home     *content.Home
	about    *content.About
	sections map[int]*content.ServiceSection

	// Fail, when set, is returned by every call. Tests use it to simulate an outage.
	Fail error
}

var _ Repository = (*MemoryRepo)(nil)

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{sections: make(map[int]*content.ServiceSection)}
}

func copyHome(h *content.Home) *content.Home {
	c := *h
	return &c
}

func copyAbout(a *content.About) *content.About {
	c := *a
	c.Resume = a.Resume.Clone()
	c.ProfilePic = a.ProfilePic.Clone()
	return &c
}

func copySection(s *content.ServiceSection) *content.ServiceSection {
	c := *s
	c.BackgroundImage = s.BackgroundImage.Clone()
	return &c
}

func (m *MemoryRepo) GetHome(ctx context.Context) (*content.Home, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	if m.home == nil {
		return nil, ErrNotFound
	}
	return copyHome(m.home), nil
}

func (m *MemoryRepo) UpsertHome(ctx context.Context, in content.HomeInput) (*content.Home, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	now := time.Now().UTC()
	if m.home == nil {
		m.home = &content.Home{CreatedAt: now}
	}
	m.home.GreetingMessage = in.GreetingMessage
	m.home.MainMessage = in.MainMessage
	m.home.SubMessage = in.SubMessage
	m.home.UpdatedAt = now
	return copyHome(m.home), nil
}

func (m *MemoryRepo) GetAbout(ctx context.Context) (*content.About, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	if m.about == nil {
		return nil, ErrNotFound
	}
	return copyAbout(m.about), nil
}

// initAbout must be called with m.mu held.
func (m *MemoryRepo) initAbout() {
	if m.about == nil {
		now := time.Now().UTC()
		m.about = content.NewDefaultAbout()
		m.about.CreatedAt = now
		m.about.UpdatedAt = now
	}
}

func (m *MemoryRepo) GetOrInitAbout(ctx context.Context) (*content.About, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	m.initAbout()
	return copyAbout(m.about), nil
}

func (m *MemoryRepo) UpsertAboutText(ctx context.Context, title, description *string) (*content.About, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	m.initAbout()
	if title != nil {
		m.about.Title = *title
	}
	if description != nil {
		m.about.Description = *description
	}
	m.about.UpdatedAt = time.Now().UTC()
	return copyAbout(m.about), nil
}

func (m *MemoryRepo) SetAboutAsset(ctx context.Context, slot content.AboutSlot, ref *content.AssetRef) (*content.About, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	m.initAbout()
	switch slot {
	case content.SlotResume:
		m.about.Resume = ref.Clone()
	case content.SlotProfilePic:
		m.about.ProfilePic = ref.Clone()
	default:
		return nil, content.Invalid("slot", "is unknown")
	}
	m.about.UpdatedAt = time.Now().UTC()
	return copyAbout(m.about), nil
}

func (m *MemoryRepo) ListServiceSections(ctx context.Context) ([]*content.ServiceSection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	out := make([]*content.ServiceSection, 0, len(m.sections))
	for _, s := range m.sections {
		out = append(out, copySection(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// initSection must be called with m.mu held.
func (m *MemoryRepo) initSection(id int) *content.ServiceSection {
	s, ok := m.sections[id]
	if !ok {
		now := time.Now().UTC()
		s = content.PlaceholderSection(id)
		s.CreatedAt = now
		s.UpdatedAt = now
		m.sections[id] = s
	}
	return s
}

func (m *MemoryRepo) GetOrInitServiceSection(ctx context.Context, id int) (*content.ServiceSection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	return copySection(m.initSection(id)), nil
}

func (m *MemoryRepo) UpsertServiceSectionText(ctx context.Context, id int, title, description string) (*content.ServiceSection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	s := m.initSection(id)
	s.Title = title
	s.Description = description
	s.UpdatedAt = time.Now().UTC()
	return copySection(s), nil
}

func (m *MemoryRepo) SetServiceBackground(ctx context.Context, id int, ref *content.AssetRef) (*content.ServiceSection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	s := m.initSection(id)
	s.BackgroundImage = ref.Clone()
	s.UpdatedAt = time.Now().UTC()
	return copySection(s), nil
}

func (m *MemoryRepo) ListAssetIDs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Fail != nil {
		return nil, m.Fail
	}
	var ids []string
	if m.about != nil {
		for _, r := range []*content.AssetRef{m.about.Resume, m.about.ProfilePic} {
			if r != nil {
				ids = append(ids, r.AssetID)
			}
		}
	}
	for _, s := range m.sections {
		if s.BackgroundImage != nil {
			ids = append(ids, s.BackgroundImage.AssetID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
