package content

import (
	"io"
	"time"
)

// AssetRef points at a binary object held by the asset store. It is replaced
// wholesale, never edited in place.
type AssetRef struct {
	AssetID     string `json:"publicId" bson:"publicId"`
	URL         string `json:"url" bson:"url"`
	DownloadURL string `json:"downloadUrl,omitempty" bson:"downloadUrl,omitempty"`
}

// Home is the singleton landing-page copy.
type Home struct {
	GreetingMessage string    `json:"greetingMessage" bson:"greetingMessage"`
	MainMessage     string    `json:"mainMessage" bson:"mainMessage"`
	SubMessage      string    `json:"subMessage" bson:"subMessage"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt" bson:"updatedAt"`
}

// About is the singleton bio document with its two asset slots.
type About struct {
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Resume      *AssetRef `json:"resume" bson:"resume"`
	ProfilePic  *AssetRef `json:"profilePic" bson:"profilePic"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Slot returns the asset currently held in slot.
func (a *About) Slot(slot AboutSlot) *AssetRef {
	switch slot {
	case SlotResume:
		return a.Resume
	case SlotProfilePic:
		return a.ProfilePic
	}
	return nil
}

// ServiceSection is one of the fixed service-page panels.
type ServiceSection struct {
	ID              int       `json:"id" bson:"_id"`
	Title           string    `json:"title" bson:"title"`
	Description     string    `json:"description" bson:"description"`
	BackgroundImage *AssetRef `json:"bgImg" bson:"bgImg"`
	CreatedAt       time.Time `json:"createdAt,omitzero" bson:"createdAt,omitempty"`
	UpdatedAt       time.Time `json:"updatedAt,omitzero" bson:"updatedAt,omitempty"`
}

// AboutSlot names an asset-holding field on the About document.
type AboutSlot string

const (
	SlotResume     AboutSlot = "resume"
	SlotProfilePic AboutSlot = "profilePic"
)

const (
	DefaultAboutTitle       = "About me"
	DefaultAboutDescription = "A short bio about me"

	// ServiceSectionCount is the number of panels on the service page; ids run 0..ServiceSectionCount-1.
	ServiceSectionCount = 3
)

// NewDefaultAbout returns the document created on the first About write.
func NewDefaultAbout() *About {
	return &About{Title: DefaultAboutTitle, Description: DefaultAboutDescription}
}

// PlaceholderSection is what GET /api/service reports for a section never written.
func PlaceholderSection(id int) *ServiceSection {
	return &ServiceSection{ID: id}
}

// HomeInput is the full replacement body for Home.
type HomeInput struct {
	GreetingMessage string `json:"greetingMessage"`
	MainMessage     string `json:"mainMessage"`
	SubMessage      string `json:"subMessage"`
}

// AboutTextInput carries optional text fields; nil leaves the stored value alone.
type AboutTextInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// ServiceSectionInput is one element of the PUT /api/service array.
type ServiceSectionInput struct {
	ID          *int   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// File is an upload handed from the HTTP layer to the service.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// SectionResult reports the outcome of one id in a service-section batch write.
type SectionResult struct {
	ID    int    `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BatchResult is returned by the service-section batch write.
type BatchResult struct {
	Results  []SectionResult   `json:"results"`
	Sections []*ServiceSection `json:"sections"`
}

// Partial reports whether at least one section write failed.
func (b *BatchResult) Partial() bool {
	for _, r := range b.Results {
		if !r.OK {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the ref (nil-safe).
func (r *AssetRef) Clone() *AssetRef {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
