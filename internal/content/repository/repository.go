package repository

import (
	"context"
	"errors"

	"github.com/harryzhoudev/portfolio-api/internal/content"
)

var (
	ErrNotFound = errors.New("document not found")
)

// Repository is the document store behind the content service. Singletons
// are reached through explicit get-or-initialize calls rather than through
// upsert side effects.
type Repository interface {
	GetHome(ctx context.Context) (*content.Home, error)
	// UpsertHome replaces all Home fields in one atomic find-and-upsert.
	UpsertHome(ctx context.Context, in content.HomeInput) (*content.Home, error)

	GetAbout(ctx context.Context) (*content.About, error)
	// GetOrInitAbout returns the About document, creating it with default text and empty slots.
	GetOrInitAbout(ctx context.Context) (*content.About, error)
	// UpsertAboutText sets the non-nil fields; on insert nil fields take their defaults.
	UpsertAboutText(ctx context.Context, title, description *string) (*content.About, error)
	SetAboutAsset(ctx context.Context, slot content.AboutSlot, ref *content.AssetRef) (*content.About, error)

	// ListServiceSections returns stored sections ordered by id ascending.
	ListServiceSections(ctx context.Context) ([]*content.ServiceSection, error)
	GetOrInitServiceSection(ctx context.Context, id int) (*content.ServiceSection, error)
	UpsertServiceSectionText(ctx context.Context, id int, title, description string) (*content.ServiceSection, error)
	SetServiceBackground(ctx context.Context, id int, ref *content.AssetRef) (*content.ServiceSection, error)

	// ListAssetIDs returns every asset id referenced by any document.
	ListAssetIDs(ctx context.Context) ([]string, error)
}
