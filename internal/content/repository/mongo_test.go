package repository

import (
	"context"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/harryzhoudev/portfolio-api/internal/content"
	"github.com/harryzhoudev/portfolio-api/internal/database"
)

func updateKeys(t *testing.T, update bson.M, op string) []string {
	t.Helper()
	doc, ok := update[op]
	if !ok {
		return nil
	}
	m, ok := doc.(bson.M)
	require.True(t, ok, "%s must be a bson.M", op)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Mongo rejects an update that names the same path in $set and $setOnInsert,
// and an upsert must still write every field of a fresh document.
func TestMongoUpdatesSplitFields(t *testing.T) {
	now := time.Now().UTC()
	ref := &content.AssetRef{AssetID: "k", URL: "u"}
	title, desc := "t", "d"

	aboutFields := []string{"createdAt", "description", "profilePic", "resume", "title", "updatedAt"}
	sectionFields := []string{"bgImg", "createdAt", "description", "title", "updatedAt"}
	homeFields := []string{"createdAt", "greetingMessage", "mainMessage", "subMessage", "updatedAt"}

	cases := []struct {
		name   string
		update bson.M
		fields []string
	}{
		{"home", homeUpdate(now, content.HomeInput{GreetingMessage: "a", MainMessage: "b", SubMessage: "c"}), homeFields},
		{"about init", aboutInitUpdate(now), aboutFields},
		{"about text both", aboutTextUpdate(now, &title, &desc), aboutFields},
		{"about text title", aboutTextUpdate(now, &title, nil), aboutFields},
		{"about text description", aboutTextUpdate(now, nil, &desc), aboutFields},
		{"about text none", aboutTextUpdate(now, nil, nil), aboutFields},
		{"about resume", aboutAssetUpdate(now, content.SlotResume, ref), aboutFields},
		{"about profilePic", aboutAssetUpdate(now, content.SlotProfilePic, ref), aboutFields},
		{"about clear resume", aboutAssetUpdate(now, content.SlotResume, nil), aboutFields},
		{"section init", sectionInitUpdate(now), sectionFields},
		{"section text", sectionTextUpdate(now, title, desc), sectionFields},
		{"section background", sectionBackgroundUpdate(now, ref), sectionFields},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			set := updateKeys(t, tc.update, "$set")
			onInsert := updateKeys(t, tc.update, "$setOnInsert")

			seen := map[string]bool{}
			for _, k := range set {
				seen[k] = true
			}
			for _, k := range onInsert {
				assert.False(t, seen[k], "%q is in both $set and $setOnInsert", k)
				seen[k] = true
			}
			all := make([]string, 0, len(seen))
			for k := range seen {
				all = append(all, k)
			}
			sort.Strings(all)
			assert.Equal(t, tc.fields, all)
		})
	}
}

// newMongoTestRepo runs against MONGODB_TEST_URI in a throwaway database.
func newMongoTestRepo(t *testing.T) *MongoRepo {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	ctx := context.Background()
	client, err := database.ConnectMongo(ctx, uri, 5*time.Second)
	require.NoError(t, err)
	db := client.Database("portfolio_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return NewMongoRepo(db)
}

func TestMongoRepo_Home(t *testing.T) {
	r := newMongoTestRepo(t)
	ctx := context.Background()

	_, err := r.GetHome(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	h, err := r.UpsertHome(ctx, content.HomeInput{GreetingMessage: "Hi", MainMessage: "Main", SubMessage: "Sub"})
	require.NoError(t, err)
	created := h.CreatedAt

	h, err = r.UpsertHome(ctx, content.HomeInput{GreetingMessage: "Hey", MainMessage: "M2", SubMessage: "S2"})
	require.NoError(t, err)
	assert.Equal(t, "Hey", h.GreetingMessage)
	assert.True(t, created.Equal(h.CreatedAt))
}

func TestMongoRepo_About(t *testing.T) {
	r := newMongoTestRepo(t)
	ctx := context.Background()

	a, err := r.UpsertAboutText(ctx, nil, strp("Bio"))
	require.NoError(t, err)
	assert.Equal(t, content.DefaultAboutTitle, a.Title)
	assert.Equal(t, "Bio", a.Description)
	assert.Nil(t, a.Resume)

	a, err = r.UpsertAboutText(ctx, strp("Me"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Me", a.Title)
	assert.Equal(t, "Bio", a.Description)

	ref := &content.AssetRef{AssetID: "portfolio/about/resume/cv.pdf", URL: "http://x/cv.pdf"}
	a, err = r.SetAboutAsset(ctx, content.SlotResume, ref)
	require.NoError(t, err)
	require.NotNil(t, a.Resume)
	assert.Equal(t, ref.AssetID, a.Resume.AssetID)
	assert.Equal(t, "Me", a.Title)

	got, err := r.GetOrInitAbout(ctx)
	require.NoError(t, err)
	assert.Equal(t, ref.URL, got.Resume.URL)
}

func TestMongoRepo_ServiceSectionsAndAssetIDs(t *testing.T) {
	r := newMongoTestRepo(t)
	ctx := context.Background()

	_, err := r.UpsertServiceSectionText(ctx, 2, "Two", "second")
	require.NoError(t, err)
	s, err := r.SetServiceBackground(ctx, 0, &content.AssetRef{AssetID: "bg0", URL: "u"})
	require.NoError(t, err)
	assert.Empty(t, s.Title)

	list, err := r.ListServiceSections(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 0, list[0].ID)
	assert.Equal(t, "Two", list[1].Title)

	_, err = r.SetAboutAsset(ctx, content.SlotProfilePic, &content.AssetRef{AssetID: "p"})
	require.NoError(t, err)
	ids, err := r.ListAssetIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bg0", "p"}, ids)
}
