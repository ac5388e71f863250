package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/harryzhoudev/portfolio-api/internal/content"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	homeCollection     = "home"
	aboutCollection    = "about"
	servicesCollection = "services"

	// singletons live under a fixed _id so find-and-upsert can never create a second one
	homeDocID  = "home"
	aboutDocID = "about"
)

// MongoRepo implements Repository on three collections: home and about each
// hold one document, services holds one document per section keyed by its id.
type MongoRepo struct {
	home     *mongo.Collection
	about    *mongo.Collection
	services *mongo.Collection
}

var _ Repository = (*MongoRepo)(nil)

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{
		home:     db.Collection(homeCollection),
		about:    db.Collection(aboutCollection),
		services: db.Collection(servicesCollection),
	}
}

func upsertAfter() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
}

func (m *MongoRepo) GetHome(ctx context.Context) (*content.Home, error) {
	var h content.Home
	if err := m.home.FindOne(ctx, bson.M{"_id": homeDocID}).Decode(&h); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

func homeUpdate(now time.Time, in content.HomeInput) bson.M {
	return bson.M{
		"$set": bson.M{
			"greetingMessage": in.GreetingMessage,
			"mainMessage":     in.MainMessage,
			"subMessage":      in.SubMessage,
			"updatedAt":       now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
}

func (m *MongoRepo) UpsertHome(ctx context.Context, in content.HomeInput) (*content.Home, error) {
	update := homeUpdate(time.Now().UTC(), in)
	var h content.Home
	if err := m.home.FindOneAndUpdate(ctx, bson.M{"_id": homeDocID}, update, upsertAfter()).Decode(&h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (m *MongoRepo) GetAbout(ctx context.Context) (*content.About, error) {
	var a content.About
	if err := m.about.FindOne(ctx, bson.M{"_id": aboutDocID}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// aboutDefaults returns the $setOnInsert fields for a new About document,
// leaving out anything the caller is about to $set.
func aboutDefaults(now time.Time, skip ...string) bson.M {
	d := bson.M{
		"title":       content.DefaultAboutTitle,
		"description": content.DefaultAboutDescription,
		"resume":      nil,
		"profilePic":  nil,
		"createdAt":   now,
	}
	for _, k := range skip {
		delete(d, k)
	}
	return d
}

func (m *MongoRepo) findOneAndUpsertAbout(ctx context.Context, update bson.M) (*content.About, error) {
	var a content.About
	if err := m.about.FindOneAndUpdate(ctx, bson.M{"_id": aboutDocID}, update, upsertAfter()).Decode(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

func aboutInitUpdate(now time.Time) bson.M {
	defaults := aboutDefaults(now)
	defaults["updatedAt"] = now
	return bson.M{"$setOnInsert": defaults}
}

// aboutTextUpdate sets only the fields given; a nil field keeps its value or,
// on insert, takes the default.
func aboutTextUpdate(now time.Time, title, description *string) bson.M {
	set := bson.M{"updatedAt": now}
	var skip []string
	if title != nil {
		set["title"] = *title
		skip = append(skip, "title")
	}
	if description != nil {
		set["description"] = *description
		skip = append(skip, "description")
	}
	return bson.M{"$set": set, "$setOnInsert": aboutDefaults(now, skip...)}
}

func aboutAssetUpdate(now time.Time, slot content.AboutSlot, ref *content.AssetRef) bson.M {
	set := bson.M{string(slot): ref, "updatedAt": now}
	return bson.M{"$set": set, "$setOnInsert": aboutDefaults(now, string(slot))}
}

func (m *MongoRepo) GetOrInitAbout(ctx context.Context) (*content.About, error) {
	return m.findOneAndUpsertAbout(ctx, aboutInitUpdate(time.Now().UTC()))
}

func (m *MongoRepo) UpsertAboutText(ctx context.Context, title, description *string) (*content.About, error) {
	return m.findOneAndUpsertAbout(ctx, aboutTextUpdate(time.Now().UTC(), title, description))
}

func (m *MongoRepo) SetAboutAsset(ctx context.Context, slot content.AboutSlot, ref *content.AssetRef) (*content.About, error) {
	if slot != content.SlotResume && slot != content.SlotProfilePic {
		return nil, content.Invalid("slot", "is unknown")
	}
	return m.findOneAndUpsertAbout(ctx, aboutAssetUpdate(time.Now().UTC(), slot, ref))
}

func (m *MongoRepo) ListServiceSections(ctx context.Context) ([]*content.ServiceSection, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := m.services.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*content.ServiceSection{}
	for cur.Next(ctx) {
		var s content.ServiceSection
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, cur.Err()
}

func (m *MongoRepo) findOneAndUpsertSection(ctx context.Context, id int, update bson.M) (*content.ServiceSection, error) {
	var s content.ServiceSection
	if err := m.services.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, upsertAfter()).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

func sectionDefaults(now time.Time, skip ...string) bson.M {
	d := bson.M{"title": "", "description": "", "bgImg": nil, "createdAt": now}
	for _, k := range skip {
		delete(d, k)
	}
	return d
}

func sectionInitUpdate(now time.Time) bson.M {
	defaults := sectionDefaults(now)
	defaults["updatedAt"] = now
	return bson.M{"$setOnInsert": defaults}
}

func sectionTextUpdate(now time.Time, title, description string) bson.M {
	return bson.M{
		"$set":         bson.M{"title": title, "description": description, "updatedAt": now},
		"$setOnInsert": sectionDefaults(now, "title", "description"),
	}
}

func sectionBackgroundUpdate(now time.Time, ref *content.AssetRef) bson.M {
	return bson.M{
		"$set":         bson.M{"bgImg": ref, "updatedAt": now},
		"$setOnInsert": sectionDefaults(now, "bgImg"),
	}
}

func (m *MongoRepo) GetOrInitServiceSection(ctx context.Context, id int) (*content.ServiceSection, error) {
	return m.findOneAndUpsertSection(ctx, id, sectionInitUpdate(time.Now().UTC()))
}

func (m *MongoRepo) UpsertServiceSectionText(ctx context.Context, id int, title, description string) (*content.ServiceSection, error) {
	return m.findOneAndUpsertSection(ctx, id, sectionTextUpdate(time.Now().UTC(), title, description))
}

func (m *MongoRepo) SetServiceBackground(ctx context.Context, id int, ref *content.AssetRef) (*content.ServiceSection, error) {
	return m.findOneAndUpsertSection(ctx, id, sectionBackgroundUpdate(time.Now().UTC(), ref))
}

func (m *MongoRepo) ListAssetIDs(ctx context.Context) ([]string, error) {
	var ids []string
	a, err := m.GetAbout(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, err
	default:
		for _, r := range []*content.AssetRef{a.Resume, a.ProfilePic} {
			if r != nil {
				ids = append(ids, r.AssetID)
			}
		}
	}
	sections, err := m.ListServiceSections(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range sections {
		if s.BackgroundImage != nil {
			ids = append(ids, s.BackgroundImage.AssetID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
