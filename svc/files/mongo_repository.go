package files

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const filesCollection = "files"

type entryDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    string        `bson:"userId"`
	Name      string        `bson:"name"`
	Kind      string        `bson:"type"`
	ParentID  string        `bson:"parentId"`
	IsPublic  bool          `bson:"isPublic"`
	LocalPath string        `bson:"localPath,omitempty"`
}

func (d entryDocument) toEntry() *Entry {
	return &Entry{
		ID:        d.ID.Hex(),
		UserID:    d.UserID,
		Name:      d.Name,
		Kind:      Kind(d.Kind),
		ParentID:  d.ParentID,
		IsPublic:  d.IsPublic,
		LocalPath: d.LocalPath,
	}
}

// MongoRepository persists file tree entries in the files collection.
type MongoRepository struct {
	coll *mongo.Collection
}

// NewMongoRepository creates an entry repository backed by db.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(filesCollection)}
}

func (r *MongoRepository) Insert(ctx context.Context, entry *Entry) error {
	doc := entryDocument{
		ID:        bson.NewObjectID(),
		UserID:    entry.UserID,
		Name:      entry.Name,
		Kind:      string(entry.Kind),
		ParentID:  entry.ParentID,
		IsPublic:  entry.IsPublic,
		LocalPath: entry.LocalPath,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}
	entry.ID = doc.ID.Hex()
	return nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (*Entry, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		// Malformed ids behave like ids that do not exist.
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoRepository) FindByIDAndOwner(ctx context.Context, id, userID string) (*Entry, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid, "userId": userID})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*Entry, error) {
	var doc entryDocument
	err := r.coll.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find entry: %w", err)
	}
	return doc.toEntry(), nil
}

func (r *MongoRepository) List(ctx context.Context, userID, parentID string, page int64) ([]*Entry, error) {
	if page < 0 {
		page = 0
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(page * PageSize).
		SetLimit(PageSize)

	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID, "parentId": parentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer cursor.Close(ctx) //nolint:errcheck

	entries := make([]*Entry, 0, PageSize)
	for cursor.Next(ctx) {
		var doc entryDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode entry: %w", err)
		}
		entries = append(entries, doc.toEntry())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return entries, nil
}

func (r *MongoRepository) SetVisibility(ctx context.Context, id, userID string, public bool) (*Entry, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc entryDocument
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "userId": userID},
		bson.M{"$set": bson.M{"isPublic": public}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update entry visibility: %w", err)
	}
	return doc.toEntry(), nil
}

func (r *MongoRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}
