package files

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	mongox "github.com/dmitrymomot/filevault/pkg/mongo"
	"github.com/dmitrymomot/filevault/pkg/objectid"
)

// FilesCollection is the MongoDB collection holding nodes.
const FilesCollection = "files"

// MongoNodeStorage keeps nodes in MongoDB.
type MongoNodeStorage struct {
	nodes *mongox.Collection[Node]
}

// NewMongoNodeStorage returns storage over db.files.
func NewMongoNodeStorage(db *mongo.Database) *MongoNodeStorage {
	return &MongoNodeStorage{nodes: mongox.NewCollection[Node](db, FilesCollection)}
}

// EnsureIndexes creates the listing index.
func (s *MongoNodeStorage) EnsureIndexes(ctx context.Context) error {
	return s.nodes.EnsureIndexes(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "parentId", Value: 1}, {Key: "_id", Value: 1}},
	})
}

func (s *MongoNodeStorage) CreateNode(ctx context.Context, n *Node) error {
	_, err := s.nodes.InsertOne(ctx, *n)
	return err
}

func (s *MongoNodeStorage) GetNode(ctx context.Context, id objectid.ID) (*Node, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoNodeStorage) GetUserNode(ctx context.Context, id, userID objectid.ID) (*Node, error) {
	return s.findOne(ctx, bson.M{"_id": id, "userId": userID})
}

func (s *MongoNodeStorage) ListNodes(ctx context.Context, userID, parentID objectid.ID, skip, limit int) ([]Node, error) {
	return s.nodes.Paginate(ctx, bson.M{"userId": userID, "parentId": parentID}, int64(skip), int64(limit))
}

func (s *MongoNodeStorage) SetPublic(ctx context.Context, id, userID objectid.ID, public bool) (*Node, error) {
	n, err := s.nodes.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"isPublic": public}},
		nil,
	)
	if err != nil {
		if errors.Is(err, mongox.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (s *MongoNodeStorage) CountNodes(ctx context.Context) (int64, error) {
	return s.nodes.Count(ctx, nil)
}

func (s *MongoNodeStorage) findOne(ctx context.Context, filter bson.M) (*Node, error) {
	n, err := s.nodes.FindOne(ctx, filter)
	if err != nil {
		if errors.Is(err, mongox.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}
