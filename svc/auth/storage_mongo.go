package auth

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	mongox "github.com/dmitrymomot/filevault/pkg/mongo"
	"github.com/dmitrymomot/filevault/pkg/objectid"
)

// UsersCollection is the MongoDB collection holding users.
const UsersCollection = "users"

// MongoUserStorage keeps users in MongoDB.
type MongoUserStorage struct {
	users *mongox.Collection[User]
}

// NewMongoUserStorage returns storage over db.users.
func NewMongoUserStorage(db *mongo.Database) *MongoUserStorage {
	return &MongoUserStorage{users: mongox.NewCollection[User](db, UsersCollection)}
}

// EnsureIndexes creates the unique email index.
func (s *MongoUserStorage) EnsureIndexes(ctx context.Context) error {
	return s.users.EnsureIndexes(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
}

func (s *MongoUserStorage) CreateUser(ctx context.Context, u *User) error {
	if _, err := s.users.InsertOne(ctx, *u); err != nil {
		if errors.Is(err, mongox.ErrDuplicateKey) {
			return ErrEmailAlreadyExists
		}
		return err
	}
	return nil
}

func (s *MongoUserStorage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoUserStorage) GetUserByID(ctx context.Context, id objectid.ID) (*User, error) {
	if id.IsZero() {
		return nil, ErrUserNotFound
	}
	return s.findOne(ctx, bson.M{"_id": id.ObjectID()})
}

func (s *MongoUserStorage) CountUsers(ctx context.Context) (int64, error) {
	return s.users.Count(ctx, nil)
}

func (s *MongoUserStorage) findOne(ctx context.Context, filter bson.M) (*User, error) {
	u, err := s.users.FindOne(ctx, filter)
	if err != nil {
		if errors.Is(err, mongox.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}
