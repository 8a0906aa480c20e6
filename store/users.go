package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"civicsync/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SettingsUpdate carries the profile fields a user may change. Nil fields are left alone.
type SettingsUpdate struct {
	DisplayName *string
	Language    *string
}

// CreateUser inserts user. The email is stored lower-cased; reusing one fails with ErrDuplicate.
func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	users := s.collection(usersCollection)

	count, err := users.CountDocuments(ctx, bson.M{"email": user.Email})
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return ErrDuplicate
	}

	now := s.now()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Role = models.NormalizeRole(string(user.Role))
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := users.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findUser(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (s *MongoStore) FindUserByID(ctx context.Context, userID string) (models.User, error) {
	id, err := parseID(userID)
	if err != nil {
		return models.User{}, err
	}
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (models.User, error) {
	var user models.User
	err := s.collection(usersCollection).FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	user.Role = models.NormalizeRole(string(user.Role))
	return user, nil
}

// ResolveRole returns the stored role for userID, normalized.
func (s *MongoStore) ResolveRole(ctx context.Context, userID string) (models.Role, error) {
	id, err := parseID(userID)
	if err != nil {
		return models.RoleCitizen, err
	}

	var doc struct {
		Role string `bson:"role"`
	}
	err = s.collection(usersCollection).FindOne(ctx,
		bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"role": 1}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.RoleCitizen, ErrNotFound
	}
	if err != nil {
		return models.RoleCitizen, fmt.Errorf("find role: %w", err)
	}
	return models.NormalizeRole(doc.Role), nil
}

// UpdateSettings applies update and returns the stored user.
func (s *MongoStore) UpdateSettings(ctx context.Context, userID string, update SettingsUpdate) (models.User, error) {
	id, err := parseID(userID)
	if err != nil {
		return models.User{}, err
	}

	set := bson.M{"updatedAt": s.now()}
	if update.DisplayName != nil {
		set["displayName"] = *update.DisplayName
	}
	if update.Language != nil {
		set["language"] = *update.Language
	}

	var user models.User
	err = s.collection(usersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("update settings: %w", err)
	}
	user.Role = models.NormalizeRole(string(user.Role))
	return user, nil
}
