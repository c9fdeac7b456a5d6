package user

import (
	"context"
	"errors"
	"time"

	common_models "go-opsdesk/internal/common/models"
	"go-opsdesk/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepository interface {
	Insert(ctx context.Context, user *common_models.User) error
	FindByID(ctx context.Context, id string) (*common_models.User, error)
	FindByEmail(ctx context.Context, email string) (*common_models.User, error)
	List(ctx context.Context) ([]common_models.User, error)
	FindByRole(ctx context.Context, roleID string) ([]common_models.User, error)
	CountByRole(ctx context.Context, roleID string) (int64, error)
	SetRole(ctx context.Context, id string, roleID string) error
	PermissionsOf(ctx context.Context, id string) ([]string, error)
	SetLastLogin(ctx context.Context, id string, t time.Time) error
}

type UserRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewUserRepository(mongodb *database.MongodbDB) UserRepository {
	return &UserRepositoryImpl{
		Collection: mongodb.DB.Collection("users"),
	}
}

func (r *UserRepositoryImpl) Insert(ctx context.Context, user *common_models.User) error {
	_, err := r.Collection.InsertOne(ctx, user)
	return err
}

// FindByID returns (nil, nil) when no user matches.
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*common_models.User, error) {
	var user common_models.User
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*common_models.User, error) {
	var user common_models.User
	err := r.Collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) List(ctx context.Context) ([]common_models.User, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []common_models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepositoryImpl) FindByRole(ctx context.Context, roleID string) ([]common_models.User, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{"role": roleID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []common_models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepositoryImpl) CountByRole(ctx context.Context, roleID string) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{"role": roleID})
}

func (r *UserRepositoryImpl) SetRole(ctx context.Context, id string, roleID string) error {
	update := bson.M{
		"$set": bson.M{
			"role":       roleID,
			"updated_at": time.Now(),
		},
	}
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// PermissionsOf reads only the materialized permission list of a user.
func (r *UserRepositoryImpl) PermissionsOf(ctx context.Context, id string) ([]string, error) {
	var user common_models.User
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user.Permissions, nil
}

func (r *UserRepositoryImpl) SetLastLogin(ctx context.Context, id string, t time.Time) error {
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_login": t}})
	return err
}
