package permission

import (
	"context"
	"errors"

	common_models "go-opsdesk/internal/common/models"
	"go-opsdesk/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type PermissionRepository interface {
	Insert(ctx context.Context, permission *common_models.Permission) error
	InsertMany(ctx context.Context, permissions []common_models.Permission) error
	FindByKey(ctx context.Context, key string) (*common_models.Permission, error)
	List(ctx context.Context) ([]common_models.Permission, error)
	Delete(ctx context.Context, key string) error
	Count(ctx context.Context) (int64, error)
}

type PermissionRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewPermissionRepository(mongodb *database.MongodbDB) PermissionRepository {
	return &PermissionRepositoryImpl{
		Collection: mongodb.DB.Collection("permissions"),
	}
}

func (r *PermissionRepositoryImpl) Insert(ctx context.Context, permission *common_models.Permission) error {
	_, err := r.Collection.InsertOne(ctx, permission)
	return err
}

func (r *PermissionRepositoryImpl) InsertMany(ctx context.Context, permissions []common_models.Permission) error {
	if len(permissions) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(permissions))
	for i := range permissions {
		docs = append(docs, permissions[i])
	}
	_, err := r.Collection.InsertMany(ctx, docs)
	return err
}

// FindByKey returns (nil, nil) when the key does not exist.
func (r *PermissionRepositoryImpl) FindByKey(ctx context.Context, key string) (*common_models.Permission, error) {
	var permission common_models.Permission
	err := r.Collection.FindOne(ctx, bson.M{"_id": key}).Decode(&permission)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &permission, nil
}

func (r *PermissionRepositoryImpl) List(ctx context.Context) ([]common_models.Permission, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var permissions []common_models.Permission
	if err = cursor.All(ctx, &permissions); err != nil {
		return nil, err
	}
	return permissions, nil
}

func (r *PermissionRepositoryImpl) Delete(ctx context.Context, key string) error {
	_, err := r.Collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (r *PermissionRepositoryImpl) Count(ctx context.Context) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{})
}
