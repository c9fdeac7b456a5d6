package role

import (
	"context"
	"errors"
	"time"

	common_models "go-opsdesk/internal/common/models"
	"go-opsdesk/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type RoleRepository interface {
	Insert(ctx context.Context, role *common_models.Role) error
	InsertMany(ctx context.Context, roles []common_models.Role) error
	FindByID(ctx context.Context, id string) (*common_models.Role, error)
	FindByName(ctx context.Context, name string) (*common_models.Role, error)
	List(ctx context.Context) ([]common_models.Role, error)
	SetPermissions(ctx context.Context, id string, permissions []string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type RoleRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewRoleRepository(mongodb *database.MongodbDB) RoleRepository {
	return &RoleRepositoryImpl{
		Collection: mongodb.DB.Collection("roles"),
	}
}

func (r *RoleRepositoryImpl) Insert(ctx context.Context, role *common_models.Role) error {
	_, err := r.Collection.InsertOne(ctx, role)
	return err
}

func (r *RoleRepositoryImpl) InsertMany(ctx context.Context, roles []common_models.Role) error {
	if len(roles) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(roles))
	for i := range roles {
		docs = append(docs, roles[i])
	}
	_, err := r.Collection.InsertMany(ctx, docs)
	return err
}

// FindByID resolves a role by its document key only. Returns (nil, nil)
// when no role matches.
func (r *RoleRepositoryImpl) FindByID(ctx context.Context, id string) (*common_models.Role, error) {
	var role common_models.Role
	err := r.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&role)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepositoryImpl) FindByName(ctx context.Context, name string) (*common_models.Role, error) {
	var role common_models.Role
	err := r.Collection.FindOne(ctx, bson.M{"name": name}).Decode(&role)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RoleRepositoryImpl) List(ctx context.Context) ([]common_models.Role, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var roles []common_models.Role
	if err = cursor.All(ctx, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *RoleRepositoryImpl) SetPermissions(ctx context.Context, id string, permissions []string) error {
	update := bson.M{
		"$set": bson.M{
			"permissions": permissions,
			"updated_at":  time.Now(),
		},
	}
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (r *RoleRepositoryImpl) Delete(ctx context.Context, id string) error {
	_, err := r.Collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *RoleRepositoryImpl) Count(ctx context.Context) (int64, error) {
	return r.Collection.CountDocuments(ctx, bson.M{})
}
