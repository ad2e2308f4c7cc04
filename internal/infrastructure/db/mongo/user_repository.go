package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/identikit/user-service/internal/core/domain"
	"github.com/identikit/user-service/internal/core/ports"
)

const (
	collectionUsers     = "users"
	collectionRoles     = "roles"
	collectionCustomers = "customers"
)

// UserRepository persists users in MongoDB. A unique index on username makes
// the store the single arbiter of duplicate registrations: racing creates
// with the same username yield exactly one insert and one duplicate-key
// error. Single-document updates are atomic per record.
type UserRepository struct {
	users     *mongo.Collection
	roles     *mongo.Collection
	customers *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		users:     db.Collection(collectionUsers),
		roles:     db.Collection(collectionRoles),
		customers: db.Collection(collectionCustomers),
	}
}

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password_hash"`
	FirstName    string             `bson:"first_name,omitempty"`
	RoleID       string             `bson:"role_id,omitempty"`
	CustomerID   string             `bson:"customer_id,omitempty"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

type refDoc struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
}

// EnsureIndexes creates the indexes the repository relies on. The unique
// username index is load-bearing: Create's conflict detection depends on it.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "role_id", Value: 1}}},
		{Keys: bson.D{{Key: "customer_id", Value: 1}}},
	}

	_, err := r.users.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := userDoc{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		FirstName:    user.FirstName,
		RoleID:       user.RoleID,
		CustomerID:   user.CustomerID,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}

	res, err := r.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *UserRepository) Count(ctx context.Context, where ports.UserWhere) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.users.CountDocuments(ctx, whereToBSON(where))
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *UserRepository) Find(ctx context.Context, filter ports.UserFilter) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Skip > 0 {
		opts.SetSkip(int64(filter.Skip))
	}

	cur, err := r.users.Find(ctx, whereToBSON(filter.Where), opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for i := range docs {
		u := docs[i].toDomain()
		if err := r.hydrate(ctx, u, filter); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string, filter ports.UserFilter) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	var doc userDoc
	if err := r.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	u := doc.toDomain()
	if err := r.hydrate(ctx, u, filter); err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDoc
	if err := r.users.FindOne(ctx, bson.M{"username": username}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) UpdateAll(ctx context.Context, patch ports.UserPatch, where ports.UserWhere) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.users.UpdateMany(ctx, whereToBSON(where), bson.M{"$set": patchToBSON(patch)})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, domain.ErrUserExists
		}
		return 0, fmt.Errorf("update users: %w", err)
	}
	return res.MatchedCount, nil
}

func (r *UserRepository) UpdateByID(ctx context.Context, id string, patch ports.UserPatch) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.users.UpdateByID(ctx, oid, bson.M{"$set": patchToBSON(patch)})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// ReplaceByID overwrites the mutable fields of an existing user. The _id and
// created_at of the stored document survive the replacement.
func (r *UserRepository) ReplaceByID(ctx context.Context, id string, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	var current userDoc
	if err := r.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&current); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	doc := userDoc{
		ID:           oid,
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		FirstName:    user.FirstName,
		RoleID:       user.RoleID,
		CustomerID:   user.CustomerID,
		CreatedAt:    current.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}

	res, err := r.users.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("replace user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) DeleteByID(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.users.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// hydrate attaches the referenced role/customer documents when the filter
// asks for them. Missing references are left nil rather than treated as
// errors.
func (r *UserRepository) hydrate(ctx context.Context, u *domain.User, filter ports.UserFilter) error {
	if filter.IncludeRole && u.RoleID != "" {
		role, err := r.findRef(ctx, r.roles, u.RoleID)
		if err != nil {
			return fmt.Errorf("hydrate role: %w", err)
		}
		if role != nil {
			u.Role = &domain.Role{ID: role.ID.Hex(), Name: role.Name}
		}
	}
	if filter.IncludeCustomer && u.CustomerID != "" {
		customer, err := r.findRef(ctx, r.customers, u.CustomerID)
		if err != nil {
			return fmt.Errorf("hydrate customer: %w", err)
		}
		if customer != nil {
			u.Customer = &domain.Customer{ID: customer.ID.Hex(), Name: customer.Name}
		}
	}
	return nil
}

func (r *UserRepository) findRef(ctx context.Context, coll *mongo.Collection, id string) (*refDoc, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc refDoc
	if err := coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		FirstName:    d.FirstName,
		RoleID:       d.RoleID,
		CustomerID:   d.CustomerID,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func whereToBSON(where ports.UserWhere) bson.M {
	q := bson.M{}
	if where.Username != "" {
		q["username"] = where.Username
	}
	if where.RoleID != "" {
		q["role_id"] = where.RoleID
	}
	if where.CustomerID != "" {
		q["customer_id"] = where.CustomerID
	}
	return q
}

// patchToBSON builds the $set document. updated_at is always stamped so every
// patch path advances the record's timestamp.
func patchToBSON(patch ports.UserPatch) bson.M {
	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.PasswordHash != nil {
		set["password_hash"] = *patch.PasswordHash
	}
	if patch.FirstName != nil {
		set["first_name"] = *patch.FirstName
	}
	if patch.RoleID != nil {
		set["role_id"] = *patch.RoleID
	}
	if patch.CustomerID != nil {
		set["customer_id"] = *patch.CustomerID
	}
	return set
}
