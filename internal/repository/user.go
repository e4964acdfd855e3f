package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"userhub/internal/domainerr"
	"userhub/internal/model"
	"userhub/pkg/generic"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IUserRepository defines user persistence. Absent users are reported as
// (nil, nil) or false, never as errors.
type IUserRepository interface {
	Create(ctx context.Context, user *model.User) (string, error)
	Update(ctx context.Context, ref string, user *model.User) (string, error)
	GetByReference(ctx context.Context, ref string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetAll(ctx context.Context, page, size int) ([]*model.User, error)
	GetByQuery(ctx context.Context, query model.UserQuery, page, size int) ([]*model.User, error)
	Delete(ctx context.Context, ref string) (bool, error)
	SoftDelete(ctx context.Context, ref, actor string) (bool, error)
	EnsureIndexes(ctx context.Context) error
}

// UserRepository implements user persistence on MongoDB
type UserRepository struct {
	base       *generic.MongoBaseRepository[*model.User]
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database, collection string) *UserRepository {
	coll := db.Collection(collection)
	return &UserRepository{
		base:       generic.NewBaseRepository[*model.User](coll, "user_reference"),
		collection: coll,
	}
}

// EnsureIndexes creates the unique indexes on user_reference and email.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_reference", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_user_reference")},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_email")},
		{Keys: bson.D{{Key: "organisations.organisation_reference", Value: 1}}, Options: options.Index().SetName("organisation_reference")},
	})
	if err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) (string, error) {
	if err := r.base.InsertOne(ctx, user); err != nil {
		return "", mapWriteError(err)
	}
	return user.UserReference, nil
}

func (r *UserRepository) Update(ctx context.Context, ref string, user *model.User) (string, error) {
	if user.UserReference != ref {
		return "", fmt.Errorf("update user %s: reference mismatch %s", ref, user.UserReference)
	}
	matched, err := r.base.Replace(ctx, user)
	if err != nil {
		return "", mapWriteError(err)
	}
	if !matched {
		return "", nil
	}
	return ref, nil
}

func (r *UserRepository) GetByReference(ctx context.Context, ref string) (*model.User, error) {
	user, found, err := r.base.FindByReference(ctx, ref)
	if err != nil || !found {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, found, err := r.base.FindOne(ctx, bson.M{"email": model.NormalizeEmail(email)})
	if err != nil || !found {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetAll(ctx context.Context, page, size int) ([]*model.User, error) {
	return r.base.FindPage(ctx, bson.M{}, page, size)
}

func (r *UserRepository) GetByQuery(ctx context.Context, query model.UserQuery, page, size int) ([]*model.User, error) {
	return r.base.FindPage(ctx, QueryFilter(query), page, size)
}

func (r *UserRepository) Delete(ctx context.Context, ref string) (bool, error) {
	return r.base.DeleteOne(ctx, ref)
}

// SoftDelete deactivates an active user. Already inactive or missing users report false.
func (r *UserRepository) SoftDelete(ctx context.Context, ref, actor string) (bool, error) {
	return r.base.UpdateFields(ctx,
		bson.M{"user_reference": ref, "is_active": true},
		bson.M{
			"is_active":                 false,
			"updated_at_timestamp":      time.Now().UTC().Format(model.TimestampLayout),
			"updated_by_user_reference": actor,
		},
	)
}

// QueryFilter translates a UserQuery into a Mongo filter. Names match
// case-insensitively and exactly.
func QueryFilter(q model.UserQuery) bson.M {
	filter := bson.M{}
	if v := strings.TrimSpace(q.FirstName); v != "" {
		filter["first_name"] = exactFold(v)
	}
	if v := strings.TrimSpace(q.LastName); v != "" {
		filter["last_name"] = exactFold(v)
	}
	if v := strings.TrimSpace(q.Email); v != "" {
		filter["email"] = model.NormalizeEmail(v)
	}
	if v := strings.TrimSpace(q.OrganisationReference); v != "" {
		filter["organisations.organisation_reference"] = v
	}
	if q.IsActive != nil {
		filter["is_active"] = *q.IsActive
	}
	return filter
}

func exactFold(v string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(v) + "$", Options: "i"}
}

func mapWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return domainerr.Wrap(domainerr.KindConflict, "a user with this email or reference already exists", err)
	}
	return err
}

// Seed inserts user unless a user with the same reference exists. It reports
// whether a new record was written.
func Seed(ctx context.Context, repo IUserRepository, user *model.User) (bool, error) {
	existing, err := repo.GetByReference(ctx, user.UserReference)
	if err != nil {
		return false, fmt.Errorf("seed lookup %s: %w", user.UserReference, err)
	}
	if existing != nil {
		return false, nil
	}
	if _, err := repo.Create(ctx, user); err != nil {
		if domainerr.IsKind(err, domainerr.KindConflict) {
			return false, nil
		}
		return false, fmt.Errorf("seed create %s: %w", user.UserReference, err)
	}
	return true, nil
}
