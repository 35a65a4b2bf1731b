package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/chatify/chatify-api/internal/model"
)

// UserRepository defines the interface for user-related database operations.
//
// The Confirm and Consume methods are conditional updates: the store filter
// re-asserts the pending-code group, so the update applies only while the
// code is still present, matching and unexpired. Concurrent confirms of the
// same code cannot both succeed; the losers get mongo.ErrNoDocuments.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, params UpdateUserParams) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id string) error

	SetVerificationCode(ctx context.Context, email, code string, expiresAt time.Time) error
	ConfirmVerification(ctx context.Context, email, code string, now time.Time) (*model.User, error)

	SetEmailChangeCode(ctx context.Context, id, pendingEmail, code string, expiresAt time.Time) error
	ConfirmEmailChange(ctx context.Context, id, pendingEmail, code string, now time.Time) (*model.User, error)

	SetPasswordResetCode(ctx context.Context, email, code string, expiresAt time.Time) error
	ConsumePasswordResetCode(ctx context.Context, email, code, passwordHash string, now time.Time) (*model.User, error)
}

// UpdateUserParams defines the optional parameters for updating a user.
// Only the fields that are not nil will be updated.
type UpdateUserParams struct {
	Username *string
}

const userCollection = "users"

type userMongoRepository struct {
	db *mongo.Database
}

func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(userCollection).FindOne(ctx, bson.M{"_id": objectID})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	result := r.db.Collection(userCollection).FindOne(ctx, bson.M{"email": email})
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) UpdateUser(
	ctx context.Context,
	id string,
	params UpdateUserParams,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	// Build update query
	updateMap := bson.M{}
	if params.Username != nil {
		updateMap["username"] = params.Username
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no user fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userMongoRepository) UpdateLastLogin(ctx context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"last_login_at": time.Now()}},
	)
	return err
}

func (r *userMongoRepository) SetVerificationCode(
	ctx context.Context,
	email, code string,
	expiresAt time.Time,
) error {
	return r.setPendingCode(
		ctx,
		bson.M{"email": email},
		verificationGroup.issueSet(code, expiresAt, nil),
	)
}

func (r *userMongoRepository) ConfirmVerification(
	ctx context.Context,
	email, code string,
	now time.Time,
) (*model.User, error) {
	return r.confirmPendingCode(
		ctx,
		verificationGroup.matchFilter(bson.M{"email": email}, code, now),
		bson.M{"verified": true},
		verificationGroup.clearUnset(),
	)
}

func (r *userMongoRepository) SetEmailChangeCode(
	ctx context.Context,
	id, pendingEmail, code string,
	expiresAt time.Time,
) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	return r.setPendingCode(
		ctx,
		bson.M{"_id": objectID},
		emailChangeGroup.issueSet(code, expiresAt, bson.M{"pending_email": pendingEmail}),
	)
}

func (r *userMongoRepository) ConfirmEmailChange(
	ctx context.Context,
	id, pendingEmail, code string,
	now time.Time,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	// The filter pins pending_email to the value the caller read, so the
	// swap and the group clear land in one document update or not at all.
	filter := emailChangeGroup.matchFilter(bson.M{"_id": objectID}, code, now)
	filter["pending_email"] = pendingEmail

	return r.confirmPendingCode(ctx, filter, bson.M{"email": pendingEmail}, emailChangeGroup.clearUnset())
}

func (r *userMongoRepository) SetPasswordResetCode(
	ctx context.Context,
	email, code string,
	expiresAt time.Time,
) error {
	return r.setPendingCode(
		ctx,
		bson.M{"email": email},
		passwordResetGroup.issueSet(code, expiresAt, nil),
	)
}

func (r *userMongoRepository) ConsumePasswordResetCode(
	ctx context.Context,
	email, code, passwordHash string,
	now time.Time,
) (*model.User, error) {
	return r.confirmPendingCode(
		ctx,
		passwordResetGroup.matchFilter(bson.M{"email": email}, code, now),
		bson.M{"password_hash": passwordHash},
		passwordResetGroup.clearUnset(),
	)
}

func (r *userMongoRepository) setPendingCode(ctx context.Context, filter, set bson.M) error {
	result, err := r.db.Collection(userCollection).UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}

	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (r *userMongoRepository) confirmPendingCode(
	ctx context.Context,
	filter, set, unset bson.M,
) (*model.User, error) {
	set["updated_at"] = time.Now()

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$set": set, "$unset": unset},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if result.Err() != nil {
		return nil, result.Err()
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}
