package repository

import (
	"context"
	"time"

	"pairchat/internal/domain/user"
	pairchat_errors "pairchat/pkg/errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type userRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewUserRepository(coll *mongo.Collection, timeout time.Duration) UserRepository {
	return &userRepository{coll: coll, timeout: timeout}
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Contacts == nil {
		u.Contacts = []string{}
	}
	if u.ContactRequests == nil {
		u.ContactRequests = []string{}
	}
	if u.SentRequests == nil {
		u.SentRequests = []string{}
	}

	opCtx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.InsertOne(opCtx, u)
	return translateStoreErr(err)
}

func (r *userRepository) Get(ctx context.Context, username string) (user.User, error) {
	var u user.User
	err := withReadRetry(ctx, func(opCtx context.Context) error {
		return r.coll.FindOne(opCtx, bson.M{"_id": username}).Decode(&u)
	}, r.timeout)
	if err != nil {
		return user.User{}, translateStoreErr(err)
	}
	return u, nil
}

func (r *userRepository) Exists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := withReadRetry(ctx, func(opCtx context.Context) error {
		var innerErr error
		count, innerErr = r.coll.CountDocuments(opCtx, bson.M{"_id": username})
		return innerErr
	}, r.timeout)
	if err != nil {
		return false, translateStoreErr(err)
	}
	return count > 0, nil
}

// AddContactRequest is a single conditional update: the filter matches
// only when the request is not yet pending, which makes the duplicate
// check atomic with the append. A zero match is disambiguated with a
// follow-up existence read.
func (r *userRepository) AddContactRequest(ctx context.Context, target, requester string) error {
	opCtx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.UpdateOne(opCtx,
		bson.M{"_id": target, "contactRequests": bson.M{"$ne": requester}},
		bson.M{
			"$addToSet": bson.M{"contactRequests": requester},
			"$set":      bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return translateStoreErr(err)
	}
	if res.MatchedCount == 0 {
		exists, err := r.Exists(ctx, target)
		if err != nil {
			return err
		}
		if !exists {
			return pairchat_errors.ErrNotFound
		}
		return pairchat_errors.ErrConflict
	}
	return nil
}

func (r *userRepository) AddSentRequest(ctx context.Context, requester, target string) error {
	opCtx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.UpdateOne(opCtx,
		bson.M{"_id": requester},
		bson.M{
			"$addToSet": bson.M{"sentRequests": target},
			"$set":      bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return translateStoreErr(err)
	}
	if res.MatchedCount == 0 {
		return pairchat_errors.ErrNotFound
	}
	return nil
}

// GrantContact upserts so that a missing user document is treated as an
// empty profile rather than an error; the accept endpoint keeps that
// lenient behavior on purpose.
func (r *userRepository) GrantContact(ctx context.Context, username, contact string) error {
	opCtx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.UpdateOne(opCtx,
		bson.M{"_id": username},
		bson.M{
			"$addToSet": bson.M{"contacts": contact},
			"$pull": bson.M{
				"contactRequests": contact,
				"sentRequests":    contact,
			},
			"$set":         bson.M{"updatedAt": time.Now()},
			"$setOnInsert": bson.M{"hashedPassword": "", "createdAt": time.Now()},
		},
		options.UpdateOne().SetUpsert(true),
	)
	return translateStoreErr(err)
}

func (r *userRepository) RemoveContactRequest(ctx context.Context, username, from string) error {
	return r.pull(ctx, username, "contactRequests", from)
}

func (r *userRepository) RemoveSentRequest(ctx context.Context, username, to string) error {
	return r.pull(ctx, username, "sentRequests", to)
}

func (r *userRepository) pull(ctx context.Context, username, field, member string) error {
	opCtx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.UpdateOne(opCtx,
		bson.M{"_id": username},
		bson.M{
			"$pull": bson.M{field: member},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return translateStoreErr(err)
	}
	if res.MatchedCount == 0 {
		return pairchat_errors.ErrNotFound
	}
	return nil
}
