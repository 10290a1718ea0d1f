package repository

import (
	"context"
	"time"

	"pairchat/internal/domain/conversation"
	pairchat_errors "pairchat/pkg/errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type conversationRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewConversationRepository(coll *mongo.Collection, timeout time.Duration) ConversationRepository {
	return &conversationRepository{coll: coll, timeout: timeout}
}

func (r *conversationRepository) Create(ctx context.Context, c *conversation.Conversation) error {
	opCtx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	_, err := r.coll.InsertOne(opCtx, c)
	return translateStoreErr(err)
}

func (r *conversationRepository) GetByID(ctx context.Context, id string) (conversation.Conversation, error) {
	var c conversation.Conversation
	err := withReadRetry(ctx, func(opCtx context.Context) error {
		return r.coll.FindOne(opCtx, bson.M{"_id": id}).Decode(&c)
	}, r.timeout)
	if err != nil {
		return conversation.Conversation{}, translateStoreErr(err)
	}
	return c, nil
}

func (r *conversationRepository) FindByParticipants(ctx context.Context, a, b string) (conversation.Conversation, error) {
	var c conversation.Conversation
	err := withReadRetry(ctx, func(opCtx context.Context) error {
		return r.coll.FindOne(opCtx, bson.M{"pairKey": conversation.PairKey(a, b)}).Decode(&c)
	}, r.timeout)
	if err != nil {
		return conversation.Conversation{}, translateStoreErr(err)
	}
	return c, nil
}

func (r *conversationRepository) ListForUser(ctx context.Context, username string) ([]conversation.Conversation, error) {
	var out []conversation.Conversation
	err := withReadRetry(ctx, func(opCtx context.Context) error {
		cursor, innerErr := r.coll.Find(opCtx, bson.M{"participants." + username: true})
		if innerErr != nil {
			return innerErr
		}
		out = out[:0]
		return cursor.All(opCtx, &out)
	}, r.timeout)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	if out == nil {
		out = []conversation.Conversation{}
	}
	return out, nil
}

// AppendMessage requires the sender to be a participant in the filter
// itself, so the authorization check and the append are one atomic
// update.
func (r *conversationRepository) AppendMessage(ctx context.Context, id string, m conversation.Message) error {
	opCtx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.UpdateOne(opCtx,
		bson.M{"_id": id, "participants." + m.Sender: true},
		bson.M{"$push": bson.M{"messages": m}},
	)
	if err != nil {
		return translateStoreErr(err)
	}
	if res.MatchedCount == 0 {
		return pairchat_errors.ErrNotFound
	}
	return nil
}

// MarkAllRead rewrites the readBy flag of every element with the all
// positional operator. Setting an already-true flag is a no-op, which
// is what makes the call idempotent.
func (r *conversationRepository) MarkAllRead(ctx context.Context, id, reader string) error {
	opCtx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.UpdateOne(opCtx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"messages.$[].readBy." + reader: true}},
	)
	if err != nil {
		return translateStoreErr(err)
	}
	if res.MatchedCount == 0 {
		return pairchat_errors.ErrNotFound
	}
	return nil
}

func (r *conversationRepository) SetTyping(ctx context.Context, id, username string, typing bool) error {
	opCtx, cancel := opContext(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.UpdateOne(opCtx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"typing." + username: typing}},
	)
	if err != nil {
		return translateStoreErr(err)
	}
	if res.MatchedCount == 0 {
		return pairchat_errors.ErrNotFound
	}
	return nil
}
