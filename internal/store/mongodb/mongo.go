// Package mongodb stores accounts as documents in a single collection, each
// embedding its received messages as an array of sub-documents.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/adil-khursheed/mysterymessage/internal/model"
	"github.com/adil-khursheed/mysterymessage/internal/store"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const usersCollection = "users"

// usernameCollation makes username matching and uniqueness case-insensitive.
var usernameCollation = &options.Collation{Locale: "en", Strength: 2}

type userDocument struct {
	ID               bson.ObjectID     `bson:"_id,omitempty"`
	Username         string            `bson:"username"`
	Password         string            `bson:"password"`
	IsVerified       bool              `bson:"isVerified"`
	VerifyCode       string            `bson:"verifyCode"`
	VerifyCodeExpiry time.Time         `bson:"verifyCodeExpiry"`
	Messages         []messageDocument `bson:"messages"`
	CreatedAt        time.Time         `bson:"createdAt"`
	UpdatedAt        time.Time         `bson:"updatedAt"`
}

type messageDocument struct {
	ID        bson.ObjectID `bson:"_id"`
	Content   string        `bson:"content"`
	CreatedAt time.Time     `bson:"createdAt"`
}

func (d userDocument) account() *model.Account {
	return &model.Account{
		ID:               d.ID.Hex(),
		Username:         d.Username,
		PasswordHash:     d.Password,
		IsVerified:       d.IsVerified,
		VerifyCode:       d.VerifyCode,
		VerifyCodeExpiry: d.VerifyCodeExpiry,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func (d messageDocument) message() model.Message {
	return model.Message{ID: d.ID.Hex(), Content: d.Content, CreatedAt: d.CreatedAt}
}

type Store struct {
	client *mongo.Client
	users  *mongo.Collection
}

func NewStore(uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping: %w", err)
	}

	s := &Store{
		client: client,
		users:  client.Database(database).Collection(usersCollection),
	}

	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetCollation(usernameCollation),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create username index: %w", err)
	}

	return s, nil
}

func (s *Store) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Disconnect(ctx)
}

func mapMongoErr(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrConflict
	default:
		return err
	}
}

// objectID parses a hex identifier. Malformed ids cannot name any document,
// so they are reported as not found.
func objectID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return bson.ObjectID{}, store.ErrNotFound
	}
	return oid, nil
}

func (s *Store) CreateAccount(ctx context.Context, a model.Account) (model.Account, error) {
	username := strings.TrimSpace(a.Username)
	if username == "" {
		return model.Account{}, errors.New("username_required")
	}

	now := time.Now().UTC()
	doc := userDocument{
		ID:               bson.NewObjectID(),
		Username:         username,
		Password:         a.PasswordHash,
		IsVerified:       a.IsVerified,
		VerifyCode:       a.VerifyCode,
		VerifyCodeExpiry: a.VerifyCodeExpiry,
		Messages:         []messageDocument{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		return model.Account{}, mapMongoErr(err)
	}
	return *doc.account(), nil
}

func (s *Store) findAccount(ctx context.Context, filter bson.M, opts *options.FindOneOptionsBuilder) (*model.Account, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		return nil, mapMongoErr(err)
	}
	return doc.account(), nil
}

func (s *Store) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findAccount(ctx, bson.M{"_id": oid},
		options.FindOne().SetProjection(bson.M{"messages": 0}))
}

func (s *Store) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	return s.findAccount(ctx, bson.M{"username": strings.TrimSpace(username)},
		options.FindOne().SetProjection(bson.M{"messages": 0}).SetCollation(usernameCollation))
}

func (s *Store) MarkVerified(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"isVerified": true,
			"verifyCode": "",
			"updatedAt":  time.Now().UTC(),
		},
	})
	if err != nil {
		return mapMongoErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AddMessage(ctx context.Context, accountID string, content string) (model.Message, error) {
	oid, err := objectID(accountID)
	if err != nil {
		return model.Message{}, err
	}

	doc := messageDocument{
		ID:        bson.NewObjectID(),
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$push": bson.M{"messages": doc},
	})
	if err != nil {
		return model.Message{}, mapMongoErr(err)
	}
	if res.MatchedCount == 0 {
		return model.Message{}, store.ErrNotFound
	}
	return doc.message(), nil
}

func (s *Store) ListMessages(ctx context.Context, accountID string) ([]model.Message, error) {
	oid, err := objectID(accountID)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Messages []messageDocument `bson:"messages"`
	}
	err = s.users.FindOne(ctx, bson.M{"_id": oid},
		options.FindOne().SetProjection(bson.M{"messages": 1})).Decode(&doc)
	if err != nil {
		return nil, mapMongoErr(err)
	}

	out := make([]model.Message, 0, len(doc.Messages))
	for _, m := range doc.Messages {
		out = append(out, m.message())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteMessage pulls the message out of the owner's own document only, so an
// id belonging to another account modifies nothing.
func (s *Store) DeleteMessage(ctx context.Context, accountID string, messageID string) error {
	oid, err := objectID(accountID)
	if err != nil {
		return err
	}
	mid, err := objectID(messageID)
	if err != nil {
		return err
	}

	res, err := s.users.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$pull": bson.M{"messages": bson.M{"_id": mid}},
	})
	if err != nil {
		return mapMongoErr(err)
	}
	if res.ModifiedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
