package store

import (
	"context"
	"errors"

	"github.com/adil-khursheed/mysterymessage/internal/model"
)

var (
	ErrNotFound = errors.New("not_found")
	ErrConflict = errors.New("conflict")
)

// Store persists accounts and the messages they own.
//
// Message methods are always scoped by the owning account id. DeleteMessage
// returns ErrNotFound both for ids that never existed and for ids owned by a
// different account.
type Store interface {
	CreateAccount(ctx context.Context, a model.Account) (model.Account, error)
	GetAccountByID(ctx context.Context, id string) (*model.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)
	MarkVerified(ctx context.Context, id string) error

	AddMessage(ctx context.Context, accountID string, content string) (model.Message, error)
	ListMessages(ctx context.Context, accountID string) ([]model.Message, error)
	DeleteMessage(ctx context.Context, accountID string, messageID string) error
}
