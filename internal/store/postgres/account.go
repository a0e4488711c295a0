package postgres

import (
	"context"
	"errors"

	"github.com/adil-khursheed/mysterymessage/internal/model"
	"github.com/adil-khursheed/mysterymessage/internal/store"

	"github.com/jackc/pgx/v5"
)

const accountColumns = `id::text, username, password_hash, is_verified, verify_code, verify_code_expiry, created_at, updated_at`

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(
		&a.ID,
		&a.Username,
		&a.PasswordHash,
		&a.IsVerified,
		&a.VerifyCode,
		&a.VerifyCodeExpiry,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, mapPgErr(err)
	}
	return &a, nil
}

func (s *Store) CreateAccount(ctx context.Context, a model.Account) (model.Account, error) {
	out, err := scanAccount(s.pool.QueryRow(ctx, `
		insert into public.accounts (username, password_hash, is_verified, verify_code, verify_code_expiry)
		values ($1, $2, $3, $4, $5)
		returning `+accountColumns,
		a.Username, a.PasswordHash, a.IsVerified, a.VerifyCode, a.VerifyCodeExpiry,
	))
	if err != nil {
		return model.Account{}, err
	}
	return *out, nil
}

func (s *Store) GetAccountByID(ctx context.Context, id string) (*model.Account, error) {
	return scanAccount(s.pool.QueryRow(ctx, `
		select `+accountColumns+`
		from public.accounts
		where id = $1::uuid
	`, id))
}

func (s *Store) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	return scanAccount(s.pool.QueryRow(ctx, `
		select `+accountColumns+`
		from public.accounts
		where lower(username) = lower($1)
	`, username))
}

func (s *Store) MarkVerified(ctx context.Context, id string) error {
	cmdTag, err := s.pool.Exec(ctx, `
		update public.accounts
		set is_verified = true,
		    verify_code = ''
		where id = $1::uuid
	`, id)
	if err != nil {
		return mapPgErr(err)
	}
	if cmdTag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
