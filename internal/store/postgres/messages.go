package postgres

import (
	"context"
	"time"

	"github.com/adil-khursheed/mysterymessage/internal/model"
	"github.com/adil-khursheed/mysterymessage/internal/store"
)

func (s *Store) AddMessage(ctx context.Context, accountID string, content string) (model.Message, error) {
	var m model.Message
	err := s.pool.QueryRow(ctx, `
		insert into public.messages (account_id, content)
		values ($1::uuid, $2)
		returning id::text, content, created_at
	`, accountID, content).Scan(&m.ID, &m.Content, &m.CreatedAt)
	if err != nil {
		return model.Message{}, mapPgErr(err)
	}
	return m, nil
}

// ListMessages resolves the account and its messages in one round trip. The
// left join yields a single all-null message row for an account without
// messages and no rows at all for an unknown account.
func (s *Store) ListMessages(ctx context.Context, accountID string) ([]model.Message, error) {
	rows, err := s.pool.Query(ctx, `
		select m.id::text, m.content, m.created_at
		from public.accounts a
		left join public.messages m on m.account_id = a.id
		where a.id = $1::uuid
		order by m.created_at desc nulls last
	`, accountID)
	if err != nil {
		return nil, mapPgErr(err)
	}
	defer rows.Close()

	found := false
	out := []model.Message{}
	for rows.Next() {
		found = true
		var (
			id        *string
			content   *string
			createdAt *time.Time
		)
		if err := rows.Scan(&id, &content, &createdAt); err != nil {
			return nil, mapPgErr(err)
		}
		if id == nil {
			continue
		}
		out = append(out, model.Message{ID: *id, Content: *content, CreatedAt: *createdAt})
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgErr(err)
	}
	if !found {
		return nil, store.ErrNotFound
	}
	return out, nil
}

func (s *Store) DeleteMessage(ctx context.Context, accountID string, messageID string) error {
	cmdTag, err := s.pool.Exec(ctx, `
		delete from public.messages
		where id = $1::uuid
		  and account_id = $2::uuid
	`, messageID, accountID)
	if err != nil {
		return mapPgErr(err)
	}
	if cmdTag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
