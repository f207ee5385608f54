package db

import (
	"context"

	"github.com/ponggrid/authsvc/internal/twofactor/entity"
)

const getSecret = `
SELECT user_id, secret, auth_type, created_at, updated_at
FROM twofactor_secrets
WHERE user_id = $1
`

// GetSecret loads the stored authenticator secret for a user.
func (s *DB) GetSecret(ctx context.Context, userID string) (_ *entity.SecretRecord, err error) {
	ctx, span := s.startSpan(ctx, "GetSecret")
	defer func() { s.endSpan(span, err) }()

	var rec entity.SecretRecord
	var authType string
	err = s.conn.QueryRow(ctx, getSecret, userID).
		Scan(&rec.UserID, &rec.Secret, &authType, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	rec.AuthType = entity.AuthTypeFromString(authType)
	return &rec, nil
}

const upsertSecret = `
INSERT INTO twofactor_secrets (user_id, secret, auth_type, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
ON CONFLICT (user_id) DO UPDATE
SET secret = EXCLUDED.secret, auth_type = EXCLUDED.auth_type, updated_at = now()
`

// UpsertSecret writes or replaces the stored secret for a user.
func (s *DB) UpsertSecret(ctx context.Context, rec entity.SecretRecord) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertSecret")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, upsertSecret, rec.UserID, rec.Secret, rec.AuthType.String())
	err = s.mapError(err)
	return err
}

const deleteSecret = `
DELETE FROM twofactor_secrets WHERE user_id = $1
`

// DeleteSecret removes the stored secret for a user. Deleting a missing row
// is not an error.
func (s *DB) DeleteSecret(ctx context.Context, userID string) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteSecret")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, deleteSecret, userID)
	err = s.mapError(err)
	return err
}
