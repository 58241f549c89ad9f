package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/galleria-app/galleria/internal/auth/domain"
	"github.com/galleria-app/galleria/internal/auth/store"
)

type authorizationCodesRepo struct {
	db dbtx
}

const codeColumns = `id, user_id, client_id, code_hash, redirect_uri, scopes,
	code_challenge, code_challenge_method, expires_at, used_at, created_at`

func (r *authorizationCodesRepo) CreateAuthorizationCode(ctx context.Context, code domain.AuthorizationCode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO authorization_codes (
			id, user_id, client_id, code_hash, redirect_uri, scopes,
			code_challenge, code_challenge_method, expires_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		code.ID,
		code.UserID,
		code.ClientID,
		code.CodeHash,
		code.RedirectURI,
		strings.Join(code.Scopes, " "),
		code.CodeChallenge,
		code.CodeChallengeMethod,
		code.ExpiresAt,
	)
	return mapConstraint(err)
}

// ConsumeAuthorizationCode flips used_at in a single guarded UPDATE.
// Zero rows affected means the code is unknown or already used, which
// the caller cannot and should not distinguish.
func (r *authorizationCodesRepo) ConsumeAuthorizationCode(ctx context.Context, hash string) (domain.AuthorizationCode, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE authorization_codes SET used_at = ?
		WHERE code_hash = ? AND used_at IS NULL`,
		time.Now().UTC(), hash)
	if err != nil {
		return domain.AuthorizationCode{}, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.AuthorizationCode{}, err
	}
	if affected == 0 {
		return domain.AuthorizationCode{}, store.ErrNotFound
	}

	return r.GetAuthorizationCodeByHash(ctx, hash)
}

func (r *authorizationCodesRepo) GetAuthorizationCodeByHash(ctx context.Context, hash string) (domain.AuthorizationCode, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+codeColumns+` FROM authorization_codes WHERE code_hash = ?`, hash)
	return scanAuthorizationCode(row)
}

func (r *authorizationCodesRepo) DeleteExpiredAuthorizationCodes(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM authorization_codes WHERE expires_at < ?`, time.Now().UTC())
	return err
}

func scanAuthorizationCode(row rowScanner) (domain.AuthorizationCode, error) {
	var c domain.AuthorizationCode
	var scopes string
	var usedAt sql.NullTime

	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.ClientID,
		&c.CodeHash,
		&c.RedirectURI,
		&scopes,
		&c.CodeChallenge,
		&c.CodeChallengeMethod,
		&c.ExpiresAt,
		&usedAt,
		&c.CreatedAt,
	)
	if err != nil {
		return domain.AuthorizationCode{}, mapNotFound(err)
	}

	c.Scopes = splitAndFilter(scopes)
	c.UsedAt = mapNullTimePtr(usedAt)
	return c, nil
}
