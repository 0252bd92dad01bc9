package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/lessonbook/internal/common"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLRepository(sqlx.NewDb(db, "pgx")), mock
}

const (
	findByUserQuery  = `(?s)^\s*SELECT\s+id,\s*user_id,\s*token\s+FROM\s+refresh_tokens\s+WHERE\s+user_id\s*=\s*\$1\s*$`
	findByTokenQuery = `(?s)^\s*SELECT\s+rt\.id,.*FROM\s+refresh_tokens\s+rt\s+JOIN\s+users\s+u\s+ON\s+u\.id\s*=\s*rt\.user_id\s+WHERE\s+rt\.token\s*=\s*\$1\s*$`
	upsertQuery      = `(?s)^\s*INSERT\s+INTO\s+refresh_tokens\s*\(id,\s*user_id,\s*token\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*ON\s+CONFLICT\s*\(user_id\)\s*DO\s+UPDATE\s+SET\s+token\s*=\s*EXCLUDED\.token\s*RETURNING\s+id,\s*user_id,\s*token\s*$`
	deleteByUser     = `(?s)^\s*DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+user_id\s*=\s*\$1\s*$`
	deleteByToken    = `(?s)^\s*DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1\s*$`
)

func TestFindByUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(findByUserQuery).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token"}).AddRow("rt-1", int64(1), "tok"))
	mock.ExpectQuery(findByUserQuery).
		WithArgs(int64(2)).
		WillReturnError(sql.ErrNoRows)

	got, err := repo.FindByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "rt-1", got.ID)
	assert.Equal(t, "tok", got.Token)

	_, err = repo.FindByUser(context.Background(), 2)
	require.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByToken_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "id", "email", "username", "password_hash"}).
		AddRow("rt-1", int64(3), "tok", int64(3), "a@b.com", "alice", "hash")
	mock.ExpectQuery(findByTokenQuery).WithArgs("tok").WillReturnRows(rows)

	rt, user, err := repo.FindByToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rt.UserID)
	assert.Equal(t, "a@b.com", user.Email)
	assert.Equal(t, "alice", user.Username)
}

func TestFindByToken_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(findByTokenQuery).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, _, err := repo.FindByToken(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestFindByToken_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(findByTokenQuery).WithArgs("tok").WillReturnError(errors.New("db down"))

	_, _, err := repo.FindByToken(context.Background(), "tok")
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db down`, err.Error())
}

func TestUpsertForUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(upsertQuery).
		WithArgs(sqlmock.AnyArg(), int64(7), "new-token").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token"}).AddRow("rt-7", int64(7), "new-token"))

	got, err := repo.UpsertForUser(context.Background(), 7, "new-token")
	require.NoError(t, err)
	assert.Equal(t, "rt-7", got.ID)
	assert.Equal(t, "new-token", got.Token)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertForUser_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(upsertQuery).
		WithArgs(sqlmock.AnyArg(), int64(7), "new-token").
		WillReturnError(errors.New("fk violation"))

	_, err := repo.UpsertForUser(context.Background(), 7, "new-token")
	require.Error(t, err)
	assert.Regexp(t, `db error: .*fk violation`, err.Error())
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(deleteByUser).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteByUser).WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(deleteByToken).WithArgs("tok").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deleteByToken).WithArgs("tok").WillReturnError(errors.New("db down"))

	n, err := repo.DeleteByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = repo.DeleteByToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.DeleteByToken(context.Background(), "tok")
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db down`, err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}
