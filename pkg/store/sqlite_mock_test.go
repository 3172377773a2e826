package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Driver-failure paths are hard to provoke against a real file; sqlmock
// stands in for a broken connection.

func TestSQLitePosts_GetPropagatesDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	boom := errors.New("disk I/O error")
	mock.ExpectQuery("SELECT .+ FROM posts WHERE id = ?").
		WithArgs("p1").
		WillReturnError(boom)

	repo := &sqlPosts{db: db}
	_, err = repo.Get(context.Background(), "p1")
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLitePosts_LikeRollsBackOnWriteError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	boom := errors.New("database is locked")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT likes FROM posts WHERE id = ?").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(`[]`))
	mock.ExpectExec("UPDATE posts SET likes = ?").
		WillReturnError(boom)
	mock.ExpectRollback()

	repo := &sqlPosts{db: db}
	err = repo.AddLike(context.Background(), "p1", "x@example.com")
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteSettings_GetPropagatesDriverError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	boom := errors.New("connection reset")
	mock.ExpectQuery("SELECT post_upload_enabled FROM settings").
		WillReturnError(boom)

	repo := &sqlSettings{db: db}
	_, err = repo.Get(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}
