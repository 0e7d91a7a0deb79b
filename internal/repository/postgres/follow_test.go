package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/socialgraph/internal/domain"
	"github.com/utafrali/socialgraph/pkg/database"
	apperrors "github.com/utafrali/socialgraph/pkg/errors"
)

func newFollowTestFixture(t *testing.T) (*FollowRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := database.NewMockPool()
	require.NoError(t, err)
	return NewFollowRepository(mock), mock
}

func TestFollowRepository_Toggle_Follows(t *testing.T) {
	repo, mock := newFollowTestFixture(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM follows").WithArgs("a", "b").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO follows").WithArgs("a", "b", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	action, err := repo.Toggle(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, domain.Followed, action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_Toggle_Unfollows(t *testing.T) {
	repo, mock := newFollowTestFixture(t)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM follows").WithArgs("a", "b").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	action, err := repo.Toggle(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, domain.Unfollowed, action)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_Toggle_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantIs  error
		wantMsg string
	}{
		{
			name:    "unknown followee",
			err:     &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation},
			wantIs:  apperrors.ErrNotFound,
			wantMsg: "User not found",
		},
		{
			name:    "self follow",
			err:     &pgconn.PgError{Code: pgerrcode.CheckViolation},
			wantIs:  apperrors.ErrInvalidInput,
			wantMsg: "You cannot follow yourself",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newFollowTestFixture(t)
			defer mock.Close()

			mock.ExpectBegin()
			mock.ExpectExec("DELETE FROM follows").WillReturnResult(pgxmock.NewResult("DELETE", 0))
			mock.ExpectExec("INSERT INTO follows").WillReturnError(tt.err)
			mock.ExpectRollback()

			_, err := repo.Toggle(context.Background(), "a", "b")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantIs)

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tt.wantMsg, appErr.Message)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFollowRepository_Toggle_BeginFails(t *testing.T) {
	repo, mock := newFollowTestFixture(t)
	defer mock.Close()

	mock.ExpectBegin().WillReturnError(errors.New("pool closed"))

	_, err := repo.Toggle(context.Background(), "a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "begin follow toggle")
}

func TestFollowRepository_ListFollowers(t *testing.T) {
	repo, mock := newFollowTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM follows WHERE followee_id = \$1`).WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`JOIN users u ON u.id = f.follower_id`).WithArgs("u-1", 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "profile"}).
			AddRow("u-2", "bob", "").
			AddRow("u-3", "carol", "https://cdn.example.com/c.png"))

	got, total, err := repo.ListFollowers(context.Background(), "u-1", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, got, 2)
	assert.Equal(t, "bob", got[0].Username)
	assert.Equal(t, "carol", got[1].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowRepository_ListFollowing_Empty(t *testing.T) {
	repo, mock := newFollowTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM follows WHERE follower_id = \$1`).WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	got, total, err := repo.ListFollowing(context.Background(), "u-1", 20, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
