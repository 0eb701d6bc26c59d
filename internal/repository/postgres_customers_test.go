package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terminusgps/terminusgps-notifications/internal/domain"
)

func setupMockCustomersDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresCustomersRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresCustomersRepository(db)

	return db, mock, repo
}

func TestGetCustomer_Success(t *testing.T) {
	db, mock, repo := setupMockCustomersDB(t)
	defer db.Close()

	customerID := uuid.New().String()
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "username", "resource_id", "token", "created_at", "updated_at",
	}).AddRow(customerID, "fleet@example.com", int64(555), "remote-token", now, now)

	mock.ExpectQuery(`SELECT`).
		WithArgs(customerID).
		WillReturnRows(rows)

	c, err := repo.GetCustomer(context.Background(), customerID)

	require.NoError(t, err)
	assert.Equal(t, "fleet@example.com", c.Username)
	assert.Equal(t, int64(555), c.ResourceID)
	assert.True(t, c.HasCredential())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCustomer_NotFound(t *testing.T) {
	db, mock, repo := setupMockCustomersDB(t)
	defer db.Close()

	customerID := uuid.New().String()

	mock.ExpectQuery(`SELECT`).
		WithArgs(customerID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetCustomer(context.Background(), customerID)

	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCustomer(t *testing.T) {
	db, mock, repo := setupMockCustomersDB(t)
	defer db.Close()

	c := &domain.Customer{
		ID:       uuid.New().String(),
		Username: "fleet@example.com",
	}

	mock.ExpectExec(`INSERT INTO customers`).
		WithArgs(c.ID, c.Username, c.ResourceID, c.Token).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreateCustomer(context.Background(), c))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateResourceID(t *testing.T) {
	db, mock, repo := setupMockCustomersDB(t)
	defer db.Close()

	customerID := uuid.New().String()

	mock.ExpectExec(`UPDATE customers SET resource_id`).
		WithArgs(customerID, int64(555)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateResourceID(context.Background(), customerID, 555))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateToken_NotFound(t *testing.T) {
	db, mock, repo := setupMockCustomersDB(t)
	defer db.Close()

	customerID := uuid.New().String()

	mock.ExpectExec(`UPDATE customers SET token`).
		WithArgs(customerID, "new-token").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateToken(context.Background(), customerID, "new-token")

	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}
