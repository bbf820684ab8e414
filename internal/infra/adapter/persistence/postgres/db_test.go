package postgres

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryOp(t *testing.T) {
	assert.Equal(t, "select", queryOp("SELECT 1"))
	assert.Equal(t, "insert", queryOp("\nINSERT INTO leads (id) VALUES ($1)"))
	assert.Equal(t, "update", queryOp("  update tags set usage_count = 0"))
	assert.Equal(t, "unknown", queryOp(""))
}

func TestInstrument_PassesQueriesThrough(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))
	mock.ExpectExec("UPDATE tags").WillReturnResult(sqlmock.NewResult(0, 1))

	wrapped := Instrument(db)

	rows, err := wrapped.QueryContext(context.Background(), "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, rows.Close())

	_, err = wrapped.ExecContext(context.Background(), "UPDATE tags SET usage_count = 0")
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
