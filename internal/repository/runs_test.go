package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/deepread-extract/constants"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "ledger.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenIsIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "ledger.db")
	for i := 0; i < 2; i++ {
		db, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: dsn}, nil)
		require.NoError(t, err)
		assert.Equal(t, DriverSQLite, db.Driver())
		require.NoError(t, db.HealthCheck(context.Background(), time.Second))
		require.NoError(t, db.Close())
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql", DSN: "x"}, nil)
	assert.ErrorContains(t, err, "unsupported ledger driver")
}

func TestExtractRunLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewExtractRunRepository(openTestDB(t), nil).(*extractRunRepo)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := base
	repo.now = func() time.Time { clock = clock.Add(time.Second); return clock }

	okID, err := repo.Start(ctx, "samples/invoice/invoice-ja.pdf", constants.Japanese, constants.Invoice)
	require.NoError(t, err)
	require.NoError(t, repo.FinishOK(ctx, okID, "outputs/invoice/invoice-ja.json", "outputs/invoice/invoice-ja.jpg"))

	failID, err := repo.Start(ctx, "samples/form/scan.png", constants.English, constants.Form)
	require.NoError(t, err)
	require.NoError(t, repo.FinishFailure(ctx, failID, "status 429"))

	pendingID, err := repo.Start(ctx, "samples/receipt/r.jpg", constants.English, constants.Receipt)
	require.NoError(t, err)

	runs, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	// newest first
	assert.Equal(t, pendingID, runs[0].ID)
	assert.Equal(t, constants.RunStatusRunning, runs[0].Status)
	assert.Nil(t, runs[0].FinishedAt)
	assert.Zero(t, runs[0].Duration())

	assert.Equal(t, failID, runs[1].ID)
	assert.Equal(t, constants.RunStatusFailed, runs[1].Status)
	assert.Equal(t, "status 429", runs[1].ErrorMessage)
	assert.Equal(t, constants.Form, runs[1].ProcessType)

	ok := runs[2]
	assert.Equal(t, okID, ok.ID)
	assert.Equal(t, constants.RunStatusOK, ok.Status)
	assert.Equal(t, constants.Japanese, ok.Language)
	assert.Equal(t, "outputs/invoice/invoice-ja.json", ok.JSONPath)
	assert.Equal(t, "outputs/invoice/invoice-ja.jpg", ok.ImagePath)
	require.NotNil(t, ok.FinishedAt)
	assert.Equal(t, time.Second, ok.Duration())

	limited, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestFinishUnknownRun(t *testing.T) {
	repo := NewExtractRunRepository(openTestDB(t), nil)
	err := repo.FinishOK(context.Background(), uuid.New(), "a.json", "")
	assert.True(t, IsNotFound(err))
}

func TestRebind(t *testing.T) {
	pg := &DB{driver: DriverPostgres}
	assert.Equal(t, "SELECT $1, $2", pg.rebind("SELECT ?, ?"))
	lite := &DB{driver: DriverSQLite}
	assert.Equal(t, "SELECT ?, ?", lite.rebind("SELECT ?, ?"))
}
