package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"communityhub/internal/config"
	"communityhub/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	// Named shared-cache database so every pooled connection sees the same tables.
	db, err := Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())))
	require.NoError(t, err)
	return db
}

func TestSlotBackend_SQLiteRoundTrip(t *testing.T) {
	b := NewSlotBackend(setupSQLite(t))
	defer b.Close()
	ctx := context.Background()

	_, ok, err := b.Get(ctx, "communityApp_posts")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Set(ctx, "communityApp_posts", []byte(`[{"id":"1"}]`)))
	require.NoError(t, b.Set(ctx, "communityApp_posts", []byte(`[]`)))

	data, ok, err := b.Get(ctx, "communityApp_posts")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", string(data))

	require.NoError(t, b.Delete(ctx, "communityApp_posts"))
	_, ok, err = b.Get(ctx, "communityApp_posts")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSlotBackend_StoreOverSQLite(t *testing.T) {
	b := NewSlotBackend(setupSQLite(t))
	ctx := context.Background()
	s := storage.New(b, storage.Options{})
	defer s.Close()

	categories, err := s.LoadCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "nature", categories[0].Name)

	raw, ok, err := b.Get(ctx, s.Key("categories"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, string(raw), `"postCount":1`)
}

func TestSlotBackend_GetPostgres(t *testing.T) {
	db, mock := setupMockDB(t)
	b := NewSlotBackend(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		mockBehavior func()
		wantOK       bool
		wantErr      bool
	}{
		{
			name: "Present",
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"name", "value", "updated_at"}).
					AddRow("communityApp_users", []byte(`[]`), time.Now())
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "slots" WHERE name = $1 LIMIT $2`)).
					WithArgs("communityApp_users", 1).
					WillReturnRows(rows)
			},
			wantOK: true,
		},
		{
			name: "Absent",
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "slots" WHERE name = $1 LIMIT $2`)).
					WithArgs("communityApp_users", 1).
					WillReturnRows(sqlmock.NewRows([]string{"name", "value", "updated_at"}))
			},
		},
		{
			name: "Connection error",
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "slots" WHERE name = $1 LIMIT $2`)).
					WithArgs("communityApp_users", 1).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			data, ok, err := b.Get(ctx, "communityApp_users")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantOK, ok)
				if tt.wantOK {
					assert.Equal(t, "[]", string(data))
				}
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSlotBackend_SetPostgresUpserts(t *testing.T) {
	db, mock := setupMockDB(t)
	b := NewSlotBackend(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "slots" ("name","value","updated_at") VALUES ($1,$2,$3) ON CONFLICT ("name") DO UPDATE SET "value"="excluded"."value","updated_at"="excluded"."updated_at"`)).
		WithArgs("communityApp_users", []byte(`[]`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, b.Set(context.Background(), "communityApp_users", []byte(`[]`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnect_RejectsNonSQLBackend(t *testing.T) {
	_, err := Connect(&config.Config{StoreBackend: config.BackendRedis})
	assert.Error(t, err)
}

func TestPostgresDSN_DefaultsSSLMode(t *testing.T) {
	dsn := PostgresDSN(&config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", dsn)
}
