package database

import (
	"context"
	"errors"
	"time"

	"communityhub/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Slot is one named profile slot stored as a row.
type Slot struct {
	Name      string `gorm:"primaryKey;size:191"`
	Value     []byte
	UpdatedAt time.Time
}

// SlotBackend stores profile slots in the slots table.
type SlotBackend struct {
	db *gorm.DB
}

// NewSlotBackend returns a backend over db. The schema must already be migrated.
func NewSlotBackend(db *gorm.DB) *SlotBackend {
	return &SlotBackend{db: db}
}

func (b *SlotBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	span, ctx := observability.StartSlotSpan(ctx, b.Name(), "get", key)
	defer span.End()
	done := observability.TrackSlot("get", b.Name())

	var slot Slot
	err := b.db.WithContext(ctx).Where("name = ?", key).Take(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		done(nil)
		return nil, false, nil
	}
	done(err)
	if err != nil {
		span.SetError(err)
		return nil, false, err
	}
	return slot.Value, true, nil
}

func (b *SlotBackend) Set(ctx context.Context, key string, value []byte) error {
	span, ctx := observability.StartSlotSpan(ctx, b.Name(), "set", key)
	defer span.End()
	done := observability.TrackSlot("set", b.Name())

	if value == nil {
		value = []byte{}
	}
	err := b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&Slot{Name: key, Value: value, UpdatedAt: time.Now().UTC()}).Error
	done(err)
	span.SetError(err)
	return err
}

func (b *SlotBackend) Delete(ctx context.Context, key string) error {
	span, ctx := observability.StartSlotSpan(ctx, b.Name(), "delete", key)
	defer span.End()
	done := observability.TrackSlot("delete", b.Name())

	err := b.db.WithContext(ctx).Where("name = ?", key).Delete(&Slot{}).Error
	done(err)
	span.SetError(err)
	return err
}

func (b *SlotBackend) Name() string {
	return "sql:" + b.db.Dialector.Name()
}

// Close closes the underlying connection pool.
func (b *SlotBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
