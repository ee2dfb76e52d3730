package models

import (
	"context"
	"errors"
	"time"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// SavedGame is the row SQLStore writes. The snapshot itself is kept as a
// YAML document so schema changes to Snapshot need no migration.
type SavedGame struct {
	Name      string `gorm:"primaryKey;size:128"`
	SessionID string `gorm:"size:64;index"`
	Phase     string `gorm:"size:16"`
	Round     int
	Document  string `gorm:"type:text"`
	UpdatedAt time.Time
}

// SQLStore persists snapshots through gorm, one row per save name.
type SQLStore struct {
	db   *gorm.DB
	name string
}

// NewSQLStore migrates the saved_games table and returns a store bound to name.
func NewSQLStore(db *gorm.DB, name string) (*SQLStore, error) {
	if name == "" {
		name = DefaultSaveName
	}
	if err := db.AutoMigrate(&SavedGame{}); err != nil {
		return nil, err
	}
	return &SQLStore{db: db, name: name}, nil
}

func (s *SQLStore) Save(ctx context.Context, snap Snapshot) error {
	doc, err := yaml.Marshal(snap)
	if err != nil {
		return err
	}
	row := SavedGame{
		Name:      s.name,
		SessionID: snap.ID,
		Phase:     snap.Phase,
		Round:     snap.CurrentRound,
		Document:  string(doc),
	}
	return s.db.WithContext(ctx).Save(&row).Error
}

func (s *SQLStore) Load(ctx context.Context) (*Snapshot, error) {
	var row SavedGame
	err := s.db.WithContext(ctx).Where("name = ?", s.name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeSnapshot([]byte(row.Document))
}

func (s *SQLStore) Clear(ctx context.Context) error {
	return s.db.WithContext(ctx).Where("name = ?", s.name).Delete(&SavedGame{}).Error
}
