// Package snapshot persists the in-memory pipeline state to an embedded
// SQLite database so it can survive restarts when enabled. The snapshot is
// write-through only from the scheduled job and shutdown hook; the stores
// remain the single source of truth while the process runs.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arkidots/pipeline-api/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LeadRecord is the persisted form of a lead
type LeadRecord struct {
	ID               string `gorm:"type:varchar(36);primaryKey"`
	CustomerName     string `gorm:"type:varchar(200);not null"`
	PhoneNumber      string `gorm:"type:varchar(50)"`
	Email            string `gorm:"type:varchar(255)"`
	ProjectTitle     string `gorm:"type:varchar(200)"`
	Location         string `gorm:"type:varchar(200)"`
	CreatedDate      string `gorm:"type:varchar(10);not null;column:created_date"`
	TimelineInterval int    `gorm:"not null"`
	// Position preserves insertion order across save/load cycles
	Position int           `gorm:"not null;index"`
	Selected bool          `gorm:"not null;default:false"`
	Stages   []StageRecord `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE"`
}

// StageRecord is the persisted form of a stage
type StageRecord struct {
	ID           string  `gorm:"type:varchar(36);primaryKey"`
	LeadID       string  `gorm:"type:varchar(36);not null;index"`
	Name         string  `gorm:"type:varchar(200);not null"`
	Status       string  `gorm:"type:varchar(20);not null"`
	Notes        string  `gorm:"type:text"`
	ExpectedDate string  `gorm:"type:varchar(10)"`
	ActualDate   *string `gorm:"type:varchar(10)"`
	StageOrder   int     `gorm:"not null;column:stage_order"`
	Milestone    string  `gorm:"type:varchar(100)"`
}

// UserRecord is the persisted form of a user account
type UserRecord struct {
	ID           string `gorm:"type:varchar(36);primaryKey"`
	Name         string `gorm:"type:varchar(200);not null"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Role         string `gorm:"type:varchar(20);not null"`
	PasswordHash []byte `gorm:"type:blob"`
}

// Store wraps the snapshot database
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open opens (creating if needed) the snapshot database at the given path
// and migrates its schema.
func Open(path string, log *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	if err := db.AutoMigrate(&LeadRecord{}, &StageRecord{}, &UserRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate snapshot schema: %w", err)
	}

	return &Store{db: db, logger: log}, nil
}

// Save replaces the snapshot with the given full state in one transaction.
func (s *Store) Save(leads []*domain.Lead, selectedID uuid.UUID, users []*domain.User) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"stage_records", "lead_records", "user_records"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}

		for i, lead := range leads {
			rec := leadToRecord(lead, i, lead.ID == selectedID)
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		for _, user := range users {
			rec := userToRecord(user)
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Load reads the full snapshot state. An empty database yields empty
// slices and a nil selection.
func (s *Store) Load() ([]*domain.Lead, uuid.UUID, []*domain.User, error) {
	var leadRecs []LeadRecord
	if err := s.db.Preload("Stages").Order("position asc").Find(&leadRecs).Error; err != nil {
		return nil, uuid.Nil, nil, fmt.Errorf("failed to load leads: %w", err)
	}
	var userRecs []UserRecord
	if err := s.db.Find(&userRecs).Error; err != nil {
		return nil, uuid.Nil, nil, fmt.Errorf("failed to load users: %w", err)
	}

	selected := uuid.Nil
	leads := make([]*domain.Lead, 0, len(leadRecs))
	for _, rec := range leadRecs {
		lead, err := recordToLead(rec)
		if err != nil {
			return nil, uuid.Nil, nil, err
		}
		if rec.Selected {
			selected = lead.ID
		}
		leads = append(leads, lead)
	}

	users := make([]*domain.User, 0, len(userRecs))
	for _, rec := range userRecs {
		user, err := recordToUser(rec)
		if err != nil {
			return nil, uuid.Nil, nil, err
		}
		users = append(users, user)
	}

	return leads, selected, users, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
