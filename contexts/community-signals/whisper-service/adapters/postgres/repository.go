package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"communitypulse/contexts/community-signals/whisper-service/domain/entities"
	domainerrors "communitypulse/contexts/community-signals/whisper-service/domain/errors"
	"communitypulse/contexts/community-signals/whisper-service/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&whisperModel{}); err != nil {
		return r.logError("whispers_repo_migrate_failed", err)
	}
	return nil
}

func (r *Repository) CreateWhisper(ctx context.Context, whisper entities.Whisper) error {
	row := whisperModelFromEntity(whisper)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("whispers_repo_create_failed", err, "whisper_id", row.WhisperID)
	}
	return nil
}

func (r *Repository) ListWhispers(ctx context.Context, filter ports.WhisperFilter) ([]entities.Whisper, error) {
	query := r.db.WithContext(ctx).Model(&whisperModel{})
	if filter.ApprovedOnly {
		query = query.Where("is_approved = ?", true)
	}
	if location := strings.TrimSpace(filter.Location); location != "" {
		query = query.Where(`LOWER(location) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(location))+"%")
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var rows []whisperModel
	if err := query.Order("created_at DESC, whisper_id ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("whispers_repo_list_failed", err)
	}
	items := make([]entities.Whisper, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// ApproveWhisper only stamps approved_at on the first approval.
func (r *Repository) ApproveWhisper(ctx context.Context, whisperID string, at time.Time) (entities.Whisper, error) {
	whisperID = strings.TrimSpace(whisperID)
	var row whisperModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&whisperModel{}).
			Where("whisper_id = ? AND is_approved = ?", whisperID, false).
			Updates(map[string]any{
				"is_approved": true,
				"approved_at": at.UTC(),
			}).Error; err != nil {
			return err
		}
		err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Where("whisper_id = ?", whisperID).
			First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrWhisperNotFound
		}
		return err
	})
	if err != nil {
		return entities.Whisper{}, r.passDomainError("whispers_repo_approve_failed", err, "whisper_id", whisperID)
	}
	return row.toEntity(), nil
}

func (r *Repository) DeleteWhisper(ctx context.Context, whisperID string) error {
	whisperID = strings.TrimSpace(whisperID)
	result := r.db.WithContext(ctx).Where("whisper_id = ?", whisperID).Delete(&whisperModel{})
	if result.Error != nil {
		return r.logError("whispers_repo_delete_failed", result.Error, "whisper_id", whisperID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrWhisperNotFound
	}
	return nil
}

func (r *Repository) passDomainError(event string, err error, attrs ...any) error {
	for _, target := range []error{
		domainerrors.ErrWhisperNotFound,
		context.Canceled,
		context.DeadlineExceeded,
	} {
		if errors.Is(err, target) {
			return err
		}
	}
	return r.logError(event, err, attrs...)
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "community-signals/whisper-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("whisper repository operation failed", fields...)
	return err
}

type whisperModel struct {
	WhisperID  string     `gorm:"column:whisper_id;primaryKey"`
	Text       string     `gorm:"column:text;not null"`
	Location   string     `gorm:"column:location;not null"`
	IsApproved bool       `gorm:"column:is_approved;not null;index:idx_whispers_approved_created,priority:1"`
	ApprovedAt *time.Time `gorm:"column:approved_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;not null;index:idx_whispers_approved_created,priority:2"`
}

func (whisperModel) TableName() string {
	return "whispers"
}

func whisperModelFromEntity(whisper entities.Whisper) whisperModel {
	return whisperModel{
		WhisperID:  strings.TrimSpace(whisper.WhisperID),
		Text:       whisper.Text,
		Location:   whisper.Location,
		IsApproved: whisper.IsApproved,
		ApprovedAt: whisper.ApprovedAt,
		CreatedAt:  whisper.CreatedAt.UTC(),
	}
}

func (m whisperModel) toEntity() entities.Whisper {
	whisper := entities.Whisper{
		WhisperID:  m.WhisperID,
		Text:       m.Text,
		Location:   m.Location,
		IsApproved: m.IsApproved,
		CreatedAt:  m.CreatedAt.UTC(),
	}
	if m.ApprovedAt != nil {
		approvedAt := m.ApprovedAt.UTC()
		whisper.ApprovedAt = &approvedAt
	}
	return whisper
}

func escapeLike(value string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(value)
}

var _ ports.WhisperRepository = (*Repository)(nil)
