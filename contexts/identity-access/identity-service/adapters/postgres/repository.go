package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"communitypulse/contexts/identity-access/identity-service/domain/entities"
	domainerrors "communitypulse/contexts/identity-access/identity-service/domain/errors"
	"communitypulse/contexts/identity-access/identity-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
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

// Migrate creates or updates the users table.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&userModel{}); err != nil {
		return r.logError("identity_repo_migrate_failed", err)
	}
	return nil
}

func (r *Repository) CreateUser(ctx context.Context, user entities.User) error {
	row := userModelFromEntity(user)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrEmailTaken
		}
		return r.logError("identity_repo_create_user_failed", err, "user_id", row.ID)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, userID string) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, r.logError("identity_repo_get_user_failed", err, "user_id", strings.TrimSpace(userID))
	}
	return row.toEntity(), nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (entities.User, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("email = ?", entities.NormalizeEmail(email)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.User{}, domainerrors.ErrUserNotFound
		}
		return entities.User{}, r.logError("identity_repo_get_user_by_email_failed", err)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListUsersByID(ctx context.Context, userIDs []string) ([]entities.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var rows []userModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", userIDs).
		Find(&rows).Error; err != nil {
		return nil, r.logError("identity_repo_list_users_failed", err, "count", len(userIDs))
	}
	items := make([]entities.User, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CountUsers(ctx context.Context, createdSince time.Time) (ports.UserStats, error) {
	var total, recent int64
	if err := r.db.WithContext(ctx).Model(&userModel{}).Count(&total).Error; err != nil {
		return ports.UserStats{}, r.logError("identity_repo_count_users_failed", err)
	}
	if err := r.db.WithContext(ctx).Model(&userModel{}).
		Where("created_at >= ?", createdSince.UTC()).
		Count(&recent).Error; err != nil {
		return ports.UserStats{}, r.logError("identity_repo_count_new_users_failed", err)
	}
	return ports.UserStats{
		TotalUsers:  int(total),
		NewSince:    int(recent),
		CountedFrom: createdSince.UTC(),
	}, nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "identity-access/identity-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("identity repository operation failed", fields...)
	return err
}

type userModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Email        string    `gorm:"column:email;not null;uniqueIndex:idx_users_email"`
	Phone        string    `gorm:"column:phone;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	IsAdmin      bool      `gorm:"column:is_admin;not null;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
}

func (userModel) TableName() string {
	return "users"
}

func userModelFromEntity(user entities.User) userModel {
	row := userModel{
		ID:           strings.TrimSpace(user.UserID),
		Name:         strings.TrimSpace(user.Name),
		Email:        entities.NormalizeEmail(user.Email),
		Phone:        strings.TrimSpace(user.Phone),
		PasswordHash: user.PasswordHash,
		IsAdmin:      user.IsAdmin,
		CreatedAt:    user.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

func (m userModel) toEntity() entities.User {
	return entities.User{
		UserID:       m.ID,
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		PasswordHash: m.PasswordHash,
		IsAdmin:      m.IsAdmin,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.UserRepository = (*Repository)(nil)
