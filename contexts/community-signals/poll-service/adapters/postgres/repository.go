package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"communitypulse/contexts/community-signals/poll-service/domain/entities"
	domainerrors "communitypulse/contexts/community-signals/poll-service/domain/errors"
	"communitypulse/contexts/community-signals/poll-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
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
	if err := r.db.WithContext(ctx).AutoMigrate(&pollModel{}, &voteModel{}); err != nil {
		return r.logError("polls_repo_migrate_failed", err)
	}
	return nil
}

func (r *Repository) CreatePoll(ctx context.Context, poll entities.Poll) error {
	row, err := pollModelFromEntity(poll)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return r.logError("polls_repo_create_poll_failed", err, "poll_id", row.PollID)
	}
	return nil
}

func (r *Repository) GetPoll(ctx context.Context, pollID string) (entities.Poll, error) {
	var row pollModel
	err := r.db.WithContext(ctx).Where("poll_id = ?", strings.TrimSpace(pollID)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	if err != nil {
		return entities.Poll{}, r.logError("polls_repo_get_poll_failed", err, "poll_id", pollID)
	}
	return row.toEntity()
}

func (r *Repository) ListPolls(ctx context.Context) ([]entities.Poll, error) {
	var rows []pollModel
	if err := r.db.WithContext(ctx).
		Order("is_active DESC, created_at DESC, poll_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("polls_repo_list_polls_failed", err)
	}
	items := make([]entities.Poll, 0, len(rows))
	for _, row := range rows {
		poll, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, poll)
	}
	return items, nil
}

func (r *Repository) ClosePoll(ctx context.Context, pollID string, close ports.CloseFunc) (entities.Poll, error) {
	var closed entities.Poll
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockPoll(tx, pollID)
		if err != nil {
			return err
		}
		next, err := close(current)
		if err != nil {
			return err
		}
		if err := tx.Model(&pollModel{}).
			Where("poll_id = ?", current.PollID).
			Updates(map[string]any{
				"is_active": next.IsActive,
				"closed_at": next.ClosedAt,
			}).Error; err != nil {
			return err
		}
		closed = next
		return nil
	})
	if err != nil {
		return entities.Poll{}, r.passDomainError("polls_repo_close_poll_failed", err, "poll_id", pollID)
	}
	return closed, nil
}

// CastVote locks the poll row, so the duplicate check, the tally move and the
// vote upsert commit as one step.
func (r *Repository) CastVote(ctx context.Context, pollID string, userID string, vote ports.VoteFunc) (ports.VoteResult, error) {
	var result ports.VoteResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := lockPoll(tx, pollID)
		if err != nil {
			return err
		}

		var existing *entities.Vote
		var existingRow voteModel
		err = tx.Where("poll_id = ? AND user_id = ?", current.PollID, strings.TrimSpace(userID)).Take(&existingRow).Error
		switch {
		case err == nil:
			previous := existingRow.toEntity()
			existing = &previous
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		next, record, err := vote(current, existing)
		if err != nil {
			return err
		}
		options, err := encodeOptions(next.Options)
		if err != nil {
			return err
		}
		if err := tx.Model(&pollModel{}).
			Where("poll_id = ?", current.PollID).
			Update("options", options).Error; err != nil {
			return err
		}

		row := voteModelFromEntity(record)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "poll_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"option", "updated_at"}),
		}).Create(&row).Error; err != nil {
			return err
		}

		result = ports.VoteResult{Poll: next, Vote: record}
		if existing != nil {
			result.PreviousOption = existing.Option
		}
		return nil
	})
	if err != nil {
		return ports.VoteResult{}, r.passDomainError("polls_repo_cast_vote_failed", err, "poll_id", pollID, "user_id", userID)
	}
	return result, nil
}

func (r *Repository) CountVotes(ctx context.Context, pollID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&voteModel{}).
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		Count(&count).Error; err != nil {
		return 0, r.logError("polls_repo_count_votes_failed", err, "poll_id", pollID)
	}
	return int(count), nil
}

func lockPoll(tx *gorm.DB, pollID string) (entities.Poll, error) {
	var row pollModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	if err != nil {
		return entities.Poll{}, err
	}
	return row.toEntity()
}

func (r *Repository) passDomainError(event string, err error, attrs ...any) error {
	for _, target := range []error{
		domainerrors.ErrPollNotFound,
		domainerrors.ErrOptionNotFound,
		domainerrors.ErrInvalidState,
		domainerrors.ErrAlreadyVoted,
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
		"module", "community-signals/poll-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("poll repository operation failed", fields...)
	return err
}

type optionJSON struct {
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

type pollModel struct {
	PollID    string         `gorm:"column:poll_id;primaryKey"`
	Question  string         `gorm:"column:question;not null"`
	Options   datatypes.JSON `gorm:"column:options;type:jsonb;not null"`
	IsActive  bool           `gorm:"column:is_active;not null"`
	CreatedBy string         `gorm:"column:created_by"`
	CreatedAt time.Time      `gorm:"column:created_at;not null"`
	ClosedAt  *time.Time     `gorm:"column:closed_at"`
}

func (pollModel) TableName() string {
	return "polls"
}

func pollModelFromEntity(poll entities.Poll) (pollModel, error) {
	options, err := encodeOptions(poll.Options)
	if err != nil {
		return pollModel{}, err
	}
	return pollModel{
		PollID:    strings.TrimSpace(poll.PollID),
		Question:  poll.Question,
		Options:   options,
		IsActive:  poll.IsActive,
		CreatedBy: poll.CreatedBy,
		CreatedAt: poll.CreatedAt.UTC(),
		ClosedAt:  poll.ClosedAt,
	}, nil
}

func (m pollModel) toEntity() (entities.Poll, error) {
	var raw []optionJSON
	if err := json.Unmarshal(m.Options, &raw); err != nil {
		return entities.Poll{}, err
	}
	options := make([]entities.Option, 0, len(raw))
	for _, item := range raw {
		options = append(options, entities.Option{Text: item.Text, Votes: item.Votes})
	}
	poll := entities.Poll{
		PollID:    m.PollID,
		Question:  m.Question,
		Options:   options,
		IsActive:  m.IsActive,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt.UTC(),
	}
	if m.ClosedAt != nil {
		closedAt := m.ClosedAt.UTC()
		poll.ClosedAt = &closedAt
	}
	return poll, nil
}

func encodeOptions(options []entities.Option) (datatypes.JSON, error) {
	raw := make([]optionJSON, 0, len(options))
	for _, option := range options {
		raw = append(raw, optionJSON{Text: option.Text, Votes: option.Votes})
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(payload), nil
}

type voteModel struct {
	VoteID    string    `gorm:"column:vote_id;primaryKey"`
	PollID    string    `gorm:"column:poll_id;not null;uniqueIndex:idx_poll_votes_poll_user,priority:1"`
	UserID    string    `gorm:"column:user_id;not null;uniqueIndex:idx_poll_votes_poll_user,priority:2"`
	Option    string    `gorm:"column:option;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (voteModel) TableName() string {
	return "poll_votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	return voteModel{
		VoteID:    strings.TrimSpace(vote.VoteID),
		PollID:    strings.TrimSpace(vote.PollID),
		UserID:    strings.TrimSpace(vote.UserID),
		Option:    vote.Option,
		CreatedAt: vote.CreatedAt.UTC(),
		UpdatedAt: vote.UpdatedAt.UTC(),
	}
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:    m.VoteID,
		PollID:    m.PollID,
		UserID:    m.UserID,
		Option:    m.Option,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.PollRepository = (*Repository)(nil)
