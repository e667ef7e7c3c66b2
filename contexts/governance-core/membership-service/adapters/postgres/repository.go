package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"polity/contexts/governance-core/membership-service/domain/entities"
	domainerrors "polity/contexts/governance-core/membership-service/domain/errors"
	"polity/internal/shared/events"
	"polity/internal/shared/outbox"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

type memberModel struct {
	Address          string    `gorm:"column:address;primaryKey"`
	Approved         bool      `gorm:"column:approved"`
	CompliancePassed bool      `gorm:"column:compliance_passed"`
	BonusVotingPower uint64    `gorm:"column:bonus_voting_power"`
	AddedAt          time.Time `gorm:"column:added_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (memberModel) TableName() string { return "membership_members" }

type rollModel struct {
	ID      uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Address string `gorm:"column:address"`
}

func (rollModel) TableName() string { return "membership_roll" }

type delegationModel struct {
	Delegator string    `gorm:"column:delegator;primaryKey"`
	Delegatee string    `gorm:"column:delegatee"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (delegationModel) TableName() string { return "membership_delegations" }

type outboxModel struct {
	OutboxID     string    `gorm:"column:id;primaryKey"`
	EventType    string    `gorm:"column:event_type"`
	PartitionKey string    `gorm:"column:partition_key"`
	Payload      []byte    `gorm:"column:payload"`
	Status       string    `gorm:"column:status"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "membership_outbox" }

func (r *Repository) GetMember(ctx context.Context, address string) (entities.Member, bool, error) {
	var row memberModel
	err := r.db.WithContext(ctx).
		Where("address = ?", strings.TrimSpace(address)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Member{}, false, nil
		}
		return entities.Member{}, false, r.logError("membership_repo_get_member_failed", err, "account", address)
	}
	return memberFromModel(row), true, nil
}

func (r *Repository) SaveMember(ctx context.Context, member entities.Member) error {
	row := memberModel{
		Address:          strings.TrimSpace(member.Address),
		Approved:         member.Approved,
		CompliancePassed: member.CompliancePassed,
		BonusVotingPower: member.BonusVotingPower,
		AddedAt:          member.AddedAt.UTC(),
		UpdatedAt:        member.UpdatedAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "address"}},
		DoUpdates: clause.Assignments(map[string]any{
			"approved":           row.Approved,
			"compliance_passed":  row.CompliancePassed,
			"bonus_voting_power": row.BonusVotingPower,
			"updated_at":         row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("membership_repo_save_member_failed", create.Error, "account", member.Address)
	}
	return nil
}

func (r *Repository) RemoveMember(ctx context.Context, address string) error {
	result := r.db.WithContext(ctx).
		Where("address = ?", strings.TrimSpace(address)).
		Delete(&memberModel{})
	if result.Error != nil {
		return r.logError("membership_repo_remove_member_failed", result.Error, "account", address)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotMember
	}
	return nil
}

func (r *Repository) AppendToRoll(ctx context.Context, address string) error {
	row := rollModel{Address: strings.TrimSpace(address)}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("membership_repo_append_roll_failed", err, "account", address)
	}
	return nil
}

func (r *Repository) ListRoll(ctx context.Context) ([]string, error) {
	var rows []rollModel
	err := r.db.WithContext(ctx).
		Order("id asc").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("membership_repo_list_roll_failed", err)
	}
	items := make([]string, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.Address)
	}
	return items, nil
}

func (r *Repository) GetDelegation(ctx context.Context, delegator string) (string, error) {
	var row delegationModel
	err := r.db.WithContext(ctx).
		Where("delegator = ?", strings.TrimSpace(delegator)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", r.logError("membership_repo_get_delegation_failed", err, "delegator", delegator)
	}
	return row.Delegatee, nil
}

func (r *Repository) SaveDelegation(ctx context.Context, delegation entities.Delegation) error {
	row := delegationModel{
		Delegator: strings.TrimSpace(delegation.Delegator),
		Delegatee: strings.TrimSpace(delegation.Delegatee),
		UpdatedAt: delegation.UpdatedAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "delegator"}},
		DoUpdates: clause.Assignments(map[string]any{
			"delegatee":  row.Delegatee,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("membership_repo_save_delegation_failed", create.Error, "delegator", delegation.Delegator)
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return nil
		}
		return r.logError("membership_repo_append_outbox_failed", create.Error, "event_type", envelope.EventType)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at asc").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("membership_repo_list_outbox_failed", err)
	}
	items := make([]outbox.Message, 0, len(rows))
	for _, row := range rows {
		items = append(items, outbox.Message{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      row.Payload,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	at := publishedAt.UTC()
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": &at,
		})
	if result.Error != nil {
		return r.logError("membership_repo_mark_outbox_failed", result.Error, "outbox_id", outboxID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "governance-core/membership-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("membership repository operation failed", fields...)
	return err
}

func memberFromModel(row memberModel) entities.Member {
	return entities.Member{
		Address:          row.Address,
		Approved:         row.Approved,
		CompliancePassed: row.CompliancePassed,
		BonusVotingPower: row.BonusVotingPower,
		AddedAt:          row.AddedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
