package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"polity/contexts/governance-core/proposal-engine/domain/entities"
	domainerrors "polity/contexts/governance-core/proposal-engine/domain/errors"
	"polity/internal/shared/events"
	"polity/internal/shared/outbox"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"

	parametersRowID = "global"
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

type proposalModel struct {
	ID           uint64    `gorm:"column:id;primaryKey"`
	Proposer     string    `gorm:"column:proposer"`
	Description  string    `gorm:"column:description"`
	ForVotes     uint64    `gorm:"column:for_votes"`
	AgainstVotes uint64    `gorm:"column:against_votes"`
	StartTime    time.Time `gorm:"column:start_time"`
	Executed     bool      `gorm:"column:executed"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (proposalModel) TableName() string { return "proposal_proposals" }

type voteMarkModel struct {
	ProposalID uint64    `gorm:"column:proposal_id;primaryKey"`
	Voter      string    `gorm:"column:voter;primaryKey"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (voteMarkModel) TableName() string { return "proposal_vote_marks" }

type parametersModel struct {
	ID                  string    `gorm:"column:id;primaryKey"`
	VotingPeriodSeconds int64     `gorm:"column:voting_period_seconds"`
	QuorumPercentage    uint64    `gorm:"column:quorum_percentage"`
	UpdatedAt           time.Time `gorm:"column:updated_at"`
}

func (parametersModel) TableName() string { return "proposal_parameters" }

type sequenceModel struct {
	ID     string `gorm:"column:id;primaryKey"`
	NextID uint64 `gorm:"column:next_id"`
}

func (sequenceModel) TableName() string { return "proposal_sequences" }

type outboxModel struct {
	OutboxID     string     `gorm:"column:id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string { return "proposal_outbox" }

// NextProposalID claims the next value of the single proposal sequence.
// Ids are dense and start at 0.
func (r *Repository) NextProposalID(ctx context.Context) (uint64, error) {
	var claimed uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row sequenceModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", parametersRowID).
			First(&row).
			Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = sequenceModel{ID: parametersRowID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
				return err
			}
			err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", parametersRowID).
				First(&row).
				Error
		}
		if err != nil {
			return err
		}
		claimed = row.NextID
		return tx.Model(&sequenceModel{}).
			Where("id = ?", parametersRowID).
			Update("next_id", row.NextID+1).
			Error
	})
	if err != nil {
		return 0, r.logError("proposal_repo_next_id_failed", err)
	}
	return claimed, nil
}

func (r *Repository) SaveProposal(ctx context.Context, proposal entities.Proposal) error {
	row := proposalToModel(proposal)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"for_votes":     row.ForVotes,
			"against_votes": row.AgainstVotes,
			"executed":      row.Executed,
			"updated_at":    row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("proposal_repo_save_failed", create.Error, "proposal_id", proposal.ID)
	}
	return nil
}

func (r *Repository) GetProposal(ctx context.Context, id uint64) (entities.Proposal, error) {
	var row proposalModel
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Proposal{}, domainerrors.ErrProposalNotFound
		}
		return entities.Proposal{}, r.logError("proposal_repo_get_failed", err, "proposal_id", id)
	}
	return proposalFromModel(row), nil
}

func (r *Repository) ListProposals(ctx context.Context) ([]entities.Proposal, error) {
	var rows []proposalModel
	err := r.db.WithContext(ctx).
		Order("id asc").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("proposal_repo_list_failed", err)
	}
	items := make([]entities.Proposal, 0, len(rows))
	for _, row := range rows {
		items = append(items, proposalFromModel(row))
	}
	return items, nil
}

func (r *Repository) HasVoted(ctx context.Context, proposalID uint64, voter string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&voteMarkModel{}).
		Where("proposal_id = ? AND voter = ?", proposalID, strings.TrimSpace(voter)).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("proposal_repo_has_voted_failed", err, "proposal_id", proposalID, "voter", voter)
	}
	return count > 0, nil
}

// RecordVote persists the updated tallies and the write-once vote mark in
// one transaction. A duplicate mark aborts the whole write.
func (r *Repository) RecordVote(ctx context.Context, proposal entities.Proposal, voter string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		mark := voteMarkModel{
			ProposalID: proposal.ID,
			Voter:      strings.TrimSpace(voter),
			CreatedAt:  proposal.UpdatedAt.UTC(),
		}
		if err := tx.Create(&mark).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAlreadyVoted
			}
			return err
		}
		row := proposalToModel(proposal)
		result := tx.Model(&proposalModel{}).
			Where("id = ?", proposal.ID).
			Updates(map[string]any{
				"for_votes":     row.ForVotes,
				"against_votes": row.AgainstVotes,
				"updated_at":    row.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrProposalNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyVoted) || errors.Is(err, domainerrors.ErrProposalNotFound) {
			return err
		}
		return r.logError("proposal_repo_record_vote_failed", err, "proposal_id", proposal.ID, "voter", voter)
	}
	return nil
}

func (r *Repository) GetParameters(ctx context.Context) (entities.Parameters, error) {
	var row parametersModel
	err := r.db.WithContext(ctx).
		Where("id = ?", parametersRowID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Parameters{}, domainerrors.ErrConflict
		}
		return entities.Parameters{}, r.logError("proposal_repo_get_params_failed", err)
	}
	return entities.Parameters{
		VotingPeriod:     time.Duration(row.VotingPeriodSeconds) * time.Second,
		QuorumPercentage: row.QuorumPercentage,
		UpdatedAt:        row.UpdatedAt.UTC(),
	}, nil
}

func (r *Repository) SaveParameters(ctx context.Context, params entities.Parameters) error {
	row := parametersModel{
		ID:                  parametersRowID,
		VotingPeriodSeconds: int64(params.VotingPeriod.Seconds()),
		QuorumPercentage:    params.QuorumPercentage,
		UpdatedAt:           params.UpdatedAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"voting_period_seconds": row.VotingPeriodSeconds,
			"quorum_percentage":     row.QuorumPercentage,
			"updated_at":            row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("proposal_repo_save_params_failed", create.Error)
	}
	return nil
}

// EnsureParameters seeds the global parameters row when it does not exist
// yet. An existing row is left untouched.
func (r *Repository) EnsureParameters(ctx context.Context, params entities.Parameters) error {
	row := parametersModel{
		ID:                  parametersRowID,
		VotingPeriodSeconds: int64(params.VotingPeriod.Seconds()),
		QuorumPercentage:    params.QuorumPercentage,
		UpdatedAt:           params.UpdatedAt.UTC(),
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return nil
		}
		return r.logError("proposal_repo_ensure_params_failed", create.Error)
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
		return r.logError("proposal_repo_append_outbox_failed", create.Error, "event_type", envelope.EventType)
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
		return nil, r.logError("proposal_repo_list_outbox_failed", err)
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
		return r.logError("proposal_repo_mark_outbox_failed", result.Error, "outbox_id", outboxID)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "governance-core/proposal-engine",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("proposal repository operation failed", fields...)
	return err
}

func proposalToModel(proposal entities.Proposal) proposalModel {
	return proposalModel{
		ID:           proposal.ID,
		Proposer:     strings.TrimSpace(proposal.Proposer),
		Description:  proposal.Description,
		ForVotes:     proposal.ForVotes,
		AgainstVotes: proposal.AgainstVotes,
		StartTime:    proposal.StartTime.UTC(),
		Executed:     proposal.Executed,
		UpdatedAt:    proposal.UpdatedAt.UTC(),
	}
}

func proposalFromModel(row proposalModel) entities.Proposal {
	return entities.Proposal{
		ID:           row.ID,
		Proposer:     row.Proposer,
		Description:  row.Description,
		ForVotes:     row.ForVotes,
		AgainstVotes: row.AgainstVotes,
		StartTime:    row.StartTime.UTC(),
		Executed:     row.Executed,
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
