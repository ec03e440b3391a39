package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensing/internal/shared/biztime"
	"github.com/orris-inc/licensing/internal/shared/db"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// StagedFileRepository keeps staged rosters in the database.
type StagedFileRepository struct {
	db     *gorm.DB
	logger logger.Interface
}

// NewStagedFileRepository creates the database-backed artifact store
func NewStagedFileRepository(db *gorm.DB, logger logger.Interface) licensing.ArtifactStore {
	return &StagedFileRepository{db: db, logger: logger}
}

// Put stores content, replacing any artifact already staged for the owner.
func (r *StagedFileRepository) Put(ctx context.Context, owner string, ownerID uint, filename string, content []byte) error {
	model := &models.StagedFileModel{
		Owner:     owner,
		OwnerID:   ownerID,
		Filename:  filename,
		Content:   content,
		Size:      int64(len(content)),
		CreatedAt: biztime.NowUTC(),
	}

	err := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"filename", "content", "size", "created_at"}),
	}).Create(model).Error
	if err != nil {
		r.logger.Errorw("failed to stage file", "owner", owner, "owner_id", ownerID, "error", err)
		return fmt.Errorf("failed to stage file: %w", err)
	}
	return nil
}

func (r *StagedFileRepository) Get(ctx context.Context, owner string, ownerID uint) ([]byte, error) {
	var model models.StagedFileModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("owner = ? AND owner_id = ?", owner, ownerID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, licensing.ErrArtifactNotFound
		}
		r.logger.Errorw("failed to read staged file", "owner", owner, "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("failed to read staged file: %w", err)
	}
	return model.Content, nil
}

func (r *StagedFileRepository) Exists(ctx context.Context, owner string, ownerID uint) (bool, error) {
	found, err := r.ExistsMany(ctx, owner, []uint{ownerID})
	if err != nil {
		return false, err
	}
	return found[ownerID], nil
}

func (r *StagedFileRepository) ExistsMany(ctx context.Context, owner string, ownerIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}

	var ids []uint
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.StagedFileModel{}).
		Where("owner = ? AND owner_id IN ?", owner, ownerIDs).
		Pluck("owner_id", &ids).Error
	if err != nil {
		r.logger.Errorw("failed to check staged files", "owner", owner, "error", err)
		return nil, fmt.Errorf("failed to check staged files: %w", err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (r *StagedFileRepository) ListOwnerIDs(ctx context.Context, owner string) ([]uint, error) {
	var ids []uint
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.StagedFileModel{}).
		Where("owner = ?", owner).
		Order("owner_id ASC").
		Pluck("owner_id", &ids).Error
	if err != nil {
		r.logger.Errorw("failed to list staged files", "owner", owner, "error", err)
		return nil, fmt.Errorf("failed to list staged files: %w", err)
	}
	return ids, nil
}

func (r *StagedFileRepository) Delete(ctx context.Context, owner string, ownerID uint) error {
	err := db.GetTxFromContext(ctx, r.db).
		Where("owner = ? AND owner_id = ?", owner, ownerID).
		Delete(&models.StagedFileModel{}).Error
	if err != nil {
		r.logger.Errorw("failed to delete staged file", "owner", owner, "owner_id", ownerID, "error", err)
		return fmt.Errorf("failed to delete staged file: %w", err)
	}
	return nil
}
