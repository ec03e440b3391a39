// Package platform adapts the e-learning platform tables (catalog, enrolments,
// program assignments, positions) to the licensing dispatch handlers.
package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensing/internal/shared/db"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

const searchLimit = 50

// Catalog reads catalog items of one kind.
type Catalog struct {
	db      *gorm.DB
	kind    string
	siteURL string
	urlPath string
	logger  logger.Interface
}

func newCatalog(db *gorm.DB, kind, siteURL, urlPath string, log logger.Interface) *Catalog {
	return &Catalog{
		db:      db,
		kind:    kind,
		siteURL: strings.TrimRight(siteURL, "/"),
		urlPath: urlPath,
		logger:  log,
	}
}

func (c *Catalog) Get(ctx context.Context, itemIDs []uint) ([]*licensing.CatalogItem, error) {
	if len(itemIDs) == 0 {
		return []*licensing.CatalogItem{}, nil
	}
	var rows []*models.CatalogItemModel
	err := db.GetTxFromContext(ctx, c.db).
		Where("kind = ? AND id IN ?", c.kind, itemIDs).
		Order("name ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		c.logger.Errorw("failed to get catalog items", "kind", c.kind, "error", err)
		return nil, fmt.Errorf("failed to get %s items: %w", c.kind, err)
	}
	return c.toItems(rows), nil
}

// Search matches name, short name and id number; an empty query lists the first page.
func (c *Catalog) Search(ctx context.Context, query string) ([]*licensing.CatalogItem, error) {
	tx := db.GetTxFromContext(ctx, c.db).Where("kind = ? AND visible = ?", c.kind, true)
	if q := strings.TrimSpace(query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(short_name) LIKE ? OR LOWER(id_number) LIKE ?", like, like, like)
	}

	var rows []*models.CatalogItemModel
	if err := tx.Order("name ASC, id ASC").Limit(searchLimit).Find(&rows).Error; err != nil {
		c.logger.Errorw("failed to search catalog", "kind", c.kind, "query", query, "error", err)
		return nil, fmt.Errorf("failed to search %s items: %w", c.kind, err)
	}
	return c.toItems(rows), nil
}

func (c *Catalog) ItemName(ctx context.Context, itemID uint) (string, error) {
	var row models.CatalogItemModel
	err := db.GetTxFromContext(ctx, c.db).
		Where("kind = ? AND id = ?", c.kind, itemID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %s %d", licensing.ErrItemNotFound, c.kind, itemID)
		}
		return "", fmt.Errorf("failed to get %s name: %w", c.kind, err)
	}
	return row.Name, nil
}

func (c *Catalog) ItemURL(itemID uint) string {
	return fmt.Sprintf("%s%s?id=%d", c.siteURL, c.urlPath, itemID)
}

func (c *Catalog) toItems(rows []*models.CatalogItemModel) []*licensing.CatalogItem {
	out := make([]*licensing.CatalogItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, &licensing.CatalogItem{
			Type:      c.kind,
			ID:        r.ID,
			Name:      r.Name,
			ShortName: r.ShortName,
			IDNumber:  r.IDNumber,
			URL:       c.ItemURL(r.ID),
		})
	}
	return out
}
