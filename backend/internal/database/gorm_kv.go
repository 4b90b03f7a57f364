package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/laerciomonteiro/escutasegura/backend/internal/models"
)

// GormKV implementa KV em qualquer dialeto do gorm (SQLite, MySQL, Postgres).
// O lote roda dentro de uma transação, mais forte do que KV exige.
type GormKV struct {
	db *gorm.DB
}

// NewGormKV migra as tabelas KV e devolve o backend.
func NewGormKV(db *gorm.DB) (*GormKV, error) {
	if err := db.AutoMigrate(&models.HashField{}, &models.SortedSetMember{}); err != nil {
		return nil, err
	}
	return &GormKV{db: db}, nil
}

func (g *GormKV) Pipeline(ctx context.Context, fn func(b Batch)) error {
	var ops opBatch
	fn(&ops)
	if ops.empty() {
		return nil
	}

	var fields []models.HashField
	for _, op := range ops.hsets {
		for f, v := range op.fields {
			fields = append(fields, models.HashField{Key: op.key, Field: f, Value: v})
		}
	}
	members := make([]models.SortedSetMember, 0, len(ops.zadds))
	for _, op := range ops.zadds {
		members = append(members, models.SortedSetMember{SetKey: op.index, Member: op.member, Score: op.score})
	}

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "hash_key"}, {Name: "field"}},
				DoUpdates: clause.AssignmentColumns([]string{"value"}),
			}).Create(&fields).Error; err != nil {
				return err
			}
		}
		if len(members) > 0 {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "set_key"}, {Name: "member"}},
				DoUpdates: clause.AssignmentColumns([]string{"score"}),
			}).Create(&members).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (g *GormKV) ZRange(ctx context.Context, index string) ([]string, error) {
	var members []string
	err := g.db.WithContext(ctx).
		Model(&models.SortedSetMember{}).
		Where("set_key = ?", index).
		Order("score, member").
		Pluck("member", &members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (g *GormKV) HGetAll(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	var rows []models.HashField
	if err := g.db.WithContext(ctx).Where("hash_key IN ?", keys).Find(&rows).Error; err != nil {
		return nil, err
	}
	byKey := make(map[string]map[string]string, len(keys))
	for _, r := range rows {
		h, ok := byKey[r.Key]
		if !ok {
			h = make(map[string]string)
			byKey[r.Key] = h
		}
		h[r.Field] = r.Value
	}
	return alignHashes(keys, byKey), nil
}

func (g *GormKV) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
