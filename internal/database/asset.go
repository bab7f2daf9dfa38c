package database

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/librarease/assetstore/internal/usecase"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Asset struct {
	ID          uuid.UUID      `gorm:"column:id;primaryKey;type:uuid;index:idx_assets_created_at_id,priority:2"`
	UserID      uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index;index:idx_assets_dedup,priority:1"`
	WebsiteID   *uuid.UUID     `gorm:"column:website_id;type:uuid;index;index:idx_assets_dedup,priority:2"`
	FileName    string         `gorm:"column:file_name;type:varchar(255);not null"`
	ContentType string         `gorm:"column:content_type;type:varchar(255);not null;index:idx_assets_dedup,priority:3"`
	ByteSize    int64          `gorm:"column:byte_size;not null;index:idx_assets_dedup,priority:4"`
	Digest      string         `gorm:"column:digest;type:varchar(64);not null;index:idx_assets_dedup,priority:5"`
	Colors      datatypes.JSON `gorm:"column:colors"`
	CreatedAt   time.Time      `gorm:"column:created_at;index:idx_assets_created_at_id,priority:1"`
	UpdatedAt   time.Time      `gorm:"column:updated_at"`
}

func (Asset) TableName() string {
	return "assets"
}

func (a *Asset) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a Asset) ConvertToUsecase() usecase.Asset {
	return usecase.Asset{
		ID:          a.ID,
		UserID:      a.UserID,
		WebsiteID:   a.WebsiteID,
		FileName:    a.FileName,
		ContentType: a.ContentType,
		ByteSize:    a.ByteSize,
		Digest:      a.Digest,
		Colors:      a.Colors,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func assetFromUsecase(a usecase.Asset) Asset {
	return Asset{
		ID:          a.ID,
		UserID:      a.UserID,
		WebsiteID:   a.WebsiteID,
		FileName:    a.FileName,
		ContentType: a.ContentType,
		ByteSize:    a.ByteSize,
		Digest:      a.Digest,
		Colors:      datatypes.JSON(a.Colors),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func (s *service) CreateAsset(ctx context.Context, a usecase.Asset) (usecase.Asset, error) {
	m := assetFromUsecase(a)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return usecase.Asset{}, err
	}
	return m.ConvertToUsecase(), nil
}

func (s *service) GetAssetByID(ctx context.Context, id uuid.UUID) (usecase.Asset, error) {
	var m Asset
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usecase.Asset{}, usecase.ErrNotFound
	}
	if err != nil {
		return usecase.Asset{}, err
	}
	return m.ConvertToUsecase(), nil
}

// FindDuplicateAsset returns the oldest asset of the same owner with the
// same content type, size and digest. Unscoped uploads only match other
// unscoped uploads.
func (s *service) FindDuplicateAsset(ctx context.Context, opt usecase.DuplicateAssetOption) (usecase.Asset, error) {
	db := s.db.WithContext(ctx).
		Where("user_id = ?", opt.UserID).
		Where("content_type = ? AND byte_size = ? AND digest = ?", opt.ContentType, opt.ByteSize, opt.Digest)

	if opt.WebsiteID == nil {
		db = db.Where("website_id IS NULL")
	} else {
		db = db.Where("website_id = ?", *opt.WebsiteID)
	}

	var m Asset
	err := db.Order("created_at ASC").Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return usecase.Asset{}, usecase.ErrNotFound
	}
	if err != nil {
		return usecase.Asset{}, err
	}
	return m.ConvertToUsecase(), nil
}

func (s *service) filterAssets(ctx context.Context, opt usecase.ListAssetsOption) *gorm.DB {
	db := s.db.WithContext(ctx).Model(&Asset{})
	if opt.UserID != uuid.Nil {
		db = db.Where("user_id = ?", opt.UserID)
	}
	if opt.WebsiteID != uuid.Nil {
		db = db.Where("website_id = ?", opt.WebsiteID)
	}
	return db
}

// ListAssets returns up to limit assets ordered newest first, strictly
// after cursor when one is given.
func (s *service) ListAssets(ctx context.Context, opt usecase.ListAssetsOption, cursor *usecase.Asset, limit int) ([]usecase.Asset, error) {
	db := s.filterAssets(ctx, opt)
	if cursor != nil {
		db = db.Where("(created_at < ? OR (created_at = ? AND id < ?))", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var ms []Asset
	err := db.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	list := make([]usecase.Asset, 0, len(ms))
	for _, m := range ms {
		list = append(list, m.ConvertToUsecase())
	}
	return list, nil
}

// FindAssets returns every asset matching the owner filter.
func (s *service) FindAssets(ctx context.Context, opt usecase.ListAssetsOption) ([]usecase.Asset, error) {
	var ms []Asset
	if err := s.filterAssets(ctx, opt).Find(&ms).Error; err != nil {
		return nil, err
	}
	list := make([]usecase.Asset, 0, len(ms))
	for _, m := range ms {
		list = append(list, m.ConvertToUsecase())
	}
	return list, nil
}

func (s *service) DeleteAsset(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&Asset{}).Error
}

// SumAssetSize returns the bytes used by the website's assets.
func (s *service) SumAssetSize(ctx context.Context, websiteID uuid.UUID) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&Asset{}).
		Where("website_id = ?", websiteID).
		Select("CAST(COALESCE(SUM(byte_size), 0) AS BIGINT)").
		Scan(&total).Error
	return total, err
}
