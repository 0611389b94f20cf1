package repository

import (
	"gorm.io/gorm"

	"docqa-go/internal/model"
)

// UploadRepository records every uploaded file and its ingestion outcome.
type UploadRepository interface {
	Create(record *model.FileUpload) error
	UpdateStatus(id uint, status int, chunkCount int) error
	List(limit int) ([]model.FileUpload, error)
}

type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository creates a gorm-backed UploadRepository.
func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

func (r *uploadRepository) Create(record *model.FileUpload) error {
	return r.db.Create(record).Error
}

func (r *uploadRepository) UpdateStatus(id uint, status int, chunkCount int) error {
	return r.db.Model(&model.FileUpload{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "chunk_count": chunkCount}).Error
}

// List returns the most recent uploads first.
func (r *uploadRepository) List(limit int) ([]model.FileUpload, error) {
	var uploads []model.FileUpload
	err := r.db.Order("id desc").Limit(limit).Find(&uploads).Error
	return uploads, err
}

// NopUploadRepository is used when no database is configured.
type NopUploadRepository struct{}

func (NopUploadRepository) Create(*model.FileUpload) error       { return nil }
func (NopUploadRepository) UpdateStatus(uint, int, int) error    { return nil }
func (NopUploadRepository) List(int) ([]model.FileUpload, error) { return []model.FileUpload{}, nil }
