package model

import "time"

// Upload status values stored in the upload table.
const (
	UploadStatusQueued  = 0
	UploadStatusIndexed = 1
	UploadStatusFailed  = 2
)

// FileUpload is the ORM model of the file_upload audit table.
type FileUpload struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	FileName   string    `gorm:"type:varchar(255);not null" json:"fileName"`
	FileType   string    `gorm:"type:varchar(8);not null" json:"fileType"`
	TotalSize  int64     `gorm:"not null" json:"totalSize"`
	ChunkCount int       `gorm:"not null;default:0" json:"chunkCount"`
	Status     int       `gorm:"type:tinyint;not null;default:0" json:"status"`
	ObjectName string    `gorm:"type:varchar(255)" json:"objectName"`
	UploadedAt time.Time `gorm:"not null" json:"uploadedAt"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName pins the table name.
func (FileUpload) TableName() string {
	return "file_upload"
}
