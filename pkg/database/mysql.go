// Package database holds the process-wide MySQL and Redis connections.
package database

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"docqa-go/internal/model"
	"docqa-go/pkg/log"
)

var DB *gorm.DB

// InitMySQL connects to MySQL and migrates the upload audit table.
func InitMySQL(dsn string) {
	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect database", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := DB.AutoMigrate(&model.FileUpload{}); err != nil {
		log.Fatal("failed to migrate file_upload table", err)
	}

	log.Info("MySQL database connected successfully")
}
