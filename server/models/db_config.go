package models

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	sqliteEncrypt "github.com/Daskott/gorm-sqlite-cipher"
	"github.com/sentinela-io/sentinela/server/logger"
	"github.com/sentinela-io/sentinela/utils"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const DB_NAME = "sentinela.db"

var logg = logger.NewLogger()
var db *gorm.DB

// AutoMigrate opens the encrypted sqlite db, migrates the schema
// & inserts seed data
func AutoMigrate(passPhrase string, dbRootDir string) error {
	err := openDB(passPhrase, dbRootDir)
	if err != nil {
		return err
	}

	return migrateAndSeed()
}

// DbFilePath returns the full path of the sqlite db file under 'dbRootDir'
func DbFilePath(dbRootDir string) (string, error) {
	dbDir, err := DbDirectory(dbRootDir)
	if err != nil {
		return "", err
	}

	return filepath.Join(dbDir, DB_NAME), nil
}

func DbDirectory(dbRootDir string) (string, error) {
	dbDir := filepath.Join(dbRootDir, "db")

	err := utils.CreateDirIfNotExist(dbDir)
	if err != nil {
		return "", err
	}

	return dbDir, nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func openDB(passPhrase string, dbRootDir string) error {
	var err error

	dbDSNVal, err := dbDSN(passPhrase, dbRootDir)
	if err != nil {
		return fmt.Errorf("failed to set sqlite DSN: %v", err)
	}

	db, err = gorm.Open(sqliteEncrypt.Open(dbDSNVal), &gorm.Config{
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				LogLevel:                  gormLogger.Silent,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return fmt.Errorf("failed to connect database: %v", err)
	}

	return nil
}

func migrateAndSeed() error {
	err := db.AutoMigrate(
		&Role{}, &JobStatus{}, &Job{},
		&User{}, &EmergencyContact{},
		&Incident{}, &Notification{}, &Message{},
	)
	if err != nil {
		return err
	}

	populateDBWithSeedData()

	return nil
}

func populateDBWithSeedData() {
	if err := db.First(&Role{}).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Info("Inserting seed data into 'Role'")
		db.Create(&[]Role{{Name: ADMIN_USER_ROLE}, {Name: BASIC_USER_ROLE}})
	}

	if err := db.First(&JobStatus{}).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Info("Inserting seed data into 'JobStatus'")
		db.Create(&[]JobStatus{
			{Name: ENQUEUED_JOB}, {Name: IN_PROGRESS_JOB},
			{Name: SUCCESSFUL_JOB}, {Name: DEAD_JOB},
		})
	}
}

func dbDSN(passPhrase string, dbRootDir string) (string, error) {
	dbFilePath, err := DbFilePath(dbRootDir)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"file:%v?_pragma_key=%s&_pragma_cipher_page_size=4096&_journal_mode=WAL",
		dbFilePath,
		passPhrase,
	), nil
}
