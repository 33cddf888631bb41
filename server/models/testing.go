package models

import (
	"log"
	"os"

	sqliteEncrypt "github.com/Daskott/gorm-sqlite-cipher"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// InitializeTestDb points the package db handle at a shared in-memory
// sqlite db, migrates the schema & wipes any rows left over from a
// previous test in the same process.
func InitializeTestDb() {
	var err error

	db, err = gorm.Open(sqliteEncrypt.Open("file::memory:?cache=shared&_pragma_key=test"), &gorm.Config{
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
		logg.Panicf("failed to open test database: %v", err)
	}

	if err = migrateAndSeed(); err != nil {
		logg.Panicf("failed to migrate test database: %v", err)
	}

	for _, table := range []string{"notifications", "emergency_contacts", "incidents", "messages", "jobs", "users"} {
		db.Exec("DELETE FROM " + table)
	}
}
