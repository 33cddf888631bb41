package server

import (
	"fmt"

	"github.com/sentinela-io/sentinela/server/fanout"
	"github.com/sentinela-io/sentinela/server/gstorage"
	"github.com/sentinela-io/sentinela/server/models"
	"github.com/sentinela-io/sentinela/server/twilio"
	"github.com/sentinela-io/sentinela/server/work"
	"github.com/sentinela-io/sentinela/shared"
	"github.com/sentinela-io/sentinela/utils"
)

const BACKUP_DB_HANDLER = "backup_db"

func registerJobHandlers(workerPool *work.WorkerPoolAdapter, smsClient *twilio.ClientWrapper, serverConfig *shared.ServerConfig, configDir string) {
	fatalOnError(workerPool.Register(fanout.DELIVER_PANIC_SMS_HANDLER, func(args map[string]interface{}) error {
		phone, ok := args["phone"].(string)
		if !ok || phone == "" {
			return fmt.Errorf("invalid 'phone' arg: %v", args["phone"])
		}

		message, ok := args["message"].(string)
		if !ok || message == "" {
			return fmt.Errorf("invalid 'message' arg: %v", args["message"])
		}

		return smsClient.SendMessage(phone, message)
	}))

	if sqliteBackupEnabled(serverConfig) {
		storageCfg := serverConfig.Google.Storage
		gStorage, err := gstorage.NewGStorage(serverConfig.Google.ApplicationCredentials, storageCfg.Prefix)
		fatalOnError(err)

		fatalOnError(workerPool.Register(BACKUP_DB_HANDLER, func(args map[string]interface{}) error {
			dbFilePath, err := models.DbFilePath(configDir)
			if err != nil {
				return err
			}
			return gStorage.UploadFile(storageCfg.Bucket, dbFilePath)
		}))
	}
}

// restoreDbFromBackup pulls the last sqlite backup from cloud storage
// when no local db file exists yet e.g. on a fresh host.
func restoreDbFromBackup(serverConfig *shared.ServerConfig, configDir string) {
	dbFilePath, err := models.DbFilePath(configDir)
	fatalOnError(err)

	exists, err := utils.FileExist(dbFilePath)
	fatalOnError(err)
	if exists {
		return
	}

	storageCfg := serverConfig.Google.Storage
	gStorage, err := gstorage.NewGStorage(serverConfig.Google.ApplicationCredentials, storageCfg.Prefix)
	fatalOnError(err)

	err = gStorage.DownloadFile(storageCfg.Bucket, models.DB_NAME, dbFilePath)
	if err == gstorage.ErrObjectNotExist {
		logg.Info("No sqlite backup found in cloud storage, starting fresh")
		return
	}
	fatalOnError(err)

	logg.Info("Restored sqlite db from cloud storage backup")
}

func enqueueJobs(workerPool *work.WorkerPoolAdapter, serverConfig *shared.ServerConfig) {
	if sqliteBackupEnabled(serverConfig) {
		fatalOnError(workerPool.PeriodicallyPerform(serverConfig.Google.Storage.SqliteBackupSchedule, work.JobParams{
			Name:    BACKUP_DB_HANDLER,
			Handler: BACKUP_DB_HANDLER,
			Args:    map[string]interface{}{},
		}))
	}
}
