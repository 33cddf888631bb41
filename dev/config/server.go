package config

const SERVER_YML = `
sentinela:
  jwtSecret: "dev-only-secret-do-not-use-in-prod"
  cron:
    timeZone: "America/Toronto"
  listener:
    port: 3000

sqlite:
  passPhrase: passphrase

google:
  storage:
    bucket: "sentinela"
    prefix: "sentinela-dev"
    sqliteBackupSchedule: "*/30 * * * *"
    enableSqliteBackupAndSync: false
  applicationCredentials:

twilio:
  accountSid:
  authToken:
  messagingServiceSid:
`
