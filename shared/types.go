package shared

type ServerConfig struct {
	Sqlite    SqliteConfig    `mapstructure:"sqlite" validate:"required"`
	Sentinela SentinelaConfig `mapstructure:"sentinela" validate:"required"`
	Google    GoogleConfig    `mapstructure:"google"`
	Twilio    TwilioConfig    `mapstructure:"twilio"`
}

type SqliteConfig struct {
	PassPhrase string `mapstructure:"passPhrase" validate:"required"`
}

type SentinelaConfig struct {
	JwtSecret string         `mapstructure:"jwtSecret" validate:"required"`
	Cron      CronConfig     `mapstructure:"cron" validate:"required"`
	Listener  ListenerConfig `mapstructure:"listener" validate:"required"`
}

type CronConfig struct {
	TimeZone string `mapstructure:"timeZone" validate:"required"`
}

type ListenerConfig struct {
	Port int `mapstructure:"port" validate:"required"`
}

type TwilioConfig struct {
	AccountSid          string `mapstructure:"accountSid"`
	AuthToken           string `mapstructure:"authToken"`
	MessagingServiceSid string `mapstructure:"messagingServiceSid"`
}

type GoogleConfig struct {
	ApplicationCredentials string        `mapstructure:"applicationCredentials"`
	Storage                StorageConfig `mapstructure:"storage"`
}

type StorageConfig struct {
	Bucket                    string      `mapstructure:"bucket" validate:"required_with=EnableSqliteBackupAndSync"`
	Prefix                    string      `mapstructure:"prefix"`
	SqliteBackupSchedule      string      `mapstructure:"sqliteBackupSchedule" validate:"required_with=EnableSqliteBackupAndSync"`
	EnableSqliteBackupAndSync interface{} `mapstructure:"enableSqliteBackupAndSync" validate:"omitempty,bool"`
}
