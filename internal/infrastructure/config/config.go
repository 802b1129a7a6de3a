package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment string            `mapstructure:"environment"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	Transaction TransactionConfig `mapstructure:"transaction"`
	Reaper      ReaperConfig      `mapstructure:"reaper"`
	Reconciler  ReconcilerConfig  `mapstructure:"reconciler"`
	Link        LinkConfig        `mapstructure:"link"`
	Telegram    TelegramConfig    `mapstructure:"telegram"`
	SMTP        SMTPConfig        `mapstructure:"smtp"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	Redis       RedisConfig       `mapstructure:"redis"`
	QRIS        QRISConfig        `mapstructure:"qris"`
	Lookup      LookupConfig      `mapstructure:"lookup"`
	Seed        SeedConfig        `mapstructure:"seed"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`
	AllowedOrigins    []string      `mapstructure:"allowedOrigins"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	TimeZone        string        `mapstructure:"timeZone"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"`
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`
	SlowThreshold   time.Duration `mapstructure:"slowThreshold"`
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"`
	IsolationLevel  string        `mapstructure:"isolationLevel"`
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	TimeFormat string `mapstructure:"timeFormat"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// TransactionConfig contains payment creation settings
type TransactionConfig struct {
	TTL               time.Duration `mapstructure:"ttl"`
	TimeZone          string        `mapstructure:"timeZone"`
	UniqueMin         int64         `mapstructure:"uniqueMin"`
	UniqueMax         int64         `mapstructure:"uniqueMax"`
	MaxAttempts       int           `mapstructure:"maxAttempts"`
	QueueSize         int           `mapstructure:"queueSize"`
	CreateTimeout     time.Duration `mapstructure:"createTimeout"`
	NotifyTimeout     time.Duration `mapstructure:"notifyTimeout"`
	DailyRequestLimit int64         `mapstructure:"dailyRequestLimit"`
}

// ReaperConfig contains expiry sweep settings
type ReaperConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	Interval  time.Duration `mapstructure:"interval"`
	BatchSize int           `mapstructure:"batchSize"`
	LeaseTTL  time.Duration `mapstructure:"leaseTtl"`
}

// ReconcilerConfig contains summary reconciliation settings
type ReconcilerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
	AutoFix  bool          `mapstructure:"autoFix"`
}

// LinkConfig contains payment link settings
type LinkConfig struct {
	SecretKey     string `mapstructure:"secretKey"` // 64 hex characters
	PublicBaseURL string `mapstructure:"publicBaseUrl"`
}

// TelegramConfig contains the Telegram Bot API settings
type TelegramConfig struct {
	APIBase string        `mapstructure:"apiBase"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SMTPConfig contains the email notifier settings. An empty host disables email.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// KafkaConfig contains the event publisher settings
type KafkaConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Brokers  []string      `mapstructure:"brokers"`
	Topic    string        `mapstructure:"topic"`
	ClientID string        `mapstructure:"clientId"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// RedisConfig contains the quota limiter settings
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// QRISConfig contains the dynamic QRIS generator and image CDN settings
type QRISConfig struct {
	APIURL       string        `mapstructure:"apiUrl"`
	CDNUploadURL string        `mapstructure:"cdnUploadUrl"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// LookupConfig contains the account lookup provider settings
type LookupConfig struct {
	APIURL  string        `mapstructure:"apiUrl"`
	APIKey  string        `mapstructure:"apiKey"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SeedConfig controls the development demo merchant
type SeedConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	DemoAPIKey string `mapstructure:"demoApiKey"`
}

// IsProduction reports whether the production environment is active
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}
