package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Staff session tokens
	JWTSecret        string `envconfig:"JWT_SECRET"`
	SessionMaxAgeSec int    `envconfig:"SESSION_MAX_AGE_SEC" default:"604800"` // 7 days

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Intake throttling
	RateLimitWindowSec uint `envconfig:"RATE_LIMIT_WINDOW_SEC" default:"900"`
	RateLimitMax       int  `envconfig:"RATE_LIMIT_MAX" default:"10"`

	// Attachment storage
	StorageBucketName    string `envconfig:"STORAGE_BUCKET_NAME" default:"need-uploads"`
	StoragePublicBaseURL string `envconfig:"STORAGE_PUBLIC_BASE_URL"`

	// Completion service
	GeminiAPIKey    string `envconfig:"GEMINI_API_KEY"`
	GeminiModel     string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`
	AnalysisTimeout uint   `envconfig:"ANALYSIS_TIMEOUT_SEC" default:"120"`

	// Seed command
	AdminEmail    string `envconfig:"ADMIN_EMAIL" default:"admin@example.com"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
}
