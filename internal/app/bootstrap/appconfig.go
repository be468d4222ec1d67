// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, CORS, body limits); this
// struct covers everything folio itself needs.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Maximum connections in pool (default: 100)
	MongoMinPoolSize uint64 // Minimum connections to keep warm (default: 10)

	// Content sync
	PollInterval      time.Duration // Re-query interval when change streams are unavailable (default: 2s)
	SnapshotCachePath string        // SQLite file holding the last server snapshots (blank disables)
	SeedFile          string        // YAML file overriding the built-in default content (blank uses built-ins)

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: folio-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Maximum session cookie lifetime (default: 24h)

	// Login lockout configuration
	RateLimitEnabled       bool          // Lock an email after repeated failures (default: true)
	RateLimitLoginAttempts int           // Max failed login attempts before lockout (default: 5)
	RateLimitLoginWindow   time.Duration // Time window for counting failed attempts (default: 15m)
	RateLimitLoginLockout  time.Duration // Lockout duration after exceeding limit (default: 15m)

	// Contact form throttling, counted per client IP
	ContactMaxPerWindow int           // Messages allowed per window (default: 3)
	ContactWindow       time.Duration // Counting window (default: 1h)

	// CSRF protection configuration
	CSRFKey string // Secret key for CSRF token signing (32 bytes, must be strong in production)

	// Media storage configuration
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving local files (e.g., "/files")
	MediaMaxUploadMB int    // Largest accepted upload in megabytes (default: 10)

	// S3/CloudFront configuration (only used if StorageType is "s3")
	StorageS3Region    string // AWS region
	StorageS3Bucket    string // S3 bucket name
	StorageS3Prefix    string // Key prefix (e.g., "media/")
	StorageCFURL       string // CloudFront distribution URL
	StorageCFKeyPairID string // CloudFront key pair ID
	StorageCFKeyPath   string // Path to CloudFront private key file

	// Email/SMTP configuration for the contact form
	MailSMTPHost string // SMTP server host (blank disables the contact form)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address (e.g., noreply@example.com)
	MailFromName string // From display name

	// BaseURL is the public address of the site, used for trusted origins.
	BaseURL string

	// Request deadlines for backend calls
	TimeoutPing   time.Duration
	TimeoutWrite  time.Duration
	TimeoutBatch  time.Duration
	TimeoutUpload time.Duration

	// Admin account seeding. When both are set, an account is created on
	// startup if none exists for AdminEmail.
	AdminEmail    string
	AdminName     string
	AdminPassword string
}
