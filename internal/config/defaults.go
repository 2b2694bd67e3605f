package config

import "time"

const (
	defaultTurnstileVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
	defaultCookieName         = "access_token_cookie"
)

// defaultConfig returns the fallback values merged in after every other
// source. Secrets and the database DSN deliberately have no default.
func defaultConfig() *StructuredConfig {
	allowAdminSelfRegistration := true

	return &StructuredConfig{
		App: App{
			TokenIssuer:                "go-login-portal",
			TokenDuration:              2 * time.Hour,
			Version:                    "dev",
			AllowAdminSelfRegistration: &allowAdminSelfRegistration,
		},
		Security: Security{
			Lockout: Lockout{
				MaxAttempts: 5,
				Window:      15 * time.Minute,
				Duration:    30 * time.Minute,
			},
			Captcha: Captcha{
				TurnstileVerifyURL: defaultTurnstileVerifyURL,
				Timeout:            5 * time.Second,
				ChallengeTTL:       30 * time.Minute,
				MaxChallenges:      10000,
			},
			Argon2: Argon2{
				MemoryKiB:   64 * 1024,
				Iterations:  3,
				Parallelism: 2,
				KeyLength:   32,
				SaltLength:  16,
			},
		},
		Storage: Storage{
			DB: DB{
				Driver: DriverPostgres,
			},
			Avatars: Avatars{
				Backend:  AvatarBackendLocal,
				Dir:      "uploads/avatars",
				MaxBytes: 2 * 1024 * 1024,
				S3: S3{
					Region:    "us-east-1",
					URLExpiry: 15 * time.Minute,
				},
			},
		},
		Server: Server{
			HTTPAddress:    "localhost:8080",
			RequestTimeout: 30 * time.Second,
			CookieName:     defaultCookieName,
		},
		Workers: Workers{
			SweepInterval: time.Minute,
		},
	}
}
