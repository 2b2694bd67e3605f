// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "fmt"

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or one of the ErrInvalid*
// sentinels wrapped with a short description otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.App.TokenSignKey == "" {
		return fmt.Errorf("%w: token sign key is required", ErrInvalidAppConfigs)
	}
	if cfg.App.TokenIssuer == "" || cfg.App.TokenDuration <= 0 {
		return fmt.Errorf("%w: token issuer and a positive token duration are required", ErrInvalidAppConfigs)
	}

	lockout := cfg.Security.Lockout
	if lockout.MaxAttempts < 1 || lockout.Window <= 0 || lockout.Duration <= 0 {
		return fmt.Errorf("%w: lockout parameters must be positive", ErrInvalidSecurityConfigs)
	}
	if cfg.Security.Captcha.Timeout <= 0 || cfg.Security.Captcha.ChallengeTTL <= 0 {
		return fmt.Errorf("%w: captcha timeouts must be positive", ErrInvalidSecurityConfigs)
	}
	if cfg.Security.Captcha.MaxChallenges < 1 {
		return fmt.Errorf("%w: max challenges must be positive", ErrInvalidSecurityConfigs)
	}
	argon := cfg.Security.Argon2
	if argon.MemoryKiB == 0 || argon.Iterations == 0 || argon.Parallelism == 0 || argon.KeyLength < 16 || argon.SaltLength < 8 {
		return fmt.Errorf("%w: argon2 parameters are too weak", ErrInvalidSecurityConfigs)
	}

	switch cfg.Storage.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: unsupported driver %q", ErrInvalidStorageConfigs, cfg.Storage.DB.Driver)
	}
	if cfg.Storage.DB.DSN == "" {
		return fmt.Errorf("%w: database DSN is required", ErrInvalidStorageConfigs)
	}

	avatars := cfg.Storage.Avatars
	if avatars.MaxBytes <= 0 {
		return fmt.Errorf("%w: avatar size limit must be positive", ErrInvalidStorageConfigs)
	}
	switch avatars.Backend {
	case AvatarBackendLocal:
		if avatars.Dir == "" {
			return fmt.Errorf("%w: avatar directory is required", ErrInvalidStorageConfigs)
		}
	case AvatarBackendS3:
		if avatars.S3.Bucket == "" {
			return fmt.Errorf("%w: avatar bucket is required", ErrInvalidStorageConfigs)
		}
	default:
		return fmt.Errorf("%w: unsupported avatar backend %q", ErrInvalidStorageConfigs, avatars.Backend)
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.CookieName == "" {
		return fmt.Errorf("%w: address and cookie name are required", ErrInvalidServerConfigs)
	}
	if cfg.Server.RateLimitPerMinute < 0 {
		return fmt.Errorf("%w: rate limit cannot be negative", ErrInvalidServerConfigs)
	}

	if cfg.Workers.SweepInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
