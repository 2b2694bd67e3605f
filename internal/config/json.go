package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		TokenSignKey               string   `json:"token_sign_key"`
		TokenIssuer                string   `json:"token_issuer"`
		TokenDuration              Duration `json:"token_duration"`
		Version                    string   `json:"version"`
		AllowAdminSelfRegistration *bool    `json:"allow_admin_self_registration,omitempty"`
	} `json:"app,omitempty"`

	Security struct {
		Lockout struct {
			MaxAttempts int      `json:"max_attempts"`
			Window      Duration `json:"window"`
			Duration    Duration `json:"duration"`
		} `json:"lockout,omitempty"`
		Captcha struct {
			TurnstileEnabled   bool     `json:"turnstile_enabled"`
			TurnstileSiteKey   string   `json:"turnstile_site_key"`
			TurnstileSecretKey string   `json:"turnstile_secret_key"`
			TurnstileVerifyURL string   `json:"turnstile_verify_url"`
			Timeout            Duration `json:"timeout"`
			ChallengeTTL       Duration `json:"challenge_ttl"`
			MaxChallenges      int      `json:"max_challenges"`
		} `json:"captcha,omitempty"`
		Argon2 struct {
			MemoryKiB   uint32 `json:"memory_kib"`
			Iterations  uint32 `json:"iterations"`
			Parallelism uint8  `json:"parallelism"`
			KeyLength   uint32 `json:"key_length"`
			SaltLength  uint32 `json:"salt_length"`
		} `json:"argon2,omitempty"`
	} `json:"security,omitempty"`

	Storage struct {
		DB struct {
			Driver string `json:"driver"`
			DSN    string `json:"dsn"`
		} `json:"db,omitempty"`

		Avatars struct {
			Backend  string `json:"backend"`
			Dir      string `json:"dir"`
			MaxBytes int64  `json:"max_bytes"`
			S3       struct {
				Endpoint  string   `json:"endpoint"`
				Region    string   `json:"region"`
				Bucket    string   `json:"bucket"`
				AccessKey string   `json:"access_key"`
				SecretKey string   `json:"secret_key"`
				URLExpiry Duration `json:"url_expiry"`
			} `json:"s3,omitempty"`
		} `json:"avatars,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress        string   `json:"http_address"`
		RequestTimeout     Duration `json:"request_timeout"`
		CookieName         string   `json:"cookie_name"`
		CookieSecure       bool     `json:"cookie_secure"`
		TrustProxy         bool     `json:"trust_proxy"`
		CORSAllowedOrigins []string `json:"cors_allowed_origins"`
		RateLimitPerMinute int      `json:"rate_limit_per_minute"`
	} `json:"server,omitempty"`

	Workers struct {
		SweepInterval Duration `json:"sweep_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	sec := jsonCfg.Security
	avatars := jsonCfg.Storage.Avatars

	cfg := &StructuredConfig{
		App: App{
			TokenSignKey:               jsonCfg.App.TokenSignKey,
			TokenIssuer:                jsonCfg.App.TokenIssuer,
			TokenDuration:              time.Duration(jsonCfg.App.TokenDuration),
			Version:                    jsonCfg.App.Version,
			AllowAdminSelfRegistration: jsonCfg.App.AllowAdminSelfRegistration,
		},
		Security: Security{
			Lockout: Lockout{
				MaxAttempts: sec.Lockout.MaxAttempts,
				Window:      time.Duration(sec.Lockout.Window),
				Duration:    time.Duration(sec.Lockout.Duration),
			},
			Captcha: Captcha{
				TurnstileEnabled:   sec.Captcha.TurnstileEnabled,
				TurnstileSiteKey:   sec.Captcha.TurnstileSiteKey,
				TurnstileSecretKey: sec.Captcha.TurnstileSecretKey,
				TurnstileVerifyURL: sec.Captcha.TurnstileVerifyURL,
				Timeout:            time.Duration(sec.Captcha.Timeout),
				ChallengeTTL:       time.Duration(sec.Captcha.ChallengeTTL),
				MaxChallenges:      sec.Captcha.MaxChallenges,
			},
			Argon2: Argon2{
				MemoryKiB:   sec.Argon2.MemoryKiB,
				Iterations:  sec.Argon2.Iterations,
				Parallelism: sec.Argon2.Parallelism,
				KeyLength:   sec.Argon2.KeyLength,
				SaltLength:  sec.Argon2.SaltLength,
			},
		},
		Storage: Storage{
			DB: DB{
				Driver: jsonCfg.Storage.DB.Driver,
				DSN:    jsonCfg.Storage.DB.DSN,
			},
			Avatars: Avatars{
				Backend:  avatars.Backend,
				Dir:      avatars.Dir,
				MaxBytes: avatars.MaxBytes,
				S3: S3{
					Endpoint:  avatars.S3.Endpoint,
					Region:    avatars.S3.Region,
					Bucket:    avatars.S3.Bucket,
					AccessKey: avatars.S3.AccessKey,
					SecretKey: avatars.S3.SecretKey,
					URLExpiry: time.Duration(avatars.S3.URLExpiry),
				},
			},
		},
		Server: Server{
			HTTPAddress:        jsonCfg.Server.HTTPAddress,
			RequestTimeout:     time.Duration(jsonCfg.Server.RequestTimeout),
			CookieName:         jsonCfg.Server.CookieName,
			CookieSecure:       jsonCfg.Server.CookieSecure,
			TrustProxy:         jsonCfg.Server.TrustProxy,
			CORSAllowedOrigins: jsonCfg.Server.CORSAllowedOrigins,
			RateLimitPerMinute: jsonCfg.Server.RateLimitPerMinute,
		},
		Workers: Workers{
			SweepInterval: time.Duration(jsonCfg.Workers.SweepInterval),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
