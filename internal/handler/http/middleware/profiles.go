package middleware

import (
	"fmt"
	"time"

	appconfig "github.com/yashchoube/rajeshwari-tech-sub000/internal/config"
	"github.com/yashchoube/rajeshwari-tech-sub000/pkg/config"
)

// Built-in profile ceilings.
const (
	PublicFormMaxRequests = 5
	LoginMaxRequests      = 10
	AdminMaxRequests      = 100
	BlogReadMaxRequests   = 200
	DefaultProfileWindow  = 15 * time.Minute
)

// Profiles bundles the admission presets used by the router.
type Profiles struct {
	PublicForm SecurityConfig
	Login      SecurityConfig
	AdminOnly  SecurityConfig
	BlogRead   SecurityConfig
}

// PublicForm guards anonymous form submissions (enrollments, demo bookings):
// 5 requests per 15 minutes from the site origins.
func PublicForm(origins []string) SecurityConfig {
	return SecurityConfig{
		Name:           appconfig.ProfilePublicForm,
		RateLimit:      &RateLimitRule{MaxRequests: PublicFormMaxRequests, Window: DefaultProfileWindow},
		AllowedOrigins: origins,
	}
}

// Login guards admin token requests: 10 attempts per 15 minutes from the site
// origins. It is counted apart from PublicForm so failed logins never use up
// a visitor's enrollment budget, and the password reaches the credential
// check byte for byte.
func Login(origins []string) SecurityConfig {
	return SecurityConfig{
		Name:           appconfig.ProfileLogin,
		RateLimit:      &RateLimitRule{MaxRequests: LoginMaxRequests, Window: DefaultProfileWindow},
		AllowedOrigins: origins,
		RawFields:      []string{"password"},
	}
}

// AdminOnly guards the back-office API: authentication required, 100 requests
// per 15 minutes from the site origins.
func AdminOnly(origins []string) SecurityConfig {
	return SecurityConfig{
		Name:           appconfig.ProfileAdmin,
		RateLimit:      &RateLimitRule{MaxRequests: AdminMaxRequests, Window: DefaultProfileWindow},
		RequireAuth:    true,
		AllowedOrigins: origins,
	}
}

// BlogRead guards the public blog API: 200 requests per 15 minutes from any
// origin.
func BlogRead() SecurityConfig {
	return SecurityConfig{
		Name:      appconfig.ProfileBlogRead,
		RateLimit: &RateLimitRule{MaxRequests: BlogReadMaxRequests, Window: DefaultProfileWindow},
	}
}

// DefaultProfiles returns the built-in presets with DefaultSiteOrigins.
func DefaultProfiles() Profiles {
	return Profiles{
		PublicForm: PublicForm(DefaultSiteOrigins),
		Login:      Login(DefaultSiteOrigins),
		AdminOnly:  AdminOnly(DefaultSiteOrigins),
		BlogRead:   BlogRead(),
	}
}

// BuildProfiles layers the configuration sources over the built-in presets,
// later sources winning:
//
//  1. built-in presets
//  2. environment (rl: *_RATE_LIMIT, *_WINDOW, *_ALGORITHM; siteOrigins: SITE_ALLOWED_ORIGINS)
//  3. the security YAML file (file may be nil)
//
// A disabled rl removes rate limiting from every profile.
func BuildProfiles(rl *config.RateLimitConfig, siteOrigins []string, file *appconfig.SecurityConfig) (Profiles, error) {
	if fileOrigins := file.GetSiteOrigins(); len(fileOrigins) > 0 {
		siteOrigins = fileOrigins
	}
	if len(siteOrigins) == 0 {
		siteOrigins = DefaultSiteOrigins
	}
	for _, o := range siteOrigins {
		if err := ValidateOrigin(o); err != nil {
			return Profiles{}, err
		}
	}

	p := Profiles{
		PublicForm: PublicForm(siteOrigins),
		Login:      Login(siteOrigins),
		AdminOnly:  AdminOnly(siteOrigins),
		BlogRead:   BlogRead(),
	}

	if rl != nil {
		applyLimit(&p.PublicForm, rl.PublicForm)
		applyLimit(&p.Login, rl.Login)
		applyLimit(&p.AdminOnly, rl.Admin)
		applyLimit(&p.BlogRead, rl.BlogRead)
	}

	for _, target := range []*SecurityConfig{&p.PublicForm, &p.Login, &p.AdminOnly, &p.BlogRead} {
		if o, ok := file.Profile(target.Name); ok {
			if err := applyOverride(target, o); err != nil {
				return Profiles{}, fmt.Errorf("profile %s: %w", target.Name, err)
			}
		}
		if rl != nil && !rl.Enabled {
			target.RateLimit = nil
		}
	}

	return p, nil
}

// LoadProfiles builds the profiles from the process environment and the file
// named by SECURITY_PROFILES_FILE.
func LoadProfiles(rl *config.RateLimitConfig) (Profiles, error) {
	file, err := appconfig.LoadSecurityConfigFromEnv()
	if err != nil {
		return Profiles{}, fmt.Errorf("load security profiles: %w", err)
	}
	return BuildProfiles(rl, config.GetEnvStringList("SITE_ALLOWED_ORIGINS", nil), file)
}

func applyLimit(cfg *SecurityConfig, limit config.ProfileLimit) {
	if cfg.RateLimit == nil || limit.MaxRequests <= 0 || limit.Window <= 0 {
		return
	}
	cfg.RateLimit = &RateLimitRule{
		MaxRequests: limit.MaxRequests,
		Window:      limit.Window,
		Algorithm:   limit.Algorithm,
	}
}

func applyOverride(cfg *SecurityConfig, o appconfig.ProfileOverride) error {
	if o.Disabled {
		cfg.RateLimit = nil
	} else if o.MaxRequests != nil || o.Window != nil || o.Algorithm != "" {
		rule := RateLimitRule{MaxRequests: BlogReadMaxRequests, Window: DefaultProfileWindow}
		if cfg.RateLimit != nil {
			rule = *cfg.RateLimit
		}
		if o.MaxRequests != nil {
			rule.MaxRequests = *o.MaxRequests
		}
		if o.Window != nil {
			rule.Window = *o.Window
		}
		if o.Algorithm != "" {
			rule.Algorithm = o.Algorithm
		}
		cfg.RateLimit = &rule
	}

	if o.RequireAuth != nil {
		cfg.RequireAuth = *o.RequireAuth
	}
	if o.RejectMalformedJSON != nil {
		cfg.RejectMalformedJSON = *o.RejectMalformedJSON
	}
	if o.AllowedOrigins != nil {
		for _, origin := range o.AllowedOrigins {
			if err := ValidateOrigin(origin); err != nil {
				return err
			}
		}
		if len(o.AllowedOrigins) == 0 {
			cfg.AllowedOrigins = nil
		} else {
			cfg.AllowedOrigins = o.AllowedOrigins
		}
	}
	return nil
}
