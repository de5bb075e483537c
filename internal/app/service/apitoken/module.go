package apitoken

import (
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	cfgpkg "github.com/VML-Technologies/VML.Perito-sub005/pkg/config"
)

// NewValidator picks the validator named by api_token.mode. In registry mode a
// configured secret stays valid so operators can issue the first tokens.
func NewValidator(cfg *cfgpkg.Config, db *gorm.DB, log *zap.SugaredLogger) (TokenValidator, error) {
	switch cfg.APIToken.Mode {
	case "", cfgpkg.TokenModeStatic:
		if cfg.APIToken.Secret == "" {
			log.Warnw("api token secret is empty, every integration request will be rejected")
		}
		return NewStaticTokenValidator(cfg.APIToken.Secret, cfg.APIToken.Source), nil
	case cfgpkg.TokenModeRegistry:
		registry := NewRegistryTokenValidator(db, log)
		if cfg.APIToken.Secret == "" {
			return registry, nil
		}
		log.Infow("api token registry active with bootstrap secret", "source", cfg.APIToken.Source)
		return FirstMatch{registry, NewStaticTokenValidator(cfg.APIToken.Secret, cfg.APIToken.Source)}, nil
	default:
		return nil, fmt.Errorf("unknown api_token.mode %q", cfg.APIToken.Mode)
	}
}

// NewRegistry returns the token registry, or nil outside registry mode.
func NewRegistry(cfg *cfgpkg.Config, db *gorm.DB, log *zap.SugaredLogger) TokenRegistry {
	if cfg.APIToken.Mode != cfgpkg.TokenModeRegistry {
		return nil
	}
	return NewRegistryTokenValidator(db, log)
}

var Module = fx.Options(
	fx.Provide(NewValidator),
	fx.Provide(NewRegistry),
)
