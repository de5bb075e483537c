package logger

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cfgpkg "github.com/VML-Technologies/VML.Perito-sub005/pkg/config"
)

// New builds the process logger. Dev environments get debug level; everything
// else logs at info and above.
func New(cfg *cfgpkg.Config) (*zap.SugaredLogger, error) {
	zc := zap.NewProductionConfig()
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.TimeKey = "time"
	if cfg != nil && cfg.Env == cfgpkg.EnvDev {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	l, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar().With("service", "perito-api"), nil
}

func registerSync(lc fx.Lifecycle, log *zap.SugaredLogger) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			// stderr/stdout sync errors are expected on some platforms.
			_ = log.Sync()
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(registerSync),
)
