package app

import (
	"github.com/alibestprice/price-bot/internal/config"
	"github.com/alibestprice/price-bot/internal/server"
	"github.com/alibestprice/price-bot/internal/usecase"
	"github.com/carousell/ct-go/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"
)

func Invoke(funcs ...any) *fx.App {
	log := logger.MustNamed("app")
	conf := config.MustLoad()
	log.Debugw("config loaded", log.Reflect("config", conf))
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{
				Logger: log.Unwrap().Desugar(),
			}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Provide(
			newBlobStore,
			newRateLimiter,
			newAliExpressClient,

			server.NewController,

			usecase.NewTelemetryUsecase,
			usecase.NewMessageUsecase,
		),
		fx.Supply(conf),
		fx.Invoke(FlushTelemetryOnStop),
		fx.Invoke(funcs...),
	)
}
