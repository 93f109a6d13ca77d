package app

import (
	"context"

	"github.com/alibestprice/price-bot/internal/config"
	"github.com/alibestprice/price-bot/internal/repo/aliexpress"
	"github.com/alibestprice/price-bot/internal/repo/blobstore"
	"github.com/alibestprice/price-bot/internal/usecase"
	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"go.uber.org/fx"
)

func newBlobStore(conf *config.Config) (blobstore.Store, error) {
	return blobstore.NewFileStore(conf.Telemetry.DataDir)
}

func newRateLimiter(conf *config.Config) *aliexpress.RateLimiter {
	return aliexpress.NewRateLimiter(conf.AliExpress.RequestsPerMin)
}

func newAliExpressClient(conf *config.Config, limiter *aliexpress.RateLimiter) (aliexpress.Client, error) {
	return aliexpress.NewClient(conf, limiter)
}

// FlushTelemetryOnStop persists whatever the periodic flush has not
// written yet.
func FlushTelemetryOnStop(lc fx.Lifecycle, telemetry usecase.TelemetryUsecase) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := telemetry.Flush(); err != nil {
				log.Errorw(ctx, "final telemetry flush failed", "error", err)
			}
			return nil
		},
	})
}
