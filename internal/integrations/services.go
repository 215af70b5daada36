package integrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// service / integrations interface
type ServiceInterface interface {
	Connect(context.Context) error
	ServiceName() string
}

// try to connect services of ServiceInterface interface type.
// services that connected are not retried, the errors of the last attempt are returned
func TryConnectServices(ctx context.Context, retryMax int, retrySleep time.Duration, services []ServiceInterface, logger *zerolog.Logger) error {

	retryMax = max(retryMax, 1)
	pending := services
	for k := 1; k < retryMax+1; k++ {
		logger.Info().Any("attempt", k).Any("max", retryMax).Int("services", len(pending)).Msg("services connect ..")

		var errs []error
		failed := []ServiceInterface{}
		for _, service := range pending {
			if err := service.Connect(ctx); err != nil {
				logger.Error().Err(err).Str("service", service.ServiceName()).Msg("connect failed")
				errs = append(errs, fmt.Errorf("%s: %w", service.ServiceName(), err))
				failed = append(failed, service)
				continue
			}
			logger.Info().Str("service", service.ServiceName()).Msg("connected")
		}
		if len(failed) == 0 {
			return nil
		}
		if k >= retryMax {
			return fmt.Errorf("service connect failed after %v attempts: %w", k, errors.Join(errs...))
		}
		pending = failed

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retrySleep):
		}
	}
	return nil
}
