package interceptor

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewLoggingInterceptor logs every unary call with its method, status code and
// duration. Panics in handlers are recovered and reported as codes.Internal.
func NewLoggingInterceptor(logger *zerolog.Logger, quietMethods ...string) grpc.UnaryServerInterceptor {
	quiet := make(map[string]bool, len(quietMethods))
	for _, method := range quietMethods {
		quiet[method] = true
	}

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp any, err error) {
		start := time.Now()

		defer func() {
			if r := recover(); r != nil {
				logger.Error().
					Str("method", info.FullMethod).
					Interface("panic", r).
					Msg("recovered from panic in grpc handler")
				err = status.Error(codes.Internal, "something went wrong")
			}

			code := status.Code(err)
			event := logger.Info()
			switch {
			case code == codes.Internal || code == codes.Unknown:
				event = logger.Error().Err(err)
			case quiet[info.FullMethod] && code == codes.OK:
				event = logger.Debug()
			}

			event.
				Str("method", info.FullMethod).
				Str("code", code.String()).
				Dur("duration", time.Since(start)).
				Msg("grpc call handled")
		}()

		return handler(ctx, req)
	}
}
