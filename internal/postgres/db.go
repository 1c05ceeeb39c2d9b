package postgres

import (
	"context"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
	"time"
)

type Options struct {
	MaxConns int32
	Echo     bool // trace setiap query ke logger
	Log      zerolog.Logger
}

func Connect(ctx context.Context, dsn string, opt Options) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 8
	if opt.MaxConns > 0 {
		cfg.MaxConns = opt.MaxConns
	}
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	if opt.Echo {
		cfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   QueryLogger(opt.Log),
			LogLevel: tracelog.LogLevelInfo,
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// QueryLogger meneruskan trace pgx ke zerolog.
func QueryLogger(log zerolog.Logger) tracelog.Logger {
	log = log.With().Str("component", "pgx").Logger()
	return tracelog.LoggerFunc(func(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
		var ev *zerolog.Event
		switch level {
		case tracelog.LogLevelTrace, tracelog.LogLevelDebug:
			ev = log.Debug()
		case tracelog.LogLevelInfo:
			ev = log.Info()
		case tracelog.LogLevelWarn:
			ev = log.Warn()
		default:
			ev = log.Error()
		}
		ev.Fields(data).Msg(msg)
	})
}
