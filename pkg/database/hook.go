package database

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
)

type queryLogger struct{}

var _ bun.QueryHook = queryLogger{}

func (queryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (queryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	ev := log.Debug()
	if event.Err != nil {
		ev = log.Warn().Err(event.Err)
	}
	ev.Str("operation", event.Operation()).
		Dur("took", time.Since(event.StartTime)).
		Str("query", event.Query).
		Msg("db query")
}
