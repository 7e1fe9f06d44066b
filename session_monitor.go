package mpinauth

import (
	"context"
	"strconv"
	"time"
)

/*
====================================
BACKGROUND SESSION MONITOR
====================================
*/

// OnBackground records the instant the app left the foreground. Call it
// from the host's lifecycle hook every time the app backgrounds.
func (e *Engine) OnBackground(ctx context.Context) error {
	return e.creds.SetLastActiveTime(ctx, e.now().UnixMilli())
}

// OnForeground checks how long the app stayed backgrounded. When the
// absence exceeds the configured threshold the session is expired: the
// verified phone and pin flag are cleared, the expiry sentinel is raised,
// and the caller must navigate to the returned target. expired reports
// whether that happened; when false the session survives untouched and
// the target is [TargetNone].
//
// The comparison is strictly greater-than. An absence of exactly the
// threshold keeps the session.
func (e *Engine) OnForeground(ctx context.Context) (target Target, expired bool, err error) {
	backgroundedAt, ok := e.creds.LastActiveTime(ctx)
	if !ok {
		return TargetNone, false, nil
	}

	elapsed := e.now().Sub(time.UnixMilli(backgroundedAt))
	if elapsed <= e.config.Session.BackgroundTimeout {
		// Back in time. Drop the timestamp so a stale one can never fire
		// later.
		if err := e.creds.ClearLastActiveTime(ctx); err != nil {
			logf("clear background timestamp: %v", err)
		}
		return TargetNone, false, nil
	}

	if err := e.creds.ExpireSession(ctx); err != nil {
		return TargetNone, false, err
	}

	e.metricInc(MetricSessionTimeout)
	e.emitAudit(ctx, "session_timeout", true, "", TargetLogin, nil, map[string]string{
		"elapsed_ms": strconv.FormatInt(elapsed.Milliseconds(), 10),
	})
	return TargetLogin, true, nil
}
