package observability

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry configures error reporting when a DSN is provided.
func InitSentry(dsn, environment string) error {
	if dsn == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
	})
}

// FlushSentry drains pending events before shutdown.
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

// CaptureError reports a server-side failure.
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}
