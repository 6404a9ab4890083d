package logger

import (
	"fmt"
	"log/slog"
	"time"
)

// Error records err under the key "error". A nil error yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the owning user under the key "user_id".
func UserID(id fmt.Stringer) slog.Attr {
	return stringer("user_id", id)
}

// FileID records a file node under the key "file_id".
func FileID(id fmt.Stringer) slog.Attr {
	return stringer("file_id", id)
}

// JobID records a queue job under the key "job_id".
func JobID(id fmt.Stringer) slog.Attr {
	return stringer("job_id", id)
}

// JobName records the job handler name under the key "job_name".
func JobName(name string) slog.Attr {
	return slog.String("job_name", name)
}

// RetryCount records the job attempt counter under the key "retry_count".
func RetryCount(n int) slog.Attr {
	return slog.Int("retry_count", n)
}

// Duration records an elapsed time under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Component records the emitting component under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event records a named event under the key "event".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

func stringer(key string, v fmt.Stringer) slog.Attr {
	if v == nil {
		return slog.Attr{}
	}
	return slog.String(key, v.String())
}
