package queue

import (
	"fmt"
	"strings"
)

// Named lets a payload type choose its own job name.
type Named interface {
	JobName() string
}

// jobName returns the payload's JobName, or its qualified type name.
func jobName(v any) string {
	if n, ok := v.(Named); ok {
		return n.JobName()
	}
	return strings.TrimLeft(fmt.Sprintf("%T", v), "*")
}
