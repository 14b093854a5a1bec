package system

import (
	"time"
)

var StartTime = time.Now()

func InitStartTime() {
	StartTime = time.Now()
}

// Uptime returns whole seconds since InitStartTime.
func Uptime() int64 {
	uptime := time.Since(StartTime)
	return int64(uptime.Seconds())
}
