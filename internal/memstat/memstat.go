// Package memstat observes the current process's resident-set size (RSS)
// so the keyspace eviction engine can decide when the server is under
// memory pressure.
package memstat

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// RSSBytes returns the current process's resident-set size in bytes. If
// the observation fails for any reason, it returns 0 — the caller treats
// a zero reading as "no pressure", so a failed observation simply
// suppresses eviction rather than triggering it.
func RSSBytes() uint64 {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	info, err := proc.MemoryInfo()
	if err != nil || info == nil {
		return 0
	}
	return info.RSS
}
