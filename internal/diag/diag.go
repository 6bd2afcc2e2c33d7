// Package diag logs a one-shot host diagnostics report at server startup.
package diag

import (
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/redislite/redislite/internal/logging"
)

// LogStartupMemory records total and used system memory once, before the
// accept loop begins. It never fails the server: a sampling error is
// logged as a warning and otherwise ignored, since it affects nothing but
// this one diagnostic line.
func LogStartupMemory(log *logging.Logger) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		log.Warn("could not sample host memory: %v", err)
		return
	}
	log.Info("host memory: total=%d MiB used=%d MiB (%.1f%%)",
		vm.Total/1024/1024, vm.Used/1024/1024, vm.UsedPercent)
}
