package system

import (
	"fmt"
	"log"
	"os/exec"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file limit. Concurrent exports hold the
// source clip, raster files and ffmpeg pipes open at once.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Could not read file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Could not raise file limit: %v", err)
	} else {
		fmt.Printf("[*] Open file limit raised to %d\n", rLimit.Cur)
	}
}

// GetBestH264Encoder probes ffmpeg for hardware H.264 encoders, preferring
// VideoToolbox, then NVENC, falling back to libx264.
func GetBestH264Encoder() string {
	encoders := []string{"h264_videotoolbox", "h264_nvenc"}

	out, err := exec.Command("ffmpeg", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, enc := range encoders {
		if strings.Contains(string(out), enc) {
			return enc
		}
	}
	return "libx264"
}

// CheckFilterSupport reports whether the installed ffmpeg build carries a
// filter.
func CheckFilterSupport(filter string) bool {
	out, err := exec.Command("ffmpeg", "-filters").CombinedOutput()
	if err != nil {
		return false
	}
	return strings.Contains(string(out), " "+filter+" ")
}

// Snapshot is a point-in-time resource reading for the export report.
type Snapshot struct {
	CPUPercent float64
	MemUsedMB  uint64
	MemPercent float64
}

// ReadSnapshot samples system CPU and memory. Diagnostics only; errors
// degrade to zero readings rather than failing an export.
func ReadSnapshot() Snapshot {
	var s Snapshot

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		s.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.MemUsedMB = vm.Used / 1024 / 1024
		s.MemPercent = vm.UsedPercent
	}
	return s
}

func (s Snapshot) String() string {
	return fmt.Sprintf("cpu=%.1f%% mem=%dMB (%.1f%%)", s.CPUPercent, s.MemUsedMB, s.MemPercent)
}
