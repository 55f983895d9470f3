package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/wealthsim/internal/database"
	"github.com/aristath/wealthsim/internal/reliability"
)

// SystemHandlers serves monitoring and operations endpoints.
type SystemHandlers struct {
	log       zerolog.Logger
	dataDir   string
	databases map[string]*database.DB
	backups   *reliability.BackupService
	startTime time.Time
}

// NewSystemHandlers creates system handlers. backups may be nil when backup
// storage is not configured.
func NewSystemHandlers(
	log zerolog.Logger,
	dataDir string,
	databases map[string]*database.DB,
	backups *reliability.BackupService,
) *SystemHandlers {
	return &SystemHandlers{
		log:       log.With().Str("handler", "system").Logger(),
		dataDir:   dataDir,
		databases: databases,
		backups:   backups,
		startTime: time.Now(),
	}
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	dbStatus := make(map[string]string, len(h.databases))
	for name, db := range h.databases {
		if err := db.QuickCheck(r.Context()); err != nil {
			dbStatus[name] = "error"
		} else {
			dbStatus[name] = "ok"
		}
	}

	availableGB := h.getAvailableDiskGB()

	h.writeJSON(w, map[string]interface{}{
		"status":            "ok",
		"uptime_seconds":    int64(time.Since(h.startTime).Seconds()),
		"cpu_percent":       cpuPercent,
		"memory_percent":    memPercent,
		"disk_available_gb": availableGB,
		"databases":         dbStatus,
		"backup_enabled":    h.backups != nil,
	})
}

// HandleDatabaseStats handles GET /api/system/database/stats
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	type dbStats struct {
		Name      string  `json:"name"`
		SizeMB    float64 `json:"size_mb"`
		WALSizeMB float64 `json:"wal_size_mb"`
	}

	stats := make([]dbStats, 0, len(h.databases))
	for name, db := range h.databases {
		entry := dbStats{Name: name}
		if info, err := os.Stat(db.Path()); err == nil {
			entry.SizeMB = float64(info.Size()) / 1024 / 1024
		}
		if info, err := os.Stat(db.Path() + "-wal"); err == nil {
			entry.WALSizeMB = float64(info.Size()) / 1024 / 1024
		}
		stats = append(stats, entry)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })

	h.writeJSON(w, map[string]interface{}{"databases": stats})
}

// HandleListBackups handles GET /api/system/backups
func (h *SystemHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		http.Error(w, "Backup storage is not configured", http.StatusServiceUnavailable)
		return
	}

	backups, err := h.backups.ListBackups(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list backups")
		http.Error(w, "Failed to list backups", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]interface{}{"backups": backups})
}

// HandleTriggerBackup handles POST /api/system/backup
func (h *SystemHandlers) HandleTriggerBackup(w http.ResponseWriter, r *http.Request) {
	if h.backups == nil {
		http.Error(w, "Backup storage is not configured", http.StatusServiceUnavailable)
		return
	}

	h.log.Info().Msg("Manual backup triggered")

	if err := h.backups.CreateAndUploadBackup(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Manual backup failed")
		http.Error(w, "Backup failed", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]string{"status": "ok"})
}

func (h *SystemHandlers) getAvailableDiskGB() float64 {
	stat := syscall.Statfs_t{}
	if err := syscall.Statfs(filepath.Clean(h.dataDir), &stat); err != nil {
		h.log.Warn().Err(err).Msg("Failed to stat filesystem")
		return 0
	}
	return float64(stat.Bavail*uint64(stat.Bsize)) / 1e9
}

// getSystemStats calculates CPU and RAM usage percentages.
// A short 100ms sampling interval keeps the status endpoint responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
