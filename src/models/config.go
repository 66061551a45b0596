package models

// MConfig Structure
type MConfig struct {
	Name     string          `yaml:"name"`
	Host     string          `yaml:"host"`
	Port     int             `yaml:"port"`
	LogLevel string          `yaml:"log_level"`
	Storage  MStorageConfig  `yaml:"storage"`
	Network  MNetworkConfig  `yaml:"network"`
	Ingest   MIngestConfig   `yaml:"ingest"`
	Analysis MAnalysisConfig `yaml:"analysis"`
	Schedule MScheduleConfig `yaml:"schedule"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	MasterDBPath       string `yaml:"master_db_path"`
	WorkingDBPath      string `yaml:"working_db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
	BackupDir          string `yaml:"backup_dir"`
	BackupKeep         int    `yaml:"backup_keep"`
}

type MNetworkConfig struct {
	RequestTimeout     int    `yaml:"timeout"`
	MaxRetries         int    `yaml:"retries"`
	ConcurrentRequests int    `yaml:"concurrent_requests"`
	UserAgent          string `yaml:"user_agent"`
}

type MIngestConfig struct {
	LookbackDays int             `yaml:"lookback_days"`
	Sources      []MSourceConfig `yaml:"sources"`
}

type MSourceConfig struct {
	Name    string   `yaml:"name"`
	Symbols []string `yaml:"symbols"`
	APIKey  string   `yaml:"api_key"` // Optional
}

// MAnalysisConfig holds every window size and lookback offset the transform
// uses, so the engine carries no ambient constants. Window policy per metric
// family is fixed: SMA/volume averages use partial windows, ATR/RSI and the
// 252-bar range are strict.
type MAnalysisConfig struct {
	EMASpans        []int `yaml:"ema_spans"`
	SMAWindows      []int `yaml:"sma_windows"`
	WeekBars        int   `yaml:"week_bars"`
	MonthBars       int   `yaml:"month_bars"`
	QuarterBars     int   `yaml:"quarter_bars"`
	HalfYearBars    int   `yaml:"half_year_bars"`
	ATRWindow       int   `yaml:"atr_window"`
	RSIWindow       int   `yaml:"rsi_window"`
	RangeWindow     int   `yaml:"range_window"`
	VolumeAvgWindow int   `yaml:"volume_avg_window"`
	MDTOffsets      []int `yaml:"mdt_offsets"`
	Parallelism     int   `yaml:"parallelism"`
}

type MScheduleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Timezone  string `yaml:"timezone"`
	IngestAt  string `yaml:"ingest_at"`
	ComputeAt string `yaml:"compute_at"`
	BackupAt  string `yaml:"backup_at"`
}

// -----------------------------------------------------------------------------

// DefaultAnalysisConfig returns the authoritative window set. One month is 21
// trading bars, a quarter 63, a half year 126.
func DefaultAnalysisConfig() MAnalysisConfig {
	return MAnalysisConfig{
		EMASpans:        []int{10, 20, 50, 200},
		SMAWindows:      []int{7, 21, 63, 126},
		WeekBars:        5,
		MonthBars:       21,
		QuarterBars:     63,
		HalfYearBars:    126,
		ATRWindow:       14,
		RSIWindow:       14,
		RangeWindow:     252,
		VolumeAvgWindow: 20,
		MDTOffsets:      []int{21, 50},
		Parallelism:     4,
	}
}
