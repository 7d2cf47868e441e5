package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Sectioning modes.
const (
	SectionModeBalanced = "balanced"
	SectionModeIdentity = "identity"
)

// Assignment objective modes.
const (
	AssignModeFeasibility = "feasibility"
	AssignModeMaximize    = "maximize"
	AssignModeSoftFloor   = "softfloor"
)

type Config struct {
	Env          string `validate:"oneof=development production"`
	Port         int    `validate:"min=1,max=65535"`
	InputDir     string `validate:"required"`
	DataDir      string `validate:"required"`
	CSVDelimiter rune
	MetricsFile  string

	Log        LogConfig
	Sectioning SectioningConfig
	Calendar   CalendarConfig
	Assignment AssignmentConfig
	Overflow   OverflowConfig
	Solver     SolverConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// SectioningConfig bounds section sizes.
type SectioningConfig struct {
	Mode   string `validate:"oneof=balanced identity"`
	MinCap int    `validate:"min=1"`
	MaxCap int    `validate:"gtefield=MinCap"`
}

// CalendarConfig shapes the primary term calendar and the overflow pool.
type CalendarConfig struct {
	TermWeeks              int `validate:"min=1"`
	RoomsEarly             int `validate:"min=0"`
	RoomsLate              int `validate:"min=0"`
	RoomReductionAfterWeek int `validate:"min=0"`
	OverflowDays           int `validate:"min=0"`
	OverflowRoomCapacity   int `validate:"min=0"`
}

// AssignmentConfig selects the primary engine objective and session bounds.
type AssignmentConfig struct {
	Mode                string `validate:"oneof=feasibility maximize softfloor"`
	Floor               int    `validate:"min=0"`
	Ceiling             int    `validate:"gtefield=Floor"`
	WeeklyCap           int    `validate:"min=0"`
	SoftFloorPenalty    int    `validate:"min=0"`
	FacultyBoundaryWeek int    `validate:"min=0"`
}

// OverflowConfig tunes the overflow scheduler.
type OverflowConfig struct {
	// FacultyWeek is the week used to resolve split faculty on overflow days.
	FacultyWeek int `validate:"min=0"`
}

// SolverConfig bounds every search invocation.
type SolverConfig struct {
	TimeLimit  time.Duration `validate:"gt=0"`
	Workers    int           `validate:"min=1"`
	Iterations int           `validate:"min=1"`
	Seed       int64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.InputDir = v.GetString("INPUT_DIR")
	cfg.DataDir = v.GetString("DATA_DIR")
	cfg.CSVDelimiter = parseDelimiter(v.GetString("CSV_DELIMITER"))
	cfg.MetricsFile = v.GetString("METRICS_FILE")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Sectioning = SectioningConfig{
		Mode:   strings.ToLower(v.GetString("SECTION_MODE")),
		MinCap: v.GetInt("SECTION_MIN_CAP"),
		MaxCap: v.GetInt("SECTION_MAX_CAP"),
	}

	cfg.Calendar = CalendarConfig{
		TermWeeks:              v.GetInt("TERM_WEEKS"),
		RoomsEarly:             v.GetInt("ROOMS_EARLY"),
		RoomsLate:              v.GetInt("ROOMS_LATE"),
		RoomReductionAfterWeek: v.GetInt("ROOM_REDUCTION_AFTER_WEEK"),
		OverflowDays:           v.GetInt("OVERFLOW_DAYS"),
		OverflowRoomCapacity:   v.GetInt("OVERFLOW_ROOM_CAPACITY"),
	}

	cfg.Assignment = AssignmentConfig{
		Mode:                strings.ToLower(v.GetString("ASSIGN_MODE")),
		Floor:               v.GetInt("SESSION_FLOOR"),
		Ceiling:             v.GetInt("SESSION_CEILING"),
		WeeklyCap:           v.GetInt("WEEKLY_CAP"),
		SoftFloorPenalty:    v.GetInt("SOFT_FLOOR_PENALTY"),
		FacultyBoundaryWeek: v.GetInt("FACULTY_BOUNDARY_WEEK"),
	}

	cfg.Overflow = OverflowConfig{FacultyWeek: v.GetInt("OVERFLOW_FACULTY_WEEK")}
	if cfg.Overflow.FacultyWeek <= 0 {
		cfg.Overflow.FacultyWeek = cfg.Calendar.TermWeeks + 1
	}

	timeLimit, err := parseDuration(v.GetString("SOLVER_TIME_LIMIT"), 240*time.Second)
	if err != nil {
		return nil, fmt.Errorf("SOLVER_TIME_LIMIT: %w", err)
	}
	cfg.Solver = SolverConfig{
		TimeLimit:  timeLimit,
		Workers:    v.GetInt("SOLVER_WORKERS"),
		Iterations: v.GetInt("SOLVER_ITERATIONS"),
		Seed:       v.GetInt64("SOLVER_SEED"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field bounds of a configuration built by hand or by Load.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 3001)
	v.SetDefault("INPUT_DIR", "data")
	v.SetDefault("DATA_DIR", "outputs")
	v.SetDefault("CSV_DELIMITER", ",")
	v.SetDefault("METRICS_FILE", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("SECTION_MODE", SectionModeIdentity)
	v.SetDefault("SECTION_MIN_CAP", 25)
	v.SetDefault("SECTION_MAX_CAP", 70)

	v.SetDefault("TERM_WEEKS", 10)
	v.SetDefault("ROOMS_EARLY", 10)
	v.SetDefault("ROOMS_LATE", 4)
	v.SetDefault("ROOM_REDUCTION_AFTER_WEEK", 4)
	v.SetDefault("OVERFLOW_DAYS", 10)
	v.SetDefault("OVERFLOW_ROOM_CAPACITY", 10)

	v.SetDefault("ASSIGN_MODE", AssignModeMaximize)
	v.SetDefault("SESSION_FLOOR", 18)
	v.SetDefault("SESSION_CEILING", 20)
	v.SetDefault("WEEKLY_CAP", 0)
	v.SetDefault("SOFT_FLOOR_PENALTY", 5)
	v.SetDefault("FACULTY_BOUNDARY_WEEK", 5)
	v.SetDefault("OVERFLOW_FACULTY_WEEK", 0)

	v.SetDefault("SOLVER_TIME_LIMIT", "240s")
	v.SetDefault("SOLVER_WORKERS", 8)
	v.SetDefault("SOLVER_ITERATIONS", 200000)
	v.SetDefault("SOLVER_SEED", 1)
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", raw)
	}

	return d, nil
}

func parseDelimiter(raw string) rune {
	switch strings.ToLower(raw) {
	case "", ",":
		return ','
	case `\t`, "tab":
		return '\t'
	}
	return []rune(raw)[0]
}
