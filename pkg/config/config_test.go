package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, ',', cfg.CSVDelimiter)
	assert.Equal(t, 25, cfg.Sectioning.MinCap)
	assert.Equal(t, 70, cfg.Sectioning.MaxCap)
	assert.Equal(t, AssignModeMaximize, cfg.Assignment.Mode)
	assert.Equal(t, 18, cfg.Assignment.Floor)
	assert.Equal(t, 20, cfg.Assignment.Ceiling)
	assert.Equal(t, 5, cfg.Assignment.FacultyBoundaryWeek)
	assert.Equal(t, 11, cfg.Overflow.FacultyWeek)
	assert.Equal(t, 240*time.Second, cfg.Solver.TimeLimit)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SECTION_MODE", "Balanced")
	t.Setenv("CSV_DELIMITER", ";")
	t.Setenv("ASSIGN_MODE", "softfloor")
	t.Setenv("SOLVER_TIME_LIMIT", "5s")
	t.Setenv("TERM_WEEKS", "12")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SectionModeBalanced, cfg.Sectioning.Mode)
	assert.Equal(t, ';', cfg.CSVDelimiter)
	assert.Equal(t, AssignModeSoftFloor, cfg.Assignment.Mode)
	assert.Equal(t, 5*time.Second, cfg.Solver.TimeLimit)
	assert.Equal(t, 13, cfg.Overflow.FacultyWeek)
}

func TestLoadRejectsInvertedBounds(t *testing.T) {
	t.Setenv("SESSION_FLOOR", "21")
	t.Setenv("SESSION_CEILING", "20")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsUnknownMode(t *testing.T) {
	t.Setenv("ASSIGN_MODE", "weekly")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsMalformedTimeLimit(t *testing.T) {
	t.Setenv("SOLVER_TIME_LIMIT", "four minutes")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOLVER_TIME_LIMIT")
}

func TestParseDuration(t *testing.T) {
	d, err := parseDuration("", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	d, err = parseDuration("90s", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)

	_, err = parseDuration("90", time.Minute)
	require.Error(t, err)
	_, err = parseDuration("-1s", time.Minute)
	require.Error(t, err)
}

func TestParseDelimiter(t *testing.T) {
	assert.Equal(t, '\t', parseDelimiter("tab"))
	assert.Equal(t, '\t', parseDelimiter(`\t`))
	assert.Equal(t, '|', parseDelimiter("|"))
	assert.Equal(t, ',', parseDelimiter(""))
}
