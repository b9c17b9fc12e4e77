package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2026, time.October, 14, 15, 30, 0, 0, time.UTC)
}

func runPenny(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cmd := newRootCmd(fixedNow)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func TestNextCommand(t *testing.T) {
	t.Run("Default thirty days from today", func(t *testing.T) {
		out, err := runPenny(t, "next")
		require.NoError(t, err)
		assert.Contains(t, out, "Next 30 days")
		assert.Contains(t, out, "287 to 316")
		assert.Contains(t, out, "£90.45")
		assert.Contains(t, out, "£664.30")
	})

	t.Run("Explicit count and start", func(t *testing.T) {
		out, err := runPenny(t, "next", "10", "--from", "2026-01-01")
		require.NoError(t, err)
		assert.Contains(t, out, "Next 10 days")
		assert.Contains(t, out, "£0.55")
	})

	t.Run("Base multiplies every amount", func(t *testing.T) {
		out, err := runPenny(t, "next", "3", "--from", "2026-01-01", "--base", "5")
		require.NoError(t, err)
		assert.Contains(t, out, "£0.30")
	})

	t.Run("Outside the challenge", func(t *testing.T) {
		out, err := runPenny(t, "next", "--from", "2027-06-01")
		require.NoError(t, err)
		assert.Contains(t, out, "Outside the challenge window.")
	})

	t.Run("Non-numeric count", func(t *testing.T) {
		_, err := runPenny(t, "next", "lots")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "days must be an integer")
	})

	t.Run("Count out of range", func(t *testing.T) {
		_, err := runPenny(t, "next", "400")
		require.Error(t, err)
	})
}

func TestMonthCommand(t *testing.T) {
	out, err := runPenny(t, "month", "10", "2026")
	require.NoError(t, err)
	assert.Contains(t, out, "274 to 304")
	assert.Contains(t, out, "£89.59")

	out, err = runPenny(t, "month")
	require.NoError(t, err)
	assert.Contains(t, out, "274 to 304")

	_, err = runPenny(t, "month", "13")
	require.Error(t, err)
}

func TestCustomCommand(t *testing.T) {
	out, err := runPenny(t, "custom", "2026-01-01", "2026-01-10", "--breakdown")
	require.NoError(t, err)
	assert.Contains(t, out, "£0.55")
	assert.Contains(t, out, "day  10  £0.10")

	out, err = runPenny(t, "custom", "2025-12-25", "2026-01-10")
	require.NoError(t, err)
	assert.Contains(t, out, "Outside the challenge window.")

	_, err = runPenny(t, "custom", "2026-01-01")
	require.Error(t, err)

	_, err = runPenny(t, "custom", "yesterday", "2026-01-10")
	require.Error(t, err)
}

func TestUptoCommand(t *testing.T) {
	out, err := runPenny(t, "upto")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved up to 2026-10-14")
	assert.Contains(t, out, "£413.28")
	assert.Contains(t, out, "£251.02")

	out, err = runPenny(t, "upto", "2026-12-30")
	require.NoError(t, err)
	assert.Contains(t, out, "364 of 364")
	assert.Contains(t, out, "£0.00")
}

func TestDayCommand(t *testing.T) {
	out, err := runPenny(t, "day")
	require.NoError(t, err)
	assert.Contains(t, out, "287 of 364")
	assert.Contains(t, out, "£2.87")

	out, err = runPenny(t, "day", "2026-12-31")
	require.NoError(t, err)
	assert.Contains(t, out, "Outside the challenge window.")

	out, err = runPenny(t, "day", "2026-12-31", "--length", "365")
	require.NoError(t, err)
	assert.Contains(t, out, "365 of 365")

	_, err = runPenny(t, "day", "--base", "500")
	require.Error(t, err)
}

func TestConfigFileDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[challenge]\nstart = \"2026-10-01\"\nbase = 2\n"), 0o600))

	t.Run("File values apply", func(t *testing.T) {
		out, err := runPenny(t, "--config", path, "day")
		require.NoError(t, err)
		assert.Contains(t, out, "14 of 364")
		assert.Contains(t, out, "£0.28")
	})

	t.Run("Flags win over the file", func(t *testing.T) {
		out, err := runPenny(t, "--config", path, "--base", "1", "day")
		require.NoError(t, err)
		assert.Contains(t, out, "£0.14")
	})

	t.Run("Broken file is an error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.toml")
		require.NoError(t, os.WriteFile(bad, []byte("[challenge\n"), 0o600))
		_, err := runPenny(t, "--config", bad, "day")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load config")
	})
}
