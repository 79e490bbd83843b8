package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizvoice/config"
	"quizvoice/internal/infra/audio"
)

func TestParseDuration(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.Equal(t, 5*time.Second, parseDuration(logger, "x", "5s", time.Second))
	assert.Equal(t, time.Second, parseDuration(logger, "x", "soon", time.Second))
	assert.Equal(t, time.Second, parseDuration(logger, "x", "-2s", time.Second))
}

func TestCreateMicrophone(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.IsType(t, &audio.FileMicrophone{}, createMicrophone(config.AudioConfig{Source: "file", FileDir: t.TempDir()}, logger))
	assert.IsType(t, &audio.Microphone{}, createMicrophone(config.AudioConfig{Source: "microphone"}, logger))
	assert.Nil(t, createMicrophone(config.AudioConfig{Source: "none"}, logger))
	assert.Nil(t, createMicrophone(config.AudioConfig{Source: "bluetooth"}, logger))
}

func TestProbeCommand_FileSource(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := "audio:\n  source: file\n  file_dir: " + filepath.Join(dir, "answers") + "\nlog:\n  level: error\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"--config", configPath, "probe"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "microphone:   true")
}

func TestSayCommand_RequiresText(t *testing.T) {
	root := newRootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"say"})

	assert.Error(t, root.Execute())
}
