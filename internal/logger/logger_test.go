package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	testData := map[string]struct {
		config Config
		level  logrus.Level
		json   bool
	}{
		"defaults":      {Config{}, logrus.InfoLevel, false},
		"debug json":    {Config{Level: "debug", Format: "json"}, logrus.DebugLevel, true},
		"unknown level": {Config{Level: "chatty", Output: "stdout"}, logrus.InfoLevel, false},
		"warn text":     {Config{Level: "warn", Format: "text"}, logrus.WarnLevel, false},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			l, closer, err := New(td.config)
			require.Nil(t, err)
			defer closer.Close()

			assert.Equal(t, td.level, l.GetLevel())
			_, isJSON := l.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, td.json, isJSON)
		})
	}
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "firecast.log")
	l, closer, err := New(Config{Level: "info", Format: "json", Output: path})
	require.Nil(t, err)

	l.WithField("area", "Hulo").Info("area modeled")
	require.Nil(t, closer.Close())

	b, err := os.ReadFile(path)
	require.Nil(t, err)
	assert.Contains(t, string(b), `"area":"Hulo"`)
	assert.Contains(t, string(b), `"msg":"area modeled"`)
}

func TestNewInvalidFormat(t *testing.T) {
	_, _, err := New(Config{Format: "xml"})
	assert.NotNil(t, err)
}
