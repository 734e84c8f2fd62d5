package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"velo-registration/internal/config"
	"velo-registration/internal/models"
	"velo-registration/internal/store"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("id", 7).Info("registered")
	assert.Contains(t, buf.String(), `"msg":"registered"`)

	_, err = newLogger(config.LogConfig{Level: "loud", Format: "text"}, &buf)
	assert.Error(t, err)
	_, err = newLogger(config.LogConfig{Level: "info", Format: "xml"}, &buf)
	assert.Error(t, err)
}

func TestSinksSkipUnconfigured(t *testing.T) {
	log, hook := test.NewNullLogger()
	got := sinks(context.Background(), config.DefaultConfig(), log)
	assert.Empty(t, got)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestBuildWithMemoryStore(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Store.Driver = "memory"
	log, _ := test.NewNullLogger()

	a, err := build(context.Background(), cfg, log)
	require.NoError(t, err)
	defer a.store.Close()

	assert.NotNil(t, a.deps.Registration)
	assert.NotNil(t, a.deps.Roster)
	assert.Equal(t, "stub", a.deps.Mailer.Name())

	cfg.Mail.Provider = "pigeon"
	_, err = build(context.Background(), cfg, log)
	assert.Error(t, err)
}

func TestRunExport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "participants.db")

	st, err := store.OpenSQLite(context.Background(), dbPath)
	require.NoError(t, err)
	_, err = st.Insert(context.Background(), models.Submission{
		FirstName: "Jonas", LastName: "Jonaitis", Email: "j@x.lt", Gender: "Vyras",
	})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("store:\n  driver: sqlite\n  database_url: "+dbPath+"\nlog:\n  level: error\n"), 0o600))

	var out bytes.Buffer
	require.NoError(t, runExport(context.Background(), cfgPath, &out))

	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "j@x.lt", rows[1][3])
}

func TestRootCommandFlags(t *testing.T) {
	root := rootCmd()
	f := root.PersistentFlags().Lookup("config")
	require.NotNil(t, f)
	assert.Equal(t, "c", f.Shorthand)

	names := []string{}
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "export"})
}
