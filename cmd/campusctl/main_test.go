package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rryowa/campus_session/internal/models"
	"github.com/rryowa/campus_session/internal/storage/file"
	"github.com/rryowa/campus_session/internal/storage/memory"
	"github.com/rryowa/campus_session/internal/util"
)

func TestPrintResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, map[string]bool{"authenticated": true}, nil))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, true, out["success"])
	assert.Equal(t, map[string]any{"authenticated": true}, out["data"])

	buf.Reset()
	err := printResult[any](&buf, nil, assert.AnError)
	assert.ErrorIs(t, err, errCommandFailed)

	out = nil
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, false, out["success"])
	assert.Equal(t, assert.AnError.Error(), out["error"])
}

func TestBuildStore(t *testing.T) {
	log := zaptest.NewLogger(t).Sugar()

	s, cleanup, err := buildStore(context.Background(), log, &util.StoreConfig{Backend: util.StoreMemory})
	require.NoError(t, err)
	assert.Nil(t, cleanup)
	assert.IsType(t, &memory.TokenStorage{}, s)

	path := filepath.Join(t.TempDir(), "tokens.json")
	s, _, err = buildStore(context.Background(), log, &util.StoreConfig{Backend: util.StoreFile, FilePath: path})
	require.NoError(t, err)
	assert.IsType(t, &file.TokenStorage{}, s)

	_, _, err = buildStore(context.Background(), log, &util.StoreConfig{Backend: "floppy"})
	assert.Error(t, err)
}

func TestCourseQuery(t *testing.T) {
	q := courseQuery(&util.ClientConfig{CoursesLang: "uz", CoursesPageSize: 20})
	assert.Equal(t, models.CourseQuery{Lang: "uz", Page: 1, PageSize: 20, Skip: 0, Take: 20}, q)

	assert.Equal(t, models.DefaultCourseQuery(), courseQuery(&util.ClientConfig{}))
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := rootCmd()

	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"login", "logout", "status", "profile", "courses", "grades", "attendance", "messages", "dashboard"} {
		assert.Contains(t, names, want)
	}
}

func TestCoursesCmd_RejectsBothFilters(t *testing.T) {
	cmd := rootCmd()
	cmd.SetArgs([]string{"courses", "--current", "--past", "--store", "memory"})
	cmd.SetOut(&bytes.Buffer{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}
