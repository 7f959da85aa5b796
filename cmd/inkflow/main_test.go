package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command against dbPath with the given stdin
func runCLI(t *testing.T, dbPath, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(viper.New())
	defer cmd.Close()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--db", dbPath, "--user", "tester"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLIReviewFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI test in short mode")
	}
	dbPath := filepath.Join(t.TempDir(), "inkflow.db")

	out, err := runCLI(t, dbPath, "", "card", "add", "a", "b", "--image", "https://example.com/ink.png")
	require.NoError(t, err)
	assert.Contains(t, out, `"a"  box 1`)
	assert.Contains(t, out, `"b"  box 1`)

	out, err = runCLI(t, dbPath, "", "due")
	require.NoError(t, err)
	assert.Contains(t, out, "2 due")

	// reveal both cards and mark them right
	out, err = runCLI(t, dbPath, "\ny\n\ny\n", "review")
	require.NoError(t, err)
	assert.Contains(t, out, "[1/2 0%] box 1")
	assert.Contains(t, out, "[2/2 50%] box 1")
	assert.Contains(t, out, "Session complete: 2 correct, 0 incorrect")

	out, err = runCLI(t, dbPath, "", "due")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing due")

	out, err = runCLI(t, dbPath, "", "review")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to review")

	out, err = runCLI(t, dbPath, "", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Cards:     2 (0 mastered, 0 due)")
	assert.Contains(t, out, "Accuracy:  100%")

	out, err = runCLI(t, dbPath, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "2/2 correct")

	out, err = runCLI(t, dbPath, "", "history", "--session", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Session 1 (due), 2 answer(s)")
	assert.Contains(t, out, "box 1 -> 2")
}

func TestCLIReviewMissAndReplay(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI test in short mode")
	}
	dbPath := filepath.Join(t.TempDir(), "inkflow.db")

	_, err := runCLI(t, dbPath, "", "card", "add", "x")
	require.NoError(t, err)

	// wrong guess, accept the replay, then get it right
	out, err := runCLI(t, dbPath, "y\ny\nx\n", "review")
	require.NoError(t, err)
	assert.Contains(t, out, `Not quite: you wrote "y", it is "x"`)
	assert.Contains(t, out, "Session complete: 0 correct, 1 incorrect")
	assert.Contains(t, out, "Replay 1 missed card(s)?")
	assert.Contains(t, out, `Correct! It is "x"`)
	assert.Contains(t, out, "Session complete: 1 correct, 0 incorrect")
}

func TestCLIReviewQuit(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI test in short mode")
	}
	dbPath := filepath.Join(t.TempDir(), "inkflow.db")

	_, err := runCLI(t, dbPath, "", "card", "add", "a", "b")
	require.NoError(t, err)

	out, err := runCLI(t, dbPath, "a\nq\n", "review", "--mode", "due")
	require.NoError(t, err)
	assert.Contains(t, out, "Review stopped")

	// one card was answered before quitting
	out, err = runCLI(t, dbPath, "", "due")
	require.NoError(t, err)
	assert.Contains(t, out, "1 due")
}

func TestCLICardEditDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI test in short mode")
	}
	dbPath := filepath.Join(t.TempDir(), "inkflow.db")

	out, err := runCLI(t, dbPath, "", "card", "add", "a")
	require.NoError(t, err)
	id := strings.Fields(out)[0]

	out, err = runCLI(t, dbPath, "", "card", "edit", id, "--char", "b", "--tags", "curve,loop")
	require.NoError(t, err)
	assert.Contains(t, out, `"b"  box 1  curve,loop`)

	_, err = runCLI(t, dbPath, "", "card", "edit", id, "--image", "ftp://example.com/b.png")
	assert.Error(t, err)

	_, err = runCLI(t, dbPath, "", "card", "delete", id)
	require.NoError(t, err)

	out, err = runCLI(t, dbPath, "", "due")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing due")

	_, err = runCLI(t, dbPath, "", "card", "delete", id)
	assert.Error(t, err)
}

func TestCLIBoxes(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI test in short mode")
	}
	dbPath := filepath.Join(t.TempDir(), "inkflow.db")

	out, err := runCLI(t, dbPath, "", "boxes", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Box 1")

	_, err = runCLI(t, dbPath, "", "boxes", "set", "1", "--name", "Daily")
	require.NoError(t, err)

	out, err = runCLI(t, dbPath, "", "boxes", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Daily")

	_, err = runCLI(t, dbPath, "", "boxes", "set", "1")
	assert.Error(t, err)

	_, err = runCLI(t, dbPath, "", "boxes", "remove", "abc")
	assert.Error(t, err)

	_, err = runCLI(t, dbPath, "", "review", "--mode", "replay")
	assert.Error(t, err)
}

func TestCLIClosesAppWhenCommandFails(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping CLI test in short mode")
	}
	dbPath := filepath.Join(t.TempDir(), "inkflow.db")

	root := newRootCmd(viper.New())
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--db", dbPath, "--user", "tester", "boxes", "remove", "abc"})
	require.Error(t, root.ExecuteContext(context.Background()))

	require.NotNil(t, root.app, "the app is opened before the command runs")
	a := root.app
	require.NoError(t, a.db.PingContext(context.Background()))

	root.Close()
	assert.Nil(t, root.app)
	assert.Error(t, a.db.PingContext(context.Background()), "database must be closed after a failed command")

	// closing twice is harmless
	root.Close()
}
