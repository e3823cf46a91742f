package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rogpeppe/go-internal/testscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"jv": func() int {
			return run(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
		},
	}))
}

func TestScripts(t *testing.T) {
	t.Parallel()
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}

func TestRunExitCodes(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}
	schema := write("schema.json", `{"type": "object", "required": ["name"]}`)
	valid := write("valid.json", `{"name": "Joan"}`)
	invalid := write("invalid.yaml", "age: 3\n")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{schema, valid}, &stdout, &stderr)
	assert.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), "instance "+valid+": valid")

	stdout.Reset()
	code = run(context.Background(), []string{"-o", "verbose", schema, valid, invalid}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "missing property 'name'")

	code = run(context.Background(), []string{schema, filepath.Join(dir, "missing.json")}, &stdout, &stderr)
	assert.Equal(t, 2, code)

	code = run(context.Background(), []string{"--draft", "5", schema}, &stdout, &stderr)
	assert.Equal(t, 2, code)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	schema := filepath.Join(dir, "schema.json")
	instance := filepath.Join(dir, "instance.json")
	require.NoError(t, os.WriteFile(schema, []byte(`{"type": "integer"}`), 0o600))
	require.NoError(t, os.WriteFile(instance, []byte(`1`), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &syncBuffer{}
	done := make(chan int)
	go func() {
		done <- run(ctx, []string{"--watch", schema, instance}, out, out)
	}()

	require.Eventually(t, func() bool {
		return bytes.Contains(out.Bytes(), []byte("watching for changes"))
	}, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, os.WriteFile(instance, []byte(`"one"`), 0o600))
	require.Eventually(t, func() bool {
		return bytes.Contains(out.Bytes(), []byte(": invalid"))
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, 0, code)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
