package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recera/vuec/pkg/compiler"
)

const pageDoc = `
body:
  - element:
      tag: MyInput
      component: true
      directives:
        - {name: model, exp: form.name, modifiers: [trim]}
  - comment: end
`

const warnDoc = `
body:
  - element:
      tag: p
      directives:
        - {name: text, exp: msg}
      children:
        - text: x
`

const brokenDoc = `
body:
  - element:
      tag: input
      directives:
        - {name: model}
`

type project struct {
	dir    string
	config string
}

func newProject(t *testing.T, docs map[string]string) project {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "templates")
	for name, content := range docs {
		path := filepath.Join(src, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	require.NoError(t, os.MkdirAll(src, 0o755))

	cfg := "input: " + src + "\n" +
		"cache:\n  enabled: true\n  dir: " + filepath.Join(root, "cache") + "\n" +
		"log:\n  format: json\n"
	cfgPath := filepath.Join(root, "vuec.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return project{dir: src, config: cfgPath}
}

// run executes the CLI and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(&app{})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func decodeResults(t *testing.T, out string) []compiler.Result {
	t.Helper()
	var results []compiler.Result
	require.NoError(t, json.Unmarshal([]byte(out), &results), out)
	return results
}

func TestCompileCommand_JSON(t *testing.T) {
	p := newProject(t, map[string]string{"page.vir.yaml": pageDoc})

	out, err := run(t, "compile", "--json", "--config", p.config)
	require.NoError(t, err)

	results := decodeResults(t, out)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"MyInput"}, results[0].Components)
	assert.Equal(t, []string{"Fragment", "createVNode", "createCommentVNode", "resolveComponent"}, results[0].Helpers)
}

func TestCompileCommand_Cache(t *testing.T) {
	p := newProject(t, map[string]string{"page.vir.yaml": pageDoc})

	first, err := run(t, "compile", p.dir, "--json", "--config", p.config)
	require.NoError(t, err)
	second, err := run(t, "compile", p.dir, "--json", "--config", p.config)
	require.NoError(t, err)
	assert.JSONEq(t, first, second)

	cacheDir := filepath.Join(filepath.Dir(p.config), "cache")
	_, err = os.Stat(filepath.Join(cacheDir, "index.json"))
	assert.NoError(t, err, "cache index written")
}

func TestCompileCommand_NoCache(t *testing.T) {
	p := newProject(t, map[string]string{
		"a.vir.yaml":        pageDoc,
		"nested/b.vir.yaml": "body:\n  - comment: b\n",
	})

	out, err := run(t, "compile", p.dir, "--json", "--no-cache", "--config", p.config)
	require.NoError(t, err)
	assert.Len(t, decodeResults(t, out), 2)

	_, err = os.Stat(filepath.Join(filepath.Dir(p.config), "cache"))
	assert.True(t, os.IsNotExist(err), "cache directory must not be created")
}

func TestCompileCommand_Text(t *testing.T) {
	p := newProject(t, map[string]string{"page.vir.yaml": pageDoc})

	out, err := run(t, "compile", filepath.Join(p.dir, "page.vir.yaml"), "--config", p.config)
	require.NoError(t, err)
	assert.Contains(t, out, "page.vir.yaml")
	assert.Contains(t, out, "Compiled 1 document, 0 errors, 0 warnings")
}

func TestCompileCommand_Failures(t *testing.T) {
	tests := []struct {
		name    string
		docs    map[string]string
		args    []string
		wantErr string
	}{
		{
			name: "warnings pass by default",
			docs: map[string]string{"warn.vir.yaml": warnDoc},
		},
		{
			name:    "strict fails on warnings",
			docs:    map[string]string{"warn.vir.yaml": warnDoc},
			args:    []string{"--strict"},
			wantErr: "warn.vir.yaml: 1 problem(s)",
		},
		{
			name:    "errors always fail",
			docs:    map[string]string{"broken.vir.yaml": brokenDoc, "warn.vir.yaml": warnDoc},
			wantErr: "broken.vir.yaml: 1 problem(s)",
		},
		{
			name:    "malformed document",
			docs:    map[string]string{"bad.vir.yaml": "body:\n  - {}\n"},
			wantErr: "expected exactly one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProject(t, tt.docs)
			args := append([]string{"compile", "--config", p.config}, tt.args...)
			_, err := run(t, args...)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCompileCommand_BadConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "vuec.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("directives: [bind]\n"), 0o644))

	_, err := run(t, "compile", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}

func TestCheckResults(t *testing.T) {
	results := []*compiler.Result{
		{File: "a", Diagnostics: []compiler.Diagnostic{{Warning: true}}},
		{File: "b"},
	}
	assert.NoError(t, checkResults(results, false))
	assert.EqualError(t, checkResults(results, true), "a: 1 problem(s)")
}

func TestIsRelevantEvent(t *testing.T) {
	tests := []struct {
		event fsnotify.Event
		want  bool
	}{
		{fsnotify.Event{Name: "a.vir.yaml", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "a.vir.yaml", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "a.vir.yaml", Op: fsnotify.Remove}, false},
		{fsnotify.Event{Name: "a.vir.yaml", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "a.yaml", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		t.Run(tt.event.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, isRelevantEvent(tt.event))
		})
	}
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatcher_RecompilesOnWrite(t *testing.T) {
	p := newProject(t, map[string]string{"page.vir.yaml": pageDoc})

	var out syncBuffer
	cmd := newRootCommand(&app{})
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"watch", "--no-cache", "--config", p.config})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Compiled 1 document")
	}, 5*time.Second, 20*time.Millisecond, "initial compile")

	added := filepath.Join(p.dir, "added.vir.yaml")
	require.NoError(t, os.WriteFile(added, []byte("body:\n  - comment: new\n"), 0o644))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "added.vir.yaml")
	}, 5*time.Second, 20*time.Millisecond, "recompile after write")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func TestWatch_RequiresDirectory(t *testing.T) {
	p := newProject(t, map[string]string{"page.vir.yaml": pageDoc})

	_, err := run(t, "watch", filepath.Join(p.dir, "page.vir.yaml"), "--no-cache", "--config", p.config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}
