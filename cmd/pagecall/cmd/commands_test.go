package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/pagecall/pagecall-drift/pkg/errors"
	"github.com/pagecall/pagecall-drift/pkg/pagecall"
	"github.com/pagecall/pagecall-drift/pkg/platform"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func quietErrors(t *testing.T) {
	t.Helper()
	prev := errors.SetHandler(&errors.LogHandler{Logger: zap.NewNop()})
	t.Cleanup(func() { errors.SetHandler(prev) })
}

func TestReplay(t *testing.T) {
	t.Cleanup(platform.ResetForTest)
	quietErrors(t)
	out := captureStdout(t)

	input := strings.Join([]string{
		`# recorded session`,
		`{"id":"1","action":"ping"}`,
		``,
		`@other {"id":"2","action":"ping"}`,
		`{"id":"3","action":"echo","payload":[1,2]}`,
	}, "\n")

	if err := replay(strings.NewReader(input), zap.NewNop()); err != nil {
		t.Fatalf("replay: %v", err)
	}

	want := strings.Join([]string{
		`> {"id":"1","action":"ping"}`,
		`< window.PagecallNative&&window.PagecallNative.__respond({"id":"1","result":"pong"});`,
		`> {"id":"2","action":"ping"}`,
		`> {"id":"3","action":"echo","payload":[1,2]}`,
		`< window.PagecallNative&&window.PagecallNative.__respond({"id":"3","result":[1,2]});`,
	}, "\n") + "\n"
	if got := out.String(); got != want {
		t.Errorf("output:\n%s\nwant:\n%s", got, want)
	}
}

func TestReplay_NotificationErrorEmitsEvent(t *testing.T) {
	t.Cleanup(platform.ResetForTest)
	quietErrors(t)
	out := captureStdout(t)

	if err := replay(strings.NewReader(`{"action":"fly"}`), zap.NewNop()); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !strings.Contains(out.String(), `__emit({"event":"error","data":{"code":"unknown_action"`) {
		t.Errorf("missing error event in output:\n%s", out.String())
	}
}

func TestReplay_MissingBootstrap(t *testing.T) {
	t.Cleanup(platform.ResetForTest)
	quietErrors(t)
	captureStdout(t)

	err := replay(strings.NewReader(""), zap.NewNop(), pagecall.WithAssets(os.DirFS(t.TempDir())))
	if err == nil {
		t.Fatal("expected error for missing bootstrap script")
	}
}

func TestCheck(t *testing.T) {
	quietErrors(t)
	out := captureStdout(t)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pagecall.yaml"), []byte("log:\n  level: error\nbridge:\n  dispatch_timeout: 3s\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	prev := configDir
	configDir = dir
	t.Cleanup(func() { configDir = prev })

	if err := runCheck([]string{"--legacy"}); err != nil {
		t.Fatalf("check: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"Log level:  error",
		"Timeout:    3s",
		"Bootstrap:  PagecallNative.js (bundled",
		`"applicationNameForUserAgent": "PagecallIos"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if !strings.Contains(got, `"preferredContentMode": "recommended"`) {
		t.Errorf("legacy configuration should keep the recommended content mode:\n%s", got)
	}
}

func TestCheck_UnknownFlag(t *testing.T) {
	captureStdout(t)
	if err := runCheck([]string{"--bogus"}); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestExecute_Version(t *testing.T) {
	out := captureStdout(t)
	if err := Execute([]string{"--version"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(out.String(), "pagecall version "+Version) {
		t.Errorf("output = %q", out.String())
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	captureStdout(t)
	if err := Execute([]string{"launch"}); err == nil {
		t.Error("expected error for unknown command")
	}
}
