package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vearutop/hdrpeak"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runLogged(t, args...)
	return out, err
}

// runLogged returns the command output and the log lines separately.
func runLogged(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &logs
	err := app.Run(append([]string{"hdrpeak"}, args...))
	return out.String(), logs.String(), err
}

func writeInput(t *testing.T, name string) string {
	t.Helper()
	img := hdrpeak.NewImage(4, 2, 3)
	copy(img.Pix, []float32{
		1, 2, 3, 0, 9, 0, 0, 0, 0, 4, 4, 4,
		0, 0, 0, 9, 1, 1, 0, 0, 0, 0, 0, 0,
	})
	path := filepath.Join(t.TempDir(), name)
	if err := hdrpeak.SaveImage(path, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIsolateDefaultAction(t *testing.T) {
	in := writeInput(t, "env.hdr")

	out, err := run(t, "--in", in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := hdrpeak.DefaultOutputPath(in)
	if strings.TrimSpace(out) != want {
		t.Fatalf("stdout: got %q want %q", out, want)
	}

	img, err := hdrpeak.LoadImage(want)
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	expected := []float32{
		0, 0, 0, 0, 9, 0, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 9, 1, 1, 0, 0, 0, 0, 0, 0,
	}
	for i, v := range img.Pix {
		if v != expected[i] {
			t.Fatalf("pix[%d]: got %v want %v", i, v, expected[i])
		}
	}
}

func TestIsolateCommand(t *testing.T) {
	in := writeInput(t, "env.exr")
	outPath := filepath.Join(filepath.Dir(in), "peak.exr.lz4")

	out, err := run(t, "isolate", "--out", outPath, "--exr-compression", "none", "--lz4-level", "3", in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(out) != outPath {
		t.Fatalf("stdout: got %q", out)
	}
	if _, err := hdrpeak.LoadImage(outPath); err != nil {
		t.Fatalf("load output: %v", err)
	}
}

func TestIsolateFlagsBeforeCommand(t *testing.T) {
	in := writeInput(t, "env.hdr")
	outPath := filepath.Join(filepath.Dir(in), "peak.exr")

	out, err := run(t, "--out", outPath, "--workers", "3", "--exr-compression", "none", "isolate", in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(out) != outPath {
		t.Fatalf("stdout: got %q want %q", out, outPath)
	}
	if _, err := os.Stat(hdrpeak.DefaultOutputPath(in)); !os.IsNotExist(err) {
		t.Fatalf("default output must not be created, stat: %v", err)
	}

	plain, err := os.Stat(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "--out", outPath, "isolate", "--exr-compression", "zip", in); err != nil {
		t.Fatalf("run: %v", err)
	}
	packed, err := os.Stat(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if packed.Size() >= plain.Size() {
		t.Fatalf("command flag must win: zip %d bytes, none %d bytes", packed.Size(), plain.Size())
	}

	if _, err := run(t, "--exr-compression", "piz", "isolate", in); err == nil {
		t.Fatal("expected error for global piz")
	}
}

func TestIsolateLogsToErrWriter(t *testing.T) {
	in := writeInput(t, "env.hdr")

	out, logs, err := runLogged(t, "-v", "isolate", in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Contains(out, "loaded") {
		t.Fatalf("logs leaked into output: %q", out)
	}
	for _, s := range []string{"loaded 4x2 image with 3 channels", "maximum brightness 9 at 2 pixel(s)", "wrote "} {
		if !strings.Contains(logs, s) {
			t.Errorf("logs lack %q:\n%s", s, logs)
		}
	}

	_, logs, err = runLogged(t, "isolate", in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(logs, "wrote ") || strings.Contains(logs, "loaded") {
		t.Fatalf("default level logs: %q", logs)
	}

	_, logs, err = runLogged(t, "-q", "isolate", in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if logs != "" {
		t.Fatalf("quiet logs: %q", logs)
	}
}

func TestIsolateMissingInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "missing.hdr")

	_, err := run(t, "isolate", in)
	if err == nil || !strings.Contains(err.Error(), in) {
		t.Fatalf("expected error naming %s, got %v", in, err)
	}
	if _, err := os.Stat(hdrpeak.DefaultOutputPath(in)); !os.IsNotExist(err) {
		t.Fatalf("output must not be created, stat: %v", err)
	}
}

func TestIsolateBadCompression(t *testing.T) {
	in := writeInput(t, "env.exr")
	if _, err := run(t, "isolate", "--exr-compression", "piz", in); err == nil {
		t.Fatal("expected error")
	}
}

func TestInspect(t *testing.T) {
	in := writeInput(t, "env.exr")

	out, err := run(t, "inspect", "--top", "3", in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, s := range []string{"Brightest pixels (2)", "Top 3 pixels", "BRIGHTNESS", "MEDIAN"} {
		if !strings.Contains(out, s) {
			t.Errorf("output lacks %q:\n%s", s, out)
		}
	}

	if _, err := run(t, "inspect"); err == nil {
		t.Fatal("expected error without input")
	}
}

func TestPreview(t *testing.T) {
	in := writeInput(t, "env.hdr")
	outPath := filepath.Join(filepath.Dir(in), "preview.png")

	out, err := run(t, "preview", "--out", outPath, "--width", "2", in)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(out) != outPath {
		t.Fatalf("stdout: got %q", out)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Fatal(err)
	}
}
