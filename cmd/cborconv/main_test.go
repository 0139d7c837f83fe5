package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wippyai/cbor-serializer/codec"
	"github.com/wippyai/cbor-serializer/value"
)

func encodeItems(t *testing.T, vs ...value.Value) []byte {
	t.Helper()
	var out []byte
	for _, v := range vs {
		b, err := codec.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		out = append(out, b...)
	}
	return out
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunCommands(t *testing.T) {
	data := encodeItems(t,
		value.Array(value.Int(1), value.Text("a")),
		value.Map(value.KV("k", value.Bool(true))),
	)
	path := writeFile(t, "items.cbor", data)

	tests := []struct {
		name  string
		args  []string
		stdin []byte
		want  []string
	}{
		{
			name: "decode file",
			args: []string{"decode", path},
			want: []string{"item 0", "[]interface {} (2)", `[0]: int64 1`, `[1]: string "a"`, "item 1", "k: bool true"},
		},
		{
			name:  "decode stdin",
			args:  []string{"--plain", "decode"},
			stdin: data,
			want:  []string{"item 0", "item 1"},
		},
		{
			name:  "diag",
			args:  []string{"diag", "-"},
			stdin: data,
			want:  []string{`[1, "a"]`, `{"k": true}`},
		},
		{
			name: "check",
			args: []string{"check", path},
			want: []string{"item 0: ok", "item 1: ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(tt.args, bytes.NewReader(tt.stdin), &stdout, &stderr)
			if err != nil {
				t.Fatalf("run: %v (stderr: %s)", err, stderr.String())
			}
			for _, w := range tt.want {
				if !strings.Contains(stdout.String(), w) {
					t.Errorf("output lacks %q:\n%s", w, stdout.String())
				}
			}
		})
	}
}

func TestRunCheckMismatch(t *testing.T) {
	data := encodeItems(t, value.Int(3), value.Tagged(value.Enum, value.Int(2)))

	var stdout, stderr bytes.Buffer
	err := run([]string{"check"}, bytes.NewReader(data), &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "1 item(s)") {
		t.Fatalf("expected one mismatch, got %v", err)
	}
	if !strings.Contains(stdout.String(), "item 1: mismatch") {
		t.Errorf("output:\n%s", stdout.String())
	}
}

func TestRunErrors(t *testing.T) {
	badConfig := writeFile(t, "bad.yaml", []byte("polymorphism: sometimes\n"))

	tests := []struct {
		name  string
		args  []string
		stdin []byte
		want  string
	}{
		{"missing command", nil, nil, "missing command"},
		{"unknown command", []string{"encode"}, nil, "unknown command"},
		{"bad config", []string{"--config", badConfig, "diag"}, nil, "invalid_config"},
		{"missing file", []string{"decode", filepath.Join(t.TempDir(), "none")}, nil, "read"},
		{"malformed data", []string{"decode"}, []byte{0x82, 0x01}, "item 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(tt.args, bytes.NewReader(tt.stdin), &stdout, &stderr)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestVerboseLogsSelection(t *testing.T) {
	data := encodeItems(t, value.Int(7))

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-v", "decode"}, bytes.NewReader(data), &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(stderr.String(), "deserialize") {
		t.Errorf("expected converter selection log, got:\n%s", stderr.String())
	}
}

func TestTree(t *testing.T) {
	s := newStyles(false)
	got := s.tree(map[string]any{"list": []any{int64(1)}, "name": "x"})
	want := "map[string]interface {} (2)\n" +
		"├── list: []interface {} (1)\n" +
		"│   └── [0]: int64 1\n" +
		"└── name: string \"x\"\n"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
