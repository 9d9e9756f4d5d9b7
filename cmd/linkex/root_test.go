package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/linkex/internal/config"
	"github.com/nao1215/linkex/internal/database"
	"github.com/nao1215/linkex/internal/fetch"
)

// writeConfig writes a configuration file into a temporary directory and
// returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".linkex")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// runLinkex executes the root command with stdin and returns stdout,
// stderr and the command error. A blank config file and a private history
// directory are always passed so the host environment does not leak in.
func runLinkex(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	hasConfig := false
	for _, a := range args {
		if a == "-c" || a == "--config" {
			hasConfig = true
		}
	}
	if !hasConfig {
		args = append([]string{"-c", writeConfig(t, "")}, args...)
	}

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "linkex [base-url]" {
			t.Errorf("expected use 'linkex [base-url]', got %q", cmd.Use)
		}
	})

	t.Run("has descriptions and version", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" || cmd.Long == "" {
			t.Error("expected non-empty descriptions")
		}
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has verbose flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup("verbose")
		if flag == nil {
			t.Fatal("expected verbose flag")
		}
		if flag.Shorthand != "v" {
			t.Errorf("expected shorthand 'v', got %q", flag.Shorthand)
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("has extraction flags", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name      string
			shorthand string
			defValue  string
		}{
			{name: "all", shorthand: "a", defValue: "false"},
			{name: "filter", shorthand: "f", defValue: ""},
			{name: "source", shorthand: "s", defValue: ""},
			{name: "proxy", shorthand: "x", defValue: ""},
			{name: "timeout", shorthand: "t", defValue: config.DefaultTimeout.String()},
			{name: "config", shorthand: "c", defValue: ""},
			{name: "save", shorthand: "", defValue: "false"},
		}

		for _, tt := range tests {
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Errorf("expected %s flag", tt.name)
				continue
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("flag %s: expected shorthand %q, got %q", tt.name, tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("flag %s: expected default %q, got %q", tt.name, tt.defValue, flag.DefValue)
			}
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()

		want := map[string]bool{"history": false, "init": false, "version": false}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})
}

func TestRootCmdExtractsFromStdin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{
			name:  "href values joined with base",
			stdin: `<a href="/docs">Docs</a> <a href="https://go.dev">Go</a>`,
			args:  []string{"http://example.com/"},
			want:  "http://example.com/docs\nhttps://go.dev\n",
		},
		{
			name:  "relative links unchanged without base",
			stdin: `<a href="/docs">Docs</a> <a href="www.example.org">x</a>`,
			want:  "/docs\nhttp://www.example.org\n",
		},
		{
			name:  "full text mode",
			stdin: `<a href="/topics/rust">Rust</a> <a href="http://foo.bar">Foo</a> see www.google.com`,
			args:  []string{"--all", "http://site.com"},
			want:  "http://site.com/topics/rust\nhttp://foo.bar\nhttp://www.google.com\n",
		},
		{
			name:  "href only ignores bare urls",
			stdin: `see https://go.dev and www.google.com`,
			args:  []string{"http://site.com"},
			want:  "",
		},
		{
			name:  "scheme duplicates collapse",
			stdin: `<a href="http://a.org/x"></a><a href="https://a.org/x"></a>`,
			want:  "http://a.org/x\n",
		},
		{
			name:  "filter after dedupe is case sensitive",
			stdin: `<a href="https://GitHub.com/a"></a><a href="https://github.com/b"></a><a href="/c"></a>`,
			args:  []string{"-f", "github", "https://site.com"},
			want:  "https://github.com/b\n",
		},
		{
			name:  "no links is not an error",
			stdin: "plain text without references",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stdout, _, err := runLinkex(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if stdout != tt.want {
				t.Errorf("expected output %q, got %q", tt.want, stdout)
			}
		})
	}
}

func TestRootCmdConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("defaults come from the file", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeConfig(t, "defaults:\n  base: \"http://from-file.com\"\n  all: true\n")
		stdout, _, err := runLinkex(t, `<a href="/a"></a> www.b.org`, "-c", cfgPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := "http://from-file.com/a\nhttp://www.b.org\n"
		if stdout != want {
			t.Errorf("expected %q, got %q", want, stdout)
		}
	})

	t.Run("argument overrides file base", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeConfig(t, "defaults:\n  base: \"http://from-file.com\"\n")
		stdout, _, err := runLinkex(t, `<a href="/a"></a>`, "-c", cfgPath, "http://from-arg.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "http://from-arg.com/a\n" {
			t.Errorf("unexpected output %q", stdout)
		}
	})

	t.Run("flag overrides file filter", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeConfig(t, "defaults:\n  filter: \"nothing-matches\"\n")
		stdout, _, err := runLinkex(t, `<a href="http://x.org/a"></a>`, "-c", cfgPath, "-f", "x.org")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "http://x.org/a\n" {
			t.Errorf("unexpected output %q", stdout)
		}
	})

	t.Run("file proxy does not apply to stdin", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeConfig(t, "defaults:\n  proxy: \"127.0.0.1:9050\"\n")
		stdout, _, err := runLinkex(t, `<a href="/a">`, "-c", cfgPath, "http://site.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != "http://site.com/a\n" {
			t.Errorf("unexpected output %q", stdout)
		}
	})

	t.Run("file proxy applies to a source", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeConfig(t, "defaults:\n  proxy: \"127.0.0.1:9050\"\n")
		cmd := NewRootCmd()
		if err := cmd.ParseFlags([]string{"-c", cfgPath, "-s", "http://example.com"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.ProxyAddress != "127.0.0.1:9050" {
			t.Errorf("expected proxy from file, got %q", cfg.ProxyAddress)
		}
	})

	t.Run("explicit missing file is an error", func(t *testing.T) {
		t.Parallel()

		missing := filepath.Join(t.TempDir(), "missing.yaml")
		_, _, err := runLinkex(t, "", "-c", missing)
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml is an error", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeConfig(t, "defaults: [unclosed\n")
		if _, _, err := runLinkex(t, "", "-c", cfgPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

func TestRootCmdValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "proxy without source", args: []string{"-x", "127.0.0.1:9050"}, wantErr: config.ErrProxyWithoutSource},
		{name: "non http source", args: []string{"-s", "ftp://example.com/"}, wantErr: config.ErrInvalidSource},
		{name: "negative timeout", args: []string{"-t", "-1s"}, wantErr: config.ErrInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := runLinkex(t, "", tt.args...)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("too many arguments", func(t *testing.T) {
		t.Parallel()

		if _, _, err := runLinkex(t, "", "http://a.com", "http://b.com"); err == nil {
			t.Error("expected error for two base URLs")
		}
	})
}

func TestRootCmdSource(t *testing.T) {
	t.Parallel()

	t.Run("fetches the source over HTTP", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, `<a href="/topics/go">Go</a>`)
		}))
		defer srv.Close()

		stdout, _, err := runLinkex(t, "", "-s", srv.URL, srv.URL+"/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stdout != srv.URL+"/topics/go\n" {
			t.Errorf("unexpected output %q", stdout)
		}
	})

	t.Run("per host headers are sent", func(t *testing.T) {
		t.Parallel()

		cookies := make(chan string, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookies <- r.Header.Get("Cookie")
			w.Header().Set("Content-Type", "text/plain")
		}))
		defer srv.Close()

		host := strings.TrimPrefix(srv.URL, "http://")
		cfgPath := writeConfig(t, "sources:\n  \""+host+"\":\n    headers:\n      Cookie: \"session=abc\"\n")

		if _, _, err := runLinkex(t, "", "-c", cfgPath, "-s", srv.URL); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := <-cookies; got != "session=abc" {
			t.Errorf("expected cookie header, got %q", got)
		}
	})

	t.Run("error status fails the run", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", http.StatusInternalServerError)
		}))
		defer srv.Close()

		stdout, _, err := runLinkex(t, "", "-s", srv.URL)
		if !errors.Is(err, fetch.ErrUnexpectedStatus) {
			t.Errorf("expected ErrUnexpectedStatus, got %v", err)
		}
		if stdout != "" {
			t.Errorf("expected no output, got %q", stdout)
		}
	})
}

func TestRootCmdVerboseLogsToStderr(t *testing.T) {
	t.Parallel()

	stdout, stderr, err := runLinkex(t, `<a href="http://a.org"></a>`, "-v")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "http://a.org\n" {
		t.Errorf("expected only links on stdout, got %q", stdout)
	}
	if stderr == "" {
		t.Error("expected debug logs on stderr")
	}
}

func TestRootCmdSave(t *testing.T) {
	t.Parallel()

	dbDir := t.TempDir()
	stdout, _, err := runLinkex(t, `<a href="/a"></a>`, "--save", "--db-dir", dbDir, "http://site.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stdout != "http://site.com/a\n" {
		t.Errorf("unexpected output %q", stdout)
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false})
	if err != nil {
		t.Fatalf("expected history database: %v", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(t.Context(), 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 saved run, got %d", len(runs))
	}
	if runs[0].Source != "-" || runs[0].Base != "http://site.com" || runs[0].Mode != "href" {
		t.Errorf("unexpected saved run: %+v", runs[0])
	}
}

func TestRootCmdSaveReportsRepeatedInput(t *testing.T) {
	t.Parallel()

	dbDir := t.TempDir()
	input := `<a href="/a"></a>`

	_, stderr, err := runLinkex(t, input, "-v", "--save", "--db-dir", dbDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(stderr, "input already recorded") {
		t.Errorf("first run must not report repeated input, got %q", stderr)
	}

	_, stderr, err = runLinkex(t, input, "-v", "--save", "--db-dir", dbDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stderr, "input already recorded") || !strings.Contains(stderr, "runs=1") {
		t.Errorf("expected repeated input to be reported, got %q", stderr)
	}
}

func TestRootCmdWithoutSaveLeavesNoDatabase(t *testing.T) {
	t.Parallel()

	dbDir := t.TempDir()
	if _, _, err := runLinkex(t, `<a href="/a"></a>`, "--db-dir", dbDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dbDir, database.FileName)); !os.IsNotExist(err) {
		t.Error("expected no history database without --save")
	}
}
