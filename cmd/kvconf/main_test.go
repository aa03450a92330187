package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sample = `; sample
pasv_enable=TRUE
listen_port=21
listen_address=
cmds_allowed=PWD
cmds_allowed=LIST
`

func runCmd(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_JSON(t *testing.T) {
	code, stdout, stderr := runCmd(t, sample, "-format", "json")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, `{
  "cmds_allowed": [
    "PWD",
    "LIST"
  ],
  "listen_address": "",
  "listen_port": "21",
  "pasv_enable": "TRUE"
}
`, stdout)
}

func TestRun_YAML(t *testing.T) {
	code, stdout, stderr := runCmd(t, sample)
	require.Equal(t, 0, code, stderr)

	var got yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &got))
	require.Len(t, got.Content, 1)
	root := got.Content[0]
	require.Equal(t, yaml.MappingNode, root.Kind)

	var keys []string
	for i := 0; i < len(root.Content); i += 2 {
		keys = append(keys, root.Content[i].Value)
	}
	assert.Equal(t, []string{"pasv_enable", "listen_port", "listen_address", "cmds_allowed"}, keys)

	var values map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &values))
	assert.Equal(t, map[string]any{
		"pasv_enable":    "TRUE",
		"listen_port":    "21",
		"listen_address": "",
		"cmds_allowed":   []any{"PWD", "LIST"},
	}, values)
}

func TestRun_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vsftpd.conf")
	require.NoError(t, os.WriteFile(path, []byte("a = 1\n"), 0o644))

	code, stdout, stderr := runCmd(t, "", "-format=json", path)
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "{\n  \"a\": \"1\"\n}\n", stdout)
}

func TestRun_Dump(t *testing.T) {
	code, stdout, stderr := runCmd(t, sample, "-dump")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "kvconf.Document")
	assert.Contains(t, stdout, `Key: (string) (len=11) "pasv_enable"`)
	assert.Contains(t, stdout, `Value: (string) (len=4) "LIST"`)
}

func TestRun_Errors(t *testing.T) {
	for _, tc := range []struct {
		desc     string
		stdin    string
		args     []string
		wantCode int
		wantErr  string
	}{{
		desc:     "SyntaxError",
		stdin:    "a = 1\nbroken\n",
		wantCode: 1,
		wantErr:  "Error decoding <stdin>: line 2: syntax error: missing '='",
	}, {
		desc:     "MissingFile",
		args:     []string{filepath.Join(os.TempDir(), "kvconf-does-not-exist.conf")},
		wantCode: 1,
		wantErr:  "Error opening file",
	}, {
		desc:     "TooManyFiles",
		args:     []string{"a.conf", "b.conf"},
		wantCode: 2,
		wantErr:  "at most one file",
	}, {
		desc:     "UnknownFormat",
		stdin:    sample,
		args:     []string{"-format", "toml"},
		wantCode: 2,
		wantErr:  `unknown format "toml"`,
	}, {
		desc:     "UnknownFlag",
		args:     []string{"-verbose"},
		wantCode: 2,
		wantErr:  "flag provided but not defined",
	}} {
		t.Run(tc.desc, func(t *testing.T) {
			code, stdout, stderr := runCmd(t, tc.stdin, tc.args...)
			assert.Equal(t, tc.wantCode, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tc.wantErr)
		})
	}
}
