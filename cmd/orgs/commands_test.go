package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Uri2001/orgs/internal/config"
	"github.com/Uri2001/orgs/internal/domainutil"
	"github.com/Uri2001/orgs/internal/store"
)

func newTestCLI(t *testing.T, servers ...domainutil.Descriptor) *cli {
	t.Helper()
	path := filepath.Join(t.TempDir(), "servers.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	for _, d := range servers {
		require.NoError(t, st.AddDomain(context.Background(), d))
	}
	require.NoError(t, st.Close())
	return &cli{cfg: &config.Config{DBPath: path}}
}

var (
	chatExample = domainutil.Descriptor{URL: "https://chat.example.org", Alias: "Example Chat", ZulipVersion: "9.0"}
	devZulip    = domainutil.Descriptor{URL: "https://dev.zulip.example", Alias: "Zulip Dev", ZulipVersion: "10.1"}
)

func TestList_YAML(t *testing.T) {
	t.Parallel()
	c := newTestCLI(t, chatExample, devZulip)

	var buf bytes.Buffer
	require.NoError(t, c.list(context.Background(), &buf, "", "yaml"))

	var got []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	urls := []any{got[0]["url"], got[1]["url"]}
	assert.ElementsMatch(t, []any{chatExample.URL, devZulip.URL}, urls)
}

func TestList_TextFiltered(t *testing.T) {
	t.Parallel()
	c := newTestCLI(t, chatExample, devZulip)

	var buf bytes.Buffer
	require.NoError(t, c.list(context.Background(), &buf, "zulip dev", "text"))

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, devZulip.URL)
	assert.NotContains(t, out, chatExample.URL)
}

func TestList_UnknownFormat(t *testing.T) {
	t.Parallel()
	c := newTestCLI(t)

	err := c.list(context.Background(), &bytes.Buffer{}, "", "json")
	assert.ErrorContains(t, err, `unknown output format "json"`)
}

func TestRemove(t *testing.T) {
	t.Parallel()
	c := newTestCLI(t, chatExample)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, c.remove(ctx, &buf, "  chat.example.org/ "))
	assert.Equal(t, "removed https://chat.example.org\n", buf.String())

	err := c.remove(ctx, &bytes.Buffer{}, "chat.example.org")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, version+"\n", buf.String())
}

func TestExitError(t *testing.T) {
	t.Parallel()
	cause := assert.AnError
	err := &exitError{code: exitPersistFailed, err: cause}
	assert.Equal(t, cause.Error(), err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "exit status 2", (&exitError{code: 2}).Error())
}
