package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akhdanfadh/momosync/internal/maimemo/maimemotest"
)

const testToken = "cli-token"

// run executes the CLI against server with the given args and stdin.
func run(t *testing.T, server *maimemotest.Server, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	for _, key := range []string{
		"MAIMEMO_TOKEN", "MAIMEMO_NOTEPAD", "MAIMEMO_BASE_URL", "MAIMEMO_TIMEOUT",
		"MAIMEMO_READ_FAILURE", "MOMOSYNC_LOCK_TTL", "LOG_LEVEL", "LOG_FORMAT",
	} {
		if _, set := os.LookupEnv(key); set {
			t.Setenv(key, "")
			require.NoError(t, os.Unsetenv(key))
		}
	}

	full := append([]string{}, args...)
	full = append(full, "--token", testToken, "--base-url", server.URL)

	var out, errOut bytes.Buffer
	err = Execute(context.Background(), full, strings.NewReader(stdin), &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestSync_CreatesThenNoop(t *testing.T) {
	t.Setenv("MOMOSYNC_REDIS_URL", "")
	server := maimemotest.NewServer(t, testToken)

	out, _, err := run(t, server, "", "sync", "-n", "GRE", "banana", "apple")
	require.NoError(t, err)
	assert.Contains(t, out, "Created       : yes")
	assert.Contains(t, out, "Added           : 2")
	assert.Contains(t, out, "apple, banana")
	assert.Contains(t, out, "Notepad updated.")
	assert.Equal(t, []string{"apple,banana"}, server.Updates())

	out, _, err = run(t, server, "", "sync", "-n", "GRE", "apple")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to update.")
	assert.Equal(t, 1, server.Calls(maimemotest.RouteCreate))
	assert.Equal(t, 1, server.Calls(maimemotest.RouteUpdate))
}

func TestSync_FromStdin(t *testing.T) {
	t.Setenv("MOMOSYNC_REDIS_URL", "")
	server := maimemotest.NewServer(t, testToken)
	id := server.Seed("GRE", "apple")

	out, _, err := run(t, server, "# unit 1\napple\ncherry, date\n", "sync", "-n", "GRE")
	require.NoError(t, err)
	assert.Contains(t, out, "Already present : 1")
	assert.Contains(t, out, "Added           : 2")

	got := server.Words(id)
	slices.Sort(got)
	assert.Equal(t, []string{"apple", "cherry", "date"}, got)
}

func TestSync_FromYAMLFile(t *testing.T) {
	t.Setenv("MOMOSYNC_REDIS_URL", "")
	server := maimemotest.NewServer(t, testToken)
	path := filepath.Join(t.TempDir(), "words.yaml")
	require.NoError(t, os.WriteFile(path, []byte("words:\n  - abate\n  - abandon\n"), 0o600))

	_, _, err := run(t, server, "", "sync", "-n", "GRE", "--input", path)
	require.NoError(t, err)
	assert.Equal(t, []string{"abandon,abate"}, server.Updates())
}

func TestSync_DryRunWritesNothing(t *testing.T) {
	t.Setenv("MOMOSYNC_REDIS_URL", "")
	server := maimemotest.NewServer(t, testToken)

	out, _, err := run(t, server, "", "sync", "-n", "GRE", "--dry-run", "apple", "banana")
	require.NoError(t, err)
	assert.Contains(t, out, "would be created")
	assert.Contains(t, out, "Would add       : 2")
	assert.Contains(t, out, "No changes made.")
	assert.Equal(t, 0, server.Count())
	assert.Equal(t, 0, server.Calls(maimemotest.RouteUpdate))
}

func TestSync_StrictFailsOnUnreadableNotepad(t *testing.T) {
	t.Setenv("MOMOSYNC_REDIS_URL", "")
	server := maimemotest.NewServer(t, testToken)
	server.Seed("GRE", "apple")
	server.Fail(maimemotest.RouteGet, 503)

	_, _, err := run(t, server, "", "sync", "-n", "GRE", "--strict", "apple")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503")
	assert.Equal(t, 0, server.Calls(maimemotest.RouteUpdate))

	// default policy treats the notepad as empty and writes anyway
	_, stderr, err := run(t, server, "", "sync", "-n", "GRE", "apple")
	require.NoError(t, err)
	assert.Contains(t, stderr, "treating notepad as empty")
	assert.Equal(t, 1, server.Calls(maimemotest.RouteUpdate))
}

func TestSync_UsesRedisLock(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("MOMOSYNC_REDIS_URL", "redis://"+mr.Addr())
	server := maimemotest.NewServer(t, testToken)

	_, _, err := run(t, server, "", "sync", "-n", "GRE", "apple")
	require.NoError(t, err)
	assert.Equal(t, 1, server.Calls(maimemotest.RouteUpdate))
	assert.False(t, mr.Exists("momosync:lock:GRE"), "lock released after sync")
}

func TestSync_LocalLock(t *testing.T) {
	t.Setenv("MOMOSYNC_REDIS_URL", "")
	server := maimemotest.NewServer(t, testToken)

	_, errOut, err := run(t, server, "", "sync", "-n", "GRE", "--lock", "-v", "apple")
	require.NoError(t, err)
	assert.Contains(t, errOut, "using local lock")
	assert.Equal(t, []string{"apple"}, server.Updates())
}

func TestSync_NoLockByDefault(t *testing.T) {
	t.Setenv("MOMOSYNC_REDIS_URL", "")
	server := maimemotest.NewServer(t, testToken)

	_, errOut, err := run(t, server, "", "sync", "-n", "GRE", "-v", "apple")
	require.NoError(t, err)
	assert.NotContains(t, errOut, "using local lock")
	assert.NotContains(t, errOut, "using redis lock")
}

func TestSync_RedisUnavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	t.Setenv("MOMOSYNC_REDIS_URL", "redis://"+addr)
	server := maimemotest.NewServer(t, testToken)

	_, _, err := run(t, server, "", "sync", "-n", "GRE", "apple")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connecting lock backend")
	assert.Equal(t, 0, server.Calls(maimemotest.RouteList))
}

func TestSync_NoWords(t *testing.T) {
	t.Setenv("MOMOSYNC_REDIS_URL", "")
	server := maimemotest.NewServer(t, testToken)

	_, _, err := run(t, server, "\n# only a comment\n", "sync", "-n", "GRE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading words")
}

func TestFind(t *testing.T) {
	t.Setenv("MOMOSYNC_REDIS_URL", "")
	server := maimemotest.NewServer(t, testToken)

	_, _, err := run(t, server, "", "find", "-n", "GRE")
	require.ErrorIs(t, err, ErrNotepadNotFound)

	id := server.Seed("GRE")
	out, _, err := run(t, server, "", "find", "-n", "GRE")
	require.NoError(t, err)
	assert.Equal(t, id+"\n", out)
}

func TestCreate(t *testing.T) {
	t.Setenv("MOMOSYNC_REDIS_URL", "")
	server := maimemotest.NewServer(t, testToken)

	out, _, err := run(t, server, "", "create", "-n", "GRE")
	require.NoError(t, err)

	id := strings.TrimSpace(out)
	np, ok := server.Notepad(id)
	require.True(t, ok)
	assert.Equal(t, "GRE", np.Title)
	assert.Equal(t, "PUBLISHED", np.Status)
}

func TestCreate_ServerRefuses(t *testing.T) {
	t.Setenv("MOMOSYNC_REDIS_URL", "")
	server := maimemotest.NewServer(t, testToken)
	server.Respond(maimemotest.RouteCreate, `{"success":false}`)

	_, _, err := run(t, server, "", "create", "-n", "GRE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `creating notepad "GRE"`)
}

func TestWords(t *testing.T) {
	t.Setenv("MOMOSYNC_REDIS_URL", "")
	server := maimemotest.NewServer(t, testToken)
	server.Seed("GRE", "zebra", "apple")

	out, _, err := run(t, server, "", "words", "-n", "GRE")
	require.NoError(t, err)
	assert.Equal(t, "zebra\napple\n", out)

	_, _, err = run(t, server, "", "words", "-n", "TOEFL")
	assert.ErrorIs(t, err, ErrNotepadNotFound)
}

func TestMissingToken(t *testing.T) {
	t.Setenv("MOMOSYNC_REDIS_URL", "")
	t.Setenv("MAIMEMO_TOKEN", "")
	require.NoError(t, os.Unsetenv("MAIMEMO_TOKEN"))

	var out, errOut bytes.Buffer
	err := Execute(context.Background(), []string{"find", "-n", "GRE"}, strings.NewReader(""), &out, &errOut)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token is required")
}

func TestWrongToken(t *testing.T) {
	t.Setenv("MOMOSYNC_REDIS_URL", "")
	server := maimemotest.NewServer(t, "another-token")

	_, _, err := run(t, server, "", "find", "-n", "GRE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")
}

func TestVersion(t *testing.T) {
	var out bytes.Buffer
	err := Execute(context.Background(), []string{"version"}, strings.NewReader(""), &out, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "momosync dev (commit none)\n", out.String())
}
