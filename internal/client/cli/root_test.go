package cli

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/filex"
	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/todokeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/dmitrijs2005/todokeeper/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t         *testing.T
	serverURL string
	tokenFile string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	withTerminal(t, false, nil)

	db := testutil.NewSQLiteDB(t)
	m := &repomanager.SQLiteRepositoryManager{}
	tokens := auth.NewTokenManager([]byte("k"), time.Hour)
	s := httpapi.NewHTTPServer("", logging.Nop(),
		services.NewUserService(db, m, auth.NewBcryptHasher(), tokens),
		services.NewTodoService(db, m),
		tokens,
		time.Second,
	)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	return &harness{t: t, serverURL: ts.URL, tokenFile: filepath.Join(t.TempDir(), "token")}
}

// run executes the CLI with args and stdin, returning stdout and the error.
func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--server", h.serverURL, "--token-file", h.tokenFile}, args...))
	err := cmd.Execute()
	return out.String(), err
}

var uuidRe = regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`)

func TestCLI_FullFlow(t *testing.T) {
	h := newHarness(t)

	out, err := h.run("Alice\na@x.com\nsecret1\n", "signup")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered Alice <a@x.com>")

	_, err = h.run("", "todo", "list")
	require.ErrorIs(t, err, ErrNotLoggedIn)

	_, err = h.run("wrong-pass\n", "login", "--email", "a@x.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid email or password")

	out, err = h.run("secret1\n", "login", "--email", "a@x.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as a@x.com")

	out, err = h.run("", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Alice <a@x.com>")

	out, err = h.run("", "todo", "add", "buy", "milk")
	require.NoError(t, err)
	id := uuidRe.FindString(out)
	require.NotEmpty(t, id)

	out, err = h.run("", "todo", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "buy milk")
	assert.Contains(t, out, "[ ]")

	out, err = h.run("", "todo", "done", id)
	require.NoError(t, err)
	assert.Contains(t, out, "[x]")

	out, err = h.run("", "todo", "rename", id, "buy", "oat", "milk")
	require.NoError(t, err)
	assert.Contains(t, out, "buy oat milk")

	out, err = h.run("", "todo", "undone", id)
	require.NoError(t, err)
	assert.Contains(t, out, "[ ]")

	out, err = h.run("", "todo", "rm", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted "+id)

	_, err = h.run("", "todo", "rm", id)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Todo not found")

	out, err = h.run("", "todo", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No todos")

	out, err = h.run("", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	_, err = h.run("", "whoami")
	require.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestCLI_RejectedTokenMeansNotLoggedIn(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, filex.WriteSecret(h.tokenFile, []byte("not.a.jwt")))

	_, err := h.run("", "todo", "list")
	require.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Contains(t, err.Error(), "Invalid token")
}

func TestCLI_ArgValidation(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", "todo", "rename", "only-id")
	require.Error(t, err)

	_, err = h.run("", "todo", "add")
	require.Error(t, err)
}

func TestRootCmd_Help(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	for _, phrase := range []string{"signup", "login", "logout", "whoami", "todo"} {
		assert.Contains(t, buf.String(), phrase)
	}
}
