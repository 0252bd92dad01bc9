package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/lessonbook/internal/client/client"
	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	err      error

	calls []string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return f.err
}

func (f *fakeExec) isLoggedIn(context.Context) bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	f.loggedIn = true
	return f.record("register")
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Profile(ctx context.Context) error { return f.record("profile") }
func (f *fakeExec) Me(ctx context.Context) error      { return f.record("me") }
func (f *fakeExec) Status(ctx context.Context) error  { return f.record("status") }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"",
		"me",
		"profile",
		"status",
		"logout",
		"foobar",
		"register",
		"exit",
		"me",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	assert.Equal(t, []string{"login", "me", "profile", "status", "logout", "register"}, exec.calls)
	assert.Contains(t, *out, "Available commands: register, login, status, exit")
	assert.Contains(t, *out, "Available commands: profile, me, status, logout, exit")
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Contains(t, *out, "Bye!")
}

func TestRunREPL_PrintsErrorsAndContinues(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{err: client.ErrUnauthorized}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("me\nprofile\n")))

	assert.Equal(t, []string{"me", "profile"}, exec.calls)
	assert.Contains(t, *out, "Error: not logged in or session expired, please log in")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("")))
	assert.Empty(t, exec.calls)
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "server unavailable", describe(client.ErrUnavailable))
	assert.Equal(t, "request timed out", describe(context.DeadlineExceeded))
	assert.Equal(t, "boom", describe(errors.New("boom")))
}
