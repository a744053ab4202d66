package cmd

import (
	"strings"
	"testing"
)

func TestHealthcheckCommand_LoggedIn(t *testing.T) {
	env := newTestEnv(t)
	env.login("alice")

	out, err := env.run("", "healthcheck", "--details")
	if err != nil {
		t.Fatalf("healthcheck failed: %v\n%s", err, out)
	}
	for _, want := range []string{"Backend reachable", "Credential present", "Subject: alice", "Found 0 stored conversation(s)", "Health check passed!"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHealthcheckCommand_Anonymous(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run("", "healthcheck")
	if err != nil {
		t.Fatalf("healthcheck failed: %v", err)
	}
	if !strings.Contains(out, "No credential stored") || !strings.Contains(out, "Skipped: not logged in") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestHealthcheckCommand_Unreachable(t *testing.T) {
	newTestEnv(t)

	out, err := runRoot("", "--api-url", "http://127.0.0.1:1", "healthcheck")
	if err == nil {
		t.Fatal("healthcheck should fail when the backend is unreachable")
	}
	if !strings.Contains(out, "Backend unreachable") {
		t.Errorf("output missing unreachable notice:\n%s", out)
	}
}

func TestHealthcheckCommand_JournalPending(t *testing.T) {
	env := newTestEnv(t)
	dropConversation(t, env)

	out, err := env.run("", "--journal", "healthcheck")
	if err != nil {
		t.Fatalf("healthcheck failed: %v", err)
	}
	if !strings.Contains(out, "1 failed save(s) recorded") {
		t.Errorf("output missing journal count:\n%s", out)
	}
}
