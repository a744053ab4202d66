package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/iksnae/knowledge-console/internal"
)

func seedHistory(t *testing.T, env *testEnv, questions ...string) {
	t.Helper()
	for _, q := range questions {
		if _, err := env.run("", "ask", q); err != nil {
			t.Fatalf("ask %q failed: %v", q, err)
		}
	}
}

func TestHistoryCommand_List(t *testing.T) {
	env := newTestEnv(t)
	env.login("alice")
	seedHistory(t, env, "What is our Q3 revenue?", "Who owns the EMEA pipeline?")

	out, err := env.run("", "history", "list")
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	for _, want := range []string{"Chat #1", "Chat #2", "What is our Q3 revenue?", "Who owns the EMEA pipeline?"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHistoryCommand_Empty(t *testing.T) {
	env := newTestEnv(t)
	env.login("alice")

	out, err := env.run("", "history", "list")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No stored conversations.") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestHistoryCommand_Show(t *testing.T) {
	env := newTestEnv(t)
	env.login("alice")
	seedHistory(t, env, "What is our Q3 revenue?")

	out, err := env.run("", "history", "show", "1")
	if err != nil {
		t.Fatalf("history show failed: %v", err)
	}
	for _, want := range []string{"Chat #1", "Messages: 2", "[1/2]", "[2/2]", "You asked: What is our Q3 revenue?"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestHistoryCommand_Errors(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run("", "history", "list"); !errors.Is(err, errNotLoggedIn) {
		t.Errorf("history list without login error = %v, want errNotLoggedIn", err)
	}

	env.login("alice")
	if _, err := env.run("", "history", "show", "3"); !errors.Is(err, internal.ErrNoSuchConversation) {
		t.Errorf("history show 3 error = %v, want ErrNoSuchConversation", err)
	}
	if _, err := env.run("", "history", "show", "abc"); err == nil {
		t.Error("non-numeric position should fail")
	}
}
