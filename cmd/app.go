package cmd

import (
	"errors"

	"github.com/iksnae/knowledge-console/internal"
)

// app is the per-invocation wiring: backend client, credential and the
// optional drop journal
type app struct {
	client  *internal.Client
	auth    *internal.AuthContext
	journal *internal.Journal
}

func newApp() (*app, error) {
	if cfg == nil {
		return nil, errors.New("configuration not loaded")
	}

	a := &app{
		client: internal.NewClient(cfg.APIURL, internal.WithTimeout(cfg.RequestTimeout)),
		auth:   internal.NewAuthContext(internal.NewCredentialStore(cfg.CredentialPath())),
	}
	if err := a.auth.Restore(); err != nil {
		internal.LogWarn("ignoring saved credential: %v", err)
	}

	if cfg.Journal {
		j, err := internal.OpenJournal(cfg.JournalPath())
		if err != nil {
			return nil, err
		}
		a.journal = j
	}
	return a, nil
}

// agentOptions hooks the journal into the sync agent when enabled.
func (a *app) agentOptions() []internal.AgentOption {
	if a.journal == nil {
		return nil
	}
	return []internal.AgentOption{internal.WithDropHook(a.journal.DropHook())}
}

// openJournal returns the configured journal, opening it even when
// recording is disabled so pending records stay reachable.
func (a *app) openJournal() (*internal.Journal, error) {
	if a.journal != nil {
		return a.journal, nil
	}
	j, err := internal.OpenJournal(cfg.JournalPath())
	if err != nil {
		return nil, err
	}
	a.journal = j
	return j, nil
}

func (a *app) close() {
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			internal.LogWarn("failed to close journal: %v", err)
		}
	}
}
