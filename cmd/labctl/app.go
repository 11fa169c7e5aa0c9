package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/cli"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/config"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/ledger"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/notify"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/session"
	aluguelclient "github.com/AulusHZP/LabProjetoDeSoftware/services/aluguel/client"
	moedaclient "github.com/AulusHZP/LabProjetoDeSoftware/services/moeda/client"
)

const appName = "labctl"

// roleAluguel marks a session signed in to the rental API.
const roleAluguel = "aluguel"

var errWrongRole = errors.New("comando indisponível para este perfil")

// app holds everything a command needs. It is built lazily so that help
// and completion never touch the session file or the network.
type app struct {
	cfg     config.CLI
	log     *logging.Logger
	out     *cli.Printer
	asJSON  bool
	sess    *session.Session
	moeda   *moedaclient.Client
	aluguel *aluguelclient.Client
	ledger  *ledger.Client
	spinner *cli.Spinner
}

func (a *app) init() error {
	if a.sess != nil {
		return nil
	}
	var store session.Store
	if a.cfg.SessionFile != "" {
		store = session.NewFileStore(a.cfg.SessionFile)
	} else {
		path, err := session.DefaultPath(appName)
		if err != nil {
			return fmt.Errorf("locate session file: %w", err)
		}
		store = session.NewFileStore(path)
	}
	a.sess = session.Open(store, a.log)

	a.moeda = moedaclient.New(moedaclient.Config{
		BaseURL: a.cfg.MoedaURL,
		Timeout: a.cfg.Timeout,
		Tokens:  a.sess,
		Logger:  a.log,
	})
	a.aluguel = aluguelclient.New(aluguelclient.Config{
		BaseURL: a.cfg.AluguelURL,
		Timeout: a.cfg.Timeout,
		Logger:  a.log,
	})

	a.spinner = a.out.Spinner()
	a.ledger = ledger.New(ledger.Config{
		API:        a.moeda,
		Notifier:   a.notifier(),
		Sink:       a.sess,
		Observer:   a.observe,
		Optimistic: a.cfg.Optimistic,
		Logger:     a.log,
	})
	return nil
}

func (a *app) notifier() notify.Notifier {
	logged := notify.NewLogNotifier(a.log)
	if a.cfg.SendGridKey == "" {
		return logged
	}
	return notify.Multi{logged, notify.NewSendGrid(notify.SendGridConfig{
		APIKey:    a.cfg.SendGridKey,
		AppName:   "MoedaEstudantil",
		FromEmail: a.cfg.MailFrom,
	})}
}

func (a *app) observe(op ledger.Op, state ledger.State) {
	switch state {
	case ledger.Submitting, ledger.Reconciling:
		a.spinner.Update(fmt.Sprintf("%s: %s", op, state))
	default:
		a.spinner.Stop()
	}
}

func (a *app) close() {
	if a.ledger != nil {
		a.spinner.Stop()
		a.ledger.Close()
	}
}

// profile returns the signed-in profile, requiring one of roles when given.
func (a *app) profile(roles ...moeda.Role) (session.Profile, error) {
	p, ok := a.sess.Current()
	if !ok {
		return session.Profile{}, session.ErrNotAuthenticated
	}
	if len(roles) == 0 {
		return p, nil
	}
	for _, r := range roles {
		if p.Role == string(r) {
			return p, nil
		}
	}
	return session.Profile{}, errWrongRole
}

// emit prints v as JSON when --json is set; otherwise it calls human.
func (a *app) emit(v interface{}, human func()) error {
	if !a.asJSON {
		human()
		return nil
	}
	enc := json.NewEncoder(a.out.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
