// Package ledger implements the client side of the two value-moving
// operations of the merit-currency system: a professor sending coins to a
// student, and a student redeeming an advantage.
//
// Each operation is one authoritative write followed by a refetch of every
// view that depends on it. The server is the sole authority over balances,
// redemption counts and coupon codes; local checks only spare users a round
// trip that would be rejected anyway.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AulusHZP/LabProjetoDeSoftware/internal/domain/moeda"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/logging"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/metrics"
	"github.com/AulusHZP/LabProjetoDeSoftware/internal/notify"
)

// ErrBusy is returned when the same operation is already in flight.
var ErrBusy = errors.New("operação em andamento, aguarde")

// API is the part of the MoedaEstudantil API the ledger client needs.
type API interface {
	SendCoins(ctx context.Context, req moeda.SendCoinsRequest) (*moeda.Transaction, error)
	Redeem(ctx context.Context, req moeda.RedeemRequest) (*moeda.Redemption, error)

	GetProfessor(ctx context.Context, id string) (*moeda.Professor, error)
	GetStudent(ctx context.Context, id string) (*moeda.Student, error)
	GetAdvantage(ctx context.Context, id string) (*moeda.Advantage, error)
	ProfessorTransactions(ctx context.Context, professorID string) ([]moeda.Transaction, error)
	StudentTransactions(ctx context.Context, studentID string) ([]moeda.Transaction, error)
	StudentRedemptions(ctx context.Context, studentID string) ([]moeda.Redemption, error)
}

// ProfileSink receives reconciled balances, typically the session of the
// signed-in user so its persisted profile stays current.
type ProfileSink interface {
	Reconciled(role moeda.Role, id string, balance int64)
}

// Observer is told about every state change of an operation.
type Observer func(op Op, state State)

// Config configures a Client.
type Config struct {
	API        API
	View       *View
	Notifier   notify.Notifier
	Sink       ProfileSink
	Observer   Observer
	Optimistic bool
	Logger     *logging.Logger
}

// Client runs ledger mutations against the authority and keeps a View in sync.
type Client struct {
	api        API
	view       *View
	dispatch   *notify.Dispatcher
	sink       ProfileSink
	observer   Observer
	optimistic bool
	log        *logging.Logger

	gates map[Op]*gate
}

// New creates a Client.
func New(cfg Config) *Client {
	log := cfg.Logger
	if log == nil {
		log = logging.Default("ledger")
	}
	view := cfg.View
	if view == nil {
		view = NewView()
	}
	return &Client{
		api:        cfg.API,
		view:       view,
		dispatch:   notify.NewDispatcher(cfg.Notifier, log),
		sink:       cfg.Sink,
		observer:   cfg.Observer,
		optimistic: cfg.Optimistic,
		log:        log,
		gates: map[Op]*gate{
			OpSendCoins: {},
			OpRedeem:    {},
		},
	}
}

// View returns the view maintained by the client.
func (c *Client) View() *View {
	return c.view
}

// State reports the current state of op.
func (c *Client) State(op Op) State {
	return c.gates[op].current()
}

// Close waits for pending notification deliveries.
func (c *Client) Close() {
	c.dispatch.Wait()
}

func (c *Client) transition(op Op, s State) {
	c.gates[op].set(s)
	if c.observer != nil {
		c.observer(op, s)
	}
}

// =============================================================================
// SendCoins
// =============================================================================

// Transfer describes coins a professor wants to give.
type Transfer struct {
	StudentID string
	Amount    int64
	Reason    string
}

// TransferResult is the outcome of a committed transfer.
// ReconcileErr is set when the write succeeded but a refetch failed; the
// affected views are then stale until the next read.
type TransferResult struct {
	Transaction  moeda.Transaction
	Professor    *moeda.Professor
	Student      *moeda.Student
	ReconcileErr error
}

// SendCoins transfers coins from professorID to t.StudentID.
//
// An amount that is not positive or a missing student is rejected before any
// network call. On failure the server's message is returned and no local
// state changes. On success the professor and student profiles and both
// histories are refetched.
func (c *Client) SendCoins(ctx context.Context, professorID string, t Transfer) (*TransferResult, error) {
	switch {
	case t.Amount <= 0:
		return nil, moeda.ErrInvalidAmount
	case t.StudentID == "":
		return nil, moeda.ErrStudentRequired
	case t.Reason == "":
		return nil, moeda.ErrReasonRequired
	}

	g := c.gates[OpSendCoins]
	if !g.acquire() {
		return nil, ErrBusy
	}
	defer g.release()

	start := time.Now()
	c.transition(OpSendCoins, Submitting)

	var rollback []func()
	if c.optimistic {
		rollback = append(rollback,
			c.view.setProvisional(moeda.RoleProfessor, professorID, -t.Amount),
			c.view.setProvisional(moeda.RoleStudent, t.StudentID, t.Amount),
		)
	}

	tx, err := c.api.SendCoins(ctx, moeda.SendCoinsRequest{
		ProfessorID: professorID,
		StudentID:   t.StudentID,
		Amount:      t.Amount,
		Reason:      t.Reason,
	})
	if err != nil {
		for _, undo := range rollback {
			undo()
		}
		c.transition(OpSendCoins, Failed)
		c.transition(OpSendCoins, Idle)
		metrics.RecordLedgerOperation(string(OpSendCoins), "failed", time.Since(start))
		c.log.WithContext(ctx).WithError(err).WithFields(map[string]interface{}{
			"professor_id": professorID,
			"student_id":   t.StudentID,
			"amount":       t.Amount,
		}).Warn("send coins rejected")
		return nil, err
	}

	c.transition(OpSendCoins, Succeeded)
	c.transition(OpSendCoins, Reconciling)

	result := &TransferResult{Transaction: *tx}
	result.Professor, result.Student, result.ReconcileErr = c.reconcileTransfer(ctx, professorID, t.StudentID)
	c.view.dropProvisional(moeda.RoleProfessor, professorID)
	c.view.dropProvisional(moeda.RoleStudent, t.StudentID)

	c.dispatch.Dispatch(ctx, transferMessages(*tx, result.Professor, result.Student)...)

	c.transition(OpSendCoins, Idle)
	metrics.RecordLedgerOperation(string(OpSendCoins), "success", time.Since(start))
	c.log.WithContext(ctx).WithFields(map[string]interface{}{
		"transaction_id": tx.ID,
		"professor_id":   professorID,
		"student_id":     t.StudentID,
		"amount":         t.Amount,
	}).Info("coins sent")

	return result, nil
}

func (c *Client) reconcileTransfer(ctx context.Context, professorID, studentID string) (*moeda.Professor, *moeda.Student, error) {
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
		prof *moeda.Professor
		stu  *moeda.Student
	)
	fail := func(what string, err error) {
		mu.Lock()
		errs = append(errs, fmt.Errorf("refresh %s: %w", what, err))
		mu.Unlock()
	}

	wg.Add(4)
	go func() {
		defer wg.Done()
		p, err := c.api.GetProfessor(ctx, professorID)
		if err != nil {
			fail("professor", err)
			return
		}
		c.view.PutProfessor(*p)
		prof = p
		if c.sink != nil {
			c.sink.Reconciled(moeda.RoleProfessor, p.ID, p.CoinBalance)
		}
	}()
	go func() {
		defer wg.Done()
		s, err := c.api.GetStudent(ctx, studentID)
		if err != nil {
			fail("student", err)
			return
		}
		c.view.PutStudent(*s)
		stu = s
		if c.sink != nil {
			c.sink.Reconciled(moeda.RoleStudent, s.ID, s.CoinBalance)
		}
	}()
	go func() {
		defer wg.Done()
		txs, err := c.api.ProfessorTransactions(ctx, professorID)
		if err != nil {
			fail("professor history", err)
			return
		}
		c.view.putSent(professorID, txs)
	}()
	go func() {
		defer wg.Done()
		txs, err := c.api.StudentTransactions(ctx, studentID)
		if err != nil {
			fail("student history", err)
			return
		}
		c.view.putReceived(studentID, txs)
	}()
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		c.log.WithContext(ctx).WithError(err).Warn("reconciliation incomplete")
		return prof, stu, err
	}
	return prof, stu, nil
}

// =============================================================================
// RedeemAdvantage
// =============================================================================

// RedeemOptions tunes the advisory checks made before redeeming.
type RedeemOptions struct {
	// CheckBalance also refuses locally when the student's known balance is
	// below the advantage cost.
	CheckBalance bool
	// Force skips every advisory check and lets the server decide.
	Force bool
}

// RedeemResult is the outcome of a committed redemption.
type RedeemResult struct {
	Redemption   moeda.Redemption
	Student      *moeda.Student
	Advantage    *moeda.Advantage
	ReconcileErr error
}

// RedeemAdvantage claims advantageID for studentID.
//
// Unless opts.Force is set, an inactive or exhausted advantage (and, with
// opts.CheckBalance, an unaffordable one) is refused locally. The coupon code
// is issued by the server. On success the student's profile, redemption
// history and the advantage itself are refetched.
func (c *Client) RedeemAdvantage(ctx context.Context, studentID, advantageID string, opts RedeemOptions) (*RedeemResult, error) {
	if studentID == "" {
		return nil, moeda.ErrStudentRequired
	}

	g := c.gates[OpRedeem]
	if !g.acquire() {
		return nil, ErrBusy
	}
	defer g.release()

	if !opts.Force {
		if err := c.checkRedeemable(ctx, studentID, advantageID, opts.CheckBalance); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	c.transition(OpRedeem, Submitting)

	var rollback func()
	if c.optimistic {
		if adv, ok := c.view.Advantage(advantageID); ok {
			rollback = c.view.setProvisional(moeda.RoleStudent, studentID, -adv.CoinCost)
		}
	}

	red, err := c.api.Redeem(ctx, moeda.RedeemRequest{AdvantageID: advantageID, StudentID: studentID})
	if err != nil {
		if rollback != nil {
			rollback()
		}
		c.transition(OpRedeem, Failed)
		c.transition(OpRedeem, Idle)
		metrics.RecordLedgerOperation(string(OpRedeem), "failed", time.Since(start))
		c.log.WithContext(ctx).WithError(err).WithFields(map[string]interface{}{
			"student_id":   studentID,
			"advantage_id": advantageID,
		}).Warn("redemption rejected")
		return nil, err
	}

	c.transition(OpRedeem, Succeeded)
	c.transition(OpRedeem, Reconciling)

	result := &RedeemResult{Redemption: *red}
	result.Student, result.Advantage, result.ReconcileErr = c.reconcileRedemption(ctx, studentID, advantageID)
	c.view.dropProvisional(moeda.RoleStudent, studentID)

	c.dispatch.Dispatch(ctx, redemptionMessage(*red, result.Student, result.Advantage))

	c.transition(OpRedeem, Idle)
	metrics.RecordLedgerOperation(string(OpRedeem), "success", time.Since(start))
	c.log.WithContext(ctx).WithFields(map[string]interface{}{
		"redemption_id": red.ID,
		"student_id":    studentID,
		"advantage_id":  advantageID,
	}).Info("advantage redeemed")

	return result, nil
}

func (c *Client) checkRedeemable(ctx context.Context, studentID, advantageID string, checkBalance bool) error {
	adv, ok := c.view.Advantage(advantageID)
	if !ok {
		fetched, err := c.api.GetAdvantage(ctx, advantageID)
		if err != nil {
			return err
		}
		c.view.PutAdvantage(*fetched)
		adv = *fetched
	}

	switch {
	case !adv.IsActive:
		return moeda.ErrAdvantageInactive
	case adv.Exhausted():
		return moeda.ErrAdvantageExhausted
	}

	if checkBalance {
		if balance, _, known := c.view.Balance(moeda.RoleStudent, studentID); known && balance < adv.CoinCost {
			return fmt.Errorf("%w: disponível %d, necessário %d", moeda.ErrInsufficientBalance, balance, adv.CoinCost)
		}
	}
	return nil
}

func (c *Client) reconcileRedemption(ctx context.Context, studentID, advantageID string) (*moeda.Student, *moeda.Advantage, error) {
	var errs []error

	stu, err := c.api.GetStudent(ctx, studentID)
	if err != nil {
		errs = append(errs, fmt.Errorf("refresh student: %w", err))
	} else {
		c.view.PutStudent(*stu)
		if c.sink != nil {
			c.sink.Reconciled(moeda.RoleStudent, stu.ID, stu.CoinBalance)
		}
	}

	if reds, err := c.api.StudentRedemptions(ctx, studentID); err != nil {
		errs = append(errs, fmt.Errorf("refresh redemptions: %w", err))
	} else {
		c.view.putRedemptions(studentID, reds)
	}

	adv, err := c.api.GetAdvantage(ctx, advantageID)
	if err != nil {
		errs = append(errs, fmt.Errorf("refresh advantage: %w", err))
	} else {
		c.view.PutAdvantage(*adv)
	}

	if err := errors.Join(errs...); err != nil {
		c.log.WithContext(ctx).WithError(err).Warn("reconciliation incomplete")
		return stu, adv, err
	}
	return stu, adv, nil
}

// =============================================================================
// Reads
// =============================================================================

// RefreshProfessor loads a professor with their history into the view.
func (c *Client) RefreshProfessor(ctx context.Context, id string) (*moeda.Professor, error) {
	p, err := c.api.GetProfessor(ctx, id)
	if err != nil {
		return nil, err
	}
	txs, err := c.api.ProfessorTransactions(ctx, id)
	if err != nil {
		return nil, err
	}
	c.view.PutProfessor(*p)
	c.view.putSent(id, txs)
	return p, nil
}

// RefreshStudent loads a student with their histories into the view.
func (c *Client) RefreshStudent(ctx context.Context, id string) (*moeda.Student, error) {
	s, err := c.api.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	txs, err := c.api.StudentTransactions(ctx, id)
	if err != nil {
		return nil, err
	}
	reds, err := c.api.StudentRedemptions(ctx, id)
	if err != nil {
		return nil, err
	}
	c.view.PutStudent(*s)
	c.view.putReceived(id, txs)
	c.view.putRedemptions(id, reds)
	return s, nil
}
