// Package rateshop runs the carrier rate-shopping flow for one shipment.
// A Machine is created when the rate dialog opens and discarded when it
// closes; nothing survives across opens. While fetching, the machine polls
// the workflow's fetched-rates query once a second and tracks each carrier
// independently, so one slow carrier shows as retrying rather than failing
// the whole round.
package rateshop

import (
	"context"
	"sync"
	"time"

	"github.com/tempest-ops/opsdeck/internal/client"
	"github.com/tempest-ops/opsdeck/internal/errors"
	"github.com/tempest-ops/opsdeck/internal/poller"
)

// State is the machine's lifecycle state.
type State string

const (
	StateNotStarted State = "NOT_STARTED"
	StateFetching   State = "FETCHING"
	StateCompleted  State = "COMPLETED"
	StateFailed     State = "FAILED"
)

// Carrier status values as reported by the workflow.
const (
	CarrierPending   = "PENDING"
	CarrierFetching  = "FETCHING"
	CarrierCompleted = "COMPLETED"
	CarrierFailed    = "FAILED"
)

// Carriers quoted on every round, in display order.
var Carriers = []string{"USPS", "UPS", "FEDEX"}

// retryingAfterPolls is how many consecutive polls a carrier may sit in
// FETCHING before the view shows a retrying affordance.
const retryingAfterPolls = 2

// DefaultInterval is the fetched-rates polling period.
const DefaultInterval = time.Second

// CarrierView is the per-carrier state rendered in the dialog.
type CarrierView struct {
	Carrier string
	Status  string
	// Retrying is set when the carrier has stayed in FETCHING across
	// consecutive polls. It is an affordance, never an error.
	Retrying bool
}

// View is an immutable snapshot of the machine for rendering.
type View struct {
	State        State
	Carriers     []CarrierView
	Rates        []client.CarrierRate
	Selected     *client.CarrierRate
	ErrorMessage string
	// PollErr carries a transient fetch failure; polling continues.
	PollErr error
}

// Options configures a Machine.
type Options struct {
	WaveID     int64
	ShipmentID int64
	// Fetch queries the workflow's rate-shopping state. Required.
	Fetch func(ctx context.Context, waveID, shipmentID int64) (client.FetchedRates, error)
	// RequireAllCarriers fails the round unless every carrier quoted.
	// When false, a round where at least one carrier quoted completes and
	// the missing carriers stay marked failed.
	RequireAllCarriers bool
	// Interval overrides DefaultInterval when positive.
	Interval time.Duration
	// Timeout fails the round when fetching exceeds it. Zero disables.
	Timeout time.Duration
	// OnUpdate is invoked after every state change.
	OnUpdate func(View)
	Clock    poller.Clock
	Visible  poller.Visibility
}

// Machine drives rate shopping for one shipment.
type Machine struct {
	opts  Options
	clock poller.Clock

	mu        sync.Mutex
	state     State
	rates     []client.CarrierRate
	selected  *client.CarrierRate
	errMsg    string
	pollErr   error
	carriers  map[string]string
	fetchPoll map[string]int // consecutive polls spent in FETCHING
	startedAt time.Time

	poll *poller.Poller[client.FetchedRates]
}

// New builds a Machine in NOT_STARTED.
func New(opts Options) (*Machine, error) {
	if opts.Fetch == nil {
		return nil, errors.New("rateshop: Fetch is required")
	}
	if opts.WaveID <= 0 || opts.ShipmentID <= 0 {
		return nil, errors.New("rateshop: wave and shipment ids are required")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	clock := opts.Clock
	if clock == nil {
		clock = poller.SystemClock{}
	}

	m := &Machine{opts: opts, clock: clock, state: StateNotStarted}
	m.resetCarriers()
	return m, nil
}

func (m *Machine) resetCarriers() {
	m.carriers = make(map[string]string, len(Carriers))
	m.fetchPoll = make(map[string]int, len(Carriers))
	for _, c := range Carriers {
		m.carriers[c] = CarrierPending
	}
}

// Start moves the machine to FETCHING and begins polling. The caller is
// expected to have dispatched the fetch-rates signal first. Starting a
// machine that is not in NOT_STARTED is an error; a FAILED machine must be
// reset through Retry.
func (m *Machine) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateNotStarted {
		m.mu.Unlock()
		return errors.Newf("rateshop: cannot start from %s", string(m.state))
	}
	m.state = StateFetching
	m.startedAt = m.clock.Now()
	m.mu.Unlock()

	p, err := poller.New(poller.Options[client.FetchedRates]{
		Fetch: func(ctx context.Context) (client.FetchedRates, error) {
			return m.opts.Fetch(ctx, m.opts.WaveID, m.opts.ShipmentID)
		},
		Interval:   m.opts.Interval,
		ShouldStop: func(client.FetchedRates) bool { return m.terminal() },
		OnUpdate:   m.onPoll,
		Clock:      m.clock,
		Visible:    m.opts.Visible,
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.poll = p
	m.mu.Unlock()

	m.notify()
	p.Start(ctx)
	return nil
}

// Refresh requests an immediate poll, outside the regular schedule.
func (m *Machine) Refresh() {
	m.mu.Lock()
	p := m.poll
	m.mu.Unlock()
	if p != nil {
		p.Refresh()
	}
}

// Stop halts polling. Called when the dialog closes.
func (m *Machine) Stop() {
	m.mu.Lock()
	p := m.poll
	m.mu.Unlock()
	if p != nil {
		p.Stop()
	}
}

// Retry resets a FAILED machine back to NOT_STARTED so the operator can
// trigger a fresh round. Manual only; the machine never retries itself.
func (m *Machine) Retry() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateFailed {
		return errors.Newf("rateshop: retry only applies to a failed round, state is %s", string(m.state))
	}
	m.state = StateNotStarted
	m.rates = nil
	m.selected = nil
	m.errMsg = ""
	m.pollErr = nil
	m.poll = nil
	m.resetCarriers()
	return nil
}

// Select picks one rate. Only valid once the round completed, and the rate
// must be one of the quoted options. Selecting again replaces the previous
// selection.
func (m *Machine) Select(rate client.CarrierRate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateCompleted {
		return errors.ErrNoSelection
	}
	for _, r := range m.rates {
		if r.Carrier == rate.Carrier && r.ServiceLevel == rate.ServiceLevel {
			selected := r
			m.selected = &selected
			return nil
		}
	}
	return errors.Newf("rateshop: %s %s is not a quoted rate", rate.Carrier, rate.ServiceLevel)
}

// Selected returns the chosen rate, or nil.
func (m *Machine) Selected() *client.CarrierRate {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selected == nil {
		return nil
	}
	s := *m.selected
	return &s
}

// View returns a render snapshot.
func (m *Machine) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewLocked()
}

func (m *Machine) viewLocked() View {
	v := View{
		State:        m.state,
		Rates:        append([]client.CarrierRate(nil), m.rates...),
		ErrorMessage: m.errMsg,
		PollErr:      m.pollErr,
	}
	if m.selected != nil {
		s := *m.selected
		v.Selected = &s
	}
	for _, c := range Carriers {
		v.Carriers = append(v.Carriers, CarrierView{
			Carrier:  c,
			Status:   m.carriers[c],
			Retrying: m.carriers[c] == CarrierFetching && m.fetchPoll[c] >= retryingAfterPolls,
		})
	}
	return v
}

func (m *Machine) terminal() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateCompleted || m.state == StateFailed
}

func (m *Machine) onPoll(snap poller.Snapshot[client.FetchedRates]) {
	m.mu.Lock()

	if snap.Err != nil {
		// Transient fetch failure: surface it, keep polling.
		m.pollErr = snap.Err
		m.mu.Unlock()
		m.notify()
		return
	}
	m.pollErr = nil
	m.apply(snap.Data)
	m.mu.Unlock()

	m.notify()
}

// apply folds one fetched-rates response into the machine. Caller holds mu.
func (m *Machine) apply(r client.FetchedRates) {
	if m.state != StateFetching {
		return
	}

	m.setCarrier("USPS", r.USPSStatus)
	m.setCarrier("UPS", r.UPSStatus)
	m.setCarrier("FEDEX", r.FedExStatus)
	m.rates = r.Rates

	switch r.Status {
	case "COMPLETED":
		if m.opts.RequireAllCarriers && !m.allCarriers(CarrierCompleted) {
			m.fail(r.ErrorMessage, "not all carriers returned rates")
			return
		}
		m.state = StateCompleted
	case "FAILED":
		if !m.opts.RequireAllCarriers && len(r.Rates) > 0 {
			// Partial success policy: keep the quotes we got.
			m.state = StateCompleted
			return
		}
		m.fail(r.ErrorMessage, "rate fetch failed")
	default:
		if m.opts.Timeout > 0 && m.clock.Now().Sub(m.startedAt) > m.opts.Timeout {
			m.fail("", "rate fetch timed out")
		}
	}
}

func (m *Machine) setCarrier(name, status string) {
	if status == "" {
		return
	}
	if status == CarrierFetching && m.carriers[name] == CarrierFetching {
		m.fetchPoll[name]++
	} else if status != CarrierFetching {
		m.fetchPoll[name] = 0
	}
	m.carriers[name] = status
}

func (m *Machine) allCarriers(status string) bool {
	for _, c := range Carriers {
		if m.carriers[c] != status {
			return false
		}
	}
	return true
}

func (m *Machine) fail(backendMsg, fallback string) {
	m.state = StateFailed
	if backendMsg != "" {
		m.errMsg = backendMsg
	} else {
		m.errMsg = fallback
	}
}

func (m *Machine) notify() {
	if m.opts.OnUpdate == nil {
		return
	}
	m.mu.Lock()
	v := m.viewLocked()
	m.mu.Unlock()
	m.opts.OnUpdate(v)
}
