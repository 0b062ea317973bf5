package dashboard

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"gestor-pelada/gestor/internal/common"
	"gestor-pelada/gestor/internal/logging"
	"gestor-pelada/gestor/internal/metrics"
	"gestor-pelada/gestor/internal/models/entities"
	"gestor-pelada/gestor/internal/providers"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrSuperseded is returned by a load whose result was discarded because a
// newer load started before it finished.
var ErrSuperseded = errors.New("dashboard load superseded")

const (
	outcomeOK         = "ok"
	outcomePartial    = "partial"
	outcomeFailed     = "failed"
	outcomeSuperseded = "superseded"
)

// GroupLookup resolves a group id from the signed-in user's group list.
type GroupLookup interface {
	Group(groupID string) (entities.Group, bool)
}

// Orchestrator runs the dashboard pipeline for the selected group and
// publishes the resulting View. Only the most recently started run publishes.
type Orchestrator struct {
	data    providers.DataProvider
	groups  GroupLookup
	userID  func() string
	gate    *common.BusyGate
	metrics *metrics.MetricsRegistry

	mu        sync.Mutex
	version   uint64
	groupID   string
	cancel    context.CancelFunc
	listeners map[int]func(View)
	nextID    int

	view atomic.Pointer[View]
}

// NewOrchestrator wires the pipeline. gate and metricsReg may be nil.
func NewOrchestrator(data providers.DataProvider, groups GroupLookup, userID func() string, gate *common.BusyGate, metricsReg *metrics.MetricsRegistry) *Orchestrator {
	if gate == nil {
		gate = common.NewBusyGate()
	}
	if metricsReg == nil {
		metricsReg = metrics.Nop()
	}
	o := &Orchestrator{
		data:      data,
		groups:    groups,
		userID:    userID,
		gate:      gate,
		metrics:   metricsReg,
		listeners: make(map[int]func(View)),
	}
	o.view.Store(&View{})
	return o
}

// View returns the last published view.
func (o *Orchestrator) View() View {
	return *o.view.Load()
}

// GroupID is the group of the most recently started load.
func (o *Orchestrator) GroupID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.groupID
}

func (o *Orchestrator) Subscribe(fn func(View)) func() {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.listeners[id] = fn
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		delete(o.listeners, id)
		o.mu.Unlock()
	}
}

// LoadForGroup runs the pipeline for groupID, cancelling any run in flight.
// The returned error is the first failure of the run; the view is still
// published with whatever could be loaded. A run overtaken by a newer one
// returns ErrSuperseded and publishes nothing.
func (o *Orchestrator) LoadForGroup(ctx context.Context, groupID string) (View, error) {
	o.mu.Lock()
	o.version++
	version := o.version
	if o.cancel != nil {
		o.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.groupID = groupID
	o.mu.Unlock()
	defer cancel()

	if groupID == "" {
		view := View{Version: version, LoadedAt: time.Now()}
		if !o.publish(version, view) {
			return View{}, ErrSuperseded
		}
		return view, nil
	}

	end := o.gate.BeginPipeline()
	defer end()

	runID := uuid.NewString()
	log := logging.With("dashboard", "run_id", runID, "group_id", groupID, "version", version)
	log.Debugw("Dashboard pipeline started")

	start := time.Now()
	view, outcome, err := o.run(runCtx, groupID, version)
	o.metrics.PipelineDuration.Observe(time.Since(start).Seconds())

	if !o.publish(version, view) {
		o.metrics.PipelineRunsTotal.WithLabelValues(outcomeSuperseded).Inc()
		o.metrics.PipelineSupersededTotal.Inc()
		log.Debugw("Dashboard pipeline superseded")
		return View{}, ErrSuperseded
	}

	o.metrics.PipelineRunsTotal.WithLabelValues(outcome).Inc()
	if err != nil {
		log.Warnw("Dashboard pipeline finished with errors", "outcome", outcome, "error", err.Error())
	} else {
		log.Debugw("Dashboard pipeline finished", "events", len(view.Events), "queue", len(view.Queue))
	}
	return view, err
}

// Refresh re-runs the pipeline for the current group.
func (o *Orchestrator) Refresh(ctx context.Context) (View, error) {
	return o.LoadForGroup(ctx, o.GroupID())
}

// Reset cancels any run in flight and publishes an empty view.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	o.version++
	version := o.version
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.groupID = ""
	o.mu.Unlock()

	o.publish(version, View{Version: version})
}

// publish stores view and notifies listeners if version is still the latest.
func (o *Orchestrator) publish(version uint64, view View) bool {
	o.mu.Lock()
	if version != o.version {
		o.mu.Unlock()
		return false
	}
	o.view.Store(&view)
	ids := make([]int, 0, len(o.listeners))
	for id := range o.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(View), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, o.listeners[id])
	}
	o.mu.Unlock()

	for _, fn := range fns {
		fn(view)
	}
	return true
}

func (o *Orchestrator) run(ctx context.Context, groupID string, version uint64) (View, string, error) {
	userID := o.userID()
	view := View{GroupID: groupID, Version: version, LoadedAt: time.Now()}
	if group, ok := o.groups.Group(groupID); ok {
		view.Group = &group
		view.IsAdmin = group.IsAdmin(userID)
	}

	events, err := o.data.ListEvents(ctx, groupID)
	if err != nil {
		notice := providers.UserMessage(err)
		previous := o.View()
		if previous.GroupID == groupID {
			previous.Version = version
			previous.Notice = notice
			return previous, outcomeFailed, err
		}
		view.Notice = notice
		return view, outcomeFailed, err
	}
	SortEvents(events)
	view.Events = events
	view.ActiveEvent = ActiveEvent(events)

	outcome := outcomeOK
	var firstErr error

	if view.ActiveEvent != nil {
		confirmation, queue, err := o.loadAttendance(ctx, view.ActiveEvent.ID, userID)
		if err != nil {
			outcome, firstErr = outcomePartial, err
			view.Notice = providers.UserMessage(err)
		} else {
			view.MyConfirmation = confirmation
			view.Queue = queue
		}
	}

	if view.IsAdmin {
		members, err := o.data.ListMembers(ctx, groupID)
		if err != nil {
			outcome = outcomePartial
			if firstErr == nil {
				firstErr = err
				view.Notice = providers.UserMessage(err)
			}
		} else {
			SortMembers(members)
			view.Members = members
		}
	}

	return view, outcome, firstErr
}

// loadAttendance fetches the caller's confirmation and the event queue
// concurrently. Either failure fails both.
func (o *Orchestrator) loadAttendance(ctx context.Context, eventID, userID string) (*entities.Confirmation, []entities.QueueEntry, error) {
	var (
		confirmation *entities.Confirmation
		queue        []entities.QueueEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	if userID != "" {
		g.Go(func() error {
			c, err := o.data.GetConfirmation(gctx, eventID, userID)
			confirmation = c
			return err
		})
	}
	g.Go(func() error {
		q, err := o.data.ListQueue(gctx, eventID)
		queue = q
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	SortQueue(queue)
	return confirmation, queue, nil
}
