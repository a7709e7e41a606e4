package monitor

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/mfeld/queuebridge/internal/ami"
	"github.com/mfeld/queuebridge/internal/metrics"
	"github.com/mfeld/queuebridge/internal/notify"
	"github.com/mfeld/queuebridge/internal/storage"
	"github.com/mfeld/queuebridge/internal/types"
	"github.com/mfeld/queuebridge/internal/vars"
	"github.com/rs/zerolog"
)

// Switch event kinds this service handles. Exact strings as emitted by the
// manager interface.
const (
	EventJoin               = "Join"
	EventQueueCallerAbandon = "QueueCallerAbandon"
	EventAgentCalled        = "AgentCalled"
	EventAgentRingNoAnswer  = "AgentRingNoAnswer"
	EventAgentConnect       = "AgentConnect"
	EventAgentComplete      = "AgentComplete"
	EventQueueMemberAdded   = "QueueMemberAdded"
	EventQueueMemberRemoved = "QueueMemberRemoved"
	EventQueueMemberPaused  = "QueueMemberPaused"
	EventQueueMemberStatus  = "QueueMemberStatus"
	EventUserEvent          = "UserEvent"

	// UserEvent sub-kind carried in the userevent field.
	userEventCancel = "Cancel"
)

// Notification kinds. The notifier turns spaces into underscores and adds
// the queue namespace, so "member alert" reaches the bus as
// "queue.member_alert".
const (
	NotifyEnter          = "enter"
	NotifyExit           = "exit"
	NotifyMemberAlert    = "member alert"
	NotifyMemberCancel   = "member cancel"
	NotifyMemberConnect  = "member connect"
	NotifyMemberComplete = "member complete"
	NotifyMemberLogin    = "member login"
	NotifyMemberLogout   = "member logout"
	NotifyMemberPause    = "member pause"
	NotifyMemberState    = "member state"
)

// Abandon and ring-no-answer reason codes, from the switch's hangup-cause
// vocabulary.
const (
	reasonAbandoned = 0
	reasonNoAnswer  = 19
)

// memberNumberRe captures a member's numeric extension: the first run of
// digits in a free-text location such as "SIP/1001-00000a1b" or
// "Agent/1001@default".
var memberNumberRe = regexp.MustCompile(`([0-9]+)@?`)

// errNoMemberNumber is fatal for the event carrying the field: a location
// that names no extension cannot be attributed to an agent.
var errNoMemberNumber = errors.New("no extension digits in member location")

// Monitor owns the event handlers. It consults and updates the state store
// so that denormalized events (an agent connect carries only the caller's
// opaque id) can be enriched before the notification is built.
type Monitor struct {
	store       storage.Store
	notifier    *notify.Notifier
	extractor   *vars.Extractor
	rosterQueue string
	logger      zerolog.Logger
}

// New creates a Monitor. rosterQueue names the staff-roster queue whose
// membership changes signal agent login/logout rather than real queue state.
func New(store storage.Store, notifier *notify.Notifier, extractor *vars.Extractor, rosterQueue string, logger zerolog.Logger) *Monitor {
	return &Monitor{
		store:       store,
		notifier:    notifier,
		extractor:   extractor,
		rosterQueue: rosterQueue,
		logger:      logger,
	}
}

// RegisterHandlers binds every handled event kind on the router.
func (m *Monitor) RegisterHandlers(r *Router) {
	r.Register(EventJoin, m.handleJoin)
	r.Register(EventQueueCallerAbandon, m.handleAbandon)
	r.Register(EventAgentCalled, m.handleAgentCalled)
	r.Register(EventAgentRingNoAnswer, m.handleRingNoAnswer)
	r.Register(EventAgentConnect, m.handleAgentConnect)
	r.Register(EventAgentComplete, m.handleAgentComplete)
	r.Register(EventQueueMemberAdded, m.handleMemberAdded)
	r.Register(EventQueueMemberRemoved, m.handleMemberRemoved)
	r.Register(EventQueueMemberPaused, m.handleMemberPaused)
	r.Register(EventQueueMemberStatus, m.handleMemberStatus)
	r.Register(EventUserEvent, m.handleUserEvent)
}

// callRef is the resolved identity of the call an event refers to:
// correlation variables when the dial plan attached them, raw event fields
// otherwise.
type callRef struct {
	queueID string
	uuid    string
	vars    map[string]string
}

func (m *Monitor) resolveCall(evt ami.Event) (callRef, error) {
	cv, err := m.extractor.Extract(evt.Get("variable"))
	if err != nil {
		return callRef{}, err
	}

	ref := callRef{vars: cv}
	ref.queueID = firstNonEmpty(cv["queue_name"], evt.Get("queue"))
	ref.uuid = firstNonEmpty(cv["caller_id"], evt.Get("uniqueid"))
	return ref, nil
}

func (ref callRef) queue() Queue {
	return Queue{
		ID:     ref.queueID,
		Name:   nullable(firstNonEmpty(ref.vars["queue_name"], ref.queueID)),
		Number: nullable(ref.vars["queue_number"]),
	}
}

func (ref callRef) called() Called {
	return Called{Number: nullable(ref.vars["called_number"])}
}

// memberRef is the resolved identity of the agent an event refers to.
type memberRef struct {
	uuid   string
	name   string
	number *string
}

// resolveMember derives the agent identity from the event. The numeric
// extension comes from the first free-text location field present; a present
// field without digits fails the event, a wholly absent field leaves the
// number unknown.
func resolveMember(evt ami.Event) (memberRef, error) {
	ref := memberRef{
		uuid: firstNonEmpty(evt.Get("member"), evt.Get("membername")),
		name: firstNonEmpty(evt.Get("membername"), evt.Get("agentname")),
	}

	location := firstNonEmpty(evt.Get("location"), evt.Get("agentcalled"), evt.Get("membername"))
	number, err := memberNumber(location)
	if err != nil {
		return memberRef{}, err
	}
	ref.number = number
	return ref, nil
}

func (ref memberRef) payload() Member {
	return Member{
		ID:     nullable(ref.uuid),
		Name:   nullable(ref.name),
		Number: ref.number,
	}
}

// memberNumber extracts the extension from a free-text location.
func memberNumber(location string) (*string, error) {
	if location == "" {
		return nil, nil
	}
	match := memberNumberRe.FindStringSubmatch(location)
	if match == nil {
		return nil, fmt.Errorf("%w: %q", errNoMemberNumber, location)
	}
	return &match[1], nil
}

// lookupCaller returns the tracked record for the call, or a best-effort
// record fabricated from raw event fields when the join event was lost.
// A missing side-state record must never suppress a notification.
func (m *Monitor) lookupCaller(ctx context.Context, ref callRef, evt ami.Event) (types.QueueCaller, error) {
	caller, err := m.store.GetCaller(ctx, ref.queueID, ref.uuid)
	if err == nil {
		return caller, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		metrics.Get().RecordStoreError()
		return types.QueueCaller{}, err
	}

	m.logger.Debug().
		Str("queue", ref.queueID).
		Str("uuid", ref.uuid).
		Msg("caller not tracked, using inline event data")

	return types.QueueCaller{
		QueueID: ref.queueID,
		UUID:    ref.uuid,
		Name:    firstNonEmpty(ref.vars["caller_name"], evt.Get("calleridname")),
		Number:  firstNonEmpty(ref.vars["caller_number"], evt.Get("calleridnum")),
	}, nil
}

// Mutation helpers. Not-found is the expected outcome of duplicate or
// out-of-order events and is swallowed; any other store failure drops the
// event.

func (m *Monitor) updateCaller(ctx context.Context, queueID, uuid string, upd types.CallerUpdate) error {
	_, err := m.store.UpdateCaller(ctx, queueID, uuid, upd)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		metrics.Get().RecordStoreError()
		return err
	}
	return nil
}

func (m *Monitor) deleteCaller(ctx context.Context, queueID, uuid string) error {
	err := m.store.DeleteCaller(ctx, queueID, uuid)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		metrics.Get().RecordStoreError()
		return err
	}
	return nil
}

func (m *Monitor) updateMember(ctx context.Context, queueID, uuid string, upd types.MemberUpdate) error {
	_, err := m.store.UpdateMember(ctx, queueID, uuid, upd)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		metrics.Get().RecordStoreError()
		return err
	}
	return nil
}

func (m *Monitor) deleteMember(ctx context.Context, queueID, uuid string) error {
	err := m.store.DeleteMember(ctx, queueID, uuid)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		metrics.Get().RecordStoreError()
		return err
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func optInt(evt ami.Event, key string) *int {
	if !evt.Has(key) {
		return nil
	}
	v := evt.GetInt(key)
	return &v
}
