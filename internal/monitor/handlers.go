package monitor

import (
	"context"
	"errors"

	"github.com/mfeld/queuebridge/internal/ami"
	"github.com/mfeld/queuebridge/internal/metrics"
	"github.com/mfeld/queuebridge/internal/storage"
	"github.com/mfeld/queuebridge/internal/types"
)

// handleJoin tracks a caller entering a queue and announces it. A duplicate
// join for an already-tracked caller refreshes the record instead of
// failing: the switch re-emits joins after manager reconnects.
func (m *Monitor) handleJoin(ctx context.Context, evt ami.Event) error {
	ref, err := m.resolveCall(evt)
	if err != nil {
		return err
	}

	caller := types.QueueCaller{
		QueueID:  ref.queueID,
		UUID:     ref.uuid,
		Name:     firstNonEmpty(ref.vars["caller_name"], evt.Get("calleridname")),
		Number:   firstNonEmpty(ref.vars["caller_number"], evt.Get("calleridnum")),
		Position: optInt(evt, "position"),
		Status:   types.CallerWaiting,
	}

	created, err := m.store.CreateCaller(ctx, caller)
	switch {
	case err == nil:
		caller = created
	case errors.Is(err, storage.ErrAlreadyExists):
		updated, uerr := m.store.UpdateCaller(ctx, ref.queueID, ref.uuid, types.CallerUpdate{
			Name:     &caller.Name,
			Number:   &caller.Number,
			Position: caller.Position,
			Status:   types.CallerStatusPtr(types.CallerWaiting),
		})
		if uerr == nil {
			caller = updated
		}
		// Not-found here means the record vanished between the two calls;
		// the inline data is still good enough to announce.
	default:
		metrics.Get().RecordStoreError()
		return err
	}

	return m.notifier.Notify(NotifyEnter, EnterPayload{
		Caller: callerRecord(caller),
		Queue:  ref.queue(),
	})
}

// handleAbandon announces a caller hanging up while waiting and drops the
// tracked record.
func (m *Monitor) handleAbandon(ctx context.Context, evt ami.Event) error {
	ref, err := m.resolveCall(evt)
	if err != nil {
		return err
	}

	caller, err := m.lookupCaller(ctx, ref, evt)
	if err != nil {
		return err
	}
	if err := m.deleteCaller(ctx, ref.queueID, ref.uuid); err != nil {
		return err
	}

	return m.notifier.Notify(NotifyExit, ExitPayload{
		Caller: callerRecord(caller),
		Queue:  ref.queue(),
		Reason: reasonAbandoned,
	})
}

// handleAgentCalled pairs an agent with a waiting caller: the caller moves
// to alerting and remembers which member is being offered the call.
func (m *Monitor) handleAgentCalled(ctx context.Context, evt ami.Event) error {
	ref, err := m.resolveCall(evt)
	if err != nil {
		return err
	}
	member, err := resolveMember(evt)
	if err != nil {
		return err
	}

	caller, err := m.lookupCaller(ctx, ref, evt)
	if err != nil {
		return err
	}

	if err := m.updateCaller(ctx, ref.queueID, ref.uuid, types.CallerUpdate{
		Status:     types.CallerStatusPtr(types.CallerAlerting),
		MemberUUID: &member.uuid,
	}); err != nil {
		return err
	}
	if err := m.updateMember(ctx, ref.queueID, member.uuid, types.MemberUpdate{
		Status: types.MemberStatusPtr(types.MemberAlerting),
	}); err != nil {
		return err
	}

	return m.notifier.Notify(NotifyMemberAlert, MemberAlertPayload{
		Called: ref.called(),
		Caller: callerRef(caller),
		Queue:  ref.queue(),
		Member: member.payload(),
	})
}

// handleRingNoAnswer announces an agent letting the offered call ring out.
// No state changes: the switch will re-offer the call, and the caller is
// still alerting from its point of view until the next event says otherwise.
func (m *Monitor) handleRingNoAnswer(ctx context.Context, evt ami.Event) error {
	ref, err := m.resolveCall(evt)
	if err != nil {
		return err
	}
	member, err := resolveMember(evt)
	if err != nil {
		return err
	}

	return m.notifier.Notify(NotifyMemberCancel, MemberCancelPayload{
		Queue:  ref.queue(),
		Member: member.payload(),
		Reason: reasonNoAnswer,
	})
}

// handleAgentConnect announces an agent answering. The caller record is
// retired: once connected it is no longer queue state.
func (m *Monitor) handleAgentConnect(ctx context.Context, evt ami.Event) error {
	ref, err := m.resolveCall(evt)
	if err != nil {
		return err
	}
	member, err := resolveMember(evt)
	if err != nil {
		return err
	}

	caller, err := m.lookupCaller(ctx, ref, evt)
	if err != nil {
		return err
	}

	if err := m.updateCaller(ctx, ref.queueID, ref.uuid, types.CallerUpdate{
		Status: types.CallerStatusPtr(types.CallerConnected),
	}); err != nil {
		return err
	}
	if err := m.deleteCaller(ctx, ref.queueID, ref.uuid); err != nil {
		return err
	}
	if err := m.updateMember(ctx, ref.queueID, member.uuid, types.MemberUpdate{
		Status: types.MemberStatusPtr(types.MemberAvailable),
	}); err != nil {
		return err
	}

	return m.notifier.Notify(NotifyMemberConnect, MemberConnectPayload{
		Called: ref.called(),
		Caller: callerRef(caller),
		Queue:  ref.queue(),
		Member: member.payload(),
	})
}

// handleAgentComplete announces the end of a handled call and returns the
// member to available.
func (m *Monitor) handleAgentComplete(ctx context.Context, evt ami.Event) error {
	ref, err := m.resolveCall(evt)
	if err != nil {
		return err
	}
	member, err := resolveMember(evt)
	if err != nil {
		return err
	}

	if err := m.updateMember(ctx, ref.queueID, member.uuid, types.MemberUpdate{
		Status: types.MemberStatusPtr(types.MemberAvailable),
	}); err != nil {
		return err
	}

	return m.notifier.Notify(NotifyMemberComplete, MemberCompletePayload{
		Queue:  ref.queue(),
		Member: member.payload(),
	})
}

// handleMemberAdded either announces an agent login (the roster queue is a
// pure presence signal, never stored) or starts tracking the member in a
// real queue (stored, never announced).
func (m *Monitor) handleMemberAdded(ctx context.Context, evt ami.Event) error {
	queueID := evt.Get("queue")
	member, err := resolveMember(evt)
	if err != nil {
		return err
	}

	if queueID == m.rosterQueue {
		return m.notifier.Notify(NotifyMemberLogin, MemberLoginPayload{
			Queue:  Queue{ID: queueID, Name: nullable(queueID)},
			Member: member.payload(),
		})
	}

	record := types.QueueMember{
		QueueID: queueID,
		UUID:    member.uuid,
		Status:  types.MemberAvailable,
	}
	if member.number != nil {
		record.Number = *member.number
	}

	_, err = m.store.CreateMember(ctx, record)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrAlreadyExists):
		// Re-join of a member we already track; refresh the record.
		return m.updateMember(ctx, queueID, member.uuid, types.MemberUpdate{
			Number: member.number,
			Status: types.MemberStatusPtr(types.MemberAvailable),
		})
	default:
		metrics.Get().RecordStoreError()
		return err
	}
	return nil
}

// handleMemberRemoved mirrors handleMemberAdded: logout notification for the
// roster queue, silent record cleanup for real queues.
func (m *Monitor) handleMemberRemoved(ctx context.Context, evt ami.Event) error {
	queueID := evt.Get("queue")
	member, err := resolveMember(evt)
	if err != nil {
		return err
	}

	if queueID == m.rosterQueue {
		return m.notifier.Notify(NotifyMemberLogout, MemberLogoutPayload{
			Queue:  Queue{ID: queueID, Name: nullable(queueID)},
			Member: member.payload(),
		})
	}

	return m.deleteMember(ctx, queueID, member.uuid)
}

// handleMemberPaused records the pause reason and announces it. Unpausing
// records zero.
func (m *Monitor) handleMemberPaused(ctx context.Context, evt ami.Event) error {
	queueID := evt.Get("queue")
	member, err := resolveMember(evt)
	if err != nil {
		return err
	}

	paused := 0
	if evt.GetInt("paused") != 0 {
		paused = evt.GetInt("reason")
		if paused == 0 {
			paused = evt.GetInt("paused")
		}
	}

	if err := m.updateMember(ctx, queueID, member.uuid, types.MemberUpdate{
		Paused: &paused,
	}); err != nil {
		return err
	}

	return m.notifier.Notify(NotifyMemberPause, MemberPausePayload{
		Queue:  Queue{ID: queueID, Name: nullable(queueID)},
		Member: member.payload(),
		Reason: paused,
	})
}

// handleMemberStatus records a device-state change and announces it. Only
// the member's name travels on the notification; downstream sinks key this
// event on the queue.
func (m *Monitor) handleMemberStatus(ctx context.Context, evt ami.Event) error {
	queueID := evt.Get("queue")
	member, err := resolveMember(evt)
	if err != nil {
		return err
	}
	status := evt.GetInt("status")

	if err := m.updateMember(ctx, queueID, member.uuid, types.MemberUpdate{
		Status: types.MemberStatusPtr(types.MemberStatus(status)),
	}); err != nil {
		return err
	}

	return m.notifier.Notify(NotifyMemberState, MemberStatePayload{
		Queue:  Queue{ID: queueID, Name: nullable(queueID)},
		Member: Member{Name: nullable(member.name)},
		Status: status,
	})
}

// handleUserEvent sub-dispatches dial-plan user events. Only the Cancel
// event is handled: it marks both sides of an offered call cancelled,
// best effort, and announces the cancellation.
func (m *Monitor) handleUserEvent(ctx context.Context, evt ami.Event) error {
	if evt.Get("userevent") != userEventCancel {
		return nil
	}

	ref, err := m.resolveCall(evt)
	if err != nil {
		return err
	}
	member, err := resolveMember(evt)
	if err != nil {
		return err
	}

	if err := m.updateCaller(ctx, ref.queueID, ref.uuid, types.CallerUpdate{
		Status: types.CallerStatusPtr(types.CallerCancelled),
	}); err != nil {
		return err
	}
	if member.uuid != "" {
		if err := m.updateMember(ctx, ref.queueID, member.uuid, types.MemberUpdate{
			Status: types.MemberStatusPtr(types.MemberCancelled),
		}); err != nil {
			return err
		}
	}

	return m.notifier.Notify(NotifyMemberCancel, MemberCancelPayload{
		Queue:  ref.queue(),
		Member: member.payload(),
		Reason: evt.GetInt("reason"),
	})
}
