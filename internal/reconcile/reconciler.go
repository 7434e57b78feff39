// Package reconcile maintains the correspondence between inbound messages
// and the outbound replies they produced, and aligns prior replies with
// the reply list produced for an edited or deleted inbound message.
package reconcile

import (
	"context"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/tutorbot/tutor/internal/history"
	"github.com/tutorbot/tutor/pkg/reply"
)

const lockShards = 64

// Reconciler applies post/update/delete actions against a Sink so that the
// outbound replies for an inbound message always match its latest known
// text. All operations on the same inbound identity are serialized; the
// before/after comparison is only correct when applied in
// platform-delivered order.
type Reconciler struct {
	history history.Store
	logger  *slog.Logger
	locks   [lockShards]sync.Mutex
}

// New creates a Reconciler over the given history store.
func New(store history.Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		history: store,
		logger:  logger.With("component", "reconcile"),
	}
}

func (r *Reconciler) lockFor(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &r.locks[h.Sum32()%lockShards]
}

// PostNew posts the replies for a fresh inbound message and records the
// resulting outbound refs against it. A failed post is logged and
// contributes no ref; posting is at-least-once, reconciliation on later
// edits is what keeps the correspondence honest.
func (r *Reconciler) PostNew(ctx context.Context, inbound reply.MessageRef, replies []reply.Reply, sink Sink) {
	if len(replies) == 0 {
		return
	}
	mu := r.lockFor(inbound.Key())
	mu.Lock()
	defer mu.Unlock()

	for _, rep := range replies {
		ref, err := sink.Post(ctx, inbound.Channel, inbound.ThreadID, rep)
		if err != nil {
			r.logger.Error("post failed", "channel", inbound.Channel, "error", err)
			continue
		}
		r.history.Append(inbound, ref)
	}
}

// OnEdit reconciles the replies for an edited inbound message. When the
// message is untracked nothing happens and interpret is never called.
// Otherwise both lists are walked by positional index: matching indexes
// update in place, trailing new replies are posted, trailing stale replies
// are deleted. Sink failures are logged per index and reconciliation
// continues; a failed post contributes no ref, a failed update keeps the
// old ref, a failed delete drops the ref anyway.
func (r *Reconciler) OnEdit(ctx context.Context, inbound reply.MessageRef, interpret func(context.Context) []reply.Reply, sink Sink) {
	mu := r.lockFor(inbound.Key())
	mu.Lock()
	defer mu.Unlock()

	prior, ok := r.history.Lookup(inbound)
	if !ok {
		return
	}

	replies := interpret(ctx)

	kept := make([]reply.MessageRef, 0, len(replies))
	for i := 0; i < len(prior) || i < len(replies); i++ {
		switch {
		case i >= len(prior):
			ref, err := sink.Post(ctx, inbound.Channel, inbound.ThreadID, replies[i])
			if err != nil {
				r.logger.Error("reconcile post failed", "channel", inbound.Channel, "index", i, "error", err)
				continue
			}
			kept = append(kept, ref)

		case i >= len(replies):
			if err := sink.Delete(ctx, prior[i]); err != nil {
				r.logger.Error("reconcile delete failed", "channel", prior[i].Channel, "index", i, "error", err)
			}

		default:
			if err := sink.Update(ctx, prior[i], replies[i]); err != nil {
				r.logger.Error("reconcile update failed", "channel", prior[i].Channel, "index", i, "error", err)
			}
			kept = append(kept, prior[i])
		}
	}

	r.history.Replace(inbound, kept)
}

// OnDelete removes every outbound reply recorded for a deleted inbound
// message and purges its history entry. Untracked messages are a no-op.
func (r *Reconciler) OnDelete(ctx context.Context, inbound reply.MessageRef, sink Sink) {
	mu := r.lockFor(inbound.Key())
	mu.Lock()
	defer mu.Unlock()

	prior, ok := r.history.Lookup(inbound)
	if !ok {
		return
	}
	for _, ref := range prior {
		if err := sink.Delete(ctx, ref); err != nil {
			r.logger.Error("delete failed", "channel", ref.Channel, "error", err)
		}
	}
	r.history.Remove(inbound)
}
