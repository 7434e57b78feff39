package interpret

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tutorbot/tutor/internal/catalog"
	"github.com/tutorbot/tutor/internal/workspace"
	"github.com/tutorbot/tutor/pkg/reply"
)

// Telemetry event categories recorded by the pipeline.
const (
	EventHelp     = "help"
	EventByName   = "byName"
	EventBySearch = "bySearch"
)

// Recorder receives fire-and-forget analytics events. Implementations must
// never block the pipeline or surface failures.
type Recorder interface {
	Record(ws workspace.Workspace, senderID, category, label string)
}

// Interpreter composes extraction, resolution, and formatting into the
// single entry point adapters call for every inbound message.
type Interpreter struct {
	resolver  *Resolver
	formatter *Formatter
	telemetry Recorder
	logger    *slog.Logger
}

// New creates an Interpreter backed by the given catalog and telemetry
// recorder.
func New(cat Catalog, telemetry Recorder, logger *slog.Logger) *Interpreter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interpreter{
		resolver:  NewResolver(cat, logger),
		formatter: NewFormatter(cat, logger),
		telemetry: telemetry,
		logger:    logger.With("component", "interpret"),
	}
}

// Interpret extracts every card reference from text and produces the
// ordered list of replies to post: name-derived replies first, then
// search-derived ones, each in source order. In a private channel the
// bare word "help" short-circuits to the static help reply.
//
// This is a fault-isolation boundary: any unexpected failure inside the
// pipeline is logged and degrades to an empty reply list so a single
// malformed message can never take the session down.
func (it *Interpreter) Interpret(ctx context.Context, text string, ws workspace.Workspace, senderID string, isPrivateChannel bool) (replies []reply.Reply) {
	defer func() {
		if r := recover(); r != nil {
			it.logger.Error("pipeline panic", "workspace", ws.ID, "panic", r)
			replies = nil
		}
	}()

	if isPrivateChannel && strings.EqualFold(strings.TrimSpace(text), "help") {
		it.telemetry.Record(ws, senderID, EventHelp, "")
		return []reply.Reply{reply.TextReply(HelpText)}
	}

	for _, ref := range Extract(text, ws.AllowSingleDelimiter) {
		var (
			rep *reply.Reply
			err error
		)
		switch ref.Kind {
		case ByName:
			it.telemetry.Record(ws, senderID, EventByName, ref.Raw)
			rep, err = it.nameReply(ctx, ref)
		case BySearch:
			it.telemetry.Record(ws, senderID, EventBySearch, ref.Raw)
			rep = it.searchReply(ctx, ref)
		}
		if err != nil {
			it.logger.Error("pipeline failed", "workspace", ws.ID, "error", err)
			return nil
		}
		if rep != nil {
			replies = append(replies, *rep)
		}
	}
	return replies
}

// nameReply resolves one name reference. Ambiguity and absence each get a
// distinct apology; an unrecognized directive drops the reference; any
// other failure aborts the pipeline.
func (it *Interpreter) nameReply(ctx context.Context, ref Reference) (*reply.Reply, error) {
	card, err := it.resolver.ByName(ctx, ref.Query)
	switch {
	case errors.Is(err, catalog.ErrAmbiguous):
		r := reply.TextReply(fmt.Sprintf("Multiple cards match `%s`. Can you be more specific?", ref.Query))
		return &r, nil
	case errors.Is(err, catalog.ErrNotFound):
		r := reply.TextReply(fmt.Sprintf("I'm sorry. I couldn't find any cards named `%s`.", ref.Query))
		return &r, nil
	case err != nil:
		return nil, err
	}
	return it.formatter.Format(ctx, ref.Format, "", card), nil
}

// searchReply resolves one search reference. All resolution failure
// collapses to a single apology; an unrecognized directive drops the
// reference.
func (it *Interpreter) searchReply(ctx context.Context, ref Reference) *reply.Reply {
	card := it.resolver.BySearch(ctx, ref.Query, ref.SortDir, ref.SortKey)
	if card == nil {
		r := reply.TextReply(fmt.Sprintf("I'm sorry. I couldn't find any results for `%s`.", ref.Query))
		return &r
	}
	return it.formatter.Format(ctx, ref.Format, ref.Query, card)
}
