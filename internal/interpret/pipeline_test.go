package interpret

import (
	"context"
	"errors"
	"testing"

	"github.com/tutorbot/tutor/internal/catalog"
	"github.com/tutorbot/tutor/internal/workspace"
)

// fakeRecorder captures telemetry events in order.
type fakeRecorder struct {
	events []recordedEvent
}

type recordedEvent struct {
	category string
	label    string
}

var _ Recorder = (*fakeRecorder)(nil)

func (r *fakeRecorder) Record(_ workspace.Workspace, _ string, category, label string) {
	r.events = append(r.events, recordedEvent{category, label})
}

func testWorkspace() workspace.Workspace {
	return workspace.Workspace{
		Enabled:  true,
		Platform: workspace.PlatformSlack,
		ID:       "T123",
		Name:     "Test Workspace",
	}
}

func namedCard(name string) *catalog.Card {
	return &catalog.Card{
		Name:   name,
		Images: &catalog.Images{Normal: "https://img.example/" + name + ".jpg"},
	}
}

func TestInterpret_HelpShortCircuit(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{}
	rec := &fakeRecorder{}
	it := New(cat, rec, nil)

	tests := []struct {
		name      string
		text      string
		isPrivate bool
		wantHelp  bool
	}{
		{"bare help in private channel", "help", true, true},
		{"padded mixed-case help", "  HELP  ", true, true},
		{"help in public channel is ignored", "help", false, false},
		{"help embedded in a sentence is ignored", "please help me", true, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			replies := it.Interpret(context.Background(), tc.text, testWorkspace(), "U1", tc.isPrivate)
			if tc.wantHelp {
				if len(replies) != 1 || replies[0].Text != HelpText {
					t.Fatalf("got %+v, want the help reply", replies)
				}
			} else if len(replies) != 0 {
				t.Fatalf("got %+v, want no replies", replies)
			}
		})
	}

	if cat.calls != 0 {
		t.Errorf("catalog called %d times on help/no-reference paths, want 0", cat.calls)
	}
}

func TestInterpret_NameRepliesPrecedeSearchReplies(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{
		findByName: func(_ context.Context, name string) (*catalog.Card, error) {
			return namedCard(name), nil
		},
		search: func(_ context.Context, query, dir, order string) (*catalog.ResultSet, error) {
			if dir != "" {
				t.Errorf("dir = %q, want default", dir)
			}
			if order != catalog.DefaultSort {
				t.Errorf("order = %q, want %q", order, catalog.DefaultSort)
			}
			return &catalog.ResultSet{Data: []catalog.Card{*namedCard("Goblin Guide")}}, nil
		},
	}
	rec := &fakeRecorder{}
	it := New(cat, rec, nil)

	replies := it.Interpret(context.Background(), "{{t:goblin}} beats [[Lightning Bolt]]", testWorkspace(), "U1", false)
	if len(replies) != 2 {
		t.Fatalf("got %d replies, want 2", len(replies))
	}
	if replies[0].Attachments[0].Title != "Lightning Bolt" {
		t.Errorf("first reply = %+v, want the name-derived one", replies[0])
	}
	if replies[1].Attachments[0].Title != "Goblin Guide" {
		t.Errorf("second reply = %+v, want the search-derived one", replies[1])
	}

	wantEvents := []recordedEvent{
		{EventByName, "[[Lightning Bolt]]"},
		{EventBySearch, "{{t:goblin}}"},
	}
	if len(rec.events) != len(wantEvents) {
		t.Fatalf("events = %+v, want %+v", rec.events, wantEvents)
	}
	for i := range wantEvents {
		if rec.events[i] != wantEvents[i] {
			t.Errorf("event %d = %+v, want %+v", i, rec.events[i], wantEvents[i])
		}
	}
}

func TestInterpret_NameApologies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "ambiguous name",
			err:  catalog.ErrAmbiguous,
			want: "Multiple cards match `Bolt`. Can you be more specific?",
		},
		{
			name: "unknown name",
			err:  catalog.ErrNotFound,
			want: "I'm sorry. I couldn't find any cards named `Bolt`.",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cat := &fakeCatalog{
				findByName: func(_ context.Context, _ string) (*catalog.Card, error) {
					return nil, tc.err
				},
			}
			it := New(cat, &fakeRecorder{}, nil)
			replies := it.Interpret(context.Background(), "[[Bolt]]", testWorkspace(), "U1", false)
			if len(replies) != 1 || replies[0].Text != tc.want {
				t.Fatalf("got %+v, want text %q", replies, tc.want)
			}
		})
	}
}

func TestInterpret_TransportFailureYieldsNoReplies(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{
		findByName: func(_ context.Context, _ string) (*catalog.Card, error) {
			return nil, errors.New("connection refused")
		},
	}
	it := New(cat, &fakeRecorder{}, nil)

	replies := it.Interpret(context.Background(), "[[Lightning Bolt]]", testWorkspace(), "U1", false)
	if len(replies) != 0 {
		t.Fatalf("got %+v, want no replies on transport failure", replies)
	}
}

func TestInterpret_SearchFailureApologizes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		search func(ctx context.Context, query, dir, order string) (*catalog.ResultSet, error)
	}{
		{
			name: "empty result",
			search: func(_ context.Context, _, _, _ string) (*catalog.ResultSet, error) {
				return &catalog.ResultSet{}, nil
			},
		},
		{
			name: "transport failure",
			search: func(_ context.Context, _, _, _ string) (*catalog.ResultSet, error) {
				return nil, errors.New("connection refused")
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			it := New(&fakeCatalog{search: tc.search}, &fakeRecorder{}, nil)
			replies := it.Interpret(context.Background(), "{{t:goblin}}", testWorkspace(), "U1", false)
			want := "I'm sorry. I couldn't find any results for `t:goblin`."
			if len(replies) != 1 || replies[0].Text != want {
				t.Fatalf("got %+v, want text %q", replies, want)
			}
		})
	}
}

func TestInterpret_SortSpecifierReachesCatalog(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{
		search: func(_ context.Context, query, dir, order string) (*catalog.ResultSet, error) {
			if query != "Lightning Bolt" {
				t.Errorf("query = %q, want trimmed text", query)
			}
			if dir != "asc" || order != "usd" {
				t.Errorf("dir, order = %q, %q, want asc, usd", dir, order)
			}
			return &catalog.ResultSet{Data: []catalog.Card{*namedCard("Lightning Bolt")}}, nil
		},
	}
	it := New(cat, &fakeRecorder{}, nil)

	replies := it.Interpret(context.Background(), "{{Lightning Bolt}}<usd", testWorkspace(), "U1", false)
	if len(replies) != 1 {
		t.Fatalf("got %d replies, want 1", len(replies))
	}
}

func TestInterpret_UnrecognizedDirectiveDropsReference(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{
		findByName: func(_ context.Context, name string) (*catalog.Card, error) {
			return namedCard(name), nil
		},
	}
	it := New(cat, &fakeRecorder{}, nil)

	replies := it.Interpret(context.Background(), "[[Shock]]:banana [[Lava Spike]]", testWorkspace(), "U1", false)
	if len(replies) != 1 {
		t.Fatalf("got %d replies, want only the recognized reference's", len(replies))
	}
	if replies[0].Attachments[0].Title != "Lava Spike" {
		t.Errorf("reply = %+v", replies[0])
	}
}

func TestInterpret_PanicDegradesToEmpty(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{
		findByName: func(_ context.Context, _ string) (*catalog.Card, error) {
			panic("malformed payload")
		},
	}
	it := New(cat, &fakeRecorder{}, nil)

	replies := it.Interpret(context.Background(), "[[Lightning Bolt]]", testWorkspace(), "U1", false)
	if replies != nil {
		t.Fatalf("got %+v, want nil after pipeline panic", replies)
	}
}

func TestInterpret_SingleDelimiterWorkspace(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{
		findByName: func(_ context.Context, name string) (*catalog.Card, error) {
			return namedCard(name), nil
		},
	}
	it := New(cat, &fakeRecorder{}, nil)

	ws := testWorkspace()
	ws.AllowSingleDelimiter = true

	replies := it.Interpret(context.Background(), "[Lightning Bolt]", ws, "U1", false)
	if len(replies) != 1 || replies[0].Attachments[0].Title != "Lightning Bolt" {
		t.Fatalf("got %+v, want one image reply", replies)
	}
}
