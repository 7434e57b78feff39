package interpret

import (
	"reflect"
	"testing"
)

func TestExtract_NameReferences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		text        string
		allowSingle bool
		want        []Reference
	}{
		{
			name: "simple double bracket",
			text: "check out [[Lightning Bolt]]",
			want: []Reference{
				{Kind: ByName, Query: "Lightning Bolt", Raw: "[[Lightning Bolt]]"},
			},
		},
		{
			name: "directive suffix",
			text: "[[Lightning Bolt]]:art",
			want: []Reference{
				{Kind: ByName, Query: "Lightning Bolt", Raw: "[[Lightning Bolt]]:art", Format: "art"},
			},
		},
		{
			name: "two references preserve order",
			text: "[[Shock]]..? no [[Lava Spike]] then",
			want: []Reference{
				{Kind: ByName, Query: "Shock", Raw: "[[Shock]]"},
				{Kind: ByName, Query: "Lava Spike", Raw: "[[Lava Spike]]"},
			},
		},
		{
			name: "too short is not extracted",
			text: "[[ab]]",
			want: nil,
		},
		{
			name: "minimum length is three",
			text: "[[abc]]",
			want: []Reference{
				{Kind: ByName, Query: "abc", Raw: "[[abc]]"},
			},
		},
		{
			name: "single brackets rejected by default",
			text: "[Lightning Bolt]",
			want: nil,
		},
		{
			name:        "single brackets accepted when allowed",
			text:        "[Lightning Bolt]",
			allowSingle: true,
			want: []Reference{
				{Kind: ByName, Query: "Lightning Bolt", Raw: "[Lightning Bolt]"},
			},
		},
		{
			name:        "double brackets still work when single allowed",
			text:        "[[Lightning Bolt]]",
			allowSingle: true,
			want: []Reference{
				{Kind: ByName, Query: "Lightning Bolt", Raw: "[[Lightning Bolt]]"},
			},
		},
		{
			name: "no references",
			text: "just a plain message",
			want: nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Extract(tc.text, tc.allowSingle)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Extract(%q, %v) = %+v, want %+v", tc.text, tc.allowSingle, got, tc.want)
			}
		})
	}
}

func TestExtract_SearchReferences(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []Reference
	}{
		{
			name: "plain query",
			text: "{{t:goblin set:DOM}}",
			want: []Reference{
				{Kind: BySearch, Query: "t:goblin set:DOM", Raw: "{{t:goblin set:DOM}}"},
			},
		},
		{
			name: "ascending sort with key",
			text: "{{Lightning Bolt}}<usd",
			want: []Reference{
				{Kind: BySearch, Query: "Lightning Bolt", Raw: "{{Lightning Bolt}}<usd", SortDir: SortAsc, SortKey: "usd"},
			},
		},
		{
			name: "descending sort with key",
			text: "{{Lightning Bolt}}>released",
			want: []Reference{
				{Kind: BySearch, Query: "Lightning Bolt", Raw: "{{Lightning Bolt}}>released", SortDir: SortDesc, SortKey: "released"},
			},
		},
		{
			name: "direction without key",
			text: "{{Lightning Bolt}}<",
			want: []Reference{
				{Kind: BySearch, Query: "Lightning Bolt", Raw: "{{Lightning Bolt}}<", SortDir: SortAsc},
			},
		},
		{
			name: "sort then directive",
			text: "{{Llanowar Elves}}<released:flavor",
			want: []Reference{
				{Kind: BySearch, Query: "Llanowar Elves", Raw: "{{Llanowar Elves}}<released:flavor", SortDir: SortAsc, SortKey: "released", Format: "flavor"},
			},
		},
		{
			name: "directive without sort",
			text: "{{t:planeswalker}}:oracle",
			want: []Reference{
				{Kind: BySearch, Query: "t:planeswalker", Raw: "{{t:planeswalker}}:oracle", Format: "oracle"},
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := Extract(tc.text, false)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Extract(%q) = %+v, want %+v", tc.text, got, tc.want)
			}
		})
	}
}

func TestExtract_NamesPrecedeSearches(t *testing.T) {
	t.Parallel()

	// A search reference appearing before a name reference in source text
	// still sorts after it in the extracted list.
	got := Extract("{{t:goblin}} and [[Shock]] and {{t:elf}} and [[Lava Spike]]", false)

	want := []Reference{
		{Kind: ByName, Query: "Shock", Raw: "[[Shock]]"},
		{Kind: ByName, Query: "Lava Spike", Raw: "[[Lava Spike]]"},
		{Kind: BySearch, Query: "t:goblin", Raw: "{{t:goblin}}"},
		{Kind: BySearch, Query: "t:elf", Raw: "{{t:elf}}"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extract() = %+v, want %+v", got, want)
	}
}

func TestExtract_SingleDelimiterEquivalence(t *testing.T) {
	t.Parallel()

	double := Extract("[[Lightning Bolt]]:art", true)
	single := Extract("[Lightning Bolt]:art", true)

	if len(double) != 1 || len(single) != 1 {
		t.Fatalf("expected one reference each, got %d and %d", len(double), len(single))
	}
	if double[0].Query != single[0].Query || double[0].Format != single[0].Format {
		t.Errorf("single and double delimiter forms differ: %+v vs %+v", double[0], single[0])
	}
}
