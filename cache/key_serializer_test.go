package cache

import (
	"strings"
	"testing"
)

func TestDefaultKeySerializer_BasicTypes(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	tests := []struct {
		name string
		args []any
		want string
	}{
		{"no params", nil, "reviews::list"},
		{"string param", []any{"fiction"}, "reviews::list::fiction"},
		{"int param", []any{42}, "reviews::list::42"},
		{"int64 param", []any{int64(7)}, "reviews::list::7"},
		{"bool param", []any{true}, "reviews::list::true"},
		{"float param", []any{4.5}, "reviews::list::4.5"},
		{"multiple params", []any{int64(7), 1, 20}, "reviews::list::7::1::20"},
		{"nil param", []any{nil}, "reviews::list::nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := serializer.Key("reviews", "list", tt.args...)
			if got := key.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestDefaultKeySerializer_Pointers(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	value := int64(7)
	if got := serializer.Segment(&value); got != "7" {
		t.Errorf("expected pointer to serialize as its target, got %q", got)
	}

	var nilPtr *int64
	if got := serializer.Segment(nilPtr); got != "nil" {
		t.Errorf("expected nil pointer to serialize as nil, got %q", got)
	}
}

func TestDefaultKeySerializer_Slices(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	if got := serializer.Segment([]int{1, 2, 3}); got != "slice[3]:{1,2,3}" {
		t.Errorf("unexpected slice segment: %q", got)
	}

	var nilSlice []int
	if got := serializer.Segment(nilSlice); got != "slice:nil" {
		t.Errorf("unexpected nil slice segment: %q", got)
	}
}

func TestDefaultKeySerializer_MapsAreDeterministic(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	m := map[string]int{"page": 1, "limit": 20, "book": 7}
	want := serializer.Segment(m)
	// Map iteration order varies per run; repeated serialization must not.
	for i := 0; i < 50; i++ {
		if got := serializer.Segment(m); got != want {
			t.Fatalf("map serialization not deterministic: %q vs %q", got, want)
		}
	}
	if want != "map[3]:{book=7,limit=20,page=1}" {
		t.Errorf("unexpected map segment: %q", want)
	}
}

func TestDefaultKeySerializer_StructFields(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	type listParams struct {
		Page   int
		Limit  int
		BookID int64
		hidden string
	}

	got := serializer.Segment(listParams{Page: 1, Limit: 20, BookID: 7, hidden: "x"})
	want := "struct:{page:1,limit:20,book_id:7}"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDefaultKeySerializer_StructuralEquality(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	type params struct {
		Page  int
		Limit int
	}

	a := serializer.Key("reviews", "list", params{Page: 1, Limit: 20})
	b := serializer.Key("reviews", "list", params{Page: 1, Limit: 20})
	c := serializer.Key("reviews", "list", params{Page: 2, Limit: 20})

	if !a.Equal(b) {
		t.Error("expected equal params to produce the same key")
	}
	if a.Equal(c) {
		t.Error("expected different params to produce different keys")
	}
}

func TestDefaultKeySerializer_OversizedSegmentDigest(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	long := strings.Repeat("x", maxSegmentLen*4)
	got := serializer.Segment(long)

	if !strings.HasPrefix(got, "h:") {
		t.Fatalf("expected digest segment, got %q", got)
	}
	if len(got) > maxSegmentLen {
		t.Errorf("digest segment still oversized: %d bytes", len(got))
	}
	if again := serializer.Segment(long); again != got {
		t.Errorf("digest not deterministic: %q vs %q", again, got)
	}
	if other := serializer.Segment(long + "y"); other == got {
		t.Error("expected different long inputs to digest differently")
	}
}
