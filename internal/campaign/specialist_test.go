package campaign

import "testing"

func TestSpecialistOrder(t *testing.T) {
	order := Specialists()
	want := []Specialist{SpecialistDataCollection, SpecialistContent, SpecialistDesign, SpecialistQuality, SpecialistDelivery}
	if len(order) != len(want) {
		t.Fatalf("unexpected order length: %d", len(order))
	}
	for i, s := range want {
		if order[i] != s {
			t.Fatalf("position %d: got %s, want %s", i, order[i], s)
		}
	}
}

func TestSpecialistNext(t *testing.T) {
	next, ok := SpecialistContent.Next()
	if !ok || next != SpecialistDesign {
		t.Fatalf("content successor: got %s ok=%v", next, ok)
	}
	if _, ok := SpecialistDelivery.Next(); ok {
		t.Fatal("delivery must have no successor")
	}
	if !SpecialistDelivery.IsTerminal() {
		t.Fatal("delivery must be terminal")
	}
}

func TestParseSpecialistLegacySuffix(t *testing.T) {
	s, ok := ParseSpecialist("Content-Specialist")
	if !ok || s != SpecialistContent {
		t.Fatalf("got %s ok=%v", s, ok)
	}
	if _, ok := ParseSpecialist("marketing"); ok {
		t.Fatal("unknown specialist must not parse")
	}
}

func TestCompletionPercent(t *testing.T) {
	cases := map[int]int{0: 0, 1: 20, 2: 40, 3: 60, 4: 80, 5: 100}
	for completed, want := range cases {
		if got := CompletionPercent(completed); got != want {
			t.Fatalf("completed=%d: got %d, want %d", completed, got, want)
		}
	}
}

func TestFlagsMonotonicAndOrdered(t *testing.T) {
	var f Flags
	f = f.MarkDone(SpecialistContent)
	f = f.MarkDone(SpecialistDataCollection)
	f = f.MarkDone(SpecialistContent) // repeat is a no-op
	list := f.CompletedList()
	if len(list) != 2 || list[0] != SpecialistDataCollection || list[1] != SpecialistContent {
		t.Fatalf("unexpected completed list: %v", list)
	}
	if f.AllDone() {
		t.Fatal("not all stages are done")
	}
}
