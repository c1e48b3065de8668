package ledger

import "testing"

func TestRegisterAndRetire(t *testing.T) {
	l := New()
	a := l.Register(0, 3)
	b := l.Register(1, 5)

	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}

	l.RecordOffspring(a)
	l.RecordOffspring(a)
	l.RecordKill(b)
	l.RecordEaten(b, 12.5)
	l.RecordMigration(a)

	rec, ok := l.Retire(a)
	if !ok {
		t.Fatal("expected a to be tracked")
	}
	if rec.BornYear != 3 || rec.Offspring != 2 || rec.Migrations != 1 {
		t.Errorf("unexpected record %+v", rec)
	}
	if l.Len() != 1 {
		t.Errorf("Len() after retire = %d, want 1", l.Len())
	}
	if l.Get(a) != nil {
		t.Error("retired record should no longer be reachable")
	}

	if r := l.Get(b); r == nil || r.Kills != 1 || r.Eaten != 12.5 {
		t.Errorf("unexpected live record %+v", r)
	}
}

func TestRetireTwice(t *testing.T) {
	l := New()
	id := l.Register(0, 0)
	if _, ok := l.Retire(id); !ok {
		t.Fatal("first retire should succeed")
	}
	if _, ok := l.Retire(id); ok {
		t.Error("second retire should report untracked id")
	}
	// Recording on a retired id is a no-op.
	l.RecordKill(id)
}

func TestTotals(t *testing.T) {
	l := New()
	h1 := l.Register(0, 0)
	h2 := l.Register(0, 0)
	c := l.Register(1, 0)
	l.RecordOffspring(h1)
	l.RecordOffspring(h2)
	l.RecordMigration(h2)
	l.RecordKill(c)

	off, kills, moves := l.Totals(0)
	if off != 2 || kills != 0 || moves != 1 {
		t.Errorf("herbivore totals = %d/%d/%d, want 2/0/1", off, kills, moves)
	}
	off, kills, moves = l.Totals(1)
	if off != 0 || kills != 1 || moves != 0 {
		t.Errorf("carnivore totals = %d/%d/%d, want 0/1/0", off, kills, moves)
	}
}
