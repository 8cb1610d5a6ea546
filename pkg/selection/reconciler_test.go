package selection

import (
	"reflect"
	"testing"
)

func defaults() []string {
	return []string{"base-files", "busybox", "dropbear"}
}

func TestAddThenRemoveNonDefaultIsNoOp(t *testing.T) {
	rec := New(defaults())

	rec.Add("vim")
	rec.Remove("vim")

	if len(rec.Added()) != 0 || len(rec.Removed()) != 0 {
		t.Errorf("expected both sets empty, got added=%v removed=%v", rec.Added(), rec.Removed())
	}
	if got := rec.BuildPackages(); len(got) != 0 {
		t.Errorf("expected empty build list, got %v", got)
	}
}

func TestRemoveDefaultThenRestore(t *testing.T) {
	rec := New(defaults())

	rec.Remove("dropbear")
	if got := rec.BuildPackages(); !reflect.DeepEqual(got, []string{"-dropbear"}) {
		t.Errorf("expected [-dropbear], got %v", got)
	}
	if rec.Status("dropbear") != StatusRemoved {
		t.Errorf("expected removed status, got %s", rec.Status("dropbear"))
	}

	rec.Restore("dropbear")
	if len(rec.Added()) != 0 || len(rec.Removed()) != 0 {
		t.Errorf("expected both sets empty after restore")
	}
	if got := rec.BuildPackages(); len(got) != 0 {
		t.Errorf("expected empty build list after restore, got %v", got)
	}
	if rec.Status("dropbear") != StatusDefault {
		t.Errorf("expected default status, got %s", rec.Status("dropbear"))
	}
}

func TestAddExcludedDefaultUnexcludes(t *testing.T) {
	rec := New(defaults())

	rec.Remove("busybox")
	rec.Add("busybox")

	if len(rec.Removed()) != 0 {
		t.Errorf("expected removal cleared, got %v", rec.Removed())
	}
	// An add of a default is an un-exclude, never a duplicate addition.
	if len(rec.Added()) != 0 {
		t.Errorf("expected default not duplicated into additions, got %v", rec.Added())
	}
}

func TestSetsStayDisjoint(t *testing.T) {
	rec := New(defaults())

	ops := []func(){
		func() { rec.Add("vim") },
		func() { rec.Remove("busybox") },
		func() { rec.Add("busybox") },
		func() { rec.Remove("vim") },
		func() { rec.Toggle("dropbear") },
		func() { rec.Toggle("dropbear") },
		func() { rec.Toggle("htop") },
	}
	for _, op := range ops {
		op()
		added := rec.Added()
		removed := make(map[string]struct{})
		for _, n := range rec.Removed() {
			removed[n] = struct{}{}
		}
		for _, n := range added {
			if _, ok := removed[n]; ok {
				t.Fatalf("%q is in both sets", n)
			}
		}
	}
}

func TestToggle(t *testing.T) {
	rec := New(defaults())

	// available -> selected -> available
	rec.Toggle("vim")
	if rec.Status("vim") != StatusSelected {
		t.Errorf("expected selected after first toggle, got %s", rec.Status("vim"))
	}
	rec.Toggle("vim")
	if rec.Status("vim") != StatusAvailable {
		t.Errorf("expected available after second toggle, got %s", rec.Status("vim"))
	}

	// default -> removed -> default-standing (restored via add)
	rec.Toggle("busybox")
	if rec.Status("busybox") != StatusRemoved {
		t.Errorf("expected removed after toggling a default, got %s", rec.Status("busybox"))
	}
	rec.Toggle("busybox")
	if rec.Status("busybox") != StatusDefault {
		t.Errorf("expected default after toggling back, got %s", rec.Status("busybox"))
	}
}

func TestBuildPackagesOrderAndSigns(t *testing.T) {
	rec := New(defaults())

	rec.Add("vim")
	rec.Add("htop")
	rec.Remove("dropbear")
	rec.Remove("busybox")

	want := []string{"vim", "htop", "-dropbear", "-busybox"}
	if got := rec.BuildPackages(); !reflect.DeepEqual(got, want) {
		t.Errorf("BuildPackages() = %v, want %v", got, want)
	}
}

func TestResetClearsState(t *testing.T) {
	rec := New(defaults())
	rec.Add("vim")
	rec.Remove("busybox")

	rec.Reset([]string{"base-files"})
	if len(rec.Added()) != 0 || len(rec.Removed()) != 0 {
		t.Errorf("expected empty sets after reset")
	}
	if rec.IsDefault("busybox") {
		t.Errorf("expected new default list to apply")
	}
}

func TestMutationCallbacks(t *testing.T) {
	rec := New(defaults())

	var added, removed []string
	rec.OnAdded(func(name string) { added = append(added, name) })
	rec.OnRemoved(func(name string) { removed = append(removed, name) })

	rec.Add("vim")
	rec.Add("vim") // already added, no second event
	rec.Remove("busybox")
	rec.Remove("busybox")
	rec.Remove("vim") // deselecting an addition is not a removal event

	if !reflect.DeepEqual(added, []string{"vim"}) {
		t.Errorf("unexpected added events: %v", added)
	}
	if !reflect.DeepEqual(removed, []string{"busybox"}) {
		t.Errorf("unexpected removed events: %v", removed)
	}
}

func TestUnknownNameBulkAdd(t *testing.T) {
	// A name unknown to any catalog still round-trips through the
	// selection: the build service is the authority on unknown names.
	rec := New(defaults())
	rec.Toggle("not-in-any-feed")

	if got := rec.BuildPackages(); !reflect.DeepEqual(got, []string{"not-in-any-feed"}) {
		t.Errorf("expected bulk-added unknown name to survive, got %v", got)
	}
}
