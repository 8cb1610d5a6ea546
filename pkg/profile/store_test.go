package profile

import (
	"strings"
	"testing"

	"github.com/fwselect/fwselect-cli/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(NewFileKV(t.TempDir()))
}

func storedProfile(name string) *models.BuildProfile {
	return &models.BuildProfile{
		Name: name,
		Device: models.Device{
			Model:   "TP-Link Archer C7 v2",
			Target:  "ath79/generic",
			Version: "23.05.3",
		},
	}
}

func TestStoreSaveAndList(t *testing.T) {
	s := newTestStore(t)

	p := storedProfile("first")
	if err := s.Save(p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if p.ID == "" {
		t.Error("expected an id to be generated")
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be stamped")
	}
	if p.Version != CurrentVersion {
		t.Errorf("expected schema version %s, got %s", CurrentVersion, p.Version)
	}

	profiles, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(profiles) != 1 || profiles[0].Name != "first" {
		t.Errorf("unexpected list: %+v", profiles)
	}
}

func TestStoreSaveUpserts(t *testing.T) {
	s := newTestStore(t)

	p := storedProfile("first")
	if err := s.Save(p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	p.Name = "renamed"
	if err := s.Save(p); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	profiles, err := s.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(profiles) != 1 || profiles[0].Name != "renamed" {
		t.Errorf("expected an in-place update, got %+v", profiles)
	}
}

func TestStoreFindByIDOrName(t *testing.T) {
	s := newTestStore(t)

	p := storedProfile("router")
	if err := s.Save(p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	byID, err := s.Find(p.ID)
	if err != nil || byID.Name != "router" {
		t.Errorf("Find by id failed: %v %+v", err, byID)
	}
	byName, err := s.Find("router")
	if err != nil || byName.ID != p.ID {
		t.Errorf("Find by name failed: %v %+v", err, byName)
	}
	if _, err := s.Find("missing"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected a not-found error, got %v", err)
	}
}

func TestStoreDeleteClearsLastUsed(t *testing.T) {
	s := newTestStore(t)

	p := storedProfile("router")
	if err := s.Save(p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.SetLastUsed(p.ID); err != nil {
		t.Fatalf("SetLastUsed failed: %v", err)
	}
	if last, _ := s.LastUsed(); last != p.ID {
		t.Fatalf("expected last-used %s, got %q", p.ID, last)
	}

	if err := s.Delete(p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if last, _ := s.LastUsed(); last != "" {
		t.Errorf("expected last-used marker cleared, got %q", last)
	}

	profiles, _ := s.List()
	if len(profiles) != 0 {
		t.Errorf("expected empty list, got %+v", profiles)
	}

	if err := s.Delete(p.ID); err == nil {
		t.Error("expected an error deleting a missing profile")
	}
}

func TestStoreEmptyState(t *testing.T) {
	s := newTestStore(t)

	profiles, err := s.List()
	if err != nil || profiles != nil {
		t.Errorf("expected empty list on a fresh store, got %v %v", profiles, err)
	}
	last, err := s.LastUsed()
	if err != nil || last != "" {
		t.Errorf("expected no last-used marker, got %q %v", last, err)
	}
}
