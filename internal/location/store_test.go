package location

import (
	"context"
	"errors"
	"testing"

	"github.com/neekaru/washgate/internal/access"
)

type fakeSource struct {
	locs []access.Location
	err  error
}

func (f *fakeSource) Locations(ctx context.Context) ([]access.Location, error) {
	return f.locs, f.err
}

func TestSelectRequiresKnownLocation(t *testing.T) {
	src := &fakeSource{locs: []access.Location{{ID: "loc-1", Name: "Downtown"}, {ID: "loc-2", Name: "Airport"}}}
	s := NewStore(src)

	if err := s.Select("loc-1"); !errors.Is(err, ErrUnknownLocation) {
		t.Fatalf("select before refresh: err = %v, want ErrUnknownLocation", err)
	}

	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := s.Select("loc-2"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if s.SelectedID() != "loc-2" {
		t.Errorf("selected = %q", s.SelectedID())
	}
	loc, ok := s.Selected()
	if !ok || loc.Name != "Airport" {
		t.Errorf("Selected = %+v, %v", loc, ok)
	}

	if err := s.Select(""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if s.SelectedID() != "" {
		t.Error("selection should be cleared")
	}
}

func TestRefreshDropsVanishedSelection(t *testing.T) {
	src := &fakeSource{locs: []access.Location{{ID: "loc-1"}}}
	s := NewStore(src)
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := s.Select("loc-1"); err != nil {
		t.Fatal(err)
	}

	src.locs = []access.Location{{ID: "loc-9"}}
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.SelectedID() != "" {
		t.Errorf("selected = %q, want cleared", s.SelectedID())
	}
}

func TestRefreshErrorKeepsCache(t *testing.T) {
	src := &fakeSource{locs: []access.Location{{ID: "loc-1"}}}
	s := NewStore(src)
	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}

	src.err = access.ErrServiceUnavailable
	if _, err := s.Refresh(context.Background()); !errors.Is(err, access.ErrServiceUnavailable) {
		t.Fatalf("err = %v", err)
	}
	if len(s.List()) != 1 {
		t.Error("cached list should survive a failed refresh")
	}
}
