package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/go-rod/rod"
)

// fakeProbe returns canned results keyed by page position.
func fakeProbe(results []Probe, errs []error) probeFunc {
	i := -1
	return func(_ context.Context, _ *rod.Page) (Probe, error) {
		i++
		if errs != nil && errs[i] != nil {
			return Probe{}, errs[i]
		}
		return results[i], nil
	}
}

func threePages() rod.Pages {
	return rod.Pages{{}, {}, {}}
}

func TestSelectActiveFocusedWins(t *testing.T) {
	pages := threePages()
	probe := fakeProbe([]Probe{
		{Visible: true},
		{Visible: true, Focused: true},
		{Visible: true},
	}, nil)

	got, err := selectActive(context.Background(), pages, probe)
	if err != nil {
		t.Fatal(err)
	}
	if got != pages[1] {
		t.Error("expected page 2 (visible+focused)")
	}
}

func TestSelectActiveVisibleFallback(t *testing.T) {
	pages := threePages()
	probe := fakeProbe([]Probe{
		{},
		{},
		{Visible: true},
	}, nil)

	got, err := selectActive(context.Background(), pages, probe)
	if err != nil {
		t.Fatal(err)
	}
	if got != pages[2] {
		t.Error("expected page 3 (visible only)")
	}
}

func TestSelectActiveNone(t *testing.T) {
	pages := threePages()
	probe := fakeProbe([]Probe{{}, {}, {}}, nil)

	_, err := selectActive(context.Background(), pages, probe)
	if !errors.Is(err, ErrNoActivePage) {
		t.Errorf("got %v, want ErrNoActivePage", err)
	}
}

func TestSelectActiveSkipsFailingPages(t *testing.T) {
	pages := threePages()
	probe := fakeProbe([]Probe{
		{},
		{},
		{Visible: true, Focused: true},
	}, []error{errors.New("target crashed"), nil, nil})

	got, err := selectActive(context.Background(), pages, probe)
	if err != nil {
		t.Fatal(err)
	}
	if got != pages[2] {
		t.Error("crashed page must be skipped, not fail resolution")
	}
}

func TestSelectActiveFirstMatchInOrder(t *testing.T) {
	pages := threePages()
	probe := fakeProbe([]Probe{
		{Visible: true, Focused: true},
		{Visible: true, Focused: true},
		{Visible: true, Focused: true},
	}, nil)

	got, err := selectActive(context.Background(), pages, probe)
	if err != nil {
		t.Fatal(err)
	}
	if got != pages[0] {
		t.Error("enumeration order must break ties")
	}
}

func TestSelectActiveEmpty(t *testing.T) {
	_, err := selectActive(context.Background(), nil, fakeProbe(nil, nil))
	if !errors.Is(err, ErrNoActivePage) {
		t.Errorf("got %v, want ErrNoActivePage", err)
	}
}
