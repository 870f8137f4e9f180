package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.now = func() time.Time { return now }

	_ = m.Set(ctx, "short", []byte("a"), time.Minute)
	_ = m.Set(ctx, "forever", []byte("b"), 0)

	if v, err := m.Get(ctx, "short"); err != nil || string(v) != "a" {
		t.Fatalf("Get short = %q, %v", v, err)
	}

	now = now.Add(time.Minute)
	if _, err := m.Get(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired Get err = %v, want ErrNotFound", err)
	}
	if _, err := m.Get(ctx, "forever"); err != nil {
		t.Errorf("Get forever: %v", err)
	}
	if m.Len() != 1 {
		t.Errorf("Len = %d, want expired entry dropped", m.Len())
	}

	_ = m.Delete(ctx, "forever", "missing")
	if m.Len() != 0 {
		t.Errorf("Len = %d after Delete", m.Len())
	}
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	buf := []byte("abc")
	_ = m.Set(ctx, "k", buf, 0)
	buf[0] = 'x'

	v, _ := m.Get(ctx, "k")
	v[1] = 'y'
	again, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("stored value = %q, want abc", again)
	}
}

type failing struct{}

func (failing) Get(context.Context, string) ([]byte, error) { return nil, errors.New("conn refused") }
func (failing) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("conn refused")
}
func (failing) Delete(context.Context, ...string) error { return nil }

func TestGetOrSetJSON(t *testing.T) {
	type entry struct {
		Name string `json:"name"`
	}
	ctx := context.Background()

	t.Run("computes once", func(t *testing.T) {
		m := NewMemory()
		calls := 0
		compute := func() ([]entry, error) {
			calls++
			return []entry{{Name: "go"}}, nil
		}
		for i := 0; i < 3; i++ {
			got, err := GetOrSetJSON(ctx, m, "topics", time.Minute, compute)
			if err != nil || len(got) != 1 || got[0].Name != "go" {
				t.Fatalf("GetOrSetJSON = %v, %v", got, err)
			}
		}
		if calls != 1 {
			t.Errorf("compute ran %d times, want 1", calls)
		}
	})

	t.Run("backend down", func(t *testing.T) {
		got, err := GetOrSetJSON(ctx, failing{}, "topics", time.Minute, func() (entry, error) {
			return entry{Name: "fresh"}, nil
		})
		if err != nil || got.Name != "fresh" {
			t.Errorf("GetOrSetJSON = %v, %v", got, err)
		}
	})

	t.Run("compute error", func(t *testing.T) {
		m := NewMemory()
		boom := errors.New("boom")
		_, err := GetOrSetJSON(ctx, m, "k", time.Minute, func() (int, error) { return 0, boom })
		if !errors.Is(err, boom) {
			t.Errorf("err = %v", err)
		}
		if m.Len() != 0 {
			t.Error("failed compute must not be cached")
		}
	})
}
