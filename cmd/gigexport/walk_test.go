package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/gigboard/internal/store"
	"github.com/dalemusser/gigboard/internal/testutil/memdb"
	"github.com/dalemusser/gigboard/pantry/export"
	"github.com/dalemusser/gigboard/pantry/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newStore(t *testing.T, pageSize int64, users ...store.User) *store.Store {
	t.Helper()
	db := memdb.New()
	for _, u := range users {
		if _, err := db.Collection(store.CollUsers).InsertOne(context.Background(), u); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return store.New(
		store.Source(func(name string) store.Collection { return db.Collection(name) }),
		pagination.NewEngine(pageSize, zap.NewNop()),
		store.Options{},
	)
}

func seedUsers(statuses ...int32) []store.User {
	users := make([]store.User, len(statuses))
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, st := range statuses {
		users[i] = store.User{
			ID:        primitive.NewObjectID(),
			Username:  "user" + string(rune('a'+i)),
			Email:     "user" + string(rune('a'+i)) + "@example.com",
			Status:    st,
			CreatedAt: created.Add(time.Duration(i) * time.Hour),
		}
	}
	return users
}

func TestExportUsers_WalksEveryPage(t *testing.T) {
	tests := []struct {
		name   string
		status pagination.StatusFilter
		want   []string
	}{
		{"any", pagination.AnyStatus(), []string{"usere", "userd", "userc", "userb", "usera"}},
		{"at least 1", pagination.StatusAtLeast(1), []string{"usere", "userd", "userb"}},
		{"exactly 0", pagination.StatusExactly(0), []string{"userc", "usera"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t, 2, seedUsers(0, 1, 0, 1, 2)...)

			var buf bytes.Buffer
			w, err := export.New(export.FormatCSV, &buf, "users")
			if err != nil {
				t.Fatal(err)
			}
			res, err := exportUsers(context.Background(), s, tt.status, w)
			if err != nil {
				t.Fatalf("exportUsers: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatal(err)
			}
			if res.Rows != len(tt.want) || res.Total != uint64(len(tt.want)) {
				t.Errorf("tally = %+v, want %d rows of %d", res, len(tt.want), len(tt.want))
			}

			records, err := csv.NewReader(&buf).ReadAll()
			if err != nil {
				t.Fatalf("read csv: %v", err)
			}
			if len(records) != len(tt.want)+1 {
				t.Fatalf("got %d records, want header plus %d", len(records), len(tt.want))
			}
			if records[0][1] != "username" {
				t.Errorf("header = %v", records[0])
			}
			for i, want := range tt.want {
				if got := records[i+1][1]; got != want {
					t.Errorf("row %d username = %q, want %q", i, got, want)
				}
			}
		})
	}
}

func TestWalk_StopsOnVisitError(t *testing.T) {
	s := newStore(t, 2, seedUsers(1, 1, 1)...)
	boom := errors.New("disk full")

	res, err := walk(context.Background(), s.Users, pagination.AnyStatus(), func(store.User) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
	if res.Rows != 0 {
		t.Errorf("visited = %d, want 0", res.Rows)
	}
}

func TestWalk_EmptyListing(t *testing.T) {
	s := newStore(t, 2)
	res, err := walk(context.Background(), s.Users, pagination.AnyStatus(), func(store.User) error { return nil })
	if err != nil || res.Rows != 0 || res.Total != 0 {
		t.Errorf("walk = %+v, %v", res, err)
	}
}

func TestWalk_HonorsCancellation(t *testing.T) {
	s := newStore(t, 1, seedUsers(1, 1, 1)...)
	ctx, cancel := context.WithCancel(context.Background())

	res, err := walk(ctx, s.Users, pagination.AnyStatus(), func(store.User) error {
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if res.Rows != 1 {
		t.Errorf("visited = %d, want 1", res.Rows)
	}
}

func TestWalk_ReachesOldestPastUndecodableRecords(t *testing.T) {
	ids := make([]primitive.ObjectID, 6)
	for i := range ids {
		ids[i] = primitive.NewObjectID()
	}
	db := memdb.New()
	users := db.Collection(store.CollUsers)
	for _, i := range []int{0, 1, 2, 3, 5} {
		u := store.User{ID: ids[i], Username: "user" + string(rune('a'+i)), Status: 1}
		if _, err := users.InsertOne(context.Background(), u); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	// Closes the first window of two, so the second window starts on it
	// again and page numbers run out one record early.
	users.Seed(bson.M{"_id": ids[4], "username": 42})
	s := store.New(
		store.Source(func(name string) store.Collection { return db.Collection(name) }),
		pagination.NewEngine(2, zap.NewNop()),
		store.Options{},
	)

	var got []string
	res, err := walk(context.Background(), s.Users, pagination.AnyStatus(), func(u store.User) error {
		got = append(got, u.Username)
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	want := []string{"userf", "userd", "userc", "userb", "usera"}
	if len(got) != len(want) {
		t.Fatalf("visited %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, got[i], want[i])
		}
	}
	if res.Rows != 5 || res.Total != 6 {
		t.Errorf("tally = %+v, want 5 rows of 6", res)
	}
}
