package pagination

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/gigboard/internal/testutil/memdb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type gig struct {
	ID     primitive.ObjectID `bson:"_id"`
	Name   string             `bson:"name"`
	Status int32              `bson:"status"`
}

func (g gig) Identity() primitive.ObjectID { return g.ID }

// seedGigs stores n gigs with strictly increasing ids and returns the ids
// oldest first.
func seedGigs(coll *memdb.Collection, n int, status func(i int) int32) []primitive.ObjectID {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := make([]primitive.ObjectID, n)
	for i := 0; i < n; i++ {
		ids[i] = primitive.NewObjectIDFromTimestamp(base.Add(time.Duration(i) * time.Minute))
		coll.Seed(bson.M{"_id": ids[i], "name": "gig", "status": status(i)})
	}
	return ids
}

func published(int) int32 { return 1 }

func idsOf(items []gig) []primitive.ObjectID {
	out := make([]primitive.ObjectID, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func sameIDs(a, b []primitive.ObjectID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestList_WalkForwardAndBack(t *testing.T) {
	ctx := context.Background()
	coll := memdb.New().Collection("projects")
	ids := seedGigs(coll, 25, published)
	e := NewEngine(10, zap.NewNop())

	// Page 1: newest ten, newest first.
	p1, err := List[gig](ctx, e, coll, "projects", NewFilter(), FirstPage(AnyStatus()))
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if p1.PageInfo.CurrentPage != 1 || !p1.PageInfo.HasNextPage || p1.PageInfo.HasPreviousPage {
		t.Errorf("page 1 info = %+v", p1.PageInfo)
	}
	if p1.ResCount != (ResCount{PagesCount: 3, TotalCount: 25}) {
		t.Errorf("page 1 counts = %+v", p1.ResCount)
	}
	if len(p1.CurrentItems) != 10 || p1.CurrentItems[0].ID != ids[24] || p1.CurrentItems[9].ID != ids[15] {
		t.Fatalf("page 1 items = %v", idsOf(p1.CurrentItems))
	}
	if *p1.PageInfo.FirstCursor != ids[24] || *p1.PageInfo.LastCursor != ids[15] {
		t.Errorf("page 1 cursors = %v / %v", p1.PageInfo.FirstCursor, p1.PageInfo.LastCursor)
	}

	// Page 2 via the last cursor of page 1.
	p2, err := List[gig](ctx, e, coll, "projects", NewFilter(), Request{
		Page: 1, Last: BoundaryAt(*p1.PageInfo.LastCursor),
	})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if p2.PageInfo.CurrentPage != 2 {
		t.Errorf("page 2 CurrentPage = %d, want 2", p2.PageInfo.CurrentPage)
	}
	if p2.ResCount.TotalCount != 25 {
		t.Errorf("page 2 TotalCount = %d, want 25 (count ignores the window)", p2.ResCount.TotalCount)
	}
	for _, it := range p2.CurrentItems {
		if bytes.Compare(it.ID[:], p1.PageInfo.LastCursor[:]) > 0 {
			t.Errorf("page 2 item %v is newer than the last boundary", it.ID)
		}
	}
	if want := []primitive.ObjectID{ids[14], ids[13], ids[12], ids[11], ids[10], ids[9], ids[8], ids[7], ids[6], ids[5]}; !sameIDs(idsOf(p2.CurrentItems), want) {
		t.Errorf("page 2 items = %v, want %v", idsOf(p2.CurrentItems), want)
	}

	// Page 3: the remaining five, no next page.
	p3, err := List[gig](ctx, e, coll, "projects", NewFilter(), Request{
		Page: 2, Last: BoundaryAt(*p2.PageInfo.LastCursor),
	})
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if p3.PageInfo.CurrentPage != 3 || p3.PageInfo.HasNextPage || !p3.PageInfo.HasPreviousPage {
		t.Errorf("page 3 info = %+v", p3.PageInfo)
	}
	if len(p3.CurrentItems) != 5 || p3.CurrentItems[4].ID != ids[0] {
		t.Errorf("page 3 items = %v", idsOf(p3.CurrentItems))
	}

	// Back from page 3 via its first cursor lands on page 2 again.
	back, err := List[gig](ctx, e, coll, "projects", NewFilter(), Request{
		Page: 3, First: BoundaryAt(*p3.PageInfo.FirstCursor),
	})
	if err != nil {
		t.Fatalf("back to page 2: %v", err)
	}
	if back.PageInfo.CurrentPage != 2 {
		t.Errorf("back CurrentPage = %d, want 2", back.PageInfo.CurrentPage)
	}
	if !sameIDs(idsOf(back.CurrentItems), idsOf(p2.CurrentItems)) {
		t.Errorf("back items = %v, want %v", idsOf(back.CurrentItems), idsOf(p2.CurrentItems))
	}
	for _, it := range back.CurrentItems {
		if bytes.Compare(it.ID[:], p3.PageInfo.FirstCursor[:]) < 0 {
			t.Errorf("back item %v is older than the first boundary", it.ID)
		}
	}

	// Plain page number 2 agrees with cursor navigation on a frozen set.
	off, err := List[gig](ctx, e, coll, "projects", NewFilter(), Request{Page: 2})
	if err != nil {
		t.Fatalf("offset page 2: %v", err)
	}
	if !sameIDs(idsOf(off.CurrentItems), idsOf(p2.CurrentItems)) {
		t.Errorf("offset page 2 = %v, want %v", idsOf(off.CurrentItems), idsOf(p2.CurrentItems))
	}
}

func TestList_EmptySet(t *testing.T) {
	coll := memdb.New().Collection("projects")
	e := NewEngine(10, nil)

	env, err := List[gig](context.Background(), e, coll, "projects", NewFilter(), FirstPage(AnyStatus()))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if env.ResCount != (ResCount{}) {
		t.Errorf("counts = %+v, want zero", env.ResCount)
	}
	if env.PageInfo.FirstCursor != nil || env.PageInfo.LastCursor != nil {
		t.Error("empty page should carry no cursors")
	}
	if env.PageInfo.HasNextPage || env.PageInfo.HasPreviousPage {
		t.Errorf("empty page flags = %+v, want both false", env.PageInfo)
	}
	if env.CurrentItems == nil || len(env.CurrentItems) != 0 {
		t.Errorf("CurrentItems = %v, want empty slice", env.CurrentItems)
	}
}

func TestList_StatusScenarios(t *testing.T) {
	coll := memdb.New().Collection("users")
	statuses := []int32{-1, 0, 1, 2, 6, -1, 2}
	seedGigs(coll, len(statuses), func(i int) int32 { return statuses[i] })
	e := NewEngine(10, nil)

	tests := []struct {
		name   string
		status StatusFilter
		want   int
	}{
		{"banned only", StatusFromCode(-1), 2},
		{"every status", StatusFromCode(0), 7},
		{"recommended and up", StatusFromCode(2), 3},
		{"published and up", StatusFromCode(1), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := List[gig](context.Background(), e, coll, "users", NewFilter(), FirstPage(tt.status))
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(env.CurrentItems) != tt.want || env.ResCount.TotalCount != uint64(tt.want) {
				t.Errorf("got %d items / total %d, want %d", len(env.CurrentItems), env.ResCount.TotalCount, tt.want)
			}
			for _, it := range env.CurrentItems {
				if !tt.status.Matches(it.Status) {
					t.Errorf("item with status %d leaked through %v", it.Status, tt.status)
				}
			}
		})
	}
}

func TestList_SkipsUndecodableRecords(t *testing.T) {
	coll := memdb.New().Collection("projects")
	ids := seedGigs(coll, 3, published)
	bad := primitive.NewObjectIDFromTimestamp(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	coll.Seed(bson.M{"_id": bad, "name": 42, "status": int32(1)})

	core, logs := observer.New(zap.WarnLevel)
	e := NewEngine(10, zap.New(core))

	env, err := List[gig](context.Background(), e, coll, "projects", NewFilter(), FirstPage(AnyStatus()))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if want := []primitive.ObjectID{ids[2], ids[1], ids[0]}; !sameIDs(idsOf(env.CurrentItems), want) {
		t.Errorf("items = %v, want %v", idsOf(env.CurrentItems), want)
	}
	if env.ResCount.TotalCount != 4 {
		t.Errorf("TotalCount = %d, want 4 (count sees the stored record)", env.ResCount.TotalCount)
	}

	entries := logs.FilterMessage("skipping undecodable record").All()
	if len(entries) != 1 {
		t.Fatalf("got %d skip logs, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["id"]; got != bad.Hex() {
		t.Errorf("logged id = %v, want %s", got, bad.Hex())
	}
}

func TestList_PropagatesStoreError(t *testing.T) {
	coll := memdb.New().Collection("projects")
	coll.Err = errors.New("store down")

	_, err := List[gig](context.Background(), NewEngine(10, nil), coll, "projects", NewFilter(), FirstPage(AnyStatus()))
	if err == nil {
		t.Fatal("List should fail when the store fails")
	}
}

func TestList_JoinDerivedMembership(t *testing.T) {
	coll := memdb.New().Collection("projects")
	ids := seedGigs(coll, 12, published)
	e := NewEngine(5, nil)

	members := []primitive.ObjectID{ids[1], ids[4], ids[7], ids[8], ids[10], ids[11]}
	base := NewFilter().In(IDField, members)

	p1, err := List[gig](context.Background(), e, coll, "projects_by_topic", base, FirstPage(AnyStatus()))
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if p1.ResCount != (ResCount{PagesCount: 2, TotalCount: 6}) {
		t.Errorf("counts = %+v, want 2 pages / 6", p1.ResCount)
	}

	p2, err := List[gig](context.Background(), e, coll, "projects_by_topic", base, Request{
		Page: 1, Last: BoundaryAt(*p1.PageInfo.LastCursor),
	})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if want := []primitive.ObjectID{ids[1]}; !sameIDs(idsOf(p2.CurrentItems), want) {
		t.Errorf("page 2 = %v, want %v", idsOf(p2.CurrentItems), want)
	}
}
