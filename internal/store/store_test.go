package store

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/dalemusser/gigboard/internal/testutil/memdb"
	"github.com/dalemusser/gigboard/pantry/crypto"
	apperr "github.com/dalemusser/gigboard/pantry/errors"
	"github.com/dalemusser/gigboard/pantry/pagination"
	"go.mongodb.org/mongo-driver/bson"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// newTestStore returns a Store over an in-memory database carrying the
// same unique indexes EnsureIndexes creates.
func newTestStore(t *testing.T, pageSize int64) (*Store, *memdb.DB, *fakeClock) {
	t.Helper()
	db := memdb.New()
	for _, spec := range Indexes() {
		if spec.Unique {
			db.Collection(spec.Collection).Unique(spec.Keys...)
		}
	}
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	src := Source(func(name string) Collection { return db.Collection(name) })
	s := New(src, pagination.NewEngine(pageSize, nil), Options{
		Hasher: crypto.NewHasher(crypto.BcryptMinCost),
		Clock:  clock.Now,
	})
	return s, db, clock
}

func mustUser(t *testing.T, s *Store, username string, status int32) *User {
	t.Helper()
	ctx := context.Background()
	u, err := s.RegisterUser(ctx, UserNew{Username: username, Email: username + "@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("RegisterUser(%s): %v", username, err)
	}
	if status != UserNotActivated {
		if u, err = s.UpdateUserField(ctx, u.ID, "status", strconv.Itoa(int(status))); err != nil {
			t.Fatalf("activate %s: %v", username, err)
		}
	}
	return u
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()
	if !apperr.HasCode(err, code) {
		t.Fatalf("err = %v, want code %s", err, code)
	}
}

func TestFindOne_DecodeFailure(t *testing.T) {
	s, db, _ := newTestStore(t, 10)
	ids := db.Collection(CollUsers).Seed(bson.M{"username": 42, "status": int32(1)})

	_, err := s.UserByID(context.Background(), ids[0])
	wantCode(t, err, apperr.CodeDecodeFailed)
}

func TestFindOne_StoreFailure(t *testing.T) {
	s, db, _ := newTestStore(t, 10)
	db.Collection(CollUsers).Err = context.DeadlineExceeded

	_, err := s.UserByUsername(context.Background(), "ann")
	if err == nil || apperr.HasCode(err, apperr.CodeNotFound) {
		t.Fatalf("err = %v, want a store error", err)
	}
}

func TestCategories(t *testing.T) {
	s, _, _ := newTestStore(t, 10)
	ctx := context.Background()

	web, err := s.NewCategory(ctx, " 网站开发 ", "Web Development")
	if err != nil {
		t.Fatalf("NewCategory: %v", err)
	}
	if web.Slug != "网站开发-web-development" {
		t.Errorf("slug = %q", web.Slug)
	}

	_, err = s.NewCategory(ctx, "网站开发", "Web Development")
	wantCode(t, err, apperr.CodeAlreadyExists)

	_, err = s.NewCategory(ctx, "-", "Mobile")
	wantCode(t, err, apperr.CodeValidationFailed)

	got, err := s.CategoryBySlug(ctx, "网站开发-WEB-development")
	if err != nil || got.ID != web.ID {
		t.Fatalf("CategoryBySlug = %v, %v", got, err)
	}
	_, err = s.CategoryBySlug(ctx, "nope")
	wantCode(t, err, apperr.CodeNotFound)

	mobile, err := s.NewCategory(ctx, "移动应用", "Mobile")
	if err != nil {
		t.Fatalf("NewCategory: %v", err)
	}
	u := mustUser(t, s, "ann", 1)
	if _, err := s.NewCategoryUser(ctx, u.ID, mobile.ID); err != nil {
		t.Fatalf("NewCategoryUser: %v", err)
	}
	_, err = s.NewCategoryUser(ctx, u.ID, mobile.ID)
	wantCode(t, err, apperr.CodeAlreadyExists)

	mine, err := s.CategoriesByUsername(ctx, "ANN")
	if err != nil {
		t.Fatalf("CategoriesByUsername: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != mobile.ID {
		t.Errorf("CategoriesByUsername = %+v, want only %s", mine, mobile.Slug)
	}

	all, err := s.Categories(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("Categories = %d, %v", len(all), err)
	}
}

func TestFiles(t *testing.T) {
	s, _, _ := newTestStore(t, 10)
	ctx := context.Background()
	u := mustUser(t, s, "ann", 1)
	p, err := s.NewProject(ctx, ProjectNew{UserID: u.ID, Subject: "site"})
	if err != nil {
		t.Fatalf("NewProject: %v", err)
	}

	spec, err := s.NewFile(ctx, "spec.pdf", "pdf", "/files/spec.pdf")
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	logo, err := s.NewFile(ctx, "logo.png", "image", "/files/logo.png")
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	for _, f := range []*File{spec, logo} {
		if _, err := s.NewProjectFile(ctx, u.ID, p.ID, f.ID); err != nil {
			t.Fatalf("NewProjectFile: %v", err)
		}
	}
	_, err = s.NewProjectFile(ctx, u.ID, p.ID, spec.ID)
	wantCode(t, err, apperr.CodeAlreadyExists)

	files, err := s.FilesByProjectID(ctx, p.ID)
	if err != nil {
		t.Fatalf("FilesByProjectID: %v", err)
	}
	if len(files) != 2 || files[0].ID != spec.ID || files[1].ID != logo.ID {
		t.Errorf("FilesByProjectID = %+v", files)
	}

	_, err = s.NewFile(ctx, "", "pdf", "/x")
	wantCode(t, err, apperr.CodeValidationFailed)
}

func TestWishes(t *testing.T) {
	s, db, _ := newTestStore(t, 10)
	ctx := context.Background()
	ann := mustUser(t, s, "ann", 1)
	bob := mustUser(t, s, "bob", 1)

	w1, err := s.NewWish(ctx, ann.ID, "Ship it.", "ann")
	if err != nil {
		t.Fatalf("NewWish: %v", err)
	}
	if _, err := s.NewWish(ctx, bob.ID, "Keep it simple.", "bob"); err != nil {
		t.Fatalf("NewWish: %v", err)
	}
	_, err = s.NewWish(ctx, ann.ID, "Ship it.", "ann")
	wantCode(t, err, apperr.CodeAlreadyExists)

	// Nothing is published yet.
	_, err = s.RandomWish(ctx, "-")
	wantCode(t, err, apperr.CodeNotFound)

	if _, err := db.Collection(CollWishes).UpdateOne(ctx, bson.M{"user_id": bob.ID}, bson.M{"$set": bson.M{"published": true}}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	tests := []struct {
		name      string
		published int
		want      int
	}{
		{"published", 1, 1},
		{"unpublished", -1, 1},
		{"all", 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Wishes(ctx, tt.published)
			if err != nil {
				t.Fatalf("Wishes: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("Wishes(%d) = %d items, want %d", tt.published, len(got), tt.want)
			}
		})
	}

	// ann has no published wish, so the pick falls back to bob's.
	w, err := s.RandomWish(ctx, "ann")
	if err != nil {
		t.Fatalf("RandomWish: %v", err)
	}
	if w.UserID != bob.ID || w.ID == w1.ID {
		t.Errorf("RandomWish(ann) = %+v, want bob's wish", w)
	}

	_, err = s.RandomWish(ctx, "nobody")
	wantCode(t, err, apperr.CodeNotFound)
}
