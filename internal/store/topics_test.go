package store

import (
	"context"
	"strings"
	"testing"

	apperr "github.com/dalemusser/gigboard/pantry/errors"
	"github.com/dalemusser/gigboard/pantry/pagination"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNewTopic_QuotesRepeats(t *testing.T) {
	s, _, _ := newTestStore(t, 10)
	ctx := context.Background()

	first, err := s.NewTopic(ctx, "  Go ")
	if err != nil {
		t.Fatalf("NewTopic: %v", err)
	}
	if first.Name != "go" || first.Slug != "go" || first.Quotes != 1 {
		t.Errorf("first = %+v", first)
	}

	again, err := s.NewTopic(ctx, "GO")
	if err != nil {
		t.Fatalf("NewTopic again: %v", err)
	}
	if again.ID != first.ID || again.Quotes != 2 {
		t.Errorf("again = %+v, want same topic with 2 quotes", again)
	}

	batch, err := s.NewTopics(ctx, "Rust, go，C#, rust")
	if err != nil {
		t.Fatalf("NewTopics: %v", err)
	}
	if len(batch) != 3 || batch[0].Name != "rust" || batch[1].Quotes != 3 || batch[2].Slug != "csharp" {
		t.Errorf("batch = %+v", batch)
	}

	_, err = s.NewTopic(ctx, "   ")
	wantCode(t, err, apperr.CodeValidationFailed)
	_, err = s.NewTopics(ctx, " , ，")
	wantCode(t, err, apperr.CodeValidationFailed)

	// "c#!" is a new name whose slug "csharp" is taken.
	sharp, err := s.NewTopic(ctx, "c#!")
	if err != nil {
		t.Fatalf("NewTopic c#!: %v", err)
	}
	if sharp.Name != "c#!" || sharp.Slug != "csharp-"+sharp.ID.Hex() || sharp.Quotes != 1 {
		t.Errorf("c#! = %+v, want its own topic under a suffixed slug", sharp)
	}

	all, err := s.Topics(ctx)
	if err != nil {
		t.Fatalf("Topics: %v", err)
	}
	if len(all) != 4 || all[0].Name != "go" {
		t.Errorf("Topics = %+v, want 4 with go first", all)
	}
}

func TestNewTopic_KeepsMarks(t *testing.T) {
	s, _, _ := newTestStore(t, 10)
	ctx := context.Background()

	names := []string{"ゲーム", "ケーム", "Café", "cafe"}
	seen := make(map[primitive.ObjectID]string)
	slugs := make(map[string]bool)
	for _, in := range names {
		tp, err := s.NewTopic(ctx, in)
		if err != nil {
			t.Fatalf("NewTopic(%q): %v", in, err)
		}
		if want := strings.ToLower(in); tp.Name != want {
			t.Errorf("NewTopic(%q).Name = %q, want %q", in, tp.Name, want)
		}
		if tp.Quotes != 1 {
			t.Errorf("NewTopic(%q).Quotes = %d, want a new topic", in, tp.Quotes)
		}
		if prev, ok := seen[tp.ID]; ok {
			t.Errorf("%q merged into %q", in, prev)
		}
		if slugs[tp.Slug] {
			t.Errorf("slug %q reused for %q", tp.Slug, in)
		}
		seen[tp.ID] = in
		slugs[tp.Slug] = true
	}

	byName, err := s.TopicBySlug(ctx, "cafe")
	if err != nil {
		t.Fatalf("TopicBySlug: %v", err)
	}
	if byName.Name != "café" {
		t.Errorf("slug cafe belongs to %q, want the first writer café", byName.Name)
	}
}

func TestNewTopics_SlugCollisionsDoNotFail(t *testing.T) {
	s, _, _ := newTestStore(t, 10)
	ctx := context.Background()

	if _, err := s.NewTopic(ctx, "rust go"); err != nil {
		t.Fatalf("NewTopic: %v", err)
	}
	dashed, err := s.NewTopic(ctx, "rust-go")
	if err != nil {
		t.Fatalf("NewTopic rust-go: %v", err)
	}
	if !strings.HasPrefix(dashed.Slug, "rust-go-") {
		t.Errorf("rust-go slug = %q, want a suffixed rust-go slug", dashed.Slug)
	}

	batch, err := s.NewTopics(ctx, "web, go, rust/go")
	if err != nil {
		t.Fatalf("NewTopics: %v", err)
	}
	if len(batch) != 3 || batch[2].Name != "rust/go" || batch[2].Quotes != 1 {
		t.Errorf("batch = %+v", batch)
	}

	all, err := s.Topics(ctx)
	if err != nil {
		t.Fatalf("Topics: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("got %d topics, want 5", len(all))
	}
}

func TestTopicLinkRoles(t *testing.T) {
	user, project, topic := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	kw := NewUserKeyword(user, topic)
	if _, ok := kw.AsProjectTag(); ok {
		t.Error("keyword link reads as a project tag")
	}
	if v, ok := kw.AsUserKeyword(); !ok || v.UserID != user || v.TopicID != topic {
		t.Errorf("AsUserKeyword = %+v, %v", v, ok)
	}

	tag := NewProjectTag(user, project, topic)
	if _, ok := tag.AsUserKeyword(); ok {
		t.Error("project tag reads as a keyword link")
	}
	if v, ok := tag.AsProjectTag(); !ok || v.ProjectID != project {
		t.Errorf("AsProjectTag = %+v, %v", v, ok)
	}
}

func TestProjectsByTopic_SoftOrphan(t *testing.T) {
	s, _, _ := newTestStore(t, 10)
	ctx := context.Background()
	ann := mustUser(t, s, "ann", 1)
	topic, err := s.NewTopic(ctx, "golang")
	if err != nil {
		t.Fatalf("NewTopic: %v", err)
	}

	var projects []*Project
	for _, subj := range []string{"api", "cli", "bot"} {
		p := mustProject(t, s, ProjectNew{UserID: ann.ID, Subject: subj}, 1)
		if _, err := s.NewTopicProject(ctx, ann.ID, p.ID, topic.ID); err != nil {
			t.Fatalf("NewTopicProject: %v", err)
		}
		projects = append(projects, p)
	}
	_, err = s.NewTopicProject(ctx, ann.ID, projects[0].ID, topic.ID)
	wantCode(t, err, apperr.CodeAlreadyExists)

	// A keyword link on the same topic is a different role and lists nothing.
	if _, err := s.NewTopicUser(ctx, ann.ID, topic.ID); err != nil {
		t.Fatalf("NewTopicUser: %v", err)
	}

	first := pagination.FirstPage(pagination.AnyStatus())
	env, err := s.ProjectsByTopicSlug(ctx, "golang", first)
	if err != nil {
		t.Fatalf("ProjectsByTopicSlug: %v", err)
	}
	if env.ResCount.TotalCount != 3 {
		t.Fatalf("TotalCount = %d, want 3", env.ResCount.TotalCount)
	}

	orphan := projects[1]
	if err := s.DeleteTopicProject(ctx, orphan.ID, topic.ID); err != nil {
		t.Fatalf("DeleteTopicProject: %v", err)
	}
	wantCode(t, s.DeleteTopicProject(ctx, orphan.ID, topic.ID), apperr.CodeNotFound)

	env, err = s.ProjectsByTopicID(ctx, topic.ID, first)
	if err != nil {
		t.Fatalf("ProjectsByTopicID: %v", err)
	}
	if env.ResCount.TotalCount != 2 {
		t.Errorf("TotalCount after untag = %d, want 2", env.ResCount.TotalCount)
	}
	for _, p := range env.CurrentItems {
		if p.ID == orphan.ID {
			t.Error("untagged project still listed under the topic")
		}
	}

	tags, err := s.TopicsByProjectID(ctx, orphan.ID)
	if err != nil {
		t.Fatalf("TopicsByProjectID: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("untagged project still has topics %+v", tags)
	}

	_, err = s.ProjectsByTopicSlug(ctx, "unknown-slug", first)
	wantCode(t, err, apperr.CodeNotFound)
}

func TestRelatedIDs_DedupSortedIdempotent(t *testing.T) {
	s, db, _ := newTestStore(t, 10)
	ctx := context.Background()
	user := primitive.NewObjectID()
	t1, t2 := primitive.NewObjectID(), primitive.NewObjectID()

	// Unindexed collection so repeated links can exist, as in legacy data.
	links := db.Collection("legacy_links")
	links.Seed(
		bson.M{"user_id": user, "topic_id": t2},
		bson.M{"user_id": user, "topic_id": t1},
		bson.M{"user_id": user, "topic_id": t2},
		bson.M{"user_id": user},
		bson.M{"user_id": primitive.NewObjectID(), "topic_id": t1},
	)
	j := Join{Collection: "legacy_links", Anchor: "user_id", Target: "topic_id"}

	a, err := s.RelatedIDs(ctx, j, user)
	if err != nil {
		t.Fatalf("RelatedIDs: %v", err)
	}
	b, err := s.RelatedIDs(ctx, j, user)
	if err != nil {
		t.Fatalf("RelatedIDs again: %v", err)
	}
	want := []primitive.ObjectID{t1, t2}
	for _, got := range [][]primitive.ObjectID{a, b} {
		if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("RelatedIDs = %v, want %v", got, want)
		}
	}
}

func TestTopicsByUserID_CountsTags(t *testing.T) {
	s, _, _ := newTestStore(t, 10)
	ctx := context.Background()
	ann := mustUser(t, s, "ann", 1)

	goTopic, _ := s.NewTopic(ctx, "go")
	rust, _ := s.NewTopic(ctx, "rust")
	for i := 0; i < 5; i++ {
		// Make rust the most quoted topic globally.
		if _, err := s.NewTopic(ctx, "rust"); err != nil {
			t.Fatalf("NewTopic: %v", err)
		}
	}
	p1 := mustProject(t, s, ProjectNew{UserID: ann.ID, Subject: "one"}, 1)
	p2 := mustProject(t, s, ProjectNew{UserID: ann.ID, Subject: "two"}, 1)
	for _, link := range []struct{ project, topic primitive.ObjectID }{
		{p1.ID, goTopic.ID}, {p2.ID, goTopic.ID}, {p2.ID, rust.ID},
	} {
		if _, err := s.NewTopicProject(ctx, ann.ID, link.project, link.topic); err != nil {
			t.Fatalf("NewTopicProject: %v", err)
		}
	}
	if _, err := s.NewTopicUser(ctx, ann.ID, rust.ID); err != nil {
		t.Fatalf("NewTopicUser: %v", err)
	}

	got, err := s.TopicsByUsername(ctx, "ann")
	if err != nil {
		t.Fatalf("TopicsByUsername: %v", err)
	}
	if len(got) != 2 || got[0].ID != goTopic.ID || got[0].Quotes != 2 || got[1].Quotes != 1 {
		t.Errorf("TopicsByUsername = %+v, want go×2 then rust×1", got)
	}

	kws, err := s.KeywordsByUsername(ctx, "ann")
	if err != nil {
		t.Fatalf("KeywordsByUsername: %v", err)
	}
	if len(kws) != 1 || kws[0].ID != rust.ID || kws[0].Quotes != 6 {
		t.Errorf("KeywordsByUsername = %+v, want rust with its global quotes", kws)
	}

	tags, err := s.TopicsByProjectID(ctx, p2.ID)
	if err != nil {
		t.Fatalf("TopicsByProjectID: %v", err)
	}
	if len(tags) != 2 || tags[0].ID != rust.ID {
		t.Errorf("TopicsByProjectID = %+v, want rust first by quotes", tags)
	}
}
