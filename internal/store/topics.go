package store

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	apperr "github.com/dalemusser/gigboard/pantry/errors"
	gmongo "github.com/dalemusser/gigboard/pantry/mongo"
	"github.com/dalemusser/gigboard/pantry/pagination"
	"github.com/dalemusser/gigboard/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func topicMiss(field, value string) *apperr.Error {
	return apperr.NotFound("topic does not exist").WithDetail(field, value)
}

// TopicByID returns the topic with the given id.
func (s *Store) TopicByID(ctx context.Context, id primitive.ObjectID) (*Topic, error) {
	return findOne[Topic](ctx, s.coll(CollTopics), bson.M{"_id": id}, topicMiss("id", id.Hex()))
}

// TopicBySlug returns the topic with the given slug.
func (s *Store) TopicBySlug(ctx context.Context, slug string) (*Topic, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	return findOne[Topic](ctx, s.coll(CollTopics), bson.M{"slug": slug}, topicMiss("slug", slug))
}

func (s *Store) topicByName(ctx context.Context, name string) (*Topic, error) {
	return findOne[Topic](ctx, s.coll(CollTopics), bson.M{"name": name}, topicMiss("name", name))
}

// NewTopic records one use of a topic name. A known name has its quotes
// incremented. An unknown one is stored under its slug, or under the slug
// suffixed with the new id when another name already owns that slug.
func (s *Store) NewTopic(ctx context.Context, name string) (*Topic, error) {
	name = text.Normalize(name)
	if name == "" {
		return nil, apperr.Validation("topic name is empty")
	}
	base := text.Slugify(name)

	t := Topic{ID: s.newID(), Name: name, Quotes: 1, Slug: base}
	if base == "" {
		t.Slug = t.ID.Hex()
	}
	for attempt := 0; ; attempt++ {
		_, err := s.coll(CollTopics).InsertOne(ctx, t)
		if err == nil {
			return &t, nil
		}
		if !gmongo.IsDup(err) {
			return nil, fmt.Errorf("new topic: %w", err)
		}
		known, err := s.quoteTopic(ctx, name)
		if err != nil || known != nil {
			return known, err
		}
		if attempt > 0 {
			return nil, apperr.AlreadyExists("topic slug is taken").WithDetail("slug", t.Slug)
		}
		t.Slug = base + "-" + t.ID.Hex()
	}
}

// quoteTopic increments the quotes of the named topic. It returns nil
// without error when no topic has the name.
func (s *Store) quoteTopic(ctx context.Context, name string) (*Topic, error) {
	res, err := s.coll(CollTopics).UpdateOne(ctx,
		bson.M{"name": name},
		bson.M{"$inc": bson.M{"quotes": int64(1)}},
	)
	if err != nil {
		return nil, fmt.Errorf("quote topic: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, nil
	}
	return s.topicByName(ctx, name)
}

// NewTopics records every name of a comma separated list and returns the
// resulting topics in list order. Names are never rejected for their
// slug, so only a store failure stops the batch.
func (s *Store) NewTopics(ctx context.Context, names string) ([]Topic, error) {
	list := text.SplitNames(names)
	if len(list) == 0 {
		return nil, apperr.Validation("no topic names given")
	}
	out := make([]Topic, 0, len(list))
	for _, name := range list {
		t, err := s.NewTopic(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

// NewTopicUser links a topic to a user as a keyword.
func (s *Store) NewTopicUser(ctx context.Context, userID, topicID primitive.ObjectID) (*TopicLink, error) {
	link := NewUserKeyword(userID, topicID)
	link.ID = s.newID()
	if err := s.insert(ctx, CollTopicLinks, link, "keyword already linked"); err != nil {
		return nil, err
	}
	return &link, nil
}

// NewTopicProject tags a project with a topic on behalf of its owner.
func (s *Store) NewTopicProject(ctx context.Context, userID, projectID, topicID primitive.ObjectID) (*TopicLink, error) {
	link := NewProjectTag(userID, projectID, topicID)
	link.ID = s.newID()
	if err := s.insert(ctx, CollTopicLinks, link, "project already tagged with the topic"); err != nil {
		return nil, err
	}
	return &link, nil
}

// DeleteTopicProject removes the tag linking a project to a topic.
func (s *Store) DeleteTopicProject(ctx context.Context, projectID, topicID primitive.ObjectID) error {
	res, err := s.coll(CollTopicLinks).DeleteOne(ctx, bson.M{
		"kind":       ProjectTagLink,
		"project_id": projectID,
		"topic_id":   topicID,
	})
	if err != nil {
		return fmt.Errorf("delete project tag: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("project is not tagged with the topic").
			WithDetail("project_id", projectID.Hex()).
			WithDetail("topic_id", topicID.Hex())
	}
	return nil
}

// Topics returns every topic, most quoted first.
func (s *Store) Topics(ctx context.Context) ([]Topic, error) {
	return find[Topic](ctx, s, CollTopics, "topics", bson.M{}, options.Find().SetSort(byQuotes))
}

// TopicsByProjectID returns every topic a project is tagged with, most
// quoted first. The set is small and returned whole.
func (s *Store) TopicsByProjectID(ctx context.Context, projectID primitive.ObjectID) ([]Topic, error) {
	return s.topicsVia(ctx, joinTopicsOfProject, projectID)
}

// KeywordsByUserID returns the keyword topics of a user.
func (s *Store) KeywordsByUserID(ctx context.Context, userID primitive.ObjectID) ([]Topic, error) {
	return s.topicsVia(ctx, joinKeywordsOfUser, userID)
}

// KeywordsByUsername returns the keyword topics of the named user.
func (s *Store) KeywordsByUsername(ctx context.Context, username string) ([]Topic, error) {
	u, err := s.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.KeywordsByUserID(ctx, u.ID)
}

// TopicsByUserID returns one entry per topic the user tagged projects with.
// Quotes holds how many of the user's tags use the topic.
func (s *Store) TopicsByUserID(ctx context.Context, userID primitive.ObjectID) ([]Topic, error) {
	counts, err := s.relatedCounts(ctx, joinTagTopicsOfUser, userID)
	if err != nil {
		return nil, err
	}
	return s.topicsIn(ctx, sortedIDs(counts), counts)
}

// TopicsByUsername returns the tag topics of the named user.
func (s *Store) TopicsByUsername(ctx context.Context, username string) ([]Topic, error) {
	u, err := s.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.TopicsByUserID(ctx, u.ID)
}

func (s *Store) topicsVia(ctx context.Context, j Join, anchor primitive.ObjectID) ([]Topic, error) {
	ids, err := s.RelatedIDs(ctx, j, anchor)
	if err != nil {
		return nil, err
	}
	return s.topicsIn(ctx, ids, nil)
}

// topicsIn loads the topics with the given ids, optionally replacing their
// quotes with counts, and sorts them by quotes descending.
func (s *Store) topicsIn(ctx context.Context, ids []primitive.ObjectID, counts map[primitive.ObjectID]int64) ([]Topic, error) {
	filter := pagination.NewFilter().In(pagination.IDField, ids).Doc()
	out, err := find[Topic](ctx, s, CollTopics, "topics_by_link", filter)
	if err != nil {
		return nil, err
	}
	if counts != nil {
		for i := range out {
			out[i].Quotes = counts[out[i].ID]
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quotes != out[j].Quotes {
			return out[i].Quotes > out[j].Quotes
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) > 0
	})
	return out, nil
}
