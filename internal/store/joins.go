package store

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// LinkRole says which relation a topics_users_projects record expresses.
type LinkRole string

const (
	// UserKeywordLink ties a topic to a user as one of their keywords.
	UserKeywordLink LinkRole = "user_keyword"

	// ProjectTagLink ties a topic to a project its owner tagged.
	ProjectTagLink LinkRole = "project_tag"
)

// TopicLink is the stored shape of both link roles. Read it through
// AsUserKeyword or AsProjectTag rather than by field.
type TopicLink struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Kind      LinkRole           `bson:"kind" json:"kind"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	TopicID   primitive.ObjectID `bson:"topic_id" json:"topicId"`
	ProjectID primitive.ObjectID `bson:"project_id,omitempty" json:"projectId,omitempty"`
}

// UserKeyword is the UserKeywordLink view of a TopicLink.
type UserKeyword struct {
	UserID  primitive.ObjectID
	TopicID primitive.ObjectID
}

// ProjectTag is the ProjectTagLink view of a TopicLink.
type ProjectTag struct {
	UserID    primitive.ObjectID
	ProjectID primitive.ObjectID
	TopicID   primitive.ObjectID
}

// NewUserKeyword builds a keyword link record.
func NewUserKeyword(userID, topicID primitive.ObjectID) TopicLink {
	return TopicLink{Kind: UserKeywordLink, UserID: userID, TopicID: topicID}
}

// NewProjectTag builds a tag link record.
func NewProjectTag(userID, projectID, topicID primitive.ObjectID) TopicLink {
	return TopicLink{Kind: ProjectTagLink, UserID: userID, ProjectID: projectID, TopicID: topicID}
}

// AsUserKeyword returns the keyword view when l is a keyword link.
func (l TopicLink) AsUserKeyword() (UserKeyword, bool) {
	if l.Kind != UserKeywordLink {
		return UserKeyword{}, false
	}
	return UserKeyword{UserID: l.UserID, TopicID: l.TopicID}, true
}

// AsProjectTag returns the tag view when l is a tag link.
func (l TopicLink) AsProjectTag() (ProjectTag, bool) {
	if l.Kind != ProjectTagLink {
		return ProjectTag{}, false
	}
	return ProjectTag{UserID: l.UserID, ProjectID: l.ProjectID, TopicID: l.TopicID}, true
}

// Join describes one direction through a join collection: records whose
// Anchor field equals the anchor id yield the id held in Target.
type Join struct {
	Collection string
	Anchor     string
	Target     string

	// Role, when set, restricts the walk to records of that link role.
	Role LinkRole
}

// The joins the repositories walk.
var (
	joinTopicsOfProject  = Join{Collection: CollTopicLinks, Anchor: "project_id", Target: "topic_id", Role: ProjectTagLink}
	joinProjectsOfTopic  = Join{Collection: CollTopicLinks, Anchor: "topic_id", Target: "project_id", Role: ProjectTagLink}
	joinTagTopicsOfUser  = Join{Collection: CollTopicLinks, Anchor: "user_id", Target: "topic_id", Role: ProjectTagLink}
	joinKeywordsOfUser   = Join{Collection: CollTopicLinks, Anchor: "user_id", Target: "topic_id", Role: UserKeywordLink}
	joinCategoriesOfUser = Join{Collection: CollCategoriesUsers, Anchor: "user_id", Target: "category_id"}
	joinFilesOfProject   = Join{Collection: CollProjectsFiles, Anchor: "project_id", Target: "file_id"}
)

func (j Join) filter(anchor primitive.ObjectID) bson.M {
	f := bson.M{j.Anchor: anchor}
	if j.Role != "" {
		f["kind"] = j.Role
	}
	return f
}

// RelatedIDs returns the distinct target ids linked to anchor through j,
// sorted ascending. Records without a usable target id are skipped.
func (s *Store) RelatedIDs(ctx context.Context, j Join, anchor primitive.ObjectID) ([]primitive.ObjectID, error) {
	counts, err := s.relatedCounts(ctx, j, anchor)
	if err != nil {
		return nil, err
	}
	return sortedIDs(counts), nil
}

// relatedCounts walks j from anchor and counts the records per target id.
func (s *Store) relatedCounts(ctx context.Context, j Join, anchor primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	opts := options.Find().SetProjection(bson.M{j.Target: 1})
	cur, err := s.coll(j.Collection).Find(ctx, j.filter(anchor), opts)
	if err != nil {
		return nil, fmt.Errorf("%s by %s: %w", j.Collection, j.Anchor, err)
	}
	defer cur.Close(ctx)

	counts := make(map[primitive.ObjectID]int64)
	for cur.Next(ctx) {
		id, ok := cur.Current.Lookup(j.Target).ObjectIDOK()
		if !ok {
			s.logger.Warn("join record without target id",
				zap.String("collection", j.Collection),
				zap.String("target", j.Target),
			)
			continue
		}
		counts[id]++
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%s by %s: cursor: %w", j.Collection, j.Anchor, err)
	}
	return counts, nil
}

func sortedIDs(set map[primitive.ObjectID]int64) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(a, b int) bool { return bytes.Compare(ids[a][:], ids[b][:]) < 0 })
	return ids
}
