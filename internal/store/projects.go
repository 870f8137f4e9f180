package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperr "github.com/dalemusser/gigboard/pantry/errors"
	"github.com/dalemusser/gigboard/pantry/pagination"
	"github.com/dalemusser/gigboard/pantry/validate"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const projectsStuff = "projects"

// Positions accepted by ProjectsInPosition, mapped to the minimum status.
var positions = map[string]int32{
	"managed":     6,
	"recommended": 2,
	"published":   1,
}

// DefaultPositionLimit caps ProjectsInPosition when no limit is given.
const DefaultPositionLimit = 10

func projectMiss(id primitive.ObjectID) *apperr.Error {
	return apperr.NotFound("project does not exist").WithDetail("id", id.Hex())
}

// ProjectByID returns the project with the given id.
func (s *Store) ProjectByID(ctx context.Context, id primitive.ObjectID) (*Project, error) {
	return findOne[Project](ctx, s.coll(CollProjects), bson.M{"_id": id}, projectMiss(id))
}

// NewProject stores a submission. The same user may not submit the same
// subject twice within the duplicate window; the rejection carries the
// time of the earlier submission.
func (s *Store) NewProject(ctx context.Context, in ProjectNew) (*Project, error) {
	in.Subject = strings.TrimSpace(in.Subject)
	if !validate.NameGiven(in.Subject) {
		return nil, apperr.Validation("project subject is empty")
	}
	if in.UserID.IsZero() {
		return nil, apperr.Validation("project owner is missing")
	}

	now := s.stamp()
	recent := bson.M{
		"user_id":    in.UserID,
		"subject":    in.Subject,
		"created_at": bson.M{"$gte": now.Add(-s.dupWindow)},
	}
	prior, err := findOne[Project](ctx, s.coll(CollProjects), recent, apperr.NotFound("no recent submission"))
	switch {
	case err == nil:
		return nil, apperr.AlreadyExists("project was already submitted").
			WithDetail("created_at", prior.CreatedAt.Format(time.RFC3339))
	case !isMiss(err):
		return nil, fmt.Errorf("new project: %w", err)
	}

	p := Project{
		ID:           s.newID(),
		UserID:       in.UserID,
		CategoryID:   in.CategoryID,
		Subject:      in.Subject,
		Content:      in.Content,
		ContactUser:  in.ContactUser,
		ContactPhone: in.ContactPhone,
		ContactEmail: in.ContactEmail,
		ContactIm:    in.ContactIm,
		Investment:   in.Investment,
		WorkerType:   in.WorkerType,
		External:     in.External,
		Language:     in.Language,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.insert(ctx, CollProjects, p, "project already exists"); err != nil {
		return nil, err
	}
	s.logger.Info("project submitted", zap.String("project_id", p.ID.Hex()), zap.String("user_id", p.UserID.Hex()))
	return &p, nil
}

// UpdateProjectField changes one field of a project. "status" is set and
// bumps updated_at; "hits", "insides" and "stars" are incremented by the
// given amount.
func (s *Store) UpdateProjectField(ctx context.Context, id primitive.ObjectID, field, value string) (*Project, error) {
	var update bson.M
	switch field {
	case pagination.StatusField:
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
		if err != nil {
			return nil, apperr.Validation("status must be an integer").WithDetail("value", value).Wrap(err)
		}
		update = bson.M{"$set": bson.M{field: int32(n), "updated_at": s.stamp()}}
	case "hits", "insides", "stars":
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, apperr.Validation(field+" must be an integer").WithDetail("value", value).Wrap(err)
		}
		update = bson.M{"$inc": bson.M{field: n}}
	default:
		return nil, apperr.Validation("field cannot be updated").WithDetail("field", field)
	}

	res, err := s.coll(CollProjects).UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return nil, fmt.Errorf("update project %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return nil, projectMiss(id)
	}
	return s.ProjectByID(ctx, id)
}

// RandomProjectID samples one published project updated within the
// freshness window.
func (s *Store) RandomProjectID(ctx context.Context) (primitive.ObjectID, error) {
	eligible := pagination.NewFilter().
		Status(pagination.StatusAtLeast(1)).
		Since("updated_at", s.freshWindow, s.now())
	p, err := sampleOne[Project](ctx, s.coll(CollProjects), eligible.Doc())
	if err != nil {
		return primitive.NilObjectID, err
	}
	if p == nil {
		return primitive.NilObjectID, apperr.NotFound("no fresh project to pick")
	}
	return p.ID, nil
}

// ProjectsInPosition returns the newest projects at or above a position,
// optionally limited to one owner. username "" or "-" means any owner.
func (s *Store) ProjectsInPosition(ctx context.Context, username, position string, limit int64) ([]Project, error) {
	filter := pagination.NewFilter()
	if validate.NameGiven(username) {
		u, err := s.UserByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		filter.Eq("user_id", u.ID)
	}
	floor, ok := positions[strings.TrimSpace(position)]
	if !ok {
		return nil, apperr.Validation("unknown position").WithDetail("position", position)
	}
	filter.Status(pagination.StatusAtLeast(floor))
	if limit < 1 {
		limit = DefaultPositionLimit
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}}).SetLimit(limit)
	return find[Project](ctx, s, CollProjects, "projects_in_"+position, filter.Doc(), opts)
}

// Projects lists every project.
func (s *Store) Projects(ctx context.Context, req pagination.Request) (*pagination.Envelope[Project], error) {
	return s.listProjects(ctx, projectsStuff, pagination.NewFilter(), req)
}

// ProjectsByUserID lists the projects a user posted.
func (s *Store) ProjectsByUserID(ctx context.Context, userID primitive.ObjectID, req pagination.Request) (*pagination.Envelope[Project], error) {
	return s.listProjects(ctx, projectsStuff, pagination.NewFilter().Eq("user_id", userID), req)
}

// ProjectsByUsername lists the projects of the named user.
func (s *Store) ProjectsByUsername(ctx context.Context, username string, req pagination.Request) (*pagination.Envelope[Project], error) {
	u, err := s.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.ProjectsByUserID(ctx, u.ID, req)
}

// ProjectsByCategoryID lists the projects filed under a category.
func (s *Store) ProjectsByCategoryID(ctx context.Context, categoryID primitive.ObjectID, req pagination.Request) (*pagination.Envelope[Project], error) {
	return s.listProjects(ctx, projectsStuff, pagination.NewFilter().Eq("category_id", categoryID), req)
}

// ProjectsByCategorySlug lists the projects of the category with slug.
func (s *Store) ProjectsByCategorySlug(ctx context.Context, slug string, req pagination.Request) (*pagination.Envelope[Project], error) {
	c, err := s.CategoryBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.ProjectsByCategoryID(ctx, c.ID, req)
}

// ProjectsByTopicID lists the projects tagged with a topic. Membership is
// resolved through the tag links first, so a project whose last tag link
// is gone drops out of the listing.
func (s *Store) ProjectsByTopicID(ctx context.Context, topicID primitive.ObjectID, req pagination.Request) (*pagination.Envelope[Project], error) {
	ids, err := s.RelatedIDs(ctx, joinProjectsOfTopic, topicID)
	if err != nil {
		return nil, err
	}
	return s.listProjects(ctx, projectsStuff, pagination.NewFilter().In(pagination.IDField, ids), req)
}

// ProjectsByTopicSlug lists the projects tagged with the topic with slug.
func (s *Store) ProjectsByTopicSlug(ctx context.Context, slug string, req pagination.Request) (*pagination.Envelope[Project], error) {
	t, err := s.TopicBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.ProjectsByTopicID(ctx, t.ID, req)
}

// ProjectsByInvestment lists projects whose investment lies in [low, high].
func (s *Store) ProjectsByInvestment(ctx context.Context, low, high int64, req pagination.Request) (*pagination.Envelope[Project], error) {
	if low > high {
		return nil, apperr.Validation("investment range is inverted").
			WithDetail("min", low).
			WithDetail("max", high)
	}
	return s.listProjects(ctx, projectsStuff, pagination.NewFilter().Range("investment", low, high), req)
}

// ProjectsByWorkerType lists projects whose worker type contains term,
// ignoring case.
func (s *Store) ProjectsByWorkerType(ctx context.Context, term string, req pagination.Request) (*pagination.Envelope[Project], error) {
	return s.listProjects(ctx, projectsStuff, pagination.NewFilter().Contains("worker_type", strings.TrimSpace(term)), req)
}

// ProjectsByExternal lists projects open (or closed) to external workers.
func (s *Store) ProjectsByExternal(ctx context.Context, external bool, req pagination.Request) (*pagination.Envelope[Project], error) {
	return s.listProjects(ctx, projectsStuff, pagination.NewFilter().Eq("external", external), req)
}

func (s *Store) listProjects(ctx context.Context, stuff string, base pagination.Filter, req pagination.Request) (*pagination.Envelope[Project], error) {
	return pagination.List[Project](ctx, s.engine, s.coll(CollProjects), stuff, base, req)
}

// sampleOne draws one random document matching filter, or nil when none
// matches.
func sampleOne[T any](ctx context.Context, c Collection, filter bson.M) (*T, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sample", Value: bson.M{"size": 1}}},
	}
	cur, err := c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return nil, fmt.Errorf("sample: cursor: %w", err)
		}
		return nil, nil
	}
	var out T
	if err := cur.Decode(&out); err != nil {
		return nil, apperr.Decode("sampled record does not fit its entity").
			WithDetail("id", pagination.RawID(cur.Current)).
			Wrap(err)
	}
	return &out, nil
}

func isMiss(err error) bool {
	return apperr.HasCode(err, apperr.CodeNotFound)
}
