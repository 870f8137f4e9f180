package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// IndexSpec is one index the board relies on.
type IndexSpec struct {
	Collection string
	Name       string
	Keys       []string
	Unique     bool
}

// Indexes lists every index, natural keys first. The unique ones turn
// concurrent duplicate submissions into duplicate-key errors.
func Indexes() []IndexSpec {
	return []IndexSpec{
		{CollUsers, "uniq_email", []string{"email"}, true},
		{CollUsers, "uniq_username", []string{"username"}, true},
		{CollCategories, "uniq_names", []string{"name_zh", "name_en"}, true},
		{CollCategories, "uniq_slug", []string{"slug"}, true},
		{CollCategoriesUsers, "uniq_user_category", []string{"user_id", "category_id"}, true},
		{CollTopics, "uniq_name", []string{"name"}, true},
		{CollTopics, "uniq_slug", []string{"slug"}, true},
		{CollTopicLinks, "uniq_link", []string{"kind", "user_id", "topic_id", "project_id"}, true},
		{CollProjectsFiles, "uniq_project_file", []string{"user_id", "project_id", "file_id"}, true},
		{CollWishes, "uniq_user_aphorism", []string{"user_id", "aphorism"}, true},

		{CollProjects, "by_user", []string{"user_id", "status"}, false},
		{CollProjects, "by_category", []string{"category_id", "status"}, false},
		{CollProjects, "by_subject", []string{"user_id", "subject", "created_at"}, false},
		{CollTopicLinks, "by_topic", []string{"topic_id", "kind"}, false},
		{CollTopicLinks, "by_project", []string{"project_id", "kind"}, false},
		{CollProjectsFiles, "by_project", []string{"project_id"}, false},
	}
}

// EnsureIndexes creates every index in Indexes on db. Creating an index
// that already exists with the same definition is a no-op on the server.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	byColl := make(map[string][]mongo.IndexModel)
	var order []string
	for _, spec := range Indexes() {
		keys := make(bson.D, 0, len(spec.Keys))
		for _, k := range spec.Keys {
			keys = append(keys, bson.E{Key: k, Value: 1})
		}
		opts := options.Index().SetName(spec.Name)
		if spec.Unique {
			opts.SetUnique(true)
		}
		if _, seen := byColl[spec.Collection]; !seen {
			order = append(order, spec.Collection)
		}
		byColl[spec.Collection] = append(byColl[spec.Collection], mongo.IndexModel{Keys: keys, Options: opts})
	}

	for _, coll := range order {
		names, err := db.Collection(coll).Indexes().CreateMany(ctx, byColl[coll])
		if err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", coll, err)
		}
		if logger != nil {
			logger.Debug("indexes ensured", zap.String("collection", coll), zap.Strings("indexes", names))
		}
	}
	return nil
}
