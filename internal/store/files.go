package store

import (
	"context"
	"strings"

	apperr "github.com/dalemusser/gigboard/pantry/errors"
	"github.com/dalemusser/gigboard/pantry/pagination"
	"github.com/dalemusser/gigboard/pantry/validate"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewFile stores the metadata of an uploaded file.
func (s *Store) NewFile(ctx context.Context, name, kind, location string) (*File, error) {
	name, location = strings.TrimSpace(name), strings.TrimSpace(location)
	if !validate.NameGiven(name) || location == "" {
		return nil, apperr.Validation("file name and location are required")
	}
	f := File{ID: s.newID(), Name: name, Kind: strings.TrimSpace(kind), Location: location}
	if err := s.insert(ctx, CollFiles, f, "file already exists"); err != nil {
		return nil, err
	}
	return &f, nil
}

// FileByID returns the file with the given id.
func (s *Store) FileByID(ctx context.Context, id primitive.ObjectID) (*File, error) {
	miss := apperr.NotFound("file does not exist").WithDetail("id", id.Hex())
	return findOne[File](ctx, s.coll(CollFiles), bson.M{"_id": id}, miss)
}

// NewProjectFile attaches a file to a project.
func (s *Store) NewProjectFile(ctx context.Context, userID, projectID, fileID primitive.ObjectID) (*ProjectFile, error) {
	pf := ProjectFile{ID: s.newID(), UserID: userID, ProjectID: projectID, FileID: fileID}
	if err := s.insert(ctx, CollProjectsFiles, pf, "file already attached to the project"); err != nil {
		return nil, err
	}
	return &pf, nil
}

// FilesByProjectID returns the files attached to a project, oldest first.
func (s *Store) FilesByProjectID(ctx context.Context, projectID primitive.ObjectID) ([]File, error) {
	ids, err := s.RelatedIDs(ctx, joinFilesOfProject, projectID)
	if err != nil {
		return nil, err
	}
	filter := pagination.NewFilter().In(pagination.IDField, ids).Doc()
	opts := options.Find().SetSort(bson.D{{Key: pagination.IDField, Value: 1}})
	return find[File](ctx, s, CollFiles, "files_by_project", filter, opts)
}
