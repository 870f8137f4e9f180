package graph

import (
	"github.com/dalemusser/gigboard/internal/store"
	"github.com/dalemusser/gigboard/pantry/pagination"
	"github.com/graphql-go/graphql"
)

// types holds the object and input types of the schema. Fields are
// thunks so entity types can refer to each other.
type types struct {
	user           *graphql.Object
	signInInfo     *graphql.Object
	project        *graphql.Object
	category       *graphql.Object
	categoryUser   *graphql.Object
	topic          *graphql.Object
	topicUser      *graphql.Object
	topicProject   *graphql.Object
	file           *graphql.Object
	projectFile    *graphql.Object
	wish           *graphql.Object
	pageInfo       *graphql.Object
	resCount       *graphql.Object
	usersResult    *graphql.Object
	projectsResult *graphql.Object

	userNew         *graphql.InputObject
	projectNew      *graphql.InputObject
	categoryNew     *graphql.InputObject
	categoryUserNew *graphql.InputObject
	topicNew        *graphql.InputObject
	topicUserNew    *graphql.InputObject
	topicProjectNew *graphql.InputObject
	fileNew         *graphql.InputObject
	projectFileNew  *graphql.InputObject
	wishNew         *graphql.InputObject
}

func scalarFields(kinds map[string]graphql.Output) graphql.Fields {
	fields := make(graphql.Fields, len(kinds))
	for name, kind := range kinds {
		fields[name] = &graphql.Field{Type: kind}
	}
	return fields
}

func inputFields(kinds map[string]graphql.Input) graphql.InputObjectConfigFieldMap {
	fields := make(graphql.InputObjectConfigFieldMap, len(kinds))
	for name, kind := range kinds {
		fields[name] = &graphql.InputObjectFieldConfig{Type: kind}
	}
	return fields
}

func (r *Resolver) buildTypes() *types {
	t := &types{}

	t.pageInfo = graphql.NewObject(graphql.ObjectConfig{
		Name: "PageInfo",
		Fields: scalarFields(map[string]graphql.Output{
			"currentStuff":    graphql.String,
			"currentPage":     graphql.Int,
			"firstCursor":     ObjectID,
			"lastCursor":      ObjectID,
			"hasPreviousPage": graphql.Boolean,
			"hasNextPage":     graphql.Boolean,
		}),
	})
	t.resCount = graphql.NewObject(graphql.ObjectConfig{
		Name: "ResCount",
		Fields: scalarFields(map[string]graphql.Output{
			"pagesCount": graphql.Int,
			"totalCount": graphql.Int,
		}),
	})

	t.user = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := scalarFields(map[string]graphql.Output{
				"id":            ObjectID,
				"username":      graphql.String,
				"email":         graphql.String,
				"nickname":      graphql.String,
				"phoneNumber":   graphql.String,
				"phonePublic":   graphql.Boolean,
				"imAccount":     graphql.String,
				"imPublic":      graphql.Boolean,
				"website":       graphql.String,
				"introduction":  graphql.String,
				"workerQuality": graphql.Int,
				"bossQuality":   graphql.Int,
				"createdAt":     DateTime,
				"updatedAt":     DateTime,
				"status":        graphql.Int,
			})
			fields["projects"] = &graphql.Field{
				Type:    t.projectsResult,
				Args:    graphql.FieldConfigArgument{"status": {Type: nonNullInt}},
				Resolve: r.guard(r.userProjects),
			}
			fields["keywords"] = &graphql.Field{Type: graphql.NewList(t.topic), Resolve: r.guard(r.userKeywords)}
			fields["topics"] = &graphql.Field{Type: graphql.NewList(t.topic), Resolve: r.guard(r.userTopics)}
			fields["categories"] = &graphql.Field{Type: graphql.NewList(t.category), Resolve: r.guard(r.userCategories)}
			fields["wishes"] = &graphql.Field{
				Type:    graphql.NewList(t.wish),
				Args:    graphql.FieldConfigArgument{"published": {Type: graphql.Int, DefaultValue: 0}},
				Resolve: r.guard(r.userWishes),
			}
			return fields
		}),
	})
	t.signInInfo = graphql.NewObject(graphql.ObjectConfig{
		Name: "SignInInfo",
		Fields: scalarFields(map[string]graphql.Output{
			"username": graphql.String,
			"token":    graphql.String,
		}),
	})

	t.project = graphql.NewObject(graphql.ObjectConfig{
		Name: "Project",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := scalarFields(map[string]graphql.Output{
				"id":           ObjectID,
				"userId":       ObjectID,
				"categoryId":   ObjectID,
				"subject":      graphql.String,
				"content":      graphql.String,
				"contactUser":  graphql.String,
				"contactPhone": graphql.String,
				"contactEmail": graphql.String,
				"contactIm":    graphql.String,
				"investment":   graphql.Int,
				"workerType":   graphql.String,
				"external":     graphql.Boolean,
				"hits":         graphql.Int,
				"insides":      graphql.Int,
				"stars":        graphql.Int,
				"language":     graphql.String,
				"createdAt":    DateTime,
				"updatedAt":    DateTime,
				"status":       graphql.Int,
			})
			fields["user"] = &graphql.Field{Type: t.user, Resolve: r.guard(r.projectUser)}
			fields["category"] = &graphql.Field{Type: t.category, Resolve: r.guard(r.projectCategory)}
			fields["topics"] = &graphql.Field{Type: graphql.NewList(t.topic), Resolve: r.guard(r.projectTopics)}
			fields["files"] = &graphql.Field{Type: graphql.NewList(t.file), Resolve: r.guard(r.projectFiles)}
			return fields
		}),
	})

	t.category = graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := scalarFields(map[string]graphql.Output{
				"id":     ObjectID,
				"nameZh": graphql.String,
				"nameEn": graphql.String,
				"slug":   graphql.String,
				"quotes": graphql.Int,
			})
			fields["projects"] = &graphql.Field{
				Type:    t.projectsResult,
				Args:    pageArgs(nil),
				Resolve: r.guard(r.categoryProjects),
			}
			return fields
		}),
	})
	t.categoryUser = graphql.NewObject(graphql.ObjectConfig{
		Name: "CategoryUser",
		Fields: scalarFields(map[string]graphql.Output{
			"id":         ObjectID,
			"userId":     ObjectID,
			"categoryId": ObjectID,
		}),
	})

	t.topic = graphql.NewObject(graphql.ObjectConfig{
		Name: "Topic",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := scalarFields(map[string]graphql.Output{
				"id":     ObjectID,
				"name":   graphql.String,
				"quotes": graphql.Int,
				"slug":   graphql.String,
			})
			fields["projects"] = &graphql.Field{
				Type:    t.projectsResult,
				Args:    pageArgs(nil),
				Resolve: r.guard(r.topicProjects),
			}
			return fields
		}),
	})
	t.topicUser = graphql.NewObject(graphql.ObjectConfig{
		Name: "TopicUser",
		Fields: scalarFields(map[string]graphql.Output{
			"id":      ObjectID,
			"userId":  ObjectID,
			"topicId": ObjectID,
		}),
	})
	t.topicProject = graphql.NewObject(graphql.ObjectConfig{
		Name: "TopicProject",
		Fields: scalarFields(map[string]graphql.Output{
			"id":        ObjectID,
			"userId":    ObjectID,
			"projectId": ObjectID,
			"topicId":   ObjectID,
		}),
	})

	t.file = graphql.NewObject(graphql.ObjectConfig{
		Name: "File",
		Fields: scalarFields(map[string]graphql.Output{
			"id":       ObjectID,
			"name":     graphql.String,
			"kind":     graphql.String,
			"location": graphql.String,
		}),
	})
	t.projectFile = graphql.NewObject(graphql.ObjectConfig{
		Name: "ProjectFile",
		Fields: scalarFields(map[string]graphql.Output{
			"id":        ObjectID,
			"userId":    ObjectID,
			"projectId": ObjectID,
			"fileId":    ObjectID,
		}),
	})

	t.wish = graphql.NewObject(graphql.ObjectConfig{
		Name: "Wish",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := scalarFields(map[string]graphql.Output{
				"id":        ObjectID,
				"userId":    ObjectID,
				"aphorism":  graphql.String,
				"author":    graphql.String,
				"createdAt": DateTime,
				"updatedAt": DateTime,
				"published": graphql.Boolean,
			})
			fields["user"] = &graphql.Field{Type: t.user, Resolve: r.guard(r.wishUser)}
			return fields
		}),
	})

	t.usersResult = resultType("UsersResult", t.pageInfo, t.resCount, t.user)
	t.projectsResult = resultType("ProjectsResult", t.pageInfo, t.resCount, t.project)

	t.userNew = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "UserNew",
		Fields: inputFields(map[string]graphql.Input{
			"username":     graphql.String,
			"email":        graphql.String,
			"password":     graphql.String,
			"nickname":     graphql.String,
			"phoneNumber":  graphql.String,
			"phonePublic":  graphql.Boolean,
			"imAccount":    graphql.String,
			"imPublic":     graphql.Boolean,
			"website":      graphql.String,
			"introduction": graphql.String,
		}),
	})
	t.projectNew = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "ProjectNew",
		Fields: inputFields(map[string]graphql.Input{
			"userId":       nonNullString,
			"categoryId":   graphql.String,
			"subject":      nonNullString,
			"content":      graphql.String,
			"contactUser":  graphql.String,
			"contactPhone": graphql.String,
			"contactEmail": graphql.String,
			"contactIm":    graphql.String,
			"investment":   graphql.Int,
			"workerType":   graphql.String,
			"external":     graphql.Boolean,
			"language":     graphql.String,
		}),
	})
	t.categoryNew = graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   "CategoryNew",
		Fields: inputFields(map[string]graphql.Input{"nameZh": nonNullString, "nameEn": nonNullString}),
	})
	t.categoryUserNew = graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   "CategoryUserNew",
		Fields: inputFields(map[string]graphql.Input{"userId": nonNullString, "categoryId": nonNullString}),
	})
	t.topicNew = graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   "TopicNew",
		Fields: inputFields(map[string]graphql.Input{"name": nonNullString}),
	})
	t.topicUserNew = graphql.NewInputObject(graphql.InputObjectConfig{
		Name:   "TopicUserNew",
		Fields: inputFields(map[string]graphql.Input{"userId": nonNullString, "topicId": nonNullString}),
	})
	t.topicProjectNew = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "TopicProjectNew",
		Fields: inputFields(map[string]graphql.Input{
			"userId":    nonNullString,
			"projectId": nonNullString,
			"topicId":   nonNullString,
		}),
	})
	t.fileNew = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "FileNew",
		Fields: inputFields(map[string]graphql.Input{
			"name":     nonNullString,
			"kind":     graphql.String,
			"location": nonNullString,
		}),
	})
	t.projectFileNew = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "ProjectFileNew",
		Fields: inputFields(map[string]graphql.Input{
			"userId":    nonNullString,
			"projectId": nonNullString,
			"fileId":    nonNullString,
		}),
	})
	t.wishNew = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "WishNew",
		Fields: inputFields(map[string]graphql.Input{
			"userId":   nonNullString,
			"aphorism": nonNullString,
			"author":   graphql.String,
		}),
	})
	return t
}

// resultType is the page envelope of one entity type.
func resultType(name string, pageInfo, resCount, item *graphql.Object) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: name,
		Fields: graphql.Fields{
			"pageInfo":     &graphql.Field{Type: pageInfo},
			"resCount":     &graphql.Field{Type: resCount},
			"currentItems": &graphql.Field{Type: graphql.NewList(item)},
		},
	})
}

// Nested fields.

func (r *Resolver) userProjects(p graphql.ResolveParams) (interface{}, error) {
	u, err := source[store.User](p)
	if err != nil {
		return nil, err
	}
	req := pagination.FirstPage(pagination.StatusFromCode(argInt(p.Args, "status")))
	return r.store.ProjectsByUserID(p.Context, u.ID, req)
}

func (r *Resolver) userKeywords(p graphql.ResolveParams) (interface{}, error) {
	u, err := source[store.User](p)
	if err != nil {
		return nil, err
	}
	return r.store.KeywordsByUserID(p.Context, u.ID)
}

func (r *Resolver) userTopics(p graphql.ResolveParams) (interface{}, error) {
	u, err := source[store.User](p)
	if err != nil {
		return nil, err
	}
	return r.store.TopicsByUserID(p.Context, u.ID)
}

func (r *Resolver) userCategories(p graphql.ResolveParams) (interface{}, error) {
	u, err := source[store.User](p)
	if err != nil {
		return nil, err
	}
	return r.store.CategoriesByUserID(p.Context, u.ID)
}

func (r *Resolver) userWishes(p graphql.ResolveParams) (interface{}, error) {
	u, err := source[store.User](p)
	if err != nil {
		return nil, err
	}
	return r.store.WishesByUserID(p.Context, u.ID, argInt(p.Args, "published"))
}

func (r *Resolver) projectUser(p graphql.ResolveParams) (interface{}, error) {
	pr, err := source[store.Project](p)
	if err != nil {
		return nil, err
	}
	return r.store.UserByID(p.Context, pr.UserID)
}

// projectCategory is null for a project filed under no category.
func (r *Resolver) projectCategory(p graphql.ResolveParams) (interface{}, error) {
	pr, err := source[store.Project](p)
	if err != nil {
		return nil, err
	}
	if pr.CategoryID.IsZero() {
		return nil, nil
	}
	return r.store.CategoryByID(p.Context, pr.CategoryID)
}

func (r *Resolver) projectTopics(p graphql.ResolveParams) (interface{}, error) {
	pr, err := source[store.Project](p)
	if err != nil {
		return nil, err
	}
	return r.store.TopicsByProjectID(p.Context, pr.ID)
}

func (r *Resolver) projectFiles(p graphql.ResolveParams) (interface{}, error) {
	pr, err := source[store.Project](p)
	if err != nil {
		return nil, err
	}
	return r.store.FilesByProjectID(p.Context, pr.ID)
}

func (r *Resolver) categoryProjects(p graphql.ResolveParams) (interface{}, error) {
	c, err := source[store.Category](p)
	if err != nil {
		return nil, err
	}
	req, err := pageRequest(p)
	if err != nil {
		return nil, err
	}
	return r.store.ProjectsByCategoryID(p.Context, c.ID, req)
}

func (r *Resolver) topicProjects(p graphql.ResolveParams) (interface{}, error) {
	tp, err := source[store.Topic](p)
	if err != nil {
		return nil, err
	}
	req, err := pageRequest(p)
	if err != nil {
		return nil, err
	}
	return r.store.ProjectsByTopicID(p.Context, tp.ID, req)
}

func (r *Resolver) wishUser(p graphql.ResolveParams) (interface{}, error) {
	w, err := source[store.Wish](p)
	if err != nil {
		return nil, err
	}
	return r.store.UserByID(p.Context, w.UserID)
}
