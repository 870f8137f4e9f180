package graph

import (
	"github.com/dalemusser/gigboard/internal/store"
	"github.com/dalemusser/gigboard/pantry/pagination"
	"github.com/graphql-go/graphql"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// listFn reads one page of projects.
type listFn func(p graphql.ResolveParams, req pagination.Request) (*pagination.Envelope[store.Project], error)

// paged resolves a paginated projects field.
func (r *Resolver) paged(extra graphql.FieldConfigArgument, list listFn) *graphql.Field {
	return &graphql.Field{
		Type: r.types.projectsResult,
		Args: pageArgs(extra),
		Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
			req, err := pageRequest(p)
			if err != nil {
				return nil, err
			}
			return list(p, req)
		}),
	}
}

// byID resolves a field taking one id argument.
func (r *Resolver) byID(out graphql.Output, arg string, get func(p graphql.ResolveParams, id primitive.ObjectID) (interface{}, error)) *graphql.Field {
	return &graphql.Field{
		Type: out,
		Args: stringArgs(arg),
		Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
			id, err := argID(p.Args, arg)
			if err != nil {
				return nil, err
			}
			return get(p, id)
		}),
	}
}

func (r *Resolver) queryType() *graphql.Object {
	t := r.types
	s := r.store

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			// users
			"userSignIn": &graphql.Field{
				Type:    t.signInInfo,
				Args:    stringArgs("signature", "password"),
				Resolve: r.guard(r.userSignIn),
			},
			"userById": r.byID(t.user, "id", func(p graphql.ResolveParams, id primitive.ObjectID) (interface{}, error) {
				return s.UserByID(p.Context, id)
			}),
			"userByEmail": &graphql.Field{
				Type: t.user,
				Args: stringArgs("email"),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					return s.UserByEmail(p.Context, argString(p.Args, "email"))
				}),
			},
			"userByUsername": &graphql.Field{
				Type: t.user,
				Args: stringArgs("username"),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					return s.UserByUsername(p.Context, argString(p.Args, "username"))
				}),
			},
			"users": &graphql.Field{
				Type: t.usersResult,
				Args: pageArgs(nil),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					req, err := pageRequest(p)
					if err != nil {
						return nil, err
					}
					return s.Users(p.Context, req)
				}),
			},
			"usersByQuality": &graphql.Field{
				Type: t.usersResult,
				Args: pageArgs(stringArgs("qualityField")),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					req, err := pageRequest(p)
					if err != nil {
						return nil, err
					}
					return s.UsersByQuality(p.Context, argString(p.Args, "qualityField"), req)
				}),
			},

			// projects
			"projectById": r.byID(t.project, "projectId", func(p graphql.ResolveParams, id primitive.ObjectID) (interface{}, error) {
				return s.ProjectByID(p.Context, id)
			}),
			"projectRandomId": &graphql.Field{
				Type: ObjectID,
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					return s.RandomProjectID(p.Context)
				}),
			},
			"projects": r.paged(nil, func(p graphql.ResolveParams, req pagination.Request) (*pagination.Envelope[store.Project], error) {
				return s.Projects(p.Context, req)
			}),
			"projectsInPosition": &graphql.Field{
				Type: graphql.NewList(t.project),
				Args: graphql.FieldConfigArgument{
					"username": {Type: nonNullString},
					"position": {Type: nonNullString},
					"limit":    {Type: graphql.Int, DefaultValue: 0},
				},
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					return s.ProjectsInPosition(p.Context,
						argString(p.Args, "username"),
						argString(p.Args, "position"),
						int64(argInt(p.Args, "limit")),
					)
				}),
			},
			"projectsByUserId": r.paged(stringArgs("userId"), func(p graphql.ResolveParams, req pagination.Request) (*pagination.Envelope[store.Project], error) {
				id, err := argID(p.Args, "userId")
				if err != nil {
					return nil, err
				}
				return s.ProjectsByUserID(p.Context, id, req)
			}),
			"projectsByUsername": r.paged(stringArgs("username"), func(p graphql.ResolveParams, req pagination.Request) (*pagination.Envelope[store.Project], error) {
				return s.ProjectsByUsername(p.Context, argString(p.Args, "username"), req)
			}),
			"projectsByCategoryId": r.paged(stringArgs("categoryId"), func(p graphql.ResolveParams, req pagination.Request) (*pagination.Envelope[store.Project], error) {
				id, err := argID(p.Args, "categoryId")
				if err != nil {
					return nil, err
				}
				return s.ProjectsByCategoryID(p.Context, id, req)
			}),
			"projectsByCategorySlug": r.paged(stringArgs("categorySlug"), func(p graphql.ResolveParams, req pagination.Request) (*pagination.Envelope[store.Project], error) {
				return s.ProjectsByCategorySlug(p.Context, argString(p.Args, "categorySlug"), req)
			}),
			"projectsByTopicId": r.paged(stringArgs("topicId"), func(p graphql.ResolveParams, req pagination.Request) (*pagination.Envelope[store.Project], error) {
				id, err := argID(p.Args, "topicId")
				if err != nil {
					return nil, err
				}
				return s.ProjectsByTopicID(p.Context, id, req)
			}),
			"projectsByTopicSlug": r.paged(stringArgs("topicSlug"), func(p graphql.ResolveParams, req pagination.Request) (*pagination.Envelope[store.Project], error) {
				return s.ProjectsByTopicSlug(p.Context, argString(p.Args, "topicSlug"), req)
			}),
			"projectsByInvestment": r.paged(graphql.FieldConfigArgument{
				"investmentMin": {Type: nonNullInt},
				"investmentMax": {Type: nonNullInt},
			}, func(p graphql.ResolveParams, req pagination.Request) (*pagination.Envelope[store.Project], error) {
				return s.ProjectsByInvestment(p.Context,
					int64(argInt(p.Args, "investmentMin")),
					int64(argInt(p.Args, "investmentMax")),
					req,
				)
			}),
			"projectsByWorkerType": r.paged(stringArgs("workerType"), func(p graphql.ResolveParams, req pagination.Request) (*pagination.Envelope[store.Project], error) {
				return s.ProjectsByWorkerType(p.Context, argString(p.Args, "workerType"), req)
			}),
			"projectsByExternal": r.paged(graphql.FieldConfigArgument{
				"external": {Type: nonNullBool},
			}, func(p graphql.ResolveParams, req pagination.Request) (*pagination.Envelope[store.Project], error) {
				return s.ProjectsByExternal(p.Context, argBool(p.Args, "external"), req)
			}),

			// files
			"fileById": r.byID(t.file, "id", func(p graphql.ResolveParams, id primitive.ObjectID) (interface{}, error) {
				return s.FileByID(p.Context, id)
			}),
			"filesByProjectId": r.byID(graphql.NewList(t.file), "projectId", func(p graphql.ResolveParams, id primitive.ObjectID) (interface{}, error) {
				return s.FilesByProjectID(p.Context, id)
			}),

			// categories
			"categories": &graphql.Field{
				Type: graphql.NewList(t.category),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					return r.catalog.categories(p.Context, s)
				}),
			},
			"categoriesByUserId": r.byID(graphql.NewList(t.category), "userId", func(p graphql.ResolveParams, id primitive.ObjectID) (interface{}, error) {
				return s.CategoriesByUserID(p.Context, id)
			}),
			"categoriesByUsername": &graphql.Field{
				Type: graphql.NewList(t.category),
				Args: stringArgs("username"),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					return s.CategoriesByUsername(p.Context, argString(p.Args, "username"))
				}),
			},
			"categoryById": r.byID(t.category, "id", func(p graphql.ResolveParams, id primitive.ObjectID) (interface{}, error) {
				return s.CategoryByID(p.Context, id)
			}),
			"categoryBySlug": &graphql.Field{
				Type: t.category,
				Args: stringArgs("slug"),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					return s.CategoryBySlug(p.Context, argString(p.Args, "slug"))
				}),
			},

			// topics
			"topics": &graphql.Field{
				Type: graphql.NewList(t.topic),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					return r.catalog.topics(p.Context, s)
				}),
			},
			"topicById": r.byID(t.topic, "id", func(p graphql.ResolveParams, id primitive.ObjectID) (interface{}, error) {
				return s.TopicByID(p.Context, id)
			}),
			"topicBySlug": &graphql.Field{
				Type: t.topic,
				Args: stringArgs("slug"),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					return s.TopicBySlug(p.Context, argString(p.Args, "slug"))
				}),
			},
			"topicsByProjectId": r.byID(graphql.NewList(t.topic), "projectId", func(p graphql.ResolveParams, id primitive.ObjectID) (interface{}, error) {
				return s.TopicsByProjectID(p.Context, id)
			}),
			"keywordsByUserId": r.byID(graphql.NewList(t.topic), "userId", func(p graphql.ResolveParams, id primitive.ObjectID) (interface{}, error) {
				return s.KeywordsByUserID(p.Context, id)
			}),
			"keywordsByUsername": &graphql.Field{
				Type: graphql.NewList(t.topic),
				Args: stringArgs("username"),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					return s.KeywordsByUsername(p.Context, argString(p.Args, "username"))
				}),
			},
			"topicsByUserId": r.byID(graphql.NewList(t.topic), "userId", func(p graphql.ResolveParams, id primitive.ObjectID) (interface{}, error) {
				return s.TopicsByUserID(p.Context, id)
			}),
			"topicsByUsername": &graphql.Field{
				Type: graphql.NewList(t.topic),
				Args: stringArgs("username"),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					return s.TopicsByUsername(p.Context, argString(p.Args, "username"))
				}),
			},

			// wishes
			"wishes": &graphql.Field{
				Type: graphql.NewList(t.wish),
				Args: graphql.FieldConfigArgument{"published": {Type: nonNullInt}},
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					return s.Wishes(p.Context, argInt(p.Args, "published"))
				}),
			},
			"wishRandom": &graphql.Field{
				Type: t.wish,
				Args: stringArgs("username"),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					return s.RandomWish(p.Context, argString(p.Args, "username"))
				}),
			},
		},
	})
}

// userSignIn verifies the credential and mints a session token.
func (r *Resolver) userSignIn(p graphql.ResolveParams) (interface{}, error) {
	u, err := r.store.SignIn(p.Context, argString(p.Args, "signature"), argString(p.Args, "password"))
	if err != nil {
		return nil, err
	}
	token, err := r.codec.Encode(u.Email, u.Username)
	if err != nil {
		return nil, err
	}
	return &store.SignInInfo{Username: u.Username, Token: token}, nil
}
