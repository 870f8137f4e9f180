package graph

import (
	"context"
	"errors"

	"github.com/dalemusser/gigboard/internal/store"
	"github.com/dalemusser/gigboard/pantry/email"
	"github.com/graphql-go/graphql"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func (r *Resolver) mutationType() *graphql.Object {
	t := r.types
	input := func(name string, kind *graphql.InputObject) graphql.FieldConfigArgument {
		return graphql.FieldConfigArgument{name: {Type: graphql.NewNonNull(kind)}}
	}
	fieldArgs := func(idArg string) graphql.FieldConfigArgument {
		return stringArgs(idArg, "fieldName", "fieldVal")
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			// users
			"userRegister": &graphql.Field{
				Type:    t.user,
				Args:    input("userNew", t.userNew),
				Resolve: r.guard(r.userRegister),
			},
			"userChangePassword": &graphql.Field{
				Type: t.user,
				Args: graphql.FieldConfigArgument{
					"pwdCur": {Type: nonNullString},
					"pwdNew": {Type: nonNullString},
					"token":  {Type: graphql.String},
				},
				Resolve: r.guard(r.userChangePassword),
			},
			"userUpdateProfile": &graphql.Field{
				Type: t.user,
				Args: graphql.FieldConfigArgument{
					"userNew": {Type: graphql.NewNonNull(t.userNew)},
					"token":   {Type: graphql.String},
				},
				Resolve: r.guard(r.userUpdateProfile),
			},
			"userUpdateOneFieldById": &graphql.Field{
				Type: t.user,
				Args: fieldArgs("userId"),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					id, err := argID(p.Args, "userId")
					if err != nil {
						return nil, err
					}
					return r.store.UpdateUserField(p.Context, id, argString(p.Args, "fieldName"), argString(p.Args, "fieldVal"))
				}),
			},

			// projects
			"projectNew": &graphql.Field{
				Type:    t.project,
				Args:    input("projectNew", t.projectNew),
				Resolve: r.guard(r.projectNew),
			},
			"projectUpdateOneFieldById": &graphql.Field{
				Type: t.project,
				Args: fieldArgs("projectId"),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					id, err := argID(p.Args, "projectId")
					if err != nil {
						return nil, err
					}
					return r.store.UpdateProjectField(p.Context, id, argString(p.Args, "fieldName"), argString(p.Args, "fieldVal"))
				}),
			},

			// files
			"fileNew": &graphql.Field{
				Type: t.file,
				Args: input("fileNew", t.fileNew),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					in := argInput(p.Args, "fileNew")
					return r.store.NewFile(p.Context, argString(in, "name"), argString(in, "kind"), argString(in, "location"))
				}),
			},
			"projectFileNew": &graphql.Field{
				Type: t.projectFile,
				Args: input("projectFileNew", t.projectFileNew),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					ids, err := inputIDs(argInput(p.Args, "projectFileNew"), "userId", "projectId", "fileId")
					if err != nil {
						return nil, err
					}
					return r.store.NewProjectFile(p.Context, ids[0], ids[1], ids[2])
				}),
			},

			// categories
			"categoryNew": &graphql.Field{
				Type: t.category,
				Args: input("categoryNew", t.categoryNew),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					in := argInput(p.Args, "categoryNew")
					c, err := r.store.NewCategory(p.Context, argString(in, "nameZh"), argString(in, "nameEn"))
					if err != nil {
						return nil, err
					}
					r.catalog.forget(p.Context, keyCategories)
					return c, nil
				}),
			},
			"categoryUserNew": &graphql.Field{
				Type: t.categoryUser,
				Args: input("categoryUserNew", t.categoryUserNew),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					ids, err := inputIDs(argInput(p.Args, "categoryUserNew"), "userId", "categoryId")
					if err != nil {
						return nil, err
					}
					return r.store.NewCategoryUser(p.Context, ids[0], ids[1])
				}),
			},

			// topics
			"topicNew": &graphql.Field{
				Type: t.topic,
				Args: input("topicNew", t.topicNew),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					tp, err := r.store.NewTopic(p.Context, argString(argInput(p.Args, "topicNew"), "name"))
					if err != nil {
						return nil, err
					}
					r.catalog.forget(p.Context, keyTopics)
					return tp, nil
				}),
			},
			"topicsNew": &graphql.Field{
				Type: graphql.NewList(t.topic),
				Args: stringArgs("topicNames"),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					// Some names may be stored before a later one fails.
					defer r.catalog.forget(p.Context, keyTopics)
					return r.store.NewTopics(p.Context, argString(p.Args, "topicNames"))
				}),
			},
			"topicUserNew": &graphql.Field{
				Type: t.topicUser,
				Args: input("topicUserNew", t.topicUserNew),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					ids, err := inputIDs(argInput(p.Args, "topicUserNew"), "userId", "topicId")
					if err != nil {
						return nil, err
					}
					return r.store.NewTopicUser(p.Context, ids[0], ids[1])
				}),
			},
			"topicProjectNew": &graphql.Field{
				Type: t.topicProject,
				Args: input("topicProjectNew", t.topicProjectNew),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					ids, err := inputIDs(argInput(p.Args, "topicProjectNew"), "userId", "projectId", "topicId")
					if err != nil {
						return nil, err
					}
					return r.store.NewTopicProject(p.Context, ids[0], ids[1], ids[2])
				}),
			},
			"topicProjectDelete": &graphql.Field{
				Type: graphql.Boolean,
				Args: stringArgs("projectId", "topicId"),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					ids, err := inputIDs(p.Args, "projectId", "topicId")
					if err != nil {
						return nil, err
					}
					if err := r.store.DeleteTopicProject(p.Context, ids[0], ids[1]); err != nil {
						return nil, err
					}
					return true, nil
				}),
			},

			// wishes
			"wishNew": &graphql.Field{
				Type: t.wish,
				Args: input("wishNew", t.wishNew),
				Resolve: r.guard(func(p graphql.ResolveParams) (interface{}, error) {
					in := argInput(p.Args, "wishNew")
					userID, err := argID(in, "userId")
					if err != nil {
						return nil, err
					}
					return r.store.NewWish(p.Context, userID, argString(in, "aphorism"), argString(in, "author"))
				}),
			},
		},
	})
}

// inputIDs parses the named id fields of an argument map in order.
func inputIDs(args map[string]interface{}, names ...string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, len(names))
	for i, name := range names {
		id, err := argID(args, name)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}

func userNewFrom(in map[string]interface{}) store.UserNew {
	return store.UserNew{
		Username:     argString(in, "username"),
		Email:        argString(in, "email"),
		Password:     argString(in, "password"),
		Nickname:     argString(in, "nickname"),
		PhoneNumber:  argString(in, "phoneNumber"),
		PhonePublic:  argBool(in, "phonePublic"),
		ImAccount:    argString(in, "imAccount"),
		ImPublic:     argBool(in, "imPublic"),
		Website:      argString(in, "website"),
		Introduction: argString(in, "introduction"),
	}
}

// userRegister stores the account, then mails the activation link. A mail
// failure leaves the account in place and is only logged.
func (r *Resolver) userRegister(p graphql.ResolveParams) (interface{}, error) {
	u, err := r.store.RegisterUser(p.Context, userNewFrom(argInput(p.Args, "userNew")))
	if err != nil {
		return nil, err
	}
	r.sendActivation(p.Context, u)
	return u, nil
}

func (r *Resolver) sendActivation(ctx context.Context, u *store.User) {
	if r.mailer == nil {
		return
	}
	msg := email.ActivationMessage(email.Activation{
		Email:    u.Email,
		Username: u.Username,
		UserID:   u.ID.Hex(),
		SiteURL:  r.siteURL,
	})
	err := r.mailer.Send(ctx, msg)
	switch {
	case err == nil:
		r.logger.Info("activation mail sent", zap.String("user_id", u.ID.Hex()))
	case errors.Is(err, email.ErrDisabled):
		r.logger.Debug("activation mail skipped", zap.String("user_id", u.ID.Hex()))
	default:
		r.logger.Warn("activation mail failed", zap.String("user_id", u.ID.Hex()), zap.Error(err))
	}
}

func (r *Resolver) userChangePassword(p graphql.ResolveParams) (interface{}, error) {
	c, err := r.claims(p)
	if err != nil {
		return nil, err
	}
	return r.store.ChangePassword(p.Context, c.Email, argString(p.Args, "pwdCur"), argString(p.Args, "pwdNew"))
}

func (r *Resolver) userUpdateProfile(p graphql.ResolveParams) (interface{}, error) {
	c, err := r.claims(p)
	if err != nil {
		return nil, err
	}
	return r.store.UpdateProfile(p.Context, c.Email, userNewFrom(argInput(p.Args, "userNew")))
}

func (r *Resolver) projectNew(p graphql.ResolveParams) (interface{}, error) {
	in := argInput(p.Args, "projectNew")
	userID, err := argID(in, "userId")
	if err != nil {
		return nil, err
	}
	categoryID, err := argOptionalID(in, "categoryId")
	if err != nil {
		return nil, err
	}
	return r.store.NewProject(p.Context, store.ProjectNew{
		UserID:       userID,
		CategoryID:   categoryID,
		Subject:      argString(in, "subject"),
		Content:      argString(in, "content"),
		ContactUser:  argString(in, "contactUser"),
		ContactPhone: argString(in, "contactPhone"),
		ContactEmail: argString(in, "contactEmail"),
		ContactIm:    argString(in, "contactIm"),
		Investment:   int64(argInt(in, "investment")),
		WorkerType:   argString(in, "workerType"),
		External:     argBool(in, "external"),
		Language:     argString(in, "language"),
	})
}
