package graph

import (
	"github.com/dalemusser/gigboard/pantry/mongo"
	"github.com/dalemusser/gigboard/pantry/pagination"
	"github.com/graphql-go/graphql"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	nonNullString = graphql.NewNonNull(graphql.String)
	nonNullInt    = graphql.NewNonNull(graphql.Int)
	nonNullBool   = graphql.NewNonNull(graphql.Boolean)
)

// pageArgs returns the arguments of a paginated field plus extra.
func pageArgs(extra graphql.FieldConfigArgument) graphql.FieldConfigArgument {
	args := graphql.FieldConfigArgument{
		"fromPage": {Type: nonNullInt},
		"firstOid": {Type: nonNullString},
		"lastOid":  {Type: nonNullString},
		"status":   {Type: nonNullInt},
	}
	for name, arg := range extra {
		args[name] = arg
	}
	return args
}

// stringArgs declares required String arguments.
func stringArgs(names ...string) graphql.FieldConfigArgument {
	args := make(graphql.FieldConfigArgument, len(names))
	for _, name := range names {
		args[name] = &graphql.ArgumentConfig{Type: nonNullString}
	}
	return args
}

// pageRequest decodes the page arguments of p.
func pageRequest(p graphql.ResolveParams) (pagination.Request, error) {
	return pagination.ParseRequest(
		argInt(p.Args, "fromPage"),
		argString(p.Args, "firstOid"),
		argString(p.Args, "lastOid"),
		argInt(p.Args, "status"),
	)
}

// Argument maps hold what graphql-go coerced: string, int, bool, or a
// nested map for input objects. Absent optional values read as zero.

func argString(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return s
}

func argInt(args map[string]interface{}, name string) int {
	n, _ := args[name].(int)
	return n
}

func argBool(args map[string]interface{}, name string) bool {
	b, _ := args[name].(bool)
	return b
}

func argInput(args map[string]interface{}, name string) map[string]interface{} {
	m, _ := args[name].(map[string]interface{})
	return m
}

// argID parses a required id argument.
func argID(args map[string]interface{}, name string) (primitive.ObjectID, error) {
	return mongo.ParseID(name, argString(args, name))
}

// argOptionalID parses an id argument that may be omitted or empty.
func argOptionalID(args map[string]interface{}, name string) (primitive.ObjectID, error) {
	if argString(args, name) == "" {
		return primitive.NilObjectID, nil
	}
	return argID(args, name)
}
