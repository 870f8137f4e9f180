package graph

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dalemusser/gigboard/httputil"
	apperr "github.com/dalemusser/gigboard/pantry/errors"
	"github.com/graphql-go/graphql"
	"go.uber.org/zap"
)

// Request is a GraphQL request as sent over HTTP.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// Handler serves a schema. POST takes a JSON Request body; GET takes the
// query, variables and operationName URL parameters. Execution results,
// including field errors, are returned with status 200.
type Handler struct {
	schema graphql.Schema
	logger *zap.Logger
}

// NewHandler returns a Handler for schema.
func NewHandler(schema graphql.Schema, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{schema: schema, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		req.Query = q.Get("query")
		req.OperationName = q.Get("operationName")
		if v := q.Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				apperr.Write(w, apperr.BadRequest("variables must be a JSON object"))
				return
			}
		}
	case http.MethodPost:
		if err := httputil.BindJSON(r, &req); err != nil {
			apperr.Write(w, apperr.BadRequest(err.Error()))
			return
		}
	default:
		w.Header().Set("Allow", "GET, POST")
		apperr.Write(w, apperr.MethodNotAllowed("use GET or POST"))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		apperr.Write(w, apperr.BadRequest("query is required"))
		return
	}

	res := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        r.Context(),
	})
	if res.HasErrors() {
		h.logger.Debug("graphql request returned errors",
			zap.String("operation", req.OperationName),
			zap.Int("errors", len(res.Errors)),
		)
	}
	if err := httputil.WriteJSON(w, http.StatusOK, res); err != nil {
		h.logger.Warn("graphql response not written", zap.Error(err))
	}
}
