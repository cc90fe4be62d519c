// Package graph serves the CRM GraphQL API on top of the query and mutation
// resolvers.
package graph

import (
	"context"
	_ "embed"
	"net/http"

	"crm-core/internal/service"

	"github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
	"go.uber.org/zap"
)

//go:embed schema.graphql
var schemaSDL string

// maxDepth bounds nesting so a request cannot fan out without limit
const maxDepth = 8

// NewSchema parses the schema and binds it to the resolvers
func NewSchema(queries service.QueryResolver, mutations service.MutationResolver, logger *zap.Logger) (*graphql.Schema, error) {
	return graphql.ParseSchema(schemaSDL, NewResolver(queries, mutations, logger),
		graphql.MaxDepth(maxDepth),
		graphql.Logger(&panicLogger{logger: logger}),
	)
}

// Handler serves GraphQL POST requests
func Handler(schema *graphql.Schema) http.Handler {
	return &relay.Handler{Schema: schema}
}

type panicLogger struct {
	logger *zap.Logger
}

func (l *panicLogger) LogPanic(ctx context.Context, value interface{}) {
	l.logger.Error("GraphQL resolver panicked", zap.Any("panic", value))
}
