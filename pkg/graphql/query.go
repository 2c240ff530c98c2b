package graphql

import (
	"github.com/graphql-go/graphql"
)

// Execute runs a query against the schema. Variables may be nil.
func Execute(schema graphql.Schema, query string, variables map[string]any) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: variables,
	})
}

// ExecuteQuery runs a query without variables.
func ExecuteQuery(query string, schema graphql.Schema) *graphql.Result {
	return Execute(schema, query, nil)
}

// ExecuteQueryWithVariables runs a parameterized query.
func ExecuteQueryWithVariables(query string, schema graphql.Schema, variables map[string]any) *graphql.Result {
	return Execute(schema, query, variables)
}
