package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/graphql-go/graphql"
)

// GraphQLRequest is the POST body of a query request.
type GraphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// GraphQLResponse is the standard data/errors envelope.
type GraphQLResponse struct {
	Data   any            `json:"data,omitempty"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// GraphQLError carries one error message.
type GraphQLError struct {
	Message string `json:"message"`
}

// GraphQLHandler serves queries over HTTP. POST only.
type GraphQLHandler struct {
	schema graphql.Schema
}

// NewGraphQLHandler creates a new GraphQL HTTP handler
func NewGraphQLHandler(schema graphql.Schema) *GraphQLHandler {
	return &GraphQLHandler{schema: schema}
}

func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req GraphQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := Execute(h.schema, req.Query, req.Variables)
	json.NewEncoder(w).Encode(toResponse(result))
}

func toResponse(result *graphql.Result) GraphQLResponse {
	response := GraphQLResponse{Data: result.Data}
	for _, err := range result.Errors {
		response.Errors = append(response.Errors, GraphQLError{Message: err.Message})
	}
	return response
}
