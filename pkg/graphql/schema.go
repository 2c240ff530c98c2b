// Package graphql exposes a read-only query surface over gateway state:
// connections, protocols, meshes and stats. Mutations stay on the REST
// endpoints so counters and events flow through one path.
package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/alice-platform/gateway-engine/pkg/gateway"
)

// GenerateSchema builds the gateway query schema.
func GenerateSchema(gw *gateway.Gateway) (graphql.Schema, error) {
	protocolType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Protocol",
		Fields: graphql.Fields{
			"name":           &graphql.Field{Type: graphql.String},
			"description":    &graphql.Field{Type: graphql.String},
			"latencyMs":      &graphql.Field{Type: graphql.Float},
			"throughputMbps": &graphql.Field{Type: graphql.Float},
		},
	})

	connectionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Connection",
		Fields: graphql.Fields{
			"connectionId": &graphql.Field{Type: graphql.String},
			"deviceId":     &graphql.Field{Type: graphql.String},
			"protocol":     &graphql.Field{Type: graphql.String},
			"region":       &graphql.Field{Type: graphql.String},
			"endpoint":     &graphql.Field{Type: graphql.String},
			"status":       &graphql.Field{Type: graphql.String},
		},
	})

	edgeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MeshEdge",
		Fields: graphql.Fields{
			"from":      &graphql.Field{Type: graphql.String},
			"to":        &graphql.Field{Type: graphql.String},
			"latencyMs": &graphql.Field{Type: graphql.Float},
		},
	})

	meshType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mesh",
		Fields: graphql.Fields{
			"meshId":   &graphql.Field{Type: graphql.String},
			"topology": &graphql.Field{Type: graphql.String},
			"status":   &graphql.Field{Type: graphql.String},
			"devices":  &graphql.Field{Type: graphql.NewList(graphql.String)},
			"connections": &graphql.Field{
				Type: graphql.NewList(edgeType),
			},
		},
	})

	statsType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Stats",
		Fields: graphql.Fields{
			"totalConnections":  &graphql.Field{Type: graphql.Int},
			"totalSyncs":        &graphql.Field{Type: graphql.Int},
			"totalTransforms":   &graphql.Field{Type: graphql.Int},
			"bytesRelayed":      &graphql.Field{Type: graphql.Int},
			"activeConnections": &graphql.Field{Type: graphql.Int},
			"activeMeshes":      &graphql.Field{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"protocols": &graphql.Field{
				Type: graphql.NewList(protocolType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					infos := gw.Protocols()
					out := make([]map[string]any, 0, len(infos))
					for _, info := range infos {
						out = append(out, map[string]any{
							"name":           info.Name,
							"description":    info.Description,
							"latencyMs":      info.LatencyMs,
							"throughputMbps": info.ThroughputMbps,
						})
					}
					return out, nil
				},
			},
			"connections": &graphql.Field{
				Type: graphql.NewList(connectionType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					conns := gw.Connections()
					out := make([]map[string]any, 0, len(conns))
					for _, c := range conns {
						out = append(out, connectionToMap(c))
					}
					return out, nil
				},
			},
			"connection": &graphql.Field{
				Type: connectionType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					conn, err := gw.Connection(id)
					if err != nil {
						return nil, err
					}
					return connectionToMap(conn), nil
				},
			},
			"meshes": &graphql.Field{
				Type: graphql.NewList(meshType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					meshes := gw.Meshes()
					out := make([]map[string]any, 0, len(meshes))
					for _, m := range meshes {
						out = append(out, meshToMap(m))
					}
					return out, nil
				},
			},
			"mesh": &graphql.Field{
				Type: meshType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					id, _ := p.Args["id"].(string)
					m, err := gw.Mesh(id)
					if err != nil {
						return nil, err
					}
					return meshToMap(m), nil
				},
			},
			"stats": &graphql.Field{
				Type: statsType,
				Resolve: func(p graphql.ResolveParams) (any, error) {
					s := gw.Stats()
					return map[string]any{
						"totalConnections":  int(s.TotalConnections),
						"totalSyncs":        int(s.TotalSyncs),
						"totalTransforms":   int(s.TotalTransforms),
						"bytesRelayed":      int(s.BytesRelayed),
						"activeConnections": s.ActiveConnections,
						"activeMeshes":      s.ActiveMeshes,
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}
