package store

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// GraphAdapter implements Adapter over Neo4j, the property-graph store
// for GRAPH.GRAPH_QUERY. It is optional at deployment time: if no GRAPH
// adapter is registered, the Planner simply drops GRAPH from
// targetStores before planning.
type GraphAdapter struct {
	driver neo4j.DriverWithContext
}

// NewGraphAdapter connects to a Neo4j instance at uri with the given
// credentials.
func NewGraphAdapter(ctx context.Context, uri, username, password string) (*GraphAdapter, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("connect neo4j: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}
	return &GraphAdapter{driver: driver}, nil
}

func (g *GraphAdapter) Name() Kind { return Graph }

func (g *GraphAdapter) Health(ctx context.Context) Health {
	if err := g.driver.VerifyConnectivity(ctx); err != nil {
		return Health{Healthy: false}
	}
	return Health{Healthy: true}
}

func (g *GraphAdapter) Execute(ctx context.Context, opKind OperationKind, params Params) (Payload, error) {
	if opKind != OpGraphQuery {
		return Payload{}, fmt.Errorf("graph adapter does not support %s", opKind)
	}
	if err := params.Validate(); err != nil {
		return Payload{}, err
	}

	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	cypher, cypherParams := buildCypher(params)

	result, err := session.Run(ctx, cypher, cypherParams)
	if err != nil {
		return Payload{}, fmt.Errorf("run cypher: %w", err)
	}

	var nodes []Node
	for result.Next(ctx) {
		record := result.Record()
		n, ok := record.Get("n")
		if !ok {
			continue
		}
		gnode, ok := n.(neo4j.Node)
		if !ok {
			continue
		}
		nodes = append(nodes, neoNodeToNode(gnode))
	}
	if err := result.Err(); err != nil {
		return Payload{}, fmt.Errorf("iterate cypher results: %w", err)
	}

	return Payload{Nodes: nodes}, nil
}

// buildCypher renders either an adapter-specific pattern string (used
// verbatim, parameterized by the caller-supplied params map) or the
// {startId, relTypes, maxDepth} traversal form into a parameterized
// Cypher query.
func buildCypher(params Params) (string, map[string]any) {
	if params.Pattern != "" {
		return params.Pattern, map[string]any{}
	}

	depth := params.MaxDepth
	if depth <= 0 {
		depth = 1
	}
	relFilter := ""
	if len(params.RelTypes) > 0 {
		relFilter = ":" + joinRelTypes(params.RelTypes)
	}

	cypher := fmt.Sprintf(
		"MATCH (start {id: $startId})-[%s*1..%d]-(n) RETURN DISTINCT n LIMIT 50",
		relFilter, depth,
	)
	return cypher, map[string]any{"startId": params.StartID}
}

func joinRelTypes(types []string) string {
	out := types[0]
	for _, t := range types[1:] {
		out += "|" + t
	}
	return out
}

func neoNodeToNode(n neo4j.Node) Node {
	meta := make(map[string]string, len(n.Props))
	var label, name, content string
	for k, v := range n.Props {
		s := fmt.Sprintf("%v", v)
		meta[k] = s
		switch k {
		case "label":
			label = s
		case "name":
			name = s
		case "content":
			content = s
		}
	}
	if len(n.Labels) > 0 && label == "" {
		label = n.Labels[0]
	}
	return Node{
		ID:       fmt.Sprintf("%d", n.Id),
		Label:    label,
		Name:     name,
		Content:  content,
		Metadata: meta,
	}
}

func (g *GraphAdapter) Close(ctx context.Context) error {
	return g.driver.Close(ctx)
}
