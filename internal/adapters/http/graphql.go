package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/lalit-0106/gps-attendance-app/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	officeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Office",
		Fields: graphql.Fields{
			"name":          &graphql.Field{Type: graphql.String},
			"latitude":      &graphql.Field{Type: graphql.Float},
			"longitude":     &graphql.Field{Type: graphql.Float},
			"radius_meters": &graphql.Field{Type: graphql.Float},
		},
	})

	decisionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "AccessDecision",
		Fields: graphql.Fields{
			"allowed":  &graphql.Field{Type: graphql.Boolean},
			"message":  &graphql.Field{Type: graphql.String},
			"distance": &graphql.Field{Type: graphql.Float},
		},
	})

	evaluationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Evaluation",
		Fields: graphql.Fields{
			"id":           &graphql.Field{Type: graphql.String},
			"device":       &graphql.Field{Type: graphql.String},
			"latitude":     &graphql.Field{Type: graphql.Float},
			"longitude":    &graphql.Field{Type: graphql.Float},
			"distance_m":   &graphql.Field{Type: graphql.Float},
			"allowed":      &graphql.Field{Type: graphql.Boolean},
			"evaluated_at": &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"office": &graphql.Field{
				Type:        officeType,
				Description: "The configured office and its geofence radius",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					fence := deps.Access.Fence()
					return map[string]interface{}{
						"name":          fence.OfficeName,
						"latitude":      fence.Center.Latitude,
						"longitude":     fence.Center.Longitude,
						"radius_meters": fence.RadiusMeters,
					}, nil
				},
			},
			"checkAccess": &graphql.Field{
				Type:        decisionType,
				Description: "Evaluate a GPS position against the office geofence",
				Args: graphql.FieldConfigArgument{
					"latitude":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"longitude": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"device_id": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["latitude"].(float64)
					lon := p.Args["longitude"].(float64)
					device, _ := p.Args["device_id"].(string)

					decision, err := deps.Access.Evaluate(p.Context, device, domain.Coordinate{
						Latitude:  lat,
						Longitude: lon,
					})
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"allowed":  decision.Allowed,
						"message":  decision.Message(),
						"distance": decision.DistanceMeters,
					}, nil
				},
			},
			"presence": &graphql.Field{
				Type:        graphql.NewList(evaluationType),
				Description: "Last known decision per device",
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Presence == nil {
						return nil, nil
					}
					entries, err := deps.Presence.List(p.Context)
					if err != nil {
						return nil, err
					}
					limit := p.Args["limit"].(int)
					if limit > 0 && len(entries) > limit {
						entries = entries[:limit]
					}
					return evaluationMaps(entries), nil
				},
			},
			"evaluations": &graphql.Field{
				Type:        graphql.NewList(evaluationType),
				Description: "Recent rows from the evaluation audit log",
				Args: graphql.FieldConfigArgument{
					"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if deps.Evaluations == nil {
						return nil, fmt.Errorf("audit log not available")
					}
					evals, err := deps.Evaluations.ListRecent(p.Context, p.Args["limit"].(int))
					if err != nil {
						return nil, err
					}
					return evaluationMaps(evals), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// evaluationMaps flattens domain evaluations for GraphQL resolution.
func evaluationMaps(evals []domain.Evaluation) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(evals))
	for _, e := range evals {
		out = append(out, map[string]interface{}{
			"id":           e.ID,
			"device":       e.Device,
			"latitude":     e.Position.Latitude,
			"longitude":    e.Position.Longitude,
			"distance_m":   e.DistanceMeters,
			"allowed":      e.Allowed,
			"evaluated_at": e.EvaluatedAt.Format(time.RFC3339),
		})
	}
	return out
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
