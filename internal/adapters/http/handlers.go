package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/lalit-0106/gps-attendance-app/internal/core/domain"
	"github.com/lalit-0106/gps-attendance-app/internal/pkg/geospatial"
)

// checkAccessRequest is the JSON body for an access check. Pointer fields
// distinguish a missing coordinate from a zero one.
type checkAccessRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	DeviceID  string   `json:"device_id"`
}

// checkAccessResponse matches the original contract exactly: three fields,
// distance in meters.
type checkAccessResponse struct {
	Allowed  bool    `json:"allowed"`
	Message  string  `json:"message"`
	Distance float64 `json:"distance"`
}

// CheckAccessHandler evaluates a submitted GPS position against the office
// geofence and reports whether clock in/out is enabled.
func CheckAccessHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req checkAccessRequest
		if err := c.BodyParser(&req); err != nil {
			return errValidation(c, "body must be JSON with numeric latitude and longitude")
		}
		if req.Latitude == nil {
			return errValidation(c, "latitude is required")
		}
		if req.Longitude == nil {
			return errValidation(c, "longitude is required")
		}

		device := req.DeviceID
		if device == "" {
			device = c.IP()
		}

		pos := domain.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}
		decision, err := deps.Access.Evaluate(c.UserContext(), device, pos)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCoordinate) {
				LoggerFromCtx(c.UserContext()).Warn("rejected coordinates", "error", err)
				return errValidation(c, err.Error())
			}
			return errInternal(c, err.Error())
		}

		return c.JSON(checkAccessResponse{
			Allowed:  decision.Allowed,
			Message:  decision.Message(),
			Distance: decision.DistanceMeters,
		})
	}
}

// OfficeHandler describes the configured office and its geofence, including
// a GeoJSON FeatureCollection that map clients can render directly.
func OfficeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fence := deps.Access.Fence()

		fc := geojson.NewFeatureCollection()

		office := geojson.NewFeature(orb.Point{fence.Center.Longitude, fence.Center.Latitude})
		office.Properties["name"] = fence.OfficeName
		office.Properties["radius_meters"] = fence.RadiusMeters
		fc.Append(office)

		// Trace the fence outline so clients don't recompute the geodesic.
		var ring orb.Ring
		for bearing := 0.0; bearing < 360; bearing += 10 {
			lat, lon := geospatial.Destination(
				fence.Center.Latitude, fence.Center.Longitude,
				bearing, fence.RadiusMeters,
			)
			ring = append(ring, orb.Point{lon, lat})
		}
		ring = append(ring, ring[0])
		outline := geojson.NewFeature(orb.Polygon{ring})
		outline.Properties["kind"] = "geofence"
		fc.Append(outline)

		minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(
			fence.Center.Latitude, fence.Center.Longitude, fence.RadiusMeters,
		)

		c.Set("Cache-Control", "public, max-age=3600")
		return c.JSON(fiber.Map{
			"office": fiber.Map{
				"name":          fence.OfficeName,
				"latitude":      fence.Center.Latitude,
				"longitude":     fence.Center.Longitude,
				"radius_meters": fence.RadiusMeters,
			},
			"bounds": domain.Bounds{
				MinLat: minLat, MinLon: minLon,
				MaxLat: maxLat, MaxLon: maxLon,
			},
			"geojson": fc,
		})
	}
}

// PresenceHandler lists the last known decision per device, most recent
// first. Entries expire on their own; an empty list is the normal state of
// a quiet office.
func PresenceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var entries []domain.Evaluation
		if deps.Presence != nil {
			var err error
			entries, err = deps.Presence.List(c.UserContext())
			if err != nil {
				return errInternal(c, err.Error())
			}
		}

		page, pg := paginate(entries, c.QueryInt("offset", 0), c.QueryInt("limit", 50))
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// EvaluationsHandler returns recent rows from the evaluation audit log.
func EvaluationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Evaluations == nil {
			return errInternal(c, "audit log not available")
		}

		evals, err := deps.Evaluations.ListRecent(c.UserContext(), c.QueryInt("limit", 50))
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(evals)
	}
}
