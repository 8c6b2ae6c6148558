package server

import (
	"fmt"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/df07/go-tiled-raytracer/pkg/core"
	"github.com/df07/go-tiled-raytracer/pkg/geometry"
	"github.com/df07/go-tiled-raytracer/pkg/integrator"
	"github.com/df07/go-tiled-raytracer/pkg/material"
	"github.com/df07/go-tiled-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool           `json:"hit"`
	ObjectID     int            `json:"objectId"`
	MaterialType string         `json:"materialType"`
	GeometryType string         `json:"geometryType"`
	Point        [3]float32     `json:"point"`
	Normal       [3]float32     `json:"normal"`
	Distance     float32        `json:"distance"`
	FrontFace    bool           `json:"frontFace"`
	Properties   map[string]any `json:"properties"`
}

// extractMaterialInfo extracts detailed material information with type assertions
func extractMaterialInfo(mat material.Material) (string, map[string]any) {
	properties := make(map[string]any)

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = colorArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = colorArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["fuzz"] = m.Fuzz
		return "metal", properties

	case *material.Dielectric:
		properties["refractiveIndex"] = m.RefractiveIndex
		properties["color"] = "#ffffff" // Clear glass
		return "dielectric", properties

	default:
		return "unknown", properties
	}
}

// extractGeometryInfo extracts the local shape parameters and world bounds of an object
func extractGeometryInfo(s *scene.Scene, id scene.ObjectID) (string, map[string]any) {
	properties := make(map[string]any)

	bounds := s.ObjectBounds(id)
	properties["boundingBox"] = map[string]any{
		"min": pointArray(bounds.Min),
		"max": pointArray(bounds.Max),
	}
	properties["transformed"] = !s.Transform(id).IsIdentity()

	switch geom := s.Shape(id).(type) {
	case *geometry.Sphere:
		properties["center"] = pointArray(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.Box:
		properties["halfExtents"] = [3]float32{geom.HalfExtents.X(), geom.HalfExtents.Y(), geom.HalfExtents.Z()}
		return "box", properties

	default:
		return "unknown", properties
	}
}

// inspectPixel casts a ray through the center of pixel (x, y) and returns the
// first object hit
func inspectPixel(s *scene.Scene, camera *geometry.Camera, width, height, x, y int) (scene.Hit, bool) {
	// A fixed generator keeps lens sampling repeatable for cameras with an aperture
	random := rand.New(rand.NewSource(0))
	u := pixelCenter(x, width)
	v := 1 - pixelCenter(y, height)
	ray := camera.RayAt(u, v, random)
	return s.NearestHit(ray, integrator.ShadowEpsilon, math32.Inf(1))
}

// pixelCenter maps pixel p onto [0, 1] across an axis of n pixels, matching
// the renderer's mapping without jitter
func pixelCenter(p, n int) float32 {
	if n <= 1 {
		return 0.5
	}
	return float32(p) / float32(n-1)
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	inspectReq := &RenderRequest{}

	preset, err := s.parseCommonSceneParams(r, inspectReq)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}
	if pixelX < 0 || pixelX >= inspectReq.Width || pixelY < 0 || pixelY >= inspectReq.Height {
		writeJSONError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	camera, err := geometry.NewCamera(preset.Camera)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	hit, ok := inspectPixel(preset.Scene, camera, inspectReq.Width, inspectReq.Height, pixelX, pixelY)
	if !ok {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false, ObjectID: -1})
		return
	}

	materialType, materialProps := extractMaterialInfo(preset.Scene.Material(hit.Object))
	geometryType, geometryProps := extractGeometryInfo(preset.Scene, hit.Object)

	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		ObjectID:     int(hit.Object),
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        pointArray(hit.Point),
		Normal:       [3]float32{hit.Normal.X(), hit.Normal.Y(), hit.Normal.Z()},
		Distance:     hit.T,
		FrontFace:    hit.FrontFace,
		Properties: map[string]any{
			"material": materialProps,
			"geometry": geometryProps,
		},
	})
}

func pointArray(p core.Point3) [3]float32 {
	return [3]float32{p.X(), p.Y(), p.Z()}
}

func colorArray(c core.Color) [3]float32 {
	return [3]float32{c.R(), c.G(), c.B()}
}

func hexColor(c core.Color) string {
	rgba := c.RGBA8()
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}
