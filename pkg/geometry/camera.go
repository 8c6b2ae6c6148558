package geometry

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/df07/go-tiled-raytracer/pkg/core"
)

// ErrInvalidCamera is returned by NewCamera for a degenerate configuration
var ErrInvalidCamera = errors.New("invalid camera")

// CameraConfig contains all parameters needed to set up a camera
type CameraConfig struct {
	Eye           core.Point3  // Position of the camera
	Target        core.Point3  // Point the camera is looking at
	Up            core.Vec3    // Up direction, projected onto the image plane
	VFov          core.Radians // Vertical field of view
	AspectRatio   float32      // Width / height of the image
	Aperture      float32      // Lens diameter, 0 for a pinhole camera
	FocusDistance float32      // Distance to the plane in perfect focus
}

// Camera generates primary rays with optional thin-lens depth of field.
// It is immutable after construction and safe for concurrent use.
type Camera struct {
	eye        core.Point3
	lowerLeft  core.Point3
	horizontal core.Vec3
	vertical   core.Vec3
	u, v, w    core.NormalizedVec3
	lensRadius float32
}

// NewCamera builds the camera basis and image plane from config
func NewCamera(config CameraConfig) (*Camera, error) {
	if config.VFov <= 0 || config.VFov >= core.Radians(math32.Pi) {
		return nil, fmt.Errorf("%w: vertical fov %v outside (0, π)", ErrInvalidCamera, config.VFov)
	}
	if !(config.AspectRatio > 0) {
		return nil, fmt.Errorf("%w: aspect ratio must be positive, got %v", ErrInvalidCamera, config.AspectRatio)
	}
	if !(config.FocusDistance > 0) {
		return nil, fmt.Errorf("%w: focus distance must be positive, got %v", ErrInvalidCamera, config.FocusDistance)
	}
	if config.Aperture < 0 {
		return nil, fmt.Errorf("%w: aperture must not be negative, got %v", ErrInvalidCamera, config.Aperture)
	}

	w, ok := config.Eye.Sub(config.Target).TryNormalized()
	if !ok {
		return nil, fmt.Errorf("%w: eye and target coincide at %v", ErrInvalidCamera, config.Eye)
	}
	u, ok := config.Up.Cross(w.Vec()).TryNormalized()
	if !ok {
		return nil, fmt.Errorf("%w: up %v is parallel to the view direction", ErrInvalidCamera, config.Up)
	}
	v := w.Vec().Cross(u.Vec()).Normalized()

	viewportHeight := 2 * math32.Tan(float32(config.VFov)/2)
	viewportWidth := config.AspectRatio * viewportHeight

	horizontal := u.Vec().Scale(config.FocusDistance * viewportWidth)
	vertical := v.Vec().Scale(config.FocusDistance * viewportHeight)
	lowerLeft := config.Eye.
		SubVec(horizontal.Scale(0.5)).
		SubVec(vertical.Scale(0.5)).
		SubVec(w.Vec().Scale(config.FocusDistance))

	return &Camera{
		eye:        config.Eye,
		lowerLeft:  lowerLeft,
		horizontal: horizontal,
		vertical:   vertical,
		u:          u,
		v:          v,
		w:          w,
		lensRadius: config.Aperture / 2,
	}, nil
}

// RayAt generates a ray through image plane coordinates (s, t), where (0, 0)
// is the lower-left corner and (1, 1) the upper-right. With a non-zero
// aperture the origin is jittered across the lens disk using random.
func (c *Camera) RayAt(s, t float32, random *rand.Rand) core.Ray {
	origin := c.eye
	if c.lensRadius > 0 {
		rd := core.RandomInUnitDisk(random).Scale(c.lensRadius)
		origin = origin.Add(c.u.Vec().Scale(rd.X()).Add(c.v.Vec().Scale(rd.Y())))
	}

	target := c.lowerLeft.
		Add(c.horizontal.Scale(s)).
		Add(c.vertical.Scale(t))

	return core.NewRay(origin, target.Sub(origin))
}

// Eye returns the camera position
func (c *Camera) Eye() core.Point3 { return c.eye }

// Forward returns the viewing direction
func (c *Camera) Forward() core.NormalizedVec3 { return c.w.Neg() }

// LensRadius returns half the aperture
func (c *Camera) LensRadius() float32 { return c.lensRadius }
