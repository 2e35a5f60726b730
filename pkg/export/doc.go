// Package export turns a finished mat raster into deliverable artifacts:
// encoded images, data URLs, and a textured plane mesh sized in meters.
//
// A [Mesh] takes ownership of the raster through its [Texture]. Once the
// mesh is disposed both are released and any further use returns an error
// with code DISPOSED.
package export
