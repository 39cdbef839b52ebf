// Package pixel is the boundary between the classifier and texture decoding.
//
// The classifier only ever sees an Image: a width×height buffer of
// non-premultiplied RGBA bytes. A Source loads an Image for a stable
// identifier. BlobSource decodes common raster formats from a blobstore;
// container formats (DDS, game archives) are expected to be converted by the
// caller and exposed through their own Source.
package pixel
