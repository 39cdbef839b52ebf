// Package mmap maps texture files read-only into memory so that decoders can
// work on the file contents without an extra copy through the page cache.
//
//	m, err := mmap.Open("textures/rock_albedo.png")
//	if err != nil { ... }
//	defer m.Close()
//
//	img, err := imaging.Decode(bytes.NewReader(m.Bytes()))
//
// On Unix the mapping is created with mmap(2) and access hints are passed to
// madvise(2). On Windows CreateFileMapping/MapViewOfFile is used and hints are
// ignored.
package mmap
