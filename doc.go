// Package hdrpeak isolates the brightest pixels of HDR environment maps.
//
// Brightness of a pixel is the maximum of its channel values. The pixels whose
// brightness equals the global maximum are kept with all channels unchanged,
// every other pixel is set to zero. Radiance RGBE (.hdr) and OpenEXR (.exr)
// files are read and written, optionally wrapped in an LZ4 frame.
package hdrpeak
