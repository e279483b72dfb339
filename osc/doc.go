/*
Package osc implements the subset of the Open Sound Control 1.0 message
format used by Live remote-control servers.

An encoded message consists of an address pattern, a type tag string and
zero or more arguments, each block NUL-terminated and zero-padded to a
4-byte boundary, with all numeric payloads big-endian:

	[address   C-string, padded to %4]
	["," + tags C-string, padded to %4]
	[argument payloads in tag order]

Supported argument types and their tags:

	int/int32/int64  'i'  4-byte big-endian two's-complement
	float32/float64  'f'  4-byte big-endian IEEE-754 single precision
	string           's'  C-string, padded to %4
	bool             'T' / 'F'  no payload bytes

Bundles, blobs, 64-bit numbers and time tags are not part of the Live
protocol and are rejected by both the encoder and the decoder.
*/
package osc
