// Package protocol owns the DEM lookup wire contract.
//
// Ownership boundary:
// - fixed-point scalar encoding (1e-7 degrees, 1e-3 quality)
// - 8-byte point records (request) and 12-byte combined records (response)
// - coordinate range checks
//
// All multi-byte integers are big-endian. Buffers carry no header or length
// prefix; record count is length / stride.
package protocol
