// Package pointsrc turns caller input into protocol points.
//
// Sources:
// - CSV text, either plain lat,lng pairs or a headered file
// - NMEA 0183 sentences from a log file or a live GPS serial port
//
// Every point is range-checked with protocol.Point.Validate before it is returned.
package pointsrc
