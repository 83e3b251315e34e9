package msi

import (
	"bytes"
	"fmt"
	"iter"
)

const (
	cabMarker  = ".cab"
	cabNameLen = 32
)

// ScanCabinets yields the cabinet names referenced inside raw MSI bytes.
// This is a heuristic byte scan, not an MSI parser: every 32-byte window
// ending immediately before a literal ".cab" is emitted as a name, so
// coincidental byte patterns produce false positives. Callers must ignore
// names the authoritative payload list does not carry.
//
// The sequence is a pure function of blob and can be ranged over any number
// of times. A window that is not ASCII, or that would start before the blob,
// fails only that item; the scan continues.
func ScanCabinets(blob []byte) iter.Seq2[string, error] {
	marker := []byte(cabMarker)
	return func(yield func(string, error) bool) {
		offset := 0
		for {
			start := offset + len(marker)
			if start >= len(blob) {
				return
			}
			i := bytes.Index(blob[start:], marker)
			if i < 0 {
				return
			}
			pos := start + i
			if !yield(cabinetName(blob, pos)) {
				return
			}
			offset = pos
		}
	}
}

// cabinetName decodes the fixed-width name window ending at the marker.
func cabinetName(blob []byte, pos int) (string, error) {
	if pos < cabNameLen {
		return "", fmt.Errorf("cabinet reference at offset %d: name window precedes blob start", pos)
	}
	window := blob[pos-cabNameLen : pos]
	for _, b := range window {
		if b >= 0x80 {
			return "", fmt.Errorf("cabinet reference at offset %d: name is not ASCII", pos)
		}
	}
	return string(window), nil
}
