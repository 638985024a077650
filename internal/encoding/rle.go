package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeRLE encodes a sequence of palette ids as base64(varint pairs).
// Pairs are (palette_id, run_len) repeated. Matches the server's OBS voxel
// encoding; kept here so tests can build synthetic observations.
func EncodeRLE(ids []uint16) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	for i := 0; i < len(ids); {
		id := ids[i]
		run := 1
		for i+run < len(ids) && ids[i+run] == id {
			run++
		}
		n := binary.PutUvarint(tmp[:], uint64(id))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])
		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeRLE expands an RLE voxel payload back into palette ids.
func DecodeRLE(b64 string) ([]uint16, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []uint16
	for off := 0; off < len(raw); {
		id, n := binary.Uvarint(raw[off:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", off)
		}
		off += n
		run, n := binary.Uvarint(raw[off:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", off)
		}
		off += n
		if id > 0xFFFF {
			return nil, fmt.Errorf("palette id too large: %d", id)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, uint16(id))
		}
	}
	return out, nil
}

// DecodeRLESet expands an RLE voxel payload into the set of distinct palette
// ids present, without materializing the full voxel slice. The bot only needs
// "which block types are around me", not where they are.
func DecodeRLESet(b64 string) (map[uint16]bool, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	set := map[uint16]bool{}
	for off := 0; off < len(raw); {
		id, n := binary.Uvarint(raw[off:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", off)
		}
		off += n
		run, n := binary.Uvarint(raw[off:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", off)
		}
		off += n
		if id > 0xFFFF {
			return nil, fmt.Errorf("palette id too large: %d", id)
		}
		if run > 0 {
			set[uint16(id)] = true
		}
	}
	return set, nil
}
