package document

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"
)

const (
	wordIdent        = 0xA5EC
	fibFlagEncrypted = 0x0100
	fibFlagTable1    = 0x0200
	pieceCompressed  = 0x40000000
	clxPrcMarker     = 0x01
	clxPcdtMarker    = 0x02

	// index of the fcClx/lcbClx pair inside FibRgFcLcb97
	fcClxPairIndex = 33
	// index of ccpText inside FibRgLw97
	ccpTextIndex = 3

	maxWordStreamBytes = 64 << 20
)

var errNotWord97 = errors.New("not a Word 97-2003 document")

// extractWordBinary reads the main document text of a Word 97-2003 file via
// its piece table. Formatting, headers, footnotes and fast-saved files are
// not handled.
func extractWordBinary(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	cfb, err := mscfb.New(f)
	if err != nil {
		return "", fmt.Errorf("open compound file: %w", err)
	}

	streams := make(map[string][]byte, 3)
	for entry, err := cfb.Next(); err == nil; entry, err = cfb.Next() {
		// Embedded objects under ObjectPool carry their own streams with the same names.
		if len(entry.Path) != 0 {
			continue
		}
		switch entry.Name {
		case "WordDocument", "0Table", "1Table":
			raw, readErr := io.ReadAll(io.LimitReader(entry, maxWordStreamBytes))
			if readErr != nil {
				return "", fmt.Errorf("read %s stream: %w", entry.Name, readErr)
			}
			streams[entry.Name] = raw
		}
	}

	word, ok := streams["WordDocument"]
	if !ok {
		return "", fmt.Errorf("%w: WordDocument stream missing", errNotWord97)
	}
	return decodeWordStreams(word, streams["0Table"], streams["1Table"])
}

func decodeWordStreams(word, table0, table1 []byte) (string, error) {
	if len(word) < 34 || binary.LittleEndian.Uint16(word) != wordIdent {
		return "", errNotWord97
	}
	flags := binary.LittleEndian.Uint16(word[0x0A:])
	if flags&fibFlagEncrypted != 0 {
		return "", errors.New("document is encrypted")
	}
	table := table0
	if flags&fibFlagTable1 != 0 {
		table = table1
	}
	if len(table) == 0 {
		return "", errors.New("table stream missing")
	}

	ccpText, fcClx, lcbClx, err := readFib(word)
	if err != nil {
		return "", err
	}
	if uint64(fcClx)+uint64(lcbClx) > uint64(len(table)) {
		return "", errors.New("clx outside table stream")
	}

	pieces, err := readPieceTable(table[fcClx : fcClx+lcbClx])
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, pc := range pieces {
		if pc.cpStart >= ccpText {
			break
		}
		count := pc.cpEnd - pc.cpStart
		if pc.cpEnd > ccpText {
			count = ccpText - pc.cpStart
		}
		chunk, err := decodePiece(word, pc, count)
		if err != nil {
			return "", err
		}
		sb.WriteString(chunk)
	}
	return cleanWordText(sb.String()), nil
}

func readFib(word []byte) (ccpText, fcClx, lcbClx uint32, err error) {
	pos := 32
	csw := int(binary.LittleEndian.Uint16(word[pos:]))
	pos += 2 + csw*2
	if pos+2 > len(word) {
		return 0, 0, 0, errors.New("truncated FIB")
	}
	cslw := int(binary.LittleEndian.Uint16(word[pos:]))
	rgLw := pos + 2
	pos = rgLw + cslw*4
	if cslw <= ccpTextIndex || pos+2 > len(word) {
		return 0, 0, 0, errors.New("truncated FIB")
	}
	ccpText = binary.LittleEndian.Uint32(word[rgLw+ccpTextIndex*4:])

	pairs := int(binary.LittleEndian.Uint16(word[pos:]))
	rgFcLcb := pos + 2
	if pairs <= fcClxPairIndex || rgFcLcb+pairs*8 > len(word) {
		return 0, 0, 0, errors.New("FIB has no piece table reference")
	}
	fcClx = binary.LittleEndian.Uint32(word[rgFcLcb+fcClxPairIndex*8:])
	lcbClx = binary.LittleEndian.Uint32(word[rgFcLcb+fcClxPairIndex*8+4:])
	return ccpText, fcClx, lcbClx, nil
}

type wordPiece struct {
	cpStart    uint32
	cpEnd      uint32
	fc         uint32
	compressed bool
}

func readPieceTable(clx []byte) ([]wordPiece, error) {
	i := 0
	for i < len(clx) && clx[i] == clxPrcMarker {
		if i+3 > len(clx) {
			return nil, errors.New("truncated clx")
		}
		i += 3 + int(binary.LittleEndian.Uint16(clx[i+1:]))
	}
	if i+5 > len(clx) || clx[i] != clxPcdtMarker {
		return nil, errors.New("piece table not found")
	}
	lcb := int(binary.LittleEndian.Uint32(clx[i+1:]))
	plc := clx[i+5:]
	if lcb < 4 || lcb > len(plc) || (lcb-4)%12 != 0 {
		return nil, errors.New("malformed piece table")
	}
	n := (lcb - 4) / 12
	pieces := make([]wordPiece, 0, n)
	for k := 0; k < n; k++ {
		pcd := plc[(n+1)*4+k*8:]
		raw := binary.LittleEndian.Uint32(pcd[2:])
		pc := wordPiece{
			cpStart:    binary.LittleEndian.Uint32(plc[k*4:]),
			cpEnd:      binary.LittleEndian.Uint32(plc[(k+1)*4:]),
			fc:         raw &^ pieceCompressed,
			compressed: raw&pieceCompressed != 0,
		}
		if pc.cpEnd < pc.cpStart {
			return nil, errors.New("piece table is not ordered")
		}
		if pc.compressed {
			pc.fc /= 2
		}
		pieces = append(pieces, pc)
	}
	return pieces, nil
}

func decodePiece(word []byte, pc wordPiece, count uint32) (string, error) {
	size := uint64(count)
	if !pc.compressed {
		size *= 2
	}
	if uint64(pc.fc)+size > uint64(len(word)) {
		return "", errors.New("piece outside WordDocument stream")
	}
	raw := word[pc.fc : uint64(pc.fc)+size]
	if pc.compressed {
		out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		return string(out), err
	}
	out, err := xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM).NewDecoder().Bytes(raw)
	return string(out), err
}

// cleanWordText maps Word control characters to plain text and drops
// field instructions, keeping field results.
func cleanWordText(s string) string {
	var sb strings.Builder
	var fields []bool // true while inside the instruction part
	for _, r := range s {
		switch r {
		case 0x13:
			fields = append(fields, true)
			continue
		case 0x14:
			if len(fields) > 0 {
				fields[len(fields)-1] = false
			}
			continue
		case 0x15:
			if len(fields) > 0 {
				fields = fields[:len(fields)-1]
			}
			continue
		}
		if len(fields) > 0 && fields[len(fields)-1] {
			continue
		}
		switch r {
		case '\r', 0x0B, 0x0C:
			sb.WriteByte('\n')
		case 0x07:
			sb.WriteByte('\t')
		case 0x1E:
			sb.WriteByte('-')
		case 0x1F, 0x01, 0x08:
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
