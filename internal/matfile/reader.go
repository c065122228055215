package matfile

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// ErrParse reports content this reader cannot interpret.
var ErrParse = errors.New("mat-file parse error")

// Data element types (MAT 5 "mi" codes).
const (
	miINT8       = 1
	miUINT8      = 2
	miINT16      = 3
	miUINT16     = 4
	miINT32      = 5
	miUINT32     = 6
	miSINGLE     = 7
	miDOUBLE     = 9
	miINT64      = 12
	miUINT64     = 13
	miMATRIX     = 14
	miCOMPRESSED = 15
	miUTF8       = 16
	miUTF16      = 17
)

// Array classes (MAT 5 "mx" codes).
const (
	mxCHAR   = 4
	mxDOUBLE = 6
	mxSINGLE = 7
	mxINT8   = 8
	mxUINT8  = 9
	mxINT16  = 10
	mxUINT16 = 11
	mxINT32  = 12
	mxUINT32 = 13
)

// Document is a parsed MAT file restricted to the variable kinds the
// converter consumes.
type Document struct {
	numeric map[string]*matrix
	strings map[string][]string
}

type matrix struct {
	rows, cols int
	// values are column-major, as stored on disk.
	values []float64
}

// Read parses the MAT file at path.
func Read(path string) (*Document, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(contents)
}

// Parse parses MAT file contents.
func Parse(contents []byte) (*Document, error) {
	if len(contents) < 128 {
		return nil, fmt.Errorf("%w: file shorter than 128-byte header", ErrParse)
	}

	var order binary.ByteOrder
	switch string(contents[126:128]) {
	case "IM":
		order = binary.LittleEndian
	case "MI":
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: bad endian indicator %q", ErrParse, contents[126:128])
	}
	if version := order.Uint16(contents[124:126]); version != 0x0100 {
		return nil, fmt.Errorf("%w: unsupported version 0x%04x", ErrParse, version)
	}

	doc := &Document{
		numeric: make(map[string]*matrix),
		strings: make(map[string][]string),
	}
	if err := doc.parseElements(contents[128:], order); err != nil {
		return nil, err
	}
	return doc, nil
}

// Matrix returns the named numeric matrix as rows of samples.
func (d *Document) Matrix(name string) ([][]float64, bool) {
	m, ok := d.numeric[name]
	if !ok {
		return nil, false
	}
	rows := make([][]float64, m.rows)
	for r := 0; r < m.rows; r++ {
		row := make([]float64, m.cols)
		for c := 0; c < m.cols; c++ {
			row[c] = m.values[c*m.rows+r]
		}
		rows[r] = row
	}
	return rows, true
}

// Column returns one column of the named numeric matrix.
func (d *Document) Column(name string, col int) ([]float64, bool) {
	m, ok := d.numeric[name]
	if !ok || col < 0 || col >= m.cols {
		return nil, false
	}
	out := make([]float64, m.rows)
	copy(out, m.values[col*m.rows:(col+1)*m.rows])
	return out, true
}

// Scalar returns the named 1x1 numeric value.
func (d *Document) Scalar(name string) (float64, bool) {
	m, ok := d.numeric[name]
	if !ok || len(m.values) != 1 {
		return 0, false
	}
	return m.values[0], true
}

// StringRows returns the rows of the named char matrix, trailing padding
// trimmed. MATLAB stores one fixed-width string per row.
func (d *Document) StringRows(name string) ([]string, bool) {
	rows, ok := d.strings[name]
	return rows, ok
}

// Has reports whether a variable of any supported kind exists.
func (d *Document) Has(name string) bool {
	if _, ok := d.numeric[name]; ok {
		return true
	}
	_, ok := d.strings[name]
	return ok
}

func (d *Document) parseElements(data []byte, order binary.ByteOrder) error {
	for len(data) > 0 {
		elemType, payload, rest, err := nextElement(data, order)
		if err != nil {
			return err
		}
		switch elemType {
		case miCOMPRESSED:
			zr, err := zlib.NewReader(bytes.NewReader(payload))
			if err != nil {
				return fmt.Errorf("%w: open compressed element: %v", ErrParse, err)
			}
			inflated, err := io.ReadAll(zr)
			if err != nil {
				return fmt.Errorf("%w: inflate element: %v", ErrParse, err)
			}
			if err := d.parseElements(inflated, order); err != nil {
				return err
			}
		case miMATRIX:
			if err := d.parseMatrix(payload, order); err != nil {
				return err
			}
		default:
			// Top-level non-matrix elements carry nothing we consume.
		}
		data = rest
	}
	return nil
}

// nextElement splits off one tagged element, handling the packed small-element
// format (payloads of four bytes or fewer share the tag word).
func nextElement(data []byte, order binary.ByteOrder) (elemType int, payload, rest []byte, err error) {
	if len(data) < 8 {
		return 0, nil, nil, fmt.Errorf("%w: truncated element tag", ErrParse)
	}
	first := order.Uint32(data[:4])
	if small := first >> 16; small != 0 {
		size := int(small)
		if size > 4 {
			return 0, nil, nil, fmt.Errorf("%w: small element with %d bytes", ErrParse, size)
		}
		return int(first & 0xffff), data[4 : 4+size], data[8:], nil
	}
	size := int(order.Uint32(data[4:8]))
	if len(data) < 8+size {
		return 0, nil, nil, fmt.Errorf("%w: element payload truncated (want %d bytes)", ErrParse, size)
	}
	payload = data[8 : 8+size]
	// Payloads pad to the next 8-byte boundary, except a final unpadded one.
	advance := 8 + size
	if pad := advance % 8; pad != 0 {
		advance += 8 - pad
		if advance > len(data) {
			advance = len(data)
		}
	}
	return int(order.Uint32(data[:4])), payload, data[advance:], nil
}

func (d *Document) parseMatrix(payload []byte, order binary.ByteOrder) error {
	flagsType, flags, rest, err := nextElement(payload, order)
	if err != nil {
		return err
	}
	if flagsType != miUINT32 || len(flags) < 8 {
		return fmt.Errorf("%w: bad array flags element", ErrParse)
	}
	class := int(order.Uint32(flags[:4]) & 0xff)
	if complexFlag := order.Uint32(flags[:4]) & 0x0800; complexFlag != 0 {
		return fmt.Errorf("%w: complex matrices unsupported", ErrParse)
	}

	dimsType, dimsRaw, rest, err := nextElement(rest, order)
	if err != nil {
		return err
	}
	if dimsType != miINT32 || len(dimsRaw)%4 != 0 {
		return fmt.Errorf("%w: bad dimensions element", ErrParse)
	}
	dims := make([]int, len(dimsRaw)/4)
	for i := range dims {
		dims[i] = int(int32(order.Uint32(dimsRaw[i*4 : i*4+4])))
	}
	if len(dims) != 2 {
		return fmt.Errorf("%w: only 2-D matrices supported, got %d dims", ErrParse, len(dims))
	}
	rows, cols := dims[0], dims[1]

	nameType, nameRaw, rest, err := nextElement(rest, order)
	if err != nil {
		return err
	}
	if nameType != miINT8 {
		return fmt.Errorf("%w: bad array name element", ErrParse)
	}
	name := string(nameRaw)

	dataType, raw, _, err := nextElement(rest, order)
	if err != nil {
		return fmt.Errorf("%w: variable %q: missing data element", ErrParse, name)
	}

	switch class {
	case mxCHAR:
		rowsOut, err := decodeCharMatrix(raw, dataType, rows, cols, order)
		if err != nil {
			return fmt.Errorf("variable %q: %w", name, err)
		}
		d.strings[name] = rowsOut
	case mxDOUBLE, mxSINGLE, mxINT8, mxUINT8, mxINT16, mxUINT16, mxINT32, mxUINT32:
		values, err := decodeNumeric(raw, dataType, order)
		if err != nil {
			return fmt.Errorf("variable %q: %w", name, err)
		}
		if len(values) != rows*cols {
			return fmt.Errorf("%w: variable %q: %d values for %dx%d matrix",
				ErrParse, name, len(values), rows, cols)
		}
		d.numeric[name] = &matrix{rows: rows, cols: cols, values: values}
	default:
		return fmt.Errorf("%w: variable %q: unsupported class %d (cell/struct/sparse)",
			ErrParse, name, class)
	}
	return nil
}

func decodeNumeric(raw []byte, dataType int, order binary.ByteOrder) ([]float64, error) {
	width := map[int]int{
		miINT8: 1, miUINT8: 1, miINT16: 2, miUINT16: 2,
		miINT32: 4, miUINT32: 4, miSINGLE: 4, miDOUBLE: 8,
		miINT64: 8, miUINT64: 8,
	}[dataType]
	if width == 0 {
		return nil, fmt.Errorf("%w: unsupported numeric storage type %d", ErrParse, dataType)
	}
	if len(raw)%width != 0 {
		return nil, fmt.Errorf("%w: numeric payload not a multiple of element width", ErrParse)
	}
	n := len(raw) / width
	values := make([]float64, n)
	for i := 0; i < n; i++ {
		chunk := raw[i*width : (i+1)*width]
		switch dataType {
		case miINT8:
			values[i] = float64(int8(chunk[0]))
		case miUINT8:
			values[i] = float64(chunk[0])
		case miINT16:
			values[i] = float64(int16(order.Uint16(chunk)))
		case miUINT16:
			values[i] = float64(order.Uint16(chunk))
		case miINT32:
			values[i] = float64(int32(order.Uint32(chunk)))
		case miUINT32:
			values[i] = float64(order.Uint32(chunk))
		case miSINGLE:
			values[i] = float64(math.Float32frombits(order.Uint32(chunk)))
		case miDOUBLE:
			values[i] = math.Float64frombits(order.Uint64(chunk))
		case miINT64:
			values[i] = float64(int64(order.Uint64(chunk)))
		case miUINT64:
			values[i] = float64(order.Uint64(chunk))
		}
	}
	return values, nil
}

// decodeCharMatrix reassembles the column-major character grid into one
// trimmed string per row.
func decodeCharMatrix(raw []byte, dataType, rows, cols int, order binary.ByteOrder) ([]string, error) {
	var runes []rune
	switch dataType {
	case miUINT16, miUTF16:
		if len(raw)%2 != 0 {
			return nil, fmt.Errorf("%w: odd UTF-16 char payload", ErrParse)
		}
		runes = make([]rune, len(raw)/2)
		for i := range runes {
			runes[i] = rune(order.Uint16(raw[i*2 : i*2+2]))
		}
	case miUINT8, miINT8, miUTF8:
		runes = []rune(string(raw))
	default:
		return nil, fmt.Errorf("%w: unsupported char storage type %d", ErrParse, dataType)
	}
	if len(runes) != rows*cols {
		return nil, fmt.Errorf("%w: %d chars for %dx%d char matrix", ErrParse, len(runes), rows, cols)
	}
	out := make([]string, rows)
	for r := 0; r < rows; r++ {
		var b strings.Builder
		for c := 0; c < cols; c++ {
			b.WriteRune(runes[c*rows+r])
		}
		out[r] = strings.TrimRight(b.String(), " \x00")
	}
	return out, nil
}
