package parsers

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SkipBOM drops a leading UTF-8 byte order mark.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	peeked, err := br.Peek(len(utf8BOM))
	if err != nil {
		return br
	}
	if bytes.Equal(peeked, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// CheckEncoding reports whether DecodeReader understands the encoding name.
func CheckEncoding(encoding string) error {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8", "gb18030", "gbk":
		return nil
	default:
		return fmt.Errorf("unsupported encoding: %s", encoding)
	}
}

// DecodeReader wraps r with a decoder for the named legacy encoding.
// Supported: "", "utf-8", "gb18030", "gbk".
func DecodeReader(r io.Reader, encoding string) (io.Reader, error) {
	if err := CheckEncoding(encoding); err != nil {
		return nil, err
	}
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "gb18030":
		return transform.NewReader(r, simplifiedchinese.GB18030.NewDecoder()), nil
	case "gbk":
		return transform.NewReader(r, simplifiedchinese.GBK.NewDecoder()), nil
	default:
		return SkipBOM(r), nil
	}
}

// getColIndex maps header names to column positions and checks the required ones.
func getColIndex(header []string, required []string) (map[string]int, error) {
	colIndex := make(map[string]int)
	for i, colName := range header {
		colIndex[strings.TrimSpace(colName)] = i
	}
	for _, req := range required {
		if _, ok := colIndex[req]; !ok {
			return nil, fmt.Errorf("required header not found: %s", req)
		}
	}
	return colIndex, nil
}
