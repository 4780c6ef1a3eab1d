// Package encoding normalises uploaded text files to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names the encoding an input was decoded from.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO88599    Charset = "ISO-8859-9"
)

const sniffLen = 4096

var boms = []struct {
	prefix  []byte
	charset Charset
}{
	{[]byte{0xEF, 0xBB, 0xBF}, UTF8},
	{[]byte{0xFF, 0xFE}, UTF16LE},
	{[]byte{0xFE, 0xFF}, UTF16BE},
}

// Detect guesses the charset of sample. It checks for a byte order mark,
// then for valid UTF-8, then asks chardet, and falls back to Windows-1252.
func Detect(sample []byte) Charset {
	for _, b := range boms {
		if bytes.HasPrefix(sample, b.prefix) {
			return b.charset
		}
	}

	if utf8.Valid(sample) {
		return UTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err == nil {
		switch result.Charset {
		case "UTF-8":
			return UTF8
		case "ISO-8859-9":
			return ISO88599
		}
	}

	return Windows1252
}

func decoder(c Charset) *encoding.Decoder {
	switch c {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	case ISO88599:
		return charmap.ISO8859_9.NewDecoder()
	case Windows1252:
		return charmap.Windows1252.NewDecoder()
	}

	return nil
}

// NewUTF8Reader returns a reader yielding r's content as UTF-8 together with
// the charset it was decoded from. A UTF-8 byte order mark is dropped.
func NewUTF8Reader(r io.Reader) (io.Reader, Charset, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	sample, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	charset := Detect(sample)

	if charset == UTF8 {
		if bytes.HasPrefix(sample, boms[0].prefix) {
			_, _ = br.Discard(len(boms[0].prefix))
		}

		return br, charset, nil
	}

	return transform.NewReader(br, decoder(charset)), charset, nil
}
