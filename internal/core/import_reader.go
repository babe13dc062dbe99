package core

// import_reader.go prepares spreadsheet CSV exports for parsing.
//
// Excel on Windows writes CSV files that may start with a UTF-8 BOM, are
// often encoded in Windows-1252 ("Ação" as 41 E7 E3 6F) and use ";" as
// the field separator under a Brazilian locale. The reader strips the BOM,
// decodes any byte that is not part of valid UTF-8 as Windows-1252, and
// sniffs the separator from the first line.

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ErrImportTooLarge is returned once an import reads past its size limit.
var ErrImportTooLarge = errors.New("import file too large")

// sniffSize is how much of the file is inspected for the separator.
const sniffSize = 4096

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// newImportReader wraps r for CSV parsing. It returns the decoded stream
// and the field separator found on the first line. limit <= 0 disables
// the size check.
func newImportReader(r io.Reader, limit int64) (io.Reader, rune, error) {
	if limit > 0 {
		r = &limitReader{r: r, remaining: limit}
	}
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return nil, 0, err
	}
	if bytes.Equal(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, 0, err
		}
	}

	sample, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, 0, err
	}

	return transform.NewReader(br, windows1252Fallback{}), sniffDelimiter(sample), nil
}

// sniffDelimiter picks the most frequent of ";", "," and tab on the first
// line, ignoring quoted text. Comma wins ties.
func sniffDelimiter(sample []byte) rune {
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		sample = sample[:i]
	}

	counts := map[byte]int{}
	quoted := false
	for _, b := range sample {
		switch {
		case b == '"':
			quoted = !quoted
		case !quoted && (b == ';' || b == ',' || b == '\t'):
			counts[b]++
		}
	}

	best := byte(',')
	for _, b := range []byte{';', '\t'} {
		if counts[b] > counts[best] {
			best = b
		}
	}
	return rune(best)
}

// windows1252Fallback passes valid UTF-8 through and decodes every other
// byte as Windows-1252.
type windows1252Fallback struct{ transform.NopResetter }

func (windows1252Fallback) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c < utf8.RuneSelf {
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = c
			nDst++
			nSrc++
			continue
		}

		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size == 1 {
			// A multi-byte sequence cut at the buffer edge is not an error yet.
			if !atEOF && !utf8.FullRune(src[nSrc:]) {
				return nDst, nSrc, transform.ErrShortSrc
			}
			r = charmap.Windows1252.DecodeByte(c)
		}

		n := utf8.RuneLen(r)
		if nDst+n > len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}
		utf8.EncodeRune(dst[nDst:], r)
		nDst += n
		nSrc += size
	}
	return nDst, nSrc, nil
}

// limitReader fails with ErrImportTooLarge instead of silently truncating
// like io.LimitReader.
type limitReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitReader) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		var probe [1]byte
		n, err := l.r.Read(probe[:])
		if n > 0 {
			return 0, ErrImportTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	return n, err
}
