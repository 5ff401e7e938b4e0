// Package encoding decodes annotation exports written in legacy text encodings.
package encoding

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned for encoding names Lookup does not know.
var ErrUnknownEncoding = errors.New("unknown text encoding")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Names lists the accepted encoding names in canonical form.
var Names = []string{"utf-8", "utf-16", "shift_jis", "euc-jp", "iso-2022-jp", "euc-kr"}

// Lookup returns the decoder family for a case-insensitive encoding name.
// Both "utf-8" and "" select UTF-8.
func Lookup(name string) (xenc.Encoding, error) {
	switch normalizeName(name) {
	case "", "utf8":
		return unicode.UTF8BOM, nil
	case "utf16":
		// Byte order comes from the BOM; Windows exports default to little endian.
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	case "shiftjis", "sjis", "cp932", "windows31j":
		return japanese.ShiftJIS, nil
	case "eucjp":
		return japanese.EUCJP, nil
	case "iso2022jp":
		return japanese.ISO2022JP, nil
	case "euckr", "cp949":
		return korean.EUCKR, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
}

// ToUTF8 converts data in the named encoding to UTF-8.
// A leading UTF-8 byte order mark is always dropped.
func ToUTF8(data []byte, name string) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}

	// A BOM wins over the configured name, like editors do.
	decoder := unicode.BOMOverride(enc.NewDecoder())
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return bytes.TrimPrefix(result, utf8BOM), nil
}

// FromUTF8 converts a UTF-8 string to the named encoding.
func FromUTF8(s string, name string) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	result, _, err := transform.Bytes(enc.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", name, err)
	}
	return result, nil
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(name)
}
