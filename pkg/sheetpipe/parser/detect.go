package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileType is the container format of a workbook.
type FileType string

const (
	Unknown = FileType("")
	XLS     = FileType("xls")
	XLSX    = FileType("xlsx")
	XLSB    = FileType("xlsb")
)

// ErrUnknownFileType is returned when neither the magic bytes nor the file
// extension identify a spreadsheet.
var ErrUnknownFileType = errors.New("unknown spreadsheet file type")

var (
	magicOLE2 = []byte{0xd0, 0xcf, 0x11, 0xe0}
	magicZip  = []byte{0x50, 0x4b, 0x03, 0x04}
)

// DetectReaderType reads the first bytes of r and returns the file type.
// Zip containers are xlsx unless the name ends in .xlsb.
func DetectReaderType(r io.Reader, fileName string) (FileType, error) {
	var b [4]byte
	n, err := io.ReadFull(r, b[:])
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Unknown, err
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	switch {
	case n == 4 && bytes.Equal(b[:], magicOLE2):
		return XLS, nil
	case n == 4 && bytes.Equal(b[:], magicZip):
		if ext == ".xlsb" {
			return XLSB, nil
		}
		return XLSX, nil
	}
	switch ext {
	case ".xls":
		return XLS, nil
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return XLSX, nil
	case ".xlsb":
		return XLSB, nil
	}
	return Unknown, fmt.Errorf("%s: %w", fileName, ErrUnknownFileType)
}

// DetectFileType opens path and detects its type.
func DetectFileType(path string) (FileType, error) {
	fh, err := os.Open(path)
	if err != nil {
		return Unknown, err
	}
	defer fh.Close()
	return DetectReaderType(fh, path)
}
