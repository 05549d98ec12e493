package stream

import (
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rustyeddy/pnl/message"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
	"github.com/yanun0323/logs"
)

// Open opens path and wraps it as a Stream of kind. It never fails: if the
// file is missing, unreadable or not valid for its compression format the
// error is logged and the returned Stream is empty (Available reports false).
//
// Compression is picked by extension: .gz, .xz, .lzma or .bi5. Anything else
// is read as plain text.
func Open(kind message.Kind, path string) *Stream {
	rc, err := openSource(path)
	if err != nil {
		logs.Errorf("open %s source %s: %+v", kind, path, err)
		return New(path, kind, nil)
	}
	logs.Infof("opened %s source %s", kind, path)
	return New(path, kind, rc)
}

type source struct {
	io.Reader
	closers []io.Closer
}

func (s *source) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func openSource(path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var r io.Reader
	closers := []io.Closer{f}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gr, gerr := gzip.NewReader(f)
		if gerr != nil {
			err = gerr
			break
		}
		r = gr
		closers = append(closers, gr)
	case ".xz":
		r, err = xz.NewReader(f)
	case ".lzma", ".bi5":
		r, err = lzma.NewReader(f)
	default:
		r = f
	}
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &source{Reader: r, closers: closers}, nil
}
