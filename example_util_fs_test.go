package viewpath_test

import (
	"io"
	"io/fs"
	"time"
)

// staticFS is a read-only fs.FS of file paths to contents. It has no
// directories, so it can't be listed, but fs.Stat and fs.ReadFile work.
type staticFS map[string]string

var _ fs.StatFS = staticFS{}

func (s staticFS) Open(name string) (fs.File, error) {
	val, ok := s[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &staticFile{name: name, contents: []byte(val)}, nil
}

func (s staticFS) Stat(name string) (fs.FileInfo, error) {
	val, ok := s[name]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return &staticFile{name: name, contents: []byte(val)}, nil
}

// staticFile is both the open file and its fs.FileInfo.
type staticFile struct {
	name     string
	contents []byte
	offset   int
}

func (s *staticFile) Stat() (fs.FileInfo, error) { return s, nil }

func (s *staticFile) Read(buf []byte) (int, error) {
	if s.offset >= len(s.contents) {
		return 0, io.EOF
	}
	n := copy(buf, s.contents[s.offset:])
	s.offset += n
	return n, nil
}

func (*staticFile) Close() error { return nil }

func (s *staticFile) Name() string { return s.name }

func (s *staticFile) Size() int64 { return int64(len(s.contents)) }

func (*staticFile) Mode() fs.FileMode { return 0o400 }

func (*staticFile) ModTime() time.Time { return time.Time{} }

func (*staticFile) IsDir() bool { return false }

func (*staticFile) Sys() any { return nil }
