package ionpack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ionlang/ionbc/bytecode"
)

// ErrNotFound is returned when a requested pack entry does not exist.
var ErrNotFound = errors.New("entry not found in pack")

// Reader provides access to an IonPack archive: its manifest, function
// index, class bytecode, libraries, resources and sources.
type Reader struct {
	zr       *zip.Reader
	closer   io.Closer // non-nil for file-backed readers
	manifest *Manifest
	index    *Index
	entries  map[string]*zip.File
}

// Open opens a pack file from disk. The caller must Close the reader.
func Open(path string) (*Reader, error) {
	zrc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("ionpack: open %s: %w", path, err)
	}
	r, err := newReader(&zrc.Reader)
	if err != nil {
		zrc.Close()
		return nil, err
	}
	r.closer = zrc
	return r, nil
}

// NewReader reads a pack from an in-memory or seekable source.
func NewReader(ra io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("ionpack: read archive: %w", err)
	}
	return newReader(zr)
}

func newReader(zr *zip.Reader) (*Reader, error) {
	r := &Reader{zr: zr, entries: make(map[string]*zip.File)}
	for _, f := range zr.File {
		r.entries[f.Name] = f
	}

	data, err := r.readEntry(ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("ionpack: %w", err)
	}
	if r.manifest, err = ParseManifest(data); err != nil {
		return nil, fmt.Errorf("ionpack: %w", err)
	}

	// The index is optional; packs produced by other tools may omit it.
	if _, ok := r.entries[IndexPath]; ok {
		data, err := r.readEntry(IndexPath)
		if err != nil {
			return nil, fmt.Errorf("ionpack: %w", err)
		}
		if r.index, err = UnmarshalIndex(data); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Close releases the underlying file for file-backed readers.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Manifest returns the parsed pack manifest.
func (r *Reader) Manifest() *Manifest {
	return r.manifest
}

// Index returns the function index, or nil when the pack has none.
func (r *Reader) Index() *Index {
	return r.index
}

func (r *Reader) readEntry(path string) ([]byte, error) {
	f, ok := r.entries[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// ClassNames lists the pack's classes in sorted order, without the
// classes/ prefix or .ionc suffix.
func (r *Reader) ClassNames() []string {
	var names []string
	for name := range r.entries {
		if strings.HasPrefix(name, "classes/") && strings.HasSuffix(name, ".ionc") {
			names = append(names, strings.TrimSuffix(strings.TrimPrefix(name, "classes/"), ".ionc"))
		}
	}
	sort.Strings(names)
	return names
}

// ClassBytes returns the raw serialized bytecode of a class.
func (r *Reader) ClassBytes(name string) ([]byte, error) {
	data, err := r.readEntry("classes/" + name + ".ionc")
	if err != nil {
		return nil, fmt.Errorf("ionpack: %w", err)
	}
	return data, nil
}

// Function decodes a single-function class.
func (r *Reader) Function(name string) (*bytecode.Function, error) {
	data, err := r.ClassBytes(name)
	if err != nil {
		return nil, err
	}
	fn, err := bytecode.DecodeFunction(data)
	if err != nil {
		return nil, fmt.Errorf("ionpack: class %q: %w", name, err)
	}
	return fn, nil
}

// Functions decodes a multi-function class written with AddFunctions.
func (r *Reader) Functions(name string) ([]*bytecode.Function, error) {
	data, err := r.ClassBytes(name)
	if err != nil {
		return nil, err
	}
	fns, err := bytecode.NewReader(data).ReadFunctions()
	if err != nil {
		return nil, fmt.Errorf("ionpack: class %q: %w", name, err)
	}
	return fns, nil
}

// Library returns the bytes of an FFI library under lib/.
func (r *Reader) Library(name string) ([]byte, error) {
	data, err := r.readEntry("lib/" + name)
	if err != nil {
		return nil, fmt.Errorf("ionpack: %w", err)
	}
	return data, nil
}

// Resource returns the bytes of a file under resources/.
func (r *Reader) Resource(path string) ([]byte, error) {
	data, err := r.readEntry("resources/" + path)
	if err != nil {
		return nil, fmt.Errorf("ionpack: %w", err)
	}
	return data, nil
}

// Source returns the text of a file under src/.
func (r *Reader) Source(path string) (string, error) {
	data, err := r.readEntry("src/" + path)
	if err != nil {
		return "", fmt.Errorf("ionpack: %w", err)
	}
	return string(data), nil
}
