package ionpack

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ionlang/ionbc/bytecode"
)

// ManifestPath is the archive path of the pack manifest.
const ManifestPath = "META-INF/MANIFEST.ion"

// Builder assembles an IonPack archive. Classes, libraries, resources and
// sources are collected in memory and written out by Build.
type Builder struct {
	manifest  *Manifest
	classes   map[string][]byte
	libraries map[string][]byte
	resources map[string][]byte
	sources   map[string]string
	index     Index
}

// NewBuilder creates a pack builder with the given package name and version.
func NewBuilder(name, version string) *Builder {
	return &Builder{
		manifest:  NewManifest(name, version),
		classes:   make(map[string][]byte),
		libraries: make(map[string][]byte),
		resources: make(map[string][]byte),
		sources:   make(map[string]string),
	}
}

// Manifest returns the pack manifest for direct field access.
func (b *Builder) Manifest() *Manifest {
	return b.manifest
}

// MainClass sets the manifest's Main-Class entry.
func (b *Builder) MainClass(name string) *Builder {
	b.manifest.MainClass = name
	return b
}

// EntryPoint sets the manifest's Entry-Point entry.
func (b *Builder) EntryPoint(name string) *Builder {
	b.manifest.EntryPoint = name
	return b
}

// Description sets the manifest's Description entry.
func (b *Builder) Description(desc string) *Builder {
	b.manifest.Description = desc
	return b
}

// Author sets the manifest's Author entry.
func (b *Builder) Author(author string) *Builder {
	b.manifest.Author = author
	return b
}

// AddDependency appends a manifest dependency.
func (b *Builder) AddDependency(dep string) *Builder {
	b.manifest.Dependencies = append(b.manifest.Dependencies, dep)
	return b
}

// AddExport appends a manifest export.
func (b *Builder) AddExport(export string) *Builder {
	b.manifest.Exports = append(b.manifest.Exports, export)
	return b
}

// AddClass serializes a single function as classes/<name>.ionc and records
// it in the pack index. The function's register budget is verified first.
func (b *Builder) AddClass(name string, fn *bytecode.Function) error {
	if _, ok := b.classes[name]; ok {
		return fmt.Errorf("ionpack: class %q added twice", name)
	}
	if err := fn.CheckRegisterBudget(); err != nil {
		return fmt.Errorf("ionpack: class %q: %w", name, err)
	}
	data, err := fn.Serialize()
	if err != nil {
		return fmt.Errorf("ionpack: class %q: %w", name, err)
	}
	b.classes[name] = data
	b.index.Entries = append(b.index.Entries, indexEntry(name, fn))
	return nil
}

// AddFunctions serializes several functions as one multi-function class
// entry, with the IONBC stream header.
func (b *Builder) AddFunctions(name string, fns []*bytecode.Function) error {
	if _, ok := b.classes[name]; ok {
		return fmt.Errorf("ionpack: class %q added twice", name)
	}
	var buf bytes.Buffer
	for _, fn := range fns {
		if err := fn.CheckRegisterBudget(); err != nil {
			return fmt.Errorf("ionpack: class %q function %q: %w", name, fn.Name, err)
		}
	}
	if err := bytecode.NewWriter(&buf).WriteFunctions(fns); err != nil {
		return fmt.Errorf("ionpack: class %q: %w", name, err)
	}
	b.classes[name] = buf.Bytes()
	for _, fn := range fns {
		b.index.Entries = append(b.index.Entries, indexEntry(name, fn))
	}
	return nil
}

func indexEntry(class string, fn *bytecode.Function) IndexEntry {
	return IndexEntry{
		Class:        class,
		Function:     fn.Name,
		Arity:        fn.Arity,
		Registers:    fn.RegisterBudget(),
		Instructions: len(fn.Instructions),
	}
}

// AddLibrary adds an FFI library under lib/ and records it in the manifest.
func (b *Builder) AddLibrary(name string, data []byte) *Builder {
	b.libraries[name] = data
	b.manifest.FFILibraries = append(b.manifest.FFILibraries, name)
	return b
}

// AddResource adds a file under resources/.
func (b *Builder) AddResource(path string, data []byte) *Builder {
	b.resources[path] = data
	return b
}

// AddSource adds human-readable source text under src/.
func (b *Builder) AddSource(path, source string) *Builder {
	b.sources[path] = source
	return b
}

// Build writes the archive to w. Entries within each section are written
// in sorted name order, so identical inputs produce identical archives.
func (b *Builder) Build(w io.Writer) error {
	zw := zip.NewWriter(w)

	writeEntry := func(path string, data []byte) error {
		f, err := zw.Create(path)
		if err != nil {
			return fmt.Errorf("ionpack: create %s: %w", path, err)
		}
		if _, err := f.Write(data); err != nil {
			return fmt.Errorf("ionpack: write %s: %w", path, err)
		}
		return nil
	}

	if err := writeEntry(ManifestPath, []byte(b.manifest.Render())); err != nil {
		return err
	}
	indexData, err := MarshalIndex(&b.index)
	if err != nil {
		return fmt.Errorf("ionpack: marshal index: %w", err)
	}
	if err := writeEntry(IndexPath, indexData); err != nil {
		return err
	}

	for _, name := range sortedKeys(b.classes) {
		if err := writeEntry("classes/"+name+".ionc", b.classes[name]); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(b.libraries) {
		if err := writeEntry("lib/"+name, b.libraries[name]); err != nil {
			return err
		}
	}
	for _, path := range sortedKeys(b.resources) {
		if err := writeEntry("resources/"+path, b.resources[path]); err != nil {
			return err
		}
	}
	for _, path := range sortedKeysString(b.sources) {
		if err := writeEntry("src/"+path, []byte(b.sources[path])); err != nil {
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("ionpack: finalize archive: %w", err)
	}
	return nil
}

// WriteFile builds the archive into a file at path.
func (b *Builder) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ionpack: %w", err)
	}
	if err := b.Build(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeysString(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
