// Package ionpack reads and writes IonPack archives: zip containers
// holding compiled bytecode classes, FFI libraries, resources, optional
// source text, and a META-INF/ manifest plus function index.
package ionpack

import (
	"errors"
	"fmt"
	"strings"
)

// ManifestVersion is the IonPack format version written by this package.
const ManifestVersion = "1.0"

// ErrManifest is returned for malformed META-INF/MANIFEST.ion content.
var ErrManifest = errors.New("malformed manifest")

// Manifest is the parsed form of META-INF/MANIFEST.ion. Name and Version
// are required; everything else is optional.
type Manifest struct {
	IonPackVersion string
	Name           string
	Version        string
	MainClass      string
	EntryPoint     string
	Description    string
	Author         string
	Dependencies   []string
	FFILibraries   []string
	Exports        []string
}

// NewManifest creates a manifest with the current format version.
func NewManifest(name, version string) *Manifest {
	return &Manifest{
		IonPackVersion: ManifestVersion,
		Name:           name,
		Version:        version,
	}
}

// Render serializes the manifest to MANIFEST.ion text. Keys appear in a
// fixed order; empty optional fields are omitted.
func (m *Manifest) Render() string {
	var sb strings.Builder
	write := func(key, value string) {
		if value != "" {
			sb.WriteString(key)
			sb.WriteString(": ")
			sb.WriteString(value)
			sb.WriteString("\n")
		}
	}
	write("IonPack-Version", m.IonPackVersion)
	write("Name", m.Name)
	write("Version", m.Version)
	write("Main-Class", m.MainClass)
	write("Entry-Point", m.EntryPoint)
	write("Description", m.Description)
	write("Author", m.Author)
	write("Dependencies", strings.Join(m.Dependencies, ", "))
	write("FFI-Libraries", strings.Join(m.FFILibraries, ", "))
	write("Exports", strings.Join(m.Exports, ", "))
	return sb.String()
}

// ParseManifest parses MANIFEST.ion text. Unknown keys are ignored so
// newer packs remain readable.
func ParseManifest(data []byte) (*Manifest, error) {
	m := &Manifest{}
	for lineno, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("%w: line %d has no key", ErrManifest, lineno+1)
		}
		value = strings.TrimSpace(value)
		switch key {
		case "IonPack-Version":
			m.IonPackVersion = value
		case "Name":
			m.Name = value
		case "Version":
			m.Version = value
		case "Main-Class":
			m.MainClass = value
		case "Entry-Point":
			m.EntryPoint = value
		case "Description":
			m.Description = value
		case "Author":
			m.Author = value
		case "Dependencies":
			m.Dependencies = splitList(value)
		case "FFI-Libraries":
			m.FFILibraries = splitList(value)
		case "Exports":
			m.Exports = splitList(value)
		}
	}
	if m.Name == "" || m.Version == "" {
		return nil, fmt.Errorf("%w: Name and Version are required", ErrManifest)
	}
	return m, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
