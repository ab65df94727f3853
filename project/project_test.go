package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[project]
name = "demo"
version = "2.0.0"
authors = ["ion"]

[pack]
output = "out/demo.ionpack"
main-class = "Main"
entry-point = "start"
include-source = true
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Project.Name != "demo" || c.Project.Version != "2.0.0" {
		t.Errorf("project = %+v", c.Project)
	}
	if len(c.Project.Authors) != 1 || c.Project.Authors[0] != "ion" {
		t.Errorf("authors = %v", c.Project.Authors)
	}
	if c.Pack.MainClass != "Main" || c.Pack.EntryPoint != "start" || !c.Pack.IncludeSource {
		t.Errorf("pack = %+v", c.Pack)
	}
	if got, want := c.OutputPath(), filepath.Join(c.Dir, "out", "demo.ionpack"); got != want {
		t.Errorf("OutputPath() = %q, want %q", got, want)
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[project]
name = "demo"
`)

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Project.Version != "0.1.0" {
		t.Errorf("Version = %q, want default 0.1.0", c.Project.Version)
	}
	if c.Pack.Output != "demo.ionpack" {
		t.Errorf("Output = %q, want demo.ionpack", c.Pack.Output)
	}
	if c.Pack.EntryPoint != "main" {
		t.Errorf("EntryPoint = %q, want main", c.Pack.EntryPoint)
	}
}

func TestLoadMissingName(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "[project]\nversion = \"1.0\"\n")
	if _, err := Load(dir); err == nil {
		t.Error("Load accepted config without project.name")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Load accepted missing file")
	}
}

func TestLoadBadTOML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "not [valid toml\n")
	if _, err := Load(dir); err == nil {
		t.Error("Load accepted invalid TOML")
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[project]\nname = \"demo\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	c, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad: %v", err)
	}
	if c == nil {
		t.Fatal("FindAndLoad found nothing")
	}
	if c.Project.Name != "demo" {
		t.Errorf("Name = %q", c.Project.Name)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	c, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad: %v", err)
	}
	if c != nil {
		t.Errorf("found unexpected config: %+v", c)
	}
}
