package importer

import (
	"testing"
)

func TestLoadManifest_Missing(t *testing.T) {
	m, err := LoadManifest(t.TempDir())
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m != nil {
		t.Errorf("LoadManifest = %+v, want nil", m)
	}
}

func TestLoadManifest_Overrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ManifestFile, `name: Norge
election_types: [PE, CE]
format:
  delimiter: ","
  encoding: windows-1252
`)
	m, err := LoadManifest(dir)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}

	name, types := "Norway", []string{"PE"}
	opts := LoadOptions{Separator: DefaultSeparator}
	m.apply(&name, &types, &opts)

	if name != "Norge" {
		t.Errorf("name = %q, want Norge", name)
	}
	if len(types) != 2 || types[1] != "CE" {
		t.Errorf("types = %v, want [PE CE]", types)
	}
	if opts.Separator != "," || opts.Encoding != "windows-1252" {
		t.Errorf("opts = %+v", opts)
	}
}

func TestLoadManifest_BadDelimiter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ManifestFile, "format:\n  delimiter: \";;\"\n")
	if _, err := LoadManifest(dir); err == nil {
		t.Fatal("expected error for multi-character delimiter")
	}
}

func TestManifestApply_Nil(t *testing.T) {
	var m *Manifest
	name := "Norway"
	types := []string{"PE"}
	opts := LoadOptions{}
	m.apply(&name, &types, &opts)
	if name != "Norway" || len(types) != 1 || opts.Separator != "" {
		t.Errorf("nil manifest changed defaults: %q %v %+v", name, types, opts)
	}
}
