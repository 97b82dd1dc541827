package sceneimport

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/galvanized-assets/sceneimport/config"
	"github.com/galvanized-assets/sceneimport/decode"
	"github.com/galvanized-assets/sceneimport/importerr"
)

// memFS is a FileSystem backed by an in-memory map, used so tests never
// touch the real filesystem.
type memFS map[string][]byte

type nopCloser struct{ io.Reader }

func (nopCloser) Close() error { return nil }

func (m memFS) Open(path string) (Stream, error) {
	buf, ok := m[path]
	if !ok {
		return nil, errors.New("memFS: no such file: " + path)
	}
	return nopCloser{bytes.NewReader(buf)}, nil
}

const sampleHexNFF = "f 0.5 0.5 0.5 1 0 0 0 1\nhex\n0 0 0 2\n"

func TestImportFileDecodesAndValidates(t *testing.T) {
	im := &Importer{FS: memFS{"box.nff": []byte(sampleHexNFF)}}
	sc, err := im.ImportFile("box.nff", config.New(), 0)
	if err != nil {
		t.Fatalf("ImportFile: %s", err)
	}
	if len(sc.Meshes) != 1 || len(sc.Meshes[0].Faces) != 12 {
		t.Fatalf("expected 1 mesh with 12 faces, got %+v", sc.Meshes)
	}
	if len(sc.Materials) == 0 {
		t.Fatalf("expected at least the seeded default material")
	}
}

func TestImportFileWithNormalGeneration(t *testing.T) {
	im := &Importer{FS: memFS{"box.nff": []byte(sampleHexNFF)}}
	sc, err := im.ImportFile("box.nff", config.New(), GenerateNormals)
	if err != nil {
		t.Fatalf("ImportFile: %s", err)
	}
	if !sc.Meshes[0].HasNormals() {
		t.Errorf("expected normal generation to populate the mesh's normals")
	}
}

func TestImportFileUnsupportedExtension(t *testing.T) {
	im := &Importer{FS: memFS{"thing.xyz": []byte("whatever")}}
	_, err := im.ImportFile("thing.xyz", config.New(), 0)
	var unsupported *decode.ErrUnsupportedExtension
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected *decode.ErrUnsupportedExtension, got %v (%T)", err, err)
	}
}

func TestImportFileTooSmall(t *testing.T) {
	im := &Importer{FS: memFS{"tiny.nff": []byte("f")}}
	_, err := im.ImportFile("tiny.nff", config.New(), 0)
	var ie *importerr.Error
	if !errors.As(err, &ie) || ie.Kind != importerr.FileTooSmall {
		t.Fatalf("expected importerr.FileTooSmall, got %v", err)
	}
}

func TestImportFileMissingFile(t *testing.T) {
	im := &Importer{FS: memFS{}}
	_, err := im.ImportFile("missing.nff", config.New(), 0)
	if err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
