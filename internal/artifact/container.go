// Package artifact serialises lowered modules into msgpack containers and
// keeps them in an on-disk cache keyed by input content.
package artifact

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/llir/llvm/ir"
	"github.com/vmihailenco/msgpack/v5"
)

// Schema is the current container format; bump it when Container changes.
const Schema uint16 = 1

// ErrSchema is returned when a container was written with another schema.
var ErrSchema = errors.New("artifact: schema mismatch")

// Container is one lowered module plus the metadata needed to decide whether
// it can be reused.
type Container struct {
	Schema     uint16
	Producer   string // semver of the lowc that wrote it
	Source     string
	SourceHash [32]byte
	Triple     string
	Functions  []string
	Globals    []string
	IR         string
}

// FromModule captures m. The source text is hashed so a container can be
// matched against a later build of the same file.
func FromModule(m *ir.Module, source string, src []byte, producer string) *Container {
	c := &Container{
		Schema:     Schema,
		Producer:   producer,
		Source:     source,
		SourceHash: sha256.Sum256(src),
		Triple:     m.TargetTriple,
		IR:         m.String(),
	}
	for _, f := range m.Funcs {
		c.Functions = append(c.Functions, f.Name())
	}
	for _, g := range m.Globals {
		c.Globals = append(c.Globals, g.Name())
	}
	return c
}

func Encode(w io.Writer, c *Container) error {
	return msgpack.NewEncoder(w).Encode(c)
}

// Decode reads one container and rejects foreign schemas.
func Decode(r io.Reader) (*Container, error) {
	var c Container
	if err := msgpack.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("artifact: decode: %w", err)
	}
	if c.Schema != Schema {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchema, c.Schema, Schema)
	}
	return &c, nil
}

// Write stores c at path atomically.
func Write(path string, c *Container) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()
	if err = Encode(f, c); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	err = os.Rename(tmp, path)
	return err
}

func Read(path string) (*Container, error) {
	f, err := os.Open(path) // #nosec G304 -- path comes from the build configuration
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
