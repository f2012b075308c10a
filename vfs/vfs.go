// Package vfs provides the host-replaceable filesystem surface
// scripts touch through fopen/include/require and friends (§4.1,
// §6.1's VFS library verb). The default is a thin wrapper over
// github.com/spf13/afero's OS backend; a host embedding the engine can
// install an in-memory or overlay afero.Fs instead, or any type
// satisfying FS directly.
package vfs

import (
	"io"
	"os"

	"github.com/spf13/afero"

	"github.com/marl-lang/phcore/errkind"
)

// FS is the subset of filesystem operations the engine needs from a
// host. It is intentionally narrower than afero.Fs so a non-afero host
// implementation (a network-backed VFS, say) only has to satisfy this.
type FS interface {
	Open(name string) (io.ReadCloser, error)
	Create(name string) (io.WriteCloser, error)
	Stat(name string) (os.FileInfo, error)
	Remove(name string) error
	MkdirAll(path string, perm os.FileMode) error
}

// aferoFS adapts an afero.Fs to FS.
type aferoFS struct {
	fs afero.Fs
}

func (a aferoFS) Open(name string) (io.ReadCloser, error) {
	f, err := a.fs.Open(name)
	if err != nil {
		return nil, errkind.Wrap(errkind.IO, err, "vfs: open "+name)
	}
	return f, nil
}

func (a aferoFS) Create(name string) (io.WriteCloser, error) {
	f, err := a.fs.Create(name)
	if err != nil {
		return nil, errkind.Wrap(errkind.IO, err, "vfs: create "+name)
	}
	return f, nil
}

func (a aferoFS) Stat(name string) (os.FileInfo, error) {
	fi, err := a.fs.Stat(name)
	if err != nil {
		return nil, errkind.Wrap(errkind.IO, err, "vfs: stat "+name)
	}
	return fi, nil
}

func (a aferoFS) Remove(name string) error {
	if err := a.fs.Remove(name); err != nil {
		return errkind.Wrap(errkind.IO, err, "vfs: remove "+name)
	}
	return nil
}

func (a aferoFS) MkdirAll(path string, perm os.FileMode) error {
	if err := a.fs.MkdirAll(path, perm); err != nil {
		return errkind.Wrap(errkind.IO, err, "vfs: mkdir "+path)
	}
	return nil
}

// NewOS returns the default FS, backed by the real operating system
// filesystem via afero.NewOsFs.
func NewOS() FS { return aferoFS{fs: afero.NewOsFs()} }

// NewMem returns an in-memory FS (afero.NewMemMapFs), useful for
// hosts running untrusted scripts or tests that must not touch disk.
func NewMem() FS { return aferoFS{fs: afero.NewMemMapFs()} }

// FromAfero adapts an arbitrary afero.Fs (read-only overlay, bounded
// base path, ...) to FS, for the USER_VFS-equivalent VFS configuration
// verb (§6.1) when the host already composes afero layers itself.
func FromAfero(fs afero.Fs) FS { return aferoFS{fs: fs} }

// ReadFile reads the full contents of name off fs, the common path for
// include/require resolution.
func ReadFile(fs FS, name string) ([]byte, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
