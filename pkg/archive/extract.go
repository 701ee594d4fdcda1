// Package archive extracts gzip-compressed tar archives without letting any
// entry escape the destination directory.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/omicsfetch/omicsfetch/pkg/errors"
)

// Result counts what SafeExtract wrote.
type Result struct {
	Files int
	Dirs  int
	Links int
}

// IsWithinDirectory reports whether target resolves to dir or a path below it.
// The check is lexical; "/data/dir2" is not within "/data/dir".
func IsWithinDirectory(dir, target string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absTarget)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// SafeExtract extracts the .tar.gz at archivePath into dest. Every entry is
// validated before anything is written: an entry whose path, or whose link
// target, resolves outside dest, or whose path passes through a symlink
// created by an earlier entry, fails the whole extraction with an
// UNSAFE_ARCHIVE error and leaves dest untouched. Files are then written
// through an os.Root opened on dest, so symlinks already present in dest
// cannot redirect writes outside it either.
func SafeExtract(ctx context.Context, archivePath, dest string) (*Result, error) {
	v := &validator{dest: dest, links: map[string]bool{}}
	if err := walk(archivePath, func(hdr *tar.Header, _ io.Reader) error {
		return v.check(hdr)
	}); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to create extraction directory", err)
	}
	root, err := os.OpenRoot(dest)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to open extraction directory", err)
	}
	defer root.Close()

	res := &Result{}
	err = walk(archivePath, func(hdr *tar.Header, r io.Reader) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return extractEntry(root, hdr, r, res)
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("archive extracted",
		slog.String("archive", archivePath),
		slog.String("dest", dest),
		slog.Int("files", res.Files),
		slog.Int("dirs", res.Dirs),
		slog.Int("links", res.Links))
	return res, nil
}

func walk(archivePath string, fn func(*tar.Header, io.Reader) error) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNotFound, fmt.Sprintf("failed to open archive %s", archivePath), err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "failed to open gzip stream", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		// insecure names are still returned so validate can reject them
		if err != nil && !(stderrors.Is(err, tar.ErrInsecurePath) && hdr != nil) {
			return errors.Wrap(errors.ErrCodeInternal, "failed to read tar entry", err)
		}
		if err := fn(hdr, tr); err != nil {
			return err
		}
	}
}

func unsafeEntry(name, reason string) error {
	return errors.WrapWithContext(errors.ErrCodeUnsafeArchive,
		"potential path traversal detected in archive", nil,
		map[string]any{"entry": name, "reason": reason})
}

// entryName converts a tar name into a clean path relative to the
// extraction directory.
func entryName(name string) string {
	return filepath.Clean(filepath.FromSlash(name))
}

// validator checks entries in archive order and remembers symlink entries.
type validator struct {
	dest  string
	links map[string]bool
}

func (v *validator) check(hdr *tar.Header) error {
	if filepath.IsAbs(hdr.Name) || strings.HasPrefix(hdr.Name, "/") {
		return unsafeEntry(hdr.Name, "absolute path")
	}
	name := entryName(hdr.Name)
	target := filepath.Join(v.dest, name)
	if !IsWithinDirectory(v.dest, target) {
		return unsafeEntry(hdr.Name, "path escapes destination")
	}
	if link := v.throughLink(name); link != "" {
		return unsafeEntry(hdr.Name, fmt.Sprintf("path passes through symlink %s", link))
	}

	switch hdr.Typeflag {
	case tar.TypeSymlink:
		if filepath.IsAbs(hdr.Linkname) {
			return unsafeEntry(hdr.Name, "absolute symlink target")
		}
		if !IsWithinDirectory(v.dest, filepath.Join(filepath.Dir(target), hdr.Linkname)) {
			return unsafeEntry(hdr.Name, "symlink target escapes destination")
		}
		v.links[name] = true
	case tar.TypeLink:
		if filepath.IsAbs(hdr.Linkname) || !IsWithinDirectory(v.dest, filepath.Join(v.dest, hdr.Linkname)) {
			return unsafeEntry(hdr.Name, "hard link target escapes destination")
		}
		if link := v.throughLink(entryName(hdr.Linkname)); link != "" || v.links[entryName(hdr.Linkname)] {
			return unsafeEntry(hdr.Name, "hard link target passes through symlink")
		}
	}
	return nil
}

// throughLink returns the first parent of name that an earlier entry
// created as a symlink, or "".
func (v *validator) throughLink(name string) string {
	for dir := filepath.Dir(name); dir != "." && dir != string(filepath.Separator); dir = filepath.Dir(dir) {
		if v.links[dir] {
			return dir
		}
	}
	return ""
}

func extractEntry(root *os.Root, hdr *tar.Header, r io.Reader, res *Result) error {
	name := entryName(hdr.Name)

	switch hdr.Typeflag {
	case tar.TypeDir:
		if err := root.MkdirAll(name, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to create %s", name), err)
		}
		res.Dirs++
	case tar.TypeReg:
		if err := writeFile(root, name, r, hdr.FileInfo().Mode().Perm()); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to write %s", name), err)
		}
		res.Files++
	case tar.TypeSymlink:
		if err := replaceWith(root, name, func() error { return root.Symlink(hdr.Linkname, name) }); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to create symlink %s", name), err)
		}
		res.Links++
	case tar.TypeLink:
		src := entryName(hdr.Linkname)
		if err := replaceWith(root, name, func() error { return root.Link(src, name) }); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, fmt.Sprintf("failed to create link %s", name), err)
		}
		res.Links++
	default:
		slog.Debug("skipping unsupported tar entry",
			slog.String("name", hdr.Name),
			slog.String("type", string(hdr.Typeflag)))
	}
	return nil
}

func writeFile(root *os.Root, name string, r io.Reader, perm os.FileMode) error {
	if err := mkdirParent(root, name); err != nil {
		return err
	}
	if perm == 0 {
		perm = 0o644
	}
	f, err := root.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func replaceWith(root *os.Root, name string, create func() error) error {
	if err := mkdirParent(root, name); err != nil {
		return err
	}
	if err := root.Remove(name); err != nil && !os.IsNotExist(err) {
		return err
	}
	return create()
}

func mkdirParent(root *os.Root, name string) error {
	dir := filepath.Dir(name)
	if dir == "." {
		return nil
	}
	return root.MkdirAll(dir, 0o755)
}
