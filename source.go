package schema

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

// ScriptSource locates update scripts by name. Resolve returns
// ErrScriptAbsent when no script exists under name; any other error is
// treated as fatal.
type ScriptSource interface {
	Resolve(name string) (io.ReadCloser, error)
}

// ScriptSourceFunc adapts an ordinary function into a ScriptSource.
type ScriptSourceFunc func(name string) (io.ReadCloser, error)

// Resolve calls f(name).
func (f ScriptSourceFunc) Resolve(name string) (io.ReadCloser, error) {
	return f(name)
}

// FSSource serves scripts from a filesystem (such as an embed.FS). Names
// are resolved relative to the root of the filesystem.
//
// Example usage:
//
//	//go:embed sql/*.sql
//	var scripts embed.FS
//
//	migrator.Update(db, FSSource(scripts), "sql")
func FSSource(filesystem fs.FS) ScriptSource {
	return ScriptSourceFunc(func(name string) (io.ReadCloser, error) {
		name = strings.TrimPrefix(name, "/")
		f, err := filesystem.Open(name)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrScriptAbsent
		}
		if err != nil {
			return nil, err
		}
		return f, nil
	})
}

// DirectorySource serves scripts from a directory on disk.
func DirectorySource(dirPath string) ScriptSource {
	return FSSource(os.DirFS(dirPath))
}

// ReadScript resolves and reads the script for version from source. It
// returns ErrScriptAbsent unchanged when the source has no such script.
func ReadScript(source ScriptSource, resourcePath string, version int) (script *Script, err error) {
	script = &Script{
		Version: version,
		Name:    ScriptName(resourcePath, version),
	}
	r, err := source.Resolve(script.Name)
	if errors.Is(err, ErrScriptAbsent) {
		return script, ErrScriptAbsent
	}
	if err != nil {
		return script, &TransportError{Op: fmt.Sprintf("open %s", script.Name), Err: err}
	}
	defer func() { _ = r.Close() }()

	content, err := io.ReadAll(r)
	if err != nil {
		return script, &TransportError{Op: fmt.Sprintf("read %s", script.Name), Err: err}
	}
	script.Content = string(content)
	return script, nil
}
