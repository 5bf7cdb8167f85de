package fs

import "os"

// Stub wraps an [FS] and fails selected operations with canned errors.
//
// Each hook receives the path of the attempted operation. Returning a
// non-nil error fails the call without touching the underlying filesystem;
// returning nil passes the call through. Nil hooks always pass through.
//
// Unlike a randomized fault injector, Stub is fully deterministic: tests
// state exactly which operation on which path fails and with what error.
//
// Example:
//
//	fsys := &fs.Stub{
//	    FS:      fs.NewReal(),
//	    StatErr: func(path string) error { return syscall.EACCES },
//	}
type Stub struct {
	// FS is the underlying filesystem. Required.
	FS FS

	OpenErr     func(path string) error
	OpenFileErr func(path string) error
	ReadFileErr func(path string) error
	WriteErr    func(path string) error
	ReadDirErr  func(path string) error
	MkdirAllErr func(path string) error
	StatErr     func(path string) error
	RemoveErr   func(path string) error
	RenameErr   func(oldpath, newpath string) error
}

func (s *Stub) Open(path string) (File, error) {
	if err := call(s.OpenErr, path); err != nil {
		return nil, err
	}

	return s.FS.Open(path)
}

func (s *Stub) OpenFile(path string, flag int, perm os.FileMode) (File, error) {
	if err := call(s.OpenFileErr, path); err != nil {
		return nil, err
	}

	return s.FS.OpenFile(path, flag, perm)
}

func (s *Stub) ReadFile(path string) ([]byte, error) {
	if err := call(s.ReadFileErr, path); err != nil {
		return nil, err
	}

	return s.FS.ReadFile(path)
}

func (s *Stub) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if err := call(s.WriteErr, path); err != nil {
		return err
	}

	return s.FS.WriteFileAtomic(path, data, perm)
}

func (s *Stub) ReadDir(path string) ([]os.DirEntry, error) {
	if err := call(s.ReadDirErr, path); err != nil {
		return nil, err
	}

	return s.FS.ReadDir(path)
}

func (s *Stub) MkdirAll(path string, perm os.FileMode) error {
	if err := call(s.MkdirAllErr, path); err != nil {
		return err
	}

	return s.FS.MkdirAll(path, perm)
}

func (s *Stub) Stat(path string) (os.FileInfo, error) {
	if err := call(s.StatErr, path); err != nil {
		return nil, err
	}

	return s.FS.Stat(path)
}

// Exists mirrors [Real.Exists] but routes the stat through the stub so
// injected stat failures surface as (false, err).
func (s *Stub) Exists(path string) (bool, error) {
	_, err := s.Stat(path)
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

func (s *Stub) Remove(path string) error {
	if err := call(s.RemoveErr, path); err != nil {
		return err
	}

	return s.FS.Remove(path)
}

func (s *Stub) Rename(oldpath, newpath string) error {
	if s.RenameErr != nil {
		if err := s.RenameErr(oldpath, newpath); err != nil {
			return err
		}
	}

	return s.FS.Rename(oldpath, newpath)
}

func call(hook func(string) error, path string) error {
	if hook == nil {
		return nil
	}

	return hook(path)
}

// Compile-time interface check.
var _ FS = (*Stub)(nil)
