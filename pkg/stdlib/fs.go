package stdlib

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agenthands/tilde/pkg/core/value"
	"github.com/agenthands/tilde/pkg/vm"
)

var (
	ErrPathEscape   = errors.New("stdlib/file: path escape violation")
	ErrFileTooLarge = errors.New("stdlib/file: file size limit exceeded")
)

// FSSandbox confines the file module to Root and caps file sizes.
type FSSandbox struct {
	Root        string
	MaxFileSize int64
}

func NewFSSandbox(root string, maxFileSize int64) *FSSandbox {
	absRoot, _ := filepath.Abs(root)
	return &FSSandbox{
		Root:        absRoot,
		MaxFileSize: maxFileSize,
	}
}

// resolve jails path under Root.
func (s *FSSandbox) resolve(path string) (string, error) {
	clean := filepath.Join(s.Root, filepath.Clean(path))
	if clean != s.Root && !strings.HasPrefix(clean, s.Root+string(filepath.Separator)) {
		return "", ErrPathEscape
	}
	return clean, nil
}

func (s *FSSandbox) ReadFile(path string) (string, error) {
	clean, err := s.resolve(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(clean)
	if err != nil {
		return "", err
	}
	if s.MaxFileSize > 0 && info.Size() > s.MaxFileSize {
		return "", ErrFileTooLarge
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *FSSandbox) WriteFile(path, content string) error {
	clean, err := s.resolve(path)
	if err != nil {
		return err
	}
	if s.MaxFileSize > 0 && int64(len(content)) > s.MaxFileSize {
		return ErrFileTooLarge
	}
	if err := os.MkdirAll(filepath.Dir(clean), 0755); err != nil {
		return err
	}
	return os.WriteFile(clean, []byte(content), 0644)
}

func (s *FSSandbox) Exists(path string) (bool, error) {
	clean, err := s.resolve(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(clean)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func registerFile(r vm.Registry, opts Options) {
	if opts.FS == nil {
		return
	}
	s := opts.FS
	r.Add("file", "read", s.read)
	r.Add("file", "write", s.write)
	r.Add("file", "exists", s.exists)
}

// @file:read path
func (s *FSSandbox) read(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	path, err := stringArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	data, err := s.ReadFile(path)
	if err != nil {
		return value.Void, fmt.Errorf("failed to read file: %w", err)
	}
	return value.NewString(data), nil
}

// @file:write path contents
func (s *FSSandbox) write(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 2); err != nil {
		return value.Void, err
	}
	path, err := stringArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	content, err := stringArg(args, 1)
	if err != nil {
		return value.Void, err
	}
	if err := s.WriteFile(path, content); err != nil {
		return value.Void, fmt.Errorf("failed to write file: %w", err)
	}
	return value.Void, nil
}

// @file:exists path
func (s *FSSandbox) exists(_ *vm.Machine, _ []string, args []value.Value) (value.Value, error) {
	if err := arity(args, 1); err != nil {
		return value.Void, err
	}
	path, err := stringArg(args, 0)
	if err != nil {
		return value.Void, err
	}
	ok, err := s.Exists(path)
	if err != nil {
		return value.Void, err
	}
	return value.NewBool(ok), nil
}
