// Package template renders the files `edmcli init` scaffolds into a working directory
package template

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
)

var (
	//go:embed all:templates
	// File is the embedded filesystem containing all templates
	File embed.FS
)

// Scaffold renders every file under templates/<name> into destination. Files that already
// exist are left untouched and reported in the returned errors.
func Scaffold(name string, info any, destination string) []error {
	return processWithFS(File, path.Join("templates", name), info, destination)
}

// Render executes a single embedded template file
func Render(file string, info any) (string, error) {
	return processTemplate(File, path.Join("templates", file), info)
}

func processWithFS(fsys fs.FS, src string, info any, dest string) []error {
	fi, err := fs.Stat(fsys, src)
	if err != nil {
		return []error{fmt.Errorf("failed to stat template %q: %w", src, err)}
	}
	if fi.IsDir() {
		return processDir(fsys, src, info, dest)
	}
	return processFile(fsys, src, info, dest)
}

func processDir(fsys fs.FS, dir string, info any, destination string) []error {
	if err := os.MkdirAll(destination, 0750); err != nil {
		return []error{fmt.Errorf("failed to create directory %q: %w", destination, err)}
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return []error{fmt.Errorf("failed to read template directory %q: %w", dir, err)}
	}

	var errs []error
	for _, entry := range entries {
		errs = append(errs, processWithFS(fsys, path.Join(dir, entry.Name()), info, filepath.Join(destination, entry.Name()))...)
	}
	return errs
}

func processFile(fsys fs.FS, file string, info any, destination string) []error {
	content, err := processTemplate(fsys, file, info)
	if err != nil {
		return []error{err}
	}
	if err := writeContent(destination, strings.NewReader(content)); err != nil {
		return []error{fmt.Errorf("%s: %w", destination, err)}
	}
	return nil
}

func processTemplate(fsys fs.FS, file string, info any) (string, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %q: %w", file, err)
	}

	tmpl, err := template.New(path.Base(file)).Option("missingkey=zero").Parse(string(data))
	if err != nil {
		return "", fmt.Errorf("template parse error: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, info); err != nil {
		return "", fmt.Errorf("template execute error: %w", err)
	}
	return buf.String(), nil
}

//nolint:gosec // G304: Destination path is constructed from the template tree
func writeContent(destination string, content io.Reader) error {
	destFile, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("file already exists")
		}
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		_ = destFile.Close()
	}()

	if _, err := io.Copy(destFile, content); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}
