package batch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest describes a job in YAML. Unset switches keep their defaults.
type Manifest struct {
	Files      []string `yaml:"files"`
	Printer    string   `yaml:"printer"`
	OutputDir  string   `yaml:"output_dir"`
	S3URL      string   `yaml:"s3"`
	Duplex     *bool    `yaml:"duplex"`
	Color      *bool    `yaml:"color"`
	Pages      string   `yaml:"pages"`
	AutoRotate *bool    `yaml:"auto_rotate"`
	AutoScale  *bool    `yaml:"auto_scale"`
}

// LoadManifest reads a job manifest. Relative paths are resolved against
// the manifest's own directory.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, errors.New("empty manifest path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	base := filepath.Dir(path)
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	files := make([]string, 0, len(m.Files))
	for _, f := range m.Files {
		if f == "" {
			continue
		}
		files = append(files, resolve(f))
	}
	m.Files = files
	m.OutputDir = resolve(m.OutputDir)
	return &m, nil
}

// Apply copies the manifest's settings over opts
func (m *Manifest) Apply(opts *Options) {
	if m.Printer != "" {
		opts.Printer = m.Printer
	}
	if m.OutputDir != "" {
		opts.OutputDir = m.OutputDir
	}
	if m.S3URL != "" {
		opts.S3URL = m.S3URL
	}
	if m.Pages != "" {
		opts.PageSpec = m.Pages
	}
	setBool(&opts.Duplex, m.Duplex)
	setBool(&opts.Color, m.Color)
	setBool(&opts.AutoRotate, m.AutoRotate)
	setBool(&opts.AutoScale, m.AutoScale)
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
