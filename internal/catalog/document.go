package catalog

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// #region document
// Document is the serialized form of a snapshot, shared by the YAML fixture
// format and the JSON payload kept in the store.
type Document struct {
	Version   string               `json:"version" yaml:"version"`
	CreatedAt time.Time            `json:"created_at" yaml:"created_at,omitempty"`
	Weapons   []Weapon             `json:"weapons" yaml:"weapons"`
	Upgrades  map[string][]Upgrade `json:"upgrades" yaml:"upgrades"`
}

// Snapshot validates the document and builds a snapshot from it.
func (d Document) Snapshot() (*Snapshot, error) {
	return NewSnapshot(d.Version, d.CreatedAt, d.Weapons, d.Upgrades)
}

// Document returns the serializable form of s.
func (s *Snapshot) Document() Document {
	return Document{
		Version:   s.version,
		CreatedAt: s.createdAt,
		Weapons:   s.Weapons(),
		Upgrades:  s.Upgrades(),
	}
}

// #endregion document

// #region yaml
// ParseYAML builds a snapshot from a YAML catalog document.
func ParseYAML(data []byte) (*Snapshot, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	return doc.Snapshot()
}

// LoadYAML reads and parses a YAML catalog file.
func LoadYAML(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	s, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}
	return s, nil
}

// WriteYAML writes s as a YAML catalog that LoadYAML can read back.
func WriteYAML(path string, s *Snapshot) error {
	data, err := yaml.Marshal(s.Document())
	if err != nil {
		return fmt.Errorf("marshal catalog yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog %s: %w", path, err)
	}
	return nil
}

// #endregion yaml
