package memory

import (
	"fmt"
	"io"
	"os"

	"github.com/marmos91/dittorepo/pkg/pathutil"
	"gopkg.in/yaml.v3"
)

// FixtureNode is one entry of a YAML fixture. An entry with children is a
// folder even when folder is omitted.
//
//	- name: public
//	  children:
//	    - name: report.ktr
//	    - name: .trash
//	      folder: true
//	      hidden: true
type FixtureNode struct {
	Name     string        `yaml:"name"`
	Folder   bool          `yaml:"folder,omitempty"`
	Hidden   bool          `yaml:"hidden,omitempty"`
	Children []FixtureNode `yaml:"children,omitempty"`
}

// LoadFixture adds the entries described by the YAML document in r below the
// root folder.
func (r *Repository) LoadFixture(in io.Reader) error {
	var nodes []FixtureNode
	if err := yaml.NewDecoder(in).Decode(&nodes); err != nil && err != io.EOF {
		return fmt.Errorf("failed to decode fixture: %w", err)
	}
	return r.addNodes(pathutil.Separator, nodes)
}

// LoadFixtureFile opens path and calls LoadFixture.
func (r *Repository) LoadFixtureFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open fixture: %w", err)
	}
	defer f.Close()

	return r.LoadFixture(f)
}

// NewFromConfig builds a repository and loads the configured fixture, if any.
func NewFromConfig(cfg MemoryRepositoryConfig) (*Repository, error) {
	repo := New()
	if cfg.Fixture == "" {
		return repo, nil
	}
	if err := repo.LoadFixtureFile(cfg.Fixture); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *Repository) addNodes(parentPath string, nodes []FixtureNode) error {
	for _, node := range nodes {
		folder := node.Folder || len(node.Children) > 0

		file, err := r.add(parentPath, node.Name, folder, node.Hidden)
		if err != nil {
			return fmt.Errorf("fixture entry %q: %w", pathutil.Child(parentPath, node.Name), err)
		}

		if folder {
			if err := r.addNodes(file.Path, node.Children); err != nil {
				return err
			}
		}
	}
	return nil
}
