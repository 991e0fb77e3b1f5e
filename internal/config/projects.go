package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ProjectsRegistry holds the list of known project files
type ProjectsRegistry struct {
	Projects       []Project `json:"projects"`
	DefaultProject string    `json:"defaultProject"`
}

// Project represents a registered project file
type Project struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

var (
	// ErrProjectNotFound is returned when a project doesn't exist in the registry
	ErrProjectNotFound = errors.New("project not found")
	// ErrDuplicateProject is returned when trying to add a project that already exists
	ErrDuplicateProject = errors.New("project already exists")
	// ErrEmptyName is returned when the project name is empty
	ErrEmptyName = errors.New("project name cannot be empty")
	// ErrEmptyPath is returned when the project path is empty
	ErrEmptyPath = errors.New("project path cannot be empty")
	// ErrNotProjectFile is returned when the path is not a JSON or YAML file
	ErrNotProjectFile = errors.New("path is not a project file")
)

// projectFileNames are looked for, in order, when detecting a project
var projectFileNames = []string{"planboard.json", "planboard.yaml", "planboard.yml"}

// LoadProjectsRegistry loads the projects registry from disk
// Returns an empty registry if the file doesn't exist
func LoadProjectsRegistry() (*ProjectsRegistry, error) {
	path, err := registryPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &ProjectsRegistry{Projects: []Project{}}, nil
	}
	if err != nil {
		return nil, err
	}

	var registry ProjectsRegistry
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, err
	}

	return &registry, nil
}

// SaveProjectsRegistry saves the projects registry to disk
func SaveProjectsRegistry(reg *ProjectsRegistry) error {
	path, err := registryPath()
	if err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Add registers a project file under a name
func (r *ProjectsRegistry) Add(name, path string) error {
	if name == "" {
		return ErrEmptyName
	}
	if path == "" {
		return ErrEmptyPath
	}

	for _, p := range r.Projects {
		if p.Name == name {
			return ErrDuplicateProject
		}
	}

	if !isProjectFile(path) {
		return ErrNotProjectFile
	}

	r.Projects = append(r.Projects, Project{
		Name: name,
		Path: path,
	})

	// Set as default if it's the first project
	if len(r.Projects) == 1 {
		r.DefaultProject = name
	}

	return nil
}

// Remove removes a project from the registry
func (r *ProjectsRegistry) Remove(name string) error {
	if name == "" {
		return ErrEmptyName
	}

	found := false
	for i, p := range r.Projects {
		if p.Name == name {
			r.Projects = append(r.Projects[:i], r.Projects[i+1:]...)
			found = true
			break
		}
	}

	if !found {
		return ErrProjectNotFound
	}

	// Clear default if it was the removed project
	if r.DefaultProject == name {
		r.DefaultProject = ""
		if len(r.Projects) > 0 {
			r.DefaultProject = r.Projects[0].Name
		}
	}

	return nil
}

// SetDefault sets the default project
func (r *ProjectsRegistry) SetDefault(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if _, err := r.Get(name); err != nil {
		return err
	}
	r.DefaultProject = name
	return nil
}

// Get retrieves a project by name
func (r *ProjectsRegistry) Get(name string) (*Project, error) {
	for _, p := range r.Projects {
		if p.Name == name {
			return &p, nil
		}
	}
	return nil, ErrProjectNotFound
}

// GetDefault returns the default project, or nil if none is set
func (r *ProjectsRegistry) GetDefault() *Project {
	if r.DefaultProject == "" {
		return nil
	}
	p, err := r.Get(r.DefaultProject)
	if err != nil {
		return nil
	}
	return p
}

// FindByPath finds a project by its file path
func (r *ProjectsRegistry) FindByPath(path string) *Project {
	cleanPath := filepath.Clean(path)
	for _, p := range r.Projects {
		if filepath.Clean(p.Path) == cleanPath {
			return &p
		}
	}
	return nil
}

// DetectProjectFromDir walks up from dir looking for a planboard project
// file. The project is named after the directory holding it.
func DetectProjectFromDir(dir string) (*Project, error) {
	path := dir
	for {
		for _, name := range projectFileNames {
			candidate := filepath.Join(path, name)
			if isProjectFile(candidate) {
				return &Project{Name: filepath.Base(path), Path: candidate}, nil
			}
		}

		parent := filepath.Dir(path)
		if parent == path {
			return nil, ErrProjectNotFound
		}
		path = parent
	}
}

// registryPath is a variable holding the function that returns the path to the projects registry file
// This allows it to be overridden in tests
var registryPath = func() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "planboard", "projects.json"), nil
}

// isProjectFile reports whether path is an existing JSON or YAML file
func isProjectFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
	default:
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
