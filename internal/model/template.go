package model

import (
	"time"

	"github.com/google/uuid"
)

// ProjectTemplate represents a reusable project configuration that captures
// the packing list, container, and settings but not packing results.
type ProjectTemplate struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
	Items       []Item    `json:"items"`
	Container   Container `json:"container"`
	Settings    Settings  `json:"settings"`
}

// NewProjectTemplate creates a new template from the given project data.
func NewProjectTemplate(name, description string, items []Item, container Container, settings Settings) ProjectTemplate {
	now := time.Now().UTC().Format(time.RFC3339)
	return ProjectTemplate{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Items:       copyItems(items),
		Container:   container,
		Settings:    settings,
	}
}

// ToProject creates a new Project from this template.
// Items get fresh IDs so they are independent of the template.
func (t ProjectTemplate) ToProject(projectName string) Project {
	items := make([]Item, len(t.Items))
	for i, it := range t.Items {
		items[i] = NewItem(it.Label, it.Width, it.Height, it.Depth, it.Quantity)
		items[i].Weight = it.Weight
	}

	p := NewProject()
	p.Name = projectName
	p.Items = items
	p.Container = t.Container
	p.Settings = t.Settings
	return p
}

// TemplateStore holds a collection of project templates.
type TemplateStore struct {
	Templates []ProjectTemplate `json:"templates"`
}

// NewTemplateStore creates an empty template store.
func NewTemplateStore() TemplateStore {
	return TemplateStore{
		Templates: []ProjectTemplate{},
	}
}

// Add adds a template to the store.
func (ts *TemplateStore) Add(t ProjectTemplate) {
	ts.Templates = append(ts.Templates, t)
}

// Remove removes a template by ID. Returns true if found and removed.
func (ts *TemplateStore) Remove(id string) bool {
	for i, t := range ts.Templates {
		if t.ID == id {
			ts.Templates = append(ts.Templates[:i], ts.Templates[i+1:]...)
			return true
		}
	}
	return false
}

// FindByName returns a pointer to the first template with the given name, or nil.
func (ts *TemplateStore) FindByName(name string) *ProjectTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].Name == name {
			return &ts.Templates[i]
		}
	}
	return nil
}

func copyItems(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	cp := make([]Item, len(items))
	copy(cp, items)
	return cp
}
