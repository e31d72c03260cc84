package domain

import "fmt"

// Placeholder names used when the organizer adds an entry without naming it.
const (
	NewCategoryName = "New Category"
	NewItemName     = "New Item"
)

// MenuItem is a selectable dish. ID is generated by the client that created it.
// swagger:model MenuItem
type MenuItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Category groups menu items under a display name.
// swagger:model Category
type Category struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Items []MenuItem `json:"items"`
}

// Menu is the ordered list of categories of an event.
// swagger:model Menu
type Menu struct {
	Categories []Category `json:"categories"`
}

// Clone returns a deep copy so drafts never share backing arrays with server snapshots.
func (m Menu) Clone() Menu {
	out := Menu{Categories: make([]Category, len(m.Categories))}
	for i, c := range m.Categories {
		items := make([]MenuItem, len(c.Items))
		copy(items, c.Items)
		out.Categories[i] = Category{ID: c.ID, Name: c.Name, Items: items}
	}
	return out
}

// Equal reports whether both menus have the same categories and items in the same order.
func (m Menu) Equal(o Menu) bool {
	if len(m.Categories) != len(o.Categories) {
		return false
	}
	for i, c := range m.Categories {
		oc := o.Categories[i]
		if c.ID != oc.ID || c.Name != oc.Name || len(c.Items) != len(oc.Items) {
			return false
		}
		for j, it := range c.Items {
			if it != oc.Items[j] {
				return false
			}
		}
	}
	return true
}

func (m *Menu) categoryIndex(id string) int {
	for i := range m.Categories {
		if m.Categories[i].ID == id {
			return i
		}
	}
	return -1
}

// AddCategory appends an empty category. id must be unique within the menu.
func (m *Menu) AddCategory(id, name string) error {
	if id == "" {
		return fmt.Errorf("category id is required: %w", ErrInvalidInput)
	}
	if m.categoryIndex(id) >= 0 {
		return fmt.Errorf("category %s already exists: %w", id, ErrInvalidInput)
	}
	if name == "" {
		name = NewCategoryName
	}
	m.Categories = append(m.Categories, Category{ID: id, Name: name, Items: []MenuItem{}})
	return nil
}

// RenameCategory sets the display name of a category.
func (m *Menu) RenameCategory(id, name string) error {
	i := m.categoryIndex(id)
	if i < 0 {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	m.Categories[i].Name = name
	return nil
}

// DeleteCategory removes the category and every item it holds in one step.
func (m *Menu) DeleteCategory(id string) error {
	i := m.categoryIndex(id)
	if i < 0 {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	cats := make([]Category, 0, len(m.Categories)-1)
	cats = append(cats, m.Categories[:i]...)
	cats = append(cats, m.Categories[i+1:]...)
	m.Categories = cats
	return nil
}

// AddItem appends item to the category. item.ID must be unique within the category.
func (m *Menu) AddItem(categoryID string, item MenuItem) error {
	i := m.categoryIndex(categoryID)
	if i < 0 {
		return fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
	}
	if item.ID == "" {
		return fmt.Errorf("item id is required: %w", ErrInvalidInput)
	}
	for _, it := range m.Categories[i].Items {
		if it.ID == item.ID {
			return fmt.Errorf("item %s already exists: %w", item.ID, ErrInvalidInput)
		}
	}
	if item.Name == "" {
		item.Name = NewItemName
	}
	m.Categories[i].Items = append(m.Categories[i].Items, item)
	return nil
}

// UpdateItem changes the name and/or description of an item. Nil fields are kept.
func (m *Menu) UpdateItem(categoryID, itemID string, name, description *string) error {
	i := m.categoryIndex(categoryID)
	if i < 0 {
		return fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
	}
	for j := range m.Categories[i].Items {
		it := &m.Categories[i].Items[j]
		if it.ID != itemID {
			continue
		}
		if name != nil {
			it.Name = *name
		}
		if description != nil {
			it.Description = *description
		}
		return nil
	}
	return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
}

// DeleteItem removes one item from a category.
func (m *Menu) DeleteItem(categoryID, itemID string) error {
	i := m.categoryIndex(categoryID)
	if i < 0 {
		return fmt.Errorf("category %s: %w", categoryID, ErrNotFound)
	}
	items := m.Categories[i].Items
	for j := range items {
		if items[j].ID == itemID {
			kept := make([]MenuItem, 0, len(items)-1)
			kept = append(kept, items[:j]...)
			kept = append(kept, items[j+1:]...)
			m.Categories[i].Items = kept
			return nil
		}
	}
	return fmt.Errorf("item %s: %w", itemID, ErrNotFound)
}

// FindItem looks an item up across all categories.
func (m Menu) FindItem(itemID string) (MenuItem, Category, bool) {
	for _, c := range m.Categories {
		for _, it := range c.Items {
			if it.ID == itemID {
				return it, c, true
			}
		}
	}
	return MenuItem{}, Category{}, false
}

// Validate checks the identifier invariants of a whole menu as submitted by a client:
// every category and item has an id, and no id appears twice anywhere in the menu.
func (m Menu) Validate() error {
	seen := make(map[string]struct{})
	claim := func(kind, id string) error {
		if id == "" {
			return fmt.Errorf("%s id is required: %w", kind, ErrInvalidInput)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate %s id %s: %w", kind, id, ErrInvalidInput)
		}
		seen[id] = struct{}{}
		return nil
	}
	for _, c := range m.Categories {
		if err := claim("category", c.ID); err != nil {
			return err
		}
		for _, it := range c.Items {
			if err := claim("item", it.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
