package editor

import (
	"fmt"
	"strings"

	"eventmenu/internal/domain"
)

// OpType names a draft mutation.
type OpType string

const (
	OpAddCategory    OpType = "add_category"
	OpRenameCategory OpType = "rename_category"
	OpDeleteCategory OpType = "delete_category"
	OpAddItem        OpType = "add_item"
	OpUpdateItem     OpType = "update_item"
	OpDeleteItem     OpType = "delete_item"

	OpSetName    OpType = "set_name"
	OpSetLogoURL OpType = "set_logo_url"
	OpSetColors  OpType = "set_colors"
)

// Op is one mutation of a draft. Which fields are read depends on Type.
// swagger:model EditorOp
type Op struct {
	Type        OpType             `json:"type"`
	CategoryID  string             `json:"category_id,omitempty"`
	ItemID      string             `json:"item_id,omitempty"`
	Name        *string            `json:"name,omitempty"`
	Description *string            `json:"description,omitempty"`
	LogoURL     *string            `json:"logo_url,omitempty"`
	Colors      *domain.ColorTheme `json:"colors,omitempty"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// applyMenuOp mutates m. newID supplies identifiers for created entries; the id of a created
// entry is returned.
func applyMenuOp(m *domain.Menu, op Op, newID func() string) (string, error) {
	switch op.Type {
	case OpAddCategory:
		id := newID()
		return id, m.AddCategory(id, deref(op.Name))
	case OpRenameCategory:
		if op.Name == nil {
			return "", fmt.Errorf("name is required: %w", domain.ErrInvalidInput)
		}
		return "", m.RenameCategory(op.CategoryID, *op.Name)
	case OpDeleteCategory:
		return "", m.DeleteCategory(op.CategoryID)
	case OpAddItem:
		id := newID()
		return id, m.AddItem(op.CategoryID, domain.MenuItem{ID: id, Name: deref(op.Name), Description: deref(op.Description)})
	case OpUpdateItem:
		return "", m.UpdateItem(op.CategoryID, op.ItemID, op.Name, op.Description)
	case OpDeleteItem:
		return "", m.DeleteItem(op.CategoryID, op.ItemID)
	}
	return "", fmt.Errorf("operation %q is not valid for a menu editor: %w", op.Type, domain.ErrInvalidInput)
}

func applySettingsOp(s *domain.EventSettings, op Op) error {
	switch op.Type {
	case OpSetName:
		if op.Name == nil {
			return fmt.Errorf("name is required: %w", domain.ErrInvalidInput)
		}
		s.Name = *op.Name
		return nil
	case OpSetLogoURL:
		if op.LogoURL == nil {
			return fmt.Errorf("logo_url is required: %w", domain.ErrInvalidInput)
		}
		s.LogoURL = strings.TrimSpace(*op.LogoURL)
		return nil
	case OpSetColors:
		if op.Colors == nil {
			return fmt.Errorf("colors are required: %w", domain.ErrInvalidInput)
		}
		s.Colors = *op.Colors
		return nil
	}
	return fmt.Errorf("operation %q is not valid for a settings editor: %w", op.Type, domain.ErrInvalidInput)
}
