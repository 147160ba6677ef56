package service

import (
	"context"
	"strings"

	"github.com/MrSnakeDoc/bookhub/internal/apperror"
	"github.com/MrSnakeDoc/bookhub/internal/domain"
)

// DefaultFolderColor is used when a folder is created without a color.
const DefaultFolderColor = "#6B7280"

type FolderStore interface {
	ListFolders(ctx context.Context, owner string) ([]domain.Folder, error)
	ListChildFolders(ctx context.Context, owner string, parentID *string) ([]domain.Folder, error)
	SearchFolders(ctx context.Context, owner, q string) ([]domain.Folder, error)
	GetFolder(ctx context.Context, owner, id string) (domain.Folder, error)
	CreateFolder(ctx context.Context, f domain.Folder) (domain.Folder, error)
	UpdateFolder(ctx context.Context, owner, id string, p domain.FolderPatch) (domain.Folder, error)
	DeleteFolder(ctx context.Context, owner, id string) error
	MoveFolder(ctx context.Context, owner, id string, newParentID *string) (domain.Folder, error)
	FolderPath(ctx context.Context, owner, id string) ([]domain.Folder, error)
}

type FolderService struct {
	store  FolderStore
	events EventTracker
}

func NewFolderService(store FolderStore, events EventTracker) *FolderService {
	return &FolderService{store: store, events: orNopTracker(events)}
}

func (s *FolderService) List(ctx context.Context, owner string) ([]domain.Folder, error) {
	return s.store.ListFolders(ctx, owner)
}

// Children lists the direct children of parentID, or the roots when nil.
func (s *FolderService) Children(ctx context.Context, owner string, parentID *string) ([]domain.Folder, error) {
	return s.store.ListChildFolders(ctx, owner, parentID)
}

func (s *FolderService) Search(ctx context.Context, owner, q string) ([]domain.Folder, error) {
	if strings.TrimSpace(q) == "" {
		return s.store.ListFolders(ctx, owner)
	}
	return s.store.SearchFolders(ctx, owner, q)
}

func (s *FolderService) Get(ctx context.Context, owner, id string) (domain.Folder, error) {
	return s.store.GetFolder(ctx, owner, id)
}

func (s *FolderService) Create(ctx context.Context, owner string, f domain.Folder) (domain.Folder, error) {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return domain.Folder{}, apperror.ValidationFailed("name", "folder name is required")
	}
	if f.ParentID != nil && *f.ParentID == "" {
		f.ParentID = nil
	}
	if f.ParentID != nil {
		if _, err := s.store.GetFolder(ctx, owner, *f.ParentID); err != nil {
			return domain.Folder{}, err
		}
	}
	if f.Color == "" {
		f.Color = DefaultFolderColor
	}
	f.ID = ""
	f.UserID = owner

	created, err := s.store.CreateFolder(ctx, f)
	if err != nil {
		return domain.Folder{}, err
	}
	s.events.Record(ctx, owner, domain.EventFolderCreated, map[string]any{
		"folder_id": created.ID,
		"name":      created.Name,
		"nested":    created.ParentID != nil,
	})
	return created, nil
}

func (s *FolderService) Update(ctx context.Context, owner, id string, p domain.FolderPatch) (domain.Folder, error) {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return domain.Folder{}, apperror.ValidationFailed("name", "folder name cannot be empty")
		}
		p.Name = &name
	}
	return s.store.UpdateFolder(ctx, owner, id, p)
}

// Delete refuses folders that still hold subfolders or bookmarks.
func (s *FolderService) Delete(ctx context.Context, owner, id string) error {
	return s.store.DeleteFolder(ctx, owner, id)
}

// Move reparents id. A nil or empty newParentID makes it a root.
func (s *FolderService) Move(ctx context.Context, owner, id string, newParentID *string) (domain.Folder, error) {
	if newParentID != nil && *newParentID == "" {
		newParentID = nil
	}
	return s.store.MoveFolder(ctx, owner, id, newParentID)
}

// Path returns the ancestors of id, root first, ending with id itself.
func (s *FolderService) Path(ctx context.Context, owner, id string) ([]domain.Folder, error) {
	return s.store.FolderPath(ctx, owner, id)
}
