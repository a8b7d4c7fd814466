package domain

import "time"

type Note struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Texts     []string   `json:"texts"`
	Images    []ImageRef `json:"imageUrls"`
	FolderID  int64      `json:"folderId"`
	UserID    int64      `json:"userId"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// RemoteImages returns the image references that live in the object store.
func (n *Note) RemoteImages() []ImageRef {
	var remote []ImageRef
	for _, img := range n.Images {
		if img.IsRemote() {
			remote = append(remote, img)
		}
	}
	return remote
}

type CreateNoteRequest struct {
	Title string  `json:"title" validate:"required,max=255"`
	Text  *string `json:"text"`
}

// UpdateNoteRequest: a nil Text leaves the texts untouched, an empty Title leaves the title untouched.
type UpdateNoteRequest struct {
	Title           string  `json:"title" validate:"max=255"`
	Text            *string `json:"text"`
	ExpectedVersion *int64  `json:"expectedVersion"`
}

type AddImageRequest struct {
	Image string `json:"image"`
}

type RemoveImageRequest struct {
	ImageURL string `json:"imageUrl"`
}

type ReorderImagesRequest struct {
	ImageURLs       []string `json:"imageUrls"`
	ExpectedVersion *int64   `json:"expectedVersion"`
}
