package domain

import "time"

type Folder struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserID    int64     `json:"userId"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateFolderRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type UpdateFolderRequest struct {
	Name            string `json:"name" validate:"required,max=255"`
	ExpectedVersion *int64 `json:"expectedVersion"`
}
