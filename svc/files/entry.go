package files

// Kind classifies an entry in the file tree.
type Kind string

const (
	KindFolder Kind = "folder"
	KindFile   Kind = "file"
	KindImage  Kind = "image"
)

// RootParentID is the sentinel parent id of top-level entries.
const RootParentID = "0"

// Entry is a node in a user's file tree. Folders carry no content;
// files and images reference a blob via LocalPath.
type Entry struct {
	ID       string
	UserID   string
	Name     string
	Kind     Kind
	ParentID string
	IsPublic bool

	// LocalPath is the blob storage key of the content. Empty for folders.
	// It is never exposed over the API.
	LocalPath string
}

// IsFolder reports whether the entry is a folder.
func (e *Entry) IsFolder() bool { return e.Kind == KindFolder }

// IsImage reports whether the entry is an image.
func (e *Entry) IsImage() bool { return e.Kind == KindImage }

// ValidKind reports whether k is one of the accepted entry kinds.
func ValidKind(k Kind) bool {
	switch k {
	case KindFolder, KindFile, KindImage:
		return true
	}
	return false
}
