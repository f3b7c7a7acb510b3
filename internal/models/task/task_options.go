package task

type TaskOption func(*Task)

func WithComments(comments string) TaskOption {
	if comments == "" {
		return nil
	}
	return func(task *Task) {
		task.Comments = comments
	}
}

func WithPhotoURI(uri string) TaskOption {
	if uri == "" {
		return nil
	}
	return func(task *Task) {
		task.PhotoURI = &uri
	}
}

func WithLocation(loc *Location) TaskOption {
	if loc == nil {
		return nil
	}
	return func(task *Task) {
		l := *loc
		task.Location = &l
	}
}

func New(id, userEmail, title string, createdAt int64, options ...TaskOption) *Task {
	t := &Task{
		ID:        id,
		Title:     title,
		UserEmail: userEmail,
		CreatedAt: createdAt,
	}
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

type PhotoChangeKind string

const (
	PhotoUnchanged PhotoChangeKind = "unchanged"
	PhotoRemoved   PhotoChangeKind = "removed"
	PhotoReplaced  PhotoChangeKind = "replaced"
)

// PhotoChange is decided when the user touches the photo control;
// SourceURI is only meaningful for PhotoReplaced.
type PhotoChange struct {
	Kind      PhotoChangeKind
	SourceURI string
}

func KeepPhoto() PhotoChange {
	return PhotoChange{Kind: PhotoUnchanged}
}

func RemovePhoto() PhotoChange {
	return PhotoChange{Kind: PhotoRemoved}
}

func ReplacePhoto(sourceURI string) PhotoChange {
	return PhotoChange{Kind: PhotoReplaced, SourceURI: sourceURI}
}

// Draft is the content of the create/edit form.
type Draft struct {
	Title    string
	Comments string
	Photo    PhotoChange
	Location *Location
}
