package index

// TagIndex defines the interface for tag index operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with fakes.
type TagIndex interface {
	UpsertDocument(d DocumentRow) error
	DeleteDocument(title string) error
	ChecksumByPath(path string) (string, error)
	GetDocument(title string) (*DocumentRow, error)
	TagsFor(title string) ([]string, error)
	DocumentsFor(tag string) ([]string, error)
	Titles() ([]string, error)
	TagCounts() ([]TagCount, error)
	Close() error
}

// Verify *DB satisfies TagIndex at compile time.
var _ TagIndex = (*DB)(nil)
