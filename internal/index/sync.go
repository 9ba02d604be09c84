package index

import (
	"log/slog"
)

// SnapshotSource lists documents and their last applied tag sets.
type SnapshotSource interface {
	Titles() ([]string, error)
	Load(title string) ([]string, error)
}

// Rebuild brings the index up to date with the keyword snapshots:
//   - every snapshot is upserted with its tags
//   - indexed documents without a snapshot are removed
//
// Paths and checksums already recorded are kept.
func Rebuild(db TagIndex, src SnapshotSource, logger *slog.Logger) error {
	titles, err := src.Titles()
	if err != nil {
		return err
	}

	indexed, err := db.Titles()
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(titles))
	for _, title := range titles {
		seen[title] = struct{}{}
		tags, err := src.Load(title)
		if err != nil {
			return err
		}
		if err := db.UpsertDocument(DocumentRow{Title: title, Tags: tags}); err != nil {
			return err
		}
		logger.Debug("rebuild: indexed", slog.String("title", title), slog.Int("tags", len(tags)))
	}

	for _, title := range indexed {
		if _, ok := seen[title]; ok {
			continue
		}
		if err := db.DeleteDocument(title); err != nil {
			return err
		}
		logger.Debug("rebuild: removed stale", slog.String("title", title))
	}
	return nil
}
