// Package storage manages the files a run writes.
//
// Asset file names are derived from the item title and the image URL and
// sanitized so they are valid on common filesystems. All writes go through
// a temporary file in the destination directory followed by a rename, so a
// failed download never leaves a partial file behind.
//
//	manager, err := storage.NewManager("scripts/minecraft_items")
//	if err != nil {
//	    return err
//	}
//	dest := manager.PathFor("Apple", imageURL)
//	if err := manager.Save(dest, body); err != nil {
//	    log.WithError(err).Warn("Failed to save asset")
//	}
package storage
