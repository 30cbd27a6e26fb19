package app

import (
	"errors"

	"github.com/dshills/urilens/internal/encode"
)

// CreateDataURIEnabled reports whether the create-data-URI command can
// run: the active document must be backed by a file.
func (a *App) CreateDataURIEnabled() bool {
	return a.docs.Active().HasFile()
}

// CreateDataURI encodes the active document's file as a data URI and
// copies it to the clipboard. The file is read from disk, so unsaved
// edits are not included. The outcome is reported on the status line.
func (a *App) CreateDataURI() error {
	doc := a.docs.Active()
	if !doc.HasFile() {
		return ErrNoActiveFile
	}
	path := doc.Path()

	uri, err := a.encoder.Encode(path)
	if err != nil {
		var ioErr *encode.IOError
		if errors.As(err, &ioErr) {
			a.status.SetStatus(StatusAccessError + ioErr.Error())
		}
		a.log.Warn("encode %s: %v", path, err)
		return NewOperationError("encode", path, err)
	}

	if err := a.clipboard.WriteAll(uri); err != nil {
		a.status.SetStatus("Unable to copy data URI: " + err.Error())
		a.log.Warn("copy data URI: %v", err)
		return NewOperationError("copy", path, err)
	}

	a.status.SetStatus(StatusCopied)
	a.log.Debug("copied %d byte data URI for %s", len(uri), path)
	return nil
}
