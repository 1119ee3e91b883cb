package save

import "github.com/pkg/errors"

// ErrSnapshotParse is the sentinel for spec §7's "Snapshot-parse-error":
// a save file exists but is corrupted or from an incompatible version.
// Per spec this is logged and treated as "no resume possible", never
// propagated as a fatal error to the search itself.
var ErrSnapshotParse = errors.New("save: snapshot parse error")

// ErrSnapshotIO is the sentinel for spec §7's "Snapshot-I/O-error": the
// filesystem refused a read or write. Logged as a warning; a write failure
// does not abort the search, and the next periodic write simply retries.
var ErrSnapshotIO = errors.New("save: snapshot I/O error")
