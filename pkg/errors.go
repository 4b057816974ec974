package reconcile

import "fmt"

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

// ErrCreateGroup represents an error when creating a group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}

// ErrChannelNotFound is returned when no waveform exists for a channel.
type ErrChannelNotFound struct {
	Channel uint32
}

func (e *ErrChannelNotFound) Error() string {
	return fmt.Sprintf("no waveform found for channel %d", e.Channel)
}

// ErrUnknownTrack is returned when a hit/truth match references a track id
// with no particle record in the event.
type ErrUnknownTrack struct {
	TrackID int32
}

func (e *ErrUnknownTrack) Error() string {
	return fmt.Sprintf("no truth particle with track id %d", e.TrackID)
}

// ErrBadRecord represents a structurally invalid event record.
type ErrBadRecord struct {
	EventID uint32
	Reason  string
}

func (e *ErrBadRecord) Error() string {
	return fmt.Sprintf("malformed record for event %d: %s", e.EventID, e.Reason)
}
