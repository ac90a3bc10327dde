package types

import "time"

// StorageChange records a storage allocation change on a project
type StorageChange struct {
	ID         int64        `json:"id"`
	ProjectID  string       `json:"project_id"`
	Class      StorageClass `json:"class"`
	AmountGB   int64        `json:"amount_gb"`
	Ticket     string       `json:"ticket,omitempty"`
	ChangeDate time.Time    `json:"change_date"`
	Comments   string       `json:"comments,omitempty"`
}

// ComputeChange records a CPU/RAM allocation change on a project
type ComputeChange struct {
	ID         int64     `json:"id"`
	ProjectID  string    `json:"project_id"`
	NewCPU     int       `json:"new_cpu,omitempty"`
	NewRAMGB   int       `json:"new_ram_gb,omitempty"`
	Ticket     string    `json:"ticket,omitempty"`
	ChangeDate time.Time `json:"change_date"`
	Comments   string    `json:"comments,omitempty"`
}

// DataClass categorizes transferred data for compliance purposes
type DataClass string

const (
	DataDeidentified DataClass = "deidentified"
	DataPHI          DataClass = "phi"
	DataLimited      DataClass = "limited"
	DataUndetermined DataClass = "undetermined"
)

// FileTransfer records a file movement into, out of, or between projects.
// Exactly one of SourceProject/ExternalSource is set, and likewise for
// the destination.
type FileTransfer struct {
	ID int64 `json:"id"`

	SourceProject  string `json:"source_project,omitempty"`
	ExternalSource string `json:"external_source,omitempty"`

	DestProject         string `json:"dest_project,omitempty"`
	ExternalDestination string `json:"external_destination,omitempty"`

	// Method is the transfer mechanism (sftp, physical media, ...)
	Method string `json:"method"`

	// Requester is the requesting user's CWID
	Requester string `json:"requester"`

	// FileCount is the number of files moved
	FileCount int `json:"file_count"`

	// Filenames describes the files for the ticket trail
	Filenames string `json:"filenames,omitempty"`

	DataClass DataClass `json:"data_class"`

	Ticket     string    `json:"ticket,omitempty"`
	ChangeDate time.Time `json:"change_date"`
	Comments   string    `json:"comments,omitempty"`
}

// MigrationLog records a project move between nodes with its
// confirmation trail
type MigrationLog struct {
	ID        int64  `json:"id"`
	ProjectID string `json:"project_id"`

	NodeOrigin      string `json:"node_origin,omitempty"`
	NodeDestination string `json:"node_destination"`

	AccessTicket string     `json:"access_ticket,omitempty"`
	AccessDate   *time.Time `json:"access_date,omitempty"`

	EnvtTicket string     `json:"envt_ticket,omitempty"`
	EnvtDate   *time.Time `json:"envt_date,omitempty"`

	DataTicket string     `json:"data_ticket,omitempty"`
	DataDate   *time.Time `json:"data_date,omitempty"`

	Comments  string    `json:"comments,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
