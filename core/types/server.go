package types

import "time"

// ServerStatus is the power/lifecycle state of a node
type ServerStatus string

const (
	ServerOn             ServerStatus = "on"
	ServerOff            ServerStatus = "off"
	ServerDecommissioned ServerStatus = "decommissioned"
)

// ServerFunction is what a node is used for
type ServerFunction string

const (
	FunctionProduction  ServerFunction = "production"
	FunctionTest        ServerFunction = "test"
	FunctionDevelopment ServerFunction = "development"
)

// MachineType distinguishes VM from VDI nodes
type MachineType string

const (
	MachineVM  MachineType = "vm"
	MachineVDI MachineType = "vdi"
)

// VMSize is a provisioning size class
type VMSize string

const (
	SizeSmall  VMSize = "small"  // 2 CPU, 8 GB RAM
	SizeMedium VMSize = "medium" // 4 CPU, 16 GB RAM
	SizeLarge  VMSize = "large"  // 8 CPU, 32 GB RAM
	SizeXLarge VMSize = "xlarge" // 16 CPU, 64 GB RAM
)

// Server is a compute or database node
type Server struct {
	// Node is the unique node name (e.g. "HPRP010")
	Node string `json:"node"`

	Status      ServerStatus   `json:"status"`
	Function    ServerFunction `json:"function"`
	MachineType MachineType    `json:"machine_type"`
	VMSize      VMSize         `json:"vm_size"`

	// OperatingSystem is the installed OS label
	OperatingSystem string `json:"operating_system,omitempty"`

	// NameAddress is the fully qualified host name
	NameAddress string `json:"name_address,omitempty"`

	// IPAddress is the node's address
	IPAddress string `json:"ip_address,omitempty"`

	ProcessorNum int `json:"processor_num"`

	// RAMGB is installed memory in GB
	RAMGB int `json:"ram_gb"`

	// DiskStorageGB is system storage in GB
	DiskStorageGB int `json:"disk_storage_gb"`

	// OtherStorageGB is direct attach storage in GB
	OtherStorageGB int `json:"other_storage_gb"`

	// SoftwareInstalled lists software keys available on the node
	SoftwareInstalled []string `json:"software_installed,omitempty"`

	ConnectionDate time.Time `json:"connection_date,omitempty"`

	Comments string `json:"comments,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// DuplicateUsers returns the users that appear on more than one of the
// given projects. Callers pass the running projects mounted on this node.
func (s *Server) DuplicateUsers(mounted []*Project) []string {
	counts := make(map[string]int)
	for _, p := range mounted {
		if p.HostNode != s.Node || p.Status != StatusRunning {
			continue
		}
		for _, u := range p.Users {
			counts[u]++
		}
	}

	var dups []string
	for u, n := range counts {
		if n > 1 {
			dups = append(dups, u)
		}
	}
	return dups
}
